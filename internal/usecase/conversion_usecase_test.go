package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/plastinin/docconverter/internal/adapter/storage"
	"github.com/plastinin/docconverter/internal/domain"
	"github.com/plastinin/docconverter/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConverter struct {
	skipOutput bool
	err        error
	calls      []string
}

func (f *fakeConverter) Convert(_ context.Context, inputPath, format, outDir string) (string, error) {
	f.calls = append(f.calls, format)
	if f.err != nil {
		return "", f.err
	}
	if f.skipOutput {
		return "", nil
	}
	out := domain.ConvertedPath(inputPath, outDir, format)
	return "", os.WriteFile(out, []byte("converted to "+format), 0o600)
}

type fakePDF struct {
	pages  int
	err    error
	images []string
}

func (f *fakePDF) Merge(inputs []string, output string) error {
	if f.err != nil {
		return f.err
	}
	var parts []string
	for _, in := range inputs {
		data, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		parts = append(parts, string(data))
	}
	return os.WriteFile(output, []byte(strings.Join(parts, "|")), 0o600)
}

func (f *fakePDF) Split(string) ([][]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	pages := make([][]byte, f.pages)
	for i := range pages {
		pages[i] = []byte(fmt.Sprintf("page %d", i+1))
	}
	return pages, nil
}

func (f *fakePDF) Compress(_, output string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(output, []byte("compressed"), 0o600)
}

func (f *fakePDF) ImagesToPDF(images []string, output string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.images = images
	return len(images), os.WriteFile(output, []byte("images"), 0o600)
}

type fakeRenderer struct {
	pages int
	err   error
}

func (f *fakeRenderer) RenderPNG(_ context.Context, pdfPath, outDir string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.pages == 0 {
		return nil, domain.ErrNoPagesRendered
	}
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	var out []string
	for i := 1; i <= f.pages; i++ {
		p := filepath.Join(outDir, fmt.Sprintf("%s-%d.png", base, i))
		if err := os.WriteFile(p, []byte("png"), 0o600); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeRecognizer struct {
	text  string
	err   error
	paths []string
}

func (f *fakeRecognizer) Recognize(_ context.Context, imagePath string) (string, error) {
	f.paths = append(f.paths, filepath.Base(imagePath))
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fixture struct {
	dir        string
	store      *storage.TempStorage
	converter  *fakeConverter
	pdf        *fakePDF
	renderer   *fakeRenderer
	recognizer *fakeRecognizer
	uc         *usecase.ConversionUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewTempStorage(dir, zap.NewNop())
	require.NoError(t, err)

	f := &fixture{
		dir:        dir,
		store:      store,
		converter:  &fakeConverter{},
		pdf:        &fakePDF{pages: 3},
		renderer:   &fakeRenderer{pages: 2},
		recognizer: &fakeRecognizer{text: "hello world"},
	}
	f.uc = usecase.NewConversionUseCase(store, f.converter, f.pdf, f.renderer, f.recognizer,
		storage.NewZipArchiver(), zap.NewNop())
	return f
}

func (f *fixture) convert(kind string, files ...usecase.UploadInput) (*domain.ConversionResult, error) {
	return f.uc.Convert(context.Background(), usecase.ConvertInput{
		RequestID: "test",
		Kind:      kind,
		Files:     files,
	})
}

// listing все записи каталога, включая рабочие подкаталоги
func (f *fixture) listing(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func upload(name, contentType, body string) usecase.UploadInput {
	return usecase.UploadInput{
		FileName:    name,
		ContentType: contentType,
		FileSize:    int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

const (
	ctPDF  = "application/pdf"
	ctDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ctXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func validInputs(kind domain.ConversionKind) []usecase.UploadInput {
	switch kind {
	case domain.KindWordToPDF:
		return []usecase.UploadInput{upload("report.docx", ctDOCX, "docx")}
	case domain.KindExcelToPDF:
		return []usecase.UploadInput{upload("sheet.xlsx", ctXLSX, "xlsx")}
	case domain.KindImageToPDF:
		return []usecase.UploadInput{upload("a.jpg", "image/jpeg", "jpg"), upload("b.png", "image/png", "png")}
	case domain.KindMergePDF:
		return []usecase.UploadInput{upload("a.pdf", ctPDF, "a"), upload("b.pdf", ctPDF, "b")}
	case domain.KindOCR:
		return []usecase.UploadInput{upload("scan.png", "image/png", "png")}
	}
	return []usecase.UploadInput{upload("doc.pdf", ctPDF, "%PDF")}
}

func assertUserError(t *testing.T, err error, message string, target error) {
	t.Helper()
	var ue *domain.UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, message, ue.Message)
	assert.ErrorIs(t, err, target)
}

func TestRejectedUploadsLeaveNoFiles(t *testing.T) {
	for _, kind := range domain.AllKinds {
		t.Run(kind.String(), func(t *testing.T) {
			f := newFixture(t)
			before := f.listing(t)

			_, err := f.convert(kind.String(), upload("archive.zip", "application/zip", "PK"))
			assertUserError(t, err,
				fmt.Sprintf("Invalid file type for %s. Please upload the correct file format.", kind),
				domain.ErrUnsupportedFileType)

			assert.Equal(t, before, f.listing(t))
			assert.Empty(t, f.converter.calls)
		})
	}
}

func TestOneBadFileRejectsWholeBatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.convert("mergepdf",
		upload("a.pdf", ctPDF, "a"),
		upload("b.pdf", ctPDF, "b"),
		upload("notes.txt", "text/plain", "c"),
	)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	assert.Empty(t, f.listing(t))
}

func TestUnknownKind(t *testing.T) {
	f := newFixture(t)

	_, err := f.convert("pdf2mp3", upload("a.pdf", ctPDF, "a"))
	assertUserError(t, err, "Conversion type not implemented.", domain.ErrUnknownKind)
	assert.Empty(t, f.listing(t))
}

func TestNoFiles(t *testing.T) {
	f := newFixture(t)

	_, err := f.convert("pdf2word")
	assertUserError(t, err, "No file uploaded.", domain.ErrNoFiles)
}

func TestRoundTripLeavesOneArtifact(t *testing.T) {
	for _, kind := range domain.AllKinds {
		t.Run(kind.String(), func(t *testing.T) {
			f := newFixture(t)

			result, err := f.convert(kind.String(), validInputs(kind)...)
			require.NoError(t, err)
			assert.Equal(t, kind, result.Kind)

			if kind == domain.KindOCR {
				require.True(t, result.IsText())
				assert.Equal(t, "hello world", result.Text)
				assert.Empty(t, f.listing(t))
				return
			}

			require.False(t, result.IsText())
			assert.Equal(t, []string{result.Artifact.FileName}, f.listing(t))
			assert.True(t, domain.IsArtifactName(result.Artifact.FileName))

			file, _, err := f.store.Open(result.Artifact.FileName)
			require.NoError(t, err)
			file.Close()
		})
	}
}

func TestArtifactPrefixes(t *testing.T) {
	want := map[domain.ConversionKind]string{
		domain.KindPDFToWord:   "converted_",
		domain.KindWordToPDF:   "converted_",
		domain.KindExcelToPDF:  "converted_excel_",
		domain.KindPDFToExcel:  "converted_",
		domain.KindImageToPDF:  "converted_images_",
		domain.KindPDFToImage:  "pdf_images_",
		domain.KindMergePDF:    "merged_pdfs_",
		domain.KindSplitPDF:    "split_pages_",
		domain.KindCompressPDF: "compressed_",
	}

	for kind, prefix := range want {
		f := newFixture(t)
		result, err := f.convert(kind.String(), validInputs(kind)...)
		require.NoError(t, err, kind)
		assert.True(t, strings.HasPrefix(result.Artifact.FileName, prefix), result.Artifact.FileName)
	}
}

func TestOfficeRecipeFormats(t *testing.T) {
	f := newFixture(t)

	result, err := f.convert("pdf2word", upload("doc.pdf", ctPDF, "%PDF"))
	require.NoError(t, err)
	assert.Equal(t, []string{"docx"}, f.converter.calls)
	assert.Equal(t, ".docx", filepath.Ext(result.Artifact.FileName))

	data, err := os.ReadFile(result.Artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, "converted to docx", string(data))
}

func TestOfficeRecipeMissingOutput(t *testing.T) {
	f := newFixture(t)
	f.converter.skipOutput = true

	_, err := f.convert("word2pdf", upload("report.docx", ctDOCX, "docx"))
	assert.ErrorIs(t, err, domain.ErrOutputMissing)
	assert.Empty(t, f.listing(t))
}

func TestOfficeRecipeConverterFailure(t *testing.T) {
	f := newFixture(t)
	f.converter.err = fmt.Errorf("%w: source file could not be loaded", domain.ErrConversionFailed)

	_, err := f.convert("excel2pdf", upload("sheet.xlsx", ctXLSX, "xlsx"))
	assert.ErrorIs(t, err, domain.ErrConversionFailed)
	assert.Empty(t, f.listing(t))
}

func TestImagesToPDFSkipsUnsupported(t *testing.T) {
	f := newFixture(t)

	_, err := f.convert("img2pdf",
		upload("photo.jpg", "image/jpeg", "jpg"),
		upload("anim.gif", "image/gif", "gif"),
	)
	require.NoError(t, err)
	require.Len(t, f.pdf.images, 1)
	assert.Equal(t, ".jpg", filepath.Ext(f.pdf.images[0]))
}

func TestImagesToPDFNothingSupported(t *testing.T) {
	f := newFixture(t)

	_, err := f.convert("img2pdf", upload("anim.gif", "image/gif", "gif"))
	assertUserError(t, err, "No supported images found. Please upload JPG or PNG files.",
		domain.ErrNoSupportedImages)
	assert.Empty(t, f.listing(t))
}

func TestMergeKeepsUploadOrder(t *testing.T) {
	f := newFixture(t)

	result, err := f.convert("mergepdf",
		upload("c.pdf", ctPDF, "c"),
		upload("a.pdf", ctPDF, "a"),
		upload("b.pdf", ctPDF, "b"),
	)
	require.NoError(t, err)

	data, err := os.ReadFile(result.Artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, "c|a|b", string(data))
}

func TestLibraryErrorCleansUp(t *testing.T) {
	f := newFixture(t)
	f.pdf.err = fmt.Errorf("%w: broken xref", domain.ErrInvalidDocument)

	for _, kind := range []string{"mergepdf", "splitpdf", "compresspdf"} {
		_, err := f.convert(kind, upload("doc.pdf", ctPDF, "%PDF"))
		assert.ErrorIs(t, err, domain.ErrInvalidDocument, kind)
		assert.Empty(t, f.listing(t), kind)
	}
}

func readZip(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	out := make(map[string]string)
	var order []string
	for _, zf := range zr.File {
		rc, err := zf.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[zf.Name] = string(data)
		order = append(order, zf.Name)
	}
	out["@order"] = strings.Join(order, ",")
	return out
}

func TestSplitArchive(t *testing.T) {
	f := newFixture(t)

	result, err := f.convert("splitpdf", upload("doc.pdf", ctPDF, "%PDF"))
	require.NoError(t, err)

	entries := readZip(t, result.Artifact.Path)
	assert.Equal(t, "page_1.pdf,page_2.pdf,page_3.pdf", entries["@order"])
	assert.Equal(t, "page 2", entries["page_2.pdf"])
}

func TestPDFToImagesArchive(t *testing.T) {
	f := newFixture(t)

	result, err := f.convert("pdf2img", upload("doc.pdf", ctPDF, "%PDF"))
	require.NoError(t, err)

	entries := readZip(t, result.Artifact.Path)
	names := strings.Split(entries["@order"], ",")
	require.Len(t, names, 2)
	for _, n := range names {
		assert.True(t, strings.HasPrefix(n, "upload_"), n)
		assert.Equal(t, ".png", filepath.Ext(n))
	}
	assert.Equal(t, []string{result.Artifact.FileName}, f.listing(t))
}

func TestPDFToImagesNoPages(t *testing.T) {
	f := newFixture(t)
	f.renderer.pages = 0

	_, err := f.convert("pdf2img", upload("doc.pdf", ctPDF, "%PDF"))
	assertUserError(t, err, "Failed to convert PDF to images. Please ensure the PDF is valid.",
		domain.ErrNoPagesRendered)
	assert.Empty(t, f.listing(t))
}

func TestPDFToImagesRendererFailure(t *testing.T) {
	f := newFixture(t)
	f.renderer.err = errors.New("soffice crashed")

	_, err := f.convert("pdf2img", upload("doc.pdf", ctPDF, "%PDF"))
	assertUserError(t, err, "Error converting PDF to images: soffice crashed", f.renderer.err)
	assert.Empty(t, f.listing(t))
}

func TestOCR(t *testing.T) {
	tests := []struct {
		name      string
		file      usecase.UploadInput
		pages     int
		recognErr error
		want      string
	}{
		{
			name: "image",
			file: upload("scan.png", "image/png", "png"),
			want: "hello world",
		},
		{
			name:  "pdf renders first page",
			file:  upload("scan.pdf", ctPDF, "%PDF"),
			pages: 3,
			want:  "hello world",
		},
		{
			name:  "pdf without pages",
			file:  upload("empty.pdf", ctPDF, "%PDF"),
			pages: 0,
			want:  "Could not extract text from PDF. The PDF might be empty or contain only non-text content.",
		},
		{
			name: "extension allowed but not an image",
			file: upload("scan.jpg", "application/octet-stream", "???"),
			want: "Unsupported file type for OCR. Please upload an image (PNG, JPG) or PDF file.",
		},
		{
			name:      "recognizer failure",
			file:      upload("scan.png", "image/png", "png"),
			recognErr: errors.New("tesseract: cannot read image"),
			want:      "Error during OCR processing: tesseract: cannot read image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.renderer.pages = tt.pages
			f.recognizer.err = tt.recognErr

			result, err := f.convert("ocr", tt.file)
			require.NoError(t, err)
			require.True(t, result.IsText())
			assert.Equal(t, tt.want, result.Text)
			assert.Empty(t, f.listing(t))
		})
	}
}

func TestOCRUsesFirstRenderedPage(t *testing.T) {
	f := newFixture(t)
	f.renderer.pages = 3

	_, err := f.convert("ocr", upload("scan.pdf", ctPDF, "%PDF"))
	require.NoError(t, err)
	require.Len(t, f.recognizer.paths, 1)
	assert.True(t, strings.HasSuffix(f.recognizer.paths[0], "-1.png"))
}

func TestSaveFailureRemovesEarlierUploads(t *testing.T) {
	f := newFixture(t)
	broken := usecase.UploadInput{
		FileName: "b.pdf",
		Open:     func() (io.ReadCloser, error) { return nil, errors.New("multipart: part gone") },
	}

	_, err := f.convert("mergepdf", upload("a.pdf", ctPDF, "a"), broken)
	require.Error(t, err)
	assert.Empty(t, f.listing(t))
}

func TestContentTypeFallsBackToExtension(t *testing.T) {
	f := newFixture(t)

	_, err := f.convert("img2pdf", upload("photo.png", "", "png"))
	require.NoError(t, err)
	assert.Len(t, f.pdf.images, 1)
}
