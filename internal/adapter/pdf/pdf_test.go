package pdf

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/plastinin/docconverter/internal/domain"
	"github.com/signintech/gopdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makePDF пишет документ со страницами заданных размеров
func makePDF(t *testing.T, path string, sizes ...gopdf.Rect) {
	t.Helper()
	doc := &gopdf.GoPdf{}
	doc.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: sizes[0]})
	for _, s := range sizes {
		s := s
		doc.AddPageWithOption(gopdf.PageOption{PageSize: &s})
		doc.Line(10, 10, s.W-10, s.H-10)
	}
	require.NoError(t, doc.WritePdf(path))
}

func makeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, nil))
}

func pageDims(t *testing.T, data []byte) []types.Dim {
	t.Helper()
	dims, err := api.PageDims(bytes.NewReader(data), newConfig())
	require.NoError(t, err)
	return dims
}

func fileDims(t *testing.T, path string) []types.Dim {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return pageDims(t, data)
}

func assertDims(t *testing.T, want []gopdf.Rect, got []types.Dim) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i].W, got[i].Width, 0.5, "page %d width", i+1)
		assert.InDelta(t, want[i].H, got[i].Height, 0.5, "page %d height", i+1)
	}
}

var (
	sizeA = gopdf.Rect{W: 100, H: 200}
	sizeB = gopdf.Rect{W: 300, H: 400}
	sizeC = gopdf.Rect{W: 500, H: 600}
)

func TestMergeKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	c := filepath.Join(dir, "c.pdf")
	makePDF(t, a, sizeA)
	makePDF(t, b, sizeB)
	makePDF(t, c, sizeC)

	out := filepath.Join(dir, "merged.pdf")
	require.NoError(t, NewProcessor().Merge([]string{c, a, b}, out))

	assertDims(t, []gopdf.Rect{sizeC, sizeA, sizeB}, fileDims(t, out))
}

func TestMergeMultiPageSources(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	makePDF(t, a, sizeA, sizeB)
	makePDF(t, b, sizeC)

	out := filepath.Join(dir, "merged.pdf")
	require.NoError(t, NewProcessor().Merge([]string{b, a}, out))

	assertDims(t, []gopdf.Rect{sizeC, sizeA, sizeB}, fileDims(t, out))
}

func TestMergeRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("definitely not a pdf"), 0o600))

	out := filepath.Join(dir, "merged.pdf")
	err := NewProcessor().Merge([]string{bad}, out)
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
	assert.NoFileExists(t, out)
}

func TestSplit(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	makePDF(t, src, sizeA, sizeB, sizeC)

	pages, err := NewProcessor().Split(src)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	want := []gopdf.Rect{sizeA, sizeB, sizeC}
	for i, page := range pages {
		n, err := api.PageCount(bytes.NewReader(page), newConfig())
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assertDims(t, want[i:i+1], pageDims(t, page))
	}
}

func TestCompressIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	makePDF(t, src, sizeA, sizeB)

	p := NewProcessor()
	first := filepath.Join(dir, "first.pdf")
	second := filepath.Join(dir, "second.pdf")
	require.NoError(t, p.Compress(src, first))
	require.NoError(t, p.Compress(first, second))

	n1, err := p.PageCount(first)
	require.NoError(t, err)
	n2, err := p.PageCount(second)
	require.NoError(t, err)
	assert.Equal(t, 2, n1)
	assert.Equal(t, n1, n2)
	assert.Equal(t, fileDims(t, first), fileDims(t, second))
}

func TestImagesToPDF(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "upload_1.jpg")
	makeJPEG(t, img, 800, 600)

	out := filepath.Join(dir, "out.pdf")
	n, err := NewProcessor().ImagesToPDF([]string{img}, out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assertDims(t, []gopdf.Rect{{W: 800, H: 600}}, fileDims(t, out))
}

func TestImagesToPDFPagePerImage(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jpg")
	b := filepath.Join(dir, "b.jpg")
	makeJPEG(t, a, 320, 240)
	makeJPEG(t, b, 240, 320)

	out := filepath.Join(dir, "out.pdf")
	n, err := NewProcessor().ImagesToPDF([]string{a, b}, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assertDims(t, []gopdf.Rect{{W: 320, H: 240}, {W: 240, H: 320}}, fileDims(t, out))
}

func TestImagesToPDFErrors(t *testing.T) {
	_, err := NewProcessor().ImagesToPDF(nil, filepath.Join(t.TempDir(), "x.pdf"))
	assert.ErrorIs(t, err, domain.ErrNoSupportedImages)

	bad := filepath.Join(t.TempDir(), "bad.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o600))
	_, err = NewProcessor().ImagesToPDF([]string{bad}, filepath.Join(t.TempDir(), "x.pdf"))
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
}

type fakeConverter struct {
	produce []string
	err     error
}

func (f *fakeConverter) Convert(_ context.Context, inputPath, format, outDir string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	for _, suffix := range f.produce {
		if err := os.WriteFile(filepath.Join(outDir, base+suffix), []byte(format), 0o600); err != nil {
			return "", err
		}
	}
	return "", nil
}

func TestSofficeRendererMatchesBaseName(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "upload_abc.pdf")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "upload_other.png"), []byte("x"), 0o600))

	r := NewSofficeRenderer(&fakeConverter{produce: []string{".png", "-2.png", ".txt"}})
	pngs, err := r.RenderPNG(context.Background(), input, dir)
	require.NoError(t, err)
	require.Len(t, pngs, 2)
	assert.Equal(t, "upload_abc-2.png", filepath.Base(pngs[0]))
	assert.Equal(t, "upload_abc.png", filepath.Base(pngs[1]))
}

func TestSofficeRendererNoOutput(t *testing.T) {
	dir := t.TempDir()
	r := NewSofficeRenderer(&fakeConverter{})
	_, err := r.RenderPNG(context.Background(), filepath.Join(dir, "upload_abc.pdf"), dir)
	assert.ErrorIs(t, err, domain.ErrNoPagesRendered)
}

func TestSofficeRendererConverterError(t *testing.T) {
	boom := errors.New("boom")
	r := NewSofficeRenderer(&fakeConverter{err: boom})
	_, err := r.RenderPNG(context.Background(), "in.pdf", t.TempDir())
	assert.ErrorIs(t, err, boom)
}

func TestFitzRenderer(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "upload_abc.pdf")
	makePDF(t, input, sizeA, sizeB)

	pngs, err := NewFitzRenderer().RenderPNG(context.Background(), input, dir)
	require.NoError(t, err)
	require.Len(t, pngs, 2)
	assert.Equal(t, "upload_abc-1.png", filepath.Base(pngs[0]))
	assert.Equal(t, "upload_abc-2.png", filepath.Base(pngs[1]))

	f, err := os.Open(pngs[1])
	require.NoError(t, err)
	defer f.Close()
	_, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestFitzRendererRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "upload_bad.pdf")
	require.NoError(t, os.WriteFile(input, []byte("not a pdf"), 0o600))

	_, err := NewFitzRenderer().RenderPNG(context.Background(), input, dir)
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
}
