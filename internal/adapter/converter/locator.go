package converter

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/plastinin/docconverter/internal/domain"
)

// Locator находит исполняемый файл конвертера
type Locator interface {
	Locate() (string, error)
}

// Стандартные пути установки LibreOffice
var DefaultSofficePaths = []string{
	"/usr/bin/soffice",
	"/usr/bin/libreoffice",
	"/usr/local/bin/soffice",
	"/opt/homebrew/bin/soffice",
	"/Applications/LibreOffice.app/Contents/MacOS/soffice",
	`C:\Program Files\LibreOffice\program\soffice.exe`,
	`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
}

// ProbeLocator перебирает известные пути, затем ищет по имени в PATH
type ProbeLocator struct {
	Candidates []string
	Name       string

	stat     func(string) (os.FileInfo, error)
	lookPath func(string) (string, error)
}

// NewProbeLocator создаёт локатор для soffice.
// Явно заданный путь проверяется первым.
func NewProbeLocator(explicit string) *ProbeLocator {
	candidates := make([]string, 0, len(DefaultSofficePaths)+1)
	if explicit != "" {
		candidates = append(candidates, explicit)
	}
	candidates = append(candidates, DefaultSofficePaths...)

	return &ProbeLocator{
		Candidates: candidates,
		Name:       "soffice",
		stat:       os.Stat,
		lookPath:   exec.LookPath,
	}
}

// Locate возвращает первый существующий путь
func (l *ProbeLocator) Locate() (string, error) {
	for _, p := range l.Candidates {
		info, err := l.stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
	}

	p, err := l.lookPath(l.Name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrConverterNotFound, l.Name, err)
	}
	return p, nil
}

// StaticLocator всегда возвращает заданный путь
type StaticLocator string

func (s StaticLocator) Locate() (string, error) {
	if s == "" {
		return "", domain.ErrConverterNotFound
	}
	return string(s), nil
}
