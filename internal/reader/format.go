package reader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedFormat is returned for files that are neither a registered
// format nor plain text.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format defines a file format reader for extracting text.
type Format interface {
	Name() string
	Extensions() []string
	Extract(filename string) (string, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

func lookup(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f
			}
		}
	}
	return nil
}

// ExtractText extracts text from a file, using a registered format or plain text fallback.
// Paragraphs in the result are separated by blank lines.
func ExtractText(filename string) (string, error) {
	if f := lookup(filename); f != nil {
		return f.Extract(filename)
	}
	return readPlainText(filename)
}

// readPlainText reads a file whose content is detected as some kind of text.
func readPlainText(filename string) (string, error) {
	mtype, err := mimetype.DetectFile(filename)
	if err != nil {
		return "", err
	}
	if !isText(mtype) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mtype.String())
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}
