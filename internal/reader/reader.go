// Package reader turns text files and pasted text into paragraphs for reading aloud.
package reader

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const hashBytes = 8192 // First 8KB for content hash

// ErrNoText is returned when an input holds no readable paragraphs.
var ErrNoText = errors.New("no text to read")

// paragraphBreak matches a blank line, which may contain stray spaces or tabs.
var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

// Import is the result of reading a file or pasted text.
type Import struct {
	Name       string
	Paragraphs []string
	TOC        []TOCEntry
	Checksum   string
}

// SplitParagraphs splits text on blank lines. Paragraphs are trimmed and
// empty ones are discarded.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := paragraphBreak.Split(text, -1)

	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// Preview returns the first n words of a paragraph, with an ellipsis when cut.
func Preview(paragraph string, n int) string {
	words := strings.Fields(paragraph)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}

// FromText builds an Import from pasted text.
func FromText(name, text string) (*Import, error) {
	paragraphs := SplitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil, ErrNoText
	}
	sum := sha256.Sum256([]byte(text[:min(len(text), hashBytes)]))
	return &Import{
		Name:       strings.TrimSpace(name),
		Paragraphs: paragraphs,
		Checksum:   hex.EncodeToString(sum[:16]),
	}, nil
}

// Open reads a file through the format registry. Formats that understand
// document structure contribute a table of contents.
func Open(filename string) (*Import, error) {
	var (
		paragraphs []string
		toc        []TOCEntry
	)

	if f := lookup(filename); f != nil {
		if pe, ok := f.(ParagraphExtractor); ok {
			var err error
			paragraphs, toc, err = pe.ExtractParagraphs(filename)
			if err != nil {
				return nil, err
			}
		} else {
			text, err := f.Extract(filename)
			if err != nil {
				return nil, err
			}
			paragraphs = SplitParagraphs(text)
		}
	} else {
		text, err := readPlainText(filename)
		if err != nil {
			return nil, err
		}
		paragraphs = SplitParagraphs(text)
	}

	if len(paragraphs) == 0 {
		return nil, ErrNoText
	}

	sum, err := Checksum(filename)
	if err != nil {
		return nil, err
	}

	return &Import{
		Name:       filepath.Base(filename),
		Paragraphs: paragraphs,
		TOC:        toc,
		Checksum:   sum,
	}, nil
}

// Checksum generates a content hash for file identity
func Checksum(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, hashBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	hash := sha256.Sum256(buf[:n])
	return hex.EncodeToString(hash[:16]), nil // First 16 bytes = 32 hex chars
}
