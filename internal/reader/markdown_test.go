package reader

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestMarkdownTOC(t *testing.T) {
	// Create a temp markdown file
	tmpDir := t.TempDir()
	mdFile := filepath.Join(tmpDir, "test.md")

	content := `# Introduction
This is the introduction.

## Getting Started
Here's how to get started with the project.

### Prerequisites
You'll need these things installed.

## Usage
Here's how to use it.

# Advanced Topics
More complex stuff here.

## Configuration
Configure everything.
`
	if err := os.WriteFile(mdFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	f := &MarkdownFormat{}
	paragraphs, toc, err := f.ExtractParagraphs(mdFile)
	if err != nil {
		t.Fatalf("ExtractParagraphs failed: %v", err)
	}

	if len(toc) != 6 {
		t.Fatalf("Expected 6 TOC entries, got %d", len(toc))
	}
	if len(paragraphs) != 12 {
		t.Errorf("Expected 12 paragraphs, got %d", len(paragraphs))
	}

	// Check levels
	expectedLevels := []int{0, 1, 2, 1, 0, 1} // h1=0, h2=1, h3=2
	for i, entry := range toc {
		if entry.Level != expectedLevels[i] {
			t.Errorf("Entry %d (%s): expected level %d, got %d", i, entry.Title, expectedLevels[i], entry.Level)
		}
	}

	// Check titles
	expectedTitles := []string{"Introduction", "Getting Started", "Prerequisites", "Usage", "Advanced Topics", "Configuration"}
	for i, entry := range toc {
		if entry.Title != expectedTitles[i] {
			t.Errorf("Entry %d: expected title %q, got %q", i, expectedTitles[i], entry.Title)
		}
		if paragraphs[entry.Paragraph] != entry.Title {
			t.Errorf("Entry %d: paragraph %d is %q, want heading text", i, entry.Paragraph, paragraphs[entry.Paragraph])
		}
	}

	if toc[0].Preview != "This is the introduction." {
		t.Errorf("Preview = %q, want first paragraph after heading", toc[0].Preview)
	}

	// Paragraph indices should be monotonically increasing
	lastIdx := -1
	for i, entry := range toc {
		if entry.Paragraph <= lastIdx {
			t.Errorf("Entry %d: paragraph %d is not after previous %d", i, entry.Paragraph, lastIdx)
		}
		lastIdx = entry.Paragraph
	}
}

func TestMarkdownInlineAndBlocks(t *testing.T) {
	source := "Some *emphasis* and `code` spans\nwrapped onto two lines.\n\n" +
		"```\nfmt.Println(\"not read\")\n```\n\n" +
		"- first item\n- second item\n\n" +
		"> quoted text\n\n" +
		"See <https://example.com> for more.\n"

	paragraphs, toc := parseMarkdown([]byte(source))

	expected := []string{
		"Some emphasis and code spans wrapped onto two lines.",
		"first item",
		"second item",
		"quoted text",
		"See https://example.com for more.",
	}
	if !reflect.DeepEqual(paragraphs, expected) {
		t.Errorf("paragraphs = %q, want %q", paragraphs, expected)
	}
	if len(toc) != 0 {
		t.Errorf("Expected no TOC entries, got %d", len(toc))
	}
}

func TestMarkdownNoHeaders(t *testing.T) {
	tmpDir := t.TempDir()
	mdFile := filepath.Join(tmpDir, "plain.md")

	content := `This is just plain text.
No headers at all.

Just paragraphs.
`
	if err := os.WriteFile(mdFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	f := &MarkdownFormat{}
	paragraphs, toc, err := f.ExtractParagraphs(mdFile)
	if err != nil {
		t.Fatalf("ExtractParagraphs failed: %v", err)
	}

	if len(toc) != 0 {
		t.Errorf("Expected empty TOC for file without headers, got %d entries", len(toc))
	}

	expected := []string{"This is just plain text. No headers at all.", "Just paragraphs."}
	if !reflect.DeepEqual(paragraphs, expected) {
		t.Errorf("paragraphs = %q, want %q", paragraphs, expected)
	}
}
