package reader

import (
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownFormat implements Format for Markdown files.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

func (f *MarkdownFormat) Extract(filename string) (string, error) {
	paragraphs, _, err := f.ExtractParagraphs(filename)
	if err != nil {
		return "", err
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

// ExtractParagraphs parses the Markdown file and returns headings, paragraphs
// and list items as separate paragraphs. Headings also form the table of
// contents. Code blocks and raw HTML are not read aloud.
func (f *MarkdownFormat) ExtractParagraphs(filename string) ([]string, []TOCEntry, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, err
	}
	paragraphs, toc := parseMarkdown(source)
	return paragraphs, toc, nil
}

func parseMarkdown(source []byte) ([]string, []TOCEntry) {
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var (
		paragraphs []string
		toc        []TOCEntry
	)

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			if title := inlineText(node, source); title != "" {
				toc = append(toc, TOCEntry{
					Title:     title,
					Paragraph: len(paragraphs),
					Level:     node.Level - 1, // h1 = level 0, h2 = level 1, etc.
				})
				paragraphs = append(paragraphs, title)
			}
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph, *ast.TextBlock:
			if t := inlineText(node, source); t != "" {
				paragraphs = append(paragraphs, t)
			}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.ThematicBreak:
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})

	for i := range toc {
		if next := toc[i].Paragraph + 1; next < len(paragraphs) {
			toc[i].Preview = Preview(paragraphs[next], 10)
		}
	}

	return paragraphs, toc
}

// inlineText flattens the inline children of a block node into one line.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder

	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.AutoLink:
			b.Write(t.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.Image, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(b.String()), " ")
}
