package reader

import (
	"fmt"
	"io"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
)

// EPUBFormat implements Format for EPUB files.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }
func (f *EPUBFormat) Extract(filename string) (string, error) {
	paragraphs, _, err := f.ExtractParagraphs(filename)
	if err != nil {
		return "", err
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

// ExtractParagraphs reads every spine item in order and keeps the block
// structure of the XHTML as paragraphs.
func (f *EPUBFormat) ExtractParagraphs(filename string) ([]string, []TOCEntry, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, nil, fmt.Errorf("no rootfiles found in epub")
	}

	book := rc.Rootfiles[0]
	spine := make(map[string]spineInfo)

	var paragraphs []string
	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}

		item := extractParagraphsFromHTML(string(data))
		if len(item) == 0 {
			continue
		}

		if ref.Item.HREF != "" {
			info := spineInfo{paragraph: len(paragraphs), preview: Preview(item[0], 10)}
			spine[ref.Item.HREF] = info
			if _, ok := spine[baseName(ref.Item.HREF)]; !ok {
				spine[baseName(ref.Item.HREF)] = info
			}
		}
		paragraphs = append(paragraphs, item...)
	}

	toc, err := readTOC(filename, book, spine)
	if err != nil {
		// A missing or broken NCX only costs us the table of contents.
		toc = nil
	}

	return paragraphs, toc, nil
}

var (
	blockElements = map[string]bool{
		"p": true, "div": true, "section": true, "article": true, "blockquote": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"li": true, "dt": true, "dd": true, "pre": true, "tr": true, "figcaption": true,
		"header": true, "footer": true, "aside": true,
	}
	skippedElements = map[string]bool{
		"head": true, "script": true, "style": true, "title": true,
	}
)

// extractParagraphsFromHTML returns the text of each block element, with
// whitespace collapsed.
func extractParagraphsFromHTML(s string) []string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return nil
	}

	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if t := strings.Join(strings.Fields(cur.String()), " "); t != "" {
			out = append(out, t)
		}
		cur.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			cur.WriteString(n.Data)
			return
		case html.ElementNode:
			if skippedElements[n.Data] {
				return
			}
			if n.Data == "br" {
				cur.WriteString(" ")
				return
			}
		}

		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			flush()
		}
	}
	walk(doc)
	flush()

	return out
}
