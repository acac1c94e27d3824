package reader

// TOCEntry represents a single entry in a table of contents
type TOCEntry struct {
	Title     string
	Preview   string
	Paragraph int
	Level     int
}

// ParagraphExtractor is an optional interface for formats that keep their
// own paragraph boundaries and headings.
type ParagraphExtractor interface {
	ExtractParagraphs(filename string) ([]string, []TOCEntry, error)
}
