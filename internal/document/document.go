// Package document holds the reading library: documents split into
// paragraphs, each with a reading position and bookmarks.
package document

import (
	"slices"
	"time"

	"github.com/rs/xid"
)

// Document is a named, ordered list of paragraphs with a reading position.
type Document struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Content          []string  `json:"content"`
	CurrentParagraph int       `json:"currentParagraph"`
	Bookmarks        []int     `json:"bookmarks"`
	Sections         []Section `json:"sections,omitempty"`
	Checksum         string    `json:"checksum,omitempty"`
}

// Section is a table of contents entry pointing at a paragraph.
type Section struct {
	Title     string `json:"title"`
	Paragraph int    `json:"paragraph"`
	Level     int    `json:"level"`
}

// Option customizes a document created by Store.Add.
type Option func(*Document)

// WithChecksum records the content hash of the imported source.
func WithChecksum(sum string) Option {
	return func(d *Document) { d.Checksum = sum }
}

// WithSections attaches a table of contents. Sections pointing outside the
// content are dropped.
func WithSections(sections []Section) Option {
	return func(d *Document) {
		d.Sections = nil
		for _, s := range sections {
			if s.Paragraph >= 0 && s.Paragraph < len(d.Content) {
				d.Sections = append(d.Sections, s)
			}
		}
	}
}

func newID() string {
	return xid.New().String()
}

// CreatedAt returns the creation time encoded in the document id.
func (d Document) CreatedAt() time.Time {
	id, err := xid.FromString(d.ID)
	if err != nil {
		return time.Time{}
	}
	return id.Time()
}

// Len returns the number of paragraphs.
func (d Document) Len() int {
	return len(d.Content)
}

// Paragraph returns the text at the reading position.
func (d Document) Paragraph() string {
	if d.CurrentParagraph >= 0 && d.CurrentParagraph < len(d.Content) {
		return d.Content[d.CurrentParagraph]
	}
	return ""
}

// AtStart reports whether the reading position is the first paragraph.
func (d Document) AtStart() bool {
	return d.CurrentParagraph <= 0
}

// AtEnd reports whether the reading position is the last paragraph.
func (d Document) AtEnd() bool {
	return d.CurrentParagraph >= len(d.Content)-1
}

// IsBookmarked reports whether paragraph is bookmarked.
func (d Document) IsBookmarked(paragraph int) bool {
	return slices.Contains(d.Bookmarks, paragraph)
}

// SectionAt returns the section containing paragraph.
func (d Document) SectionAt(paragraph int) (Section, bool) {
	for i := len(d.Sections) - 1; i >= 0; i-- {
		if d.Sections[i].Paragraph <= paragraph {
			return d.Sections[i], true
		}
	}
	return Section{}, false
}

func (d Document) clone() Document {
	d.Content = slices.Clone(d.Content)
	d.Bookmarks = slices.Clone(d.Bookmarks)
	if d.Bookmarks == nil {
		d.Bookmarks = []int{}
	}
	d.Sections = slices.Clone(d.Sections)
	return d
}

func (d Document) inRange(paragraph int) bool {
	return paragraph >= 0 && paragraph < len(d.Content)
}
