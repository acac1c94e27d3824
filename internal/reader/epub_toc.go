package reader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
)

// NCX XML structures for parsing toc.ncx
type ncx struct {
	NavMap navMap `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	ID        string     `xml:"id,attr"`
	PlayOrder int        `xml:"playOrder,attr"`
	Label     navLabel   `xml:"navLabel"`
	Content   navContent `xml:"content"`
	Children  []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

// spineInfo locates the first paragraph of a spine item.
type spineInfo struct {
	paragraph int
	preview   string
}

func readTOC(filename string, book *epub.Rootfile, spine map[string]spineInfo) ([]TOCEntry, error) {
	ncxData, err := findAndReadNCX(filename, book)
	if err != nil {
		return nil, err
	}

	var toc ncx
	if err := xml.Unmarshal(ncxData, &toc); err != nil {
		return nil, fmt.Errorf("failed to parse NCX: %w", err)
	}

	return flattenNavPoints(toc.NavMap.NavPoints, spine, 0), nil
}

func findAndReadNCX(filename string, book *epub.Rootfile) ([]byte, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var ncxPath string
	for _, item := range book.Manifest.Items {
		if item.MediaType == "application/x-dtbncx+xml" {
			ncxPath = item.HREF
			break
		}
	}
	if ncxPath == "" {
		for _, f := range zr.File {
			if strings.HasSuffix(strings.ToLower(f.Name), ".ncx") {
				ncxPath = f.Name
				break
			}
		}
	}

	if ncxPath == "" {
		return nil, fmt.Errorf("no NCX file found in EPUB")
	}

	for _, f := range zr.File {
		if f.Name == ncxPath || strings.HasSuffix(f.Name, "/"+ncxPath) || path.Base(f.Name) == path.Base(ncxPath) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}

	return nil, fmt.Errorf("NCX file %s not found in archive", ncxPath)
}

// baseName strips any directory and fragment from an href.
func baseName(href string) string {
	if idx := strings.Index(href, "#"); idx != -1 {
		href = href[:idx]
	}
	return path.Base(href)
}

func flattenNavPoints(points []navPoint, spine map[string]spineInfo, level int) []TOCEntry {
	var entries []TOCEntry

	for _, np := range points {
		href := np.Content.Src
		if idx := strings.Index(href, "#"); idx != -1 {
			href = href[:idx]
		}

		info, ok := spine[href]
		if !ok {
			info, ok = spine[baseName(href)]
		}
		if !ok {
			// Entries pointing at spine items without text have nothing to read.
			entries = append(entries, flattenNavPoints(np.Children, spine, level)...)
			continue
		}

		entries = append(entries, TOCEntry{
			Title:     strings.TrimSpace(np.Label.Text),
			Preview:   info.preview,
			Paragraph: info.paragraph,
			Level:     level,
		})
		if len(np.Children) > 0 {
			entries = append(entries, flattenNavPoints(np.Children, spine, level+1)...)
		}
	}

	return entries
}
