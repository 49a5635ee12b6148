package extract

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// FromPDF extracts the text of every page. Table detection inside PDFs is
// left to the layout heuristics of downstream tooling; only the plain text
// stream is produced here.
func FromPDF(r io.ReaderAt, size int64) (*Content, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	var text strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting text from page %d: %w", i, err)
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}

	return &Content{Text: text.String()}, nil
}

// FromPDFFile is the path-based variant used by the CLI.
func FromPDFFile(path string) (*Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return FromPDF(f, stat.Size())
}
