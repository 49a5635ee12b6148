package extract

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

// FromFile dispatches on the file extension.
func FromFile(path string) (*Content, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return FromPDFFile(path)
	case ".docx":
		return fromDOCX(path)
	case ".xlsx":
		return fromXLSX(path)
	case ".ods":
		return fromODS(path)
	case ".txt":
		return fromText(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func fromDOCX(path string) (*Content, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening DOCX: %w", err)
	}
	defer r.Close()

	// The docx package hands back WordprocessingML; strip the markup.
	raw := r.Editable().GetContent()
	raw = strings.ReplaceAll(raw, "</w:p>", "\n")
	text := html.UnescapeString(xmlTagPattern.ReplaceAllString(raw, ""))

	return &Content{Text: text}, nil
}

// fromXLSX surfaces every sheet as a table so the table filter decides
// whether it is worth indexing.
func fromXLSX(path string) (*Content, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}

	var tables []string
	for _, sheet := range f.Sheets {
		var rows []string
		for _, row := range sheet.Rows {
			var cells []string
			for _, cell := range row.Cells {
				cells = append(cells, cell.String())
			}
			if len(cells) > 0 {
				rows = append(rows, strings.Join(cells, "\t"))
			}
		}
		if len(rows) > 0 {
			tables = append(tables, fmt.Sprintf("Sheet: %s\n%s", sheet.Name, strings.Join(rows, "\n")))
		}
	}

	return &Content{Tables: tables}, nil
}

func fromODS(path string) (*Content, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening ODS: %w", err)
	}
	defer f.Close()

	var tables []string
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			if len(row) > 0 {
				lines = append(lines, strings.Join(row, "\t"))
			}
		}
		if len(lines) > 0 {
			tables = append(tables, fmt.Sprintf("Sheet: %s\n%s", sheetName, strings.Join(lines, "\n")))
		}
	}

	return &Content{Tables: tables}, nil
}

func fromText(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Content{Text: string(data)}, nil
}
