package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// minWebsiteTextLen is the threshold below which a page is considered to
// have produced no real content.
const minWebsiteTextLen = 50

var websiteClient = &http.Client{Timeout: 60 * time.Second}

// FromWebsite fetches the page and extracts its visible text and any
// <table> elements as tab-separated rows.
func FromWebsite(ctx context.Context, url string) (*Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := websiteClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}

	// Drop script and style bodies before collecting text.
	doc.Find("script, style, noscript").Remove()
	text := strings.TrimSpace(doc.Text())
	if len(text) < minWebsiteTextLen {
		return nil, fmt.Errorf("%w: the page may require script execution or block automated fetches", ErrSparseContent)
	}

	var tables []string
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if t := serializeTable(table); t != "" {
			tables = append(tables, t)
		}
	})

	return &Content{Text: text, Tables: tables}, nil
}

func serializeTable(table *goquery.Selection) string {
	var rows []string

	headers := table.Find("th").Map(func(_ int, th *goquery.Selection) string {
		return strings.TrimSpace(th.Text())
	})
	if len(headers) > 0 {
		rows = append(rows, strings.Join(headers, "\t"))
	}

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td").Map(func(_ int, td *goquery.Selection) string {
			return strings.TrimSpace(td.Text())
		})
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, "\t"))
		}
	})

	// A header with no data rows is not a table worth keeping.
	if len(rows) < 2 {
		return ""
	}
	return strings.Join(rows, "\n")
}
