// Package extract turns PDFs, websites, and office documents into plain
// text plus any tabular content found along the way. Tables are returned
// separately so ingestion can run them through the table filter.
package extract

import "errors"

// Content is what an extractor produces: the document body and zero or
// more tables serialized as tab-separated rows.
type Content struct {
	Text   string
	Tables []string
}

var (
	// ErrUnsupportedFormat reports a file extension no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrSparseContent reports a website whose extracted text was too short
	// to be useful, usually a page that needs script execution or blocks
	// automated fetches.
	ErrSparseContent = errors.New("extracted text too short")
)
