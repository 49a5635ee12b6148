package models

import "time"

// DocumentKind identifies where an uploaded document came from.
type DocumentKind string

const (
	KindPDF     DocumentKind = "PDF"
	KindWebsite DocumentKind = "Website"
	KindFile    DocumentKind = "File"
)

// Document is one uploaded unit (a PDF, a website, or another file format).
type Document struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Kind DocumentKind `json:"type"`
}

// Chunk is a bounded slice of a document's extracted text, tagged with the
// id of the document it came from.
type Chunk struct {
	Content  string
	SourceID string
}

// ScoredChunk is a chunk returned from a similarity search.
type ScoredChunk struct {
	Chunk
	Similarity float32
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a session's chat history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryResult is the structured outcome of one question. Latency covers the
// whole retrieve-and-answer span, Retrieval just the index lookup.
type QueryResult struct {
	QueryID    string
	Answer     string
	ChunkCount int
	TokensIn   int
	TokensOut  int
	Latency    time.Duration
	Retrieval  time.Duration
}

// QueryLogEntry is one line of the monitoring log. Timestamp and Latency are
// in seconds, matching what the dashboard expects. Feedback stays nil until
// a feedback event fills it in.
type QueryLogEntry struct {
	ID              string  `json:"id"`
	Timestamp       float64 `json:"timestamp"`
	Query           string  `json:"query"`
	Answer          string  `json:"answer,omitempty"`
	Latency         float64 `json:"latency"`
	TokensInput     int     `json:"tokens_input"`
	TokensOutput    int     `json:"tokens_output"`
	ChunksRetrieved int     `json:"chunks_retrieved"`
	Error           *string `json:"error"`
	Feedback        *bool   `json:"feedback"`
}
