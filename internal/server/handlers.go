package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"omnidoc/internal/extract"
	"omnidoc/internal/helper"
	"omnidoc/internal/models"
	"omnidoc/internal/monitor"
)

type response map[string]any

func writeJSON(w http.ResponseWriter, payload response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, message string) {
	writeJSON(w, response{"status": "error", "message": message})
}

func (s *Server) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())
	if err := r.ParseMultipartForm(s.maxUploadBytes()); err != nil {
		writeError(w, "Invalid upload: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "No file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, "No selected file")
		return
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeError(w, "Invalid file type")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, "Reading upload: "+err.Error())
		return
	}

	content, err := extract.FromPDF(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		writeError(w, "Error processing PDF: "+err.Error())
		return
	}

	doc := models.Document{Name: filepath.Base(header.Filename), Kind: models.KindPDF}
	s.registerDocument(w, r, doc, content, "PDF uploaded and processed")
}

// handleUploadFile accepts the other supported formats (docx, xlsx, ods,
// txt) by staging the upload in a temp file for the extension-based
// extractors.
func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())
	if err := r.ParseMultipartForm(s.maxUploadBytes()); err != nil {
		writeError(w, "Invalid upload: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "No file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, "No selected file")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".pdf", ".docx", ".xlsx", ".ods", ".txt":
	default:
		writeError(w, "Invalid file type")
		return
	}

	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		writeError(w, "Staging upload: "+err.Error())
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeError(w, "Staging upload: "+err.Error())
		return
	}
	tmp.Close()

	content, err := extract.FromFile(tmp.Name())
	if err != nil {
		writeError(w, "Error processing file: "+err.Error())
		return
	}

	doc := models.Document{Name: filepath.Base(header.Filename), Kind: models.KindFile}
	if ext == ".pdf" {
		doc.Kind = models.KindPDF
	}
	s.registerDocument(w, r, doc, content, "File uploaded and processed")
}

func (s *Server) handleProcessWebsite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, "No URL provided")
		return
	}

	content, err := extract.FromWebsite(r.Context(), req.URL)
	if err != nil {
		writeError(w, "Error processing website: "+err.Error())
		return
	}

	doc := models.Document{Name: req.URL, Kind: models.KindWebsite}
	s.registerDocument(w, r, doc, content, "Website processed")
}

// registerDocument runs chunking + indexing + table handling and records
// the document in the caller's session. Nothing is registered if indexing
// fails.
func (s *Server) registerDocument(w http.ResponseWriter, r *http.Request, doc models.Document, content *extract.Content, message string) {
	id, err := helper.GenerateUUID()
	if err != nil {
		writeError(w, "Generating document id: "+err.Error())
		return
	}
	doc.ID = id

	if _, err := s.router.Ingest(r.Context(), content, doc.ID); err != nil {
		writeError(w, "Error indexing document: "+err.Error())
		return
	}
	s.session(r).AddDocument(doc)

	writeJSON(w, response{
		"status":   "success",
		"message":  message,
		"document": doc,
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, "No document ID provided")
		return
	}

	sess := s.session(r)
	if !sess.HasDocument(req.ID) {
		writeError(w, "Document not found")
		return
	}
	if err := s.router.Delete(r.Context(), req.ID); err != nil {
		writeError(w, "Error deleting document: "+err.Error())
		return
	}
	sess.RemoveDocument(req.ID)

	writeJSON(w, response{"status": "success", "message": "Document deleted"})
}

func (s *Server) handleAskQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeError(w, "No question provided")
		return
	}

	sess := s.session(r)
	if !sess.HasDocuments() {
		writeError(w, "Please upload at least one document first")
		return
	}

	result, err := s.rag.Query(r.Context(), req.Question)
	if err != nil {
		writeError(w, "Error getting response: "+err.Error())
		return
	}

	answer, err := helper.RenderMarkdown(result.Answer)
	if err != nil {
		answer = result.Answer
	}
	sess.AppendExchange(req.Question, answer)

	writeJSON(w, response{
		"status":           "success",
		"response":         answer,
		"query_id":         result.QueryID,
		"chunks_retrieved": result.ChunkCount,
		"tokens_input":     result.TokensIn,
		"tokens_output":    result.TokensOut,
		"latency":          result.Latency.Seconds(),
		"chat_history":     sess.History(),
	})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QueryID    string `json:"query_id"`
		IsRelevant bool   `json:"is_relevant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QueryID == "" {
		writeError(w, "No query ID provided")
		return
	}

	if err := s.sink.RecordFeedback(req.QueryID, req.IsRelevant); err != nil {
		if errors.Is(err, monitor.ErrNotFound) {
			writeError(w, "Query not found")
			return
		}
		writeError(w, "Error recording feedback: "+err.Error())
		return
	}

	writeJSON(w, response{"status": "success", "message": "Feedback recorded"})
}

func (s *Server) handleClearChat(w http.ResponseWriter, r *http.Request) {
	s.session(r).ClearHistory()
	writeJSON(w, response{"status": "success", "message": "Chat history cleared"})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, response{
		"status":    "success",
		"documents": s.session(r).Documents(),
	})
}
