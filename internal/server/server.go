// Package server exposes the document QA service over HTTP: uploads,
// website ingestion, questions, feedback, and document management. Every
// failure is local to its request and reported as a structured
// status/message payload.
package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"omnidoc/internal/config"
	"omnidoc/internal/ingest"
	"omnidoc/internal/monitor"
	"omnidoc/internal/rag"
	"omnidoc/internal/session"
)

const defaultSessionToken = "default"

type Server struct {
	cfg      config.ServerConfig
	sessions *session.Store
	router   *ingest.Router
	rag      *rag.RAG
	sink     *monitor.Sink
}

func New(cfg config.ServerConfig, sessions *session.Store, router *ingest.Router, ragSvc *rag.RAG, sink *monitor.Sink) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		router:   router,
		rag:      ragSvc,
		sink:     sink,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload_pdf", s.handleUploadPDF)
	mux.HandleFunc("POST /upload_file", s.handleUploadFile)
	mux.HandleFunc("POST /process_website", s.handleProcessWebsite)
	mux.HandleFunc("POST /delete_document", s.handleDeleteDocument)
	mux.HandleFunc("POST /ask_question", s.handleAskQuestion)
	mux.HandleFunc("POST /feedback", s.handleFeedback)
	mux.HandleFunc("POST /clear_chat", s.handleClearChat)
	mux.HandleFunc("GET /documents", s.handleDocuments)
	return mux
}

func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("addr", s.cfg.Addr).Msg("Starting HTTP server")
	return srv.ListenAndServe()
}

// session returns the caller's session, created on first access.
func (s *Server) session(r *http.Request) *session.Session {
	token := r.Header.Get("X-Session-Token")
	if token == "" {
		token = defaultSessionToken
	}
	return s.sessions.GetOrCreate(token)
}

func (s *Server) maxUploadBytes() int64 {
	return int64(s.cfg.MaxUploadMB) << 20
}
