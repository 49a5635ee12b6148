// Package session keeps per-client state: the documents a client has
// uploaded and its chat history. Sessions live for the life of the process;
// there is no eviction.
package session

import (
	"sync"

	"omnidoc/internal/models"
)

// Session is one client's uploads and conversation.
type Session struct {
	mu      sync.Mutex
	uploads map[string]models.Document
	history []models.Message
}

func newSession() *Session {
	return &Session{uploads: make(map[string]models.Document)}
}

func (s *Session) AddDocument(doc models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[doc.ID] = doc
}

// RemoveDocument reports whether the document was present.
func (s *Session) RemoveDocument(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.uploads[id]; !ok {
		return false
	}
	delete(s.uploads, id)
	return true
}

func (s *Session) HasDocument(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.uploads[id]
	return ok
}

func (s *Session) HasDocuments() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads) > 0
}

func (s *Session) Documents() []models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make([]models.Document, 0, len(s.uploads))
	for _, doc := range s.uploads {
		docs = append(docs, doc)
	}
	return docs
}

// AppendExchange records a question and its answer as a strict pair, in
// conversation order.
func (s *Session) AppendExchange(question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		models.Message{Role: models.RoleUser, Content: question},
		models.Message{Role: models.RoleAssistant, Content: answer},
	)
}

func (s *Session) History() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// Store is the session registry.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for the token, creating it on first
// access. Atomic under concurrent first access to the same token.
func (s *Store) GetOrCreate(token string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		sess = newSession()
		s.sessions[token] = sess
	}
	return sess
}
