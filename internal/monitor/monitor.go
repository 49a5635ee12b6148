// Package monitor is the telemetry sink: an append-only newline-delimited
// JSON log of query records, one object per line, consumed by an external
// dashboard. The only mutation ever applied is filling in the feedback
// field of an existing entry.
package monitor

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"omnidoc/internal/models"
)

// ErrNotFound reports a feedback event that matched no logged query.
var ErrNotFound = errors.New("no log entry with that id")

// Sink serialises all file access behind one mutex so concurrent appends
// cannot interleave and the feedback read-modify-rewrite cannot lose them.
type Sink struct {
	mu   sync.Mutex
	path string
}

func NewSink(path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	return &Sink{path: path}, nil
}

// Log appends one entry as a single JSON line.
func (s *Sink) Log(entry models.QueryLogEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling log entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending log entry: %w", err)
	}
	return nil
}

// RecordFeedback locates the entry with the given query id and sets its
// feedback field, rewriting the file under the sink lock. An unknown id
// leaves the file untouched and returns ErrNotFound; nothing is appended.
func (s *Sink) RecordFeedback(queryID string, relevant bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("reading log file: %w", err)
	}

	lines := bytes.Split(data, []byte("\n"))
	found := false
	var out bytes.Buffer
	for _, line := range lines {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var entry models.QueryLogEntry
		if err := json.Unmarshal(line, &entry); err == nil && entry.ID == queryID {
			entry.Feedback = &relevant
			updated, err := json.Marshal(entry)
			if err != nil {
				return fmt.Errorf("marshaling updated entry: %w", err)
			}
			out.Write(updated)
			found = true
		} else {
			// Unrelated and malformed lines pass through untouched.
			out.Write(line)
		}
		out.WriteByte('\n')
	}

	if !found {
		return ErrNotFound
	}
	if err := os.WriteFile(s.path, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("rewriting log file: %w", err)
	}
	return nil
}

// Entries reads back all well-formed entries, skipping malformed lines the
// same way the dashboard does.
func (s *Sink) Entries() ([]models.QueryLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	var entries []models.QueryLogEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var entry models.QueryLogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			log.Warn().Err(err).Msg("Skipping malformed log line")
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning log file: %w", err)
	}
	return entries, nil
}
