// Package audit implements secretd's audit sink: an append-only
// JSON-lines log of AuditLogEntry records. A sink that cannot be
// written to must not silently succeed, but it also must not abort the
// lifecycle operation that triggered it — a write failure is logged as
// a local warning and swallowed.
package audit

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/logging"
)

// Sink appends AuditLogEntry records to a JSON-lines file. Writes are
// serialized by mu so concurrent callers never interleave lines.
type Sink struct {
	path   string
	logger *logging.Logger

	mu   sync.Mutex
	file *os.File
}

// Open creates or appends to the audit log at path. logger receives a
// warning, never an error return, if a later Append fails.
func Open(path string, logger *logging.Logger) (*Sink, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	return &Sink{path: path, logger: logger, file: file}, nil
}

// Append writes entry as one JSON line. A marshal or write failure is
// logged as a warning and otherwise ignored: audit unavailability must
// never block a lifecycle operation from completing.
func (s *Sink) Append(entry domain.AuditLogEntry) {
	line, err := json.Marshal(entry)
	if err != nil {
		s.warn("failed to marshal audit entry", err)
		return
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(line); err != nil {
		s.warn("failed to write audit entry", err)
	}
}

func (s *Sink) warn(message string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.With("path", s.path, "error", err.Error()).Warn(message)
}

// Close releases the underlying file handle.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
