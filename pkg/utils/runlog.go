package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultSessionDir holds the session logs of goalview serve.
const DefaultSessionDir = ".goalview/sessions"

// SessionLog writes structured JSONL events for a single serve session.
type SessionLog struct {
	mu   sync.Mutex
	f    *os.File
	id   string
	path string
}

// OpenSessionLog creates dir/session-YYYYmmdd_HHMMSS.jsonl.
func OpenSessionLog(dir string) (*SessionLog, error) {
	if dir == "" {
		dir = DefaultSessionDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	name := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("session-%s.jsonl", name))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}
	return &SessionLog{f: f, id: name, path: path}, nil
}

// Path returns the file being written.
func (r *SessionLog) Path() string {
	if r == nil {
		return ""
	}
	return r.path
}

// Close closes the underlying file, if open.
func (r *SessionLog) Close() error {
	if r == nil || r.f == nil {
		return nil
	}
	return r.f.Close()
}

// LogEvent writes a JSON line with the provided type and fields. A nil log
// drops the event.
func (r *SessionLog) LogEvent(eventType string, fields map[string]any) {
	if r == nil || r.f == nil {
		return
	}
	payload := map[string]any{
		"ts":      time.Now().Format(time.RFC3339Nano),
		"session": r.id,
		"type":    eventType,
	}
	for k, v := range fields {
		payload[k] = v
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.f.Write(append(b, '\n'))
}

// Payload returns data as embedded JSON when it is valid JSON, else as a
// string.
func Payload(data []byte) any {
	if json.Valid(data) {
		return json.RawMessage(append([]byte(nil), data...))
	}
	return string(data)
}
