package calllog

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is one line of the append-only call audit log. Every dispatch
// attempt and webhook oddity is recorded here, success or failure.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Provider  string `json:"provider,omitempty"`
	LeadID    string `json:"leadId,omitempty"`
	Request   any    `json:"request,omitempty"`
	Response  any    `json:"response,omitempty"`
	Error     string `json:"error,omitempty"`
}

type Logger struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Logger {
	return &Logger{path: path}
}

// Log appends one JSONL record. Best effort: audit logging must never take
// a request down with it.
func (l *Logger) Log(entry Entry) {
	if l == nil {
		return
	}
	entry.Timestamp = time.Now().UTC().Format(time.RFC3339)

	line, err := json.Marshal(entry)
	if err != nil {
		log.Printf("calllog: marshal failed: %v", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		log.Printf("calllog: mkdir failed: %v", err)
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("calllog: open failed: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		log.Printf("calllog: write failed: %v", err)
	}
}
