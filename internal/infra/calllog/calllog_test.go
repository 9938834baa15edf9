package calllog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "calls.log")
	logger := New(path)

	logger.Log(Entry{Type: "call.create", Provider: "exotel", LeadID: "lead-1"})
	logger.Log(Entry{Type: "call.error", Provider: "exotel", LeadID: "lead-2", Error: "boom"})

	f, err := os.Open(path)
	assert.NoError(t, err)
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry Entry
		assert.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}

	assert.Len(t, entries, 2)
	assert.Equal(t, "call.create", entries[0].Type)
	assert.Equal(t, "lead-1", entries[0].LeadID)
	assert.NotEmpty(t, entries[0].Timestamp)
	assert.Equal(t, "boom", entries[1].Error)
}

func TestLogNilLoggerIsNoop(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Log(Entry{Type: "call.create"})
	})
}
