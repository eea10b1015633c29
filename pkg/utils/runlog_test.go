package utils

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLog_WritesJSONLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	log, err := OpenSessionLog(dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(log.Path()), "session-"))

	log.LogEvent("applied", map[string]any{"message": Payload([]byte(`{"method":"reset"}`))})
	log.LogEvent("discarded", map[string]any{"message": Payload([]byte(`not json`)), "kind": "UnknownMethod"})
	require.NoError(t, log.Close())

	f, err := os.Open(log.Path())
	require.NoError(t, err)
	defer f.Close()

	var events []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		events = append(events, e)
	}
	require.Len(t, events, 2)

	assert.Equal(t, "applied", events[0]["type"])
	assert.Equal(t, map[string]any{"method": "reset"}, events[0]["message"])
	assert.NotEmpty(t, events[0]["ts"])
	assert.Equal(t, events[0]["session"], events[1]["session"])

	assert.Equal(t, "discarded", events[1]["type"])
	assert.Equal(t, "not json", events[1]["message"])
	assert.Equal(t, "UnknownMethod", events[1]["kind"])
}

func TestSessionLog_NilIsInert(t *testing.T) {
	var log *SessionLog
	log.LogEvent("applied", nil)
	assert.NoError(t, log.Close())
	assert.Empty(t, log.Path())
}
