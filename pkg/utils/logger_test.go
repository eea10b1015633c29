package utils

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logRecord struct {
	Level string `json:"level"`
	Msg   string `json:"msg"`
	Error string `json:"error"`
	Kind  string `json:"kind"`
	CID   string `json:"cid"`
}

func TestLogger_JSONModeWritesJSONWithCID(t *testing.T) {
	orig, _ := os.Getwd()
	dir := t.TempDir()
	defer os.Chdir(orig)
	_ = os.Chdir(dir)

	t.Setenv("GOALVIEW_JSON_LOGS", "1")
	t.Setenv("GOALVIEW_CORRELATION_ID", "abc123")

	l := GetLogger()
	l.Log("hello world")
	_ = l.Close()

	// lumberjack writes raw JSON lines; read the last one.
	f, err := os.Open(filepath.Join(".goalview", "goalview.log"))
	require.NoError(t, err)
	defer f.Close()
	var lastLine string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lastLine = scanner.Text()
	}
	require.NoError(t, scanner.Err())

	var rec logRecord
	require.NoError(t, json.Unmarshal([]byte(lastLine), &rec), "content=%q", lastLine)
	assert.Equal(t, "info", rec.Level)
	assert.Equal(t, "hello world", rec.Msg)
	assert.Equal(t, "abc123", rec.CID)
}

func TestLogger_LogErrorCarriesKind(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, true)

	l.LogError(fmt.Errorf("decode: %w", NewUnknownMethodError("goal", "bogus")))

	var rec logRecord
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "error", rec.Level)
	assert.Equal(t, string(KindUnknownMethod), rec.Kind)
	assert.Contains(t, rec.Error, "bogus")
}

func TestLogger_PlainMode(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, false)

	l.Logf("rendered %d goals", 3)
	l.LogError(errors.New("boom"))

	assert.Contains(t, buf.String(), "rendered 3 goals")
	assert.Contains(t, buf.String(), "Error: boom")
}
