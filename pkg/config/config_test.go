package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/goalview/pkg/goals"
	"github.com/alantheprice/goalview/pkg/utils"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Render.Width)
	assert.Equal(t, FormatText, cfg.Render.Format)
	assert.Equal(t, 54321, cfg.Serve.Port)
	assert.Equal(t, 256, cfg.Cache.Size)
	assert.Equal(t, utils.DefaultLogFile, cfg.Log.File)
	assert.False(t, cfg.Log.JSON)
}

func TestLoadFile_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `{
		"render": {"width": 60, "format": "html", "all_hyps": true},
		"cache": {"size": 16}
	}`)
	t.Setenv("GOALVIEW_SERVE_PORT", "9000")
	t.Setenv("GOALVIEW_RENDER_WIDTH", "72")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 72, cfg.Render.Width, "env overrides the file")
	assert.Equal(t, FormatHTML, cfg.Render.Format)
	assert.True(t, cfg.Render.AllHyps)
	assert.Equal(t, 16, cfg.Cache.Size)
	assert.Equal(t, 9000, cfg.Serve.Port)
	assert.Equal(t, goals.Options{AllHyps: true}, cfg.GoalOptions())
}

func TestLoad_UsesConfigEnv(t *testing.T) {
	path := writeConfig(t, `{"render": {"format": "ansi"}}`)
	t.Setenv("GOALVIEW_CONFIG", path)
	assert.Equal(t, path, Path())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, FormatANSI, cfg.Render.Format)
}

func TestLoadFile_Invalid(t *testing.T) {
	_, err := LoadFile(writeConfig(t, `{"render": {"format": "pdf"}}`))
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)

	_, err = LoadFile(writeConfig(t, `{"serve": {"port": 70000}}`))
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)

	_, err = LoadFile(writeConfig(t, `{"render": `))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".goalview", "config.json")
	want := Config{
		Render: RenderConfig{Width: 100, Format: FormatANSI, Separator: "----", HideShelved: true},
		Serve:  ServeConfig{Port: 8080},
		Cache:  CacheConfig{Size: 32},
		Log:    LogConfig{File: "x.log", JSON: true},
	}
	require.NoError(t, Save(want, path))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
