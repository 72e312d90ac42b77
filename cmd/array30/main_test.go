package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"array30/internal/cli"
	"array30/internal/config"
	"array30/internal/dict"
	"array30/internal/dictdb"
	"array30/internal/logging"
)

func writeTables(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cin2"), 0o755))
	cfg := config.Default()
	cfg.Tables.Dir = dir
	require.NoError(t, os.WriteFile(cfg.PhrasePath(), []byte("abcd\t測試\n"), 0o644))
	require.NoError(t, os.WriteFile(cfg.CharPath(), []byte("%chardef begin\nabc\t測\n%chardef end\n"), 0o644))
	return cfg
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	applyOverrides(&cfg, cli.Options{
		UseBig:     true,
		Frontend:   config.FrontendTUI,
		TableDir:   "/srv/tables",
		CachePath:  "/tmp/cache.db",
		MirrorPath: "/dev/pts/9",
		X11:        true,
		Watch:      true,
		LogLevel:   "debug",
	})
	assert.True(t, cfg.Tables.UseBig)
	assert.Equal(t, config.FrontendTUI, cfg.Frontend.Kind)
	assert.Equal(t, "/srv/tables", cfg.Tables.Dir)
	assert.Equal(t, "/tmp/cache.db", cfg.Tables.CachePath)
	assert.Equal(t, "/dev/pts/9", cfg.Frontend.MirrorPath)
	assert.True(t, cfg.Frontend.X11)
	assert.True(t, cfg.Tables.Watch)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "info", config.Default().Log.Level)
}

func TestLoadDictionaryWithoutCache(t *testing.T) {
	cfg := writeTables(t)
	tables, err := loadDictionary(cfg, nil, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"測"}, tables.LookupChars("abc"))
	assert.Equal(t, []string{"測試"}, tables.LookupPhrases("abcd"))
}

func TestLoadDictionaryMissingTables(t *testing.T) {
	cfg := config.Default()
	cfg.Tables.Dir = t.TempDir()
	_, err := loadDictionary(cfg, nil, logging.Discard())
	assert.ErrorIs(t, err, dict.ErrUnavailable)
}

func TestLoadDictionaryFillsCache(t *testing.T) {
	cfg := writeTables(t)
	store, err := dictdb.Open(filepath.Join(t.TempDir(), "tables.db"))
	require.NoError(t, err)
	defer store.Close()

	tables, err := loadDictionary(cfg, store, logging.Discard())
	require.NoError(t, err)
	assert.Same(t, store, tables)
	assert.Equal(t, []string{"測"}, tables.LookupChars("abc"))

	source, err := store.Source()
	require.NoError(t, err)
	assert.NotEmpty(t, source)

	var out bytes.Buffer
	require.NoError(t, printStats(&out, tables))
	assert.Equal(t, "字根碼：1\n詞彙碼：1\n", out.String())
}

func TestOpenOutputs(t *testing.T) {
	cfg := config.Default()
	out, err := openOutputs(cfg)
	require.NoError(t, err)
	assert.Empty(t, out)

	path := filepath.Join(t.TempDir(), "mirror.txt")
	cfg.Frontend.MirrorPath = path
	out, err = openOutputs(cfg)
	require.NoError(t, err)
	require.NoError(t, out.SendText("測"))
	require.NoError(t, out.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "測", string(data))

	t.Setenv("DISPLAY", "")
	cfg.Frontend.X11 = true
	_, err = openOutputs(cfg)
	assert.Error(t, err)
}
