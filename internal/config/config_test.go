package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, FrontendConsole, cfg.Frontend.Kind)
	assert.True(t, cfg.Frontend.ShowHint)
	assert.Equal(t, filepath.Join("table", "array30-phrase-20210725.txt"), cfg.PhrasePath())
	assert.Equal(t, filepath.Join("table", "cin2", "ar30-regular-v2023-1.0-20251012.cin2"), cfg.CharPath())

	cfg.Tables.UseBig = true
	assert.Equal(t, filepath.Join("table", "cin2", "ar30-big-v2023-1.0-20251012.cin2"), cfg.CharPath())
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadINI(t *testing.T) {
	path := writeSettings(t, "settings.ini", `
[tables]
dir = /opt/array30
use_big = true
extra = user.json, more.json
cache = /tmp/array30.db
watch = true

[frontend]
kind = tui
show_hint = false
mirror = /dev/pts/9
x11 = true

[log]
level = debug
format = json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/array30", cfg.Tables.Dir)
	assert.True(t, cfg.Tables.UseBig)
	assert.Equal(t, filepath.Join("/opt/array30", "cin2", "ar30-big-v2023-1.0-20251012.cin2"), cfg.CharPath())
	assert.Equal(t, []string{"/opt/array30/user.json", "/opt/array30/more.json"}, cfg.ExtraPaths())
	assert.Equal(t, "/tmp/array30.db", cfg.Tables.CachePath)
	assert.True(t, cfg.Tables.Watch)
	assert.Equal(t, FrontendTUI, cfg.Frontend.Kind)
	assert.False(t, cfg.Frontend.ShowHint)
	assert.True(t, cfg.Frontend.ShowRootTable, "unset keys keep their defaults")
	assert.Equal(t, "/dev/pts/9", cfg.Frontend.MirrorPath)
	assert.True(t, cfg.Frontend.X11)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadTOML(t *testing.T) {
	path := writeSettings(t, "settings.toml", `
[tables]
dir = "tables"
phrase_file = "/abs/phrase.txt"

[frontend]
kind = "tui"
show_root_table = false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/abs/phrase.txt", cfg.PhrasePath())
	assert.Equal(t, filepath.Join("tables", "cin2", "ar30-regular-v2023-1.0-20251012.cin2"), cfg.CharPath())
	assert.Equal(t, FrontendTUI, cfg.Frontend.Kind)
	assert.False(t, cfg.Frontend.ShowRootTable)
	assert.True(t, cfg.Frontend.ShowHint)
}

func TestLoadYAML(t *testing.T) {
	path := writeSettings(t, "settings.yaml", `
tables:
  use_big: true
  extra: [user.json]
log:
  level: warn
  file: /var/log/array30.log
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Tables.UseBig)
	assert.Equal(t, []string{filepath.Join("table", "user.json")}, cfg.ExtraPaths())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/var/log/array30.log", cfg.Log.File)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeSettings(t, "settings.ini", "[frontend]\nkind = gui\n")
	_, err := Load(path)
	require.Error(t, err)
	var cfgErr ConfigError
	assert.True(t, errors.As(err, &cfgErr))

	path = writeSettings(t, "settings.ini", "[log]\nlevel = loud\n")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsDirectory(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestResolveExplicitPathMustExist(t *testing.T) {
	_, _, err := Resolve(filepath.Join(t.TempDir(), "settings.ini"))
	var cfgErr ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestResolveSearchesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.toml"), []byte("[frontend]\nkind = \"tui\"\n"), 0o600))
	chdir(t, dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, path, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "settings.toml"), path)
	assert.Equal(t, FrontendTUI, cfg.Frontend.Kind)
}

func TestResolveFallsBackToDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, path, err := Resolve("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Default(), cfg)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
