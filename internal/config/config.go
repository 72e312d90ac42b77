package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

const (
	FrontendConsole = "console"
	FrontendTUI     = "tui"

	appDirName = "array30"
)

var searchNames = []string{"settings.ini", "settings.toml", "settings.yaml", "settings.yml"}

type Config struct {
	Tables   TablesConfig   `toml:"tables" yaml:"tables"`
	Frontend FrontendConfig `toml:"frontend" yaml:"frontend"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

type TablesConfig struct {
	Dir         string `toml:"dir" yaml:"dir"`
	PhraseFile  string `toml:"phrase_file" yaml:"phrase_file"`
	CharFile    string `toml:"char_file" yaml:"char_file"`
	BigCharFile string `toml:"big_char_file" yaml:"big_char_file"`
	UseBig      bool   `toml:"use_big" yaml:"use_big"`
	// Extra lists JSON tables merged after the text tables.
	Extra     []string `toml:"extra" yaml:"extra"`
	CachePath string   `toml:"cache" yaml:"cache"`
	Watch     bool     `toml:"watch" yaml:"watch"`
}

type FrontendConfig struct {
	Kind          string `toml:"kind" yaml:"kind"`
	ShowHint      bool   `toml:"show_hint" yaml:"show_hint"`
	ShowRootTable bool   `toml:"show_root_table" yaml:"show_root_table"`
	MirrorPath    string `toml:"mirror" yaml:"mirror"`
	// X11 types committed text into the focused X11 window.
	X11 bool `toml:"x11" yaml:"x11"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	File   string `toml:"file" yaml:"file"`
}

type ConfigError struct {
	msg string
}

func (e ConfigError) Error() string { return e.msg }

func Default() Config {
	return Config{
		Tables: TablesConfig{
			Dir:         "table",
			PhraseFile:  "array30-phrase-20210725.txt",
			CharFile:    filepath.Join("cin2", "ar30-regular-v2023-1.0-20251012.cin2"),
			BigCharFile: filepath.Join("cin2", "ar30-big-v2023-1.0-20251012.cin2"),
		},
		Frontend: FrontendConfig{
			Kind:          FrontendConsole,
			ShowHint:      true,
			ShowRootTable: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a settings file, choosing the parser by extension. A missing
// file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: %w", err)
	}
	if info.IsDir() {
		return cfg, fmt.Errorf("config: %s is a directory", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := loadINI(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadINI(path string, cfg *Config) error {
	file, err := ini.Load(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	tables := file.Section("tables")
	cfg.Tables.Dir = tables.Key("dir").MustString(cfg.Tables.Dir)
	cfg.Tables.PhraseFile = tables.Key("phrase_file").MustString(cfg.Tables.PhraseFile)
	cfg.Tables.CharFile = tables.Key("char_file").MustString(cfg.Tables.CharFile)
	cfg.Tables.BigCharFile = tables.Key("big_char_file").MustString(cfg.Tables.BigCharFile)
	cfg.Tables.UseBig = tables.Key("use_big").MustBool(cfg.Tables.UseBig)
	if tables.HasKey("extra") {
		cfg.Tables.Extra = tables.Key("extra").Strings(",")
	}
	cfg.Tables.CachePath = tables.Key("cache").MustString(cfg.Tables.CachePath)
	cfg.Tables.Watch = tables.Key("watch").MustBool(cfg.Tables.Watch)

	frontend := file.Section("frontend")
	cfg.Frontend.Kind = frontend.Key("kind").MustString(cfg.Frontend.Kind)
	cfg.Frontend.ShowHint = frontend.Key("show_hint").MustBool(cfg.Frontend.ShowHint)
	cfg.Frontend.ShowRootTable = frontend.Key("show_root_table").MustBool(cfg.Frontend.ShowRootTable)
	cfg.Frontend.MirrorPath = frontend.Key("mirror").MustString(cfg.Frontend.MirrorPath)
	cfg.Frontend.X11 = frontend.Key("x11").MustBool(cfg.Frontend.X11)

	log := file.Section("log")
	cfg.Log.Level = log.Key("level").MustString(cfg.Log.Level)
	cfg.Log.Format = log.Key("format").MustString(cfg.Log.Format)
	cfg.Log.File = log.Key("file").MustString(cfg.Log.File)
	return nil
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Frontend.Kind) {
	case FrontendConsole, FrontendTUI:
	default:
		return ConfigError{msg: fmt.Sprintf("invalid frontend '%s'", c.Frontend.Kind)}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return ConfigError{msg: fmt.Sprintf("invalid log level '%s'", c.Log.Level)}
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return ConfigError{msg: fmt.Sprintf("invalid log format '%s'", c.Log.Format)}
	}
	if strings.TrimSpace(c.Tables.PhraseFile) == "" || strings.TrimSpace(c.Tables.CharFile) == "" {
		return ConfigError{msg: "table file names must not be empty"}
	}
	return nil
}

// PhrasePath returns the phrase table path, relative to Tables.Dir unless
// absolute.
func (c Config) PhrasePath() string {
	return c.tablePath(c.Tables.PhraseFile)
}

// CharPath returns the big or regular cin2 table depending on Tables.UseBig.
func (c Config) CharPath() string {
	if c.Tables.UseBig && c.Tables.BigCharFile != "" {
		return c.tablePath(c.Tables.BigCharFile)
	}
	return c.tablePath(c.Tables.CharFile)
}

func (c Config) ExtraPaths() []string {
	paths := make([]string, 0, len(c.Tables.Extra))
	for _, name := range c.Tables.Extra {
		if name = strings.TrimSpace(name); name != "" {
			paths = append(paths, c.tablePath(name))
		}
	}
	return paths
}

func (c Config) tablePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Tables.Dir, name)
}

// Resolve loads cliPath when given; otherwise the first settings file found
// in the working directory, then in the user config directory. Without any,
// the defaults apply.
func Resolve(cliPath string) (Config, string, error) {
	if cliPath != "" {
		if _, err := os.Stat(cliPath); err != nil {
			return Default(), "", ConfigError{msg: fmt.Sprintf("failed to open settings: %v", err)}
		}
		cfg, err := Load(cliPath)
		return cfg, cliPath, err
	}

	dirs := make([]string, 0, 2)
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if configDir, err := os.UserConfigDir(); err == nil && configDir != "" {
		dirs = append(dirs, filepath.Join(configDir, appDirName))
	}
	for _, dir := range dirs {
		for _, name := range searchNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				return cfg, path, err
			}
		}
	}
	return Default(), "", nil
}
