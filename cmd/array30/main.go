package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"

	"array30/internal/cli"
	"array30/internal/config"
	"array30/internal/console"
	"array30/internal/dict"
	"array30/internal/dictdb"
	"array30/internal/emitter"
	"array30/internal/ime"
	"array30/internal/logging"
	"array30/internal/session"
	"array30/internal/tui"
	"array30/internal/watch"
)

func main() {
	opts, err := cli.Parse(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "array30: %v\n", err)
		os.Exit(1)
	}

	if opts.ShowHelp {
		fmt.Println(cli.Usage())
		return
	}

	cfg, cfgPath, err := config.Resolve(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "array30: %v\n", err)
		os.Exit(1)
	}
	applyOverrides(&cfg, opts)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "array30: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, cfgPath, opts.ShowStats); err != nil {
		if errors.Is(err, dict.ErrUnavailable) {
			fmt.Fprintf(os.Stderr, "array30: 無法載入字典檔：%v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "array30: %v\n", err)
		}
		os.Exit(1)
	}
}

func applyOverrides(cfg *config.Config, opts cli.Options) {
	if opts.UseBig {
		cfg.Tables.UseBig = true
	}
	if opts.Frontend != "" {
		cfg.Frontend.Kind = opts.Frontend
	}
	if opts.TableDir != "" {
		cfg.Tables.Dir = opts.TableDir
	}
	if opts.CachePath != "" {
		cfg.Tables.CachePath = opts.CachePath
	}
	if opts.MirrorPath != "" {
		cfg.Frontend.MirrorPath = opts.MirrorPath
	}
	if opts.X11 {
		cfg.Frontend.X11 = true
	}
	if opts.Watch {
		cfg.Tables.Watch = true
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFile != "" {
		cfg.Log.File = opts.LogFile
	}
}

func run(cfg config.Config, cfgPath string, showStats bool) error {
	// Both front-ends own the terminal, so logs go nowhere unless a file is set.
	logOpts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File}
	if logOpts.File == "" && !showStats {
		logOpts.Writer = io.Discard
	}
	logCloser, err := logging.Setup(logOpts)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	logger := slog.Default()
	if cfgPath != "" {
		logger.Info("loaded settings", "path", cfgPath)
	}

	var store *dictdb.Store
	if cfg.Tables.CachePath != "" {
		store, err = dictdb.Open(cfg.Tables.CachePath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	loader := func() (ime.Dictionary, error) {
		return loadDictionary(cfg, store, logger)
	}
	tables, err := loader()
	if err != nil {
		return err
	}

	if showStats {
		return printStats(os.Stdout, tables)
	}

	outputs, err := openOutputs(cfg)
	if err != nil {
		return err
	}
	s := session.New(tables,
		session.WithOutput(outputs),
		session.WithLoader(loader),
		session.WithLogger(logger),
	)
	defer s.Close()

	var reloads <-chan watch.Event
	if cfg.Tables.Watch {
		w, err := watch.New(tablePaths(cfg), watch.DefaultDebounce)
		if err != nil {
			return err
		}
		w.Start()
		defer w.Stop()
		go func() {
			for err := range w.Errors() {
				logger.Warn("table watcher error", "error", err)
			}
		}()
		reloads = w.Events()
	}

	switch strings.ToLower(cfg.Frontend.Kind) {
	case config.FrontendTUI:
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("create screen: %w", err)
		}
		app := tui.New(screen, s, tui.Options{
			ShowHint:      cfg.Frontend.ShowHint,
			ShowRootTable: cfg.Frontend.ShowRootTable,
		}, logger)
		return app.Run(reloads)
	default:
		app := console.New(s, os.Stdout, console.Options{ShowHint: cfg.Frontend.ShowHint}, logger)
		return app.Run(reloads)
	}
}

// openOutputs opens every configured sink for committed text.
func openOutputs(cfg config.Config) (emitter.Output, error) {
	var outputs emitter.Multi
	if cfg.Frontend.MirrorPath != "" {
		mirror, err := emitter.OpenMirror(cfg.Frontend.MirrorPath)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, mirror)
	}
	if cfg.Frontend.X11 {
		x11, err := emitter.OpenX11("")
		if err != nil {
			_ = outputs.Close()
			return nil, err
		}
		outputs = append(outputs, x11)
	}
	return outputs, nil
}

func tablePaths(cfg config.Config) []string {
	return append([]string{cfg.PhrasePath(), cfg.CharPath()}, cfg.ExtraPaths()...)
}

func buildDictionary(cfg config.Config) (*dict.Dictionary, error) {
	d, err := dict.Load(cfg.PhrasePath(), cfg.CharPath())
	if err != nil {
		return nil, err
	}
	for _, path := range cfg.ExtraPaths() {
		extra := dict.New()
		if err := extra.LoadJSON(path); err != nil {
			return nil, err
		}
		d.Merge(extra)
	}
	return d, nil
}

// loadDictionary parses the text tables, or serves them from the SQLite
// cache when its fingerprint still matches the files on disk.
func loadDictionary(cfg config.Config, store *dictdb.Store, logger *slog.Logger) (ime.Dictionary, error) {
	if store == nil {
		d, err := buildDictionary(cfg)
		if err != nil {
			return nil, err
		}
		chars, phrases := d.Stats()
		logger.Info("tables loaded", "chars", chars, "phrases", phrases)
		return d, nil
	}

	fingerprint, err := dictdb.Fingerprint(tablePaths(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dict.ErrUnavailable, err)
	}
	if source, err := store.Source(); err == nil && source == fingerprint {
		logger.Info("using cached tables", "cache", cfg.Tables.CachePath)
		return store, nil
	}

	d, err := buildDictionary(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.Import(d, fingerprint); err != nil {
		return nil, err
	}
	chars, phrases := d.Stats()
	logger.Info("tables cached", "cache", cfg.Tables.CachePath, "chars", chars, "phrases", phrases)
	return store, nil
}

func printStats(w io.Writer, tables ime.Dictionary) error {
	var chars, phrases int
	switch t := tables.(type) {
	case *dict.Dictionary:
		chars, phrases = t.Stats()
	case *dictdb.Store:
		var err error
		if chars, phrases, err = t.Stats(); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "字根碼：%d\n詞彙碼：%d\n", chars, phrases)
	return err
}
