package cli

import (
	"fmt"
	"strings"
)

type Options struct {
	ShowHelp   bool
	ShowStats  bool
	UseBig     bool
	Frontend   string
	ConfigPath string
	TableDir   string
	CachePath  string
	MirrorPath string
	X11        bool
	Watch      bool
	LogLevel   string
	LogFile    string
}

func Parse(args []string) (Options, error) {
	var opts Options
	for i := 1; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--help" || arg == "-h":
			opts.ShowHelp = true
		case arg == "--big" || arg == "-b":
			opts.UseBig = true
		case arg == "--console" || arg == "-c":
			opts.Frontend = "console"
		case arg == "--tui" || arg == "-t":
			opts.Frontend = "tui"
		case arg == "--x11":
			opts.X11 = true
		case arg == "--watch":
			opts.Watch = true
		case arg == "--stats":
			opts.ShowStats = true
		case hasOption(arg, "--config"):
			value, next, err := extractValue(arg, i, args)
			if err != nil {
				return Options{}, err
			}
			opts.ConfigPath = value
			i = next
		case hasOption(arg, "--table-dir"):
			value, next, err := extractValue(arg, i, args)
			if err != nil {
				return Options{}, err
			}
			opts.TableDir = value
			i = next
		case hasOption(arg, "--cache"):
			value, next, err := extractValue(arg, i, args)
			if err != nil {
				return Options{}, err
			}
			opts.CachePath = value
			i = next
		case hasOption(arg, "--mirror"):
			value, next, err := extractValue(arg, i, args)
			if err != nil {
				return Options{}, err
			}
			opts.MirrorPath = value
			i = next
		case hasOption(arg, "--log-level"):
			value, next, err := extractValue(arg, i, args)
			if err != nil {
				return Options{}, err
			}
			opts.LogLevel = value
			i = next
		case hasOption(arg, "--log-file"):
			value, next, err := extractValue(arg, i, args)
			if err != nil {
				return Options{}, err
			}
			opts.LogFile = value
			i = next
		default:
			return Options{}, fmt.Errorf("unknown option: %s", arg)
		}
	}
	return opts, nil
}

// hasOption matches "--name" and "--name=value" but not "--name-other".
func hasOption(arg, name string) bool {
	return arg == name || strings.HasPrefix(arg, name+"=")
}

func extractValue(current string, index int, args []string) (string, int, error) {
	if eq := strings.IndexRune(current, '='); eq >= 0 {
		return current[eq+1:], index, nil
	}
	if index+1 >= len(args) {
		return "", index, fmt.Errorf("option %s requires a value", current)
	}
	return args[index+1], index + 1, nil
}

func Usage() string {
	return `array30 - Array30 input method
Usage: array30 [options]

Options:
  --big, -b             Use the big character set table
  --console, -c         Line-mode terminal front-end (default)
  --tui, -t             Full-screen terminal front-end
  --config PATH         Settings file (.ini, .toml or .yaml; default: ./settings.ini if present)
  --table-dir DIR       Directory holding the phrase and cin2 tables (default: table)
  --cache PATH          SQLite cache of the compiled tables
  --mirror PATH         File or PTY that receives committed text
  --x11                 Type committed text into the focused X11 window
  --watch               Reload tables when they change on disk
  --log-level LEVEL     debug, info, warn or error
  --log-file PATH       Write logs to PATH instead of stderr
  --stats               Print table statistics and exit
  -h, --help            Show this help message

Tables:
  phrases: table/array30-phrase-20210725.txt
  chars:   table/cin2/ar30-regular-v2023-1.0-20251012.cin2
           or table/cin2/ar30-big-v2023-1.0-20251012.cin2 (--big)`
}
