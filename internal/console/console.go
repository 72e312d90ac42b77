// Package console is the line-mode terminal front-end. It redraws a short
// status block after every key and reads raw keys with eiannone/keyboard.
package console

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/eiannone/keyboard"
	"github.com/mattn/go-runewidth"

	"array30/internal/ime"
	"array30/internal/keymap"
	"array30/internal/session"
	"array30/internal/types"
	"array30/internal/watch"
)

const (
	clearScreen = "\x1b[H\x1b[2J"
	lineWidth   = 80
	emptyMark   = "（空）"
)

type actionKind int

const (
	actionNone actionKind = iota
	actionKey
	actionNextPage
	actionPrevPage
	actionClearOutput
	actionQuit
)

type action struct {
	kind actionKind
	r    rune
}

type Options struct {
	ShowHint bool
}

type App struct {
	session *session.Session
	out     io.Writer
	opts    Options
	logger  *slog.Logger
}

func New(s *session.Session, out io.Writer, opts Options, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{session: s, out: out, opts: opts, logger: logger}
}

// Run reads keys until Ctrl+C or Ctrl+Q. Reload requests are handled on the
// same loop, between keys.
func (a *App) Run(reloads <-chan watch.Event) error {
	keys, err := keyboard.GetKeys(16)
	if err != nil {
		return fmt.Errorf("open keyboard: %w", err)
	}
	defer keyboard.Close()

	a.logger.Info("console front-end started")
	defer a.logger.Info("console front-end stopped")

	for {
		if err := a.Draw(); err != nil {
			return err
		}
		select {
		case ev := <-keys:
			if ev.Err != nil {
				return fmt.Errorf("read key: %w", ev.Err)
			}
			if !a.apply(translate(ev.Rune, ev.Key)) {
				fmt.Fprint(a.out, clearScreen+"行列 30 輸入法 - 再見！\r\n")
				return nil
			}
		case ev, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			a.logger.Debug("tables changed", "paths", ev.Paths)
			_ = a.session.Reload()
		}
	}
}

// translate maps a keyboard event to an engine action. Control keys are
// turned into the runes the engine dispatches on.
func translate(r rune, key keyboard.Key) action {
	switch key {
	case keyboard.KeyCtrlC, keyboard.KeyCtrlQ:
		return action{kind: actionQuit}
	case keyboard.KeyBackspace, keyboard.KeyBackspace2:
		return action{kind: actionKey, r: keymap.Backspace}
	case keyboard.KeyEnter:
		return action{kind: actionKey, r: '\n'}
	case keyboard.KeySpace:
		return action{kind: actionKey, r: ' '}
	case keyboard.KeyEsc:
		return action{kind: actionKey, r: keymap.Escape}
	case keyboard.KeyPgdn, keyboard.KeyTab:
		return action{kind: actionNextPage}
	case keyboard.KeyPgup:
		return action{kind: actionPrevPage}
	case keyboard.KeyCtrlL:
		return action{kind: actionClearOutput}
	}
	if key == 0 && r != 0 {
		return action{kind: actionKey, r: r}
	}
	return action{kind: actionNone}
}

// apply runs an action and reports whether the loop should continue.
func (a *App) apply(act action) bool {
	switch act.kind {
	case actionQuit:
		return false
	case actionKey:
		result := a.session.HandleKey(act.r)
		if result == types.Committed {
			a.logger.Debug("committed", "output", a.session.Engine().OutputText())
		}
	case actionNextPage:
		a.session.NextPage()
	case actionPrevPage:
		a.session.PrevPage()
	case actionClearOutput:
		a.session.ClearOutput()
	}
	return true
}

func (a *App) Draw() error {
	_, err := io.WriteString(a.out, clearScreen+Render(a.session.Engine(), a.opts))
	return err
}

// Render formats the engine state as raw-mode terminal lines.
func Render(eng *ime.Engine, opts Options) string {
	state := eng.State()
	var b strings.Builder
	line := func(format string, args ...any) {
		text := fmt.Sprintf(format, args...)
		b.WriteString(runewidth.Truncate(text, lineWidth, "…"))
		b.WriteString("\r\n")
	}

	line("行列 30 輸入法 - 終端機模式")
	line("")
	line("鍵盤輸入：%s", state.RawKeys)
	line("")
	if state.CurrentCode == "" {
		line("編輯區：%s", emptyMark)
	} else {
		line("編輯區：碼 = %s", state.CurrentCode)
		if page := eng.CurrentPageCandidates(); len(page) > 0 {
			line("候選：%s%s", formatCandidates(page), pageIndicator(eng))
		} else {
			line("編輯區：無候選字")
		}
	}
	line("")
	output := state.Output
	if output == "" {
		output = emptyMark
	}
	line("輸出區：%s", output)
	line("")
	if opts.ShowHint {
		line("%s", state.Hint())
		line("")
	}
	line("按 Ctrl+C 或 Ctrl+Q 離開")
	return b.String()
}

func formatCandidates(page []ime.Candidate) string {
	parts := make([]string, len(page))
	for i, cand := range page {
		parts[i] = fmt.Sprintf("[%c]%s", keymap.SlotLabel(i), cand.Text)
	}
	return strings.Join(parts, " ")
}

func pageIndicator(eng *ime.Engine) string {
	if eng.PageCount() <= 1 {
		return ""
	}
	return fmt.Sprintf(" (%d/%d)", eng.PageIndex()+1, eng.PageCount())
}
