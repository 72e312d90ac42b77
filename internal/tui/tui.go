// Package tui is the full-screen terminal front-end built on tcell.
package tui

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"array30/internal/ime"
	"array30/internal/keymap"
	"array30/internal/session"
	"array30/internal/types"
	"array30/internal/watch"
)

type Options struct {
	ShowHint      bool
	ShowRootTable bool
}

var (
	styleTitle     = tcell.StyleDefault.Bold(true)
	styleLabel     = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleCode      = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleCandidate = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSlot      = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleHint      = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

type reloadRequest struct {
	paths []string
}

type App struct {
	screen  tcell.Screen
	session *session.Session
	opts    Options
	logger  *slog.Logger
}

func New(screen tcell.Screen, s *session.Session, opts Options, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{screen: screen, session: s, opts: opts, logger: logger}
}

// Run initialises the screen and processes events until the user quits.
// Reload requests are posted to the screen's event queue so that the engine
// is only touched from this loop.
func (a *App) Run(reloads <-chan watch.Event) error {
	if err := a.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer a.screen.Fini()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case ev, ok := <-reloads:
				if !ok {
					return
				}
				_ = a.screen.PostEvent(tcell.NewEventInterrupt(reloadRequest{paths: ev.Paths}))
			}
		}
	}()

	a.logger.Info("tui front-end started")
	defer a.logger.Info("tui front-end stopped")

	a.draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if !a.handleEvent(ev) {
			return nil
		}
		a.draw()
	}
}

// handleEvent reports whether the loop should continue.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventInterrupt:
		if req, ok := ev.Data().(reloadRequest); ok {
			a.logger.Debug("tables changed", "paths", req.paths)
			_ = a.session.Reload()
		}
	}
	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlQ:
		return false
	case tcell.KeyPgDn, tcell.KeyTab:
		a.session.NextPage()
	case tcell.KeyPgUp, tcell.KeyBacktab:
		a.session.PrevPage()
	case tcell.KeyCtrlL:
		a.session.ClearOutput()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.session.HandleKey(keymap.Backspace)
	case tcell.KeyEscape:
		a.session.HandleKey(keymap.Escape)
	case tcell.KeyEnter:
		a.session.HandleKey('\n')
	case tcell.KeyRune:
		if ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt) != 0 {
			return true
		}
		if a.session.HandleKey(ev.Rune()) == types.Committed {
			a.logger.Debug("committed", "output", a.session.Engine().OutputText())
		}
	}
	return true
}

func (a *App) draw() {
	a.screen.Clear()
	width, _ := a.screen.Size()
	eng := a.session.Engine()
	state := eng.State()

	y := 0
	a.drawText(0, y, styleTitle, "行列 30 輸入法")
	y += 2

	x := a.drawText(0, y, styleLabel, "鍵盤輸入：")
	a.drawText(x, y, tcell.StyleDefault, state.RawKeys)
	y++

	x = a.drawText(0, y, styleLabel, "編輯區：")
	if state.CurrentCode == "" {
		a.drawText(x, y, styleHint, "（空）")
	} else {
		x = a.drawText(x, y, styleCode, state.CurrentCode)
		if state.Mode == types.ModePhraseInput {
			a.drawText(x+1, y, styleHint, "[詞]")
		}
	}
	y++

	x = a.drawText(0, y, styleLabel, "候選：")
	a.drawCandidates(x, y, width, eng)
	y++

	x = a.drawText(0, y, styleLabel, "輸出區：")
	a.drawWrapped(x, y, width, state.Output)
	y += 2 + runewidth.StringWidth(state.Output)/max(width-x, 1)

	if a.opts.ShowHint {
		a.drawText(0, y, styleHint, state.Hint())
		y += 2
	}
	if a.opts.ShowRootTable {
		y = a.drawRootTable(y)
		y++
	}
	a.drawText(0, y, styleHint, "PgDn/Tab 下一頁  PgUp 上一頁  Ctrl+L 清空輸出  Ctrl+Q 離開")
	a.screen.Show()
}

func (a *App) drawCandidates(x, y, width int, eng *ime.Engine) {
	page := eng.CurrentPageCandidates()
	if len(page) == 0 {
		if eng.State().CurrentCode != "" {
			a.drawText(x, y, styleHint, "無候選字")
		}
		return
	}
	for i, cand := range page {
		item := runewidth.StringWidth(cand.Text) + 2
		if x+item > width {
			break
		}
		x = a.drawText(x, y, styleSlot, string(keymap.SlotLabel(i)))
		x = a.drawText(x, y, styleCandidate, cand.Text)
		x++
	}
	if eng.PageCount() > 1 {
		a.drawText(x, y, styleHint, fmt.Sprintf("(%d/%d)", eng.PageIndex()+1, eng.PageCount()))
	}
}

// drawRootTable shows the three key rows with each key's root label.
func (a *App) drawRootTable(y int) int {
	rows := [][]keymap.Key{
		{keymap.KeyQ, keymap.KeyW, keymap.KeyE, keymap.KeyR, keymap.KeyT, keymap.KeyY, keymap.KeyU, keymap.KeyI, keymap.KeyO, keymap.KeyP},
		{keymap.KeyA, keymap.KeyS, keymap.KeyD, keymap.KeyF, keymap.KeyG, keymap.KeyH, keymap.KeyJ, keymap.KeyK, keymap.KeyL, keymap.KeySemicolon},
		{keymap.KeyZ, keymap.KeyX, keymap.KeyC, keymap.KeyV, keymap.KeyB, keymap.KeyN, keymap.KeyM, keymap.KeyComma, keymap.KeyPeriod, keymap.KeySlash},
	}
	for _, row := range rows {
		x := 0
		for _, key := range row {
			x = a.drawText(x, y, styleCode, string(key.Code()))
			x = a.drawText(x, y, styleHint, key.Root())
			x += 2
		}
		y++
	}
	return y
}

// drawText puts s at (x, y) and returns the column after it. Wide runes
// take two cells.
func (a *App) drawText(x, y int, style tcell.Style, s string) int {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
	return x
}

func (a *App) drawWrapped(x, y, width int, s string) {
	start := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if x+w > width && x > start {
			x = start
			y++
		}
		a.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
		x += w
	}
}
