package emitter

import (
	"fmt"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
)

const (
	keysymReturn  xproto.Keysym = 0xff0d
	keysymTab     xproto.Keysym = 0xff09
	keysymUnicode xproto.Keysym = 0x01000000
)

// X11Output types committed text into the focused X11 window. Each rune is
// bound to a spare keycode and sent as a fake key press through XTEST; the
// keycode's original mapping is restored on Close.
type X11Output struct {
	mu       sync.Mutex
	conn     *xgb.Conn
	keycode  xproto.Keycode
	width    int
	original []xproto.Keysym
	closed   bool
}

// OpenX11 connects to display, or to $DISPLAY when display is empty.
func OpenX11(display string) (*X11Output, error) {
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	if display == "" {
		return nil, fmt.Errorf("x11 output: DISPLAY not set")
	}
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("x11 output: connect %s: %w", display, err)
	}
	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("x11 output: xtest: %w", err)
	}

	setup := xproto.Setup(conn)
	minCode, maxCode := setup.MinKeycode, setup.MaxKeycode
	count := byte(maxCode - minCode + 1)
	reply, err := xproto.GetKeyboardMapping(conn, minCode, count).Reply()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("x11 output: keyboard mapping: %w", err)
	}
	width := int(reply.KeysymsPerKeycode)
	if width <= 0 {
		conn.Close()
		return nil, fmt.Errorf("x11 output: invalid keysyms width %d", width)
	}

	offset := spareKeycode(reply.Keysyms, width)
	if offset < 0 {
		offset = int(count) - 1
	}
	out := &X11Output{
		conn:     conn,
		keycode:  minCode + xproto.Keycode(offset),
		width:    width,
		original: append([]xproto.Keysym(nil), reply.Keysyms[offset*width:(offset+1)*width]...),
	}
	if err := out.bind(0); err != nil {
		conn.Close()
		return nil, fmt.Errorf("x11 output: %w", err)
	}
	return out, nil
}

// spareKeycode returns the offset of the first keycode with no keysyms bound,
// or -1 when every keycode is in use.
func spareKeycode(keysyms []xproto.Keysym, width int) int {
	for offset := 0; (offset+1)*width <= len(keysyms); offset++ {
		empty := true
		for _, sym := range keysyms[offset*width : (offset+1)*width] {
			if sym != 0 {
				empty = false
				break
			}
		}
		if empty {
			return offset
		}
	}
	return -1
}

// keysymFor maps a rune to the keysym that types it. Carriage returns are
// skipped.
func keysymFor(r rune) (xproto.Keysym, bool) {
	switch {
	case r == '\n':
		return keysymReturn, true
	case r == '\t':
		return keysymTab, true
	case r == '\r', r < 0:
		return 0, false
	}
	return keysymUnicode | xproto.Keysym(r), true
}

func (x *X11Output) SendText(text string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return fmt.Errorf("x11 output closed")
	}
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		if r == utf8.RuneError && size == 1 {
			return fmt.Errorf("x11 output: invalid utf-8")
		}
		text = text[size:]
		sym, ok := keysymFor(r)
		if !ok {
			continue
		}
		if err := x.typeKeysym(sym); err != nil {
			return fmt.Errorf("x11 output: type %q: %w", r, err)
		}
	}
	return nil
}

func (x *X11Output) typeKeysym(sym xproto.Keysym) error {
	if err := x.bind(sym); err != nil {
		return err
	}
	if err := xtest.FakeInputChecked(x.conn, xproto.KeyPress, byte(x.keycode), 0, xproto.Window(0), 0, 0, 0).Check(); err != nil {
		return err
	}
	if err := xtest.FakeInputChecked(x.conn, xproto.KeyRelease, byte(x.keycode), 0, xproto.Window(0), 0, 0, 0).Check(); err != nil {
		return err
	}
	x.conn.Sync()
	return nil
}

func (x *X11Output) bind(sym xproto.Keysym) error {
	keysyms := make([]xproto.Keysym, x.width)
	keysyms[0] = sym
	return xproto.ChangeKeyboardMappingChecked(x.conn, 1, x.keycode, byte(x.width), keysyms).Check()
}

func (x *X11Output) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return nil
	}
	x.closed = true
	defer x.conn.Close()
	err := xproto.ChangeKeyboardMappingChecked(x.conn, 1, x.keycode, byte(x.width), x.original).Check()
	x.conn.Sync()
	return err
}
