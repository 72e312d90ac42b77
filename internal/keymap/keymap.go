package keymap

import "unicode"

// Key is one of the 30 Array30 key symbols.
type Key int

const (
	KeyA Key = iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyPeriod
	KeySlash
	KeySemicolon
	KeyComma

	keyCount
)

const (
	PhraseMarker = '\''

	Backspace = '\x08'
	Delete    = '\x7f'
	Escape    = '\x1b'

	// MaxCodeLength bounds every lookup code regardless of input mode.
	MaxCodeLength = 4
)

type keyEntry struct {
	code rune
	// root is the column/row label printed on Array30 key charts:
	// digit column 1-0, then ^ top row, - home row, v bottom row.
	root string
}

var keyTable = [keyCount]keyEntry{
	KeyA:         {code: 'a', root: "1-"},
	KeyB:         {code: 'b', root: "5v"},
	KeyC:         {code: 'c', root: "3v"},
	KeyD:         {code: 'd', root: "3-"},
	KeyE:         {code: 'e', root: "3^"},
	KeyF:         {code: 'f', root: "4-"},
	KeyG:         {code: 'g', root: "5-"},
	KeyH:         {code: 'h', root: "6-"},
	KeyI:         {code: 'i', root: "8^"},
	KeyJ:         {code: 'j', root: "7-"},
	KeyK:         {code: 'k', root: "8-"},
	KeyL:         {code: 'l', root: "9-"},
	KeyM:         {code: 'm', root: "7v"},
	KeyN:         {code: 'n', root: "6v"},
	KeyO:         {code: 'o', root: "9^"},
	KeyP:         {code: 'p', root: "0^"},
	KeyQ:         {code: 'q', root: "1^"},
	KeyR:         {code: 'r', root: "4^"},
	KeyS:         {code: 's', root: "2-"},
	KeyT:         {code: 't', root: "5^"},
	KeyU:         {code: 'u', root: "7^"},
	KeyV:         {code: 'v', root: "4v"},
	KeyW:         {code: 'w', root: "2^"},
	KeyX:         {code: 'x', root: "2v"},
	KeyY:         {code: 'y', root: "6^"},
	KeyZ:         {code: 'z', root: "1v"},
	KeyPeriod:    {code: '.', root: "9v"},
	KeySlash:     {code: '/', root: "0v"},
	KeySemicolon: {code: ';', root: "0-"},
	KeyComma:     {code: ',', root: "8v"},
}

// FromRune maps a keystroke to its Array30 key. Letters are case-insensitive.
// The phrase marker shares KeySlash with '/'.
func FromRune(r rune) (Key, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return KeyA + Key(r-'a'), true
	case r >= 'A' && r <= 'Z':
		return KeyA + Key(r-'A'), true
	}
	switch r {
	case '.':
		return KeyPeriod, true
	case '/', PhraseMarker:
		return KeySlash, true
	case ';':
		return KeySemicolon, true
	case ',':
		return KeyComma, true
	}
	return 0, false
}

// Code returns the symbol the key contributes to a lookup code.
func (k Key) Code() rune {
	if k < 0 || k >= keyCount {
		return 0
	}
	return keyTable[k].code
}

// Root returns the key chart position label, e.g. "1^" for Q.
func (k Key) Root() string {
	if k < 0 || k >= keyCount {
		return ""
	}
	return keyTable[k].root
}

func (k Key) String() string {
	if c := k.Code(); c != 0 {
		return string(unicode.ToUpper(c))
	}
	return "?"
}

// Keys returns all 30 keys in table order.
func Keys() []Key {
	keys := make([]Key, keyCount)
	for i := range keys {
		keys[i] = Key(i)
	}
	return keys
}

// IsCodeSymbol reports whether r is one of the 30 normalized code symbols.
func IsCodeSymbol(r rune) bool {
	if r == PhraseMarker {
		return false
	}
	k, ok := FromRune(r)
	return ok && k.Code() == r
}

func IsBackspace(r rune) bool {
	return r == Backspace || r == Delete
}

func IsCommit(r rune) bool {
	return r == '\n' || r == '\r' || r == ' '
}

// DigitSlot maps '1'..'9' to slots 0..8 and '0' to slot 9.
func DigitSlot(r rune) (int, bool) {
	switch {
	case r >= '1' && r <= '9':
		return int(r - '1'), true
	case r == '0':
		return 9, true
	}
	return 0, false
}

// SlotLabel is the inverse of DigitSlot for display.
func SlotLabel(slot int) rune {
	switch {
	case slot >= 0 && slot < 9:
		return rune('1' + slot)
	case slot == 9:
		return '0'
	}
	return ' '
}
