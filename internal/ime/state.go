package ime

import (
	"unicode/utf8"

	"array30/internal/keymap"
	"array30/internal/types"
)

const (
	hintNormal = "提示：按 ' 進入詞彙輸入；空白鍵上第一候選；數字鍵選字；Esc 清空"
	hintPhrase = "詞彙模式：輸入四碼後會自動查找詞庫"
)

// InputState holds the four text buffers of an entry plus its mode.
// RawKeys logs every keystroke since the last clear, including the phrase
// marker; CurrentCode is the lookup key and never exceeds MaxCodeLength.
type InputState struct {
	RawKeys     string
	CurrentCode string
	Composing   string
	Output      string
	Mode        types.InputMode

	hasPhraseMarker bool
}

func NewInputState() *InputState {
	return &InputState{Mode: types.ModeNormal}
}

func (s *InputState) AddKey(r rune) {
	s.RawKeys += string(r)
}

// PushCode appends a code symbol unless the code is already full.
func (s *InputState) PushCode(code rune) bool {
	if utf8.RuneCountInString(s.CurrentCode) >= keymap.MaxCodeLength {
		return false
	}
	s.CurrentCode += string(code)
	return true
}

func (s InputState) CodeLen() int {
	return utf8.RuneCountInString(s.CurrentCode)
}

// SetPhraseMode enters PhraseInput and records the marker. A second call
// while already in PhraseInput does nothing and returns false.
func (s *InputState) SetPhraseMode() bool {
	if s.Mode == types.ModePhraseInput {
		return false
	}
	s.Mode = types.ModePhraseInput
	s.hasPhraseMarker = true
	s.AddKey(keymap.PhraseMarker)
	return true
}

func (s InputState) HasPhraseMarker() bool {
	return s.hasPhraseMarker
}

// Backspace pops one symbol from CurrentCode and one from RawKeys together.
// Popping the phrase marker from RawKeys returns the mode to Normal.
func (s *InputState) Backspace() bool {
	code, ok := popRune(s.CurrentCode)
	if !ok {
		return false
	}
	raw, last, ok := popLast(s.RawKeys)
	if !ok {
		return false
	}
	s.CurrentCode = code
	s.RawKeys = raw
	if last == keymap.PhraseMarker {
		s.Mode = types.ModeNormal
		s.hasPhraseMarker = false
	}
	return true
}

// ClearComposing aborts the current entry. Output is kept.
func (s *InputState) ClearComposing() {
	s.RawKeys = ""
	s.Composing = ""
	s.CurrentCode = ""
	s.Mode = types.ModeNormal
	s.hasPhraseMarker = false
}

func (s *InputState) ClearAll() {
	s.ClearComposing()
	s.Output = ""
}

func (s *InputState) CommitComposing() {
	if s.Composing == "" {
		return
	}
	s.Output += s.Composing
	s.ClearComposing()
}

func (s *InputState) CommitDirect(text string) {
	s.Output += text
}

// Hint returns the guidance line for the current mode.
func (s InputState) Hint() string {
	switch s.Mode {
	case types.ModePhraseInput:
		return hintPhrase
	default:
		return hintNormal
	}
}

func popRune(s string) (string, bool) {
	rest, _, ok := popLast(s)
	return rest, ok
}

func popLast(s string) (string, rune, bool) {
	if s == "" {
		return s, 0, false
	}
	r, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size], r, true
}
