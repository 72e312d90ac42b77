package ime

import (
	"array30/internal/keymap"
	"array30/internal/types"
)

// PageSize is the number of candidates bound to digit keys 1-9.
const PageSize = 9

// Dictionary is the lookup service the engine reads from. Both lookups are
// exact-match on the code; a nil or empty result means no entry.
type Dictionary interface {
	LookupChars(code string) []string
	LookupPhrases(code string) []string
}

// Engine feeds keystrokes into an InputState and keeps the candidate list for
// the current code. It is not safe for concurrent use; front-ends call it from
// a single event loop.
type Engine struct {
	dict       Dictionary
	state      *InputState
	candidates []Candidate
	pageIndex  int
}

func NewEngine(dict Dictionary) *Engine {
	return &Engine{dict: dict, state: NewInputState()}
}

// LoadDictionary swaps the lookup tables. Candidates computed from the old
// tables are dropped; the code in progress is looked up again.
func (e *Engine) LoadDictionary(dict Dictionary) {
	e.dict = dict
	e.updateCandidates()
}

// HandleKey processes one keystroke.
func (e *Engine) HandleKey(r rune) types.KeyResult {
	switch {
	case r == keymap.PhraseMarker:
		if n := e.state.CodeLen(); n >= 1 && n <= keymap.MaxCodeLength {
			e.state.SetPhraseMode()
			e.updateCandidates()
		}
		return types.NeedUpdate

	case keymap.IsBackspace(r):
		e.resetCandidates()
		if e.state.Backspace() {
			e.updateCandidates()
		}
		return types.NeedUpdate

	case r == keymap.Escape:
		e.state.ClearComposing()
		e.resetCandidates()
		return types.NeedUpdate

	case keymap.IsCommit(r):
		if len(e.candidates) > 0 {
			e.SelectCandidate(0)
			return types.NeedUpdate
		}
		if e.state.CurrentCode != "" {
			return types.NeedUpdate
		}
		return types.NoChange
	}

	if slot, ok := keymap.DigitSlot(r); ok {
		if len(e.candidates) == 0 {
			e.state.CommitDirect(string(r))
			return types.Committed
		}
		if e.SelectCandidate(slot) {
			return types.Committed
		}
		return types.NeedUpdate
	}

	if key, ok := keymap.FromRune(r); ok {
		e.resetCandidates()
		e.state.AddKey(r)
		e.state.PushCode(key.Code())
		e.updateCandidates()
		return types.NeedUpdate
	}

	if e.state.CurrentCode != "" {
		e.state.ClearComposing()
		e.resetCandidates()
	}
	e.state.CommitDirect(string(r))
	return types.Committed
}

func (e *Engine) resetCandidates() {
	e.candidates = nil
	e.pageIndex = 0
}

// updateCandidates recomputes the list for the current code. In phrase mode
// a phrase-table hit wins outright; otherwise the char table is used.
func (e *Engine) updateCandidates() {
	e.resetCandidates()

	code := e.state.CurrentCode
	if code == "" || e.dict == nil {
		return
	}

	if e.state.Mode == types.ModePhraseInput {
		for _, phrase := range e.dict.LookupPhrases(code) {
			e.candidates = append(e.candidates, phraseCandidate(phrase, code))
		}
	}
	if len(e.candidates) == 0 {
		for _, char := range e.dict.LookupChars(code) {
			e.candidates = append(e.candidates, charCandidate(char, code))
		}
	}
}

// SelectCandidate commits the candidate at index on the current page.
func (e *Engine) SelectCandidate(index int) bool {
	if index < 0 {
		return false
	}
	actual := e.pageIndex*PageSize + index
	if actual >= len(e.candidates) {
		return false
	}
	e.state.Composing = e.candidates[actual].Text
	e.state.CommitComposing()
	e.resetCandidates()
	return true
}

func (e *Engine) NextPage() bool {
	if e.pageIndex+1 < e.PageCount() {
		e.pageIndex++
		return true
	}
	return false
}

func (e *Engine) PrevPage() bool {
	if e.pageIndex > 0 {
		e.pageIndex--
		return true
	}
	return false
}

func (e *Engine) PageCount() int {
	return (len(e.candidates) + PageSize - 1) / PageSize
}

func (e *Engine) PageIndex() int {
	return e.pageIndex
}

// CurrentPageCandidates returns the visible slice of the candidate list.
// The slice aliases engine storage and must not be modified.
func (e *Engine) CurrentPageCandidates() []Candidate {
	start := e.pageIndex * PageSize
	if start >= len(e.candidates) {
		return nil
	}
	end := min(start+PageSize, len(e.candidates))
	return e.candidates[start:end]
}

func (e *Engine) Candidates() []Candidate {
	return e.candidates
}

// State returns a copy of the input state for rendering.
func (e *Engine) State() InputState {
	return *e.state
}

func (e *Engine) ClearOutput() {
	e.state.ClearAll()
	e.resetCandidates()
}

func (e *Engine) OutputText() string {
	return e.state.Output
}
