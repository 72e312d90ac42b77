package types

type InputMode int

const (
	ModeNormal InputMode = iota
	ModePhraseInput
)

func (m InputMode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModePhraseInput:
		return "phrase"
	default:
		return "unknown"
	}
}

// KeyResult tells a front-end what a handled key requires: nothing, a redraw,
// or a redraw plus syncing of newly committed output.
type KeyResult int

const (
	NoChange KeyResult = iota
	NeedUpdate
	Committed
)

func (r KeyResult) String() string {
	switch r {
	case NoChange:
		return "no-change"
	case NeedUpdate:
		return "need-update"
	case Committed:
		return "committed"
	default:
		return "unknown"
	}
}
