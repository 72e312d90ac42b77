package ime

import (
	"testing"

	"array30/internal/types"
)

func TestStateInitialization(t *testing.T) {
	state := NewInputState()
	if state.RawKeys != "" || state.Composing != "" || state.Output != "" || state.CurrentCode != "" {
		t.Fatalf("expected empty buffers, got %+v", state)
	}
	if state.Mode != types.ModeNormal {
		t.Fatalf("expected normal mode, got %v", state.Mode)
	}
}

func TestAddKeyTouchesRawKeysOnly(t *testing.T) {
	state := NewInputState()
	state.AddKey('a')
	state.AddKey('b')
	if state.RawKeys != "ab" {
		t.Fatalf("expected raw keys ab, got %q", state.RawKeys)
	}
	if state.CurrentCode != "" {
		t.Fatalf("AddKey must not touch the code, got %q", state.CurrentCode)
	}
}

func TestPushCodeIsBounded(t *testing.T) {
	state := NewInputState()
	for _, r := range "abcdef" {
		state.PushCode(r)
	}
	if state.CurrentCode != "abcd" {
		t.Fatalf("expected code capped at abcd, got %q", state.CurrentCode)
	}
}

func TestBackspaceLockstep(t *testing.T) {
	state := NewInputState()
	state.RawKeys = "abc"
	state.CurrentCode = "abc"
	if !state.Backspace() {
		t.Fatal("expected backspace to remove a symbol")
	}
	if state.RawKeys != "ab" || state.CurrentCode != "ab" {
		t.Fatalf("expected ab/ab, got %q/%q", state.RawKeys, state.CurrentCode)
	}
}

func TestBackspaceOnEmptyCodeChangesNothing(t *testing.T) {
	state := NewInputState()
	state.RawKeys = "x"
	if state.Backspace() {
		t.Fatal("expected false on empty code")
	}
	if state.RawKeys != "x" {
		t.Fatalf("raw keys must be untouched, got %q", state.RawKeys)
	}
}

func TestBackspaceOverMarkerLeavesPhraseMode(t *testing.T) {
	state := NewInputState()
	state.AddKey('a')
	state.PushCode('a')
	state.SetPhraseMode()
	if state.Mode != types.ModePhraseInput || !state.HasPhraseMarker() {
		t.Fatal("expected phrase mode with marker")
	}
	if !state.Backspace() {
		t.Fatal("expected backspace to succeed")
	}
	if state.Mode != types.ModeNormal || state.HasPhraseMarker() {
		t.Fatalf("popping the marker must restore normal mode, got %v", state.Mode)
	}
	if state.RawKeys != "a" || state.CurrentCode != "" {
		t.Fatalf("unexpected buffers %q/%q", state.RawKeys, state.CurrentCode)
	}
}

func TestSetPhraseModeReentryIsNoop(t *testing.T) {
	state := NewInputState()
	if !state.SetPhraseMode() {
		t.Fatal("expected first transition to succeed")
	}
	if state.SetPhraseMode() {
		t.Fatal("expected second transition to be refused")
	}
	if state.RawKeys != "'" {
		t.Fatalf("expected exactly one marker, got %q", state.RawKeys)
	}
}

func TestCommitComposing(t *testing.T) {
	state := NewInputState()
	state.Composing = "台灣"
	state.CurrentCode = "abc"
	state.CommitComposing()
	if state.Output != "台灣" {
		t.Fatalf("expected output 台灣, got %q", state.Output)
	}
	if state.Composing != "" || state.CurrentCode != "" {
		t.Fatal("expected composing and code to be cleared")
	}

	state.CurrentCode = "q"
	state.CommitComposing()
	if state.CurrentCode != "q" {
		t.Fatal("committing an empty composing buffer must be a no-op")
	}
}

func TestClearComposingKeepsOutput(t *testing.T) {
	state := NewInputState()
	state.Output = "好"
	state.RawKeys = "a'"
	state.CurrentCode = "a"
	state.Mode = types.ModePhraseInput
	state.ClearComposing()
	if state.Output != "好" {
		t.Fatalf("output must survive, got %q", state.Output)
	}
	if state.RawKeys != "" || state.CurrentCode != "" || state.Mode != types.ModeNormal {
		t.Fatalf("expected cleared entry, got %+v", state)
	}

	state.ClearAll()
	if state.Output != "" {
		t.Fatalf("ClearAll must clear output, got %q", state.Output)
	}
}

func TestHintFollowsMode(t *testing.T) {
	state := NewInputState()
	normal := state.Hint()
	state.SetPhraseMode()
	if state.Hint() == normal {
		t.Fatal("expected a different hint in phrase mode")
	}
}
