package emitter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Mirror appends committed text to a file or terminal device, e.g. a PTY
// another program reads from.
type Mirror struct {
	mu     sync.Mutex
	file   *os.File
	closed bool
}

func OpenMirror(path string) (*Mirror, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open mirror %s: %w", path, err)
	}
	return &Mirror{file: file}, nil
}

func (m *Mirror) SendText(text string) error {
	if text == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("mirror closed")
	}
	if _, err := io.WriteString(m.file, text); err != nil {
		return fmt.Errorf("write mirror: %w", err)
	}
	return nil
}

func (m *Mirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.file.Close()
}

// WriterOutput sends committed text to any writer; Close is a no-op.
type WriterOutput struct {
	w io.Writer
}

func NewWriterOutput(w io.Writer) *WriterOutput {
	return &WriterOutput{w: w}
}

func (o *WriterOutput) SendText(text string) error {
	if text == "" {
		return nil
	}
	_, err := io.WriteString(o.w, text)
	return err
}

func (o *WriterOutput) Close() error { return nil }

// Tracker remembers how much of the engine's output buffer has already been
// sent. The buffer only grows until it is cleared, so the unsent part is the
// suffix past the last synced length.
type Tracker struct {
	sent string
}

// Delta returns the text of output not yet sent and marks it sent. After the
// buffer was cleared and refilled, the whole buffer counts as new.
func (t *Tracker) Delta(output string) string {
	if strings.HasPrefix(output, t.sent) {
		delta := output[len(t.sent):]
		t.sent = output
		return delta
	}
	t.sent = output
	return output
}

// Reset forgets what was sent, e.g. after the output buffer was cleared.
func (t *Tracker) Reset() {
	t.sent = ""
}

// Sync pushes the unsent part of output to out.
func (t *Tracker) Sync(out Output, output string) error {
	return out.SendText(t.Delta(output))
}
