package emitter

import "errors"

// Output receives text committed by the engine. Front-ends push only the
// newly committed part, as tracked by a Tracker.
type Output interface {
	SendText(text string) error
	Close() error
}

var (
	_ Output = (*Mirror)(nil)
	_ Output = (*WriterOutput)(nil)
	_ Output = (*X11Output)(nil)
	_ Output = Multi(nil)
	_ Output = Discard{}
)

// Discard drops all text.
type Discard struct{}

func (Discard) SendText(string) error { return nil }
func (Discard) Close() error          { return nil }

// Multi fans text out to several outputs. A failing output does not stop
// the others; the errors are joined.
type Multi []Output

func (m Multi) SendText(text string) error {
	var errs []error
	for _, out := range m {
		if err := out.SendText(text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, out := range m {
		if err := out.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
