package stream

import (
	"errors"
	"io"
	"iter"
)

const defaultChunkSize = 32 * 1024

// Decoder turns a reader into a finite, non-restartable sequence of events.
// The sequence ends at end of input, after the first Result event, or at
// the first read error, which Err then reports.
type Decoder struct {
	r      io.Reader
	framer *Framer
	chunk  []byte
	queue  []Event
	event  Event
	err    error
	done   bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithDropHook registers a callback for dropped frames.
func WithDropHook(fn func(*FrameError)) Option {
	return func(d *Decoder) { d.framer.onDrop = fn }
}

// withChunkSize sets the read buffer size.
func withChunkSize(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.chunk = make([]byte, n)
		}
	}
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{
		r:      r,
		framer: NewFramer(nil),
		chunk:  make([]byte, defaultChunkSize),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Next advances to the next event. It returns false when the sequence has ended.
func (d *Decoder) Next() bool {
	for {
		if len(d.queue) > 0 {
			d.event = d.queue[0]
			d.queue = d.queue[1:]
			if d.event.Type() == TypeResult {
				d.finish()
			}
			return true
		}
		if d.done {
			d.event = nil
			return false
		}

		n, err := d.r.Read(d.chunk)
		if n > 0 {
			d.queue = append(d.queue, d.framer.Feed(d.chunk[:n])...)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				d.err = err
			}
			// Events completed by the final chunk are still delivered.
			d.done = true
			d.framer.Discard()
		}
	}
}

func (d *Decoder) finish() {
	d.done = true
	d.queue = nil
	d.framer.Discard()
}

// Event returns the current event.
func (d *Decoder) Event() Event { return d.event }

// Err returns the read error that ended the sequence, or nil at clean end of input.
func (d *Decoder) Err() error { return d.err }

// Dropped returns the number of malformed frames skipped so far.
func (d *Decoder) Dropped() int { return d.framer.Dropped() }

// All returns the remaining events as an iterator.
func (d *Decoder) All() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for d.Next() {
			if !yield(d.Event()) {
				return
			}
		}
	}
}
