package stream

import (
	"bytes"
	"fmt"
)

var (
	frameDelimiter = []byte("\n\n")
	dataPrefix     = []byte("data:")
)

// FrameError describes a frame that was dropped.
type FrameError struct {
	Frame string
	Err   error
}

func (e *FrameError) Error() string { return fmt.Sprintf("dropped frame %q: %v", e.Frame, e.Err) }
func (e *FrameError) Unwrap() error { return e.Err }

// Framer reassembles frames from arbitrary chunks. It holds whatever
// follows the last delimiter until the next chunk completes it.
type Framer struct {
	buf     []byte
	dropped int
	onDrop  func(*FrameError)
}

// NewFramer creates a Framer. onDrop, if non-nil, is called for every dropped frame.
func NewFramer(onDrop func(*FrameError)) *Framer {
	return &Framer{onDrop: onDrop}
}

// Feed appends a chunk and returns the events of every frame it completes,
// in arrival order.
func (f *Framer) Feed(chunk []byte) []Event {
	// Raw CR never appears inside JSON, so CRLF streams can be normalized bytewise.
	for _, b := range chunk {
		if b != '\r' {
			f.buf = append(f.buf, b)
		}
	}

	var events []Event
	for {
		i := bytes.Index(f.buf, frameDelimiter)
		if i < 0 {
			break
		}
		frame := f.buf[:i]
		f.buf = f.buf[i+len(frameDelimiter):]

		if ev, ok := f.decode(frame); ok {
			events = append(events, ev)
		}
	}

	// Compact so a long stream does not pin every consumed chunk.
	if len(f.buf) == 0 {
		f.buf = nil
	} else if cap(f.buf) > 4*len(f.buf) && cap(f.buf) > 64*1024 {
		f.buf = append([]byte(nil), f.buf...)
	}
	return events
}

// pending returns the number of buffered bytes of an unterminated frame.
func (f *Framer) pending() int { return len(f.buf) }

// Dropped returns the number of frames dropped so far.
func (f *Framer) Dropped() int { return f.dropped }

// Discard drops the unterminated tail at end of input.
// It returns the number of discarded bytes.
func (f *Framer) Discard() int {
	n := len(f.buf)
	f.buf = nil
	return n
}

func (f *Framer) decode(frame []byte) (Event, bool) {
	frame = bytes.TrimSpace(frame)
	if len(frame) == 0 {
		return nil, false
	}
	if !bytes.HasPrefix(frame, dataPrefix) {
		f.drop(frame, fmt.Errorf("missing %q prefix", dataPrefix))
		return nil, false
	}
	body := bytes.TrimSpace(frame[len(dataPrefix):])

	ev, err := parseFrame(body)
	if err != nil {
		f.drop(frame, err)
		return nil, false
	}
	return ev, true
}

func (f *Framer) drop(frame []byte, err error) {
	f.dropped++
	if f.onDrop != nil {
		f.onDrop(&FrameError{Frame: truncate(frame, 256), Err: err})
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
