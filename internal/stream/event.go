// Package stream decodes the consensus engine's chunked event stream.
//
// The wire format is a sequence of frames separated by a blank line, each
// frame being "data: <json>" with a "type" tag of start, progress, log or
// result. Frames are reassembled across arbitrary chunk boundaries;
// malformed frames are dropped without interrupting the stream.
package stream

import "github.com/kailas-cloud/concord/internal/domain/outcome"

// Type tags a stream event.
type Type string

// Event type tags as they appear on the wire.
const (
	TypeStart    Type = "start"
	TypeProgress Type = "progress"
	TypeLog      Type = "log"
	TypeResult   Type = "result"
)

// Event is one decoded frame.
type Event interface {
	Type() Type
}

// Start announces the size of the search space.
type Start struct {
	Total int64
}

// Progress reports search completion.
type Progress struct {
	Percent int
	Current int64
}

// Log carries one engine log line.
type Log struct {
	Message string
}

// Result carries the search outcome. It is the last event of a stream.
type Result struct {
	Outcome *outcome.Outcome
}

func (Start) Type() Type    { return TypeStart }
func (Progress) Type() Type { return TypeProgress }
func (Log) Type() Type      { return TypeLog }
func (Result) Type() Type   { return TypeResult }
