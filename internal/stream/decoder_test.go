package stream

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/kailas-cloud/concord/internal/domain"
	"github.com/kailas-cloud/concord/internal/domain/criterion"
)

func collect(t *testing.T, d *Decoder) []Event {
	t.Helper()
	var out []Event
	for ev := range d.All() {
		out = append(out, ev)
	}
	return out
}

func types(events []Event) []Type {
	out := make([]Type, len(events))
	for i, ev := range events {
		out[i] = ev.Type()
	}
	return out
}

func equalTypes(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFramer_TwoFramesOneChunk(t *testing.T) {
	f := NewFramer(nil)
	events := f.Feed([]byte(frameStart + frameProgress))
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if s, ok := events[0].(Start); !ok || s.Total != 40320 {
		t.Errorf("events[0] = %#v, want Start{40320}", events[0])
	}
	if p, ok := events[1].(Progress); !ok || p.Percent != 50 || p.Current != 20160 {
		t.Errorf("events[1] = %#v, want Progress{50, 20160}", events[1])
	}
}

func TestFramer_SplitAtEveryBoundary(t *testing.T) {
	input := frameStart + frameProgress
	for cut := 0; cut <= len(input); cut++ {
		f := NewFramer(nil)
		events := f.Feed([]byte(input[:cut]))
		events = append(events, f.Feed([]byte(input[cut:]))...)
		got := types(events)
		if !equalTypes(got, []Type{TypeStart, TypeProgress}) {
			t.Fatalf("cut=%d: got %v", cut, got)
		}
		if f.pending() != 0 {
			t.Fatalf("cut=%d: %d bytes left pending", cut, f.pending())
		}
	}
}

func TestFramer_ByteByByte(t *testing.T) {
	input := frameStart + frameLog + frameResult
	f := NewFramer(nil)
	var events []Event
	for i := 0; i < len(input); i++ {
		events = append(events, f.Feed([]byte{input[i]})...)
	}
	if got := types(events); !equalTypes(got, []Type{TypeStart, TypeLog, TypeResult}) {
		t.Fatalf("got %v", got)
	}
}

func TestFramer_MalformedFramesDropped(t *testing.T) {
	var drops []*FrameError
	f := NewFramer(func(e *FrameError) { drops = append(drops, e) })

	input := frameStart +
		"data: {\"type\":\"progress\",\"percent\":\n\n" + // invalid JSON
		"data: {\"type\":\"teleport\"}\n\n" + // unknown tag
		"data: {\"type\":\"progress\",\"current\":5}\n\n" + // missing percent
		"data: {\"type\":\"result\",\"criteria\":{}}\n\n" + // no solutions
		"event: ping\n\n" + // no data prefix
		frameLog

	events := f.Feed([]byte(input))
	if got := types(events); !equalTypes(got, []Type{TypeStart, TypeLog}) {
		t.Fatalf("got %v, want [start log]", got)
	}
	if f.Dropped() != 5 || len(drops) != 5 {
		t.Errorf("dropped = %d (hook %d), want 5", f.Dropped(), len(drops))
	}
}

func TestFramer_ProgressPercentRange(t *testing.T) {
	tests := []struct {
		name    string
		percent string
		valid   bool
	}{
		{"zero", "0", true},
		{"hundred", "100", true},
		{"above", "150", false},
		{"negative", "-5", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFramer(nil)
			events := f.Feed([]byte("data: {\"type\":\"progress\",\"percent\":" + tc.percent + "}\n\n"))
			if tc.valid && (len(events) != 1 || f.Dropped() != 0) {
				t.Errorf("percent %s: events = %d, dropped = %d, want accepted", tc.percent, len(events), f.Dropped())
			}
			if !tc.valid && (len(events) != 0 || f.Dropped() != 1) {
				t.Errorf("percent %s: events = %d, dropped = %d, want dropped", tc.percent, len(events), f.Dropped())
			}
		})
	}
}

func TestFramer_CRLF(t *testing.T) {
	f := NewFramer(nil)
	input := strings.ReplaceAll(frameStart+frameLog, "\n", "\r\n")
	events := f.Feed([]byte(input[:len(frameStart)+1]))
	events = append(events, f.Feed([]byte(input[len(frameStart)+1:]))...)
	if got := types(events); !equalTypes(got, []Type{TypeStart, TypeLog}) {
		t.Fatalf("got %v", got)
	}
}

func TestFramer_NoSpaceAfterPrefix(t *testing.T) {
	f := NewFramer(nil)
	events := f.Feed([]byte("data:{\"type\":\"log\",\"message\":\"\"}\n\n"))
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if l := events[0].(Log); l.Message != "" {
		t.Errorf("message = %q, want empty", l.Message)
	}
}

func TestDecoder_ResultPayload(t *testing.T) {
	d := NewDecoder(strings.NewReader(frameResult))
	events := collect(t, d)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	res, ok := events[0].(Result)
	if !ok {
		t.Fatalf("expected Result, got %T", events[0])
	}
	o := res.Outcome

	if len(o.Criteria) != 2 {
		t.Fatalf("criteria = %d, want 2", len(o.Criteria))
	}
	rank := o.Criteria[criterion.SumRank]
	if rank.Objective != 4 {
		t.Errorf("k1_rank objective = %v, want 4", rank.Objective)
	}
	if len(rank.Solutions) != 1 || rank.Solutions[0].Items[0].Name != "Mercedes" {
		t.Errorf("unexpected k1_rank solutions: %+v", rank.Solutions)
	}
	if st := rank.Solutions[0].Stats; len(st) != 3 || st[1].Distance != 2 || st[0].Competence != 0.6 {
		t.Errorf("unexpected stats: %+v", st)
	}

	ham := o.Criteria[criterion.SumHamming]
	if len(ham.Solutions) != 2 {
		t.Errorf("k1_hamming tied solutions = %d, want 2", len(ham.Solutions))
	}
	if ham.Solutions[1].Order()[0] != "2" {
		t.Errorf("second tied solution order = %v", ham.Solutions[1].Order())
	}

	if len(o.Experts) != 3 || o.Experts[2].Name != "C" || o.Experts[1].Order[0] != "2" {
		t.Errorf("unexpected experts: %+v", o.Experts)
	}
	if o.ExecutionTime != 1500*time.Millisecond {
		t.Errorf("execution time = %v, want 1.5s", o.ExecutionTime)
	}
}

func TestDecoder_ObjectiveDerivedWhenMissing(t *testing.T) {
	frame := "data: {\"type\":\"result\",\"k2_hamming\":[{\"order\":[1,2],\"distances\":[3,1]}]}\n\n"
	d := NewDecoder(strings.NewReader(frame))
	if !d.Next() {
		t.Fatal("expected an event")
	}
	res := d.Event().(Result)
	if got := res.Outcome.Criteria[criterion.MaxHamming].Objective; got != 3 {
		t.Errorf("objective = %v, want 3 (max of distances)", got)
	}
}

func TestDecoder_InvalidResultOrderingDropped(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{"duplicate solution ids", "data: {\"type\":\"result\",\"k1_rank\":[{\"order\":[1,1,1]}]," +
			"\"inputs\":[{\"name\":\"A\",\"order\":[1,2,3]},{\"name\":\"B\",\"order\":[3,2,1]}]}\n\n"},
		{"duplicate tied solution ids", "data: {\"type\":\"result\",\"k1_hamming\":[{\"order\":[1,2,3]},{\"order\":[2,2,3]}]}\n\n"},
		{"empty solution id", "data: {\"type\":\"result\",\"k1_rank\":[{\"order\":[\"\",\"2\"]}]}\n\n"},
		{"duplicate input ids", "data: {\"type\":\"result\",\"k1_rank\":[{\"order\":[1,2,3]}]," +
			"\"inputs\":[{\"name\":\"A\",\"order\":[1,2,2]}]}\n\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var drops []*FrameError
			d := NewDecoder(strings.NewReader(frameStart+tc.frame+frameResult),
				WithDropHook(func(e *FrameError) { drops = append(drops, e) }))

			events := collect(t, d)
			if got := types(events); !equalTypes(got, []Type{TypeStart, TypeResult}) {
				t.Fatalf("got %v, want [start result]", got)
			}
			if res := events[1].(Result); len(res.Outcome.Criteria) != 2 {
				t.Errorf("expected the valid result to be delivered, got %+v", res.Outcome.Criteria)
			}
			if d.Dropped() != 1 || len(drops) != 1 {
				t.Fatalf("dropped = %d (hook %d), want 1", d.Dropped(), len(drops))
			}
			if !errors.Is(drops[0], domain.ErrInvalidOrdering) {
				t.Errorf("drop reason = %v, want ErrInvalidOrdering", drops[0])
			}
		})
	}
}

func TestDecoder_StopsAfterResult(t *testing.T) {
	d := NewDecoder(strings.NewReader(frameStart + frameResult + frameLog))
	got := types(collect(t, d))
	if !equalTypes(got, []Type{TypeStart, TypeResult}) {
		t.Fatalf("got %v, want [start result]", got)
	}
	if d.Next() {
		t.Error("Next after end must return false")
	}
	if d.Event() != nil {
		t.Error("Event after end must be nil")
	}
}

func TestDecoder_SmallChunks(t *testing.T) {
	input := frameStart + frameProgress + frameLog + frameResult
	d := NewDecoder(iotest.OneByteReader(strings.NewReader(input)), withChunkSize(7))
	got := types(collect(t, d))
	if !equalTypes(got, []Type{TypeStart, TypeProgress, TypeLog, TypeResult}) {
		t.Fatalf("got %v", got)
	}
	if d.Err() != nil {
		t.Errorf("unexpected error: %v", d.Err())
	}
}

func TestDecoder_UnterminatedTailDiscarded(t *testing.T) {
	d := NewDecoder(strings.NewReader(frameStart + "data: {\"type\":\"log\",\"message\":\"cut\"}"))
	got := types(collect(t, d))
	if !equalTypes(got, []Type{TypeStart}) {
		t.Fatalf("got %v, want [start]", got)
	}
	if d.Err() != nil {
		t.Errorf("clean EOF must not report an error, got %v", d.Err())
	}
}

func TestDecoder_ReadErrorStopsQuietly(t *testing.T) {
	boom := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader(frameStart+frameProgress), iotest.ErrReader(boom))
	d := NewDecoder(r)
	drops := 0
	d2 := NewDecoder(strings.NewReader("data: nope\n\n"+frameLog), WithDropHook(func(*FrameError) { drops++ }))

	got := types(collect(t, d))
	if !equalTypes(got, []Type{TypeStart, TypeProgress}) {
		t.Fatalf("got %v", got)
	}
	if !errors.Is(d.Err(), boom) {
		t.Errorf("Err() = %v, want %v", d.Err(), boom)
	}

	if got := types(collect(t, d2)); !equalTypes(got, []Type{TypeLog}) {
		t.Fatalf("got %v", got)
	}
	if drops != 1 || d2.Dropped() != 1 {
		t.Errorf("drops = %d, Dropped() = %d, want 1", drops, d2.Dropped())
	}
}

func TestDecoder_DataAndErrorInSameRead(t *testing.T) {
	boom := errors.New("aborted")
	d := NewDecoder(&dataThenError{data: []byte(frameLog), err: boom})
	got := types(collect(t, d))
	if !equalTypes(got, []Type{TypeLog}) {
		t.Fatalf("got %v", got)
	}
	if !errors.Is(d.Err(), boom) {
		t.Errorf("Err() = %v", d.Err())
	}
}

func TestDecoder_AllStopsEarly(t *testing.T) {
	d := NewDecoder(strings.NewReader(frameStart + frameProgress + frameLog))
	for range d.All() {
		break
	}
	if !d.Next() || d.Event().Type() != TypeProgress {
		t.Error("iteration must resume where it stopped")
	}
}

// dataThenError returns its data and an error from the same Read call.
type dataThenError struct {
	data []byte
	err  error
	read bool
}

func (r *dataThenError) Read(p []byte) (int, error) {
	if r.read {
		return 0, r.err
	}
	r.read = true
	return copy(p, r.data), r.err
}
