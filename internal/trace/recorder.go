package trace

import "time"

// DefaultTargetLogs is the number of samples a run aims for when the caller
// does not pick one.
const DefaultTargetLogs = 100

// now is the clock behind every sample timestamp.
var now = time.Now

// Sink is the minimal interface the sorting cores depend on.
//
// Tick is called once per counted operation. Callers treat a nil Sink as
// "not instrumented" and skip the call entirely, so plain runs pay only a
// nil check.
type Sink interface {
	Tick()
}

// Batch returns the sampling cadence: the number of operations between two
// consecutive samples, sized so a run over n elements records roughly target
// samples.
func Batch(n, target int) int {
	if target < 1 {
		target = 1
	}
	b := n / target
	if b < 1 {
		return 1
	}
	return b
}

// Recorder is the per-run accumulator: operation counter, cadence, start
// time and sample buffer.
//
// A Recorder is owned by exactly one run and is not safe for concurrent use.
// It is passed by pointer through the recursive calls of a sort so that
// every level charges the same counter.
type Recorder struct {
	batch   int64
	ops     int64
	start   time.Time
	samples []Sample
}

// NewRecorder creates a Recorder for an input of n elements aiming at target
// samples. The clock starts immediately; call Start to restart it.
func NewRecorder(n, target int) *Recorder {
	return &Recorder{batch: int64(Batch(n, target)), start: now()}
}

// Start resets the counter and the buffer and restarts the clock.
func (r *Recorder) Start() {
	r.ops = 0
	r.samples = nil
	r.start = now()
}

// Tick charges one operation and records a sample whenever the counter is a
// positive multiple of the cadence.
func (r *Recorder) Tick() {
	r.ops++
	if r.ops%r.batch == 0 {
		r.samples = append(r.samples, Sample{Ops: r.ops, MS: r.sinceStart()})
	}
}

// Ops returns the number of operations charged so far.
func (r *Recorder) Ops() int64 { return r.ops }

// BatchSize returns the cadence in operations.
func (r *Recorder) BatchSize() int64 { return r.batch }

// Elapsed returns the wall-clock milliseconds since Start, independent of
// sampling.
func (r *Recorder) Elapsed() float64 { return r.sinceStart() }

// Samples returns a copy of the recorded samples in recording order.
func (r *Recorder) Samples() []Sample {
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

func (r *Recorder) sinceStart() float64 {
	return float64(now().Sub(r.start)) / float64(time.Millisecond)
}
