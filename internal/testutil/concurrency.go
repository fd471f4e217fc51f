package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/taskflow/internal/work"
)

// Recorder is a scheduler.Observer that records dispatch and completion
// events per node, plus a factory for sleeping work units that record when
// their bodies ran.
type Recorder struct {
	mu      sync.Mutex
	records map[string]*ExecutionRecord
	order   []string
	seq     atomic.Int64
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{records: make(map[string]*ExecutionRecord)}
}

func (r *Recorder) record(name string) *ExecutionRecord {
	rec, ok := r.records[name]
	if !ok {
		rec = &ExecutionRecord{}
		r.records[name] = rec
	}
	return rec
}

// OnDispatch implements scheduler.Observer.
func (r *Recorder) OnDispatch(name string) {
	seq := r.seq.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.record(name)
	rec.Dispatches++
	rec.DispatchSeq = seq
}

// OnComplete implements scheduler.Observer.
func (r *Recorder) OnComplete(name string, res work.Result) {
	seq := r.seq.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.record(name)
	rec.Completions++
	rec.CompleteSeq = seq
	rec.Outcome = res.Outcome
	r.order = append(r.order, name)
}

// Sleeper returns a unit that sleeps for d, honoring cancellation, and
// records its start and end times under name.
func (r *Recorder) Sleeper(name string, d time.Duration) work.Unit {
	return func(ctx context.Context) error {
		start := time.Now()
		var err error
		select {
		case <-time.After(d):
		case <-ctx.Done():
			err = ctx.Err()
		}
		end := time.Now()

		r.mu.Lock()
		rec := r.record(name)
		rec.Start, rec.End = start, end
		rec.Runs++
		r.mu.Unlock()
		return err
	}
}

// Get returns a copy of the record for name.
func (r *Recorder) Get(name string) ExecutionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[name]; ok {
		return *rec
	}
	return ExecutionRecord{}
}

// TotalDispatches sums dispatch events across all nodes.
func (r *Recorder) TotalDispatches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, rec := range r.records {
		total += rec.Dispatches
	}
	return total
}

// CompletionOrder returns node names in the order they completed.
func (r *Recorder) CompletionOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
