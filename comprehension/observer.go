package comprehension

import "context"

// Observer receives per-tuple notifications from a running comprehension.
// Calls happen synchronously on the pulling goroutine, from inside the
// stages that already exist; observing adds no stages. Levels are 1-based.
type Observer interface {
	// Bound is called for each candidate tuple produced at level.
	Bound(ctx context.Context, level int, binder string)
	// Rejected is called for each candidate tuple the level's predicates drop.
	Rejected(ctx context.Context, level int, binder string)
	// Emitted is called for each output element the map produces.
	Emitted(ctx context.Context)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) Bound(context.Context, int, string)    {}
func (NopObserver) Rejected(context.Context, int, string) {}
func (NopObserver) Emitted(context.Context)               {}

// Tally is an Observer that counts notifications per binder in memory.
// The zero value is ready to use. It is not safe for concurrent use.
type Tally struct {
	Candidates map[string]int
	Dropped    map[string]int
	Results    int
}

// NewTally returns an empty Tally.
func NewTally() *Tally {
	return &Tally{Candidates: map[string]int{}, Dropped: map[string]int{}}
}

func (t *Tally) Bound(_ context.Context, _ int, binder string) {
	if t.Candidates == nil {
		t.Candidates = map[string]int{}
	}
	t.Candidates[binder]++
}

func (t *Tally) Rejected(_ context.Context, _ int, binder string) {
	if t.Dropped == nil {
		t.Dropped = map[string]int{}
	}
	t.Dropped[binder]++
}

func (t *Tally) Emitted(context.Context) { t.Results++ }
