package inmemory

import (
	"sync"

	"outpost/internal/app/ports"
)

type Snapshot struct {
	ActionTotal    uint64            `json:"action_total"`
	ActionSuccess  uint64            `json:"action_success"`
	ActionConflict uint64            `json:"action_conflict"`
	ActionFailure  uint64            `json:"action_failure"`
	ByAction       map[string]uint64 `json:"by_action"`
	ByTopic        map[string]uint64 `json:"by_topic"`
}

type Recorder struct {
	mu       sync.Mutex
	success  uint64
	conflict uint64
	failure  uint64
	byAction map[string]uint64
	byTopic  map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byAction: map[string]uint64{},
		byTopic:  map[string]uint64{},
	}
}

func (r *Recorder) RecordSuccess(actionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success++
	r.byAction[actionID]++
}

func (r *Recorder) RecordConflict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflict++
}

func (r *Recorder) RecordFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure++
}

// ObserveEvent counts bus traffic per topic. It matches the session listener signature.
func (r *Recorder) ObserveEvent(e ports.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTopic[e.Topic]++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		ActionSuccess:  r.success,
		ActionConflict: r.conflict,
		ActionFailure:  r.failure,
		ActionTotal:    r.success + r.conflict + r.failure,
		ByAction:       make(map[string]uint64, len(r.byAction)),
		ByTopic:        make(map[string]uint64, len(r.byTopic)),
	}
	for k, v := range r.byAction {
		out.ByAction[k] = v
	}
	for k, v := range r.byTopic {
		out.ByTopic[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
