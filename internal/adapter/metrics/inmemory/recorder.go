package inmemory

import "sync"

type Snapshot struct {
	MatchesStarted     uint64            `json:"matches_started"`
	MatchesFinished    uint64            `json:"matches_finished"`
	TurnsCompleted     uint64            `json:"turns_completed"`
	TurnsSkipped       uint64            `json:"turns_skipped"`
	Suspensions        uint64            `json:"suspensions"`
	Resumptions        uint64            `json:"resumptions"`
	ProtocolViolations uint64            `json:"protocol_violations"`
	ViolationsByKind   map[string]uint64 `json:"violations_by_kind"`
}

// Recorder implements ports.MatchMetrics and ports.ProtocolMetrics.
type Recorder struct {
	mu          sync.Mutex
	started     uint64
	finished    uint64
	completed   uint64
	skipped     uint64
	suspensions uint64
	resumptions uint64
	byKind      map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byKind: map[string]uint64{},
	}
}

func (r *Recorder) add(counter *uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*counter++
}

func (r *Recorder) RecordMatchStarted()  { r.add(&r.started) }
func (r *Recorder) RecordMatchFinished() { r.add(&r.finished) }
func (r *Recorder) RecordTurnCompleted() { r.add(&r.completed) }
func (r *Recorder) RecordTurnSkipped()   { r.add(&r.skipped) }
func (r *Recorder) RecordSuspension()    { r.add(&r.suspensions) }
func (r *Recorder) RecordResumption()    { r.add(&r.resumptions) }

func (r *Recorder) RecordProtocolViolation(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKind[kind]++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		MatchesStarted:   r.started,
		MatchesFinished:  r.finished,
		TurnsCompleted:   r.completed,
		TurnsSkipped:     r.skipped,
		Suspensions:      r.suspensions,
		Resumptions:      r.resumptions,
		ViolationsByKind: make(map[string]uint64, len(r.byKind)),
	}
	for k, v := range r.byKind {
		out.ViolationsByKind[k] = v
		out.ProtocolViolations += v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
