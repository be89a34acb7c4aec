package suspension

import (
	"sort"
	"sync"

	"skirmish/internal/app/ports"
	"skirmish/internal/domain/game"

	"go.uber.org/zap"
)

// Tracker records which participants are unreachable and fans the events out to listeners.
// OnSuspended comes from the match goroutine, OnResumed from connection goroutines.
// Players are only touched by Sync, which the match goroutine calls between turns.
type Tracker struct {
	mu        sync.Mutex
	suspended map[string]bool

	listeners []ports.SuspensionListener
	metrics   ports.MatchMetrics
	logger    *zap.Logger
}

func NewTracker(logger *zap.Logger, metrics ports.MatchMetrics, listeners ...ports.SuspensionListener) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		suspended: map[string]bool{},
		listeners: listeners,
		metrics:   metrics,
		logger:    logger,
	}
}

func (t *Tracker) OnSuspended(p *game.Player) {
	t.mu.Lock()
	if t.suspended[p.Name] {
		t.mu.Unlock()
		return
	}
	t.suspended[p.Name] = true
	t.mu.Unlock()

	t.logger.Info("suspended", zap.String("player", p.Name))
	if t.metrics != nil {
		t.metrics.RecordSuspension()
	}
	for _, l := range t.listeners {
		l.OnSuspended(p)
	}
}

func (t *Tracker) OnResumed(p *game.Player) {
	t.mu.Lock()
	if !t.suspended[p.Name] {
		t.mu.Unlock()
		return
	}
	delete(t.suspended, p.Name)
	t.mu.Unlock()

	t.logger.Info("resumed", zap.String("player", p.Name))
	if t.metrics != nil {
		t.metrics.RecordResumption()
	}
	for _, l := range t.listeners {
		l.OnResumed(p)
	}
}

func (t *Tracker) IsSuspended(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.suspended[name]
}

// Sync copies the tracked state onto p and reports whether p is suspended.
func (t *Tracker) Sync(p *game.Player) bool {
	p.Suspended = t.IsSuspended(p.Name)
	return p.Suspended
}

func (t *Tracker) Suspended() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.suspended))
	for name := range t.suspended {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
