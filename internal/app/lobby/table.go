package lobby

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"skirmish/internal/app/effect"
	"skirmish/internal/app/interaction"
	"skirmish/internal/app/match"
	"skirmish/internal/app/suspension"
	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"

	"go.uber.org/zap"
)

// table hosts one running match and the connections of its participants.
type table struct {
	id        string
	startedAt time.Time
	players   map[string]*game.Player
	names     []string

	runner   *match.Runner
	prompter *interaction.Prompter
	tracker  *suspension.Tracker
	sessions sessionListener
	logger   *zap.Logger
	done     chan struct{}

	mu    sync.Mutex
	conns map[string]Conn
}

func newTable(l *Lobby, m *game.Match, group []*seat) *table {
	logger := l.logger.With(zap.String("match_id", m.ID))
	t := &table{
		id:        m.ID,
		startedAt: l.deps.Now(),
		players:   make(map[string]*game.Player, len(m.Players)),
		logger:    logger,
		done:      make(chan struct{}),
		conns:     make(map[string]Conn, len(group)),
		sessions: sessionListener{
			matchID: m.ID,
			repo:    l.deps.Sessions,
			tx:      l.deps.TxManager,
			now:     l.deps.Now,
			logger:  logger,
		},
	}
	for _, p := range m.Players {
		t.players[p.Name] = p
		t.names = append(t.names, p.Name)
	}

	t.tracker = suspension.NewTracker(logger, l.deps.MatchMetrics, t.sessions, seatReleaser{t})
	t.prompter = interaction.NewPrompter(t.tracker, logger)
	for _, s := range group {
		t.prompter.Bind(s.name, s.ch)
		t.conns[s.name] = s.conn
	}
	m.Subscribe(t.broadcast)

	engine := effect.NewEngine(l.deps.Catalog, t.prompter, logger)
	t.runner = match.NewRunner(m, engine, t.prompter, t.tracker, match.Options{
		MinActive: l.cfg.MinPlayers,
		MaxTurns:  l.cfg.MaxTurns,
		Metrics:   l.deps.MatchMetrics,
		Logger:    logger,
	})
	return t
}

func (t *table) run(ctx context.Context) {
	t.sessions.open(t.names)

	res, err := t.runner.Run(ctx)
	if err != nil {
		t.logger.Warn("match ended early", zap.Error(err))
	}
	t.sessions.close(res)
	close(t.done)

	t.mu.Lock()
	conns := make([]Conn, 0, len(t.conns))
	for _, c := range t.conns {
		conns = append(conns, c)
	}
	t.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
}

// broadcast runs on the match goroutine and only enqueues frames.
func (t *table) broadcast(u game.Update) {
	frame, err := json.Marshal(protocol.Update{Type: protocol.KindUpdate, Payload: u})
	if err != nil {
		t.logger.Warn("encode update", zap.Error(err))
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.conns {
		c.Push(frame)
	}
}

func (t *table) finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// seated reports whether name holds a reachable seat in a match still running.
func (t *table) seated(name string) bool {
	if t.finished() {
		return false
	}
	_, ok := t.players[name]
	return ok && !t.tracker.IsSuspended(name)
}

func (t *table) suspendedPlayer(name string) (*game.Player, bool) {
	if t.finished() {
		return nil, false
	}
	p, ok := t.players[name]
	if !ok || !t.tracker.IsSuspended(name) {
		return nil, false
	}
	return p, true
}

// resume binds a fresh connection to a suspended seat. The participant plays again from its next turn.
func (t *table) resume(p *game.Player, conn Conn, ch *interaction.Channel) {
	t.mu.Lock()
	t.conns[p.Name] = conn
	t.mu.Unlock()
	t.prompter.Bind(p.Name, ch)
	t.tracker.OnResumed(p)
}

// disconnected suspends name when conn is still its current connection.
func (t *table) disconnected(name string, conn Conn) {
	if t.finished() {
		return
	}
	t.mu.Lock()
	current, ok := t.conns[name]
	if !ok || current != conn {
		t.mu.Unlock()
		return
	}
	delete(t.conns, name)
	t.mu.Unlock()

	t.prompter.Unbind(name)
	if p, ok := t.players[name]; ok {
		t.tracker.OnSuspended(p)
	}
}

// release drops and closes the current connection of a seat suspended by a
// channel failure, so the peer sees the link end and can reconnect to resume.
func (t *table) release(name string) {
	t.mu.Lock()
	conn, ok := t.conns[name]
	delete(t.conns, name)
	t.mu.Unlock()
	if !ok {
		return
	}
	t.prompter.Unbind(name)
	t.logger.Info("connection released", zap.String("player", name))
	_ = conn.Close()
}

type seatReleaser struct {
	t *table
}

func (r seatReleaser) OnSuspended(p *game.Player) { r.t.release(p.Name) }
func (r seatReleaser) OnResumed(*game.Player)     {}

func (t *table) summary() MatchSummary {
	s := MatchSummary{
		ID:        t.id,
		Players:   append([]string(nil), t.names...),
		Suspended: t.tracker.Suspended(),
		StartedAt: t.startedAt,
	}
	if res, ok := t.runner.Finished(); ok {
		s.Finished = true
		s.Result = &res
	}
	return s
}
