package lobby

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"skirmish/internal/app/interaction"
	"skirmish/internal/app/match"
	"skirmish/internal/app/ports"
	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"

	"go.uber.org/zap"
)

const MaxNicknameLength = 24

var (
	ErrNicknameTaken   = errors.New("nickname already taken")
	ErrInvalidNickname = errors.New("invalid nickname")
	ErrClosed          = errors.New("lobby closed")
)

// Conn is one accepted participant connection.
type Conn interface {
	ports.Transport
	ports.UpdatePusher
	// Done is closed once the connection is gone.
	Done() <-chan struct{}
	Close() error
}

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type Config struct {
	MinPlayers    int
	MaxPlayers    int
	Wait          time.Duration
	AnswerTimeout time.Duration
	Skulls        int
	// Seed makes deck shuffling reproducible; zero seeds from the clock.
	Seed     int64
	MaxTurns int
}

type Deps struct {
	Catalog         ports.Catalog
	Sessions        ports.ParticipantSessionRepository
	TxManager       ports.TxManager
	Tokens          TokenVerifier
	MatchMetrics    ports.MatchMetrics
	ProtocolMetrics ports.ProtocolMetrics
	Logger          *zap.Logger
	Now             func() time.Time
}

// Lobby admits connections, forms groups and hosts the running matches.
type Lobby struct {
	cfg    Config
	deps   Deps
	logger *zap.Logger
	ctx    context.Context

	mu      sync.Mutex
	waiting []*seat
	timer   *time.Timer
	tables  map[string]*table
	order   []string
	formed  int64
	wg      sync.WaitGroup
}

type seat struct {
	name string
	conn Conn
	ch   *interaction.Channel
}

// New builds a lobby whose matches run until ctx ends.
func New(ctx context.Context, cfg Config, deps Deps) *Lobby {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.MinPlayers < 1 {
		cfg.MinPlayers = 1
	}
	if cfg.MaxPlayers < cfg.MinPlayers {
		cfg.MaxPlayers = cfg.MinPlayers
	}
	return &Lobby{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		ctx:    ctx,
		tables: map[string]*table{},
	}
}

// NormalizeNickname trims s and checks it is printable and short enough.
func NormalizeNickname(s string) (string, error) {
	name := strings.TrimSpace(s)
	if name == "" || utf8.RuneCountInString(name) > MaxNicknameLength {
		return "", ErrInvalidNickname
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return "", ErrInvalidNickname
		}
	}
	return name, nil
}

// Join greets conn, settles its nickname and seats it. It returns once the connection
// is waiting for a match or has resumed a suspended seat; the caller keeps conn open until Done.
func (l *Lobby) Join(ctx context.Context, conn Conn, token string) error {
	ch := interaction.NewChannel(conn,
		interaction.WithTimeout(l.cfg.AnswerTimeout),
		interaction.WithMetrics(l.deps.ProtocolMetrics),
		interaction.WithLogger(l.logger),
	)
	if err := ch.Notify(ctx, protocol.KindGreet); err != nil {
		return err
	}

	if token != "" && l.deps.Tokens != nil {
		name, err := l.deps.Tokens.Verify(token)
		if err == nil {
			name, err = NormalizeNickname(name)
		}
		if err == nil {
			err = l.admit(name, conn, ch)
		}
		if err != nil {
			_ = ch.Notify(ctx, protocol.KindError)
			return err
		}
		return nil
	}

	for {
		text, err := ch.AskFreeText(ctx, protocol.KindNickname)
		if err != nil {
			return err
		}
		name, err := NormalizeNickname(text)
		if err == nil {
			err = l.admit(name, conn, ch)
		}
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNicknameTaken) && !errors.Is(err, ErrInvalidNickname) {
			return err
		}
		l.logger.Debug("nickname refused", zap.String("nickname", text), zap.Error(err))
		if err := ch.Notify(ctx, protocol.KindError); err != nil {
			return err
		}
	}
}

func (l *Lobby) admit(name string, conn Conn, ch *interaction.Channel) error {
	l.mu.Lock()
	if l.ctx.Err() != nil {
		l.mu.Unlock()
		return ErrClosed
	}
	if t, p := l.suspendedSeatLocked(name); t != nil {
		l.mu.Unlock()
		t.resume(p, conn, ch)
		l.watch(t, name, conn)
		return nil
	}
	if l.takenLocked(name) {
		l.mu.Unlock()
		return ErrNicknameTaken
	}

	s := &seat{name: name, conn: conn, ch: ch}
	l.waiting = append(l.waiting, s)
	l.logger.Info("participant waiting", zap.String("player", name), zap.Int("waiting", len(l.waiting)))

	var group []*seat
	switch {
	case len(l.waiting) >= l.cfg.MaxPlayers:
		group = l.takeWaitingLocked()
	case len(l.waiting) >= l.cfg.MinPlayers && l.timer == nil:
		l.timer = time.AfterFunc(l.cfg.Wait, l.onWaitElapsed)
	}
	l.mu.Unlock()

	go l.watchWaiting(s)
	if group != nil {
		l.launch(group)
	}
	return nil
}

func (l *Lobby) takenLocked(name string) bool {
	for _, s := range l.waiting {
		if s.name == name {
			return true
		}
	}
	for _, t := range l.tables {
		if t.seated(name) {
			return true
		}
	}
	return false
}

func (l *Lobby) suspendedSeatLocked(name string) (*table, *game.Player) {
	for _, id := range l.order {
		t := l.tables[id]
		if p, ok := t.suspendedPlayer(name); ok {
			return t, p
		}
	}
	return nil, nil
}

func (l *Lobby) takeWaitingLocked() []*seat {
	n := len(l.waiting)
	if n > l.cfg.MaxPlayers {
		n = l.cfg.MaxPlayers
	}
	group := append([]*seat(nil), l.waiting[:n]...)
	l.waiting = append([]*seat(nil), l.waiting[n:]...)
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	return group
}

func (l *Lobby) onWaitElapsed() {
	l.mu.Lock()
	l.timer = nil
	var group []*seat
	if len(l.waiting) >= l.cfg.MinPlayers {
		group = l.takeWaitingLocked()
	}
	l.mu.Unlock()
	if group != nil {
		l.launch(group)
	}
}

// watchWaiting drops a seat whose connection closes before its match starts.
func (l *Lobby) watchWaiting(s *seat) {
	select {
	case <-s.conn.Done():
	case <-l.ctx.Done():
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, w := range l.waiting {
		if w != s {
			continue
		}
		l.waiting = append(l.waiting[:i:i], l.waiting[i+1:]...)
		l.logger.Info("participant left before start", zap.String("player", s.name))
		if len(l.waiting) < l.cfg.MinPlayers && l.timer != nil {
			l.timer.Stop()
			l.timer = nil
		}
		return
	}
}

// watch suspends a seated participant as soon as its connection closes.
func (l *Lobby) watch(t *table, name string, conn Conn) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		select {
		case <-conn.Done():
			t.disconnected(name, conn)
		case <-t.done:
		case <-l.ctx.Done():
		}
	}()
}

func (l *Lobby) launch(group []*seat) {
	l.mu.Lock()
	l.formed++
	n := l.formed
	l.mu.Unlock()

	seed := l.cfg.Seed
	if seed == 0 {
		seed = l.deps.Now().UnixNano()
	}
	setup := match.Setup{
		Catalog: l.deps.Catalog,
		Layout:  game.StandardLayout(),
		Skulls:  l.cfg.Skulls,
		Rand:    rand.New(rand.NewSource(seed + n)),
	}
	names := make([]string, 0, len(group))
	for _, s := range group {
		names = append(names, s.name)
	}
	m, err := setup.NewMatch(l.ctx, names)
	if err != nil {
		l.logger.Error("match setup failed", zap.Strings("players", names), zap.Error(err))
		for _, s := range group {
			_ = s.ch.Notify(l.ctx, protocol.KindError)
			_ = s.conn.Close()
		}
		return
	}

	t := newTable(l, m, group)
	l.mu.Lock()
	l.tables[m.ID] = t
	l.order = append(l.order, m.ID)
	l.mu.Unlock()
	for _, s := range group {
		l.watch(t, s.name, s.conn)
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		t.run(l.ctx)
	}()
}

// Wait blocks until every hosted match and watcher has returned.
func (l *Lobby) Wait() { l.wg.Wait() }

type MatchSummary struct {
	ID        string        `json:"id"`
	Players   []string      `json:"players"`
	Suspended []string      `json:"suspended"`
	StartedAt time.Time     `json:"started_at"`
	Finished  bool          `json:"finished"`
	Result    *match.Result `json:"result,omitempty"`
}

// Matches lists hosted matches, oldest first.
func (l *Lobby) Matches() []MatchSummary {
	l.mu.Lock()
	tables := make([]*table, 0, len(l.order))
	for _, id := range l.order {
		tables = append(tables, l.tables[id])
	}
	l.mu.Unlock()

	out := make([]MatchSummary, 0, len(tables))
	for _, t := range tables {
		out = append(out, t.summary())
	}
	return out
}

func (l *Lobby) Match(id string) (MatchSummary, game.Snapshot, bool) {
	l.mu.Lock()
	t, ok := l.tables[id]
	l.mu.Unlock()
	if !ok {
		return MatchSummary{}, game.Snapshot{}, false
	}
	return t.summary(), t.runner.Snapshot(), true
}

// Waiting returns the nicknames queued for the next match.
func (l *Lobby) Waiting() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.waiting))
	for _, s := range l.waiting {
		out = append(out, s.name)
	}
	sort.Strings(out)
	return out
}
