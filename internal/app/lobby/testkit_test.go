package lobby

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"skirmish/internal/app/ports"
	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"

	"github.com/tidwall/gjson"
)

// botConn answers every question with option 0 and every NICKNAME with the next queued name.
// A silent bot records questions but never answers.
type botConn struct {
	mu      sync.Mutex
	silent  bool
	names   []string
	sent    []protocol.QuestionKind
	pushed  []string
	replies chan []byte
	done    chan struct{}
	once    sync.Once
}

func newBot(names ...string) *botConn {
	return &botConn{names: names, replies: make(chan []byte, 16), done: make(chan struct{})}
}

func newSilentBot() *botConn {
	b := newBot()
	b.silent = true
	return b
}

func (b *botConn) Send(_ context.Context, frame []byte) error {
	select {
	case <-b.done:
		return io.ErrClosedPipe
	default:
	}
	kind := protocol.QuestionKind(gjson.GetBytes(frame, "type").String())

	b.mu.Lock()
	b.sent = append(b.sent, kind)
	var reply []byte
	switch {
	case b.silent:
	case kind == protocol.KindNickname:
		name := ""
		if len(b.names) > 0 {
			name, b.names = b.names[0], b.names[1:]
		}
		reply, _ = json.Marshal(protocol.Answer{Type: kind, Text: name})
	case gjson.GetBytes(frame, "options.#").Int() > 0:
		reply, _ = json.Marshal(protocol.Answer{Type: kind, Answer: 0})
	}
	b.mu.Unlock()

	if reply != nil {
		b.replies <- reply
	}
	return nil
}

func (b *botConn) Receive(ctx context.Context) ([]byte, error) {
	select {
	case r := <-b.replies:
		return r, nil
	case <-b.done:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *botConn) Push(frame []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pushed = append(b.pushed, string(frame))
}

func (b *botConn) Done() <-chan struct{} { return b.done }

func (b *botConn) Close() error {
	b.once.Do(func() { close(b.done) })
	return nil
}

func (b *botConn) sentKinds() []protocol.QuestionKind {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]protocol.QuestionKind(nil), b.sent...)
}

func (b *botConn) count(kind protocol.QuestionKind) int {
	n := 0
	for _, k := range b.sentKinds() {
		if k == kind {
			n++
		}
	}
	return n
}

func (b *botConn) pushedFrames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.pushed...)
}

func (b *botConn) closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

type stubCatalog struct {
	defs []game.Definition
}

func (c stubCatalog) Resolve(_ context.Context, id string) (game.Definition, error) {
	for _, d := range c.defs {
		if d.ID == id {
			return d, nil
		}
	}
	return game.Definition{}, ports.ErrNotFound
}

func (c stubCatalog) List(_ context.Context, kind game.DefinitionKind) ([]game.Definition, error) {
	var out []game.Definition
	for _, d := range c.defs {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out, nil
}

func testCatalog() stubCatalog {
	defs := []game.Definition{
		{ID: "fx-hit", Kind: game.DefinitionEffect, Effect: &game.EffectSpec{Kind: game.EffectDamage, Name: "Hit", Amount: 1, MaxTargets: 1}},
	}
	colors := []game.Cube{game.CubeRed, game.CubeBlue, game.CubeYellow}
	for i := 0; i < 6; i++ {
		defs = append(defs,
			game.Definition{ID: fmt.Sprintf("w-%d", i), Kind: game.DefinitionWeapon, Weapon: &game.WeaponSpec{Name: fmt.Sprintf("W%d", i), Cost: []game.Cube{game.CubeRed}, Sequences: [][]string{{"fx-hit"}}}},
			game.Definition{ID: fmt.Sprintf("p-%d", i), Kind: game.DefinitionPowerup, Powerup: &game.PowerupSpec{Name: "Tag", Color: colors[i%3], Effect: "fx-hit", Timing: game.TimingReceiving}},
			game.Definition{ID: fmt.Sprintf("a-%d", i), Kind: game.DefinitionAmmo, Ammo: &game.AmmoSpec{Cubes: []game.Cube{game.CubeRed, game.CubeBlue}}},
		)
	}
	return stubCatalog{defs: defs}
}

type sessionEvent struct {
	op       string
	nickname string
}

type fakeSessionRepo struct {
	mu     sync.Mutex
	events []sessionEvent
}

func (r *fakeSessionRepo) record(op, nickname string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sessionEvent{op: op, nickname: nickname})
	return nil
}

func (r *fakeSessionRepo) EnsureActive(_ context.Context, _, nickname string, _ time.Time) error {
	return r.record("active", nickname)
}

func (r *fakeSessionRepo) MarkSuspended(_ context.Context, _, nickname string, _ time.Time) error {
	return r.record("suspended", nickname)
}

func (r *fakeSessionRepo) MarkResumed(_ context.Context, _, nickname string, _ time.Time) error {
	return r.record("resumed", nickname)
}

func (r *fakeSessionRepo) Close(_ context.Context, _ string, _ time.Time) error {
	return r.record("closed", "")
}

func (r *fakeSessionRepo) ListByMatch(context.Context, string) ([]ports.ParticipantSession, error) {
	return nil, nil
}

func (r *fakeSessionRepo) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.op == op {
			n++
		}
	}
	return n
}

type fakeTxManager struct {
	mu    sync.Mutex
	calls int
}

func (m *fakeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return fn(ctx)
}

type stubVerifier map[string]string

func (v stubVerifier) Verify(token string) (string, error) {
	name, ok := v[token]
	if !ok {
		return "", fmt.Errorf("unknown token %q", token)
	}
	return name, nil
}

func newTestLobby(t *testing.T, cfg Config, repo *fakeSessionRepo) *Lobby {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if cfg.AnswerTimeout == 0 {
		cfg.AnswerTimeout = time.Second
	}
	if cfg.Skulls == 0 {
		cfg.Skulls = 8
	}
	deps := Deps{
		Catalog:   testCatalog(),
		TxManager: &fakeTxManager{},
		Tokens:    stubVerifier{"tok-dana": "dana"},
	}
	if repo != nil {
		deps.Sessions = repo
	}
	return New(ctx, cfg, deps)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
