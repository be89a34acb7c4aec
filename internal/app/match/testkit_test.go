package match

import (
	"context"
	"fmt"
	"io"
	"testing"

	"skirmish/internal/app/effect"
	"skirmish/internal/app/interaction"
	"skirmish/internal/app/ports"
	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"
)

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

// testCatalog has a one-shot killing weapon and red-only reactive cards,
// so every participant enters on the red spawn square.
func testCatalog() stubCatalog {
	var defs []game.Definition
	defs = append(defs,
		game.Definition{ID: "fx-kill", Kind: game.DefinitionEffect, Effect: &game.EffectSpec{Kind: game.EffectDamage, Name: "Kill", Amount: game.KillshotDamage, MaxTargets: 1}},
		game.Definition{ID: "fx-tag", Kind: game.DefinitionEffect, Effect: &game.EffectSpec{Kind: game.EffectMark, Name: "Tag", Amount: 1, MaxTargets: 1}},
	)
	for i := 0; i < 4; i++ {
		defs = append(defs, game.Definition{
			ID:     fmt.Sprintf("w-%d", i),
			Kind:   game.DefinitionWeapon,
			Weapon: &game.WeaponSpec{Name: fmt.Sprintf("Weapon %d", i), Cost: []game.Cube{game.CubeRed}, FixedOrder: true, Sequences: [][]string{{"fx-kill"}}},
		})
	}
	for i := 0; i < 6; i++ {
		defs = append(defs,
			game.Definition{
				ID:      fmt.Sprintf("p-%d", i),
				Kind:    game.DefinitionPowerup,
				Powerup: &game.PowerupSpec{Name: "Tagback", Color: game.CubeRed, Effect: "fx-tag", Timing: game.TimingReceiving},
			},
			game.Definition{
				ID:   fmt.Sprintf("a-%d", i),
				Kind: game.DefinitionAmmo,
				Ammo: &game.AmmoSpec{Cubes: []game.Cube{game.CubeBlue, game.CubeYellow}},
			},
		)
	}
	return stubCatalog{defs: defs}
}

type askRecord struct {
	player string
	kind   protocol.QuestionKind
}

type stubPrompter struct {
	answers  map[protocol.QuestionKind][]int
	asked    []askRecord
	notified []askRecord
}

func newStubPrompter() *stubPrompter {
	return &stubPrompter{answers: map[protocol.QuestionKind][]int{}}
}

func (s *stubPrompter) Ask(_ context.Context, p *game.Player, kind protocol.QuestionKind, _ [][]string) (int, error) {
	if p.Suspended {
		return -1, interaction.ErrSuspended
	}
	s.asked = append(s.asked, askRecord{player: p.Name, kind: kind})
	q := s.answers[kind]
	if len(q) == 0 {
		return 0, nil
	}
	s.answers[kind] = q[1:]
	return q[0], nil
}

func (s *stubPrompter) Notify(_ context.Context, p *game.Player, kind protocol.QuestionKind) error {
	s.notified = append(s.notified, askRecord{player: p.Name, kind: kind})
	return nil
}

func (s *stubPrompter) askedBy(name string) int {
	n := 0
	for _, r := range s.asked {
		if r.player == name {
			n++
		}
	}
	return n
}

type failingPrompter struct {
	*stubPrompter
}

func (f failingPrompter) Ask(_ context.Context, p *game.Player, kind protocol.QuestionKind, _ [][]string) (int, error) {
	p.Suspended = true
	return -1, &interaction.ChannelFailureError{Kind: kind, Err: io.EOF}
}

type stubTracker struct {
	suspended map[string]bool
}

func (s stubTracker) Sync(p *game.Player) bool {
	p.Suspended = s.suspended[p.Name]
	return p.Suspended
}

type countingMetrics struct {
	completed, skipped, suspended, resumed, started, finished int
}

func (c *countingMetrics) RecordTurnCompleted() { c.completed++ }
func (c *countingMetrics) RecordTurnSkipped()   { c.skipped++ }
func (c *countingMetrics) RecordSuspension()    { c.suspended++ }
func (c *countingMetrics) RecordResumption()    { c.resumed++ }
func (c *countingMetrics) RecordMatchStarted()  { c.started++ }
func (c *countingMetrics) RecordMatchFinished() { c.finished++ }

func newTestSetup(skulls int) Setup {
	return Setup{Catalog: testCatalog(), Skulls: skulls, NewID: func() string { return "m-1" }}
}

func newTestRunner(t *testing.T, skulls int, prompter Prompter, tracker SuspensionState, opts Options) *Runner {
	t.Helper()
	setup := newTestSetup(skulls)
	m, err := setup.NewMatch(context.Background(), []string{"alice", "bob", "carol"})
	if err != nil {
		t.Fatalf("new match: %v", err)
	}
	return NewRunner(m, effect.NewEngine(setup.Catalog, prompter, nil), prompter, tracker, opts)
}
