package effect

import (
	"context"
	"io"
	"testing"

	"skirmish/internal/app/interaction"
	"skirmish/internal/app/ports"
	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"
)

type stubCatalog struct {
	defs map[string]game.Definition
}

func newStubCatalog(defs ...game.Definition) stubCatalog {
	c := stubCatalog{defs: map[string]game.Definition{}}
	for _, d := range defs {
		c.defs[d.ID] = d
	}
	return c
}

func (c stubCatalog) Resolve(_ context.Context, id string) (game.Definition, error) {
	d, ok := c.defs[id]
	if !ok {
		return game.Definition{}, ports.ErrNotFound
	}
	return d, nil
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

func effectDef(id string, spec game.EffectSpec) game.Definition {
	return game.Definition{ID: id, Kind: game.DefinitionEffect, Effect: &spec}
}

type askRecord struct {
	player  string
	kind    protocol.QuestionKind
	options [][]string
}

type scriptedAsker struct {
	answers map[protocol.QuestionKind][]int
	fail    map[protocol.QuestionKind]bool
	asked   []askRecord
}

func newScriptedAsker() *scriptedAsker {
	return &scriptedAsker{
		answers: map[protocol.QuestionKind][]int{},
		fail:    map[protocol.QuestionKind]bool{},
	}
}

func (a *scriptedAsker) answer(kind protocol.QuestionKind, idx ...int) *scriptedAsker {
	a.answers[kind] = append(a.answers[kind], idx...)
	return a
}

func (a *scriptedAsker) Ask(_ context.Context, p *game.Player, kind protocol.QuestionKind, options [][]string) (int, error) {
	a.asked = append(a.asked, askRecord{player: p.Name, kind: kind, options: options})
	if a.fail[kind] {
		return -1, &interaction.ChannelFailureError{Kind: kind, Err: io.EOF}
	}
	q := a.answers[kind]
	if len(q) == 0 {
		return 0, nil
	}
	a.answers[kind] = q[1:]
	return q[0], nil
}

func (a *scriptedAsker) kinds() []protocol.QuestionKind {
	out := make([]protocol.QuestionKind, 0, len(a.asked))
	for _, r := range a.asked {
		out = append(out, r.kind)
	}
	return out
}

func newTestMatch(t *testing.T, names ...string) *game.Match {
	t.Helper()
	board, err := game.NewBoard(game.StandardLayout(), game.Decks{}, 8)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	m, err := game.NewMatch("m-test", names, board)
	if err != nil {
		t.Fatalf("new match: %v", err)
	}
	return m
}

func place(t *testing.T, m *game.Match, name, squareID string) *game.Player {
	t.Helper()
	p, ok := m.Player(name)
	if !ok {
		t.Fatalf("unknown player %s", name)
	}
	sq, ok := m.Board.Square(squareID)
	if !ok {
		t.Fatalf("unknown square %s", squareID)
	}
	p.Position = sq
	return p
}

func sameKinds(got, want []protocol.QuestionKind) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
