package turn

import (
	"context"
	"io"
	"testing"

	"skirmish/internal/app/effect"
	"skirmish/internal/app/interaction"
	"skirmish/internal/app/ports"
	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"
)

type emptyCatalog struct{}

func (emptyCatalog) Resolve(context.Context, string) (game.Definition, error) {
	return game.Definition{}, ports.ErrNotFound
}

func (emptyCatalog) List(context.Context, game.DefinitionKind) ([]game.Definition, error) {
	return nil, nil
}

type scriptedAsker struct {
	answers       map[protocol.QuestionKind][]int
	fail          map[protocol.QuestionKind]bool
	suspendOnFail bool
	asked         []protocol.QuestionKind
	options       map[protocol.QuestionKind][][]string
}

func newScriptedAsker() *scriptedAsker {
	return &scriptedAsker{
		answers: map[protocol.QuestionKind][]int{},
		fail:    map[protocol.QuestionKind]bool{},
		options: map[protocol.QuestionKind][][]string{},
	}
}

func (a *scriptedAsker) answer(kind protocol.QuestionKind, idx ...int) *scriptedAsker {
	a.answers[kind] = append(a.answers[kind], idx...)
	return a
}

func (a *scriptedAsker) Ask(_ context.Context, p *game.Player, kind protocol.QuestionKind, options [][]string) (int, error) {
	a.asked = append(a.asked, kind)
	a.options[kind] = options
	if a.fail[kind] {
		if a.suspendOnFail {
			p.Suspended = true
		}
		return -1, &interaction.ChannelFailureError{Kind: kind, Err: io.EOF}
	}
	q := a.answers[kind]
	if len(q) == 0 {
		return 0, nil
	}
	a.answers[kind] = q[1:]
	return q[0], nil
}

func (a *scriptedAsker) count(kind protocol.QuestionKind) int {
	n := 0
	for _, k := range a.asked {
		if k == kind {
			n++
		}
	}
	return n
}

func newTestMatch(t *testing.T) *game.Match {
	t.Helper()
	board, err := game.NewBoard(game.StandardLayout(), game.Decks{}, 8)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	m, err := game.NewMatch("m-turn", []string{"alice", "bob", "carol"}, board)
	if err != nil {
		t.Fatalf("new match: %v", err)
	}
	return m
}

func placed(t *testing.T, m *game.Match, name, squareID string) *game.Player {
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

func newTurn(m *game.Match, p *game.Player, asker *scriptedAsker) *NormalTurn {
	return NewNormalTurn(effect.NewEngine(emptyCatalog{}, asker, nil), asker, m, p, nil)
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
