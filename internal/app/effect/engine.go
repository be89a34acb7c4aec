package effect

import (
	"context"
	"errors"
	"fmt"

	"skirmish/internal/app/ports"
	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"

	"go.uber.org/zap"
)

var (
	ErrNotChainable = errors.New("built-in actions cannot be chained")
	ErrNotAnEffect  = errors.New("definition is not an effect")
)

// Asker is how effects reach a participant. A non-nil error means no choice was made.
type Asker interface {
	Ask(ctx context.Context, p *game.Player, kind protocol.QuestionKind, options [][]string) (int, error)
}

type ActionType string

const (
	ActionMove  ActionType = "move"
	ActionGrab  ActionType = "grab"
	ActionShoot ActionType = "shoot"
)

type ActionSpec struct {
	Type    ActionType
	Label   string
	Handler ActionHandler
}

type ActionHandler interface {
	Run(ctx context.Context, e *Engine, rc *RunContext) error
}

func actionRegistry() map[ActionType]ActionSpec {
	return map[ActionType]ActionSpec{
		ActionMove:  {Type: ActionMove, Label: "Move", Handler: moveHandler{}},
		ActionGrab:  {Type: ActionGrab, Label: "Grab", Handler: grabHandler{}},
		ActionShoot: {Type: ActionShoot, Label: "Shoot", Handler: shootHandler{}},
	}
}

// Actions is the fixed set offered on every ordinary action, in display order.
func Actions() []ActionSpec {
	reg := actionRegistry()
	return []ActionSpec{reg[ActionMove], reg[ActionGrab], reg[ActionShoot]}
}

func ActionOptions() [][]string {
	actions := Actions()
	out := make([][]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, []string{a.Label})
	}
	return out
}

// RunContext is what one step runs against.
type RunContext struct {
	Subject  *game.Player
	Match    *game.Match
	Targeted *Targets
}

func (rc *RunContext) publish(kind game.UpdateKind, player, detail string) {
	rc.Match.Publish(game.Update{Kind: kind, Player: player, Detail: detail})
}

type Engine struct {
	catalog ports.Catalog
	asker   Asker
	logger  *zap.Logger
}

func NewEngine(catalog ports.Catalog, asker Asker, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{catalog: catalog, asker: asker, logger: logger}
}

// RunEffect executes exactly one step. Declined or failed interaction makes the step a no-op;
// only unusable definitions are reported as errors.
func (e *Engine) RunEffect(ctx context.Context, id string, subject *game.Player, m *game.Match, targeted *Targets) error {
	if targeted == nil {
		targeted = NewTargets()
	}
	rc := &RunContext{Subject: subject, Match: m, Targeted: targeted}
	if spec, ok := actionRegistry()[ActionType(id)]; ok {
		return spec.Handler.Run(ctx, e, rc)
	}
	spec, err := e.effectSpec(ctx, id)
	if err != nil {
		return err
	}
	return e.runStep(ctx, spec, rc)
}

// Link appends id to c. Built-in actions stand alone and never join a chain.
func (e *Engine) Link(c Chain, id string) (Chain, error) {
	if isBuiltin(id) {
		return c, fmt.Errorf("%w: %s", ErrNotChainable, id)
	}
	for _, s := range c.steps {
		if isBuiltin(s) {
			return c, fmt.Errorf("%w: %s", ErrNotChainable, s)
		}
	}
	next := NewChain(append(c.Steps(), id)...)
	next.cursor = c.cursor
	return next, nil
}

func isBuiltin(id string) bool {
	_, ok := actionRegistry()[ActionType(id)]
	return ok
}

func (e *Engine) effectSpec(ctx context.Context, id string) (game.EffectSpec, error) {
	def, err := e.catalog.Resolve(ctx, id)
	if err != nil {
		return game.EffectSpec{}, fmt.Errorf("resolve effect %s: %w", id, err)
	}
	if def.Kind != game.DefinitionEffect || def.Effect == nil {
		return game.EffectSpec{}, fmt.Errorf("%w: %s", ErrNotAnEffect, id)
	}
	return *def.Effect, nil
}

// ask returns false when the participant made no usable choice.
func (e *Engine) ask(ctx context.Context, p *game.Player, kind protocol.QuestionKind, options [][]string) (int, bool) {
	if len(options) == 0 {
		return -1, false
	}
	idx, err := e.asker.Ask(ctx, p, kind, options)
	if err != nil {
		e.logger.Debug("no choice made", zap.String("player", p.Name), zap.String("question", string(kind)), zap.Error(err))
		return -1, false
	}
	return idx, true
}

func (e *Engine) labels(ctx context.Context, steps []string) []string {
	out := make([]string, 0, len(steps))
	for _, id := range steps {
		spec, err := e.effectSpec(ctx, id)
		if err != nil || spec.Name == "" {
			out = append(out, id)
			continue
		}
		out = append(out, spec.Name)
	}
	return out
}

func squareOptions(squares []*game.Square) [][]string {
	out := make([][]string, 0, len(squares))
	for _, sq := range squares {
		out = append(out, []string{sq.ID, sq.Room})
	}
	return out
}

// Targets is the running set of participants targeted during one turn.
type Targets struct {
	names []string
}

func NewTargets() *Targets { return &Targets{} }

func (t *Targets) Add(name string) {
	if !t.Has(name) {
		t.names = append(t.names, name)
	}
}

func (t *Targets) Has(name string) bool {
	for _, n := range t.names {
		if n == name {
			return true
		}
	}
	return false
}

func (t *Targets) Names() []string { return append([]string(nil), t.names...) }

func (t *Targets) Len() int { return len(t.names) }
