package interaction

import (
	"context"
	"errors"
	"sync"

	"skirmish/internal/app/ports"
	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"

	"go.uber.org/zap"
)

// Prompter routes a match's questions to each participant's current channel.
// Suspended participants are never asked; a channel failure suspends the participant.
// Ask, AskFreeText and Notify must be called from the goroutine running the match.
type Prompter struct {
	mu       sync.RWMutex
	channels map[string]ports.Channel

	listener ports.SuspensionListener
	logger   *zap.Logger
}

func NewPrompter(listener ports.SuspensionListener, logger *zap.Logger) *Prompter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prompter{
		channels: map[string]ports.Channel{},
		listener: listener,
		logger:   logger,
	}
}

// Bind attaches ch to the named participant, replacing any earlier channel.
func (p *Prompter) Bind(name string, ch ports.Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels[name] = ch
}

func (p *Prompter) Unbind(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.channels, name)
}

func (p *Prompter) channel(pl *game.Player, kind protocol.QuestionKind) (ports.Channel, error) {
	if pl.Suspended {
		return nil, ErrSuspended
	}
	p.mu.RLock()
	ch, ok := p.channels[pl.Name]
	p.mu.RUnlock()
	if !ok {
		err := &ChannelFailureError{Kind: kind, Err: ErrUnbound}
		p.observe(pl, err)
		return nil, err
	}
	return ch, nil
}

func (p *Prompter) Ask(ctx context.Context, pl *game.Player, kind protocol.QuestionKind, options [][]string) (int, error) {
	ch, err := p.channel(pl, kind)
	if err != nil {
		return -1, err
	}
	idx, err := ch.Ask(ctx, kind, options)
	p.observe(pl, err)
	return idx, err
}

func (p *Prompter) AskFreeText(ctx context.Context, pl *game.Player, kind protocol.QuestionKind) (string, error) {
	ch, err := p.channel(pl, kind)
	if err != nil {
		return "", err
	}
	text, err := ch.AskFreeText(ctx, kind)
	p.observe(pl, err)
	return text, err
}

func (p *Prompter) Notify(ctx context.Context, pl *game.Player, kind protocol.QuestionKind) error {
	ch, err := p.channel(pl, kind)
	if err != nil {
		return err
	}
	err = ch.Notify(ctx, kind)
	p.observe(pl, err)
	return err
}

// NotifyAll sends kind to every reachable participant and ignores failures.
func (p *Prompter) NotifyAll(ctx context.Context, players []*game.Player, kind protocol.QuestionKind) {
	for _, pl := range players {
		_ = p.Notify(ctx, pl, kind)
	}
}

func (p *Prompter) observe(pl *game.Player, err error) {
	if err == nil || !errors.Is(err, ports.ErrChannelFailure) || pl.Suspended {
		return
	}
	pl.Suspended = true
	p.logger.Info("participant suspended", zap.String("player", pl.Name), zap.Error(err))
	if p.listener != nil {
		p.listener.OnSuspended(pl)
	}
}
