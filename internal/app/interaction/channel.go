package interaction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"skirmish/internal/app/ports"
	"skirmish/internal/domain/protocol"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var (
	// ErrNoOptions is returned after an empty question was sent; nothing is awaited.
	ErrNoOptions = errors.New("no options to choose from")
	ErrSuspended = errors.New("participant suspended")
	ErrUnbound   = errors.New("no channel bound for participant")
)

type ChannelFailureError struct {
	Kind protocol.QuestionKind
	Err  error
}

func (e *ChannelFailureError) Error() string {
	return fmt.Sprintf("channel failure during %s: %v", e.Kind, e.Err)
}

func (e *ChannelFailureError) Unwrap() []error {
	return []error{ports.ErrChannelFailure, e.Err}
}

// Channel runs the question/answer protocol over one transport.
// One exchange is in flight at a time, retries included; once the transport fails the channel stays failed.
type Channel struct {
	mu        sync.Mutex
	transport ports.Transport
	timeout   time.Duration
	metrics   ports.ProtocolMetrics
	logger    *zap.Logger
	failed    error
}

type Option func(*Channel)

// WithTimeout bounds every wait for a reply.
func WithTimeout(d time.Duration) Option {
	return func(c *Channel) { c.timeout = d }
}

func WithMetrics(m ports.ProtocolMetrics) Option {
	return func(c *Channel) { c.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Channel) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewChannel(t ports.Transport, opts ...Option) *Channel {
	c := &Channel{transport: t, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Channel) Ask(ctx context.Context, kind protocol.QuestionKind, options [][]string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usable(kind); err != nil {
		return -1, err
	}
	if options == nil {
		options = [][]string{}
	}
	frame, err := json.Marshal(protocol.Question{Type: kind, Options: options})
	if err != nil {
		return -1, fmt.Errorf("encode question: %w", err)
	}
	if len(options) == 0 {
		if err := c.send(ctx, kind, frame); err != nil {
			return -1, err
		}
		return -1, ErrNoOptions
	}
	for {
		if err := c.send(ctx, kind, frame); err != nil {
			return -1, err
		}
		reply, err := c.receive(ctx, kind)
		if err != nil {
			return -1, err
		}
		if idx, ok := parseIndex(reply, kind, len(options)); ok {
			return idx, nil
		}
		if err := c.reject(ctx, kind, reply); err != nil {
			return -1, err
		}
	}
}

func (c *Channel) AskFreeText(ctx context.Context, kind protocol.QuestionKind) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usable(kind); err != nil {
		return "", err
	}
	frame, err := json.Marshal(protocol.Notification{Type: kind})
	if err != nil {
		return "", fmt.Errorf("encode question: %w", err)
	}
	for {
		if err := c.send(ctx, kind, frame); err != nil {
			return "", err
		}
		reply, err := c.receive(ctx, kind)
		if err != nil {
			return "", err
		}
		if text, ok := parseText(reply, kind); ok {
			return text, nil
		}
		if err := c.reject(ctx, kind, reply); err != nil {
			return "", err
		}
	}
}

func (c *Channel) Notify(ctx context.Context, kind protocol.QuestionKind) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usable(kind); err != nil {
		return err
	}
	frame, err := json.Marshal(protocol.Notification{Type: kind})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	return c.send(ctx, kind, frame)
}

func (c *Channel) usable(kind protocol.QuestionKind) error {
	if c.failed != nil {
		return &ChannelFailureError{Kind: kind, Err: c.failed}
	}
	return nil
}

func (c *Channel) send(ctx context.Context, kind protocol.QuestionKind, frame []byte) error {
	if err := c.transport.Send(ctx, frame); err != nil {
		return c.fail(kind, err)
	}
	return nil
}

func (c *Channel) receive(ctx context.Context, kind protocol.QuestionKind) ([]byte, error) {
	rctx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	reply, err := c.transport.Receive(rctx)
	if err != nil {
		return nil, c.fail(kind, err)
	}
	return reply, nil
}

func (c *Channel) fail(kind protocol.QuestionKind, err error) error {
	c.failed = err
	c.logger.Warn("channel failed", zap.String("question", string(kind)), zap.Error(err))
	return &ChannelFailureError{Kind: kind, Err: err}
}

// reject tells the peer its reply was unusable. The caller then resends the same question.
func (c *Channel) reject(ctx context.Context, kind protocol.QuestionKind, reply []byte) error {
	c.logger.Debug("invalid reply", zap.String("question", string(kind)), zap.ByteString("reply", reply))
	if c.metrics != nil {
		c.metrics.RecordProtocolViolation(string(kind))
	}
	frame, err := json.Marshal(protocol.Notification{Type: protocol.KindError})
	if err != nil {
		return fmt.Errorf("encode error notification: %w", err)
	}
	return c.send(ctx, kind, frame)
}

func parseIndex(reply []byte, kind protocol.QuestionKind, n int) (int, bool) {
	if !gjson.ValidBytes(reply) {
		return 0, false
	}
	if t := gjson.GetBytes(reply, "type"); t.Exists() && t.String() != string(kind) {
		return 0, false
	}
	a := gjson.GetBytes(reply, "answer")
	if a.Type != gjson.Number {
		return 0, false
	}
	f := a.Float()
	idx := int(f)
	if float64(idx) != f || idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}

func parseText(reply []byte, kind protocol.QuestionKind) (string, bool) {
	text := string(reply)
	if gjson.ValidBytes(reply) {
		r := gjson.ParseBytes(reply)
		switch {
		case r.IsObject():
			if t := r.Get("type"); t.Exists() && t.String() != string(kind) {
				return "", false
			}
			text = r.Get("text").String()
		case r.Type == gjson.String:
			text = r.String()
		case r.Type == gjson.Null:
			text = ""
		}
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}
