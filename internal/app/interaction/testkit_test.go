package interaction

import (
	"context"
	"sync"

	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"
)

type scriptedTransport struct {
	mu      sync.Mutex
	replies []string
	sent    []string
	recvErr error
	sendErr error
}

func (t *scriptedTransport) Send(_ context.Context, frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, string(frame))
	return nil
}

func (t *scriptedTransport) Receive(ctx context.Context) ([]byte, error) {
	t.mu.Lock()
	if len(t.replies) == 0 {
		err := t.recvErr
		t.mu.Unlock()
		if err != nil {
			return nil, err
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	r := t.replies[0]
	t.replies = t.replies[1:]
	t.mu.Unlock()
	return []byte(r), nil
}

func (t *scriptedTransport) sentFrames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.sent...)
}

type countingMetrics struct {
	mu         sync.Mutex
	violations map[string]int
}

func (m *countingMetrics) RecordProtocolViolation(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.violations == nil {
		m.violations = map[string]int{}
	}
	m.violations[kind]++
}

type recordingListener struct {
	suspended []string
	resumed   []string
}

func (l *recordingListener) OnSuspended(p *game.Player) { l.suspended = append(l.suspended, p.Name) }
func (l *recordingListener) OnResumed(p *game.Player)   { l.resumed = append(l.resumed, p.Name) }

type stubChannel struct {
	answers []int
	asked   []protocol.QuestionKind
	err     error
}

func (c *stubChannel) Ask(_ context.Context, kind protocol.QuestionKind, _ [][]string) (int, error) {
	c.asked = append(c.asked, kind)
	if c.err != nil {
		return -1, c.err
	}
	if len(c.answers) == 0 {
		return 0, nil
	}
	a := c.answers[0]
	c.answers = c.answers[1:]
	return a, nil
}

func (c *stubChannel) AskFreeText(_ context.Context, kind protocol.QuestionKind) (string, error) {
	c.asked = append(c.asked, kind)
	return "text", c.err
}

func (c *stubChannel) Notify(_ context.Context, kind protocol.QuestionKind) error {
	c.asked = append(c.asked, kind)
	return c.err
}
