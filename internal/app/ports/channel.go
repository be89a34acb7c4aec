package ports

import (
	"context"

	"skirmish/internal/domain/protocol"
)

// Channel is the blocking question/answer link to one remote participant.
type Channel interface {
	Ask(ctx context.Context, kind protocol.QuestionKind, options [][]string) (int, error)
	AskFreeText(ctx context.Context, kind protocol.QuestionKind) (string, error)
	Notify(ctx context.Context, kind protocol.QuestionKind) error
}

// Transport moves whole frames. Receive blocks until a frame arrives, ctx ends or the link drops.
type Transport interface {
	Send(ctx context.Context, frame []byte) error
	Receive(ctx context.Context) ([]byte, error)
}

// UpdatePusher delivers broadcast frames without blocking the caller.
type UpdatePusher interface {
	Push(frame []byte)
}
