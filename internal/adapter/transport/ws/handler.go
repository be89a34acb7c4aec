package ws

import (
	"context"
	"net/http"

	"skirmish/internal/app/lobby"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const tokenQueryParam = "token"

type joiner interface {
	Join(ctx context.Context, conn lobby.Conn, token string) error
}

// Handler accepts participant websockets on /ws and hands them to the lobby.
// It holds the request open until the connection ends.
type Handler struct {
	Lobby          joiner
	OriginPatterns []string
	QueueSize      int
	Logger         *zap.Logger
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.OriginPatterns})
	if err != nil {
		logger.Debug("websocket accept failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}

	ctx := r.Context()
	// The socket outlives the request context once ServeHTTP returns.
	conn := NewConn(context.WithoutCancel(ctx), socket, h.QueueSize, logger.With(zap.String("remote", r.RemoteAddr)))
	if err := h.Lobby.Join(ctx, conn, r.URL.Query().Get(tokenQueryParam)); err != nil {
		logger.Info("join refused", zap.String("remote", r.RemoteAddr), zap.Error(err))
		conn.closeWith(websocket.StatusPolicyViolation, "join refused", err)
		return
	}

	select {
	case <-conn.Done():
	case <-ctx.Done():
		_ = conn.Close()
	}
}
