package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const (
	DefaultQueueSize = 64
	pushWriteTimeout = 10 * time.Second
	readLimit        = 64 << 10
)

var ErrClosed = errors.New("websocket connection closed")

// Conn adapts one websocket to the frame transport the interaction channel speaks.
// A reader goroutine owns the socket reads so a vanished peer closes Done even while
// nobody is waiting for an answer. Pushed frames go through a bounded queue drained
// by a writer goroutine; a full queue drops the frame.
type Conn struct {
	ws     *websocket.Conn
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	inbox  chan []byte
	queue  chan []byte
	done   chan struct{}

	once sync.Once
	mu   sync.Mutex
	err  error
}

func NewConn(ctx context.Context, ws *websocket.Conn, queueSize int, logger *zap.Logger) *Conn {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	ws.SetReadLimit(readLimit)
	cctx, cancel := context.WithCancel(ctx)
	c := &Conn{
		ws:     ws,
		logger: logger,
		ctx:    cctx,
		cancel: cancel,
		inbox:  make(chan []byte, 8),
		queue:  make(chan []byte, queueSize),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	go c.writeLoop()
	return c
}

func (c *Conn) Send(ctx context.Context, frame []byte) error {
	select {
	case <-c.done:
		return c.cause()
	default:
	}
	if err := c.ws.Write(ctx, websocket.MessageText, frame); err != nil {
		c.fail(err)
		return err
	}
	return nil
}

func (c *Conn) Receive(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-c.inbox:
		return frame, nil
	case <-c.done:
		return nil, c.cause()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Conn) Push(frame []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.queue <- frame:
	default:
		c.logger.Debug("push queue full, frame dropped", zap.Int("bytes", len(frame)))
	}
}

func (c *Conn) Done() <-chan struct{} { return c.done }

func (c *Conn) Close() error {
	c.closeWith(websocket.StatusNormalClosure, "", ErrClosed)
	return nil
}

// Err reports why the connection ended; nil while it is open.
func (c *Conn) Err() error {
	select {
	case <-c.done:
		return c.cause()
	default:
		return nil
	}
}

func (c *Conn) readLoop() {
	for {
		typ, data, err := c.ws.Read(c.ctx)
		if err != nil {
			c.fail(err)
			return
		}
		if typ != websocket.MessageText {
			c.logger.Debug("ignoring binary frame")
			continue
		}
		select {
		case c.inbox <- data:
		case <-c.done:
			return
		}
	}
}

func (c *Conn) writeLoop() {
	for {
		select {
		case frame := <-c.queue:
			ctx, cancel := context.WithTimeout(c.ctx, pushWriteTimeout)
			err := c.ws.Write(ctx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				c.fail(err)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Conn) fail(err error) {
	status := websocket.CloseStatus(err)
	if status == -1 {
		status = websocket.StatusInternalError
	}
	c.closeWith(status, "", err)
}

func (c *Conn) closeWith(status websocket.StatusCode, reason string, cause error) {
	c.once.Do(func() {
		c.mu.Lock()
		c.err = cause
		c.mu.Unlock()
		close(c.done)
		c.logger.Debug("websocket closed", zap.Int("status", int(status)), zap.Error(cause))
		go func() {
			_ = c.ws.Close(status, reason)
			c.cancel()
		}()
	})
}

func (c *Conn) cause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		return ErrClosed
	}
	return c.err
}
