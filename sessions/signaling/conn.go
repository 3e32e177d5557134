package signaling

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/talkline/roomsession/internal/errors"
	"github.com/talkline/roomsession/internal/log"
	intsync "github.com/talkline/roomsession/internal/sync"
	"github.com/talkline/roomsession/internal/workflow"
)

const pingTimeout = 3 * time.Second

// conn is one websocket session with the signaling server. Writes go through
// a single pump goroutine; replies are routed to waiting requests by id.
type conn struct {
	ws        *websocket.Conn
	chBuf     chan func() error
	pending   *intsync.Map[string, chan *message]
	sessionID string

	pingInterval time.Duration
	writeTimeout time.Duration
	clock        clockwork.Clock

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	logger    *log.Logger
}

func newConn(parent context.Context, ws *websocket.Conn, cfg *Config, clock clockwork.Clock, logger *log.Logger) *conn {
	buffer := cfg.Buffer
	if buffer < 1 {
		buffer = 1
	}
	ctx, cancel := context.WithCancel(parent)
	return &conn{
		ws:           ws,
		chBuf:        make(chan func() error, buffer),
		pending:      intsync.NewMap[string, chan *message](),
		pingInterval: cfg.PingInterval,
		writeTimeout: cfg.WriteTimeout,
		clock:        clock,
		ctx:          ctx,
		cancel:       cancel,
		logger:       logger,
	}
}

func (cn *conn) open() {
	go func() {
		cn.close(cn.writePump())
	}()
	go func() {
		cn.close(cn.readLoop())
	}()
}

func (cn *conn) alive() bool {
	return cn.ctx.Err() == nil
}

// send queues msg. It only fails when the connection is gone or the buffer is
// full, and a full buffer closes the connection.
func (cn *conn) send(msg *message) error {
	if !cn.alive() {
		return errors.New(ErrConnectionClosed, "send on closed connection")
	}

	action := func() error {
		ctx, cancel := context.WithTimeout(cn.ctx, cn.writeTimeout)
		defer cancel()
		return wsjson.Write(ctx, cn.ws, msg)
	}

	select {
	case cn.chBuf <- action:
		return nil
	default:
		cn.close(ErrBufferFull)
		return ErrBufferFull
	}
}

// request sends msg with a fresh id and waits for the reply carrying it.
func (cn *conn) request(ctx context.Context, msg *message) (*message, error) {
	msg.ID = uuid.NewString()
	reply := make(chan *message, 1)
	cn.pending.Store(msg.ID, reply)
	defer cn.pending.Delete(msg.ID)

	if err := cn.send(msg); err != nil {
		return nil, err
	}

	ctx, cancel := workflow.WithEitherDone(ctx, cn.ctx)
	defer cancel()

	select {
	case m := <-reply:
		if m.Type == typeError {
			if m.Error == nil {
				return m, errors.New(ErrRejected, "error without details")
			}
			return m, errors.Newf(ErrRejected, "%s: %s", m.Error.Code, m.Error.Message)
		}
		return m, nil
	case <-ctx.Done():
		if !cn.alive() {
			return nil, errors.New(ErrConnectionClosed, "connection closed while waiting for reply")
		}
		return nil, ctx.Err()
	}
}

func (cn *conn) readLoop() error {
	for {
		var m message
		if err := wsjson.Read(cn.ctx, cn.ws, &m); err != nil {
			return err
		}

		if m.ID != "" {
			if reply, ok := cn.pending.Load(m.ID); ok {
				select {
				case reply <- &m:
				default:
				}
				continue
			}
		}

		switch m.Type {
		case typeBye:
			cn.logger.Info("Signaling server said bye")
			return net.ErrClosed
		case typeError:
			cn.logger.Warn("Unsolicited signaling error", log.Any("error", m.Error))
		default:
			cn.logger.Debug("Ignoring signaling message", log.String("type", m.Type))
		}
	}
}

func (cn *conn) writePump() error {
	interval := cn.pingInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := cn.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-cn.ctx.Done():
			return cn.ctx.Err()
		case <-ticker.Chan():
			if err := cn.ping(); err != nil {
				return err
			}
		case action := <-cn.chBuf:
			if err := action(); err != nil {
				return err
			}
		}
	}
}

func (cn *conn) ping() error {
	ctx, cancel := context.WithTimeout(cn.ctx, pingTimeout)
	defer cancel()
	return cn.ws.Ping(ctx)
}

func (cn *conn) close(err error) {
	cn.closeOnce.Do(func() {
		disconnects.Add(context.Background(), 1)

		switch {
		case err == nil, errors.Is(err, context.Canceled):
			cn.logger.Info("Signaling connection closed")
			_ = cn.ws.Close(websocket.StatusNormalClosure, "bye")
		case websocket.CloseStatus(err) != -1, errors.Is(err, net.ErrClosed):
			cn.logger.Info("Signaling connection closed by server", log.Error(err))
			_ = cn.ws.CloseNow()
		case errors.Is(err, ErrBufferFull):
			cn.logger.Error("Signaling connection closed, buffer full")
			_ = cn.ws.Close(websocket.StatusPolicyViolation, "buffer full")
		default:
			cn.logger.Error("Signaling connection failed", log.Error(err))
			_ = cn.ws.CloseNow()
		}
		cn.cancel()
	})
}
