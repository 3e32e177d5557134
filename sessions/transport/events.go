package transport

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/talkline/roomsession/internal/log"
	"github.com/talkline/roomsession/sessions"
)

const (
	pingInterval = 10 * time.Second
	pingTimeout  = 3 * time.Second
	writeTimeout = 3 * time.Second
)

// eventFrame is one coordinator event on the stream.
type eventFrame struct {
	Type  sessions.EventType `json:"type"`
	Token string             `json:"token"`
	Data  sessions.Event     `json:"data"`
}

// streamEvents upgrades to a websocket and forwards coordinator events until
// either side goes away. A client too slow to keep up is disconnected by the
// coordinator, which ends the stream.
func (r *Router) streamEvents(c *gin.Context) {
	ws, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: r.allowedOrigins,
	})
	if err != nil {
		r.logger.Warn("WebSocket open failed",
			log.String("remote_addr", c.Request.RemoteAddr),
			log.Error(err))
		return
	}

	events, unsubscribe := r.coordinator.Subscribe()
	defer unsubscribe()

	streamClients.Add(context.Background(), 1)
	defer streamClients.Add(context.Background(), -1)

	r.logger.Info("Event stream connected",
		log.String("remote_addr", c.Request.RemoteAddr),
		log.String("user_agent", c.Request.UserAgent()))

	// the stream is one-way; reading only serves control frames
	ctx := ws.CloseRead(c.Request.Context())

	err = pumpEvents(ctx, ws, events, r.clock)
	switch {
	case err == nil:
		r.logger.Info("Event stream ended")
		_ = ws.Close(websocket.StatusGoingAway, "subscription closed")
	case websocket.CloseStatus(err) != -1, ctx.Err() != nil:
		r.logger.Info("Event stream closed by client")
		_ = ws.CloseNow()
	default:
		r.logger.Warn("Event stream failed", log.Error(err))
		_ = ws.Close(websocket.StatusInternalError, "write failed")
	}
}

// pumpEvents returns nil once events is closed.
func pumpEvents(ctx context.Context, ws *websocket.Conn, events <-chan sessions.Event, clock clockwork.Clock) error {
	ticker := clock.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := ws.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, ws, eventFrame{Type: ev.Type(), Token: ev.RoomToken(), Data: ev})
			cancel()
			if err != nil {
				return err
			}
		}
	}
}
