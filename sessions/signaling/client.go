package signaling

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/talkline/roomsession/internal/errors"
	"github.com/talkline/roomsession/internal/jwt"
	"github.com/talkline/roomsession/internal/log"
	intotel "github.com/talkline/roomsession/internal/otel"
	"github.com/talkline/roomsession/sessions"
)

var _ sessions.SignalingGateway = (*Client)(nil)

// SettingsFunc fetches the account's signaling settings; called on every connect.
type SettingsFunc func(ctx context.Context) (*sessions.SignalingSettings, error)

// Client is a standalone signaling server session for one account. It
// connects lazily on the first Join and reconnects after the connection drops.
// The server keeps a session in at most one room, so Leave only acts on the
// room the connection is currently in.
type Client struct {
	cfg      *Config
	settings SettingsFunc
	tokens   jwt.Inspector
	clock    clockwork.Clock
	tracer   trace.Tracer

	sfConnect singleflight.Group

	mu          sync.Mutex
	conn        *conn
	currentRoom string

	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger
}

func NewClient(cfg *Config, settings SettingsFunc, logger *log.Logger) *Client {
	return newClient(cfg, settings, clockwork.NewRealClock(), logger)
}

func newClient(cfg *Config, settings SettingsFunc, clock clockwork.Clock, logger *log.Logger) *Client {
	if logger == nil {
		panic("logger is required")
	}
	if settings == nil {
		panic("settings source is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		cfg:      cfg,
		settings: settings,
		tokens:   jwt.NewInspector(cfg.HelloTokenLeeway),
		clock:    clock,
		tracer:   otel.Tracer(intotel.TracerSignaling),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
	}
}

func (c *Client) Join(ctx context.Context, token, sessionID string, federation *sessions.FederationParams) error {
	ctx, span := intotel.StartSpan(ctx, c.tracer, "signaling.join",
		intotel.TokenAttr(token),
		attribute.Bool("federated", federation != nil))
	defer span.End()

	err := c.join(ctx, token, sessionID, federation)
	intotel.RecordError(span, err)
	requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", typeRoom),
		attribute.Bool("ok", err == nil)))
	return err
}

func (c *Client) join(ctx context.Context, token, sessionID string, federation *sessions.FederationParams) error {
	cn, err := c.connection(ctx)
	if err != nil {
		return err
	}

	_, err = cn.request(ctx, &message{
		Type: typeRoom,
		Room: &roomMessage{
			RoomID:     token,
			SessionID:  sessionID,
			Federation: federation,
		},
	})
	if err != nil {
		c.logger.Warn("Signaling room join failed", log.Token(token), log.Error(err))
		return err
	}

	c.mu.Lock()
	if c.conn == cn {
		c.currentRoom = token
	}
	c.mu.Unlock()

	c.logger.Info("Joined signaling room", log.Token(token), log.Session(sessionID))
	return nil
}

// Leave tells the server to take the session out of token's room. It does not
// wait for the reply.
func (c *Client) Leave(token string) {
	c.mu.Lock()
	cn := c.conn
	if cn == nil || c.currentRoom != token {
		current := c.currentRoom
		c.mu.Unlock()
		droppedLeave.Add(c.ctx, 1)
		c.logger.Debug("Signaling leave ignored", log.Token(token), log.String("currentRoom", current))
		return
	}
	c.currentRoom = ""
	c.mu.Unlock()

	err := cn.send(&message{
		Type: typeRoom,
		Room: &roomMessage{RoomID: ""},
	})
	if err != nil {
		c.logger.Warn("Signaling leave not sent", log.Token(token), log.Error(err))
		return
	}
	roomsLeft.Add(c.ctx, 1)
}

// Close drops the connection; later joins fail.
func (c *Client) Close() {
	c.cancel()

	c.mu.Lock()
	cn := c.conn
	c.conn = nil
	c.currentRoom = ""
	c.mu.Unlock()

	if cn != nil {
		cn.close(nil)
	}
}

func (c *Client) connection(ctx context.Context) (*conn, error) {
	c.mu.Lock()
	cn := c.conn
	c.mu.Unlock()
	if cn != nil && cn.alive() {
		return cn, nil
	}
	if err := c.ctx.Err(); err != nil {
		return nil, errors.Wrap(ErrConnectionClosed, err, "client closed")
	}

	ch := c.sfConnect.DoChan("connect", func() (any, error) {
		return c.connect()
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		//nolint:forcetypeassert
		return res.Val.(*conn), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// connect dials and says hello. It is bounded by the hello timeout rather
// than by any single caller, since callers share it.
func (c *Client) connect() (*conn, error) {
	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.HelloTimeout)
	defer cancel()

	settings, err := c.settings(ctx)
	if err != nil {
		return nil, errors.Wrap(ErrNoCredentials, err, "fetch signaling settings")
	}

	url := c.cfg.URL
	if url == "" {
		url = settings.Server
	}
	if url == "" {
		return nil, errors.New(ErrNoServer, "signaling settings carry no server")
	}

	hello, err := c.hello(settings)
	if err != nil {
		return nil, err
	}

	ws, _, err := websocket.Dial(ctx, websocketURL(url), nil)
	if err != nil {
		return nil, errors.Wrapf(ErrConnectionClosed, err, "dial %s", url)
	}

	cn := newConn(c.ctx, ws, c.cfg, c.clock, c.logger.Module("Conn"))
	cn.open()

	reply, err := cn.request(ctx, &message{Type: typeHello, Hello: hello})
	if err != nil {
		cn.close(err)
		return nil, err
	}
	if reply.Hello != nil {
		cn.sessionID = reply.Hello.SessionID
	}

	c.mu.Lock()
	old := c.conn
	c.conn = cn
	c.currentRoom = ""
	c.mu.Unlock()
	if old != nil {
		old.close(nil)
	}

	go func() {
		<-cn.ctx.Done()
		c.mu.Lock()
		if c.conn == cn {
			c.conn = nil
			c.currentRoom = ""
		}
		c.mu.Unlock()
	}()

	connects.Add(c.ctx, 1, metric.WithAttributes(attribute.String("version", hello.Version)))
	c.logger.Info("Signaling connected", log.String("url", url),
		log.String("version", hello.Version), log.Session(cn.sessionID))
	return cn, nil
}

// hello prefers a usable v2 token and falls back to the v1 ticket.
func (c *Client) hello(settings *sessions.SignalingSettings) (*helloMessage, error) {
	authURL := strings.TrimRight(c.cfg.BackendURL, "/") + backendPath

	if v2, ok := settings.HelloAuthParams[helloV2]; ok && v2.Token != "" {
		_, err := c.tokens.CheckUsable(v2.Token, c.clock.Now())
		if err == nil {
			params, _ := json.Marshal(sessions.HelloAuthParams{Token: v2.Token})
			return &helloMessage{
				Version: helloV2,
				Auth:    &helloAuth{Type: "client", URL: authURL, Params: params},
			}, nil
		}
		c.logger.Warn("Hello v2 token unusable, trying v1", log.Error(err))
	}

	v1, ok := settings.HelloAuthParams[helloV1]
	if !ok || v1.Ticket == "" {
		v1 = sessions.HelloAuthParams{UserID: settings.UserID, Ticket: settings.Ticket}
	}
	if v1.Ticket == "" {
		return nil, errors.New(ErrNoCredentials, "neither a usable v2 token nor a v1 ticket")
	}

	params, _ := json.Marshal(sessions.HelloAuthParams{UserID: v1.UserID, Ticket: v1.Ticket})
	return &helloMessage{
		Version: helloV1,
		Auth:    &helloAuth{URL: authURL, Params: params},
	}, nil
}

// websocketURL maps a signaling server base URL to its websocket endpoint.
func websocketURL(server string) string {
	u := strings.TrimRight(server, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	if !strings.HasSuffix(u, "/spreed") {
		u += "/spreed"
	}
	return u
}
