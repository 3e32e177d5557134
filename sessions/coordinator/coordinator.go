package coordinator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/talkline/roomsession/internal/jwt"
	"github.com/talkline/roomsession/internal/log"
	"github.com/talkline/roomsession/internal/retry"
	"github.com/talkline/roomsession/internal/scheduler"
	intsync "github.com/talkline/roomsession/internal/sync"
	"github.com/talkline/roomsession/sessions"
)

var _ sessions.Coordinator = (*Coordinator)(nil)

// Coordinator serializes every join, leave and rejoin of one account on a
// single loop goroutine. Network calls run on their own goroutines and post
// their completions back to the loop, so loop-owned fields need no locking.
// Completions of attempts that are no longer current are recognised by
// generation and either discarded or handed to the compensator.
type Coordinator struct {
	backend  sessions.BackendRoomClient
	gateway  sessions.SignalingGateway
	registry *registry
	// reservations maps a token to the generation of its authoritative join.
	reservations *intsync.Map[string, uint64]
	compensator  *compensator
	tokens       jwt.Inspector
	policy       retry.Policy
	sched        *scheduler.KeyedScheduler
	clock        clockwork.Clock
	eventBuffer  int

	actions  chan func()
	ctx      context.Context
	cancel   context.CancelFunc
	started  atomic.Bool
	loopDone chan struct{}
	network  sync.WaitGroup

	// owned by the loop
	gen     uint64
	join    *attempt
	leave   *leaveAttempt
	rejoins map[string]*attempt
	retries map[string]*attempt
	exiting map[string]int
	rooms   map[string]*sessions.RoomMetadata
	pending *sessions.PendingResume

	subsMu  sync.Mutex
	subs    map[uint64]chan sessions.Event
	nextSub uint64
	closed  bool

	logger *log.Logger
}

// New builds a coordinator for one account. gateway may be nil when the
// account has no signaling server.
func New(cfg *Config, backend sessions.BackendRoomClient, gateway sessions.SignalingGateway, logger *log.Logger) *Coordinator {
	return newCoordinator(cfg, backend, gateway, clockwork.NewRealClock(), logger)
}

func newCoordinator(
	cfg *Config,
	backend sessions.BackendRoomClient,
	gateway sessions.SignalingGateway,
	clock clockwork.Clock,
	logger *log.Logger,
) *Coordinator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if backend == nil {
		panic("backend is required")
	}
	logger = logger.Module("Coordinator")

	eventBuffer := cfg.EventBuffer
	if eventBuffer < 1 {
		eventBuffer = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		backend:      backend,
		gateway:      gateway,
		registry:     newRegistry(),
		reservations: intsync.NewMap[string, uint64](),
		tokens:       jwt.NewInspector(cfg.HelloTokenLeeway),
		policy:       cfg.retryPolicy(),
		sched:        scheduler.NewKeyedSchedulerWithClock(logger.Module("Scheduler"), clock),
		clock:        clock,
		eventBuffer:  eventBuffer,
		actions:      make(chan func(), 256),
		ctx:          ctx,
		cancel:       cancel,
		loopDone:     make(chan struct{}),
		rejoins:      make(map[string]*attempt),
		retries:      make(map[string]*attempt),
		exiting:      make(map[string]int),
		rooms:        make(map[string]*sessions.RoomMetadata),
		subs:         make(map[uint64]chan sessions.Event),
		logger:       logger,
	}
	c.compensator = newCompensator(&cfg.Compensation, backend, c.reserved, c.onCompensationIdle,
		logger.Module("Compensator"))
	return c
}

// Start runs the loop until Stop is called or ctx ends. Commands issued
// before Start are queued.
func (c *Coordinator) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return nil
	}
	context.AfterFunc(ctx, c.cancel)
	go c.loop()
	c.logger.Info("Coordinator started")
	return nil
}

// Stop abandons all attempts, waits for in-flight calls and gives pending
// compensations until ctx ends. Subscriber channels are closed afterwards.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.cancel()
	if c.started.Load() {
		<-c.loopDone
	}
	c.sched.Shutdown()

	var errs []error
	if err := c.waitNetwork(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := c.compensator.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	c.closeSubscribers()
	c.logger.Info("Coordinator stopped")

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (c *Coordinator) waitNetwork(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.network.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) loop() {
	defer close(c.loopDone)

	fired := c.sched.Chan()
	for {
		select {
		case <-c.ctx.Done():
			return
		case action := <-c.actions:
			action()
		case key, ok := <-fired:
			if !ok {
				fired = nil
				continue
			}
			c.fireRetry(key)
		}
	}
}

// enqueue hands an action to the loop. After Stop it is dropped.
func (c *Coordinator) enqueue(action func()) {
	select {
	case c.actions <- action:
	case <-c.ctx.Done():
	}
}

// goNetwork runs a blocking call off the loop.
func (c *Coordinator) goNetwork(call func()) {
	c.network.Add(1)
	go func() {
		defer c.network.Done()
		call()
	}()
}

func (c *Coordinator) RequestJoin(token string, usage sessions.Usage) {
	if !c.validCommand("join", token, usage) {
		return
	}
	c.enqueue(func() { c.requestJoin(token, usage) })
}

func (c *Coordinator) RequestLeave(token string, usage sessions.Usage) {
	if !c.validCommand("leave", token, usage) {
		return
	}
	c.enqueue(func() { c.requestLeave(token, usage) })
}

func (c *Coordinator) Rejoin(token string) {
	if !c.validCommand("rejoin", token, sessions.UsageCall) {
		return
	}
	c.enqueue(func() { c.rejoin(token) })
}

// SetPendingResume replaces any earlier pending resume.
func (c *Coordinator) SetPendingResume(token string, withVideo bool) {
	c.enqueue(func() {
		if c.pending != nil {
			c.logger.Debug("Pending resume replaced", log.Token(c.pending.Token))
		}
		c.pending = &sessions.PendingResume{Token: token, WithVideo: withVideo}
	})
}

func (c *Coordinator) validCommand(op, token string, usage sessions.Usage) bool {
	if token == "" || !usage.Valid() {
		c.logger.Warn("Ignoring invalid command",
			log.String("op", op), log.Token(token), log.String("usage", string(usage)))
		return false
	}
	return true
}

func (c *Coordinator) Handle(token string) (sessions.Handle, bool) {
	return c.registry.get(token)
}

func (c *Coordinator) Handles() []sessions.Handle {
	return c.registry.all()
}

func (c *Coordinator) IsInCall(token string) bool {
	h, ok := c.registry.get(token)
	return ok && h.InCall
}

func (c *Coordinator) IsInChat(token string) bool {
	h, ok := c.registry.get(token)
	return ok && h.InChat
}

// Subscribe returns a channel of events and a func to cancel. A subscriber
// that lets its buffer fill up is dropped and its channel closed.
func (c *Coordinator) Subscribe() (<-chan sessions.Event, func()) {
	ch := make(chan sessions.Event, c.eventBuffer)

	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() { c.unsubscribe(id) })
	}
}

func (c *Coordinator) unsubscribe(id uint64) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	if ch, ok := c.subs[id]; ok {
		delete(c.subs, id)
		close(ch)
	}
}

func (c *Coordinator) publish(ev sessions.Event) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	for id, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			c.logger.Warn("Subscriber buffer full, dropping subscriber", log.Uint64("subscriber", id))
			delete(c.subs, id)
			close(ch)
		}
	}
}

func (c *Coordinator) closeSubscribers() {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	c.closed = true
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

// reserved is called from compensator goroutines.
func (c *Coordinator) reserved(token string) bool {
	if c.registry.has(token) {
		return true
	}
	_, ok := c.reservations.Load(token)
	return ok
}

func (c *Coordinator) onCompensationIdle(token string) {
	c.enqueue(func() { c.resumeDeferred(token) })
}

func (c *Coordinator) compensate(token, reason string) {
	c.compensator.Dispatch(token, reason)
}

// exitInFlight reports whether a backend exit for token could still land.
func (c *Coordinator) exitInFlight(token string) bool {
	return c.exiting[token] > 0 || c.compensator.busy(token)
}
