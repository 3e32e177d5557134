package coordinator

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"github.com/talkline/roomsession/internal/errors"
	"github.com/talkline/roomsession/internal/log"
	"github.com/talkline/roomsession/sessions"
)

// attempt is one logical join of a room: the backend join with its retries,
// then the signaling join. Rejoins use the same shape.
type attempt struct {
	gen       uint64
	token     string
	rejoin    bool
	inChat    bool
	inCall    bool
	calls     int
	sessionID string
	room      *sessions.RoomMetadata
	backoff   backoff.BackOff
	ctx       context.Context
	cancel    context.CancelFunc
	retryKey  string
	// deferred is set while an exit for the same room is still in flight.
	deferred bool
	// overtaken is the leave of the same room this join cancelled.
	overtaken *leaveAttempt
	logger   *log.Logger
}

func (a *attempt) setUsage(u sessions.Usage, on bool) {
	switch u {
	case sessions.UsageChat:
		a.inChat = on
	case sessions.UsageCall:
		a.inCall = on
	}
}

func (a *attempt) usages() []sessions.Usage {
	var out []sessions.Usage
	if a.inChat {
		out = append(out, sessions.UsageChat)
	}
	if a.inCall {
		out = append(out, sessions.UsageCall)
	}
	return out
}

func (c *Coordinator) newAttempt(token string, rejoin bool) *attempt {
	c.gen++
	ctx, cancel := context.WithCancel(c.ctx)
	return &attempt{
		gen:     c.gen,
		token:   token,
		rejoin:  rejoin,
		backoff: c.policy.NewBackOff(),
		ctx:     ctx,
		cancel:  cancel,
		logger:  c.logger.With(log.Token(token), log.Gen(c.gen), log.Bool("rejoin", rejoin)),
	}
}

// isCurrent reports whether completions of a may still change state.
func (c *Coordinator) isCurrent(a *attempt) bool {
	if a.rejoin {
		cur := c.rejoins[a.token]
		return cur != nil && cur.gen == a.gen && c.registry.has(a.token)
	}
	return c.join != nil && c.join.gen == a.gen
}

func (c *Coordinator) requestJoin(token string, usage sessions.Usage) {
	joinsRequested.Add(c.ctx, 1)

	if h, ok := c.registry.setUsage(token, usage, true); ok {
		c.logger.Debug("Room already joined, usage added",
			log.Token(token), log.String("usage", string(usage)))
		c.publish(sessions.JoinCompleted{Token: token, Handle: h, Room: c.rooms[token]})
		return
	}

	var overtaken *leaveAttempt
	if c.leave != nil && c.leave.token == token {
		c.logger.Info("Join cancels pending leave", log.Token(token))
		overtaken = c.leave
		overtaken.cancelled = true
		c.leave = nil
	}

	if c.join != nil && c.join.token == token {
		c.join.setUsage(usage, true)
		joinsMerged.Add(c.ctx, 1)
		c.join.logger.Debug("Usage merged into running join", log.String("usage", string(usage)))
		return
	}

	c.abandonJoin("superseded")

	a := c.newAttempt(token, false)
	a.setUsage(usage, true)
	a.overtaken = overtaken
	c.join = a
	c.reservations.Store(token, a.gen)

	if c.exitInFlight(token) {
		a.deferred = true
		a.logger.Info("Join waits for exit of the same room")
		return
	}
	c.callJoin(a)
}

// abandonJoin drops the authoritative join. A call still on the wire will
// complete as non-current and be compensated.
func (c *Coordinator) abandonJoin(reason string) {
	a := c.join
	if a == nil {
		return
	}
	a.logger.Info("Join abandoned", log.String("reason", reason))
	joinsAbandoned.Add(c.ctx, 1)
	c.join = nil
	c.reservations.Delete(a.token)
	c.stopAttempt(a)

	// nothing replaces the overtaken leave, so its exit is reported after all
	if l := a.overtaken; l != nil && !l.done {
		l.cancelled = false
		if c.leave == nil {
			c.leave = l
		}
	}
}

func (c *Coordinator) stopAttempt(a *attempt) {
	if a.retryKey != "" {
		c.sched.Cancel(a.retryKey)
		delete(c.retries, a.retryKey)
		a.retryKey = ""
	}
	a.cancel()
}

// resumeDeferred starts a join that was waiting on an exit for token.
func (c *Coordinator) resumeDeferred(token string) {
	a := c.join
	if a == nil || a.token != token || !a.deferred || c.exitInFlight(token) {
		return
	}
	a.deferred = false
	a.logger.Info("Exit finished, resuming join")
	c.callJoin(a)
}

func (c *Coordinator) callJoin(a *attempt) {
	a.calls++
	joinCalls.Add(c.ctx, 1)
	a.logger.Debug("Joining room on backend", log.Int("call", a.calls))

	ctx, token := a.ctx, a.token
	c.goNetwork(func() {
		res, err := c.backend.Join(ctx, token)
		c.enqueue(func() { c.onBackendJoined(a, res, err) })
	})
}

func (c *Coordinator) onBackendJoined(a *attempt, res *sessions.JoinResult, err error) {
	if !c.isCurrent(a) {
		if err == nil || sessions.IsCancelled(err) {
			c.compensate(a.token, "backend join outlived its attempt")
		} else {
			a.logger.Debug("Discarding failed join of stale attempt", log.Error(err))
		}
		return
	}

	if err == nil && (res == nil || res.SessionID == "") {
		err = &sessions.Error{
			Kind:   sessions.KindUnknown,
			Reason: sessions.ReasonUnknown,
			Err:    errors.New(ErrEmptySession, "backend join returned no session"),
		}
	}
	if err != nil {
		c.retryOrFail(a, sessions.Classify(err))
		return
	}

	a.sessionID = res.SessionID
	if res.Room != nil {
		a.room = res.Room
	}
	a.logger.Info("Joined room on backend", log.Session(a.sessionID), log.Int("calls", a.calls))
	c.joinSignaling(a)
}

func (c *Coordinator) retryOrFail(a *attempt, e *sessions.Error) {
	if e.Retryable() {
		if delay := a.backoff.NextBackOff(); delay != backoff.Stop {
			a.logger.Info("Backend join failed, retrying",
				log.Int("call", a.calls), log.Duration("delay", delay), log.Error(e))
			if delay <= 0 {
				c.callJoin(a)
				return
			}
			a.retryKey = fmt.Sprintf("join/%d", a.gen)
			c.retries[a.retryKey] = a
			c.sched.Enqueue(a.retryKey, delay)
			return
		}
	}
	c.failAttempt(a, e)
}

func (c *Coordinator) fireRetry(key string) {
	a, ok := c.retries[key]
	if !ok {
		return
	}
	delete(c.retries, key)
	a.retryKey = ""
	if !c.isCurrent(a) {
		return
	}
	c.callJoin(a)
}

// joinSignaling is the second phase. Without a gateway the join commits directly.
func (c *Coordinator) joinSignaling(a *attempt) {
	if c.gateway == nil {
		c.commit(a)
		return
	}

	ctx, token, sessionID, room := a.ctx, a.token, a.sessionID, a.room
	c.goNetwork(func() {
		room, federation, err := c.prepareSignaling(ctx, token, room)
		if err == nil {
			if err = c.gateway.Join(ctx, token, sessionID, federation); err != nil {
				err = sessions.NewSignalingError(err)
			}
		}
		c.enqueue(func() { c.onSignalingJoined(a, sessionID, room, err) })
	})
}

// prepareSignaling resolves the federation parameters of a room. It runs off
// the loop and only touches immutable coordinator state.
func (c *Coordinator) prepareSignaling(
	ctx context.Context,
	token string,
	room *sessions.RoomMetadata,
) (*sessions.RoomMetadata, *sessions.FederationParams, error) {
	if room == nil {
		fetched, err := c.backend.Get(ctx, token)
		if err != nil {
			c.logger.Warn("Room metadata unavailable, treating room as local",
				log.Token(token), log.Error(err))
		} else {
			room = fetched
		}
	}
	if !room.IsFederated() {
		return room, nil, nil
	}

	settings, err := c.backend.GetSignalingSettings(ctx, token)
	if err != nil {
		return room, nil, sessions.NewConfigurationError(err)
	}
	federation := settings.FederationParams()
	if federation == nil {
		return room, nil, sessions.NewConfigurationError(
			errors.New(ErrNoFederation, "federated room without federation settings"))
	}
	if _, err := c.tokens.CheckUsable(federation.Token, c.clock.Now()); err != nil {
		return room, nil, sessions.NewConfigurationError(err)
	}
	return room, federation, nil
}

func (c *Coordinator) onSignalingJoined(a *attempt, sessionID string, room *sessions.RoomMetadata, err error) {
	if !c.isCurrent(a) {
		// skipped by the compensator when the room is reserved again
		c.compensate(a.token, "signaling join outlived its attempt")
		return
	}
	if a.sessionID != sessionID {
		a.logger.Warn("Ignoring signaling result for another session", log.Session(sessionID))
		return
	}
	if room != nil {
		a.room = room
	}

	if err != nil {
		c.failAttempt(a, sessions.Classify(err))
		if !a.rejoin {
			c.compensate(a.token, "signaling join failed")
		}
		return
	}
	c.commit(a)
}

func (c *Coordinator) commit(a *attempt) {
	if a.rejoin {
		delete(c.rejoins, a.token)
		a.cancel()
		h, ok := c.registry.setSession(a.token, a.sessionID)
		if !ok {
			return
		}
		if a.room != nil {
			c.rooms[a.token] = a.room
		}
		joinsCompleted.Add(c.ctx, 1)
		a.logger.Info("Rejoined room", log.Session(a.sessionID))
		c.publish(sessions.JoinCompleted{Token: a.token, Handle: h, Room: c.rooms[a.token]})
		return
	}

	h := sessions.Handle{
		Token:     a.token,
		SessionID: a.sessionID,
		InChat:    a.inChat,
		InCall:    a.inCall,
	}
	// the handle takes over the reservation before it is released
	c.registry.put(h)
	c.rooms[a.token] = a.room
	c.join = nil
	c.reservations.Delete(a.token)
	a.cancel()

	joinsCompleted.Add(c.ctx, 1)
	a.logger.Info("Joined room", log.Session(a.sessionID),
		log.Bool("inChat", h.InChat), log.Bool("inCall", h.InCall))
	c.publish(sessions.JoinCompleted{Token: a.token, Handle: h, Room: a.room})
}

func (c *Coordinator) failAttempt(a *attempt, e *sessions.Error) {
	if a.rejoin {
		delete(c.rejoins, a.token)
	} else {
		c.join = nil
		c.reservations.Delete(a.token)
	}
	c.stopAttempt(a)

	joinsFailed.Add(c.ctx, 1)
	a.logger.Warn("Join failed", log.Int("calls", a.calls), log.Error(e))
	c.publish(sessions.JoinFailed{
		Token:    a.token,
		Usages:   a.usages(),
		Attempts: a.calls,
		Err:      e,
	})
}
