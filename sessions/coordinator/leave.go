package coordinator

import (
	"github.com/talkline/roomsession/internal/log"
	"github.com/talkline/roomsession/sessions"
)

type leaveAttempt struct {
	gen   uint64
	token string
	// cancelled is set when a join for the same room arrived before the exit finished.
	cancelled bool
	done      bool
}

func (c *Coordinator) requestLeave(token string, usage sessions.Usage) {
	leavesRequested.Add(c.ctx, 1)

	if a := c.join; a != nil && a.token == token {
		a.setUsage(usage, false)
		if len(a.usages()) == 0 {
			c.abandonJoin("left before joined")
		} else {
			a.logger.Debug("Usage dropped from running join", log.String("usage", string(usage)))
		}
	}

	// a running rejoin would restore the call flag on commit
	if usage == sessions.UsageCall {
		c.cancelRejoin(token)
	}

	if h, ok := c.registry.setUsage(token, usage, false); ok && h.Idle() {
		c.removeHandle(token)
		c.startExit(token)
		return
	}

	// no network work, the resume can start right away
	c.consumePendingResume()
}

func (c *Coordinator) removeHandle(token string) {
	c.registry.remove(token)
	delete(c.rooms, token)
	c.cancelRejoin(token)
}

func (c *Coordinator) startExit(token string) {
	c.gen++
	l := &leaveAttempt{gen: c.gen, token: token}
	if c.leave != nil {
		c.logger.Debug("Leave supersedes earlier leave", log.Token(c.leave.token), log.Token(token))
	}
	c.leave = l
	c.exiting[token]++
	exitCalls.Add(c.ctx, 1)
	c.logger.Info("Leaving room", log.Token(token), log.Gen(l.gen))

	ctx := c.ctx
	c.goNetwork(func() {
		err := c.backend.Exit(ctx, token)
		c.enqueue(func() { c.onExited(l, err) })
	})
}

func (c *Coordinator) onExited(l *leaveAttempt, err error) {
	l.done = true
	if c.exiting[l.token]--; c.exiting[l.token] <= 0 {
		delete(c.exiting, l.token)
	}
	if c.leave == l {
		c.leave = nil
	}

	var failure *sessions.Error
	if err != nil {
		exitsFailed.Add(c.ctx, 1)
		failure = sessions.Classify(err)
		c.logger.Warn("Backend exit failed, session left to expire",
			log.Token(l.token), log.Gen(l.gen), log.Error(failure))
	}

	// runs before any deferred join of the same room reaches the gateway
	if c.gateway != nil {
		c.gateway.Leave(l.token)
	}

	if l.cancelled {
		c.logger.Info("Leave overtaken by join", log.Token(l.token), log.Gen(l.gen))
	} else {
		c.publish(sessions.LeaveCompleted{Token: l.token, Err: failure})
	}

	c.consumePendingResume()
	c.resumeDeferred(l.token)
}

func (c *Coordinator) consumePendingResume() {
	if c.pending == nil {
		return
	}
	p := *c.pending
	c.pending = nil
	c.logger.Info("Resuming call", log.Token(p.Token), log.Bool("withVideo", p.WithVideo))
	c.publish(sessions.ResumeCall{Token: p.Token, WithVideo: p.WithVideo})
}
