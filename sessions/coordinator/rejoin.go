package coordinator

import (
	"github.com/talkline/roomsession/internal/log"
	"github.com/talkline/roomsession/sessions"
)

// rejoin obtains a fresh session for a joined room while keeping its handle.
// Without a handle it is a plain call join.
func (c *Coordinator) rejoin(token string) {
	if !c.registry.has(token) {
		c.logger.Info("Rejoin without handle, joining for call", log.Token(token))
		c.requestJoin(token, sessions.UsageCall)
		return
	}

	if old := c.rejoins[token]; old != nil {
		old.logger.Info("Rejoin superseded")
		joinsAbandoned.Add(c.ctx, 1)
		c.stopAttempt(old)
	}

	a := c.newAttempt(token, true)
	a.inCall = true
	c.rejoins[token] = a
	c.callJoin(a)
}

// cancelRejoin drops the rejoin of token, if any. Its calls complete as stale.
func (c *Coordinator) cancelRejoin(token string) {
	a := c.rejoins[token]
	if a == nil {
		return
	}
	delete(c.rejoins, token)
	joinsAbandoned.Add(c.ctx, 1)
	c.stopAttempt(a)
}
