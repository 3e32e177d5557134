package coordinator

import (
	"context"
	"sort"

	"github.com/talkline/roomsession/internal/sync"
	"github.com/talkline/roomsession/sessions"
)

// registry holds committed handles. Only the coordinator loop writes; any
// goroutine may read, and always gets copies.
type registry struct {
	handles *sync.Map[string, sessions.Handle]
}

func newRegistry() *registry {
	return &registry{handles: sync.NewMap[string, sessions.Handle]()}
}

func (r *registry) get(token string) (sessions.Handle, bool) {
	return r.handles.Load(token)
}

func (r *registry) has(token string) bool {
	_, ok := r.handles.Load(token)
	return ok
}

func (r *registry) put(h sessions.Handle) {
	if _, existed := r.handles.Load(h.Token); !existed {
		roomsActive.Add(context.Background(), 1)
	}
	r.handles.Store(h.Token, h)
}

// setUsage flips one usage flag of an existing handle.
func (r *registry) setUsage(token string, usage sessions.Usage, on bool) (sessions.Handle, bool) {
	return r.handles.Update(token, func(h sessions.Handle) sessions.Handle {
		return h.With(usage, on)
	})
}

func (r *registry) setSession(token, sessionID string) (sessions.Handle, bool) {
	return r.handles.Update(token, func(h sessions.Handle) sessions.Handle {
		h.SessionID = sessionID
		h.InCall = true
		return h
	})
}

func (r *registry) remove(token string) (sessions.Handle, bool) {
	h, ok := r.handles.LoadAndDelete(token)
	if ok {
		roomsActive.Add(context.Background(), -1)
	}
	return h, ok
}

func (r *registry) all() []sessions.Handle {
	handles := r.handles.Values()
	sort.Slice(handles, func(i, j int) bool {
		return handles[i].Token < handles[j].Token
	})
	return handles
}
