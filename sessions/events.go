package sessions

type EventType string

const (
	EventJoinCompleted  EventType = "joinCompleted"
	EventJoinFailed     EventType = "joinFailed"
	EventLeaveCompleted EventType = "leaveCompleted"
	EventResumeCall     EventType = "resumeCall"
)

// Event is delivered to subscribers in the order the coordinator produced it.
type Event interface {
	Type() EventType
	RoomToken() string
}

type JoinCompleted struct {
	Token  string        `json:"token"`
	Handle Handle        `json:"handle"`
	Room   *RoomMetadata `json:"room,omitempty"`
}

type JoinFailed struct {
	Token    string  `json:"token"`
	Usages   []Usage `json:"usages"`
	Attempts int     `json:"attempts"`
	Err      *Error  `json:"error"`
}

type LeaveCompleted struct {
	Token string `json:"token"`
	// Err is the classified exit failure; the handle is gone either way.
	Err *Error `json:"error,omitempty"`
}

// ResumeCall fires when a pending resume is consumed after a leave.
type ResumeCall struct {
	Token     string `json:"token"`
	WithVideo bool   `json:"withVideo"`
}

// PendingResume is the single deferred call start queued with SetPendingResume.
type PendingResume struct {
	Token     string
	WithVideo bool
}

func (JoinCompleted) Type() EventType  { return EventJoinCompleted }
func (JoinFailed) Type() EventType     { return EventJoinFailed }
func (LeaveCompleted) Type() EventType { return EventLeaveCompleted }
func (ResumeCall) Type() EventType     { return EventResumeCall }

func (e JoinCompleted) RoomToken() string  { return e.Token }
func (e JoinFailed) RoomToken() string     { return e.Token }
func (e LeaveCompleted) RoomToken() string { return e.Token }
func (e ResumeCall) RoomToken() string     { return e.Token }
