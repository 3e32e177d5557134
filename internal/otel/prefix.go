package otel

// Metric prefixes per component.
const (
	PrefixCoordinator = "roomsession.coordinator"
	PrefixOCS         = "roomsession.ocs"
	PrefixSignaling   = "roomsession.signaling"
	PrefixControlAPI  = "roomsession.api"
)

// Tracer names used with otel.Tracer.
const (
	TracerOCS       = "github.com/talkline/roomsession/sessions/ocs"
	TracerSignaling = "github.com/talkline/roomsession/sessions/signaling"
)
