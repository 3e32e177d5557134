package signaling

import (
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/talkline/roomsession/internal/otel"
)

var (
	connects     metric.Int64Counter
	requests     metric.Int64Counter
	disconnects  metric.Int64Counter
	roomsLeft    metric.Int64Counter
	droppedLeave metric.Int64Counter
)

func init() {
	f := intotel.NewFactory("sessions.signaling", intotel.PrefixSignaling)

	f.Int64Counter(&connects, "connects",
		metric.WithDescription("Signaling connections established, by hello version"))
	f.Int64Counter(&requests, "requests",
		metric.WithDescription("Signaling requests by type and result"))
	f.Int64Counter(&disconnects, "disconnects",
		metric.WithDescription("Signaling connections closed"))
	f.Int64Counter(&roomsLeft, "rooms.left",
		metric.WithDescription("Room leave messages sent"))
	f.Int64Counter(&droppedLeave, "rooms.leave_ignored",
		metric.WithDescription("Leaves ignored because the connection is in another room"))
}
