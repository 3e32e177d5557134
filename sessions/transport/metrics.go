package transport

import (
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/talkline/roomsession/internal/otel"
)

var (
	commands      metric.Int64Counter
	streamClients metric.Int64UpDownCounter
)

func init() {
	f := intotel.NewFactory("sessions.transport", intotel.PrefixControlAPI)

	f.Int64Counter(&commands, "commands",
		metric.WithDescription("Coordinator commands accepted over HTTP"))
	f.Int64UpDownCounter(&streamClients, "stream.clients",
		metric.WithDescription("Connected event stream clients"))
}
