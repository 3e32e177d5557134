package ocs

import (
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/talkline/roomsession/internal/otel"
)

var requestDuration metric.Float64Histogram

func init() {
	f := intotel.NewFactory("sessions.ocs", intotel.PrefixOCS)

	f.Float64Histogram(&requestDuration, "request.duration",
		metric.WithDescription("OCS request latency by operation and status"),
		metric.WithUnit("s"))
}
