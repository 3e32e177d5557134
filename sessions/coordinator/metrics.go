package coordinator

import (
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/talkline/roomsession/internal/otel"
)

var (
	joinsRequested metric.Int64Counter
	joinsMerged    metric.Int64Counter
	joinCalls      metric.Int64Counter
	joinsCompleted metric.Int64Counter
	joinsFailed    metric.Int64Counter
	joinsAbandoned metric.Int64Counter

	leavesRequested metric.Int64Counter
	exitCalls       metric.Int64Counter
	exitsFailed     metric.Int64Counter

	orphansDispatched metric.Int64Counter
	orphansCleaned    metric.Int64Counter
	orphansSkipped    metric.Int64Counter
	orphansFailed     metric.Int64Counter

	roomsActive metric.Int64UpDownCounter
)

func init() {
	f := intotel.NewFactory("sessions.coordinator", intotel.PrefixCoordinator)

	f.Int64Counter(&joinsRequested, "joins.requested",
		metric.WithDescription("Join requests received, including fast-path ones"))
	f.Int64Counter(&joinsMerged, "joins.merged",
		metric.WithDescription("Join requests folded into an in-flight attempt for the same room"))
	f.Int64Counter(&joinCalls, "joins.calls",
		metric.WithDescription("Backend join calls issued, retries included"))
	f.Int64Counter(&joinsCompleted, "joins.completed",
		metric.WithDescription("Joins that committed a handle"))
	f.Int64Counter(&joinsFailed, "joins.failed",
		metric.WithDescription("Joins reported as failed to callers"))
	f.Int64Counter(&joinsAbandoned, "joins.abandoned",
		metric.WithDescription("Join attempts superseded or cancelled before committing"))

	f.Int64Counter(&leavesRequested, "leaves.requested",
		metric.WithDescription("Leave requests received"))
	f.Int64Counter(&exitCalls, "exits.calls",
		metric.WithDescription("Backend exit calls for a last usage"))
	f.Int64Counter(&exitsFailed, "exits.failed",
		metric.WithDescription("Backend exit calls that failed"))

	f.Int64Counter(&orphansDispatched, "orphans.dispatched",
		metric.WithDescription("Orphaned sessions handed to compensation"))
	f.Int64Counter(&orphansCleaned, "orphans.cleaned",
		metric.WithDescription("Orphaned sessions exited"))
	f.Int64Counter(&orphansSkipped, "orphans.skipped",
		metric.WithDescription("Compensations skipped because the room was reserved again"))
	f.Int64Counter(&orphansFailed, "orphans.failed",
		metric.WithDescription("Compensations that gave up"))

	f.Int64UpDownCounter(&roomsActive, "rooms.active",
		metric.WithDescription("Rooms currently held in the registry"))
}
