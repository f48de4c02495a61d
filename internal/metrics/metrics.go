// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth events
	IncSignUp(status string) // status: "success" or "failed"
	IncSignIn(status string)
	IncSignOut()

	// Bank-link events
	IncLinkTokenIssued()
	IncBankLinked(status string) // status: "success" or "failed"
	ObserveExchangeDuration(duration time.Duration)

	// Home render cache
	IncHomeCacheHit()
	IncHomeCacheMiss()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
