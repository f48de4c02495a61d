package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncSignUp is a no-op.
func (n *NoopRecorder) IncSignUp(status string) {}

// IncSignIn is a no-op.
func (n *NoopRecorder) IncSignIn(status string) {}

// IncSignOut is a no-op.
func (n *NoopRecorder) IncSignOut() {}

// IncLinkTokenIssued is a no-op.
func (n *NoopRecorder) IncLinkTokenIssued() {}

// IncBankLinked is a no-op.
func (n *NoopRecorder) IncBankLinked(status string) {}

// ObserveExchangeDuration is a no-op.
func (n *NoopRecorder) ObserveExchangeDuration(duration time.Duration) {}

// IncHomeCacheHit is a no-op.
func (n *NoopRecorder) IncHomeCacheHit() {}

// IncHomeCacheMiss is a no-op.
func (n *NoopRecorder) IncHomeCacheMiss() {}
