package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	SignUpsSucceeded        uint64
	SignUpsFailed           uint64
	SignInsSucceeded        uint64
	SignInsFailed           uint64
	SignOuts                uint64
	LinkTokensIssued        uint64
	BanksLinked             uint64
	BankLinksFailed         uint64
	ExchangeDurationCount   uint64
	ExchangeDurationTotalNs int64
	HomeCacheHits           uint64
	HomeCacheMisses         uint64
}

// InMemoryRecorder stores metrics in memory, for tests and the snapshot
// endpoint.
type InMemoryRecorder struct {
	signUpsSucceeded        uint64
	signUpsFailed           uint64
	signInsSucceeded        uint64
	signInsFailed           uint64
	signOuts                uint64
	linkTokensIssued        uint64
	banksLinked             uint64
	bankLinksFailed         uint64
	exchangeDurationCount   uint64
	exchangeDurationTotalNs int64
	homeCacheHits           uint64
	homeCacheMisses         uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		SignUpsSucceeded:        atomic.LoadUint64(&m.signUpsSucceeded),
		SignUpsFailed:           atomic.LoadUint64(&m.signUpsFailed),
		SignInsSucceeded:        atomic.LoadUint64(&m.signInsSucceeded),
		SignInsFailed:           atomic.LoadUint64(&m.signInsFailed),
		SignOuts:                atomic.LoadUint64(&m.signOuts),
		LinkTokensIssued:        atomic.LoadUint64(&m.linkTokensIssued),
		BanksLinked:             atomic.LoadUint64(&m.banksLinked),
		BankLinksFailed:         atomic.LoadUint64(&m.bankLinksFailed),
		ExchangeDurationCount:   atomic.LoadUint64(&m.exchangeDurationCount),
		ExchangeDurationTotalNs: atomic.LoadInt64(&m.exchangeDurationTotalNs),
		HomeCacheHits:           atomic.LoadUint64(&m.homeCacheHits),
		HomeCacheMisses:         atomic.LoadUint64(&m.homeCacheMisses),
	}
}

// IncSignUp increments the sign-up counter for the given status.
func (m *InMemoryRecorder) IncSignUp(status string) {
	if status == "success" {
		atomic.AddUint64(&m.signUpsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.signUpsFailed, 1)
}

// IncSignIn increments the sign-in counter for the given status.
func (m *InMemoryRecorder) IncSignIn(status string) {
	if status == "success" {
		atomic.AddUint64(&m.signInsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.signInsFailed, 1)
}

// IncSignOut increments the sign-out counter.
func (m *InMemoryRecorder) IncSignOut() {
	atomic.AddUint64(&m.signOuts, 1)
}

// IncLinkTokenIssued increments the link-token counter.
func (m *InMemoryRecorder) IncLinkTokenIssued() {
	atomic.AddUint64(&m.linkTokensIssued, 1)
}

// IncBankLinked increments the bank-link counter for the given status.
func (m *InMemoryRecorder) IncBankLinked(status string) {
	if status == "success" {
		atomic.AddUint64(&m.banksLinked, 1)
		return
	}
	atomic.AddUint64(&m.bankLinksFailed, 1)
}

// ObserveExchangeDuration records a token-exchange duration.
func (m *InMemoryRecorder) ObserveExchangeDuration(duration time.Duration) {
	atomic.AddUint64(&m.exchangeDurationCount, 1)
	atomic.AddInt64(&m.exchangeDurationTotalNs, duration.Nanoseconds())
}

// IncHomeCacheHit increments the home render cache hit counter.
func (m *InMemoryRecorder) IncHomeCacheHit() {
	atomic.AddUint64(&m.homeCacheHits, 1)
}

// IncHomeCacheMiss increments the home render cache miss counter.
func (m *InMemoryRecorder) IncHomeCacheMiss() {
	atomic.AddUint64(&m.homeCacheMisses, 1)
}
