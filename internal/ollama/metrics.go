package ollama

import (
	"sync/atomic"
	"time"
)

// Metrics tracks gateway call counters.
type Metrics struct {
	GatewayCalls   int64
	GatewayErrors  int64
	GatewayLatency int64 // total nanoseconds
}

var globalMetrics = &Metrics{}

// GetMetrics returns the current metrics snapshot.
func GetMetrics() Metrics {
	return Metrics{
		GatewayCalls:   atomic.LoadInt64(&globalMetrics.GatewayCalls),
		GatewayErrors:  atomic.LoadInt64(&globalMetrics.GatewayErrors),
		GatewayLatency: atomic.LoadInt64(&globalMetrics.GatewayLatency),
	}
}

// ResetMetrics resets all counters (useful for testing).
func ResetMetrics() {
	atomic.StoreInt64(&globalMetrics.GatewayCalls, 0)
	atomic.StoreInt64(&globalMetrics.GatewayErrors, 0)
	atomic.StoreInt64(&globalMetrics.GatewayLatency, 0)
}

func recordGatewayCall(duration time.Duration, err error) {
	atomic.AddInt64(&globalMetrics.GatewayCalls, 1)
	atomic.AddInt64(&globalMetrics.GatewayLatency, duration.Nanoseconds())
	if err != nil {
		atomic.AddInt64(&globalMetrics.GatewayErrors, 1)
	}
}
