package infra

import (
	"time"
)

const (
	backoffBase = 500 * time.Millisecond
	backoffMax  = 30 * time.Second
)

// CalculateBackoff returns the exponential reconnect delay for a retry
// count: base * 2^retry, capped. Used by the WebSocket book watcher;
// the trading loop itself never backs off, its cadence is fixed.
func CalculateBackoff(retry int) time.Duration {
	if retry < 0 {
		return backoffBase
	}
	// 2^26 * 500ms is already far past the cap.
	if retry > 26 {
		return backoffMax
	}
	d := backoffBase * time.Duration(1<<retry)
	if d > backoffMax {
		return backoffMax
	}
	return d
}
