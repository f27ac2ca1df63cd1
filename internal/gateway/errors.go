package gateway

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions callers branch on with errors.Is.
var (
	// ErrAuth covers rejected credentials and bad nonces.
	ErrAuth = errors.New("gateway: authentication failed")

	// ErrOrderNotFound is returned by CancelOrder when the exchange no
	// longer knows the id (already filled or already canceled).
	ErrOrderNotFound = errors.New("gateway: order not found")
)

// NetworkError wraps transport-level failures: timeouts, connection
// resets, 5xx responses. A cycle seeing one must abort rather than
// decide on partial data.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("gateway: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RejectedError means the exchange understood the order and said no:
// insufficient balance, below minimum notional, price out of bounds.
// Not fatal; the order is simply not placed this cycle.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("gateway: order rejected: %s", e.Reason)
}

// IsNetwork reports whether err is (or wraps) a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsRejected reports whether err is (or wraps) a RejectedError.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}

// IsAuth reports whether err is (or wraps) ErrAuth.
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}
