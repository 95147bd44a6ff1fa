package stream

import (
	"fmt"
	"time"
)

// Backoff returns the delay before retry n (1-indexed): base * 2^(n-1).
// The shift is capped so very large n cannot overflow.
func Backoff(base time.Duration, n int) time.Duration {
	if n < 1 {
		return 0
	}
	shift := n - 1
	if shift > 30 {
		shift = 30
	}
	return base << shift
}

const (
	msgParseFailure = "Failed to parse streaming data"
	msgVetoed       = "Streaming connection failed"
)

func exhaustedMessage(maxRetries int, cause error) string {
	return fmt.Sprintf("Failed to establish streaming connection after maximum retries (%d): %v", maxRetries, cause)
}

func vetoedMessage(cause error) string {
	return fmt.Sprintf("%s: %v", msgVetoed, cause)
}
