// Package limiter throttles repeated failed logins per account and source IP.
package limiter

import (
	"context"
	"time"
)

// Limiter tracks failed logins and enforces temporary lockouts. The ip hash
// is stored instead of the raw address.
type Limiter interface {
	// Allow reports whether a login may proceed, with a retry-after hint
	// when it may not.
	Allow(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error)
	// Success clears the failure counter for the pair.
	Success(ctx context.Context, username string, ipHash []byte) error
	// Failure records a failed attempt and reports whether it tripped a block.
	Failure(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error)
}
