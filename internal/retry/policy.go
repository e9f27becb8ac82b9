// Package retry computes backoff delays for failed clip jobs.
package retry

import "time"

// Policy is a pure exponential-backoff policy with a delay ceiling.
// Bounding growth at Cap keeps a stuck upstream dependency from pushing
// retries out by days.
type Policy struct {
	// BaseDelay is the delay after the first failed attempt.
	BaseDelay time.Duration

	// Cap is the maximum delay between attempts.
	Cap time.Duration

	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
}

// Delay returns the backoff before the next attempt, given the 1-based
// count of attempts already made: min(BaseDelay * 2^(attempt-1), Cap).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.Cap {
			return p.Cap
		}
	}
	if delay > p.Cap {
		return p.Cap
	}
	return delay
}

// Exhausted reports whether the job is out of retries: the initial
// attempt plus MaxRetries retries have all run.
func (p Policy) Exhausted(attempts int) bool {
	return attempts >= p.MaxRetries+1
}
