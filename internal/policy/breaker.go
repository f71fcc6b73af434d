// Package policy holds small decision helpers shared by the control loops.
package policy

// Breaker counts consecutive failures and trips at a limit. The combat
// autopilot uses one per escalation path (repositions, attack rejections)
// and the navigator uses one for retries; they all escalate the same way.
type Breaker struct {
	limit    int
	failures int
}

// NewBreaker creates a breaker that trips after limit consecutive failures.
// A non-positive limit trips on the first failure.
func NewBreaker(limit int) *Breaker {
	if limit < 1 {
		limit = 1
	}
	return &Breaker{limit: limit}
}

// Fail records one failure and reports whether the breaker has tripped.
func (b *Breaker) Fail() bool {
	b.failures++
	return b.failures >= b.limit
}

// Success resets the consecutive-failure count.
func (b *Breaker) Success() {
	b.failures = 0
}

// Tripped reports whether the limit has been reached.
func (b *Breaker) Tripped() bool {
	return b.failures >= b.limit
}

// Failures returns the current consecutive-failure count.
func (b *Breaker) Failures() int {
	return b.failures
}
