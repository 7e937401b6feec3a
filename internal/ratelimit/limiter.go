// Package ratelimit throttles how fast one session may open new channels,
// so a misbehaving or compromised client can't exhaust the relay's
// outbound-socket budget by opening channels as fast as the wire allows.
package ratelimit

import "golang.org/x/time/rate"

// Limiter wraps golang.org/x/time/rate for the one thing the relay needs:
// a yes/no gate checked once per channel-open attempt.
type Limiter struct {
	l *rate.Limiter
}

// New returns a Limiter permitting rps channel-opens per second on average,
// with a burst of up to burst immediately.
func New(rps float64, burst int) *Limiter {
	return &Limiter{l: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Allow reports whether a channel-open attempt may proceed right now.
func (l *Limiter) Allow() bool {
	return l.l.Allow()
}
