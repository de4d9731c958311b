package session

import "time"

// ReconnectPolicy governs how the supervisor retries after an unintended
// connection loss.
type ReconnectPolicy struct {
	// Delays is the escalating ladder indexed by consecutive-failure count.
	Delays []time.Duration `yaml:"delays"`
	// MaxDelay caps every attempt past the end of the ladder.
	MaxDelay time.Duration `yaml:"max_delay"`
	// MaxAttempts is the number of consecutive failures after which the
	// supervisor gives up and asks the user to reopen the session.
	MaxAttempts int `yaml:"max_attempts"`
}

// DefaultReconnectPolicy returns the standard backoff ladder.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		Delays: []time.Duration{
			1500 * time.Millisecond,
			3 * time.Second,
			5 * time.Second,
			8 * time.Second,
			13 * time.Second,
			21 * time.Second,
		},
		MaxDelay:    30 * time.Second,
		MaxAttempts: 10,
	}
}

// Delay returns the wait before the given zero-based attempt.
func (p ReconnectPolicy) Delay(attempt int) time.Duration {
	if attempt >= 0 && attempt < len(p.Delays) {
		return p.Delays[attempt]
	}
	return p.MaxDelay
}
