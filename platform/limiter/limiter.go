package limiter

import "time"

// Limitee is the limit that we want to apply.
type Limitee struct {
	Hash       string
	Limit      int64
	WindowSize time.Duration
}

// Limiter is the one providing the actual limitation implementation.
type Limiter interface {
	// Request checks if limitee is still within its window quota. It returns
	// the remaining quota, -1 once exhausted, and when the window resets.
	Request(*Limitee) (int64, time.Time, error)
}
