package cache

import (
	"math"
	"time"
)

const (
	// StaleForever keeps a value fresh until it is invalidated.
	StaleForever time.Duration = math.MaxInt64

	DefaultMaxAttempts = 3
	DefaultGCTime      = 5 * time.Minute

	BaseRetryDelay = time.Second
	MaxRetryDelay  = 30 * time.Second
)

// Policy configures one query type.
type Policy struct {
	// PollInterval refetches observed keys on this period. Zero disables polling.
	PollInterval time.Duration
	// StaleTime is how long a value is served without refetching. Zero means always stale.
	StaleTime time.Duration
	// MaxAttempts bounds the attempts of one fetch cycle, the first one included.
	MaxAttempts    int
	RefetchOnFocus bool
	// GCTime is how long an unobserved entry is kept. Zero evicts it as soon as it is unobserved.
	GCTime time.Duration
}

var DefaultPolicy = Policy{
	MaxAttempts:    DefaultMaxAttempts,
	RefetchOnFocus: true,
	GCTime:         DefaultGCTime,
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) fresh(updatedAt, now time.Time) bool {
	if p.StaleTime == StaleForever {
		return true
	}
	return now.Sub(updatedAt) < p.StaleTime
}

// Backoff is the delay after the n-th consecutive failure: 1s, 2s, 4s ... capped at 30s.
func Backoff(failures int) time.Duration {
	if failures < 1 {
		return 0
	}
	if failures > 16 {
		return MaxRetryDelay
	}
	d := BaseRetryDelay << (failures - 1)
	if d > MaxRetryDelay {
		return MaxRetryDelay
	}
	return d
}
