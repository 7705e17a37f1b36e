package wallpaper

import "github.com/wallpaperio/wallpaperio/util"

// RetryCounter counts consecutive network failures shared by resolution and download.
// It never exceeds its ceiling: the failure that reaches it resets the count.
type RetryCounter struct {
	count   *util.SafeCounter
	ceiling int
}

// NewRetryCounter creates a counter with the given ceiling.
func NewRetryCounter(ceiling int) *RetryCounter {
	if ceiling < 1 {
		ceiling = 1
	}
	return &RetryCounter{count: util.NewSafeInt(), ceiling: ceiling}
}

// Fail records a failed attempt and reports whether another attempt is allowed.
func (r *RetryCounter) Fail() bool {
	if r.count.Increment() < r.ceiling {
		return true
	}
	r.count.Set(0)
	return false
}

// Reset clears the counter after a success.
func (r *RetryCounter) Reset() {
	r.count.Set(0)
}

// Value returns the current number of consecutive failures.
func (r *RetryCounter) Value() int {
	return r.count.Value()
}

// Ceiling returns the maximum number of attempts.
func (r *RetryCounter) Ceiling() int {
	return r.ceiling
}
