package wallpaper

import (
	"time"

	"github.com/wallpaperio/wallpaperio/util/log"
)

// SchedulerState is the externally visible state of the rotation queue.
type SchedulerState int

const (
	// StateIdle means the queue is empty.
	StateIdle SchedulerState = iota
	// StateQueued means the queue holds at least one entry.
	StateQueued
)

func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateQueued:
		return "Queued"
	default:
		return "Unknown"
	}
}

// rotationSource is the part of the catalog the scheduler reads.
type rotationSource interface {
	Eligible() ([]CatalogEntry, error)
	Exists(entry CatalogEntry) bool
}

// RotationScheduler owns the rotation queue and the rotation timer.
// It is not safe for concurrent use; the controller loop is its only caller.
type RotationScheduler struct {
	interval time.Duration
	queue    []CatalogEntry
	timer    *time.Timer
	gen      uint64
	halted   bool
	fire     func(gen uint64)
}

// NewRotationScheduler creates a stopped scheduler. fire is called from the
// timer goroutine with the generation the tick was armed under.
func NewRotationScheduler(interval time.Duration, fire func(gen uint64)) *RotationScheduler {
	return &RotationScheduler{interval: interval, fire: fire}
}

// Restart cancels any pending tick and arms a full interval. It also clears a halt.
func (s *RotationScheduler) Restart() {
	s.cancelTimer()
	s.gen++
	s.halted = false

	gen := s.gen
	s.timer = time.AfterFunc(s.interval, func() {
		s.fire(gen)
	})
}

// Stop cancels the pending tick. Ticks already in flight become stale.
func (s *RotationScheduler) Stop() {
	s.cancelTimer()
	s.gen++
}

// SetInterval changes the rotation interval and re-arms the timer unless halted.
func (s *RotationScheduler) SetInterval(interval time.Duration) {
	s.interval = interval
	if !s.halted && s.timer != nil {
		s.Restart()
	}
}

// Accept reports whether a tick armed under gen is still current.
func (s *RotationScheduler) Accept(gen uint64) bool {
	return gen == s.gen && !s.halted
}

// Halted reports whether repopulation found nothing and the timer was stopped.
func (s *RotationScheduler) Halted() bool {
	return s.halted
}

// State returns Idle when the queue is empty and Queued otherwise.
func (s *RotationScheduler) State() SchedulerState {
	if len(s.queue) == 0 {
		return StateIdle
	}
	return StateQueued
}

// Len returns the number of queued entries.
func (s *RotationScheduler) Len() int {
	return len(s.queue)
}

// Remove drops every queued entry with the given name.
func (s *RotationScheduler) Remove(name string) {
	kept := s.queue[:0]
	for _, e := range s.queue {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	s.queue = kept
}

// Next performs one rotation step. When the queue holds a valid entry it is
// popped from the tail and returned with ok set. When the queue is empty, or
// empties while skipping vanished or banned entries, it is refilled from src
// and nothing is returned. If the refill finds no eligible entry the scheduler
// halts and ErrCatalogEmpty is returned.
func (s *RotationScheduler) Next(src rotationSource) (entry CatalogEntry, ok bool, err error) {
	for len(s.queue) > 0 {
		last := len(s.queue) - 1
		candidate := s.queue[last]
		s.queue = s.queue[:last]

		if candidate.Banned() || !src.Exists(candidate) {
			log.Debugf("Skipping %s: banned or missing", candidate.Name)
			continue
		}
		return candidate, true, nil
	}

	return CatalogEntry{}, false, s.repopulate(src)
}

func (s *RotationScheduler) repopulate(src rotationSource) error {
	eligible, err := src.Eligible()
	if err != nil {
		return err
	}
	if len(eligible) == 0 {
		s.Stop()
		s.halted = true
		log.Print("No photos available, rotation halted")
		return ErrCatalogEmpty
	}

	s.queue = append(s.queue[:0], eligible...)
	log.Debugf("Rotation queue refilled with %d photos", len(s.queue))
	return nil
}

func (s *RotationScheduler) cancelTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
