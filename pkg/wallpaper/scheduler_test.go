package wallpaper

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerNext(t *testing.T) {
	store, _ := newTestCatalog(t)
	touch(t, store.Root(), "a.jpg", "b.jpg", "c_banned.jpg")

	s := NewRotationScheduler(time.Hour, func(uint64) {})
	defer s.Stop()
	assert.Equal(t, StateIdle, s.State())

	// First tick on an empty queue only refills it.
	_, ok, err := s.Next(store)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, StateQueued, s.State())
	assert.Equal(t, 2, s.Len())

	// Entries come off the tail.
	entry, ok, err := s.Next(store)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b.jpg", entry.Name)

	entry, ok, err = s.Next(store)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a.jpg", entry.Name)
	assert.Equal(t, StateIdle, s.State())
}

func TestSchedulerSkipsBannedAndVanished(t *testing.T) {
	store, _ := newTestCatalog(t)
	touch(t, store.Root(), "a.jpg", "b.jpg", "c.jpg")

	s := NewRotationScheduler(time.Hour, func(uint64) {})
	defer s.Stop()
	_, _, err := s.Next(store)
	require.NoError(t, err)

	_, err = store.Ban(CatalogEntry{Name: "c.jpg"})
	require.NoError(t, err)
	require.NoError(t, os.Remove(store.Path("b.jpg")))

	entry, ok, err := s.Next(store)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a.jpg", entry.Name)
}

func TestSchedulerNeverYieldsBanned(t *testing.T) {
	store, _ := newTestCatalog(t)
	touch(t, store.Root(), "a.jpg", "b_banned.jpg", "c.jpg", "d_banned.png")

	s := NewRotationScheduler(time.Hour, func(uint64) {})
	defer s.Stop()
	for i := 0; i < 20; i++ {
		entry, ok, err := s.Next(store)
		require.NoError(t, err)
		if ok {
			assert.False(t, entry.Banned(), "yielded banned entry %s", entry.Name)
		}
	}
}

func TestSchedulerRemove(t *testing.T) {
	store, _ := newTestCatalog(t)
	touch(t, store.Root(), "a.jpg", "b.jpg")

	s := NewRotationScheduler(time.Hour, func(uint64) {})
	defer s.Stop()
	_, _, err := s.Next(store)
	require.NoError(t, err)

	s.Remove("b.jpg")
	assert.Equal(t, 1, s.Len())

	entry, ok, err := s.Next(store)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a.jpg", entry.Name)
}

func TestSchedulerHaltsOnEmptyCatalog(t *testing.T) {
	store, _ := newTestCatalog(t)

	s := NewRotationScheduler(time.Hour, func(uint64) {})
	s.Restart()
	gen := s.gen

	_, ok, err := s.Next(store)
	assert.ErrorIs(t, err, ErrCatalogEmpty)
	assert.False(t, ok)
	assert.True(t, s.Halted())
	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.Accept(gen), "ticks armed before the halt are stale")

	// A manual pick re-arms the timer and the next refill finds the new file.
	touch(t, store.Root(), "new.jpg")
	s.Restart()
	defer s.Stop()
	assert.False(t, s.Halted())
	assert.True(t, s.Accept(s.gen))

	_, _, err = s.Next(store)
	require.NoError(t, err)
	assert.Equal(t, StateQueued, s.State())
}

func TestSchedulerTimer(t *testing.T) {
	fired := make(chan uint64, 10)
	s := NewRotationScheduler(20*time.Millisecond, func(gen uint64) { fired <- gen })

	s.Restart()
	first := s.gen
	s.Restart()
	second := s.gen
	assert.NotEqual(t, first, second)

	select {
	case gen := <-fired:
		assert.Equal(t, second, gen, "only the latest arm fires")
		assert.True(t, s.Accept(gen))
		assert.False(t, s.Accept(first))
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}

	s.Stop()
	select {
	case gen := <-fired:
		t.Fatalf("unexpected tick %d after Stop", gen)
	case <-time.After(100 * time.Millisecond):
	}
}
