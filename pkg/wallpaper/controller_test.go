package wallpaper

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const waitTimeout = 5 * time.Second

type controllerFixture struct {
	c        *Controller
	store    *CatalogStore
	settings *fakeSettings
	sink     *fakeSink
	ui       *MockUI
}

func newControllerFixture(t *testing.T, sourceURL string, client *http.Client) *controllerFixture {
	t.Helper()
	store, settings := newTestCatalog(t)
	sink := &fakeSink{}
	ui := &MockUI{}
	if client == nil {
		client = http.DefaultClient
	}
	c := NewController(store, sink, ui, Options{
		SourceURL: sourceURL,
		Interval:  time.Hour,
		Client:    client,
		Pacer:     rate.NewLimiter(rate.Inf, 1),
		Rand:      rand.New(rand.NewSource(1)),
	})
	return &controllerFixture{c: c, store: store, settings: settings, sink: sink, ui: ui}
}

func (f *controllerFixture) start(t *testing.T) {
	t.Helper()
	f.c.Start(context.Background())
	t.Cleanup(f.c.Stop)
}

// expectNotify registers an expected notification and returns a channel closed when it arrives.
func (f *controllerFixture) expectNotify(title, message string) <-chan struct{} {
	done := make(chan struct{})
	f.ui.On("NotifyUser", title, message).Run(func(mock.Arguments) { close(done) }).Once()
	return done
}

func wait(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for %s", what)
	}
}

// potdServer serves a photo of the day page whose image is served by img.
func potdServer(t *testing.T, title string, pageHits *atomic.Int32, img http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/potd", func(w http.ResponseWriter, r *http.Request) {
		if pageHits != nil {
			pageHits.Add(1)
		}
		fmt.Fprintf(w, `<html><head><meta property="og:title" content="%s"><meta property="og:image" content="/img/photo.jpg"></head></html>`, title)
	})
	mux.HandleFunc("/img/photo.jpg", img)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRandomPicksOtherPhoto(t *testing.T) {
	f := newControllerFixture(t, "", nil)
	touch(t, f.store.Root(), "a.jpg", "b.jpg")

	for seed := int64(0); seed < 20; seed++ {
		f.c.rng = rand.New(rand.NewSource(seed))
		f.sink.setCurrent(f.store.Path("a.jpg"))

		f.c.random()

		applied := f.sink.appliedPaths()
		require.NotEmpty(t, applied)
		assert.Equal(t, f.store.Path("b.jpg"), applied[len(applied)-1])
	}
	f.c.scheduler.Stop()
}

func TestRandomNeverRepicksCurrent(t *testing.T) {
	f := newControllerFixture(t, "", nil)
	touch(t, f.store.Root(), "a.jpg", "b.jpg", "c.jpg", "d_banned.jpg")

	for i := 0; i < 50; i++ {
		before, _ := f.sink.Current()
		f.c.random()
		after, _ := f.sink.Current()
		assert.NotEqual(t, before, after)
		assert.False(t, IsBanned(filepath.Base(after)))
	}
	f.c.scheduler.Stop()
}

func TestRandomOffersFetch(t *testing.T) {
	t.Run("Empty Catalog", func(t *testing.T) {
		f := newControllerFixture(t, "", nil)
		f.ui.On("ConfirmAction", TitleNoPhotos, MsgNoPhotos, mock.Anything).Once()

		f.c.random()

		f.ui.AssertExpectations(t)
		assert.Empty(t, f.sink.appliedPaths())
	})

	t.Run("Only Current Or Banned", func(t *testing.T) {
		f := newControllerFixture(t, "", nil)
		touch(t, f.store.Root(), "a.jpg", "b_banned.jpg")
		f.sink.setCurrent(f.store.Path("a.jpg"))
		f.ui.On("ConfirmAction", TitleNoPhotos, MsgNoPhotos, mock.Anything).Once()

		f.c.random()

		f.ui.AssertExpectations(t)
		assert.Empty(t, f.sink.appliedPaths())
	})
}

func TestDislike(t *testing.T) {
	f := newControllerFixture(t, "", nil)
	touch(t, f.store.Root(), "a.jpg", "b.jpg")
	_, _, err := f.c.scheduler.Next(f.store)
	require.NoError(t, err)
	require.Equal(t, 2, f.c.scheduler.Len())

	f.sink.setCurrent(f.store.Path("b.jpg"))
	f.c.dislike()

	assert.FileExists(t, f.store.Path("b_banned.jpg"))
	assert.NoFileExists(t, f.store.Path("b.jpg"))
	assert.Equal(t, 1, f.c.scheduler.Len(), "disliked entry leaves the queue")
	assert.Empty(t, f.sink.appliedPaths(), "display is unchanged")

	// Disliking something outside the catalog does nothing.
	f.sink.setCurrent("/elsewhere/unknown.jpg")
	f.c.dislike()

	// A desktop file sharing a catalog file's name is left alone.
	outside := t.TempDir()
	touch(t, outside, "a.jpg")
	f.sink.setCurrent(filepath.Join(outside, "a.jpg"))
	f.c.dislike()

	entries, err := f.store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b_banned.jpg"}, names(entries))
	assert.Equal(t, 1, f.c.scheduler.Len())
}

func TestTickEmptyCatalogOffersFetchOnce(t *testing.T) {
	f := newControllerFixture(t, "", nil)
	f.ui.On("ConfirmAction", TitleNoPhotos, MsgNoPhotos, mock.Anything).Once()

	gen := f.c.scheduler.gen
	f.c.tick(gen)
	f.c.tick(gen)
	f.c.tick(f.c.scheduler.gen)

	f.ui.AssertExpectations(t)
	f.ui.AssertNumberOfCalls(t, "ConfirmAction", 1)
	assert.Equal(t, StateIdle, f.c.scheduler.State())
	assert.True(t, f.c.scheduler.Halted())
}

func TestTickApplies(t *testing.T) {
	f := newControllerFixture(t, "", nil)
	touch(t, f.store.Root(), "a.jpg", "b.jpg")

	var changed []string
	f.c.OnWallpaperChanged = func(path string) { changed = append(changed, path) }

	f.c.tick(f.c.scheduler.gen) // refill
	f.c.tick(f.c.scheduler.gen)
	f.c.tick(f.c.scheduler.gen)
	f.c.scheduler.Stop()

	want := []string{f.store.Path("b.jpg"), f.store.Path("a.jpg")}
	assert.Equal(t, want, f.sink.appliedPaths())
	assert.Equal(t, want, changed)
	assert.Equal(t, f.store.Path("a.jpg"), f.c.Current())
}

func TestApplyFailureIsNotFatal(t *testing.T) {
	f := newControllerFixture(t, "", nil)
	touch(t, f.store.Root(), "a.jpg")
	f.sink.applyErr = fmt.Errorf("no desktop")

	f.c.apply(f.store.Path("a.jpg"))
	assert.Equal(t, f.store.Path("a.jpg"), f.c.Current())
}

func TestFetchDownloadsAndApplies(t *testing.T) {
	srv := potdServer(t, "Blue Lake", nil, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg"))
	})
	f := newControllerFixture(t, srv.URL+"/potd", srv.Client())
	done := f.expectNotify(TitleDownloaded, MsgDownloaded)
	f.start(t)

	f.c.Fetch()
	wait(t, done, "download notification")

	dest := f.store.Path("Blue Lake.jpg")
	assert.FileExists(t, dest)
	assert.Equal(t, []string{dest}, f.sink.appliedPaths())
	assert.Equal(t, 0, f.c.retries.Value())
	assert.False(t, f.c.Fetching())
}

func TestFetchAlreadyDownloaded(t *testing.T) {
	var imgHits atomic.Int32
	srv := potdServer(t, "Blue Lake", nil, func(w http.ResponseWriter, r *http.Request) {
		imgHits.Add(1)
	})
	f := newControllerFixture(t, srv.URL+"/potd", srv.Client())
	touch(t, f.store.Root(), "Blue Lake.jpg")
	done := f.expectNotify(TitleAlreadyHave, MsgAlreadyHave)
	f.start(t)

	f.c.Fetch()
	wait(t, done, "already downloaded notification")

	assert.Equal(t, int32(0), imgHits.Load())
	assert.Equal(t, []string{f.store.Path("Blue Lake.jpg")}, f.sink.appliedPaths())
}

func TestFetchDisliked(t *testing.T) {
	var imgHits atomic.Int32
	srv := potdServer(t, "Blue Lake", nil, func(w http.ResponseWriter, r *http.Request) {
		imgHits.Add(1)
	})
	f := newControllerFixture(t, srv.URL+"/potd", srv.Client())
	touch(t, f.store.Root(), "Blue Lake_banned.jpg")
	done := f.expectNotify(TitleDisliked, MsgDisliked)
	f.start(t)

	f.c.Fetch()
	wait(t, done, "disliked notification")

	assert.Equal(t, int32(0), imgHits.Load())
	assert.Empty(t, f.sink.appliedPaths())
}

func TestFetchUnavailable(t *testing.T) {
	var pageHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageHits.Add(1)
		fmt.Fprint(w, `<html><head><title>no og tags</title></head></html>`)
	}))
	defer srv.Close()

	f := newControllerFixture(t, srv.URL, srv.Client())
	done := f.expectNotify(TitleUnavailable, MsgUnavailable)
	f.start(t)

	f.c.Fetch()
	wait(t, done, "unavailable notification")

	assert.Equal(t, int32(MaxConnAttempts), pageHits.Load())
	assert.Equal(t, 0, f.c.retries.Value())
	assert.Empty(t, f.sink.appliedPaths())
}

func TestFetchServerBusy(t *testing.T) {
	var imgHits atomic.Int32
	srv := potdServer(t, "Blue Lake", nil, truncatedHandler(&imgHits))
	f := newControllerFixture(t, srv.URL+"/potd", srv.Client())
	done := f.expectNotify(TitleServerBusy, MsgServerBusy)
	f.start(t)

	f.c.Fetch()
	wait(t, done, "server busy notification")

	assert.Equal(t, int32(MaxConnAttempts), imgHits.Load())
	assert.NoFileExists(t, f.store.Path("Blue Lake.jpg"))
	assert.Equal(t, 0, f.c.retries.Value())
	assert.Empty(t, f.sink.appliedPaths())
}

func TestFetchInFlightIgnoresSecondTrigger(t *testing.T) {
	var pageHits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageHits.Add(1)
		<-release
		fmt.Fprint(w, `<html><head><meta property="og:image" content="/a.jpg"></head></html>`)
	}))
	defer srv.Close()

	f := newControllerFixture(t, srv.URL, srv.Client())
	f.c.ctx, f.c.cancel = context.WithCancel(context.Background())
	defer f.c.cancel()

	f.c.startFetch()
	f.c.startFetch()
	assert.True(t, f.c.Fetching())
	close(release)

	select {
	case ev := <-f.c.events:
		assert.Equal(t, cmdResolved, ev.cmd)
		assert.NoError(t, ev.err)
	case <-time.After(waitTimeout):
		t.Fatal("resolve worker did not report")
	}

	select {
	case ev := <-f.c.events:
		t.Fatalf("unexpected second result %v", ev.cmd)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, int32(1), pageHits.Load())
	f.c.workers.Wait()
}

func TestRelocate(t *testing.T) {
	f := newControllerFixture(t, "", nil)
	oldRoot := f.store.Root()
	touch(t, oldRoot, "a.jpg", "b.jpg")
	f.c.active = filepath.Join(oldRoot, "a.jpg")

	newRoot := filepath.Join(t.TempDir(), "new", "wallpaperio")
	done := f.expectNotify(TitleRelocated, fmt.Sprintf(MsgRelocatedFmt, newRoot))
	f.start(t)

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	require.NoError(t, f.c.Relocate(ctx, newRoot))
	wait(t, done, "relocated notification")

	assert.Equal(t, newRoot, f.settings.CatalogPath())
	entries, err := f.store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, names(entries))
	assert.NoDirExists(t, oldRoot)
	assert.Equal(t, filepath.Join(newRoot, "a.jpg"), f.c.Current())
}

func TestRelocateUsesCallerContext(t *testing.T) {
	f := newControllerFixture(t, "", nil)
	oldRoot := f.store.Root()
	touch(t, oldRoot, "a.jpg")
	f.ui.On("NotifyUser", TitleRelocateFailed, mock.Anything).Once()

	// Run the move directly so the expired context reaches the catalog.
	f.c.ctx = context.Background()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.c.relocate(ctx, filepath.Join(t.TempDir(), "wallpaperio"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, oldRoot, f.settings.CatalogPath())
	assert.FileExists(t, filepath.Join(oldRoot, "a.jpg"))
	f.ui.AssertExpectations(t)
}

func TestRelocateFailureNotifies(t *testing.T) {
	f := newControllerFixture(t, "", nil)
	oldRoot := f.store.Root()

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	done := make(chan struct{})
	f.ui.On("NotifyUser", TitleRelocateFailed, mock.Anything).Run(func(mock.Arguments) { close(done) }).Once()
	f.start(t)

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	assert.Error(t, f.c.Relocate(ctx, filepath.Join(blocker, "wallpaperio")))
	wait(t, done, "relocate failure notification")

	assert.Equal(t, oldRoot, f.settings.CatalogPath())
	assert.DirExists(t, oldRoot)
}

func TestRelocateRejectedWhileFetching(t *testing.T) {
	f := newControllerFixture(t, "", nil)
	f.c.fetching.Set(true)
	f.start(t)

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	assert.Error(t, f.c.Relocate(ctx, filepath.Join(t.TempDir(), "new")))
	assert.Equal(t, f.store.Root(), f.settings.CatalogPath())
}
