package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wallpaperio/wallpaperio/util"
	"github.com/wallpaperio/wallpaperio/util/log"
)

// errFetchInProgress rejects a relocation while the download worker runs.
var errFetchInProgress = errors.New("a download is in progress, try again when it finishes")

// Command identifies a trigger handled by the controller loop.
type Command int

const (
	CmdFetch Command = iota
	CmdRandom
	CmdDislike
	cmdTick
	cmdResolved
	cmdDownloaded
	cmdRelocate
	cmdSetInterval
)

func (c Command) String() string {
	switch c {
	case CmdFetch:
		return "fetch"
	case CmdRandom:
		return "random"
	case CmdDislike:
		return "dislike"
	case cmdTick:
		return "tick"
	case cmdResolved:
		return "resolved"
	case cmdDownloaded:
		return "downloaded"
	case cmdRelocate:
		return "relocate"
	case cmdSetInterval:
		return "set-interval"
	default:
		return "unknown"
	}
}

// event is a command plus its payload.
type event struct {
	ctx      context.Context
	cmd      Command
	gen      uint64
	photo    Photo
	dest     string
	path     string
	interval time.Duration
	err      error
	reply    chan error
}

// Sink applies and reads the desktop wallpaper.
type Sink interface {
	Apply(path string) error
	Current() (string, error)
}

// UserInterface is how the controller talks to the user.
type UserInterface interface {
	NotifyUser(title, message string)
	ConfirmAction(title, message string, onConfirm func())
}

// Options tunes a Controller. Zero values select the defaults.
type Options struct {
	SourceURL string
	Interval  time.Duration
	Client    *http.Client
	Pacer     *rate.Limiter
	Rand      *rand.Rand
}

// Controller serializes every wallpaper change. Timer ticks, user commands
// and network results are all handled on one goroutine, which owns the active
// wallpaper, the rotation queue and the timer.
type Controller struct {
	catalog    *CatalogStore
	sink       Sink
	ui         UserInterface
	resolver   *PhotoResolver
	downloader *Downloader
	retries    *RetryCounter
	pacer      *rate.Limiter
	scheduler  *RotationScheduler
	sourceURL  string
	rng        *rand.Rand

	events   chan event
	fetching *util.SafeFlag
	active   string

	mu       sync.RWMutex
	snapshot string

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	workers sync.WaitGroup

	// OnWallpaperChanged is called on the controller loop after every apply.
	OnWallpaperChanged func(path string)
}

// NewController wires the engine around an open catalog.
func NewController(catalog *CatalogStore, sink Sink, ui UserInterface, opts Options) *Controller {
	if opts.Client == nil {
		opts.Client = NewHTTPClient()
	}
	if opts.Pacer == nil {
		opts.Pacer = rate.NewLimiter(rate.Every(RetryInterval), 1)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultFrequency.Duration()
	}

	retries := NewRetryCounter(MaxConnAttempts)
	c := &Controller{
		catalog:    catalog,
		sink:       sink,
		ui:         ui,
		resolver:   NewPhotoResolver(opts.Client),
		downloader: NewDownloader(opts.Client, retries, opts.Pacer),
		retries:    retries,
		pacer:      opts.Pacer,
		sourceURL:  opts.SourceURL,
		rng:        opts.Rand,
		events:     make(chan event, 20),
		fetching:   util.NewSafeBool(),
		done:       make(chan struct{}),
	}
	c.scheduler = NewRotationScheduler(opts.Interval, func(gen uint64) {
		c.post(event{cmd: cmdTick, gen: gen})
	})
	return c
}

// Start arms the rotation timer and launches the controller loop.
func (c *Controller) Start(ctx context.Context) {
	c.ctx, c.cancel = context.WithCancel(ctx)
	if current, err := c.sink.Current(); err == nil && current != "" {
		c.active = current
	}
	c.setSnapshot(c.active)
	go c.run()
	c.post(event{cmd: cmdSetInterval})
}

// Stop terminates the loop and waits for in-flight network work to return.
func (c *Controller) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.workers.Wait()
}

// Fetch downloads the photo of the day and applies it.
func (c *Controller) Fetch() { c.post(event{cmd: CmdFetch}) }

// RandomPhoto applies a random catalog photo other than the current one.
func (c *Controller) RandomPhoto() { c.post(event{cmd: CmdRandom}) }

// Dislike bans the current wallpaper.
func (c *Controller) Dislike() { c.post(event{cmd: CmdDislike}) }

// SetInterval changes the rotation interval.
func (c *Controller) SetInterval(d time.Duration) {
	c.post(event{cmd: cmdSetInterval, interval: d})
}

// Relocate moves the catalog to newRoot and waits for the move to finish.
func (c *Controller) Relocate(ctx context.Context, newRoot string) error {
	reply := make(chan error, 1)
	if !c.post(event{ctx: ctx, cmd: cmdRelocate, path: newRoot, reply: reply}) {
		return context.Canceled
	}
	select {
	case err := <-reply:
		return err
	case <-c.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Current returns the path of the wallpaper last applied or read from the desktop.
func (c *Controller) Current() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Fetching reports whether a fetch is in flight.
func (c *Controller) Fetching() bool {
	return c.fetching.Value()
}

func (c *Controller) post(ev event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

func (c *Controller) run() {
	defer close(c.done)
	defer c.scheduler.Stop()
	log.Debugf("Controller started")

	for {
		select {
		case <-c.ctx.Done():
			log.Debugf("Stopping controller")
			return
		case ev := <-c.events:
			c.handle(ev)
		}
	}
}

func (c *Controller) handle(ev event) {
	log.Debugf("Controller received command %v (Pending: %d)", ev.cmd, len(c.events))
	switch ev.cmd {
	case cmdTick:
		c.tick(ev.gen)
	case CmdFetch:
		c.startFetch()
	case cmdResolved:
		c.resolved(ev.photo, ev.err)
	case cmdDownloaded:
		c.downloaded(ev.dest, ev.err)
	case CmdRandom:
		c.random()
	case CmdDislike:
		c.dislike()
	case cmdRelocate:
		ev.reply <- c.relocate(ev.ctx, ev.path)
	case cmdSetInterval:
		if ev.interval > 0 {
			c.scheduler.SetInterval(ev.interval)
		}
		if !c.scheduler.Halted() {
			c.scheduler.Restart()
		}
	}
}

func (c *Controller) tick(gen uint64) {
	if !c.scheduler.Accept(gen) {
		log.Debugf("Dropping stale tick %d", gen)
		return
	}

	entry, ok, err := c.scheduler.Next(c.catalog)
	switch {
	case errors.Is(err, ErrCatalogEmpty):
		c.offerFetch()
		return
	case err != nil:
		log.Printf("Rotation failed: %v", err)
	case ok:
		c.apply(c.catalog.Path(entry.Name))
	}
	c.scheduler.Restart()
}

// startFetch launches the resolve worker unless a fetch is already running.
func (c *Controller) startFetch() {
	if !c.fetching.CompareAndSwap(false, true) {
		log.Print("Fetch already in progress, ignoring request")
		return
	}

	c.workers.Add(1)
	go func() {
		defer c.workers.Done()
		photo, err := c.resolve(c.ctx)
		c.post(event{cmd: cmdResolved, photo: photo, err: err})
	}()
}

// resolve retries resolution until it succeeds or the shared ceiling is reached.
func (c *Controller) resolve(ctx context.Context) (Photo, error) {
	for {
		photo, err := c.resolver.Resolve(ctx, c.sourceURL)
		if err == nil {
			c.retries.Reset()
			return photo, nil
		}
		if ctx.Err() != nil {
			c.retries.Reset()
			return Photo{}, ctx.Err()
		}

		log.Printf("Resolving %s failed (attempt %d/%d): %v", c.sourceURL, c.retries.Value()+1, c.retries.Ceiling(), err)
		if !c.retries.Fail() {
			return Photo{}, err
		}
		if err := c.pacer.Wait(ctx); err != nil {
			c.retries.Reset()
			return Photo{}, err
		}
	}
}

func (c *Controller) resolved(photo Photo, err error) {
	if err != nil {
		c.fetching.Set(false)
		if errors.Is(err, ErrResolutionFailed) {
			c.ui.NotifyUser(TitleUnavailable, MsgUnavailable)
		}
		return
	}

	entry := CatalogEntry{Name: photoFileName(photo)}
	switch {
	case c.catalog.Exists(entry):
		c.fetching.Set(false)
		log.Printf("%s is already in the catalog", entry.Name)
		c.apply(c.catalog.Path(entry.Name))
		c.scheduler.Restart()
		c.ui.NotifyUser(TitleAlreadyHave, MsgAlreadyHave)
		return
	case c.catalog.Exists(CatalogEntry{Name: bannedName(entry.Name)}):
		c.fetching.Set(false)
		log.Printf("%s was disliked, not applying", entry.Name)
		c.ui.NotifyUser(TitleDisliked, MsgDisliked)
		return
	}

	dest := c.catalog.Path(entry.Name)
	c.workers.Add(1)
	go func() {
		defer c.workers.Done()
		err := c.downloader.Download(c.ctx, photo.ImageURL, dest)
		c.post(event{cmd: cmdDownloaded, dest: dest, err: err})
	}()
}

func (c *Controller) downloaded(dest string, err error) {
	c.fetching.Set(false)
	if err != nil {
		if errors.Is(err, ErrDownloadExhausted) {
			c.ui.NotifyUser(TitleServerBusy, MsgServerBusy)
		} else {
			log.Printf("Download of %s aborted: %v", dest, err)
		}
		return
	}

	if _, ok := c.catalog.Lookup(dest); !ok {
		log.Printf("Downloaded file %s vanished before it could be applied", dest)
		return
	}
	c.apply(dest)
	c.scheduler.Restart()
	c.ui.NotifyUser(TitleDownloaded, MsgDownloaded)
}

func (c *Controller) random() {
	eligible, err := c.catalog.Eligible()
	if err != nil {
		log.Printf("Failed to list catalog: %v", err)
		return
	}

	currentName := filepath.Base(c.currentWallpaper())
	candidates := make([]CatalogEntry, 0, len(eligible))
	for _, e := range eligible {
		if e.Name != currentName {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		c.offerFetch()
		return
	}

	pick := candidates[c.rng.Intn(len(candidates))]
	c.apply(c.catalog.Path(pick.Name))
	c.scheduler.Restart()
}

func (c *Controller) dislike() {
	current := c.currentWallpaper()
	entry, ok := c.catalog.Lookup(current)
	if !ok {
		log.Printf("Current wallpaper %q is not in the catalog", current)
		return
	}
	if entry.Banned() {
		return
	}

	banned, err := c.catalog.Ban(entry)
	if err != nil {
		log.Printf("Failed to dislike %s: %v", entry.Name, err)
		return
	}
	c.scheduler.Remove(entry.Name)
	log.Printf("Disliked %s (now %s)", entry.Name, banned.Name)
}

// relocate moves the catalog within the caller's deadline. Controller
// shutdown also aborts the move.
func (c *Controller) relocate(ctx context.Context, newRoot string) error {
	if c.fetching.Value() {
		return errFetchInProgress
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	oldRoot := c.catalog.Root()
	if err := c.catalog.Relocate(ctx, newRoot); err != nil {
		c.ui.NotifyUser(TitleRelocateFailed, fmt.Sprintf(MsgRelocateFailedFmt, err))
		return err
	}

	// Point the desktop at the moved copy of the current wallpaper.
	if c.active != "" && isWithin(oldRoot, c.active) {
		if rel, err := filepath.Rel(oldRoot, c.active); err == nil {
			c.apply(filepath.Join(c.catalog.Root(), rel))
		}
	}

	c.ui.NotifyUser(TitleRelocated, fmt.Sprintf(MsgRelocatedFmt, c.catalog.Root()))
	return nil
}

// offerFetch asks the user whether to download a photo now.
func (c *Controller) offerFetch() {
	c.ui.ConfirmAction(TitleNoPhotos, MsgNoPhotos, c.Fetch)
}

// currentWallpaper re-reads the desktop, falling back to the last applied path.
func (c *Controller) currentWallpaper() string {
	current, err := c.sink.Current()
	if err != nil || current == "" {
		return c.active
	}
	return current
}

// apply is the only place the active wallpaper changes.
func (c *Controller) apply(path string) {
	c.active = path
	c.setSnapshot(path)

	log.Printf("Setting wallpaper: %s", path)
	if err := c.sink.Apply(path); err != nil {
		log.Printf("[ERROR] Failed to set wallpaper: %v", err)
	}

	if c.OnWallpaperChanged != nil {
		c.OnWallpaperChanged(path)
	}
}

func (c *Controller) setSnapshot(path string) {
	c.mu.Lock()
	c.snapshot = path
	c.mu.Unlock()
}
