package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/wallpaperio/wallpaperio/config"
	"github.com/wallpaperio/wallpaperio/pkg/ui"
	"github.com/wallpaperio/wallpaperio/util/log"
)

// Engine builds the catalog and controller from the stored settings and
// connects them to the desktop shell.
type Engine struct {
	cfg        *config.AppConfig
	host       ui.Host
	catalog    *CatalogStore
	controller *Controller
}

// NewEngine opens the configured catalog. The source URL and rotation
// interval in opts are taken from cfg. It returns ErrCatalogUnavailable when
// the catalog directory cannot be used.
func NewEngine(cfg *config.AppConfig, host ui.Host, sink Sink, opts Options) (*Engine, error) {
	catalog, err := NewCatalogStore(cfg)
	if err != nil {
		return nil, err
	}

	opts.SourceURL = cfg.SourceURL()
	opts.Interval = FrequencyFromIndex(cfg.RotationFrequency()).Duration()

	return &Engine{
		cfg:        cfg,
		host:       host,
		catalog:    catalog,
		controller: NewController(catalog, sink, host, opts),
	}, nil
}

// Catalog returns the catalog store.
func (e *Engine) Catalog() *CatalogStore {
	return e.catalog
}

// Controller returns the wallpaper controller.
func (e *Engine) Controller() *Controller {
	return e.controller
}

// Start launches the controller loop.
func (e *Engine) Start(ctx context.Context) {
	log.Printf("Starting wallpaper engine, catalog at %s", e.catalog.Root())
	e.controller.Start(ctx)
}

// Stop shuts the controller down.
func (e *Engine) Stop() {
	log.Print("Stopping wallpaper engine...")
	e.controller.Stop()
}

// Frequency returns the stored rotation frequency.
func (e *Engine) Frequency() Frequency {
	return FrequencyFromIndex(e.cfg.RotationFrequency())
}

// SetFrequency stores the rotation frequency and restarts the timer with it.
func (e *Engine) SetFrequency(index int) {
	f := FrequencyFromIndex(index)
	e.cfg.SetRotationFrequency(int(f))
	e.controller.SetInterval(f.Duration())
	log.Printf("Rotation frequency changed to %s", f)
}

// ChangeLocation asks for a new parent folder and moves the catalog into it.
func (e *Engine) ChangeLocation() {
	e.host.PickDirectory(TitleChangeLocation, func(dir string) {
		go func() {
			if err := e.relocateTo(dir); err != nil {
				log.Printf("Failed to change catalog location: %v", err)
			}
		}()
	})
}

// relocateTo moves the catalog to the app folder inside dir.
func (e *Engine) relocateTo(dir string) error {
	if dir == "" {
		return nil
	}
	target := filepath.Join(dir, config.AppDirName)

	ctx, cancel := context.WithTimeout(context.Background(), relocateTimeout)
	defer cancel()

	err := e.controller.Relocate(ctx, target)
	if errors.Is(err, errFetchInProgress) {
		e.host.NotifyUser(TitleRelocateFailed, fmt.Sprintf(MsgRelocateFailedFmt, err))
	}
	return err
}

// MenuActions returns the tray callbacks for this engine.
func (e *Engine) MenuActions(quit func()) ui.Actions {
	return ui.Actions{
		Fetch:          e.controller.Fetch,
		Random:         e.controller.RandomPhoto,
		Dislike:        e.controller.Dislike,
		ChangeLocation: e.ChangeLocation,
		SetFrequency:   e.SetFrequency,
		Quit:           quit,
	}
}
