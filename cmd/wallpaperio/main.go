package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/wallpaperio/wallpaperio/asset"
	"github.com/wallpaperio/wallpaperio/config"
	"github.com/wallpaperio/wallpaperio/pkg/api"
	"github.com/wallpaperio/wallpaperio/pkg/hotkey"
	"github.com/wallpaperio/wallpaperio/pkg/ui"
	"github.com/wallpaperio/wallpaperio/pkg/wallpaper"
	"github.com/wallpaperio/wallpaperio/util/log"
)

const (
	appID           = "io.wallpaperio.app"
	trayIcon        = "tray.svg"
	trayIconOff     = "tray_disabled.svg"
	shutdownTimeout = 5 * time.Second
)

func main() {
	acquired, err := acquireLock()
	if err != nil {
		log.Fatalf("Failed to acquire single-instance lock: %v", err)
	}
	if !acquired {
		log.Printf("Another instance of %s is already running.", config.AppName)
		return
	}
	defer releaseLock()

	a := app.NewWithID(appID)
	cfg := config.NewAppConfig(a.Preferences())
	tray := ui.NewTrayApp(a, cfg)

	engine, err := wallpaper.NewEngine(cfg, tray, wallpaper.NewOSSink(), wallpaper.Options{})
	if err != nil {
		runDisabled(a, tray, err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var server *api.Server
	if cfg.GetControlAPIEnabled() {
		server = api.NewServer(engine.Controller(), engine.Catalog())
		engine.Controller().OnWallpaperChanged = server.BroadcastWallpaper
		go func() {
			if err := server.Start(config.ControlAPIAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[ERROR] Control API stopped: %v", err)
			}
		}()
	}

	menu := tray.BuildMenu(engine.MenuActions(a.Quit), wallpaper.GetFrequencies(), int(engine.Frequency()))
	tray.Install(menu, trayIcon)

	a.Lifecycle().SetOnStarted(func() {
		engine.Start(ctx)
		if cfg.GetHotkeysEnabled() {
			hotkey.StartListeners(ctx, hotkey.Actions{
				Fetch:   engine.Controller().Fetch,
				Random:  engine.Controller().RandomPhoto,
				Dislike: engine.Controller().Dislike,
			})
		}
	})
	a.Lifecycle().SetOnStopped(func() {
		cancel()
		if server != nil {
			shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
			if err := server.Stop(shutdownCtx); err != nil {
				log.Printf("Failed to stop control API: %v", err)
			}
			done()
		}
		engine.Stop()
	})

	a.Run()
}

// runDisabled keeps the tray alive when the catalog cannot be opened. The only
// action left is Quit.
func runDisabled(a fyne.App, tray *ui.TrayApp, cause error) {
	log.Printf("[ERROR] Wallpaper engine disabled: %v", cause)

	msg, err := asset.NewManager().GetText("catalog_unavailable.txt")
	if err != nil {
		msg = cause.Error()
	}

	tray.Install(tray.BuildDisabledMenu("Wallpaper folder unavailable", a.Quit), trayIconOff)
	a.Lifecycle().SetOnStarted(func() {
		tray.NotifyUser(config.AppName, msg)
	})
	a.Run()
}
