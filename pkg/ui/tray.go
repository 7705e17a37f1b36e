package ui

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/wallpaperio/wallpaperio/asset"
	"github.com/wallpaperio/wallpaperio/config"
	"github.com/wallpaperio/wallpaperio/util/log"
)

// Menu labels.
const (
	LabelFetch          = "Get wallpaper"
	LabelRandom         = "Random photo"
	LabelDislike        = "Dislike this wallpaper"
	LabelChangeLocation = "Change location folder"
	LabelFrequency      = "Change every"
	LabelNotifications  = "Notifications"
	LabelQuit           = "Quit"
)

// TrayApp is the fyne implementation of Host. It owns the system tray menu.
type TrayApp struct {
	app      fyne.App
	assetMgr *asset.Manager
	cfg      *config.AppConfig

	mu       sync.Mutex
	window   fyne.Window
	trayMenu *fyne.Menu
}

// NewTrayApp creates the tray shell for a fyne application.
func NewTrayApp(a fyne.App, cfg *config.AppConfig) *TrayApp {
	return &TrayApp{app: a, assetMgr: asset.NewManager(), cfg: cfg}
}

// NotifyUser sends a desktop notification unless notifications are disabled.
func (t *TrayApp) NotifyUser(title, message string) {
	if !t.cfg.GetAppNotificationsEnabled() {
		log.Debugf("Notification suppressed: %s: %s", title, message)
		return
	}
	t.app.SendNotification(fyne.NewNotification(title, message))
}

// ConfirmAction shows a yes/no dialog and calls onConfirm if the user agrees.
func (t *TrayApp) ConfirmAction(title, message string, onConfirm func()) {
	fyne.Do(func() {
		w := t.dialogWindow()
		d := dialog.NewConfirm(title, message, func(ok bool) {
			w.Hide()
			if ok && onConfirm != nil {
				go onConfirm()
			}
		}, w)
		w.Show()
		d.Show()
	})
}

// PickDirectory lets the user choose a folder and calls onPicked with its path.
func (t *TrayApp) PickDirectory(title string, onPicked func(path string)) {
	pickDirectory(t, title, onPicked)
}

// dialogWindow returns the hidden window dialogs are attached to.
func (t *TrayApp) dialogWindow() fyne.Window {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.window == nil {
		t.window = t.app.NewWindow(config.AppName)
		t.window.Resize(fyne.NewSize(480, 320))
		t.window.CenterOnScreen()
		t.window.SetCloseIntercept(func() { t.window.Hide() })
	}
	return t.window
}

// BuildMenu creates the tray menu. frequencies are listed in a submenu with
// the selected index checked.
func (t *TrayApp) BuildMenu(actions Actions, frequencies []fmt.Stringer, selected int) *fyne.Menu {
	freqItems := make([]*fyne.MenuItem, len(frequencies))
	for i, f := range frequencies {
		index := i
		freqItems[i] = fyne.NewMenuItem(f.String(), func() {
			for j, item := range freqItems {
				item.Checked = j == index
			}
			t.refresh()
			if actions.SetFrequency != nil {
				actions.SetFrequency(index)
			}
		})
		freqItems[i].Checked = i == selected
	}
	freqMenu := fyne.NewMenuItem(LabelFrequency, nil)
	freqMenu.ChildMenu = fyne.NewMenu("", freqItems...)

	notifications := fyne.NewMenuItem(LabelNotifications, nil)
	notifications.Checked = t.cfg.GetAppNotificationsEnabled()
	notifications.Action = func() {
		enabled := !t.cfg.GetAppNotificationsEnabled()
		t.cfg.SetAppNotificationsEnabled(enabled)
		notifications.Checked = enabled
		t.refresh()
	}

	return fyne.NewMenu(config.AppName,
		fyne.NewMenuItem(LabelFetch, background(actions.Fetch)),
		fyne.NewMenuItem(LabelRandom, background(actions.Random)),
		fyne.NewMenuItem(LabelDislike, background(actions.Dislike)),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem(LabelChangeLocation, actions.ChangeLocation),
		freqMenu,
		notifications,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem(LabelQuit, actions.Quit),
	)
}

// BuildDisabledMenu creates the menu shown when the engine could not start.
func (t *TrayApp) BuildDisabledMenu(reason string, quit func()) *fyne.Menu {
	info := fyne.NewMenuItem(reason, nil)
	info.Disabled = true
	return fyne.NewMenu(config.AppName,
		info,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem(LabelQuit, quit),
	)
}

// Install shows the menu in the system tray with the named icon.
func (t *TrayApp) Install(menu *fyne.Menu, iconName string) {
	t.mu.Lock()
	t.trayMenu = menu
	t.mu.Unlock()

	desk, ok := t.app.(desktop.App)
	if !ok {
		log.Println("Tray icon not supported on this platform")
		return
	}

	desk.SetSystemTrayMenu(menu)
	icon, err := t.assetMgr.GetIcon(iconName)
	if err != nil {
		log.Printf("Failed to load icon: %v", err)
		return
	}
	desk.SetSystemTrayIcon(icon)
	t.app.SetIcon(icon)
}

// refresh redraws the tray menu after a checkmark change.
func (t *TrayApp) refresh() {
	t.mu.Lock()
	menu := t.trayMenu
	t.mu.Unlock()
	if menu != nil {
		menu.Refresh()
	}
}

// background runs a menu action off the UI goroutine.
func background(action func()) func() {
	if action == nil {
		return nil
	}
	return func() { go action() }
}
