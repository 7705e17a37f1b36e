package hotkey

import (
	"context"
	"time"

	"golang.design/x/hotkey"

	"github.com/wallpaperio/wallpaperio/util/log"
)

// debounce is the pause after each handled keypress.
const debounce = 200 * time.Millisecond

// Actions are the controller commands reachable from the keyboard.
type Actions struct {
	Fetch   func()
	Random  func()
	Dislike func()
}

type binding struct {
	name   string
	mods   []hotkey.Modifier
	key    hotkey.Key
	action func()
}

// bindings maps each shortcut to its action.
//
//	Ctrl + Alt + Up    fetch the photo of the day
//	Ctrl + Alt + Right random wallpaper from the catalog
//	Ctrl + Alt + Down  dislike the current wallpaper
func bindings(a Actions) []binding {
	mods := []hotkey.Modifier{modCtrl, modAlt}
	return []binding{
		{name: "Get Wallpaper", mods: mods, key: keyUp, action: a.Fetch},
		{name: "Random Photo", mods: mods, key: keyRight, action: a.Random},
		{name: "Dislike Wallpaper", mods: mods, key: keyDown, action: a.Dislike},
	}
}

// StartListeners registers the global shortcuts and dispatches keypresses
// until ctx is canceled. Shortcuts that fail to register are logged and skipped.
func StartListeners(ctx context.Context, a Actions) {
	if !supported {
		log.Printf("Global hotkeys are not supported on this platform")
		return
	}
	if !HasAccessibility() {
		log.Printf("Accessibility permission missing, global hotkeys may not fire")
	}

	for _, b := range bindings(a) {
		if b.action == nil {
			continue
		}
		registerAndListen(ctx, b)
	}
}

func registerAndListen(ctx context.Context, b binding) {
	hk := hotkey.New(b.mods, b.key)
	if err := hk.Register(); err != nil {
		log.Printf("Failed to register hotkey %s: %v", b.name, err)
		return
	}
	log.Printf("Registered hotkey: %s", b.name)

	go func() {
		defer func() {
			if err := hk.Unregister(); err != nil {
				log.Debugf("Failed to unregister hotkey %s: %v", b.name, err)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-hk.Keydown():
				if !ok {
					return
				}
				log.Debugf("Hotkey pressed: %s", b.name)
				b.action()
				time.Sleep(debounce)
			}
		}
	}()
}
