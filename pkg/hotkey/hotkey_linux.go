//go:build linux

package hotkey

import "golang.design/x/hotkey"

const supported = true

const (
	modCtrl = hotkey.ModCtrl
	modAlt  = hotkey.Mod1

	keyRight = hotkey.KeyRight
	keyUp    = hotkey.KeyUp
	keyDown  = hotkey.KeyDown
)

func HasAccessibility() bool {
	return true
}
