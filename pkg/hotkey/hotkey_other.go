//go:build !darwin && !windows && !linux

package hotkey

import "golang.design/x/hotkey"

const supported = false

const (
	modCtrl = hotkey.Modifier(0)
	modAlt  = hotkey.Modifier(0)

	keyRight = hotkey.Key(1)
	keyUp    = hotkey.Key(2)
	keyDown  = hotkey.Key(3)
)

func HasAccessibility() bool {
	return true
}
