//go:build darwin

package hotkey

import "golang.design/x/hotkey"

/*
#cgo LDFLAGS: -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>

int checkAccessibilityNative() {
    return AXIsProcessTrusted() ? 1 : 0;
}
*/
import "C"

const supported = true

const (
	modCtrl = hotkey.ModCtrl
	modAlt  = hotkey.ModOption

	keyRight = hotkey.KeyRight
	keyUp    = hotkey.KeyUp
	keyDown  = hotkey.KeyDown
)

// HasAccessibility reports whether the process is trusted to observe key events.
func HasAccessibility() bool {
	return C.checkAccessibilityNative() != 0
}
