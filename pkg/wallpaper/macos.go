//go:build darwin

package wallpaper

import (
	"fmt"
	"os/exec"
	"strings"
)

// macOSOS implements Sink for macOS.
type macOSOS struct{}

// NewOSSink returns the wallpaper sink for this platform.
func NewOSSink() Sink {
	return &macOSOS{}
}

// Apply sets the desktop wallpaper on every desktop.
func (m *macOSOS) Apply(imagePath string) error {
	script := fmt.Sprintf(`tell application "System Events"
		tell every desktop
			set picture to %q
		end tell
	end tell`, imagePath)

	if output, err := exec.Command("osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("failed to set wallpaper: %w (output: %s)", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Current returns the picture of the first desktop.
func (m *macOSOS) Current() (string, error) {
	script := `tell application "System Events" to get picture of first desktop`
	out, err := exec.Command("osascript", "-e", script).Output()
	if err != nil {
		return "", fmt.Errorf("failed to get wallpaper: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
