//go:build linux

package wallpaper

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// linuxOS implements Sink for Linux desktops.
type linuxOS struct {
	mu   sync.Mutex
	last string
	sway *exec.Cmd
}

// NewOSSink returns the wallpaper sink for this platform.
func NewOSSink() Sink {
	return &linuxOS{}
}

// desktopEnv returns the lower-cased desktop environment name.
func desktopEnv() string {
	env := os.Getenv("XDG_CURRENT_DESKTOP")
	if env == "" {
		env = os.Getenv("DESKTOP_SESSION")
	}
	return strings.ToLower(env)
}

// Apply sets the desktop wallpaper, supporting X11 and some Wayland compositors.
func (l *linuxOS) Apply(imagePath string) error {
	env := desktopEnv()

	var err error
	switch {
	case strings.Contains(env, "gnome") || strings.Contains(env, "unity") || strings.Contains(env, "cinnamon") || strings.Contains(env, "mutter"):
		err = l.setWallpaperGNOME(imagePath)
	case strings.Contains(env, "sway"):
		err = l.setWallpaperSway(imagePath)
	case strings.Contains(env, "kde") && os.Getenv("WAYLAND_DISPLAY") == "":
		err = l.setWallpaperKDE(imagePath)
	case strings.Contains(env, "xfce"):
		err = l.setWallpaperXFCE(imagePath)
	default:
		err = fmt.Errorf("unsupported desktop environment: %q", env)
	}
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.last = imagePath
	l.mu.Unlock()
	return nil
}

// Current reads the wallpaper from the desktop where the desktop exposes it.
func (l *linuxOS) Current() (string, error) {
	env := desktopEnv()
	switch {
	case strings.Contains(env, "gnome") || strings.Contains(env, "unity") || strings.Contains(env, "cinnamon") || strings.Contains(env, "mutter"):
		out, err := exec.Command("gsettings", "get", "org.gnome.desktop.background", "picture-uri").Output()
		if err != nil {
			return "", fmt.Errorf("failed to read GNOME wallpaper: %w", err)
		}
		return parseFileURI(string(out)), nil
	case strings.Contains(env, "xfce"):
		out, err := exec.Command("xfconf-query",
			"--channel", "xfce4-desktop",
			"--property", "/backdrop/screen0/monitor0/workspace0/last-image").Output()
		if err != nil {
			return "", fmt.Errorf("failed to read XFCE wallpaper: %w", err)
		}
		return strings.TrimSpace(string(out)), nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last, nil
}

// setWallpaperGNOME sets the wallpaper for GNOME-based desktop environments.
func (l *linuxOS) setWallpaperGNOME(imagePath string) error {
	uri := fileURI(imagePath)
	if err := exec.Command("gsettings", "set", "org.gnome.desktop.background", "picture-uri", uri).Run(); err != nil {
		return fmt.Errorf("failed to set GNOME wallpaper: %w", err)
	}
	// Older GNOME versions don't have the dark key.
	_ = exec.Command("gsettings", "set", "org.gnome.desktop.background", "picture-uri-dark", uri).Run()
	return nil
}

// setWallpaperKDE sets the wallpaper for KDE.
func (l *linuxOS) setWallpaperKDE(imagePath string) error {
	script := fmt.Sprintf(`
            var allDesktops = desktops();
            for (i=0;i<allDesktops.length;i++) {
                d = allDesktops[i];
                d.wallpaperPlugin = "org.kde.image";
                d.currentConfigGroup = Array("Wallpaper", "org.kde.image", "General");
                d.writeConfig("Image", "%s");
            }`, fileURI(imagePath))

	cmd := exec.Command("dbus-send", "--session",
		"--dest=org.kde.plasmashell",
		"--type=method_call",
		"/PlasmaShell",
		"org.kde.PlasmaShell.evaluateScript",
		"string:"+script)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to set KDE wallpaper: %w", err)
	}
	return nil
}

// setWallpaperXFCE sets the wallpaper for XFCE.
func (l *linuxOS) setWallpaperXFCE(imagePath string) error {
	cmd := exec.Command("xfconf-query",
		"--channel", "xfce4-desktop",
		"--property", "/backdrop/screen0/monitor0/workspace0/last-image",
		"--set", imagePath)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to set XFCE wallpaper: %w", err)
	}
	return nil
}

// setWallpaperSway replaces the running swaybg with one showing imagePath.
func (l *linuxOS) setWallpaperSway(imagePath string) error {
	cmd := exec.Command("swaybg", "-m", "fill", "-i", imagePath)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start swaybg: %w", err)
	}

	l.mu.Lock()
	previous := l.sway
	l.sway = cmd
	l.mu.Unlock()

	go cmd.Wait()
	if previous != nil && previous.Process != nil {
		_ = previous.Process.Kill()
	}
	return nil
}
