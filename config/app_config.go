package config

import (
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
)

// Preference keys.
const (
	CatalogPathKey             = "catalogPath"
	SourceURLKey               = "source_url"
	RotationFrequencyKey       = "rotation_frequency"
	AppNotificationsEnabledKey = "app_notifications_enabled"
	HotkeysEnabledKey          = "hotkeys_enabled"
	ControlAPIEnabledKey       = "control_api_enabled"
)

// AppConfig holds the application-wide configuration
type AppConfig struct {
	prefs fyne.Preferences
}

// NewAppConfig creates a new AppConfig instance
func NewAppConfig(p fyne.Preferences) *AppConfig {
	return &AppConfig{prefs: p}
}

// DefaultCatalogPath returns ~/wallpaperio, or a path relative to the working
// directory when the home directory cannot be determined.
func DefaultCatalogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return AppDirName
	}
	return filepath.Join(home, AppDirName)
}

// CatalogPath returns the catalog root directory.
func (c *AppConfig) CatalogPath() string {
	return c.prefs.StringWithFallback(CatalogPathKey, DefaultCatalogPath())
}

// SetCatalogPath persists the catalog root directory.
func (c *AppConfig) SetCatalogPath(path string) {
	c.prefs.SetString(CatalogPathKey, path)
}

// SourceURL returns the page the photo of the day is resolved from.
func (c *AppConfig) SourceURL() string {
	url := c.prefs.StringWithFallback(SourceURLKey, DefaultSourceURL)
	if url == "" {
		return DefaultSourceURL
	}
	return url
}

// SetSourceURL sets the photo of the day page.
func (c *AppConfig) SetSourceURL(url string) {
	c.prefs.SetString(SourceURLKey, url)
}

// RotationFrequency returns the stored rotation frequency index. A negative
// fallback tells the caller to use its own default.
func (c *AppConfig) RotationFrequency() int {
	return c.prefs.IntWithFallback(RotationFrequencyKey, -1)
}

// SetRotationFrequency stores the rotation frequency index.
func (c *AppConfig) SetRotationFrequency(freq int) {
	c.prefs.SetInt(RotationFrequencyKey, freq)
}

// GetAppNotificationsEnabled returns whether system notifications are enabled
func (c *AppConfig) GetAppNotificationsEnabled() bool {
	return c.prefs.BoolWithFallback(AppNotificationsEnabledKey, true)
}

// SetAppNotificationsEnabled sets whether system notifications are enabled
func (c *AppConfig) SetAppNotificationsEnabled(enabled bool) {
	c.prefs.SetBool(AppNotificationsEnabledKey, enabled)
}

// GetHotkeysEnabled returns whether the global hotkeys are registered.
func (c *AppConfig) GetHotkeysEnabled() bool {
	return c.prefs.BoolWithFallback(HotkeysEnabledKey, true)
}

// SetHotkeysEnabled sets whether the global hotkeys are registered.
func (c *AppConfig) SetHotkeysEnabled(enabled bool) {
	c.prefs.SetBool(HotkeysEnabledKey, enabled)
}

// GetControlAPIEnabled returns whether the local control API is served.
func (c *AppConfig) GetControlAPIEnabled() bool {
	return c.prefs.BoolWithFallback(ControlAPIEnabledKey, false)
}

// SetControlAPIEnabled sets whether the local control API is served.
func (c *AppConfig) SetControlAPIEnabled(enabled bool) {
	c.prefs.SetBool(ControlAPIEnabledKey, enabled)
}
