//go:build windows

package wallpaper

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	systemParametersInfo = user32.NewProc("SystemParametersInfoW")
)

// Windows API constants (defined manually)
const (
	SPISetDeskWallpaper = 0x0014
	SPIFUpdateIniFile   = 0x01
	SPIFSendChange      = 0x02
)

// windowsOS implements Sink for Windows.
type windowsOS struct{}

// NewOSSink returns the wallpaper sink for this platform.
func NewOSSink() Sink {
	return &windowsOS{}
}

// Apply sets the wallpaper to the given image file path.
func (w *windowsOS) Apply(imagePath string) error {
	imagePathUTF16, err := windows.UTF16PtrFromString(imagePath)
	if err != nil {
		return err
	}

	ret, _, err := systemParametersInfo.Call(
		uintptr(SPISetDeskWallpaper),
		uintptr(0),
		uintptr(unsafe.Pointer(imagePathUTF16)),
		uintptr(SPIFUpdateIniFile|SPIFSendChange),
	)
	if ret == 0 {
		return fmt.Errorf("SystemParametersInfoW failed: %w", err)
	}
	return nil
}

// Current reads the wallpaper path from HKCU\Control Panel\Desktop.
func (w *windowsOS) Current() (string, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, `Control Panel\Desktop`, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()

	path, _, err := k.GetStringValue("Wallpaper")
	if err != nil {
		return "", err
	}
	return os.ExpandEnv(path), nil
}
