package wallpaper

import "errors"

var (
	// ErrResolutionFailed is returned when the source page cannot be fetched or has no og:image.
	ErrResolutionFailed = errors.New("photo resolution failed")
	// ErrDownloadExhausted is returned when every download attempt failed.
	ErrDownloadExhausted = errors.New("download attempts exhausted")
	// ErrCatalogEmpty is returned when no eligible entry exists.
	ErrCatalogEmpty = errors.New("catalog has no eligible photos")
	// ErrRenameFailed is returned when a ban or unban rename fails.
	ErrRenameFailed = errors.New("catalog rename failed")
	// ErrCatalogUnavailable is returned when the catalog directory cannot be created or read.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)
