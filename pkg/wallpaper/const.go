package wallpaper

import (
	"fmt"
	"math"
	"time"
)

// Frequency represents how often the rotation timer fires.
type Frequency int

// Frequency constants
const (
	Frequency1Minute Frequency = iota
	Frequency5Minutes
	Frequency15Minutes
	Frequency30Minutes
	FrequencyHourly
	Frequency3Hours
	Frequency6Hours
	FrequencyDaily
	FrequencyInvalid
)

// DefaultFrequency is used when no valid frequency is stored.
const DefaultFrequency = Frequency5Minutes

// FrequencyDurations maps a Frequency to its time.Duration
var FrequencyDurations = map[Frequency]time.Duration{
	Frequency1Minute:   time.Minute,
	Frequency5Minutes:  5 * time.Minute,
	Frequency15Minutes: 15 * time.Minute,
	Frequency30Minutes: 30 * time.Minute,
	FrequencyHourly:    time.Hour,
	Frequency3Hours:    3 * time.Hour,
	Frequency6Hours:    6 * time.Hour,
	FrequencyDaily:     24 * time.Hour,
}

// String returns the string representation of a Frequency
func (f Frequency) String() string {
	switch f {
	case Frequency1Minute:
		return "Every Minute"
	case Frequency5Minutes:
		return "Every 5 Minutes"
	case Frequency15Minutes:
		return "Every 15 Minutes"
	case Frequency30Minutes:
		return "Every 30 Minutes"
	case FrequencyHourly:
		return "Hourly"
	case Frequency3Hours:
		return "Every 3 Hours"
	case Frequency6Hours:
		return "Every 6 Hours"
	case FrequencyDaily:
		return "Daily"
	default:
		return "Unknown"
	}
}

// Duration returns the time.Duration of a Frequency. Unknown values map to
// an interval that never elapses.
func (f Frequency) Duration() time.Duration {
	d, ok := FrequencyDurations[f]
	if !ok {
		return time.Duration(math.MaxInt64)
	}
	return d
}

// FrequencyFromIndex validates a stored frequency index.
func FrequencyFromIndex(i int) Frequency {
	if i < int(Frequency1Minute) || i >= int(FrequencyInvalid) {
		return DefaultFrequency
	}
	return Frequency(i)
}

// GetFrequencies returns a list of all available frequencies AS fmt.Stringer
func GetFrequencies() []fmt.Stringer {
	stringers := make([]fmt.Stringer, 0, int(FrequencyInvalid))
	for f := Frequency1Minute; f < FrequencyInvalid; f++ {
		stringers = append(stringers, f)
	}
	return stringers
}

// Retry limits shared by resolution and download.
const (
	// MaxConnAttempts is the ceiling of consecutive network failures.
	MaxConnAttempts = 5

	// RetryInterval paces consecutive attempts.
	RetryInterval = 2 * time.Second
)

// NetworkTimeouts defines the standard durations for various network operations.
const (
	// HTTPClientRequestTimeout is the total time limit for a single HTTP request,
	// including connection, redirects, and reading the response body.
	HTTPClientRequestTimeout = 60 * time.Second

	// HTTPClientDialerTimeout is the timeout for establishing a TCP connection.
	HTTPClientDialerTimeout = 15 * time.Second

	// HTTPClientTLSHandshakeTimeout is the time limit for the TLS handshake for HTTPS.
	HTTPClientTLSHandshakeTimeout = 10 * time.Second

	// HTTPClientResponseHeaderTimeout is the time limit for receiving response headers.
	HTTPClientResponseHeaderTimeout = 15 * time.Second

	// HTTPClientKeepAlive is the duration for TCP keep-alive probes.
	HTTPClientKeepAlive = 30 * time.Second
)

// UserAgent is sent with every request.
const UserAgent = "Mozilla/5.0 (compatible; Wallpaperio/1.0)"

// Catalog naming.
const (
	bannedSuffix  = "_banned"
	bannedToken   = "banned"
	defaultExt    = ".jpg"
	stagingMarker = ".partial-"

	// relocateCopyLimit caps concurrent file copies during a cross-device move.
	relocateCopyLimit = 4
)

// imageExtensions lists the file types the catalog recognizes.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// User-facing notification titles and messages.
const (
	TitleDownloaded      = "New wallpaper"
	MsgDownloaded        = "Today's photo was downloaded and set as your wallpaper."
	TitleAlreadyHave     = "Already downloaded"
	MsgAlreadyHave       = "You already have today's photo. It is now your wallpaper."
	TitleDisliked        = "Photo disliked"
	MsgDisliked          = "You disliked today's photo, so it was not applied."
	TitleUnavailable     = "Photo unavailable"
	MsgUnavailable       = "The photo of the day could not be found. Please try again later."
	TitleServerBusy      = "Server busy"
	MsgServerBusy        = "The photo could not be downloaded. The server may be busy, please try again later."
	TitleRelocated       = "Folder changed"
	MsgRelocatedFmt      = "Your wallpapers are now stored in %s."
	TitleRelocateFailed  = "Folder not changed"
	MsgRelocateFailedFmt = "Your wallpapers could not be moved: %v"
	TitleNoPhotos        = "No photos"
	MsgNoPhotos          = "There are no photos in your wallpaper folder yet. Download the photo of the day now?"
	TitleChangeLocation  = "Choose where to keep your wallpapers"
)

// relocateTimeout bounds a catalog move started from the tray.
const relocateTimeout = 30 * time.Minute
