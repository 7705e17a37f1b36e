package wallpaper

import (
	"path/filepath"
	"strings"
)

// CatalogEntry is a file inside the catalog directory, identified by its name.
type CatalogEntry struct {
	Name string
}

// Banned reports whether the entry carries the ban marker.
func (e CatalogEntry) Banned() bool {
	return IsBanned(e.Name)
}

// DisplayName returns the filename without the ban marker.
func (e CatalogEntry) DisplayName() string {
	return unbannedName(e.Name)
}

// IsBanned reports whether the part of the extension-stripped name after the
// last underscore is "banned". A name without an underscore is never banned.
func IsBanned(filename string) bool {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	i := strings.LastIndex(stem, "_")
	if i < 0 {
		return false
	}
	return stem[i+1:] == bannedToken
}

// bannedName inserts the ban marker before the extension.
func bannedName(filename string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + bannedSuffix + ext
}

// unbannedName strips every trailing ban marker from the stem. Only the end of
// the stem is touched, so a name that already contains "_banned" elsewhere
// comes back unchanged after bannedName.
func unbannedName(filename string) string {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for strings.HasSuffix(stem, bannedSuffix) {
		stem = strings.TrimSuffix(stem, bannedSuffix)
	}
	return stem + ext
}
