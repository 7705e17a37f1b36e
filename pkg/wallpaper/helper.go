package wallpaper

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"unicode"
)

// maxFileStemLength caps the length of names derived from photo titles.
const maxFileStemLength = 120

// extractFilenameFromURL extracts the last path segment of a URL, ignoring the query.
func extractFilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return ""
	}
	return path.Base(u.Path)
}

// isImageFile checks if a file has a common image extension.
func isImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// sanitizeStem keeps letters, digits, spaces and hyphens. Everything else,
// underscores included, becomes a space so a title can never look banned.
func sanitizeStem(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return ' '
	}, s)
	stem := strings.Join(strings.Fields(mapped), " ")
	if len([]rune(stem)) > maxFileStemLength {
		stem = strings.TrimSpace(string([]rune(stem)[:maxFileStemLength]))
	}
	return stem
}

// photoFileName derives the catalog file name of a photo: its title plus .jpg,
// or the image URL's own name when the title is unusable.
func photoFileName(p Photo) string {
	if stem := sanitizeStem(p.Title); stem != "" {
		return stem + defaultExt
	}

	base := extractFilenameFromURL(p.ImageURL)
	ext := strings.ToLower(filepath.Ext(base))
	if !isImageFile(base) {
		ext = defaultExt
	}
	if stem := sanitizeStem(strings.TrimSuffix(base, filepath.Ext(base))); stem != "" {
		return stem + ext
	}
	return "photo" + ext
}

// fileURI returns the file:// URI of an absolute path.
func fileURI(p string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String()
}

// parseFileURI extracts the path from gsettings output such as 'file:///a/b.jpg'.
func parseFileURI(out string) string {
	s := strings.Trim(strings.TrimSpace(out), `'"`)
	u, err := url.Parse(s)
	if err != nil || u.Scheme != "file" {
		return s
	}
	return filepath.FromSlash(u.Path)
}
