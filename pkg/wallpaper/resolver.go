package wallpaper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Photo is the result of resolving a source page.
type Photo struct {
	ImageURL string
	Title    string
}

// PhotoResolver extracts the photo of the day from an HTML page.
type PhotoResolver struct {
	client *http.Client
}

// NewPhotoResolver creates a resolver using the given client.
func NewPhotoResolver(client *http.Client) *PhotoResolver {
	return &PhotoResolver{client: client}
}

// Resolve fetches sourceURL and reads its og:image and og:title meta tags.
// Every failure is reported as ErrResolutionFailed.
func (r *PhotoResolver) Resolve(ctx context.Context, sourceURL string) (Photo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return Photo{}, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Photo{}, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Photo{}, fmt.Errorf("%w: %s returned status %d", ErrResolutionFailed, sourceURL, resp.StatusCode)
	}

	doc, err := htmlquery.Parse(resp.Body)
	if err != nil {
		return Photo{}, fmt.Errorf("%w: failed to parse %s: %v", ErrResolutionFailed, sourceURL, err)
	}

	image := metaContent(doc, "og:image")
	if image == "" {
		return Photo{}, fmt.Errorf("%w: no og:image on %s", ErrResolutionFailed, sourceURL)
	}

	imageURL, err := resolveReference(resp.Request.URL, image)
	if err != nil {
		return Photo{}, fmt.Errorf("%w: bad og:image %q: %v", ErrResolutionFailed, image, err)
	}

	return Photo{ImageURL: imageURL, Title: metaContent(doc, "og:title")}, nil
}

// metaContent returns the trimmed content of the first meta tag with the given property.
func metaContent(doc *html.Node, property string) string {
	expr := fmt.Sprintf(`//meta[@property=%q or @name=%q]`, property, property)
	node, err := htmlquery.Query(doc, expr)
	if err != nil || node == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.SelectAttr(node, "content"))
}

// resolveReference makes ref absolute against the page URL.
func resolveReference(base *url.URL, ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if base == nil {
		return u.String(), nil
	}
	return base.ResolveReference(u).String(), nil
}
