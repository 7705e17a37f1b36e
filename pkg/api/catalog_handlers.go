package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// CatalogImage describes one catalog file.
type CatalogImage struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Banned      bool   `json:"banned"`
	URL         string `json:"url"`
}

const defaultPerPage = 50

// resolveCatalogPath joins name to the catalog root and enforces that the
// result stays inside the root.
func resolveCatalogPath(rootPath, name string) (string, error) {
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return "", fmt.Errorf("invalid catalog root: %w", err)
	}
	absRoot = filepath.Clean(absRoot)

	absFile := filepath.Clean(filepath.Join(absRoot, name))
	if !strings.HasPrefix(absFile, absRoot+string(os.PathSeparator)) {
		return "", fmt.Errorf("path traversal detected")
	}
	return absFile, nil
}

// handleCatalogListing lists catalog images: /catalog?page=1&per_page=20
func (s *Server) handleCatalogListing(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}

	start := (page - 1) * perPage
	if start > len(entries) {
		start = len(entries)
	}
	end := start + perPage
	if end > len(entries) {
		end = len(entries)
	}

	images := make([]CatalogImage, 0, end-start)
	for _, e := range entries[start:end] {
		images = append(images, CatalogImage{
			Name:        e.Name,
			DisplayName: e.DisplayName(),
			Banned:      e.Banned(),
			URL:         "/catalog/" + e.Name,
		})
	}
	writeJSON(w, http.StatusOK, images)
}

// handleCatalogAsset serves one catalog image: /catalog/{name}
func (s *Server) handleCatalogAsset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		http.Error(w, "Invalid name", http.StatusBadRequest)
		return
	}

	path, err := resolveCatalogPath(s.catalog.Root(), name)
	if err != nil {
		http.Error(w, "Invalid name", http.StatusBadRequest)
		return
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}
