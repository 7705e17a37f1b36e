//go:build windows

package ui

import (
	"errors"

	"github.com/harry1453/go-common-file-dialog/cfd"
	"github.com/harry1453/go-common-file-dialog/cfdutil"

	"github.com/wallpaperio/wallpaperio/config"
	"github.com/wallpaperio/wallpaperio/util/log"
)

// pickDirectory shows the native Windows folder picker.
func pickDirectory(t *TrayApp, title string, onPicked func(path string)) {
	go func() {
		path, err := cfdutil.ShowPickFolderDialog(cfd.DialogConfig{
			Title:  title,
			Role:   config.AppName + "CatalogFolder",
			Folder: t.cfg.CatalogPath(),
		})
		if errors.Is(err, cfd.ErrorCancelled) {
			return
		}
		if err != nil {
			log.Printf("Folder picker failed: %v", err)
			return
		}
		onPicked(path)
	}()
}
