package wallpaper

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wallpaperio/wallpaperio/util/log"
)

// validateName ensures a catalog file name does not escape the catalog root.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid name %q", name)
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid name %q: contains illegal characters", name)
	}
	return nil
}

// isWithin reports whether path is root itself or lies below it.
func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// moveTree moves the directory oldRoot to newRoot. A plain rename is tried first.
// If that fails (for example across devices) the tree is copied into a staging
// directory next to newRoot, the staging directory is renamed into place and only
// then is oldRoot removed. On failure oldRoot is left untouched.
func moveTree(ctx context.Context, oldRoot, newRoot string) error {
	if err := os.MkdirAll(filepath.Dir(newRoot), 0755); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", newRoot, err)
	}

	renameErr := os.Rename(oldRoot, newRoot)
	if renameErr == nil {
		return nil
	}
	log.Printf("Rename %s -> %s failed (%v), falling back to copy", oldRoot, newRoot, renameErr)

	staging := newRoot + stagingMarker + uuid.NewString()
	if err := copyTree(ctx, oldRoot, staging); err != nil {
		_ = os.RemoveAll(staging)
		return fmt.Errorf("failed to copy catalog to %s: %w", staging, err)
	}

	if err := os.Rename(staging, newRoot); err != nil {
		_ = os.RemoveAll(staging)
		return fmt.Errorf("failed to move staging directory into %s: %w", newRoot, err)
	}

	if err := os.RemoveAll(oldRoot); err != nil {
		// New tree is already in place.
		log.Printf("Failed to remove old catalog %s: %v", oldRoot, err)
	}
	return nil
}

// copyTree copies the directory src to dst, copying files in parallel.
func copyTree(ctx context.Context, src, dst string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(relocateCopyLimit)

	walkErr := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0755)
		case d.Type().IsRegular():
			g.Go(func() error {
				return copyFile(ctx, path, target)
			})
			return nil
		default:
			log.Debugf("Skipping non-regular file %s", path)
			return nil
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return walkErr
}

// copyFile copies a single file, keeping its permission bits.
func copyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
