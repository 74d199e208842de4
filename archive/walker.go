// Package archive builds Walk abstraction on top of "archive/zip" for
// processing zipped annotation export bundles.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// WalkFunc is the type of the function called for each matched file in the
// archive visited by Walk. The name argument is the entry path inside the
// archive, r reads the entry content. If an error is returned, processing
// stops.
type WalkFunc func(name string, r io.Reader) error

// Walk visits every file in the archive accepted by match, in natural order
// of entry names, calling walkFn for each. Entries with path traversal
// components ("..") or absolute paths abort the walk to prevent Zip Slip
// attacks.
func Walk(archive string, match func(name string) bool, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	files := make(map[string]*zip.File, len(r.File))
	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !match(name) {
			continue
		}
		files[name] = f
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))

	for _, name := range names {
		rc, err := files[name].Open()
		if err != nil {
			return fmt.Errorf("zip entry %q: %w", name, err)
		}
		err = walkFn(name, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
