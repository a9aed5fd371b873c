// Package archive packages and unpacks blueprint containers: zip files
// holding one top-level folder with the manifest and an optional media
// tree.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/atlasforge/blueprint/pkg/manifest"
)

// PackError reports a failure to produce a container.
type PackError struct {
	Path string
	Err  error
}

func (e *PackError) Error() string {
	return fmt.Sprintf("pack %s: %v", e.Path, e.Err)
}

func (e *PackError) Unwrap() error { return e.Err }

// UnpackError reports an unreadable or malformed container.
type UnpackError struct {
	Path string
	Err  error
}

func (e *UnpackError) Error() string {
	return fmt.Sprintf("unpack %s: %v", e.Path, e.Err)
}

func (e *UnpackError) Unwrap() error { return e.Err }

// Pack produces a container at outPath from a working directory holding
// main.json and an optional media/ subtree. Entries are stored under a
// single top-level folder named slug. Returns the container path.
func Pack(workDir, slug, outPath string) (string, error) {
	manifestPath := filepath.Join(workDir, manifest.FileName)
	if _, err := os.Stat(manifestPath); err != nil {
		return "", &PackError{Path: outPath, Err: fmt.Errorf("missing %s: %w", manifest.FileName, err)}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return "", &PackError{Path: outPath, Err: err}
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	if err := addFile(zw, manifestPath, path.Join(slug, manifest.FileName)); err != nil {
		zw.Close()
		return "", &PackError{Path: outPath, Err: err}
	}

	// Media files live two levels down: media/<originalID>/<basename>.
	pattern := filepath.Join(workDir, manifest.MediaDir, "**", "*")
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		zw.Close()
		return "", &PackError{Path: outPath, Err: err}
	}
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			zw.Close()
			return "", &PackError{Path: outPath, Err: err}
		}
		if info.IsDir() {
			continue
		}
		rel, err := filepath.Rel(workDir, match)
		if err != nil {
			zw.Close()
			return "", &PackError{Path: outPath, Err: err}
		}
		name := path.Join(slug, filepath.ToSlash(rel))
		if err := addFile(zw, match, name); err != nil {
			zw.Close()
			return "", &PackError{Path: outPath, Err: err}
		}
	}

	if err := zw.Close(); err != nil {
		return "", &PackError{Path: outPath, Err: err}
	}
	return outPath, nil
}

// addFile copies one file into the zip under the given entry name.
func addFile(zw *zip.Writer, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()

	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	return nil
}

// Unpack extracts a container under outRoot and returns the extracted
// directory. The top-level folder name is recovered from the container's
// first entry, so a renamed archive file still unpacks to the folder it
// was packed with.
func Unpack(archivePath, outRoot string) (string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", &UnpackError{Path: archivePath, Err: err}
	}
	defer r.Close()

	if len(r.File) == 0 {
		return "", &UnpackError{Path: archivePath, Err: fmt.Errorf("empty archive")}
	}

	root := topLevel(r.File[0].Name)
	if root == "" {
		return "", &UnpackError{Path: archivePath, Err: fmt.Errorf("no top-level folder in %q", r.File[0].Name)}
	}

	for _, f := range r.File {
		if err := extractEntry(f, outRoot); err != nil {
			return "", &UnpackError{Path: archivePath, Err: err}
		}
	}

	return filepath.Join(outRoot, root), nil
}

// topLevel returns the first path segment of a zip entry name.
func topLevel(name string) string {
	name = strings.TrimPrefix(path.Clean(name), "/")
	if i := strings.IndexByte(name, '/'); i > 0 {
		return name[:i]
	}
	if name == "." || name == ".." {
		return ""
	}
	return name
}

// extractEntry writes one zip entry under outRoot, rejecting entries
// that would escape it.
func extractEntry(f *zip.File, outRoot string) error {
	cleaned := path.Clean(f.Name)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") || path.IsAbs(cleaned) {
		return fmt.Errorf("entry %q escapes archive root", f.Name)
	}

	dest := filepath.Join(outRoot, filepath.FromSlash(cleaned))

	if f.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return out.Close()
}
