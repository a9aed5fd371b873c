package collector

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cast"

	"github.com/atlasforge/blueprint/pkg/manifest"
	"github.com/atlasforge/blueprint/pkg/types"
)

// MediaError reports a media file that could not be collected. It aborts
// the export: a manifest referencing an uncopied file is invalid.
type MediaError struct {
	Path string
	Err  error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("collect media %s: %v", e.Path, e.Err)
}

func (e *MediaError) Unwrap() error { return e.Err }

// collectMedia walks the collected metadata for thumbnail references,
// resolves each to its source file, and copies it into the working
// directory's media tree. Copies are deduplicated by source path: two
// references to the same file share one stored relative path.
func (c *Collector) collectMedia(m *manifest.Manifest) error {
	media := make(map[int64]string)
	copied := make(map[string]string) // source path -> stored relative path

	for _, postID := range sortedPostIDs(m) {
		for _, entry := range m.Services.Content.PostMeta[postID] {
			if entry.Key != types.MetaKeyThumbnail {
				continue
			}
			mediaID := cast.ToInt64(entry.Value)
			if mediaID <= 0 {
				continue
			}
			if _, done := media[mediaID]; done {
				continue
			}

			src, err := c.store.MediaFilePath(mediaID)
			if err != nil {
				return &MediaError{Path: fmt.Sprintf("media %d", mediaID), Err: err}
			}

			if rel, ok := copied[src]; ok {
				media[mediaID] = rel
				continue
			}

			rel := manifest.MediaPath(mediaID, filepath.Base(src))
			if err := copyIntoWorkDir(src, filepath.Join(c.workDir, filepath.FromSlash(rel))); err != nil {
				return &MediaError{Path: src, Err: err}
			}
			copied[src] = rel
			media[mediaID] = rel
		}
	}

	if len(media) > 0 {
		m.Services.Content.Media = media
	}
	return nil
}

// copyIntoWorkDir copies src to dest, creating parent directories.
func copyIntoWorkDir(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
