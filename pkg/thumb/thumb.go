// Package thumb manages the per-volume thumbnail cache.
package thumb

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path"
	"strconv"

	"github.com/elfin-go/elfin/internal/logger"
	"github.com/elfin-go/elfin/pkg/picture"
	"github.com/elfin-go/elfin/pkg/storage"
	"github.com/elfin-go/elfin/pkg/volume"
)

// Manager derives, generates and invalidates thumbnail cache entries.
//
// A cache entry lives under the volume's reserved ".tmb" subtree,
// mirroring the source's relative directory, named
// "<base>_<fingerprint><ext>". The fingerprint is the md5 of the source
// name plus its modification timestamp, so any mutation that touches the
// timestamp re-keys the cache without reading file content. An entry is
// valid exactly as long as it exists at its derived path; mutating
// operations delete it proactively.
type Manager struct {
	editor picture.Editor
}

func NewManager(editor picture.Editor) *Manager {
	return &Manager{editor: editor}
}

// CanThumbnail reports whether a thumbnail can exist for the named file:
// the volume must expose a thumbnail URL and the editor must decode the
// extension. The thumbnail cache itself is never thumbnailed.
func (m *Manager) CanThumbnail(v *volume.Volume, rel string) bool {
	if v.TmbURL == "" || m.editor == nil {
		return false
	}
	if rel == volume.TmbDir || hasPrefixDir(rel, volume.TmbDir) {
		return false
	}
	return m.editor.CanDecode(path.Ext(rel))
}

// CachePath derives the cache location for a source file from its name
// and modification time, without touching storage.
func (m *Manager) CachePath(ctx context.Context, v *volume.Volume, rel string) (string, error) {
	mtime, err := v.Adapter.FileMTime(ctx, rel)
	if err != nil {
		return "", err
	}

	name := path.Base(rel)
	sum := md5.Sum([]byte(name + strconv.FormatInt(mtime.UnixNano(), 10)))
	base, ext := storage.SplitExt(name)
	cacheName := fmt.Sprintf("%s_%s%s", base, hex.EncodeToString(sum[:]), ext)

	dir := path.Dir(rel)
	if dir == "." {
		return path.Join(volume.TmbDir, cacheName), nil
	}
	return path.Join(volume.TmbDir, dir, cacheName), nil
}

// Ensure returns the cache path for rel, generating the thumbnail first
// if it is not cached yet. Generation is idempotent; two racing requests
// for the same missing thumbnail both write the same bytes.
func (m *Manager) Ensure(ctx context.Context, v *volume.Volume, rel string) (string, error) {
	cachePath, err := m.CachePath(ctx, v, rel)
	if err != nil {
		return "", err
	}

	exists, err := v.Adapter.FileExists(ctx, cachePath)
	if err != nil {
		return "", err
	}
	if exists {
		return cachePath, nil
	}

	src, err := v.Adapter.OpenRead(ctx, rel)
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := m.editor.Thumbnail(src, path.Ext(rel), v.ThumbSize())
	if err != nil {
		return "", fmt.Errorf("generate thumbnail for %q: %w", rel, err)
	}

	if err := v.Adapter.MakeDir(ctx, path.Dir(cachePath)); err != nil {
		return "", err
	}
	if err := v.Adapter.WriteFile(ctx, cachePath, bytes.NewReader(data)); err != nil {
		return "", err
	}

	logger.Debug("thumbnail generated: volume=%s source=%q cache=%q", v.ID(), rel, cachePath)
	return cachePath, nil
}

// Invalidate removes the cache entry for a file, or the whole mirrored
// subtree for a directory. Called before any rename, move, delete or
// pixel mutation of the source. Safe to call when nothing is cached.
func (m *Manager) Invalidate(ctx context.Context, v *volume.Volume, rel string, isDir bool) error {
	if v.TmbURL == "" || rel == "" {
		return nil
	}

	if isDir {
		mirror := path.Join(volume.TmbDir, rel)
		exists, err := v.Adapter.DirExists(ctx, mirror)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}
		return v.Adapter.RemoveDir(ctx, mirror)
	}

	if !m.CanThumbnail(v, rel) {
		return nil
	}
	cachePath, err := m.CachePath(ctx, v, rel)
	if err != nil {
		return err
	}
	exists, err := v.Adapter.FileExists(ctx, cachePath)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	return v.Adapter.RemoveFile(ctx, cachePath)
}

func hasPrefixDir(rel, dir string) bool {
	return len(rel) > len(dir) && rel[:len(dir)] == dir && rel[len(dir)] == '/'
}
