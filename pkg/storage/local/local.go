// Package local implements the storage adapter over the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/elfin-go/elfin/pkg/storage"
)

// Adapter stores entries directly on the local filesystem under a fixed
// root directory.
//
// All operations check the context before touching the filesystem so a
// cancelled request never starts new I/O. Filesystem failures other than
// "not found" wrap storage.ErrStorageIO.
type Adapter struct {
	root string
}

// New creates a filesystem adapter rooted at root, creating the directory
// if it does not exist.
func New(ctx context.Context, root string) (*Adapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create root %q: %v: %w", abs, err, storage.ErrStorageIO)
	}

	return &Adapter{root: abs}, nil
}

// Kind identifies this backend family.
func (a *Adapter) Kind() string { return "local" }

// Root returns the absolute root directory.
func (a *Adapter) Root() string { return a.root }

// abs maps a volume-relative slash path to an absolute filesystem path.
func (a *Adapter) abs(rel string) string {
	return filepath.Join(a.root, filepath.FromSlash(rel))
}

func (a *Adapter) DirExists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fi, err := os.Stat(a.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %q: %v: %w", path, err, storage.ErrStorageIO)
	}
	return fi.IsDir(), nil
}

func (a *Adapter) MakeDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(a.abs(path), 0755); err != nil {
		return fmt.Errorf("mkdir %q: %v: %w", path, err, storage.ErrStorageIO)
	}
	return nil
}

func (a *Adapter) RemoveDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.RemoveAll(a.abs(path)); err != nil {
		return fmt.Errorf("rmdir %q: %v: %w", path, err, storage.ErrStorageIO)
	}
	return nil
}

func (a *Adapter) List(ctx context.Context, path string) ([]storage.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(a.abs(path))
	if err != nil {
		return nil, fmt.Errorf("readdir %q: %v: %w", path, err, storage.ErrStorageIO)
	}

	infos := make([]storage.Info, 0, len(entries))
	for _, e := range entries {
		fi, err := e.Info()
		if err != nil {
			// Entry vanished between readdir and stat; a concurrent
			// delete, not a failure.
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("stat %q: %v: %w", e.Name(), err, storage.ErrStorageIO)
		}

		info := storage.Info{
			Name:   e.Name(),
			Dir:    fi.IsDir(),
			MTime:  fi.ModTime(),
			Hidden: strings.HasPrefix(e.Name(), "."),
		}
		if !info.Dir {
			info.Size = fi.Size()
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (a *Adapter) DirMTime(ctx context.Context, path string) (time.Time, error) {
	return a.mtime(ctx, path)
}

func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fi, err := os.Stat(a.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %q: %v: %w", path, err, storage.ErrStorageIO)
	}
	return fi.Mode().IsRegular(), nil
}

func (a *Adapter) FileSize(ctx context.Context, path string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	fi, err := os.Stat(a.abs(path))
	if err != nil {
		return 0, fmt.Errorf("stat %q: %v: %w", path, err, storage.ErrStorageIO)
	}
	return fi.Size(), nil
}

func (a *Adapter) FileMTime(ctx context.Context, path string) (time.Time, error) {
	return a.mtime(ctx, path)
}

func (a *Adapter) mtime(ctx context.Context, path string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	fi, err := os.Stat(a.abs(path))
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %q: %v: %w", path, err, storage.ErrStorageIO)
	}
	return fi.ModTime(), nil
}

func (a *Adapter) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(a.abs(path))
	if err != nil {
		return nil, fmt.Errorf("open %q: %v: %w", path, err, storage.ErrStorageIO)
	}
	return f, nil
}

func (a *Adapter) CreateFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(a.abs(path), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("create %q: %v: %w", path, err, storage.ErrStorageIO)
	}
	return f.Close()
}

func (a *Adapter) WriteFile(ctx context.Context, path string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	abs := a.abs(path)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("mkdir for %q: %v: %w", path, err, storage.ErrStorageIO)
	}

	f, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open %q: %v: %w", path, err, storage.ErrStorageIO)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		// Leave no partial file behind on a failed write.
		os.Remove(abs)
		return fmt.Errorf("write %q: %v: %w", path, err, storage.ErrStorageIO)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %v: %w", path, err, storage.ErrStorageIO)
	}
	return nil
}

func (a *Adapter) RemoveFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(a.abs(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %q: %v: %w", path, err, storage.ErrStorageIO)
	}
	return nil
}

func (a *Adapter) Copy(ctx context.Context, src, dst string, isDir bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if isDir {
		return a.copyDir(ctx, src, dst)
	}
	return a.copyFile(ctx, src, dst)
}

func (a *Adapter) copyFile(ctx context.Context, src, dst string) error {
	in, err := a.OpenRead(ctx, src)
	if err != nil {
		return err
	}
	defer in.Close()
	return a.WriteFile(ctx, dst, in)
}

func (a *Adapter) copyDir(ctx context.Context, src, dst string) error {
	if err := a.MakeDir(ctx, dst); err != nil {
		return err
	}

	entries, err := a.List(ctx, src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		childSrc := joinRel(src, e.Name)
		childDst := joinRel(dst, e.Name)
		if err := a.Copy(ctx, childSrc, childDst, e.Dir); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adapter) Move(ctx context.Context, src, dst string, isDir bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dstAbs := a.abs(dst)
	if err := os.MkdirAll(filepath.Dir(dstAbs), 0755); err != nil {
		return fmt.Errorf("mkdir for %q: %v: %w", dst, err, storage.ErrStorageIO)
	}
	if err := os.Rename(a.abs(src), dstAbs); err != nil {
		// Cross-device renames fail on some setups; fall back to
		// copy-then-delete like the blob backends.
		if err := a.Copy(ctx, src, dst, isDir); err != nil {
			return err
		}
		if isDir {
			return a.RemoveDir(ctx, src)
		}
		return a.RemoveFile(ctx, src)
	}
	return nil
}

func joinRel(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
