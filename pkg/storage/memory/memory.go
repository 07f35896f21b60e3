// Package memory implements an in-memory storage adapter.
//
// It exists for tests and examples, mirroring the observable behavior of
// the filesystem and S3 adapters without touching disk or network.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/elfin-go/elfin/pkg/storage"
)

// Adapter keeps the whole tree in two maps guarded by one mutex.
// Directories are tracked explicitly so empty directories exist, matching
// filesystem semantics rather than bare blob-prefix semantics.
type Adapter struct {
	mu     sync.RWMutex
	files  map[string][]byte
	dirs   map[string]bool
	mtimes map[string]time.Time

	// FailWrites makes WriteFile fail after consuming its reader. Tests
	// use it to simulate a mid-upload storage failure.
	FailWrites bool
}

func New() *Adapter {
	return &Adapter{
		files:  make(map[string][]byte),
		dirs:   map[string]bool{"": true},
		mtimes: make(map[string]time.Time),
	}
}

func (a *Adapter) Kind() string { return "memory" }

func (a *Adapter) DirExists(_ context.Context, p string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dirs[p], nil
}

func (a *Adapter) MakeDir(_ context.Context, p string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for cur := p; ; cur = parentOf(cur) {
		a.dirs[cur] = true
		a.mtimes[cur] = time.Now()
		if cur == "" {
			break
		}
	}
	return nil
}

func (a *Adapter) RemoveDir(_ context.Context, p string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	prefix := p + "/"
	for k := range a.files {
		if strings.HasPrefix(k, prefix) {
			delete(a.files, k)
			delete(a.mtimes, k)
		}
	}
	for k := range a.dirs {
		if k == p || strings.HasPrefix(k, prefix) {
			delete(a.dirs, k)
			delete(a.mtimes, k)
		}
	}
	return nil
}

func (a *Adapter) List(_ context.Context, p string) ([]storage.Info, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.dirs[p] {
		return nil, fmt.Errorf("list %q: not a directory: %w", p, storage.ErrStorageIO)
	}

	var infos []storage.Info
	for k, data := range a.files {
		if parentOf(k) != p {
			continue
		}
		name := path.Base(k)
		infos = append(infos, storage.Info{
			Name:   name,
			Size:   int64(len(data)),
			MTime:  a.mtimes[k],
			Hidden: strings.HasPrefix(name, "."),
		})
	}
	for k := range a.dirs {
		if k == "" || parentOf(k) != p {
			continue
		}
		name := path.Base(k)
		infos = append(infos, storage.Info{
			Name:   name,
			Dir:    true,
			MTime:  a.mtimes[k],
			Hidden: strings.HasPrefix(name, "."),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (a *Adapter) DirMTime(_ context.Context, p string) (time.Time, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mtimes[p], nil
}

func (a *Adapter) FileExists(_ context.Context, p string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.files[p]
	return ok, nil
}

func (a *Adapter) FileSize(_ context.Context, p string) (int64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.files[p]
	if !ok {
		return 0, fmt.Errorf("size %q: %w", p, storage.ErrStorageIO)
	}
	return int64(len(data)), nil
}

func (a *Adapter) FileMTime(_ context.Context, p string) (time.Time, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mtimes[p], nil
}

func (a *Adapter) OpenRead(_ context.Context, p string) (io.ReadCloser, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.files[p]
	if !ok {
		return nil, fmt.Errorf("open %q: %w", p, storage.ErrStorageIO)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (a *Adapter) CreateFile(_ context.Context, p string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.files[p] = []byte{}
	a.mtimes[p] = time.Now()
	return nil
}

func (a *Adapter) WriteFile(ctx context.Context, p string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read body for %q: %v: %w", p, err, storage.ErrStorageIO)
	}
	if a.FailWrites {
		return fmt.Errorf("write %q: injected failure: %w", p, storage.ErrStorageIO)
	}

	if dir := parentOf(p); dir != "" {
		if err := a.MakeDir(ctx, dir); err != nil {
			return err
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.files[p] = data
	a.mtimes[p] = time.Now()
	return nil
}

func (a *Adapter) RemoveFile(_ context.Context, p string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.files, p)
	delete(a.mtimes, p)
	return nil
}

func (a *Adapter) Copy(ctx context.Context, src, dst string, isDir bool) error {
	if !isDir {
		a.mu.Lock()
		data, ok := a.files[src]
		if !ok {
			a.mu.Unlock()
			return fmt.Errorf("copy %q: %w", src, storage.ErrStorageIO)
		}
		a.files[dst] = append([]byte(nil), data...)
		a.mtimes[dst] = time.Now()
		a.mu.Unlock()
		return nil
	}

	if err := a.MakeDir(ctx, dst); err != nil {
		return err
	}
	entries, err := a.List(ctx, src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := a.Copy(ctx, path.Join(src, e.Name), path.Join(dst, e.Name), e.Dir); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adapter) Move(ctx context.Context, src, dst string, isDir bool) error {
	if err := a.Copy(ctx, src, dst, isDir); err != nil {
		return err
	}
	if isDir {
		return a.RemoveDir(ctx, src)
	}
	return a.RemoveFile(ctx, src)
}

func parentOf(p string) string {
	parent := path.Dir(p)
	if parent == "." || parent == "/" {
		return ""
	}
	return parent
}
