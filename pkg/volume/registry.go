package volume

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
)

// Registry holds the set of mounted volumes and resolves client target
// tokens to concrete locations.
//
// Mounting happens at configuration time; after that the registry is
// read-only and safe for concurrent use without further locking. The
// mutex only guards the mount phase itself.
type Registry struct {
	mu       sync.RWMutex
	volumes  []*Volume
	byID     map[string]*Volume
	counters map[string]int
}

// Resolved is the outcome of decoding a target token: which volume, the
// volume-relative path, and whether the backend says it is a directory.
// The backend is the source of truth for the kind; a token never
// self-declares it.
type Resolved struct {
	Volume *Volume
	Path   string
	IsDir  bool
}

// Name returns the entry's base name; the volume alias at the root.
func (r *Resolved) Name() string {
	if r.Path == "" {
		return r.Volume.Alias
	}
	return path.Base(r.Path)
}

// Parent returns the parent directory path, "" at and below the first
// level.
func (r *Resolved) Parent() string {
	parent := path.Dir(r.Path)
	if parent == "." || parent == "/" {
		return ""
	}
	return parent
}

// IsRoot reports whether the resolved entry is its volume's root.
func (r *Resolved) IsRoot() bool { return r.Path == "" }

func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[string]*Volume),
		counters: make(map[string]int),
	}
}

// prefixFor maps a backend kind to the volume id letter. Distinct letters
// per backend family keep ids collision-free when several backend types
// are mounted in one process.
func prefixFor(kind string) string {
	switch kind {
	case "s3":
		return "a"
	case "memory":
		return "m"
	default:
		return "v"
	}
}

// Mount registers a volume and assigns its id: the backend prefix letter
// plus a 1-based counter scoped to this registry, e.g. "v1_", "a1_",
// "v2_". Ids are never reassigned.
func (r *Registry) Mount(v *Volume) error {
	if v == nil {
		return fmt.Errorf("cannot mount nil volume")
	}
	if v.Adapter == nil {
		return fmt.Errorf("volume %q: adapter is required", v.Alias)
	}
	if v.id != "" {
		return fmt.Errorf("volume %q already mounted as %s", v.Alias, v.id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := prefixFor(v.Adapter.Kind())
	r.counters[prefix]++
	v.id = fmt.Sprintf("%s%d_", prefix, r.counters[prefix])

	r.volumes = append(r.volumes, v)
	r.byID[v.id] = v
	return nil
}

// Volumes returns the mounted volumes in mount order.
func (r *Registry) Volumes() []*Volume {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.volumes
}

// Default returns the volume an init request without a target lands on:
// the first volume with a configured start path, else the first mounted.
func (r *Registry) Default() *Volume {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.volumes {
		if v.StartPath != "" {
			return v
		}
	}
	if len(r.volumes) == 0 {
		return nil
	}
	return r.volumes[0]
}

// Token builds the client-visible token for a path on a volume.
func Token(v *Volume, rel string) string {
	return v.id + Encode(rel)
}

// Resolve decodes a target token into a Resolved location.
//
// The token splits at its first "_" into volume id and encoded path. An
// empty token fails with ErrNoTarget; an unmatched id with
// ErrUnknownVolume; a path that is malformed, escapes the volume root, or
// points at nothing with ErrBadToken / ErrInvalidTarget. None of these
// ever resolve into another volume.
func (r *Registry) Resolve(ctx context.Context, token string) (*Resolved, error) {
	if token == "" {
		return nil, ErrNoTarget
	}

	sep := strings.Index(token, "_")
	if sep < 0 {
		return nil, fmt.Errorf("token %q: no volume id: %w", token, ErrBadToken)
	}
	id := token[:sep+1]

	r.mu.RLock()
	v, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("volume id %q: %w", id, ErrUnknownVolume)
	}

	rel, err := Decode(token[sep+1:])
	if err != nil {
		return nil, err
	}
	rel, err = normalize(rel)
	if err != nil {
		return nil, err
	}

	// Directory first; only then fall back to file semantics.
	isDir, err := v.Adapter.DirExists(ctx, rel)
	if err != nil {
		return nil, err
	}
	if isDir {
		return &Resolved{Volume: v, Path: rel, IsDir: true}, nil
	}

	isFile, err := v.Adapter.FileExists(ctx, rel)
	if err != nil {
		return nil, err
	}
	if !isFile {
		return nil, fmt.Errorf("path %q: %w", rel, ErrInvalidTarget)
	}
	return &Resolved{Volume: v, Path: rel, IsDir: false}, nil
}

// normalize cleans a decoded path and rejects anything that would escape
// the volume root. This is the security boundary for client-supplied
// tokens.
func normalize(rel string) (string, error) {
	rel = strings.Trim(strings.ReplaceAll(rel, "\\", "/"), "/")
	if rel == "" {
		return "", nil
	}
	clean := path.Clean(rel)
	if clean == "." {
		return "", nil
	}
	if clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return "", fmt.Errorf("path %q escapes volume root: %w", rel, ErrInvalidTarget)
	}
	return clean, nil
}
