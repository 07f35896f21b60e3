package connector

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/elfin-go/elfin/pkg/volume"
)

// cmdOpen lists a directory. With Init set it also reports the protocol
// version, every mounted volume root and the cwd options block, and it
// tolerates a missing target by falling back to the default volume.
func (c *Connector) cmdOpen(ctx context.Context, req *Request) (*OpenResponse, error) {
	r, err := c.registry.Resolve(ctx, req.Target)
	if err != nil {
		if !req.Init {
			return nil, err
		}
		// First client call carries no usable target; pick the first
		// volume with a start path, else the first mounted volume.
		if !errors.Is(err, volume.ErrNoTarget) && !errors.Is(err, volume.ErrBadToken) &&
			!errors.Is(err, volume.ErrUnknownVolume) && !errors.Is(err, volume.ErrInvalidTarget) {
			return nil, err
		}
		r, err = c.defaultLocation(ctx)
		if err != nil {
			return nil, err
		}
	}
	if !r.IsDir {
		return nil, fmt.Errorf("open target %q is a file: %w", req.Target, volume.ErrInvalidTarget)
	}

	cwd, err := c.entryFor(ctx, r)
	if err != nil {
		return nil, err
	}

	files, err := c.childEntries(ctx, r.Volume, r.Path)
	if err != nil {
		return nil, err
	}

	resp := &OpenResponse{Cwd: cwd, Files: files}

	if req.Tree || req.Init {
		tree, err := c.ancestry(ctx, r, true)
		if err != nil {
			return nil, err
		}
		resp.Files = append(resp.Files, tree...)
	}

	if req.Init {
		resp.API = APIVersion
		resp.NetDrivers = []string{}
		if r.Volume.MaxUploadSize > 0 {
			resp.UplMaxSize = strconv.FormatInt(r.Volume.MaxUploadSize, 10)
		}
		resp.Options = c.optionsFor(r)

		// Every mounted root shows up so the client can draw all trees.
		for _, v := range c.registry.Volumes() {
			if v == r.Volume && r.IsRoot() {
				continue // already present as cwd
			}
			root, err := c.entryFor(ctx, &volume.Resolved{Volume: v, Path: "", IsDir: true})
			if err != nil {
				return nil, err
			}
			resp.Files = appendUnique(resp.Files, root)
		}
	}

	return resp, nil
}

// cmdTree lists the immediate child directories of the target.
func (c *Connector) cmdTree(ctx context.Context, req *Request) (*TreeResponse, error) {
	r, err := c.resolve(ctx, "tree", req.Target)
	if err != nil {
		return nil, err
	}
	if !r.IsDir {
		return nil, fmt.Errorf("tree target is a file: %w", volume.ErrInvalidTarget)
	}

	dirs, err := c.childDirEntries(ctx, r.Volume, r.Path)
	if err != nil {
		return nil, err
	}
	self, err := c.entryFor(ctx, r)
	if err != nil {
		return nil, err
	}
	return &TreeResponse{Tree: append([]Entry{self}, dirs...)}, nil
}

// cmdParents returns the target itself at the root, otherwise the chain
// of ancestors with the sibling directories at each level. The client
// uses it to populate tree ancestry lazily.
func (c *Connector) cmdParents(ctx context.Context, req *Request) (*TreeResponse, error) {
	r, err := c.resolve(ctx, "parents", req.Target)
	if err != nil {
		return nil, err
	}
	if !r.IsDir {
		return nil, fmt.Errorf("parents target is a file: %w", volume.ErrInvalidTarget)
	}

	if r.IsRoot() {
		self, err := c.entryFor(ctx, r)
		if err != nil {
			return nil, err
		}
		return &TreeResponse{Tree: []Entry{self}}, nil
	}

	tree, err := c.ancestry(ctx, r, true)
	if err != nil {
		return nil, err
	}
	return &TreeResponse{Tree: tree}, nil
}

// cmdLs returns the flat child name list, optionally mime-filtered.
func (c *Connector) cmdLs(ctx context.Context, req *Request) (*LsResponse, error) {
	r, err := c.resolve(ctx, "ls", req.Target)
	if err != nil {
		return nil, err
	}
	if !r.IsDir {
		return nil, fmt.Errorf("ls target is a file: %w", volume.ErrInvalidTarget)
	}

	infos, err := c.listVisible(ctx, r.Volume, r.Path)
	if err != nil {
		return nil, err
	}

	list := []string{}
	for _, info := range infos {
		mime := DirectoryMime
		if !info.Dir {
			mime = MimeOf(info.Name)
		}
		if matchesMime(mime, req.MimeFilter) {
			list = append(list, info.Name)
		}
	}
	return &LsResponse{List: list}, nil
}

// defaultLocation resolves the registry's default volume at its start
// path when that exists, else at its root.
func (c *Connector) defaultLocation(ctx context.Context) (*volume.Resolved, error) {
	v := c.registry.Default()
	if v == nil {
		return nil, fmt.Errorf("no volumes mounted: %w", volume.ErrInvalidTarget)
	}
	if v.StartPath != "" {
		isDir, err := v.Adapter.DirExists(ctx, v.StartPath)
		if err != nil {
			return nil, err
		}
		if isDir {
			return &volume.Resolved{Volume: v, Path: v.StartPath, IsDir: true}, nil
		}
	}
	return &volume.Resolved{Volume: v, Path: "", IsDir: true}, nil
}

// childEntries builds entries for every visible child of a directory.
func (c *Connector) childEntries(ctx context.Context, v *volume.Volume, rel string) ([]Entry, error) {
	infos, err := c.listVisible(ctx, v, rel)
	if err != nil {
		return nil, err
	}
	entries := []Entry{}
	for _, info := range infos {
		e, err := c.entryFromInfo(ctx, v, rel, info)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// childDirEntries is childEntries restricted to directories.
func (c *Connector) childDirEntries(ctx context.Context, v *volume.Volume, rel string) ([]Entry, error) {
	infos, err := c.listVisible(ctx, v, rel)
	if err != nil {
		return nil, err
	}
	entries := []Entry{}
	for _, info := range infos {
		if !info.Dir {
			continue
		}
		e, err := c.entryFromInfo(ctx, v, rel, info)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ancestry walks from the target's parent up to the volume root,
// collecting each ancestor and, when withSiblings is set, the visible
// sibling directories at every level.
func (c *Connector) ancestry(ctx context.Context, r *volume.Resolved, withSiblings bool) ([]Entry, error) {
	var tree []Entry

	cur := r.Parent()
	for {
		ancestor := &volume.Resolved{Volume: r.Volume, Path: cur, IsDir: true}
		e, err := c.entryFor(ctx, ancestor)
		if err != nil {
			return nil, err
		}
		tree = appendUnique(tree, e)

		if withSiblings {
			dirs, err := c.childDirEntries(ctx, r.Volume, cur)
			if err != nil {
				return nil, err
			}
			for _, d := range dirs {
				tree = appendUnique(tree, d)
			}
		}

		if cur == "" {
			break
		}
		cur = (&volume.Resolved{Volume: r.Volume, Path: cur, IsDir: true}).Parent()
	}
	return tree, nil
}

// optionsFor builds the cwd options block of an init response.
func (c *Connector) optionsFor(r *volume.Resolved) *Options {
	p := r.Volume.Alias
	if r.Path != "" {
		p += "/" + r.Path
	}
	return &Options{
		Path:          p,
		URL:           r.Volume.URL,
		TmbURL:        r.Volume.TmbURL,
		Separator:     "/",
		Disabled:      []string{},
		CopyOverwrite: 1,
	}
}

// appendUnique keeps one entry per hash; listings and ancestry walks can
// both produce the same directory.
func appendUnique(entries []Entry, e Entry) []Entry {
	for _, have := range entries {
		if have.Hash == e.Hash {
			return entries
		}
	}
	return append(entries, e)
}
