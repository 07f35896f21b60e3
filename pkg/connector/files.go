package connector

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/elfin-go/elfin/internal/logger"
	"github.com/elfin-go/elfin/pkg/volume"
)

// validateName rejects client-supplied entry names that are not a
// single path segment. Tokens are the only way to address a directory;
// a name must never move the operation out of its resolved parent.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("name %q: %w", name, ErrInvalidName)
	}
	return nil
}

// requireWrite rejects mutations on paths whose effective policy denies
// writing. The dispatcher applies this before every mutating command;
// adapters never see the request if it fails.
func requireWrite(v *volume.Volume, rel string) error {
	if !volume.EffectiveAccess(v, rel).Write {
		return fmt.Errorf("path %q is not writable: %w", rel, ErrAccessDenied)
	}
	return nil
}

// requireUnlocked rejects delete/rename/move of locked entries.
func requireUnlocked(v *volume.Volume, rel string) error {
	if volume.EffectiveAccess(v, rel).Locked {
		return fmt.Errorf("path %q is locked: %w", rel, ErrAccessDenied)
	}
	return nil
}

// cmdMkdir creates a directory under the target and returns it as added.
func (c *Connector) cmdMkdir(ctx context.Context, req *Request) (*AddedResponse, error) {
	return c.makeEntry(ctx, req, true)
}

// cmdMkfile creates an empty file under the target.
func (c *Connector) cmdMkfile(ctx context.Context, req *Request) (*AddedResponse, error) {
	return c.makeEntry(ctx, req, false)
}

func (c *Connector) makeEntry(ctx context.Context, req *Request, dir bool) (*AddedResponse, error) {
	cmd := "mkfile"
	if dir {
		cmd = "mkdir"
	}
	if req.Name == "" {
		return nil, MissingParam(cmd)
	}
	if err := validateName(req.Name); err != nil {
		return nil, err
	}

	r, err := c.resolve(ctx, cmd, req.Target)
	if err != nil {
		return nil, err
	}
	if !r.IsDir {
		return nil, fmt.Errorf("%s target is a file: %w", cmd, volume.ErrInvalidTarget)
	}
	if err := requireWrite(r.Volume, r.Path); err != nil {
		return nil, err
	}

	rel := path.Join(r.Path, req.Name)
	taken, err := existsAny(ctx, r.Volume, rel)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%q already exists: %w", req.Name, volume.ErrInvalidTarget)
	}

	if dir {
		err = r.Volume.Adapter.MakeDir(ctx, rel)
	} else {
		err = r.Volume.Adapter.CreateFile(ctx, rel)
	}
	if err != nil {
		return nil, err
	}

	added, err := c.entryFor(ctx, &volume.Resolved{Volume: r.Volume, Path: rel, IsDir: dir})
	if err != nil {
		return nil, err
	}
	return &AddedResponse{Added: []Entry{added}}, nil
}

// cmdRename moves an entry to a new name in place. The response reports
// the old token as removed and the renamed entry as added; tokens are
// not stable across a rename.
func (c *Connector) cmdRename(ctx context.Context, req *Request) (*AddedRemovedResponse, error) {
	if req.Name == "" {
		return nil, MissingParam("rename")
	}
	if err := validateName(req.Name); err != nil {
		return nil, err
	}

	r, err := c.resolve(ctx, "rename", req.Target)
	if err != nil {
		return nil, err
	}
	v := r.Volume
	if err := requireWrite(v, r.Parent()); err != nil {
		return nil, err
	}
	if err := requireUnlocked(v, r.Path); err != nil {
		return nil, err
	}

	newRel := path.Join(r.Parent(), req.Name)
	taken, err := existsAny(ctx, v, newRel)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%q already exists: %w", req.Name, volume.ErrInvalidTarget)
	}

	// The cache entry is keyed by the old name; drop it before the move.
	if err := c.thumbs.Invalidate(ctx, v, r.Path, r.IsDir); err != nil {
		logger.Warn("thumbnail invalidation for %q failed: %v", r.Path, err)
	}

	if err := v.Adapter.Move(ctx, r.Path, newRel, r.IsDir); err != nil {
		return nil, err
	}

	added, err := c.entryFor(ctx, &volume.Resolved{Volume: v, Path: newRel, IsDir: r.IsDir})
	if err != nil {
		return nil, err
	}
	return &AddedRemovedResponse{
		Added:   []Entry{added},
		Removed: []string{volume.Token(v, r.Path)},
	}, nil
}

// cmdRm deletes each target in request order. A failed item does not
// stop the batch; the response lists exactly what was removed.
func (c *Connector) cmdRm(ctx context.Context, req *Request) (*RemovedResponse, error) {
	if len(req.Targets) == 0 {
		return nil, MissingParam("rm")
	}

	removed := []string{}
	for _, token := range req.Targets {
		r, err := c.registry.Resolve(ctx, token)
		if err != nil {
			logger.Warn("rm: skip %q: %v", token, err)
			continue
		}
		v := r.Volume
		if err := requireWrite(v, r.Parent()); err != nil {
			logger.Warn("rm: skip %q: %v", r.Path, err)
			continue
		}
		if err := requireUnlocked(v, r.Path); err != nil {
			logger.Warn("rm: skip %q: %v", r.Path, err)
			continue
		}

		if err := c.thumbs.Invalidate(ctx, v, r.Path, r.IsDir); err != nil {
			logger.Warn("thumbnail invalidation for %q failed: %v", r.Path, err)
		}

		if r.IsDir {
			err = v.Adapter.RemoveDir(ctx, r.Path)
		} else {
			err = v.Adapter.RemoveFile(ctx, r.Path)
		}
		if err != nil {
			logger.Warn("rm: %q failed: %v", r.Path, err)
			continue
		}
		removed = append(removed, token)
	}
	return &RemovedResponse{Removed: removed}, nil
}

// existsAny reports whether rel exists as a file or directory on v.
func existsAny(ctx context.Context, v *volume.Volume, rel string) (bool, error) {
	isDir, err := v.Adapter.DirExists(ctx, rel)
	if err != nil {
		return false, err
	}
	if isDir {
		return true, nil
	}
	return v.Adapter.FileExists(ctx, rel)
}
