package connector

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/elfin-go/elfin/internal/logger"
	"github.com/elfin-go/elfin/pkg/storage"
	"github.com/elfin-go/elfin/pkg/volume"
)

// cmdDuplicate copies each target next to itself under a collision-free
// "name copy N" name. Failed items are skipped, not fatal.
func (c *Connector) cmdDuplicate(ctx context.Context, req *Request) (*AddedResponse, error) {
	if len(req.Targets) == 0 {
		return nil, MissingParam("duplicate")
	}

	added := []Entry{}
	for _, token := range req.Targets {
		r, err := c.registry.Resolve(ctx, token)
		if err != nil {
			logger.Warn("duplicate: skip %q: %v", token, err)
			continue
		}
		v := r.Volume
		if err := requireWrite(v, r.Parent()); err != nil {
			logger.Warn("duplicate: skip %q: %v", r.Path, err)
			continue
		}

		name, err := storage.UniqueName(ctx, v.Adapter, r.Parent(), path.Base(r.Path))
		if err != nil {
			// Name exhaustion is a hard, reportable failure rather
			// than a silently shorter batch.
			return nil, err
		}
		dstRel := path.Join(r.Parent(), name)

		if err := v.Adapter.Copy(ctx, r.Path, dstRel, r.IsDir); err != nil {
			logger.Warn("duplicate: %q failed: %v", r.Path, err)
			continue
		}

		e, err := c.entryFor(ctx, &volume.Resolved{Volume: v, Path: dstRel, IsDir: r.IsDir})
		if err != nil {
			return nil, err
		}
		added = append(added, e)
	}
	return &AddedResponse{Added: added}, nil
}

// cmdPaste copies (or moves, with Cut) each target into the destination
// directory. A same-named entry at the destination is deleted first.
// Cross-volume paste streams file content between adapters.
func (c *Connector) cmdPaste(ctx context.Context, req *Request) (*AddedRemovedResponse, error) {
	if len(req.Targets) == 0 {
		return nil, MissingParam("paste")
	}

	dst, err := c.resolve(ctx, "paste", req.Dst)
	if err != nil {
		return nil, err
	}
	if !dst.IsDir {
		return nil, fmt.Errorf("paste destination is a file: %w", volume.ErrInvalidTarget)
	}
	if err := requireWrite(dst.Volume, dst.Path); err != nil {
		return nil, err
	}

	resp := &AddedRemovedResponse{Added: []Entry{}, Removed: []string{}}

	for _, token := range req.Targets {
		src, err := c.registry.Resolve(ctx, token)
		if err != nil {
			logger.Warn("paste: skip %q: %v", token, err)
			continue
		}
		if req.Cut {
			if err := requireUnlocked(src.Volume, src.Path); err != nil {
				logger.Warn("paste: skip %q: %v", src.Path, err)
				continue
			}
		}

		name := path.Base(src.Path)
		dstRel := path.Join(dst.Path, name)

		// Overlapping source and destination would have the overwrite
		// pass delete the source, or a directory copy recurse into its
		// own output. Neither request has a sane outcome; skip it.
		if src.Volume == dst.Volume {
			if dstRel == src.Path {
				logger.Warn("paste: skip %q: already in the destination", src.Path)
				continue
			}
			if src.IsDir && (dst.Path == src.Path || strings.HasPrefix(dst.Path, src.Path+"/")) {
				logger.Warn("paste: skip %q: destination is inside the source", src.Path)
				continue
			}
		}

		// Overwrite policy: the destination's same-named entry goes
		// away before the copy lands.
		if err := c.removeExisting(ctx, dst.Volume, dstRel); err != nil {
			logger.Warn("paste: clear %q failed: %v", dstRel, err)
			continue
		}

		if req.Cut {
			if err := c.thumbs.Invalidate(ctx, src.Volume, src.Path, src.IsDir); err != nil {
				logger.Warn("thumbnail invalidation for %q failed: %v", src.Path, err)
			}
		}

		if err := c.transfer(ctx, src, dst.Volume, dstRel, req.Cut); err != nil {
			logger.Warn("paste: %q failed: %v", src.Path, err)
			continue
		}

		e, err := c.entryFor(ctx, &volume.Resolved{Volume: dst.Volume, Path: dstRel, IsDir: src.IsDir})
		if err != nil {
			return nil, err
		}
		resp.Added = append(resp.Added, e)
		if req.Cut {
			resp.Removed = append(resp.Removed, token)
		}
	}
	return resp, nil
}

// transfer copies or moves src to dstRel on dstVol, using the adapter's
// native operation within one volume and streaming across volumes.
func (c *Connector) transfer(ctx context.Context, src *volume.Resolved, dstVol *volume.Volume, dstRel string, cut bool) error {
	if src.Volume == dstVol {
		if cut {
			return dstVol.Adapter.Move(ctx, src.Path, dstRel, src.IsDir)
		}
		return dstVol.Adapter.Copy(ctx, src.Path, dstRel, src.IsDir)
	}

	if err := c.crossCopy(ctx, src.Volume, src.Path, dstVol, dstRel, src.IsDir); err != nil {
		return err
	}
	if !cut {
		return nil
	}
	if src.IsDir {
		return src.Volume.Adapter.RemoveDir(ctx, src.Path)
	}
	return src.Volume.Adapter.RemoveFile(ctx, src.Path)
}

// crossCopy replicates an entry between volumes by streaming each file.
func (c *Connector) crossCopy(ctx context.Context, srcVol *volume.Volume, srcRel string, dstVol *volume.Volume, dstRel string, isDir bool) error {
	if !isDir {
		r, err := srcVol.Adapter.OpenRead(ctx, srcRel)
		if err != nil {
			return err
		}
		defer r.Close()
		return dstVol.Adapter.WriteFile(ctx, dstRel, r)
	}

	if err := dstVol.Adapter.MakeDir(ctx, dstRel); err != nil {
		return err
	}
	infos, err := srcVol.Adapter.List(ctx, srcRel)
	if err != nil {
		return err
	}
	for _, info := range infos {
		if err := c.crossCopy(ctx, srcVol, path.Join(srcRel, info.Name), dstVol, path.Join(dstRel, info.Name), info.Dir); err != nil {
			return err
		}
	}
	return nil
}

// removeExisting deletes whatever sits at rel, if anything.
func (c *Connector) removeExisting(ctx context.Context, v *volume.Volume, rel string) error {
	isDir, err := v.Adapter.DirExists(ctx, rel)
	if err != nil {
		return err
	}
	if isDir {
		if err := c.thumbs.Invalidate(ctx, v, rel, true); err != nil {
			logger.Warn("thumbnail invalidation for %q failed: %v", rel, err)
		}
		return v.Adapter.RemoveDir(ctx, rel)
	}

	isFile, err := v.Adapter.FileExists(ctx, rel)
	if err != nil {
		return err
	}
	if !isFile {
		return nil
	}
	if err := c.thumbs.Invalidate(ctx, v, rel, false); err != nil {
		logger.Warn("thumbnail invalidation for %q failed: %v", rel, err)
	}
	return v.Adapter.RemoveFile(ctx, rel)
}
