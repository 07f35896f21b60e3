package connector

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"

	"github.com/elfin-go/elfin/internal/logger"
	"github.com/elfin-go/elfin/pkg/storage"
	"github.com/elfin-go/elfin/pkg/volume"
)

// cmdUpload writes the batch's files into the target directory.
//
// The size pre-flight runs over the whole batch first: if any file
// exceeds the volume's limit, nothing at all is written. After that each
// file is independent; a failed file is logged and skipped.
//
// When a name collides and the volume allows overwriting, the new
// content lands under a temporary name first and only replaces the
// original after the write fully succeeds, so a failed upload never
// destroys the file it was replacing. With overwriting disallowed the
// collision policy picks a fresh "name copy N" name instead.
func (c *Connector) cmdUpload(ctx context.Context, req *Request) (*AddedResponse, error) {
	if len(req.Uploads) == 0 {
		return nil, MissingParam("upload")
	}

	r, err := c.resolve(ctx, "upload", req.Target)
	if err != nil {
		return nil, err
	}
	if !r.IsDir {
		return nil, fmt.Errorf("upload target is a file: %w", volume.ErrInvalidTarget)
	}
	v := r.Volume
	if err := requireWrite(v, r.Path); err != nil {
		return nil, err
	}

	if v.MaxUploadSize > 0 {
		for _, up := range req.Uploads {
			if up.Size > v.MaxUploadSize {
				return nil, fmt.Errorf("%q is %d bytes, limit %d: %w",
					up.Name, up.Size, v.MaxUploadSize, ErrMaxUploadSize)
			}
		}
	}

	added := []Entry{}
	for _, up := range req.Uploads {
		name := path.Base(up.Name)
		if err := validateName(name); err != nil {
			logger.Warn("upload: skip unusable name %q", up.Name)
			continue
		}

		rel, err := c.storeUpload(ctx, v, r.Path, name, up)
		if err != nil {
			logger.Warn("upload: %q failed: %v", name, err)
			continue
		}

		e, err := c.entryFor(ctx, &volume.Resolved{Volume: v, Path: rel, IsDir: false})
		if err != nil {
			return nil, err
		}
		added = append(added, e)
	}
	return &AddedResponse{Added: added}, nil
}

// storeUpload writes one uploaded file and returns its final path.
func (c *Connector) storeUpload(ctx context.Context, v *volume.Volume, dir, name string, up Upload) (string, error) {
	rel := path.Join(dir, name)
	taken, err := existsAny(ctx, v, rel)
	if err != nil {
		return "", err
	}

	if !taken {
		return rel, c.writeUpload(ctx, v, rel, up)
	}

	if !v.UploadOverwrite {
		fresh, err := storage.UniqueName(ctx, v.Adapter, dir, name)
		if err != nil {
			return "", err
		}
		rel = path.Join(dir, fresh)
		return rel, c.writeUpload(ctx, v, rel, up)
	}

	// Overwrite via temp-and-swap. The original survives any failure up
	// to the final rename.
	tmpRel := path.Join(dir, ".upload-"+uuid.NewString())
	if err := c.writeUpload(ctx, v, tmpRel, up); err != nil {
		if rmErr := v.Adapter.RemoveFile(ctx, tmpRel); rmErr != nil {
			logger.Warn("upload: temp cleanup of %q failed: %v", tmpRel, rmErr)
		}
		return "", err
	}

	if err := c.thumbs.Invalidate(ctx, v, rel, false); err != nil {
		logger.Warn("thumbnail invalidation for %q failed: %v", rel, err)
	}
	if err := v.Adapter.RemoveFile(ctx, rel); err != nil {
		v.Adapter.RemoveFile(ctx, tmpRel)
		return "", err
	}
	if err := v.Adapter.Move(ctx, tmpRel, rel, false); err != nil {
		return "", err
	}
	return rel, nil
}

func (c *Connector) writeUpload(ctx context.Context, v *volume.Volume, rel string, up Upload) error {
	body, err := up.Open()
	if err != nil {
		return fmt.Errorf("open upload %q: %w", up.Name, err)
	}
	defer body.Close()
	return v.Adapter.WriteFile(ctx, rel, body)
}
