package connector

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/elfin-go/elfin/internal/logger"
	"github.com/elfin-go/elfin/pkg/volume"
)

// cmdDim reports an image's pixel dimensions.
func (c *Connector) cmdDim(ctx context.Context, req *Request) (*DimResponse, error) {
	r, err := c.resolve(ctx, "dim", req.Target)
	if err != nil {
		return nil, err
	}
	if r.IsDir || c.editor == nil || !c.editor.CanDecode(path.Ext(r.Path)) {
		return nil, fmt.Errorf("dim target is not an image: %w", volume.ErrInvalidTarget)
	}

	src, err := r.Volume.Adapter.OpenRead(ctx, r.Path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	w, h, err := c.editor.Dimensions(src, path.Ext(r.Path))
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", r.Path, err)
	}
	return &DimResponse{Dim: fmt.Sprintf("%dx%d", w, h)}, nil
}

// cmdResize transforms an image in place according to Mode: scale to a
// new size, cut a rectangle, or rotate. The thumbnail cache entry is
// dropped before the pixels change.
func (c *Connector) cmdResize(ctx context.Context, req *Request) (*ChangedResponse, error) {
	r, err := c.resolve(ctx, "resize", req.Target)
	if err != nil {
		return nil, err
	}
	if r.IsDir || c.editor == nil || !c.editor.CanDecode(path.Ext(r.Path)) {
		return nil, fmt.Errorf("resize target is not an image: %w", volume.ErrInvalidTarget)
	}
	if err := requireWrite(r.Volume, r.Path); err != nil {
		return nil, err
	}

	src, err := r.Volume.Adapter.OpenRead(ctx, r.Path)
	if err != nil {
		return nil, err
	}

	ext := path.Ext(r.Path)
	var out []byte
	switch req.Mode {
	case "resize":
		if req.Width <= 0 || req.Height <= 0 {
			src.Close()
			return nil, MissingParam("resize")
		}
		out, err = c.editor.Resize(src, ext, req.Width, req.Height)
	case "crop":
		if req.Width <= 0 || req.Height <= 0 {
			src.Close()
			return nil, MissingParam("resize")
		}
		out, err = c.editor.Crop(src, ext, req.X, req.Y, req.Width, req.Height)
	case "rotate":
		out, err = c.editor.Rotate(src, ext, req.Degrees)
	default:
		src.Close()
		return nil, fmt.Errorf("resize mode %q: %w", req.Mode, ErrCommandNotFound)
	}
	src.Close()
	if err != nil {
		return nil, fmt.Errorf("transform %q: %w", r.Path, err)
	}

	if err := c.thumbs.Invalidate(ctx, r.Volume, r.Path, false); err != nil {
		logger.Warn("thumbnail invalidation for %q failed: %v", r.Path, err)
	}
	if err := r.Volume.Adapter.WriteFile(ctx, r.Path, bytes.NewReader(out)); err != nil {
		return nil, err
	}

	changed, err := c.entryFor(ctx, r)
	if err != nil {
		return nil, err
	}
	return &ChangedResponse{Changed: []Entry{changed}}, nil
}

// cmdTmb generates (or finds) the thumbnail for each target and returns
// the token map. Failed items are left out rather than failing the
// batch; the client just keeps the generic icon.
func (c *Connector) cmdTmb(ctx context.Context, req *Request) (*TmbResponse, error) {
	if len(req.Targets) == 0 {
		return nil, MissingParam("tmb")
	}

	images := make(map[string]string, len(req.Targets))
	for _, token := range req.Targets {
		r, err := c.registry.Resolve(ctx, token)
		if err != nil {
			logger.Warn("tmb: skip %q: %v", token, err)
			continue
		}
		if r.IsDir || !c.thumbs.CanThumbnail(r.Volume, r.Path) {
			continue
		}

		cachePath, err := c.thumbs.Ensure(ctx, r.Volume, r.Path)
		if err != nil {
			logger.Warn("tmb: %q failed: %v", r.Path, err)
			continue
		}
		images[token] = volume.Token(r.Volume, cachePath)
	}
	return &TmbResponse{Images: images}, nil
}
