package connector

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/elfin-go/elfin/pkg/volume"
)

// cmdGet returns a file's text content.
func (c *Connector) cmdGet(ctx context.Context, req *Request) (*ContentResponse, error) {
	r, err := c.resolve(ctx, "get", req.Target)
	if err != nil {
		return nil, err
	}
	if r.IsDir {
		return nil, fmt.Errorf("get target is a directory: %w", volume.ErrInvalidTarget)
	}
	if !volume.EffectiveAccess(r.Volume, r.Path).Read {
		return nil, fmt.Errorf("path %q is not readable: %w", r.Path, ErrAccessDenied)
	}

	body, err := r.Volume.Adapter.OpenRead(ctx, r.Path)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	return &ContentResponse{Content: string(data)}, nil
}

// cmdPut overwrites a file's content and returns the changed entry.
func (c *Connector) cmdPut(ctx context.Context, req *Request) (*ChangedResponse, error) {
	r, err := c.resolve(ctx, "put", req.Target)
	if err != nil {
		return nil, err
	}
	if r.IsDir {
		return nil, fmt.Errorf("put target is a directory: %w", volume.ErrInvalidTarget)
	}
	if err := requireWrite(r.Volume, r.Path); err != nil {
		return nil, err
	}

	if err := r.Volume.Adapter.WriteFile(ctx, r.Path, strings.NewReader(req.Content)); err != nil {
		return nil, err
	}

	changed, err := c.entryFor(ctx, r)
	if err != nil {
		return nil, err
	}
	return &ChangedResponse{Changed: []Entry{changed}}, nil
}

// FileStream is a raw-content handle for the download and thumbnail
// endpoints. The caller owns Body and must close it.
type FileStream struct {
	Name string
	Mime string
	Size int64
	Body io.ReadCloser
}

// OpenFile resolves a target for raw streaming. Directories and
// show-only volumes are refused; the HTTP layer maps ErrAccessDenied to
// 403 and resolution failures to 404.
func (c *Connector) OpenFile(ctx context.Context, token string) (*FileStream, error) {
	r, err := c.registry.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if r.IsDir {
		return nil, fmt.Errorf("cannot download a directory: %w", ErrAccessDenied)
	}
	if r.Volume.ShowOnly {
		return nil, fmt.Errorf("volume %s is show-only: %w", r.Volume.ID(), ErrAccessDenied)
	}
	if !volume.EffectiveAccess(r.Volume, r.Path).Read {
		return nil, fmt.Errorf("path %q is not readable: %w", r.Path, ErrAccessDenied)
	}

	size, err := r.Volume.Adapter.FileSize(ctx, r.Path)
	if err != nil {
		return nil, err
	}
	body, err := r.Volume.Adapter.OpenRead(ctx, r.Path)
	if err != nil {
		return nil, err
	}
	return &FileStream{
		Name: r.Name(),
		Mime: MimeOf(r.Path),
		Size: size,
		Body: body,
	}, nil
}

// OpenThumbnail resolves a thumbnail token (produced by the tmb command)
// and streams the cached image. Tokens pointing outside the thumbnail
// subtree are refused: this endpoint must not become a generic download
// path.
func (c *Connector) OpenThumbnail(ctx context.Context, token string) (*FileStream, error) {
	r, err := c.registry.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if r.IsDir || (r.Path != volume.TmbDir && !strings.HasPrefix(r.Path, volume.TmbDir+"/")) {
		return nil, fmt.Errorf("not a thumbnail token: %w", ErrAccessDenied)
	}

	size, err := r.Volume.Adapter.FileSize(ctx, r.Path)
	if err != nil {
		return nil, err
	}
	body, err := r.Volume.Adapter.OpenRead(ctx, r.Path)
	if err != nil {
		return nil, err
	}
	return &FileStream{
		Name: r.Name(),
		Mime: MimeOf(r.Path),
		Size: size,
		Body: body,
	}, nil
}
