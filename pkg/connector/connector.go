// Package connector implements the elFinder command protocol over
// mounted volumes.
//
// Each command is a pure function of its resolved targets and
// parameters; the connector keeps no per-request state. Every dispatch
// returns either the command's success payload or a well-formed
// ErrorResponse — raw faults never reach the transport layer.
package connector

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/elfin-go/elfin/internal/logger"
	"github.com/elfin-go/elfin/pkg/metrics"
	"github.com/elfin-go/elfin/pkg/picture"
	"github.com/elfin-go/elfin/pkg/storage"
	"github.com/elfin-go/elfin/pkg/thumb"
	"github.com/elfin-go/elfin/pkg/volume"
)

// APIVersion is the protocol version reported to the client on init.
const APIVersion = 2.1

type Connector struct {
	registry *volume.Registry
	thumbs   *thumb.Manager
	editor   picture.Editor
	metrics  *metrics.ConnectorMetrics
}

// New creates a connector over a configured registry. editor may be nil
// to disable image commands; m may be nil to disable metrics.
func New(registry *volume.Registry, editor picture.Editor, m *metrics.ConnectorMetrics) *Connector {
	return &Connector{
		registry: registry,
		thumbs:   thumb.NewManager(editor),
		editor:   editor,
		metrics:  m,
	}
}

// Registry exposes the volume registry, e.g. for the download endpoint.
func (c *Connector) Registry() *volume.Registry { return c.registry }

// Thumbs exposes the thumbnail manager for the thumbnail endpoint.
func (c *Connector) Thumbs() *thumb.Manager { return c.thumbs }

// Dispatch runs one command and always returns a JSON-encodable payload.
// Typed failures become the protocol's {"error": ...} shape here; the
// full error goes to the server log only.
func (c *Connector) Dispatch(ctx context.Context, req *Request) any {
	start := time.Now()
	resp, err := c.dispatch(ctx, req)
	c.metrics.Observe(req.Cmd, err, time.Since(start))

	if err != nil {
		logger.Warn("cmd %s failed: %v", req.Cmd, err)
		return ErrorResponse{Error: clientMessage(err)}
	}
	return resp
}

func (c *Connector) dispatch(ctx context.Context, req *Request) (any, error) {
	switch req.Cmd {
	case "open":
		return c.cmdOpen(ctx, req)
	case "init":
		// Older clients send init as its own command rather than
		// open with the init flag.
		initReq := *req
		initReq.Init = true
		return c.cmdOpen(ctx, &initReq)
	case "tree":
		return c.cmdTree(ctx, req)
	case "parents":
		return c.cmdParents(ctx, req)
	case "ls":
		return c.cmdLs(ctx, req)
	case "mkdir":
		return c.cmdMkdir(ctx, req)
	case "mkfile":
		return c.cmdMkfile(ctx, req)
	case "rename":
		return c.cmdRename(ctx, req)
	case "rm":
		return c.cmdRm(ctx, req)
	case "duplicate":
		return c.cmdDuplicate(ctx, req)
	case "paste":
		return c.cmdPaste(ctx, req)
	case "upload":
		return c.cmdUpload(ctx, req)
	case "get":
		return c.cmdGet(ctx, req)
	case "put":
		return c.cmdPut(ctx, req)
	case "dim":
		return c.cmdDim(ctx, req)
	case "resize":
		return c.cmdResize(ctx, req)
	case "tmb":
		return c.cmdTmb(ctx, req)
	default:
		return nil, fmt.Errorf("%q: %w", req.Cmd, ErrCommandNotFound)
	}
}

// resolve wraps registry resolution for commands that require a target.
func (c *Connector) resolve(ctx context.Context, cmd, token string) (*volume.Resolved, error) {
	if token == "" {
		return nil, MissingParam(cmd)
	}
	return c.registry.Resolve(ctx, token)
}

// entryFor builds the wire entry for a resolved location.
func (c *Connector) entryFor(ctx context.Context, r *volume.Resolved) (Entry, error) {
	v := r.Volume
	acc := volume.EffectiveAccess(v, r.Path)

	e := Entry{
		Name:   r.Name(),
		Hash:   volume.Token(v, r.Path),
		Read:   boolFlag(acc.Read),
		Write:  boolFlag(acc.Write),
		Locked: boolFlag(acc.Locked),
	}

	if r.IsDir {
		e.Mime = DirectoryMime
		mtime, err := v.Adapter.DirMTime(ctx, r.Path)
		if err != nil {
			return Entry{}, err
		}
		e.Ts = unixOrZero(mtime)
		if r.IsRoot() {
			e.VolumeID = v.ID()
		} else {
			e.PHash = volume.Token(v, r.Parent())
		}
		hasDirs, err := c.hasVisibleSubdirs(ctx, v, r.Path)
		if err != nil {
			return Entry{}, err
		}
		e.Dirs = boolFlag(hasDirs)
		return e, nil
	}

	e.Mime = MimeOf(r.Path)
	e.PHash = volume.Token(v, r.Parent())

	size, err := v.Adapter.FileSize(ctx, r.Path)
	if err != nil {
		return Entry{}, err
	}
	e.Size = size

	mtime, err := v.Adapter.FileMTime(ctx, r.Path)
	if err != nil {
		return Entry{}, err
	}
	e.Ts = unixOrZero(mtime)

	if err := c.decorateImage(ctx, v, r.Path, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// entryFromInfo builds a wire entry for a listed child without another
// round of existence probing.
func (c *Connector) entryFromInfo(ctx context.Context, v *volume.Volume, dir string, info storage.Info) (Entry, error) {
	rel := path.Join(dir, info.Name)
	acc := volume.EffectiveAccess(v, rel)

	e := Entry{
		Name:   info.Name,
		Hash:   volume.Token(v, rel),
		PHash:  volume.Token(v, dir),
		Ts:     unixOrZero(info.MTime),
		Read:   boolFlag(acc.Read),
		Write:  boolFlag(acc.Write),
		Locked: boolFlag(acc.Locked),
	}

	if info.Dir {
		e.Mime = DirectoryMime
		hasDirs, err := c.hasVisibleSubdirs(ctx, v, rel)
		if err != nil {
			return Entry{}, err
		}
		e.Dirs = boolFlag(hasDirs)
		return e, nil
	}

	e.Mime = MimeOf(info.Name)
	e.Size = info.Size
	if err := c.decorateImage(ctx, v, rel, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// decorateImage fills tmb and dim on thumbnailable files: the cached
// thumbnail's token when one exists, "1" when the client may request
// generation.
func (c *Connector) decorateImage(ctx context.Context, v *volume.Volume, rel string, e *Entry) error {
	if !c.thumbs.CanThumbnail(v, rel) {
		return nil
	}

	cachePath, err := c.thumbs.CachePath(ctx, v, rel)
	if err != nil {
		return err
	}
	cached, err := v.Adapter.FileExists(ctx, cachePath)
	if err != nil {
		return err
	}
	if cached {
		e.Tmb = volume.Token(v, cachePath)
	} else {
		e.Tmb = "1"
	}

	if c.editor != nil {
		src, err := v.Adapter.OpenRead(ctx, rel)
		if err != nil {
			return err
		}
		w, h, dimErr := c.editor.Dimensions(src, path.Ext(rel))
		src.Close()
		// An undecodable image is not worth failing a listing over.
		if dimErr == nil {
			e.Dim = fmt.Sprintf("%dx%d", w, h)
		}
	}
	return nil
}

// hasVisibleSubdirs reports whether a directory has non-hidden child
// directories, feeding the tree panel's expand arrow.
func (c *Connector) hasVisibleSubdirs(ctx context.Context, v *volume.Volume, rel string) (bool, error) {
	infos, err := v.Adapter.List(ctx, rel)
	if err != nil {
		return false, err
	}
	for _, info := range infos {
		if info.Dir && !info.Hidden {
			return true, nil
		}
	}
	return false, nil
}

// listVisible lists a directory with hidden entries filtered out.
func (c *Connector) listVisible(ctx context.Context, v *volume.Volume, rel string) ([]storage.Info, error) {
	infos, err := v.Adapter.List(ctx, rel)
	if err != nil {
		return nil, err
	}
	visible := infos[:0]
	for _, info := range infos {
		if !info.Hidden {
			visible = append(visible, info)
		}
	}
	return visible, nil
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
