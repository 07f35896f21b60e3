package volume

import (
	"github.com/elfin-go/elfin/pkg/storage"
)

// TmbDir is the reserved thumbnail cache subtree under every volume root.
// The leading dot keeps it hidden on both backends.
const TmbDir = ".tmb"

// DefaultTmbSize is the thumbnail edge length in pixels when a volume
// does not configure one.
const DefaultTmbSize = 48

// Access is the effective read/write/locked flag set for one entry.
type Access struct {
	Read   bool
	Write  bool
	Locked bool
}

// AccessOverride is a per-path exception to a volume's default access
// policy. It applies to the named path and its descendants until a more
// specific override is found on the walk back up.
//
// A nil flag inherits, so an override can lock a folder without touching
// its read/write policy. This also subsumes the legacy "locked folders"
// name list: a name-only override with just Locked set.
type AccessOverride struct {
	// Path matches either a full volume-relative path or a bare entry
	// name at any depth.
	Path string

	Read   *bool
	Write  *bool
	Locked *bool
}

// Volume is one mounted storage root exposed to the client as a tree.
//
// Volumes are configured before the first request and never mutated
// afterwards, which is what makes the registry safe for unsynchronized
// concurrent reads.
type Volume struct {
	// id is assigned once at mount time, e.g. "v1_" or "a1_".
	id string

	// Alias is the display name of the volume root.
	Alias string

	// Adapter is the storage backend serving this volume.
	Adapter storage.Adapter

	// URL, when set, lets the client fetch file content directly.
	// When empty, downloads are proxied through the connector.
	URL string

	// TmbURL, when set, enables thumbnails and points the client at the
	// thumbnail endpoint.
	TmbURL string

	// ReadOnly blocks every mutation on the volume.
	ReadOnly bool

	// Locked blocks delete/rename/move anywhere under the volume.
	Locked bool

	// ShowOnly refuses raw downloads while leaving listing intact.
	ShowOnly bool

	// MaxUploadSize caps single uploaded files in bytes; 0 means no cap.
	MaxUploadSize int64

	// UploadOverwrite lets uploads replace same-named files instead of
	// applying the collision policy.
	UploadOverwrite bool

	// StartPath is the subdirectory shown on the client's first open.
	StartPath string

	// TmbSize is the thumbnail edge length; DefaultTmbSize when 0.
	TmbSize int

	// DefaultAccess applies when no override matches.
	DefaultAccess Access

	// Overrides are per-path policy exceptions, consulted nearest-first.
	Overrides []AccessOverride
}

// ID returns the volume id assigned at mount time, empty before mounting.
func (v *Volume) ID() string { return v.id }

// ThumbSize returns the configured thumbnail edge length or the default.
func (v *Volume) ThumbSize() int {
	if v.TmbSize > 0 {
		return v.TmbSize
	}
	return DefaultTmbSize
}
