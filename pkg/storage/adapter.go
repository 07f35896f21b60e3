package storage

import (
	"context"
	"io"
	"time"
)

// Adapter provides a uniform view over one mounted storage root.
//
// This interface abstracts away the underlying storage mechanism (local
// filesystem, S3-compatible blob storage, memory) and presents the exact
// capability set the connector's command layer needs. One Adapter instance
// serves one volume root; all paths passed to it are slash-separated paths
// relative to that root, with "" denoting the root itself.
//
// Path Trust:
// Adapters trust the paths they are given. Token decoding and root-escape
// validation happen in pkg/volume before an adapter is ever called; the
// adapter is not an independent security boundary.
//
// Error Conventions:
//   - "Not found" is a boolean result of the existence checks, never an
//     error. Callers branch on the boolean instead of unwrapping errors.
//   - Genuine backend failures (permissions, network, disk full) wrap
//     ErrStorageIO so the command layer can report them generically
//     without leaking backend detail to the client.
//
// Directory Semantics:
// Blob backends have no real directories. Implementations simulate them
// (marker objects, key prefixes) but must present the same observable
// behavior as the filesystem adapter: a created directory exists and lists
// empty, a removed directory takes its subtree with it.
//
// Thread Safety:
// Implementations must be safe for concurrent use. Concurrent writes to
// the same path are last-write-wins; the connector relies on idempotent
// operations rather than locking.
type Adapter interface {
	// Kind identifies the backend family ("local", "s3", "memory") and
	// selects the volume id prefix at mount time.
	Kind() string

	// DirExists reports whether path exists and is a directory.
	DirExists(ctx context.Context, path string) (bool, error)

	// MakeDir creates the directory at path, creating missing ancestors.
	MakeDir(ctx context.Context, path string) error

	// RemoveDir deletes the directory at path and everything under it.
	RemoveDir(ctx context.Context, path string) error

	// List returns the immediate children of the directory at path.
	// Order is backend-defined; callers sort when presentation demands it.
	List(ctx context.Context, path string) ([]Info, error)

	// DirMTime returns the directory's last-modified timestamp. Backends
	// without directory metadata return a zero time and no error.
	DirMTime(ctx context.Context, path string) (time.Time, error)

	// FileExists reports whether path exists and is a regular file.
	FileExists(ctx context.Context, path string) (bool, error)

	// FileSize returns the file's length in bytes.
	FileSize(ctx context.Context, path string) (int64, error)

	// FileMTime returns the file's last-modified timestamp.
	FileMTime(ctx context.Context, path string) (time.Time, error)

	// OpenRead returns a reader over the file's content. The caller must
	// close it.
	OpenRead(ctx context.Context, path string) (io.ReadCloser, error)

	// CreateFile creates an empty file at path.
	CreateFile(ctx context.Context, path string) error

	// WriteFile replaces the file's content with the bytes read from r,
	// creating the file and missing ancestor directories as needed.
	WriteFile(ctx context.Context, path string, r io.Reader) error

	// RemoveFile deletes the file at path.
	RemoveFile(ctx context.Context, path string) error

	// Copy duplicates src at dst. When isDir is true the whole subtree is
	// copied recursively. Destination ancestors are created as needed; an
	// existing destination is overwritten.
	Copy(ctx context.Context, src, dst string, isDir bool) error

	// Move relocates src to dst. Backends without an atomic rename
	// implement it as copy-then-delete-source.
	Move(ctx context.Context, src, dst string, isDir bool) error
}

// Info describes one directory entry as returned by Adapter.List.
type Info struct {
	// Name is the entry's base name.
	Name string

	// Dir is true for directories.
	Dir bool

	// Size is the length in bytes; 0 for directories.
	Size int64

	// MTime is the last-modified timestamp; may be zero on blob backends
	// for simulated directories.
	MTime time.Time

	// Hidden marks entries the client should not see. All backends apply
	// the dot-name convention; the local adapter has nothing further to
	// consult on unix.
	Hidden bool
}
