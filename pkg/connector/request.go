package connector

import "io"

// Request is one parsed protocol command. The HTTP layer fills it from
// query or form parameters; the dispatcher treats it as immutable.
type Request struct {
	// Cmd is the protocol command name ("open", "paste", ...).
	Cmd string

	// Target is the primary target token.
	Target string

	// Targets carries the token list of batch commands (rm, paste,
	// duplicate, tmb). Order is preserved through to the response.
	Targets []string

	// Dst is the destination directory token for paste.
	Dst string

	// Name is the new entry name for mkdir, mkfile and rename.
	Name string

	// Content is the file body for put.
	Content string

	// MimeFilter restricts ls output when non-empty ("image", "text/plain").
	MimeFilter string

	// Init marks an open request that should behave as init.
	Init bool

	// Tree asks open to include the ancestor tree.
	Tree bool

	// Cut turns paste into a move.
	Cut bool

	// Download forces Content-Disposition attachment on the file command.
	Download bool

	// Mode selects the resize sub-operation: "resize", "crop", "rotate".
	Mode string

	// Geometry for resize/crop/rotate.
	Width, Height, X, Y, Degrees int

	// Uploads are the files of an upload command, in client order.
	Uploads []Upload
}

// Upload is one file in an upload batch. Open is called at most once,
// and only after the whole batch passes the size pre-flight.
type Upload struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}
