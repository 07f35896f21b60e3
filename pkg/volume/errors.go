package volume

import "errors"

var (
	// ErrBadToken indicates a target token this connector never produced.
	ErrBadToken = errors.New("malformed target token")

	// ErrUnknownVolume indicates a token whose volume id matches no
	// mounted volume.
	ErrUnknownVolume = errors.New("unknown volume")

	// ErrInvalidTarget indicates a decoded path that escapes its volume
	// root or points at nothing.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrNoTarget indicates an empty token. Callers treat it as "use the
	// default volume root" where that makes sense.
	ErrNoTarget = errors.New("no target")
)
