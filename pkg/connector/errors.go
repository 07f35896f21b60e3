package connector

import (
	"errors"
	"fmt"

	"github.com/elfin-go/elfin/pkg/storage"
	"github.com/elfin-go/elfin/pkg/volume"
)

var (
	// ErrCommandNotFound indicates an unrecognized cmd or mode value.
	ErrCommandNotFound = errors.New("unknown command")

	// ErrMissingParam indicates a required parameter was absent. Wrap it
	// with MissingParam so the message names the command.
	ErrMissingParam = errors.New("missing parameter")

	// ErrMaxUploadSize indicates a file in an upload batch exceeds the
	// volume's limit. The whole batch is rejected before any write.
	ErrMaxUploadSize = errors.New("upload exceeds maximum size")

	// ErrAccessDenied indicates an operation against a read-only volume
	// or locked entry.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidName indicates a client-supplied entry name that is not
	// a single path segment. Names never carry separators; only resolved
	// tokens address directories.
	ErrInvalidName = errors.New("invalid name")
)

// MissingParam builds an ErrMissingParam naming the command, so the
// client can highlight the offender.
func MissingParam(cmd string) error {
	return fmt.Errorf("cmd %s: %w", cmd, ErrMissingParam)
}

// ErrorResponse is the protocol's failure payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// clientMessage maps a typed error to the elFinder client error string.
// Internal detail (backend messages, path structure) never crosses this
// boundary; it stays in the server log.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, ErrCommandNotFound):
		return "errUnknownCmd"
	case errors.Is(err, ErrMissingParam):
		return "errCmdParams"
	case errors.Is(err, ErrMaxUploadSize):
		return "errUploadFileSize"
	case errors.Is(err, ErrAccessDenied):
		return "errAccess"
	case errors.Is(err, ErrInvalidName):
		return "errInvName"
	case errors.Is(err, volume.ErrNoTarget),
		errors.Is(err, volume.ErrBadToken),
		errors.Is(err, volume.ErrUnknownVolume),
		errors.Is(err, volume.ErrInvalidTarget):
		return "errFileNotFound"
	case errors.Is(err, storage.ErrNameExhausted):
		return "errExists"
	case errors.Is(err, storage.ErrStorageIO):
		return "errPerm"
	default:
		return "errUnknown"
	}
}
