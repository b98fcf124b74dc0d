package id3win

import (
	"errors"
	"fmt"
)

// Reasons a write leaves the file untouched. WriteField reports these
// through its boolean result; WriteFieldResult exposes them in Reason.
var (
	ErrTagAbsent     = errors.New("id3win: no ID3 signature")
	ErrUnknownField  = errors.New("id3win: unknown field")
	ErrFrameNotFound = errors.New("id3win: frame not found in tag window")
	ErrNoRoom        = errors.New("id3win: value does not fit in tag window")
)

// ErrIO marks failures of the underlying file. It is the only kind
// returned as an error by ReadFile and WriteField.
var ErrIO = errors.New("id3win: i/o failure")

func ioError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}
