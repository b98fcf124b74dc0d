package id3win

import (
	"errors"
	"io"
	"os"
	"unicode/utf8"
)

// Read parses the tag window at the start of buf.
//
// It returns an empty map when buf carries no tag. Unrecognized, truncated
// and non UTF-8 frames are skipped; when a field appears more than once the
// first frame wins. buf is never modified and Read never fails.
func Read(buf []byte) Fields {
	fields := make(Fields)
	if !HasTag(buf) {
		return fields
	}
	walkFrames(buf, func(f Frame) bool {
		if f.Truncated {
			return false
		}
		field, ok := FieldForID(f.ID)
		if !ok {
			return true
		}
		if _, seen := fields[field]; seen {
			return true
		}
		if !utf8.Valid(f.Content) {
			return true
		}
		fields[field] = Clean(string(f.Content))
		return true
	})
	return fields
}

// ReadFrom reads at most WindowSize bytes from r and parses them.
// Short input is not an error.
func ReadFrom(r io.Reader) (Fields, error) {
	buf, err := readWindow(r)
	if err != nil {
		return nil, err
	}
	return Read(buf), nil
}

// ReadFile parses the tag window of the file at path.
// Errors are I/O failures and match ErrIO.
func ReadFile(path string) (Fields, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	defer f.Close()

	buf, err := readWindow(f)
	if err != nil {
		return nil, ioError("read", path, err)
	}
	return Read(buf), nil
}

// ScanFile returns the header and frames of the file at path.
func ScanFile(path string) (Header, []Frame, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, false, ioError("open", path, err)
	}
	defer f.Close()

	buf, err := readWindow(f)
	if err != nil {
		return Header{}, nil, false, ioError("read", path, err)
	}
	h, frames, ok := Scan(buf)
	return h, frames, ok, nil
}

func readWindow(r io.Reader) ([]byte, error) {
	buf := make([]byte, WindowSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:n], nil
}
