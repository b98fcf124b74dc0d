package id3win

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// etxByte prefixes every value written by WriteField.
const etxByte = 0x03

// WriteResult describes what WriteFieldResult did.
type WriteResult struct {
	Written bool
	// Reason is set when nothing was written: ErrUnknownField, ErrTagAbsent,
	// ErrFrameNotFound or ErrNoRoom.
	Reason  error
	Offset  int // frame offset, valid when the frame was found
	OldSize uint32
	NewSize uint32
}

// WriteField replaces the content of the frame that stores field in the
// file at path and reports whether the file was changed.
//
// The stored payload is 0x03 followed by value, NUL padded up to the
// frame's declared size. A longer payload grows the size field in place.
// Later frames are not moved, so the gap and whatever follows it is
// overwritten. Growth that would cross the end of the window (or of a
// shorter file) is refused. Only [Offset+4, Offset+8+NewSize) is ever
// written and the file length never changes.
//
// A false result with a nil error means no change was made. Errors are
// I/O failures and match ErrIO.
func WriteField(path string, field Field, value string) (bool, error) {
	res, err := WriteFieldResult(path, field, value)
	return res.Written, err
}

// WriteFieldResult is WriteField with the refusal reason exposed.
func WriteFieldResult(path string, field Field, value string) (WriteResult, error) {
	id, ok := field.FrameID()
	if !ok {
		return WriteResult{Reason: ErrUnknownField}, nil
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return WriteResult{}, ioError("open", path, err)
	}

	res, err := writeFrame(f, id, value)
	if err != nil {
		f.Close()
		return WriteResult{}, ioError("update", path, err)
	}
	if err := f.Close(); err != nil {
		return res, ioError("close", path, err)
	}
	return res, nil
}

type readerWriterAt interface {
	io.ReaderAt
	io.WriterAt
}

func writeFrame(rw readerWriterAt, id [4]byte, value string) (WriteResult, error) {
	buf := make([]byte, WindowSize)
	n, err := rw.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return WriteResult{}, err
	}
	buf = buf[:n]
	if !HasTag(buf) {
		return WriteResult{Reason: ErrTagAbsent}, nil
	}

	target, found := findFrame(buf, id)
	if !found {
		return WriteResult{Reason: ErrFrameNotFound}, nil
	}
	res := WriteResult{
		Offset:  target.Offset,
		OldSize: target.Size,
		NewSize: target.Size,
	}

	payload := encodePayload(value)
	if len(payload) > len(buf)-target.ContentOffset() {
		res.Reason = ErrNoRoom
		return res, nil
	}
	if uint32(len(payload)) > res.NewSize {
		res.NewSize = uint32(len(payload))
	}

	// size (4) + content, written in one go from Offset+4.
	span := make([]byte, 4+int(res.NewSize))
	binary.BigEndian.PutUint32(span[0:4], res.NewSize)
	copy(span[4:], payload)

	if _, err := rw.WriteAt(span, int64(target.Offset+4)); err != nil {
		return WriteResult{}, err
	}
	res.Written = true
	return res, nil
}

// findFrame returns the first complete frame with the given identifier.
func findFrame(buf []byte, id [4]byte) (Frame, bool) {
	var (
		target Frame
		found  bool
	)
	walkFrames(buf, func(f Frame) bool {
		if f.ID != id {
			return true
		}
		if !f.Truncated {
			target, found = f, true
		}
		return false
	})
	return target, found
}

func encodePayload(value string) []byte {
	payload := make([]byte, 0, 1+len(value))
	payload = append(payload, etxByte)
	return append(payload, value...)
}
