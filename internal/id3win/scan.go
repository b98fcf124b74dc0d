package id3win

import "encoding/binary"

// Layout constants.
const (
	Magic           = "ID3"
	WindowSize      = 128 // bytes of the file that are ever scanned
	HeaderSize      = 10  // signature + version/flags + declared size
	FrameHeaderSize = 8   // id + big-endian content size
	FrameGapSize    = 2   // opaque bytes after the content, never written
)

// Header is the 10-byte tag header.
type Header struct {
	// Version holds the major, minor and flags bytes. They are not interpreted.
	Version [3]byte
	// DeclaredSize is the synchsafe tag size stored in the header.
	// The scan is bounded by WindowSize instead.
	DeclaredSize uint32
}

// Frame is one id+size+content record inside the window.
type Frame struct {
	ID     [4]byte
	Offset int // offset of the frame identifier from the start of the file
	Size   uint32
	// Gap holds the 2 bytes that follow the content. Bytes that fall past
	// the window are left zero.
	Gap [2]byte
	// Content is nil when the frame is truncated by the window.
	Content   []byte
	Truncated bool
}

// ContentOffset returns the offset of the first content byte.
func (f Frame) ContentOffset() int {
	return f.Offset + FrameHeaderSize
}

// HasTag reports whether buf starts with the ID3 signature.
func HasTag(buf []byte) bool {
	return len(buf) >= len(Magic) && string(buf[:len(Magic)]) == Magic
}

// Scan returns the header and every frame header that fits in the window.
// The last frame may be marked Truncated. ok is false when buf carries no tag.
func Scan(buf []byte) (h Header, frames []Frame, ok bool) {
	if !HasTag(buf) {
		return Header{}, nil, false
	}
	if len(buf) >= HeaderSize {
		copy(h.Version[:], buf[3:6])
		h.DeclaredSize = synchsafe(buf[6:10])
	}
	walkFrames(buf, func(f Frame) bool {
		frames = append(frames, f)
		return true
	})
	return h, frames, true
}

// walkFrames calls fn for each frame in the window until fn returns false.
// The caller must have checked the signature. The next frame starts at
// Offset + FrameHeaderSize + Size + FrameGapSize. A frame whose header does
// not fit ends the walk. A frame whose content does not fit is reported
// with Truncated set and ends the walk.
func walkFrames(buf []byte, fn func(Frame) bool) {
	bound := min(len(buf), WindowSize)
	off := HeaderSize
	for off+FrameHeaderSize <= bound {
		f := Frame{
			Offset: off,
			Size:   binary.BigEndian.Uint32(buf[off+4 : off+8]),
		}
		copy(f.ID[:], buf[off:off+4])

		start := off + FrameHeaderSize
		if uint64(f.Size) > uint64(bound-start) {
			f.Truncated = true
			fn(f)
			return
		}
		end := start + int(f.Size)
		f.Content = buf[start:end:end]
		copy(f.Gap[:], buf[end:min(end+FrameGapSize, bound)])
		if !fn(f) {
			return
		}
		off = end + FrameGapSize
	}
}

// synchsafe decodes a 4-byte integer that uses 7 bits per byte.
func synchsafe(b []byte) uint32 {
	var n uint32
	for _, c := range b {
		n = n<<7 | uint32(c&0x7f)
	}
	return n
}
