package id3win

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

type testFrame struct {
	id      string
	content string
	size    int // overrides the declared size when > 0
}

// buildTag returns a header followed by the given frames, without padding.
// Each frame is id, size, content and a zero gap.
func buildTag(frames ...testFrame) []byte {
	buf := []byte{'I', 'D', '3', 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x7f}
	for _, f := range frames {
		hdr := make([]byte, FrameHeaderSize)
		copy(hdr, f.id)
		size := len(f.content)
		if f.size > 0 {
			size = f.size
		}
		binary.BigEndian.PutUint32(hdr[4:8], uint32(size))
		buf = append(buf, hdr...)
		buf = append(buf, f.content...)
		buf = append(buf, make([]byte, FrameGapSize)...)
	}
	return buf
}

// padTo extends buf with zero bytes up to n bytes.
func padTo(buf []byte, n int) []byte {
	for len(buf) < n {
		buf = append(buf, 0)
	}
	return buf
}

// writeTestFile writes a tag padded to the window followed by fake audio data.
func writeTestFile(t *testing.T, tag []byte) string {
	t.Helper()
	data := padTo(append([]byte(nil), tag...), WindowSize)
	for i := range 256 {
		data = append(data, byte(0xA0+i%16))
	}
	return writeRawFile(t, data)
}

func writeRawFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	return path
}

func readRawFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read test file: %v", err)
	}
	return data
}
