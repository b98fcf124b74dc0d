package library

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/llehouerou/songvault/internal/id3win"
	"github.com/llehouerou/songvault/internal/state"
	"github.com/llehouerou/songvault/internal/tags"
)

type frame struct {
	id, content string
}

// tagWindow returns a 128-byte tag window holding frames, followed by fake audio.
func tagWindow(frames ...frame) []byte {
	buf := []byte{'I', 'D', '3', 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x7f}
	for _, f := range frames {
		hdr := make([]byte, id3win.FrameHeaderSize)
		copy(hdr, f.id)
		binary.BigEndian.PutUint32(hdr[4:8], uint32(len(f.content)))
		buf = append(buf, hdr...)
		buf = append(buf, f.content...)
		buf = append(buf, 0, 0) // gap
	}
	for len(buf) < 128 {
		buf = append(buf, 0)
	}
	for i := range 64 {
		buf = append(buf, byte(0xE0+i%8))
	}
	return buf
}

func writeSong(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

// fakeProber returns info for every path, or err when set.
func fakeProber(info tags.Info, err error) Prober {
	return func(string) (*tags.Info, error) {
		if err != nil {
			return nil, err
		}
		i := info
		return &i, nil
	}
}

func setupLibrary(t *testing.T, opts ...Option) *Library {
	t.Helper()
	m, err := state.OpenMemory()
	if err != nil {
		t.Fatalf("open state: %v", err)
	}
	t.Cleanup(func() { m.Close() })

	opts = append([]Option{WithProber(fakeProber(tags.Info{}, nil))}, opts...)
	return New(m.DB(), filepath.Join(t.TempDir(), "storage"), zerolog.Nop(), opts...)
}
