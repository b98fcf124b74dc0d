package id3win

import "strings"

const (
	nul = "\x00"
	etx = "\x03"
)

// Clean trims NUL padding and ETX markers from both ends of decoded frame text.
func Clean(s string) string {
	return strings.Trim(s, nul+etx)
}
