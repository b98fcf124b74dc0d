package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// maxNameBytes keeps each path element well below the FAT32 limit.
const maxNameBytes = 200

// TrackInfo contains metadata needed for export path generation.
type TrackInfo struct {
	Artist      string
	Album       string
	Title       string
	TrackNumber int
	Extension   string // e.g., ".flac", ".mp3"
}

// GenerateExportPath creates the relative path for an exported track.
// Missing artist and album fall back to "Unknown Artist" and "Unknown Album".
func GenerateExportPath(t TrackInfo, structure FolderStructure) string {
	artist := sanitizeFilename(orDefault(t.Artist, "Unknown Artist"))
	album := sanitizeFilename(orDefault(t.Album, "Unknown Album"))
	name := sanitizeFilename(trackName(t.TrackNumber, orDefault(t.Title, "Untitled")))
	ext := t.Extension

	switch structure {
	case FolderStructureFlat:
		return filepath.Join(fmt.Sprintf("%s - %s", artist, album), name+ext)
	case FolderStructureSingle:
		return sanitizeFilename(fmt.Sprintf("%s - %s - %s", artist, album, name)) + ext
	case FolderStructureHierarchical:
		return filepath.Join(artist, album, name+ext)
	default:
		return filepath.Join(artist, album, name+ext)
	}
}

// trackName prefixes title with a two digit track number when known.
func trackName(track int, title string) string {
	if track <= 0 {
		return title
	}
	return fmt.Sprintf("%02d - %s", track, title)
}

// sanitizeFilename replaces illegal characters for FAT32 compatibility.
func sanitizeFilename(s string) string {
	// Characters not allowed in FAT32: / \ : * ? " < > |
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"\"", "-",
		"<", "-",
		">", "-",
		"|", "-",
	)
	result := strings.Map(func(r rune) rune {
		if r < 0x20 {
			return -1
		}
		return r
	}, replacer.Replace(s))

	if len(result) > maxNameBytes {
		cut := maxNameBytes
		for cut > 0 && !utf8.RuneStart(result[cut]) {
			cut--
		}
		result = result[:cut]
	}

	// FAT32 forbids trailing dots and spaces.
	result = strings.TrimRight(result, ". ")
	if result == "" {
		return "_"
	}
	return result
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
