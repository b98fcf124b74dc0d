package export

import (
	"fmt"
	"strings"
)

// FolderStructure defines how exported files are organized.
type FolderStructure string

const (
	FolderStructureFlat         FolderStructure = "flat"         // Artist - Album/01 - Track.mp3
	FolderStructureHierarchical FolderStructure = "hierarchical" // Artist/Album/01 - Track.mp3
	FolderStructureSingle       FolderStructure = "single"       // Artist - Album - 01 - Track.mp3
)

// ParseFolderStructure accepts one of the FolderStructure names, ignoring case.
func ParseFolderStructure(s string) (FolderStructure, error) {
	switch fs := FolderStructure(strings.ToLower(strings.TrimSpace(s))); fs {
	case FolderStructureFlat, FolderStructureHierarchical, FolderStructureSingle:
		return fs, nil
	}
	return "", fmt.Errorf("unknown folder structure %q (want flat, hierarchical or single)", s)
}
