package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// neutral stands in for palette entries that are not #rrggbb.
var neutral = colorful.Color{R: 0.5, G: 0.5, B: 0.5}

// gradient renders text bold, shading each grapheme cluster from one color
// to the other.
func gradient(r *lipgloss.Renderer, text string, from, to lipgloss.Color) string {
	var clusters []string
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}

	switch len(clusters) {
	case 0:
		return ""
	case 1:
		return r.NewStyle().Foreground(from).Bold(true).Render(text)
	}

	shades := blendColors(len(clusters), from, to)
	var b strings.Builder
	for i, cluster := range clusters {
		b.WriteString(r.NewStyle().
			Foreground(lipgloss.Color(shades[i].Hex())).
			Bold(true).
			Render(cluster))
	}
	return b.String()
}

// blendColors returns n shades stepping through HCL space.
func blendColors(n int, from, to lipgloss.Color) []colorful.Color {
	start, end := toColorful(from), toColorful(to)
	if n < 2 {
		return []colorful.Color{start}
	}
	shades := make([]colorful.Color, n)
	for i := range shades {
		shades[i] = start.BlendHcl(end, float64(i)/float64(n-1)).Clamped()
	}
	return shades
}

func toColorful(c lipgloss.Color) colorful.Color {
	if col, err := colorful.Hex(string(c)); err == nil {
		return col
	}
	return neutral
}
