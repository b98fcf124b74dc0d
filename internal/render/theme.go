package render

import "github.com/charmbracelet/lipgloss"

// Theme is the output palette.
type Theme struct {
	Primary   lipgloss.Color // headers, banners
	Secondary lipgloss.Color // gradient end

	FgBase  lipgloss.Color
	FgMuted lipgloss.Color // Unknown values
	Border  lipgloss.Color

	Success lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color
}

// Styles are the lipgloss styles derived from a Theme for one renderer.
type Styles struct {
	Header  lipgloss.Style
	Key     lipgloss.Style
	Base    lipgloss.Style
	Muted   lipgloss.Style
	Border  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
}

var defaultTheme = Theme{
	Primary:   lipgloss.Color("#a78bfa"),
	Secondary: lipgloss.Color("#f1a208"),

	FgBase:  lipgloss.Color("#c0c0c0"),
	FgMuted: lipgloss.Color("#808080"),
	Border:  lipgloss.Color("#585858"),

	Success: lipgloss.Color("#42b883"),
	Error:   lipgloss.Color("#ff5555"),
	Warning: lipgloss.Color("#f1a208"),
}

// DefaultTheme returns the built-in palette.
func DefaultTheme() Theme {
	return defaultTheme
}

func (t Theme) styles(r *lipgloss.Renderer) Styles {
	base := r.NewStyle().Foreground(t.FgBase)
	return Styles{
		Header:  r.NewStyle().Foreground(t.Primary).Bold(true),
		Key:     base.Bold(true),
		Base:    base,
		Muted:   r.NewStyle().Foreground(t.FgMuted).Italic(true),
		Border:  r.NewStyle().Foreground(t.Border),
		Success: r.NewStyle().Foreground(t.Success),
		Error:   r.NewStyle().Foreground(t.Error),
		Warning: r.NewStyle().Foreground(t.Warning),
	}
}
