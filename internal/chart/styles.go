package chart

import "strings"

// Style selects a rendering palette and, for heatmaps, a colormap. The
// mapping is fixed here so every renderer agrees on what a style means.
type Style string

const (
	StyleDefault      Style = "default"
	StyleMinimal      Style = "minimal"
	StyleProfessional Style = "professional"
	StyleColorful     Style = "colorful"
)

// ParseStyle maps free-form user input to a Style, defaulting to
// StyleDefault.
func ParseStyle(s string) Style {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleMinimal:
		return StyleMinimal
	case StyleProfessional:
		return StyleProfessional
	case StyleColorful:
		return StyleColorful
	default:
		return StyleDefault
	}
}

var palettes = map[Style][]string{
	StyleDefault:      {"#8DD3C7", "#FFFFB3", "#BEBADA", "#FB8072", "#80B1D3", "#FDB462"},
	StyleMinimal:      {"#2E86AB", "#A23B72", "#F18F01", "#C73E1D"},
	StyleProfessional: {"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd"},
	StyleColorful:     {"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7", "#DDA0DD"},
}

var colormaps = map[Style]string{
	StyleDefault:      "coolwarm",
	StyleMinimal:      "blues",
	StyleProfessional: "viridis",
	StyleColorful:     "plasma",
}

// Palette returns the hex color cycle for the style.
func (s Style) Palette() []string {
	if p, ok := palettes[s]; ok {
		return p
	}
	return palettes[StyleDefault]
}

// HeatmapColormap names the colormap used for heatmap cells.
func (s Style) HeatmapColormap() string {
	if c, ok := colormaps[s]; ok {
		return c
	}
	return colormaps[StyleDefault]
}
