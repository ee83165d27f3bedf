package tui

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	errorFg   = lipgloss.Color("#F87171")
	borderCol = lipgloss.Color("#243141")

	appStyle   = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(baseDimFg)
	errStyle   = lipgloss.NewStyle().Foreground(errorFg)

	layerStyles = map[layer]lipgloss.Style{
		layerGround:   lipgloss.NewStyle().Foreground(lipgloss.Color("#2F3B2F")),
		layerFill:     lipgloss.NewStyle().Foreground(lipgloss.Color("#3A4A5C")),
		layerWallDark: lipgloss.NewStyle().Foreground(lipgloss.Color("#5B6B7D")),
		layerWall:     lipgloss.NewStyle().Foreground(lipgloss.Color("#8FA3B8")),
		layerWallLit:  lipgloss.NewStyle().Foreground(lipgloss.Color("#C3D3E3")),
		layerRoof:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F4F8")),
		layerAxisX:    lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		layerAxisY:    lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")),
		layerAxisZ:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
		layerSelected: lipgloss.NewStyle().Foreground(accentFg).Bold(true),
		layerHover:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")),
	}
)

// wallLayer buckets a light intensity into one of the wall shades.
func wallLayer(shade float64) layer {
	switch {
	case shade >= 0.8:
		return layerWallLit
	case shade >= 0.6:
		return layerWall
	default:
		return layerWallDark
	}
}
