package tui

import (
	"github.com/charmbracelet/lipgloss"

	"pagetag/internal/config"
	"pagetag/pkg/types"
)

// styles holds the lipgloss styling derived from the configured tag
// colors.
type styles struct {
	title    lipgloss.Style
	status   lipgloss.Style
	help     lipgloss.Style
	current  lipgloss.Style
	preview  lipgloss.Style
	tagStyle map[types.Tag]lipgloss.Style
}

func newStyles(cfg *config.Config) styles {
	s := styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4F4FB7")).
			Padding(0, 1),
		status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		current: lipgloss.NewStyle().
			Bold(true).
			Underline(true),
		preview: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 2),
		tagStyle: make(map[types.Tag]lipgloss.Style),
	}
	for _, tag := range types.AllTags {
		s.tagStyle[tag] = lipgloss.NewStyle().
			Foreground(lipgloss.Color(cfg.TagColor(tag)))
	}
	return s
}
