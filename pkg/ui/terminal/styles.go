package terminal

import (
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/charmbracelet/lipgloss"
)

// Colors adapt to light and dark terminal backgrounds
var (
	successColor = lipgloss.AdaptiveColor{Light: "#28A745", Dark: "#4CDD76"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#DC3545", Dark: "#FF6B7D"}
	warningColor = lipgloss.AdaptiveColor{Light: "#FFC107", Dark: "#FFD54F"}
	infoColor    = lipgloss.AdaptiveColor{Light: "#17A2B8", Dark: "#4DD0E1"}
	headingColor = lipgloss.AdaptiveColor{Light: "#212529", Dark: "#F8F9FA"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#ADB5BD"}
	repoColor    = lipgloss.AdaptiveColor{Light: "#007ACC", Dark: "#3D9EFF"}
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(headingColor).
			Bold(true).
			MarginBottom(1)

	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	repoStyle    = lipgloss.NewStyle().Foreground(repoColor).Italic(true)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor).Bold(true)
	noteStyle    = lipgloss.NewStyle().Foreground(infoColor)

	outcomeWidth = 13
)

// outcomeStyle colors an outcome label by severity
func outcomeStyle(o types.Outcome) lipgloss.Style {
	base := lipgloss.NewStyle().Width(outcomeWidth)
	switch o {
	case types.OutcomeCreated, types.OutcomeUpdated:
		return base.Foreground(successColor).Bold(true)
	case types.OutcomeModified, types.OutcomeUnitBlocked:
		return base.Foreground(warningColor).Bold(true)
	case types.OutcomeError:
		return base.Foreground(errorColor).Bold(true)
	case types.OutcomeMissing:
		return base.Foreground(infoColor)
	default:
		return base.Foreground(mutedColor)
	}
}
