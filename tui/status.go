package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/keydesk/keydesk/model"
)

var statusColors = map[model.Status]lipgloss.AdaptiveColor{
	model.StatusActive:   {Light: "#15803D", Dark: "#4ADE80"},
	model.StatusInactive: {Light: "#4B5563", Dark: "#9CA3AF"},
	model.StatusApproved: {Light: "#1D4ED8", Dark: "#60A5FA"},
	model.StatusPending:  {Light: "#A16207", Dark: "#FACC15"},
	model.StatusExpired:  {Light: "#B91C1C", Dark: "#F87171"},
}

// StatusBadge renders the localized label of s in its state color. Unknown
// states render as plain text.
func StatusBadge(s model.Status) string {
	color, ok := statusColors[s]
	if !ok {
		return s.Label()
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(s.Label())
}
