package peers

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/trashbot/internal/domain"
	"github.com/bnema/trashbot/internal/ports"
)

// Render produces the terminal listing for the peer roster.
func Render(roster ports.Roster) string {
	s := newStyles()

	lines := []string{
		s.title.Render("Peer Roster"),
		s.header.Render(fmt.Sprintf("blocked: %d, allowed: %d", len(roster.Blocked), len(roster.Allowed))),
	}

	lines = append(lines, s.section.Render(renderGroup("Blocked", roster.Blocked, s)))
	lines = append(lines, s.section.Render(renderGroup("Allowed", roster.Allowed, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderGroup(label string, peers []domain.PeerID, s styles) string {
	parts := []string{s.group.Render(label)}

	if len(peers) == 0 {
		parts = append(parts, s.empty.Render("none"))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	for _, peer := range peers {
		parts = append(parts, s.entry.Render(string(peer)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
