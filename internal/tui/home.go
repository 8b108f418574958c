package tui

import (
	"strings"

	"github.com/aiwave/aiwave/internal/session"
)

// homeView renders the landing page. The greeting falls back to "guest"
// while the profile is unknown.
func homeView(s session.Session, width int) string {
	name := "guest"
	if s.User != nil {
		name = s.User.DisplayName()
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(titleStyle.Render("Welcome, "+name), width) + "\n\n")

	switch {
	case s.ProfileLoading():
		b.WriteString(center(dimStyle.Render("loading your profile…"), width) + "\n")
	case s.ProfileFailed:
		b.WriteString(center(warnStyle.Render("profile unavailable; you are still signed in"), width) + "\n")
	default:
		b.WriteString(center(normalStyle.Render("Your lessons and chats live here."), width) + "\n")
	}

	b.WriteString("\n")
	b.WriteString("  " + sectionHeaderStyle.Render("Go to") + "\n")
	b.WriteString("    " + helpEntry("2", "your profile") + "\n")
	b.WriteString("    " + helpEntry("?", "help and links") + "\n")
	b.WriteString("    " + helpEntry("L", "sign out") + "\n")
	return b.String()
}
