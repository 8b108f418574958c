package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aiwave/aiwave/internal/browser"
	"github.com/aiwave/aiwave/internal/session"
)

// profileActionMsg reports the outcome of a copy or open action.
type profileActionMsg struct {
	done string
	err  error
}

var (
	defaultClipboardWrite = clipboard.WriteAll
	defaultBrowserOpen    = browser.Open

	// Swapped in tests; the real clipboard needs a display.
	clipboardWrite = defaultClipboardWrite
	browserOpen    = defaultBrowserOpen
)

func copyEmail(email string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboardWrite(email); err != nil {
			return profileActionMsg{err: fmt.Errorf("copy email: %w", err)}
		}
		return profileActionMsg{done: "email copied"}
	}
}

func openAvatar(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browserOpen(url); err != nil {
			return profileActionMsg{err: fmt.Errorf("open avatar: %w", err)}
		}
		return profileActionMsg{done: "avatar opened in browser"}
	}
}

// profileKey handles the profile view's own keys.
func profileKey(s session.Session, key string) tea.Cmd {
	if s.User == nil {
		return nil
	}
	switch key {
	case "c":
		if s.User.Email != "" {
			return copyEmail(s.User.Email)
		}
	case "o":
		if s.User.AvatarURL != "" {
			return openAvatar(s.User.AvatarURL)
		}
	}
	return nil
}

func profileView(s session.Session, width int) string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Profile") + "\n\n")

	switch {
	case s.ProfileLoading():
		b.WriteString("  " + dimStyle.Render("loading…") + "\n")
		return b.String()
	case s.User == nil:
		b.WriteString("  " + warnStyle.Render("Profile unavailable.") + "\n")
		b.WriteString("  " + metaStyle.Render("You are signed in, but the server did not return your details.") + "\n")
		return b.String()
	}

	u := s.User
	valueWidth := width - 16
	if valueWidth < 20 {
		valueWidth = 20
	}
	row := func(label, value string) {
		if value == "" {
			value = metaStyle.Render("—")
		} else {
			value = normalStyle.Render(truncStr(value, valueWidth))
		}
		b.WriteString("  " + dimStyle.Render(padRight(label, 10)) + value + "\n")
	}
	row("username", u.Username)
	row("email", u.Email)
	row("bio", u.Bio)
	row("avatar", u.AvatarURL)
	row("id", fmt.Sprintf("%d", u.ID))
	return b.String()
}
