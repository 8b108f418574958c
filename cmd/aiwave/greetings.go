package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var signedOutGreetings = [...]string{
	"Every lesson starts with a login.",
	"Your questions are waiting. So is your tutor.",
	"Curiosity is free. The session just needs a token.",
	"The best time to learn was yesterday. The second best is after you sign in.",
	"Somebody just asked a great question. It could have been you.",
	"Notes don't take themselves. Well, here they almost do.",
}

func printHelp(w io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#60a5fa")).
		Bold(true).
		Render("A I W A V E")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(`"Ask anything. Learn everything."`)

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"aiwave", "Open the terminal client"},
		{"aiwave /profile", "Open the client at a route"},
		{"aiwave login [email]", "Sign in with email and password"},
		{"aiwave logout", "Clear your session"},
		{"aiwave whoami", "Show the signed-in user"},
		{"aiwave version", "Show version"},
		{"aiwave help", "You are here"},
	}

	fmt.Fprintf(w, "\n  %s\n\n  %s\n\n  Commands:\n", title, quote)
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", c.cmd)), descStyle.Render(c.desc))
	}
	env := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).
		Render("Settings: AIWAVE_API_URL, AIWAVE_TOKEN_STORE (file|sqlite|memory), AIWAVE_LOG_LEVEL")
	fmt.Fprintf(w, "\n  %s\n\n", env)
}

func printSignedOut(w io.Writer) {
	msg := signedOutGreetings[rand.IntN(len(signedOutGreetings))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#60a5fa")).
		Bold(true).
		Render("AIWAVE")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("To sign in: aiwave login")

	fmt.Fprintf(w, "\n%s\n\n%s\n\n%s\n\n", title, quote, hint)
}
