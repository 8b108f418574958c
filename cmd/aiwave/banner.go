package main

import (
	"fmt"
	"io"

	"github.com/aiwave/aiwave/pkg/domain"
)

// ANSI color constants for plain CLI output (no lipgloss, runs outside the TUI).
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiItalic = "\033[3m"
	ansiSky    = "\033[38;2;96;165;250m"  // #60a5fa
	ansiBlue   = "\033[38;2;59;130;246m"  // #3b82f6
	ansiSlate  = "\033[38;2;136;144;160m" // #8890a0
)

// printLogo prints the spaced AIWAVE wordmark in alternating blues.
func printLogo(w io.Writer) {
	letters := "AIWAVE"
	colors := [2]string{ansiSky, ansiBlue}
	fmt.Fprint(w, "\n  ")
	for i, ch := range letters {
		fmt.Fprintf(w, "%s%s%c%s", colors[i%2], ansiBold, ch, ansiReset)
		if i < len(letters)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

func printSignedIn(w io.Writer, name, detail string) {
	printLogo(w)
	fmt.Fprintf(w, "\n  Signed in as %s%s%s%s  %s%s%s%s\n\n",
		ansiSky, ansiBold, name, ansiReset,
		ansiSlate, ansiItalic, detail, ansiReset,
	)
}

func printUser(w io.Writer, u *domain.User) {
	printLogo(w)
	fmt.Fprintln(w)
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(w, "  %s%-9s%s %s\n", ansiSlate, label, ansiReset, value)
	}
	row("username", u.Username)
	row("email", u.Email)
	row("bio", u.Bio)
	row("avatar", u.AvatarURL)
	fmt.Fprintln(w)
}
