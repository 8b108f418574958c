package tui

import "strings"

func notFoundView(target string, width int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(titleStyle.Render("404"), width) + "\n\n")
	b.WriteString(center(dimStyle.Render("Nothing lives at "+target), width) + "\n\n")
	b.WriteString(center(metaStyle.Render("press 1 to go home"), width) + "\n")
	return b.String()
}

func loadingView(width int) string {
	return "\n" + center(dimStyle.Render("restoring session…"), width) + "\n"
}
