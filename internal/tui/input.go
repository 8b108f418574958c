package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 256

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	default:
		if utf8.RuneCountInString(key) == 1 {
			return insertText(text, key)
		}
		return text
	}
}

// insertText appends typed or pasted runes, dropping control characters and
// clamping the result to maxInputLen runes.
func insertText(text, s string) string {
	n := utf8.RuneCountInString(text)
	var b strings.Builder
	b.WriteString(text)
	for _, r := range s {
		if n >= maxInputLen {
			break
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// editKey applies a key message to text. Rune messages may carry a whole
// paste.
func editKey(text string, msg tea.KeyMsg) string {
	if msg.Type == tea.KeyRunes {
		return insertText(text, string(msg.Runes))
	}
	return editRune(text, msg.String())
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// field is one line of a form.
type field struct {
	label       string
	value       string
	placeholder string
	secret      bool
}

// shown is the value as displayed; secrets are masked rune for rune.
func (f field) shown() string {
	if f.secret {
		return strings.Repeat("•", utf8.RuneCountInString(f.value))
	}
	return f.value
}

// renderField renders a labelled input line with a blinking cursor when
// focused and the placeholder when empty.
func renderField(f field, focused bool, animFrame int) string {
	label := dimStyle.Render(padRight(f.label, 10))
	prompt := metaStyle.Render("  ")
	if focused {
		prompt = inputPromptStyle.Render("> ")
	}

	cursor := ""
	if focused {
		cursor = " "
		if (animFrame/4)%2 == 0 {
			cursor = accentStyle.Render("█")
		}
	}

	if f.value == "" {
		if focused {
			return prompt + label + cursor
		}
		return prompt + label + inputPlaceholderStyle.Render(f.placeholder)
	}
	if !focused {
		return prompt + label + dimStyle.Render(f.shown())
	}
	return prompt + label + inputTextStyle.Render(f.shown()) + cursor
}
