package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aiwave/aiwave/pkg/client"
)

const (
	signinEmail = iota
	signinPassword
)

// signinDoneMsg carries the result of a sign-in attempt.
type signinDoneMsg struct{ err error }

type signinModel struct {
	api     API
	auth    Auth
	fields  []field
	focus   int
	editing bool
	busy    bool
	err     string
	notice  string
}

func newSigninModel(api API, auth Auth) signinModel {
	return signinModel{
		api:  api,
		auth: auth,
		fields: []field{
			{label: "email", placeholder: "you@example.com"},
			{label: "password", placeholder: "password", secret: true},
		},
		editing: true,
	}
}

// withEmail prefills the email field, e.g. after sign-up.
func (m signinModel) withEmail(email, notice string) signinModel {
	m.fields[signinEmail].value = email
	m.fields[signinPassword].value = ""
	m.focus = signinPassword
	m.notice = notice
	m.err = ""
	m.editing = true
	return m
}

func (m signinModel) submit() tea.Cmd {
	email := strings.TrimSpace(m.fields[signinEmail].value)
	password := m.fields[signinPassword].value
	api, auth := m.api, m.auth
	return func() tea.Msg {
		resp, err := api.Login(context.Background(), email, password)
		if err != nil {
			return signinDoneMsg{err: err}
		}
		return signinDoneMsg{err: auth.Login(resp.Token)}
	}
}

func (m signinModel) Update(msg tea.Msg) (signinModel, tea.Cmd) {
	switch msg := msg.(type) {
	case signinDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = client.UserMessage(msg.err, "Sign in failed.")
			m.fields[signinPassword].value = ""
			return m, nil
		}
		m.err, m.notice = "", ""
		m.fields[signinPassword].value = ""
		return m, nil


	case tea.KeyMsg:
		if !m.editing {
			if msg.String() == "enter" || msg.String() == "tab" {
				m.editing = true
			}
			return m, nil
		}
		switch msg.String() {
		case "esc":
			m.editing = false
		case "tab", "down":
			m.focus = (m.focus + 1) % len(m.fields)
		case "shift+tab", "up":
			m.focus = (m.focus + len(m.fields) - 1) % len(m.fields)
		case "enter":
			if m.busy {
				return m, nil
			}
			if m.focus == signinEmail {
				m.focus = signinPassword
				return m, nil
			}
			if strings.TrimSpace(m.fields[signinEmail].value) == "" || m.fields[signinPassword].value == "" {
				m.err = "Email and password are required!"
				return m, nil
			}
			m.busy = true
			m.err, m.notice = "", ""
			return m, m.submit()
		default:
			f := &m.fields[m.focus]
			f.value = editKey(f.value, msg)
		}
	}
	return m, nil
}

func (m signinModel) View(frame int) string {
	return renderForm("Sign in", m.fields, m.focus, m.editing, m.busy, m.err, m.notice, frame,
		"No account? press "+accentStyle.Render("esc")+" then "+accentStyle.Render("u")+" to sign up.")
}

// renderForm draws a titled list of fields with a status line.
func renderForm(title string, fields []field, focus int, editing, busy bool, errMsg, notice string, frame int, footer string) string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render(title) + "\n\n")
	for i, f := range fields {
		b.WriteString("  " + renderField(f, editing && i == focus, frame) + "\n")
	}
	b.WriteString("\n")
	switch {
	case busy:
		b.WriteString("  " + dimStyle.Render("working…") + "\n")
	case errMsg != "":
		b.WriteString("  " + errorStyle.Render(errMsg) + "\n")
	case notice != "":
		b.WriteString("  " + successStyle.Render(notice) + "\n")
	default:
		b.WriteString("\n")
	}
	if footer != "" {
		b.WriteString("\n  " + metaStyle.Render(footer) + "\n")
	}
	return b.String()
}
