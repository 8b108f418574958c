package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aiwave/aiwave/pkg/client"
)

const (
	signupUsername = iota
	signupEmail
	signupPassword
)

// signupDoneMsg carries the result of a registration attempt.
type signupDoneMsg struct {
	email string
	err   error
}

type signupModel struct {
	api     API
	fields  []field
	focus   int
	editing bool
	busy    bool
	err     string
}

func newSignupModel(api API) signupModel {
	return signupModel{
		api: api,
		fields: []field{
			{label: "username", placeholder: "ada"},
			{label: "email", placeholder: "you@example.com"},
			{label: "password", placeholder: "password", secret: true},
		},
		editing: true,
	}
}

func (m signupModel) submit() tea.Cmd {
	req := client.RegisterRequest{
		Username: strings.TrimSpace(m.fields[signupUsername].value),
		Email:    strings.TrimSpace(m.fields[signupEmail].value),
		Password: m.fields[signupPassword].value,
	}
	api := m.api
	return func() tea.Msg {
		return signupDoneMsg{email: req.Email, err: api.Register(context.Background(), req)}
	}
}

func (m signupModel) Update(msg tea.Msg) (signupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case signupDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = client.UserMessage(msg.err, "Sign up failed.")
			return m, nil
		}
		// The App moves to sign-in; start fresh next time.
		fresh := newSignupModel(m.api)
		return fresh, nil

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
			if m.focus < signupPassword {
				m.focus++
				return m, nil
			}
			if strings.TrimSpace(m.fields[signupEmail].value) == "" || m.fields[signupPassword].value == "" {
				m.err = "Email and password are required!"
				return m, nil
			}
			m.busy = true
			m.err = ""
			return m, m.submit()
		default:
			f := &m.fields[m.focus]
			f.value = editKey(f.value, msg)
		}
	}
	return m, nil
}

func (m signupModel) View(frame int) string {
	return renderForm("Create account", m.fields, m.focus, m.editing, m.busy, m.err, "", frame,
		"Have an account? press "+accentStyle.Render("esc")+" then "+accentStyle.Render("s")+" to sign in.")
}
