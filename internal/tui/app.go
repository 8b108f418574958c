// Package tui is the interactive terminal client. Each view is a route of
// the route table, and every navigation passes through the route guard.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aiwave/aiwave/internal/route"
	"github.com/aiwave/aiwave/internal/session"
	"github.com/aiwave/aiwave/pkg/client"
	"github.com/aiwave/aiwave/pkg/domain"
)

// Auth is the slice of the auth facade the App drives.
type Auth interface {
	Start(ctx context.Context) error
	Login(token string) error
	Logout() error
	CurrentSession() session.Session
}

// API holds the public endpoints the forms call.
type API interface {
	Login(ctx context.Context, email, password string) (*domain.LoginResponse, error)
	Register(ctx context.Context, req client.RegisterRequest) error
}

// startedMsg reports that the token store has been read.
type startedMsg struct{ err error }

// logoutDoneMsg carries the result of a logout.
type logoutDoneMsg struct{ err error }

// App is the root Bubbletea model.
type App struct {
	ctx   context.Context
	auth  Auth
	api   API
	guard *route.Guard

	session session.Session
	route   route.Route
	target  string // the path asked for; differs from route.Path for not-found
	pending string // navigation deferred until the session settles
	ready   bool

	signin     signinModel
	signup     signupModel
	helpCursor int
	status     string
	statusErr  bool

	width  int
	height int
	frame  int // logo shimmer animation frame
}

// NewApp creates the application. initial is the first path to open.
func NewApp(ctx context.Context, auth Auth, api API, guard *route.Guard, initial string) App {
	if guard == nil {
		guard = route.DefaultGuard()
	}
	if initial == "" {
		initial = string(guard.Landing())
	}
	a := App{
		ctx:     ctx,
		auth:    auth,
		api:     api,
		guard:   guard,
		session: auth.CurrentSession(),
		signin:  newSigninModel(api, auth),
		signup:  newSignupModel(api),
	}
	a.navigate(initial)
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), a.start())
}

func (a App) start() tea.Cmd {
	ctx, auth := a.ctx, a.auth
	return func() tea.Msg {
		return startedMsg{err: auth.Start(ctx)}
	}
}

func (a App) logout() tea.Cmd {
	auth := a.auth
	return func() tea.Msg {
		return logoutDoneMsg{err: auth.Logout()}
	}
}

// navigate resolves target through the guard. While the session is
// initializing the target is remembered and nothing is shown yet.
func (a *App) navigate(target string) {
	r, ok := a.guard.Resolve(a.session, target)
	if !ok {
		a.pending = target
		a.ready = false
		return
	}
	a.pending = ""
	a.ready = true
	if r.Path != a.route.Path {
		a.helpCursor = 0
	}
	a.route = r
	if r.Path == route.NotFound {
		a.target = string(route.Normalize(target))
	} else {
		a.target = string(r.Path)
	}
}

// setSession installs s unless it is older than what the App already has,
// then re-runs the guard for the current or pending route.
func (a *App) setSession(s session.Session) {
	if s.Generation < a.session.Generation {
		return
	}
	a.session = s
	switch {
	case a.pending != "":
		a.navigate(a.pending)
	case a.ready:
		a.navigate(a.target)
	}
}

func (a *App) flash(msg string, isErr bool) {
	a.status, a.statusErr = msg, isErr
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case sessionMsg:
		a.setSession(msg.session)
		return a, nil

	case navigateMsg:
		a.status = ""
		a.navigate(string(msg.to))
		return a, nil

	case startedMsg:
		if msg.err != nil {
			a.flash("could not read saved session: "+msg.err.Error(), true)
		}
		a.setSession(a.auth.CurrentSession())
		return a, nil

	case signinDoneMsg:
		var cmd tea.Cmd
		a.signin, cmd = a.signin.Update(msg)
		if msg.err == nil {
			a.setSession(a.auth.CurrentSession())
		}
		return a, cmd

	case signupDoneMsg:
		var cmd tea.Cmd
		a.signup, cmd = a.signup.Update(msg)
		if msg.err == nil {
			a.signin = a.signin.withEmail(msg.email, "Account created. Sign in to continue.")
			a.navigate(string(route.SignIn))
		}
		return a, cmd

	case logoutDoneMsg:
		if msg.err != nil {
			a.flash("sign out: "+msg.err.Error(), true)
		} else {
			a.flash("signed out", false)
		}
		a.setSession(a.auth.CurrentSession())
		return a, nil

	case profileActionMsg:
		if msg.err != nil {
			a.flash(msg.err.Error(), true)
		} else {
			a.flash(msg.done, false)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.ready {
		if msg.String() == "q" {
			return a, tea.Quit
		}
		return a, nil
	}

	if a.isEditing() {
		var cmd tea.Cmd
		switch a.route.Path {
		case route.SignIn:
			a.signin, cmd = a.signin.Update(msg)
		case route.SignUp:
			a.signup, cmd = a.signup.Update(msg)
		}
		return a, cmd
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "1":
		a.status = ""
		a.navigate(string(route.Home))
		return a, nil
	case "2":
		a.status = ""
		a.navigate(string(route.Profile))
		return a, nil
	case "?":
		a.status = ""
		a.navigate(string(route.Help))
		return a, nil
	case "s":
		if !a.session.Authenticated() {
			a.status = ""
			a.navigate(string(route.SignIn))
			return a, nil
		}
	case "u":
		if !a.session.Authenticated() {
			a.status = ""
			a.navigate(string(route.SignUp))
			return a, nil
		}
	case "L":
		if a.session.Authenticated() {
			return a, a.logout()
		}
	}

	var cmd tea.Cmd
	switch a.route.Path {
	case route.SignIn:
		a.signin, cmd = a.signin.Update(msg)
	case route.SignUp:
		a.signup, cmd = a.signup.Update(msg)
	case route.Profile:
		cmd = profileKey(a.session, msg.String())
	case route.Help:
		switch msg.String() {
		case "j", "down":
			if a.helpCursor < len(helpItems)-1 {
				a.helpCursor++
			}
		case "k", "up":
			if a.helpCursor > 0 {
				a.helpCursor--
			}
		case "enter":
			cmd = openLink(helpItems[a.helpCursor].url)
		}
	}
	return a, cmd
}

func openLink(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browserOpen(url); err != nil {
			return profileActionMsg{err: fmt.Errorf("open link: %w", err)}
		}
		return profileActionMsg{done: "opened " + url}
	}
}

func (a App) isEditing() bool {
	switch a.route.Path {
	case route.SignIn:
		return a.signin.editing
	case route.SignUp:
		return a.signup.editing
	}
	return false
}

func (a App) View() string {
	header := center(renderShimmerLogo(a.frame), a.width)

	who := metaStyle.Render("signed out")
	switch {
	case a.session.User != nil:
		who = normalStyle.Render(a.session.User.DisplayName())
	case a.session.Authenticated():
		who = dimStyle.Render("signed in")
	}
	header += "\n" + center(who, a.width)

	type tabEntry struct {
		key  string
		name string
		path route.Path
	}
	tabs := []tabEntry{
		{"1", "Home", route.Home},
		{"2", "Profile", route.Profile},
		{"?", "Help", route.Help},
	}
	if !a.session.Authenticated() {
		tabs = []tabEntry{
			{"s", "Sign in", route.SignIn},
			{"u", "Sign up", route.SignUp},
			{"?", "Help", route.Help},
		}
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if a.ready && t.path == a.route.Path {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := (colWidth - labelWidth) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		rightPad := colWidth - labelWidth - leftPad
		if rightPad < 0 {
			rightPad = 0
		}
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, help string
	switch {
	case !a.ready:
		body = loadingView(a.width)
		help = helpBar("q", "quit")
	case a.route.Path == route.SignIn:
		body = a.signin.View(a.frame)
		help = a.formHelp()
	case a.route.Path == route.SignUp:
		body = a.signup.View(a.frame)
		help = a.formHelp()
	case a.route.Path == route.Home:
		body = homeView(a.session, a.width)
		help = helpBar("1/2", "tabs", "?", "help", "L", "sign out", "q", "quit")
	case a.route.Path == route.Profile:
		body = profileView(a.session, a.width)
		help = helpBar("c", "copy email", "o", "open avatar", "1", "home", "L", "sign out", "q", "quit")
	case a.route.Path == route.Help:
		body = helpView(a.helpCursor)
		help = helpBar("j/k", "nav", "enter", "open", "1", "home", "q", "quit")
	default:
		body = notFoundView(a.target, a.width)
		help = helpBar("1", "home", "?", "help", "q", "quit")
	}

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = " " + errorStyle.Render(a.status)
		} else {
			status = " " + successStyle.Render(a.status)
		}
	}

	// Chrome budget: header(2) + tabs(1) + status(1) + help(1) = 5 lines + body
	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, status, help)
}

func (a App) formHelp() string {
	if a.isEditing() {
		return helpBar("tab", "next", "enter", "submit", "esc", "menu")
	}
	if a.route.Path == route.SignIn {
		return helpBar("enter", "edit", "u", "sign up", "?", "help", "q", "quit")
	}
	return helpBar("enter", "edit", "s", "sign in", "?", "help", "q", "quit")
}
