package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/aiwave/aiwave/internal/auth"
	"github.com/aiwave/aiwave/internal/config"
	"github.com/aiwave/aiwave/internal/logging"
	"github.com/aiwave/aiwave/internal/session"
	"github.com/aiwave/aiwave/internal/tokenstore"
	"github.com/aiwave/aiwave/internal/tui"
	"github.com/aiwave/aiwave/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "--version", "version", "-v":
		fmt.Fprintln(stdout, "aiwave "+version)
		return nil
	case "help", "--help", "-h":
		printHelp(stdout)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch {
	case cmd == "login":
		email := ""
		if len(args) > 1 {
			email = args[1]
		}
		return withApp(ctx, cfg, nil, func(a *app) error {
			return runLogin(ctx, a, email, newPrompter(stdin, stdout), stdout)
		})
	case cmd == "logout":
		return withApp(ctx, cfg, nil, func(a *app) error {
			return runLogout(ctx, a, stdout)
		})
	case cmd == "whoami":
		return withApp(ctx, cfg, nil, func(a *app) error {
			return runWhoami(ctx, a, stdout)
		})
	case cmd == "" || strings.HasPrefix(cmd, "/"):
		return runTUI(ctx, cfg, cmd)
	default:
		return fmt.Errorf("unknown command %q (try: aiwave help)", cmd)
	}
}

// app is the wired client: one store, one session state, one facade.
type app struct {
	cfg   *config.Config
	log   logging.Logger
	store tokenstore.Store
	state *session.State
	api   *client.Client
	auth  *auth.Facade

	closers []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config, nav auth.Navigator) (*app, error) {
	a := &app{cfg: cfg}

	l, f, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	a.closers = append(a.closers, f)
	a.log = l.With("version", version)

	store, err := tokenstore.Open(ctx, cfg)
	if err != nil {
		a.Close() //nolint:errcheck
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, store)

	a.api = client.New(cfg.APIURL, client.TokenFunc(store.Get), client.WithTimeout(cfg.HTTPTimeout))
	a.state = session.NewState()

	opts := []auth.Option{
		auth.WithLogger(a.log),
		auth.WithProfileLoading(cfg.LoadProfile),
		auth.WithLogoutOnRejectedToken(cfg.LogoutOnRejectedToken),
		auth.WithProfileTimeout(cfg.ProfileTimeout),
	}
	if nav != nil {
		opts = append(opts, auth.WithNavigator(nav))
	}
	a.auth = auth.New(store, a.state, auth.NewLoader(a.api), opts...)

	a.log.Debug(ctx, "client ready", "api", cfg.APIURL, "store", cfg.TokenStore)
	return a, nil
}

// Close waits for background profile fetches, then releases resources in
// reverse order.
func (a *app) Close() error {
	if a.auth != nil {
		a.auth.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func withApp(ctx context.Context, cfg *config.Config, nav auth.Navigator, fn func(*app) error) (err error) {
	a, err := newApp(ctx, cfg, nav)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

func runTUI(ctx context.Context, cfg *config.Config, initial string) error {
	bridge := tui.NewBridge(64)
	defer bridge.Close()

	return withApp(ctx, cfg, bridge, func(a *app) error {
		cancel := a.state.Subscribe(bridge.Publish)
		defer cancel()

		model := tui.NewApp(ctx, a.auth, a.api, nil, initial)
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		bridge.Attach(p)

		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("tui error: %w", err)
		}
		return nil
	})
}

func runLogin(ctx context.Context, a *app, email string, p *prompter, out io.Writer) error {
	var err error
	if email == "" {
		if email, err = p.line("Email: "); err != nil {
			return err
		}
	}
	password, err := p.password("Password: ")
	if err != nil {
		return err
	}

	resp, err := a.api.Login(ctx, email, password)
	if err != nil {
		return errors.New(client.UserMessage(err, "login failed: "+err.Error()))
	}
	if err := a.auth.Login(resp.Token); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	a.auth.Wait()

	s := a.auth.CurrentSession()
	if s.User == nil {
		printSignedIn(out, email, "profile unavailable")
		return nil
	}
	printSignedIn(out, s.User.DisplayName(), s.User.Email)
	return nil
}

func runLogout(ctx context.Context, a *app, out io.Writer) error {
	tok, err := a.store.Get()
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if tok == "" {
		fmt.Fprintln(out, "Already logged out.")
		return nil
	}
	if err := a.auth.Logout(); err != nil {
		return err
	}
	a.log.Info(ctx, "logout via cli")
	fmt.Fprintln(out, "Logged out.")
	return nil
}

func runWhoami(ctx context.Context, a *app, out io.Writer) error {
	if err := a.auth.Start(ctx); err != nil {
		return err
	}
	a.auth.Wait()

	s := a.auth.CurrentSession()
	switch {
	case !s.Authenticated():
		printSignedOut(out)
		return errors.New("not logged in")
	case s.User == nil:
		return errors.New("signed in, but the profile could not be loaded")
	}
	printUser(out, s.User)
	return nil
}

// prompter reads answers from the terminal, or from any reader in tests.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	fd := -1
	if f, ok := in.(*os.File); ok {
		fd = int(f.Fd())
	}
	return &prompter{in: bufio.NewReader(in), out: out, fd: fd}
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(s), nil
}

// password reads without echo when attached to a terminal.
func (p *prompter) password(label string) (string, error) {
	if p.fd < 0 || !term.IsTerminal(p.fd) {
		return p.line(label)
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
