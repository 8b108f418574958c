// Package auth is the single entry point the rest of the client uses for
// authentication: it owns login, logout and startup, writes through to the
// token store, and keeps the session state current.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aiwave/aiwave/internal/logging"
	"github.com/aiwave/aiwave/internal/route"
	"github.com/aiwave/aiwave/internal/session"
	"github.com/aiwave/aiwave/internal/tokenstore"
)

// Navigator performs the navigation side effect of login and logout.
type Navigator interface {
	Navigate(to route.Path)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(to route.Path)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(to route.Path) { f(to) }

// Option configures a Facade.
type Option func(*Facade)

// WithLogger sets the logger. The default discards.
func WithLogger(l logging.Logger) Option {
	return func(f *Facade) {
		if l != nil {
			f.log = l
		}
	}
}

// WithNavigator enables the navigation side effect. Without one, login and
// logout only change state.
func WithNavigator(n Navigator) Option {
	return func(f *Facade) { f.nav = n }
}

// WithProfileLoading toggles the profile fetch after login and at startup.
func WithProfileLoading(enabled bool) Option {
	return func(f *Facade) { f.loadProfile = enabled }
}

// WithLogoutOnRejectedToken makes a 401 on a background profile fetch end
// the session it was issued for.
func WithLogoutOnRejectedToken(enabled bool) Option {
	return func(f *Facade) { f.logoutOnRejected = enabled }
}

// WithProfileTimeout bounds each profile fetch.
func WithProfileTimeout(d time.Duration) Option {
	return func(f *Facade) {
		if d > 0 {
			f.profileTimeout = d
		}
	}
}

// WithRoutes overrides the landing and sign-in targets.
func WithRoutes(landing, signIn route.Path) Option {
	return func(f *Facade) { f.landing, f.signIn = landing, signIn }
}

// Facade coordinates the token store, the session state and the profile
// loader. It is safe for concurrent use.
type Facade struct {
	store  tokenstore.Store
	state  *session.State
	loader ProfileLoader
	log    logging.Logger
	nav    Navigator

	loadProfile      bool
	logoutOnRejected bool
	profileTimeout   time.Duration
	landing, signIn  route.Path

	mu      sync.Mutex
	baseCtx context.Context
	wg      sync.WaitGroup

	// writeMu pairs every store write with the session change it belongs to.
	writeMu sync.Mutex
}

// New returns a facade. loader may be nil when profile loading is disabled.
func New(store tokenstore.Store, state *session.State, loader ProfileLoader, opts ...Option) *Facade {
	f := &Facade{
		store:          store,
		state:          state,
		loader:         loader,
		log:            logging.Nop(),
		loadProfile:    true,
		profileTimeout: 10 * time.Second,
		landing:        route.Home,
		signIn:         route.SignIn,
		baseCtx:        context.Background(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.With("component", "auth")
	return f
}

// Start reads the token store once and settles the session. A stored token
// makes the session authenticated at once; its profile loads in the
// background under ctx. A store read error leaves the session anonymous
// and is returned.
func (f *Facade) Start(ctx context.Context) error {
	f.mu.Lock()
	f.baseCtx = ctx
	f.mu.Unlock()

	f.writeMu.Lock()
	tok, err := f.store.Get()
	if err != nil {
		f.state.Reset()
		f.writeMu.Unlock()
		f.log.Error(ctx, "read token store", "err", err)
		return fmt.Errorf("auth.Start: %w", err)
	}
	if tokenstore.Blank(tok) {
		gen := f.state.Reset()
		f.writeMu.Unlock()
		f.log.Debug(ctx, "no stored token", "generation", gen)
		return nil
	}
	gen := f.state.Replace(tok)
	f.writeMu.Unlock()

	f.log.Info(ctx, "restored session", "generation", gen)
	f.fetchProfile(gen, tok)
	return nil
}

// Login persists token, makes it the current session, starts the profile
// fetch without waiting for it, and navigates to the landing route. When
// the store write fails nothing else happens. A blank token is rejected
// with tokenstore.ErrEmptyToken; any other token is kept exactly as given.
func (f *Facade) Login(token string) error {
	if tokenstore.Blank(token) {
		return fmt.Errorf("auth.Login: %w", tokenstore.ErrEmptyToken)
	}
	gen, err := f.storeAndReplace(token)
	if err != nil {
		return fmt.Errorf("auth.Login: %w", err)
	}
	f.log.Info(f.ctx(), "signed in", "generation", gen)

	f.fetchProfile(gen, token)
	f.navigate(f.landing)
	return nil
}

// Logout clears the store and the session and navigates to sign-in. It is
// idempotent. A store error is returned after the in-memory session has
// been reset anyway.
func (f *Facade) Logout() error {
	f.writeMu.Lock()
	clearErr := f.store.Clear()
	gen := f.state.Reset()
	f.writeMu.Unlock()

	if clearErr != nil {
		f.log.Error(f.ctx(), "clear token store", "err", clearErr)
	}
	f.log.Info(f.ctx(), "signed out", "generation", gen)

	f.navigate(f.signIn)
	if clearErr != nil {
		return fmt.Errorf("auth.Logout: %w", clearErr)
	}
	return nil
}

func (f *Facade) storeAndReplace(token string) (uint64, error) {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	if err := f.store.Set(token); err != nil {
		return 0, err
	}
	return f.state.Replace(token), nil
}

// CurrentSession returns the current snapshot. It never blocks on I/O.
func (f *Facade) CurrentSession() session.Session {
	return f.state.Snapshot()
}

// Subscribe registers fn for every session change. fn runs synchronously
// inside Login, Logout and Start and must not call back into the facade.
func (f *Facade) Subscribe(fn func(session.Session)) (cancel func()) {
	return f.state.Subscribe(fn)
}

// Wait blocks until every in-flight profile fetch has finished.
func (f *Facade) Wait() {
	f.wg.Wait()
}

func (f *Facade) ctx() context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.baseCtx
}

func (f *Facade) navigate(to route.Path) {
	if f.nav == nil {
		return
	}
	f.nav.Navigate(to)
}

// fetchProfile loads the profile for generation gen in the background.
// Logout and later logins do not cancel it; the State drops its result.
func (f *Facade) fetchProfile(gen uint64, token string) {
	if !f.loadProfile || f.loader == nil {
		return
	}
	base := f.ctx()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		ctx, cancel := context.WithTimeout(base, f.profileTimeout)
		defer cancel()

		user, err := f.loader.Load(ctx, token)
		if err != nil {
			f.profileFailed(ctx, gen, token, err)
			return
		}
		if !f.state.SetUser(gen, user) {
			f.log.Debug(ctx, "discarding stale profile", "generation", gen)
			return
		}
		f.log.Debug(ctx, "profile loaded", "generation", gen, "user_id", user.ID)
	}()
}

func (f *Facade) profileFailed(ctx context.Context, gen uint64, token string, err error) {
	f.log.Warn(ctx, "profile unavailable", "generation", gen, "err", err)

	if f.logoutOnRejected && errors.Is(err, ErrUnauthorized) {
		expired, clearErr := f.expire(gen, token)
		if !expired {
			return
		}
		if clearErr != nil {
			f.log.Error(ctx, "clear rejected token", "err", clearErr)
		}
		f.log.Info(ctx, "token rejected, signed out", "generation", gen)
		f.navigate(f.signIn)
		return
	}

	if !f.state.SetProfileFailed(gen) {
		f.log.Debug(ctx, "discarding stale profile failure", "generation", gen)
	}
}

// expire ends generation gen and empties the store if it still holds token.
// A login cannot interleave, so a newer token is never wiped.
func (f *Facade) expire(gen uint64, token string) (bool, error) {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	if !f.state.Expire(gen) {
		return false, nil
	}
	cur, err := f.store.Get()
	if err != nil || cur != token {
		return true, err
	}
	return true, f.store.Clear()
}
