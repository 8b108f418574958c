package route

import (
	"fmt"

	"github.com/aiwave/aiwave/internal/session"
)

// Action is the guard's verdict on a navigation.
type Action int

const (
	// Allow shows the requested route.
	Allow Action = iota
	// Redirect replaces the navigation with Decision.Target.
	Redirect
	// Defer holds the navigation until the session leaves
	// PhaseInitializing.
	Defer
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Defer:
		return "defer"
	}
	return "unknown"
}

// Decision is the outcome of Guard.Decide.
type Decision struct {
	Action Action
	// Route is the table entry the target resolved to.
	Route Route
	// Target is where to go instead, for Redirect.
	Target Path
}

// Guard applies the access policy of a Table.
type Guard struct {
	table   *Table
	landing Path
	signIn  Path
}

// NewGuard returns a guard redirecting anonymous users to signIn and
// authenticated users away from auth-only routes to landing. landing must
// be reachable with a token and signIn without one, so a redirect never
// chains.
func NewGuard(table *Table, landing, signIn Path) (*Guard, error) {
	if !table.Has(landing) || !table.Has(signIn) {
		return nil, fmt.Errorf("route: landing %q and sign-in %q must be table entries", landing, signIn)
	}
	if table.Lookup(string(landing)).Class == AuthOnly {
		return nil, fmt.Errorf("route: landing %q is auth-only", landing)
	}
	if table.Lookup(string(signIn)).Class == Protected {
		return nil, fmt.Errorf("route: sign-in %q is protected", signIn)
	}
	return &Guard{table: table, landing: landing, signIn: signIn}, nil
}

// DefaultGuard guards DefaultTable with Home as landing and SignIn.
func DefaultGuard() *Guard {
	g, err := NewGuard(DefaultTable(), Home, SignIn)
	if err != nil {
		panic(err)
	}
	return g
}

// Table returns the guarded table.
func (g *Guard) Table() *Table { return g.table }

// Landing is where authenticated users are sent.
func (g *Guard) Landing() Path { return g.landing }

// SignIn is where anonymous users are sent.
func (g *Guard) SignIn() Path { return g.signIn }

// Decide classifies target for the session s. Only token presence counts;
// a missing user record does not make the session anonymous.
func (g *Guard) Decide(s session.Session, target string) Decision {
	r := g.table.Lookup(target)
	d := Decision{Action: Allow, Route: r}

	if s.Phase == session.PhaseInitializing {
		d.Action = Defer
		return d
	}

	switch {
	case !s.Authenticated() && r.Class == Protected:
		d.Action, d.Target = Redirect, g.signIn
	case s.Authenticated() && r.Class == AuthOnly:
		d.Action, d.Target = Redirect, g.landing
	}
	return d
}

// Resolve follows Decide to the route that should be displayed. ok is false
// when the navigation must wait for initialization.
func (g *Guard) Resolve(s session.Session, target string) (r Route, ok bool) {
	d := g.Decide(s, target)
	switch d.Action {
	case Defer:
		return d.Route, false
	case Redirect:
		// NewGuard guarantees the redirect target is itself allowed.
		return g.table.Lookup(string(d.Target)), true
	default:
		return d.Route, true
	}
}
