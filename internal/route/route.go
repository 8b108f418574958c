// Package route declares the client's named routes and the guard that
// decides, on every navigation, whether the target may be shown.
package route

import (
	"fmt"
	"strings"
)

// Class is the static access tag of a route.
type Class int

const (
	// Protected routes require a token. It is the zero value so an
	// untagged route is never accidentally public.
	Protected Class = iota
	// Public routes are reachable in any session state.
	Public
	// AuthOnly routes are for anonymous sessions only (sign-in, sign-up).
	AuthOnly
)

func (c Class) String() string {
	switch c {
	case Protected:
		return "protected"
	case Public:
		return "public"
	case AuthOnly:
		return "auth-only"
	}
	return "unknown"
}

// Path identifies a route.
type Path string

// Named routes.
const (
	Home     Path = "/"
	Profile  Path = "/profile"
	SignIn   Path = "/signin"
	SignUp   Path = "/signup"
	Help     Path = "/help"
	NotFound Path = "/404"
)

// Route is one entry of the table.
type Route struct {
	Path  Path
	Title string
	Class Class
	// Prefix makes the entry also cover every sub-path.
	Prefix bool
}

// Table is the static route configuration.
type Table struct {
	routes   map[Path]Route
	prefixes []Route
	notFound Path
}

// NewTable builds a table. notFound must be one of routes.
func NewTable(notFound Path, routes ...Route) (*Table, error) {
	t := &Table{routes: make(map[Path]Route, len(routes)), notFound: notFound}
	for _, r := range routes {
		r.Path = Normalize(string(r.Path))
		if _, dup := t.routes[r.Path]; dup {
			return nil, fmt.Errorf("route: duplicate path %q", r.Path)
		}
		t.routes[r.Path] = r
		if r.Prefix {
			t.prefixes = append(t.prefixes, r)
		}
	}
	if _, ok := t.routes[notFound]; !ok {
		return nil, fmt.Errorf("route: not-found route %q is not in the table", notFound)
	}
	return t, nil
}

// DefaultTable is the application's route configuration.
func DefaultTable() *Table {
	t, err := NewTable(NotFound,
		Route{Path: Home, Title: "Home", Class: Protected},
		Route{Path: Profile, Title: "Profile", Class: Protected, Prefix: true},
		Route{Path: SignIn, Title: "Sign in", Class: AuthOnly},
		Route{Path: SignUp, Title: "Sign up", Class: AuthOnly},
		Route{Path: Help, Title: "Help", Class: Public},
		Route{Path: NotFound, Title: "Not found", Class: Public},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup resolves target to a table entry. Unknown targets resolve to the
// not-found route.
func (t *Table) Lookup(target string) Route {
	p := Normalize(target)
	if r, ok := t.routes[p]; ok {
		return r
	}
	var best Route
	found := false
	for _, r := range t.prefixes {
		if r.Path == Home || !strings.HasPrefix(string(p), string(r.Path)+"/") {
			continue
		}
		if !found || len(r.Path) > len(best.Path) {
			best, found = r, true
		}
	}
	if found {
		return best
	}
	return t.routes[t.notFound]
}

// Has reports whether p is an exact table entry.
func (t *Table) Has(p Path) bool {
	_, ok := t.routes[Normalize(string(p))]
	return ok
}

// Normalize strips query and fragment, ensures a leading slash and drops a
// trailing one.
func Normalize(target string) Path {
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	target = strings.TrimSpace(target)
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	for len(target) > 1 && strings.HasSuffix(target, "/") {
		target = strings.TrimSuffix(target, "/")
	}
	return Path(target)
}
