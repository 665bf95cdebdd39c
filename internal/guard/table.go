package guard

import "github.com/puredelivery/client/domain"

type routeKind int

const (
	kindOpen routeKind = iota
	kindPublic
	kindProtected
)

type route struct {
	kind                     routeKind
	requireEmailConfirmation bool
}

// Table maps paths to their guard, mirroring the application's route
// surface. Unknown paths resolve through the wildcard fallback.
type Table struct {
	routes map[string]route
}

// NewTable registers the full navigable surface.
func NewTable() *Table {
	t := &Table{routes: make(map[string]route)}

	t.open(RouteHome)

	t.public(RouteLogin)
	t.public(RouteRegister)
	t.public(RouteVerifyEmail)

	t.protected(RouteMain, true)
	t.protected(RouteProfile, true)

	return t
}

func (t *Table) open(path string)   { t.routes[path] = route{kind: kindOpen} }
func (t *Table) public(path string) { t.routes[path] = route{kind: kindPublic} }

func (t *Table) protected(path string, requireConfirmation bool) {
	t.routes[path] = route{kind: kindProtected, requireEmailConfirmation: requireConfirmation}
}

// Resolve evaluates the guard for path against the current session.
func (t *Table) Resolve(path string, sess domain.Session) Decision {
	r, ok := t.routes[path]
	if !ok {
		return Fallback(sess)
	}
	switch r.kind {
	case kindPublic:
		return Public(sess, RouteMain)
	case kindProtected:
		return Protected(sess, r.requireEmailConfirmation, path)
	default:
		return Decision{Allow: true}
	}
}
