package guard

import (
	"strings"
	"sync"

	herdgate "github.com/herdtrack/herdgate"
)

// Outcome is the guard's verdict for one (route, session) pair.
type Outcome uint8

const (
	// OutcomeLoading means the session is still resolving; render nothing,
	// never redirect.
	OutcomeLoading Outcome = iota
	// OutcomeAllow means the route renders for the current session.
	OutcomeAllow
	// OutcomeRedirectLogin means a protected route was visited without a
	// session; navigate to the login route.
	OutcomeRedirectLogin
	// OutcomeRedirectHome means an auth-entry route was visited with an
	// established session; navigate to the home route.
	OutcomeRedirectHome
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeAllow:
		return "allow"
	case OutcomeRedirectLogin:
		return "redirect-login"
	case OutcomeRedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// Redirect returns true when the outcome carries a navigation target.
func (o Outcome) Redirect() bool {
	return o == OutcomeRedirectLogin || o == OutcomeRedirectHome
}

// RouteSet is the compiled route classification. Build one with
// [CompileRoutes]; it is immutable afterward and safe to share.
type RouteSet struct {
	public    map[string]struct{}
	authEntry map[string]struct{}
	loginPath string
	homePath  string
}

// CompileRoutes builds a RouteSet from validated route configuration.
func CompileRoutes(cfg herdgate.RoutesConfig) RouteSet {
	rs := RouteSet{
		public:    make(map[string]struct{}, len(cfg.Public)),
		authEntry: make(map[string]struct{}, len(cfg.AuthEntryPaths)),
		loginPath: normalizePath(cfg.LoginPath),
		homePath:  normalizePath(cfg.HomePath),
	}
	for _, p := range cfg.Public {
		rs.public[normalizePath(p)] = struct{}{}
	}
	for _, p := range cfg.AuthEntryPaths {
		rs.authEntry[normalizePath(p)] = struct{}{}
	}
	return rs
}

// IsPublic reports whether path renders without a session. Unknown routes
// are protected.
func (rs RouteSet) IsPublic(path string) bool {
	_, ok := rs.public[normalizePath(path)]
	return ok
}

// IsAuthEntry reports whether path is a login or registration surface that an
// established session gets bounced away from.
func (rs RouteSet) IsAuthEntry(path string) bool {
	_, ok := rs.authEntry[normalizePath(path)]
	return ok
}

// LoginPath returns the normalized redirect target for unauthenticated
// access to protected routes.
func (rs RouteSet) LoginPath() string { return rs.loginPath }

// HomePath returns the normalized redirect target for authenticated access
// to auth-entry routes.
func (rs RouteSet) HomePath() string { return rs.homePath }

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}

// Decide classifies one (route, session) pair. It is pure: same inputs, same
// outcome. The returned target is non-empty only for redirect outcomes.
func Decide(routes RouteSet, path string, state herdgate.SessionState) (Outcome, string) {
	if state.Loading {
		return OutcomeLoading, ""
	}
	if !routes.IsPublic(path) && !state.Authenticated {
		return OutcomeRedirectLogin, routes.LoginPath()
	}
	if routes.IsAuthEntry(path) && state.Authenticated {
		return OutcomeRedirectHome, routes.HomePath()
	}
	return OutcomeAllow, ""
}

// Navigator receives redirect targets. The host implementation performs the
// actual route change and must tolerate being called with the route it is
// already on.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(target string)

func (f NavigatorFunc) Navigate(target string) { f(target) }

// Session is the slice of the engine the guard consumes.
type Session interface {
	State() herdgate.SessionState
	OnChange(fn func(herdgate.SessionState)) func()
}

// Guard tracks the current route and re-evaluates it on every session
// transition, firing each redirect at most once per (route, target) pair.
type Guard struct {
	routes RouteSet
	nav    Navigator

	session     Session
	unsubscribe func()

	mu      sync.Mutex
	route   string
	fired   bool
	firedAt string
	firedTo string
}

// New creates a Guard over session, subscribing to its transitions. Close
// must be called to release the subscription.
func New(session Session, nav Navigator, routes RouteSet) *Guard {
	g := &Guard{
		routes:  routes,
		nav:     nav,
		session: session,
	}
	g.unsubscribe = session.OnChange(func(state herdgate.SessionState) {
		g.evaluate(state)
	})
	return g
}

// Close releases the session subscription. The guard stops re-evaluating
// afterward; SetRoute and Evaluate still work on demand.
func (g *Guard) Close() {
	if g.unsubscribe != nil {
		g.unsubscribe()
		g.unsubscribe = nil
	}
}

// SetRoute records a route change and evaluates it against the current
// session. The redirect-once latch resets: a new route is a new decision.
func (g *Guard) SetRoute(path string) Outcome {
	g.mu.Lock()
	g.route = normalizePath(path)
	g.fired = false
	g.mu.Unlock()

	return g.evaluate(g.session.State())
}

// Evaluate re-runs the decision for the current route without resetting the
// redirect latch.
func (g *Guard) Evaluate() Outcome {
	return g.evaluate(g.session.State())
}

func (g *Guard) evaluate(state herdgate.SessionState) Outcome {
	g.mu.Lock()
	route := g.route
	if route == "" {
		// No route bound yet; there is nothing to gate.
		g.mu.Unlock()
		return OutcomeAllow
	}
	outcome, target := Decide(g.routes, route, state)

	if !outcome.Redirect() {
		// A non-redirect verdict re-arms the latch; the next redirect for
		// this route is a fresh decision, not a repeat.
		if outcome != OutcomeLoading {
			g.fired = false
		}
		g.mu.Unlock()
		return outcome
	}

	if g.fired && g.firedAt == route && g.firedTo == target {
		g.mu.Unlock()
		return outcome
	}
	g.fired = true
	g.firedAt = route
	g.firedTo = target
	g.mu.Unlock()

	if g.nav != nil {
		g.nav.Navigate(target)
	}
	return outcome
}
