package guard

import "github.com/puredelivery/client/domain"

// Route paths making up the navigable surface.
const (
	RouteHome        = "/"
	RouteLogin       = "/login"
	RouteRegister    = "/register"
	RouteVerifyEmail = "/verify-email"
	RouteMain        = "/main"
	RouteProfile     = "/profile"
)

// Decision is the outcome of evaluating a guard for one navigation. Guards
// own no state; decisions are recomputed from the session on every
// navigation and never cached.
type Decision struct {
	Allow      bool
	RedirectTo string
	// From carries the attempted location on a login redirect so the shell
	// can return there after authentication.
	From string
}

func allow() Decision { return Decision{Allow: true} }

func redirect(to string) Decision { return Decision{RedirectTo: to} }

// Protected guards routes that need an authenticated session. Unauthenticated
// navigation is redirected to login with the attempted location attached;
// an unconfirmed email (when required) redirects to the verification route.
func Protected(sess domain.Session, requireEmailConfirmation bool, attempted string) Decision {
	if !sess.IsAuthenticated() {
		return Decision{RedirectTo: RouteLogin, From: attempted}
	}
	if requireEmailConfirmation && !sess.IsEmailConfirmed {
		return redirect(RouteVerifyEmail)
	}
	return allow()
}

// Public guards routes meant for unauthenticated visitors. A fully
// authenticated and confirmed session is redirected away; an authenticated
// but unconfirmed session may still reach public pages such as the
// verification screen.
func Public(sess domain.Session, redirectTo string) Decision {
	if redirectTo == "" {
		redirectTo = RouteMain
	}
	if sess.IsAuthenticated() && sess.IsEmailConfirmed {
		return redirect(redirectTo)
	}
	return allow()
}

// Fallback resolves unknown paths: authenticated and confirmed sessions go
// to the main dashboard, everyone else to login.
func Fallback(sess domain.Session) Decision {
	if sess.IsAuthenticated() && sess.IsEmailConfirmed {
		return redirect(RouteMain)
	}
	return redirect(RouteLogin)
}
