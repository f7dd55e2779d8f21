// Package gatekeeper decides, once per page request, whether the request may
// proceed or has to be redirected. It resolves the locale, authenticates the
// caller through the identity provider and applies the route tables.
package gatekeeper

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/ports"
)

// Outcome is the terminal state of a gatekeeper decision.
type Outcome string

const (
	OutcomePass              Outcome = "pass"
	OutcomeRedirectLocale    Outcome = "redirect_locale"
	OutcomeRedirectSignIn    Outcome = "redirect_sign_in"
	OutcomeRedirectDashboard Outcome = "redirect_dashboard"
)

const (
	signInPath = "/sign-in"
	signUpPath = "/sign-up"

	// RedirectParam carries the originally requested path to the sign-in page.
	RedirectParam = "redirect"
)

// Decision is the result of Decide.
type Decision struct {
	Outcome Outcome
	// Location is set for every redirect outcome.
	Location string
	Locale   domain.Locale
	// User is nil for anonymous callers. Role is only meaningful with a user.
	User *domain.User
	Role domain.Role
	// IdentityErr is the provider failure that was treated as anonymous.
	IdentityErr error
}

// Redirect reports whether the decision sends the client elsewhere.
func (d Decision) Redirect() bool { return d.Outcome != OutcomePass }

// Gatekeeper holds the read-only collaborators of the decision function.
type Gatekeeper struct {
	routes   *RouteTable
	rewriter LocaleRewriter
	identity ports.IdentityProvider
	log      zerolog.Logger
}

func New(routes *RouteTable, rewriter LocaleRewriter, identity ports.IdentityProvider, log zerolog.Logger) *Gatekeeper {
	return &Gatekeeper{routes: routes, rewriter: rewriter, identity: identity, log: log}
}

// Routes exposes the route table, e.g. for dashboard lookups by handlers.
func (g *Gatekeeper) Routes() *RouteTable { return g.routes }

// Decide runs the gatekeeper for one request. Cookie mutations made by the
// locale rewriter and the identity provider are written through jar before
// Decide returns, whatever the outcome.
func (g *Gatekeeper) Decide(ctx context.Context, r *http.Request, jar ports.CookieJar) Decision {
	path := r.URL.Path
	if path == "" {
		path = "/"
	}
	locale, stripped, _ := domain.SplitLocale(path)

	d := Decision{Outcome: OutcomePass, Locale: locale}
	if location, ok := g.rewriter.Rewrite(r, jar); ok {
		d.Outcome, d.Location = OutcomeRedirectLocale, location
	}

	user, err := g.identity.CurrentUser(ctx, jar)
	if err != nil {
		g.log.Warn().Err(err).Str("path", path).Msg("identity resolution failed, continuing as anonymous")
		d.IdentityErr = err
		user = nil
	}
	if user != nil {
		d.User = user
		d.Role = user.RoleOrDefault()
	}

	if class := g.routes.Classify(stripped); class.RequiresAuth {
		if user == nil {
			return d.redirect(OutcomeRedirectSignIn, signInURL(locale, escapedPath(r)))
		}
		if class.RequiredRole != "" && class.RequiredRole != d.Role {
			return d.redirect(OutcomeRedirectDashboard, g.DashboardURL(locale, d.Role))
		}
	}

	if user != nil && (stripped == signInPath || stripped == signUpPath) {
		return d.redirect(OutcomeRedirectDashboard, g.DashboardURL(locale, d.Role))
	}

	return d
}

// DashboardURL returns the locale-prefixed home base of role.
func (g *Gatekeeper) DashboardURL(locale domain.Locale, role domain.Role) string {
	return "/" + string(locale) + g.routes.Dashboard(role)
}

func (d Decision) redirect(outcome Outcome, location string) Decision {
	d.Outcome, d.Location = outcome, location
	return d
}

// escapedPath is the request path as the client sent it, so it can be
// replayed as a Location.
func escapedPath(r *http.Request) string {
	if p := r.URL.EscapedPath(); p != "" {
		return p
	}
	return "/"
}

func signInURL(locale domain.Locale, original string) string {
	q := url.Values{RedirectParam: {original}}
	return "/" + string(locale) + signInPath + "?" + q.Encode()
}
