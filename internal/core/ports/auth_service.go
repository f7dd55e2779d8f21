package ports

import (
	"context"
	"net/http"

	"github.com/nadlan-invest/portal/internal/core/domain"
)

// CookieJar gives the identity provider access to the cookies of the current
// request and a way to put cookie mutations onto the outgoing response.
type CookieJar interface {
	GetAll() []*http.Cookie
	SetAll(cookies []*http.Cookie)
}

// IdentityProvider resolves the caller of a request from its session cookies.
//
// CurrentUser returns (nil, nil) for an anonymous caller. Refreshed or
// cleared session cookies are written through jar.
type IdentityProvider interface {
	CurrentUser(ctx context.Context, jar CookieJar) (*domain.User, error)
}

// SignUpInput carries the fields of a new account.
type SignUpInput struct {
	Email    string
	Password string
	FullName string
	Role     string
}

// AuthService defines account and session use cases.
type AuthService interface {
	IdentityProvider
	SignUp(ctx context.Context, in SignUpInput) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*domain.Tokens, *domain.User, error)
	SignOut(ctx context.Context, refreshToken string) error
	SessionCookies(tokens *domain.Tokens) []*http.Cookie
	ClearCookies() []*http.Cookie
	RefreshTokenFrom(cookies []*http.Cookie) string
}
