package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/ports"
)

const (
	AccessCookie  = "re-access-token"
	RefreshCookie = "re-refresh-token"

	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 30 * 24 * time.Hour
	tokenIssuer       = "nadlan-portal"
)

// AuthConfig configures tokens and session cookies.
type AuthConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// ReuseInterval keeps a rotated refresh token usable for a short while.
	ReuseInterval time.Duration
	CookieSecure  bool
	CookieDomain  string
}

// AuthService implements account registration, sign-in and the identity
// provider used by the gatekeeper.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	limiter  ports.SignInLimiter
	cfg      AuthConfig
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionStore, limiter ports.SignInLimiter, cfg AuthConfig, log zerolog.Logger) *AuthService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		limiter:  limiter,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// accessClaims is the payload of an access token.
type accessClaims struct {
	jwt.RegisteredClaims
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

func (s *AuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	role := domain.DefaultRole
	if in.Role != "" {
		r, ok := domain.ParseRole(in.Role)
		if !ok {
			return nil, domain.ErrInvalidCredentials
		}
		role = r
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: string(hash),
		Metadata:     map[string]any{domain.MetadataRoleKey: string(role)},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", string(role)).Msg("user signed up")
	return created, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.Tokens, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("sign-in limiter unavailable, allowing attempt")
	} else if !allowed {
		return nil, nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, email)
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, email)
		return nil, nil, domain.ErrInvalidCredentials
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to reset sign-in limiter")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return tokens, user, nil
}

func (s *AuthService) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CurrentUser resolves the caller from the session cookies. A valid access
// token is trusted as is. A missing or expired one is renewed from the
// refresh token, and the new cookies are written through jar. An unknown
// refresh token clears both cookies.
func (s *AuthService) CurrentUser(ctx context.Context, jar ports.CookieJar) (*domain.User, error) {
	cookies := jar.GetAll()
	access := cookieValue(cookies, AccessCookie)
	refresh := cookieValue(cookies, RefreshCookie)

	if access != "" {
		user, err := s.parseAccessToken(access)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSession, err)
		}
	}

	if refresh == "" {
		return nil, nil
	}

	user, tokens, err := s.refresh(ctx, refresh)
	if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrUserNotFound) {
		jar.SetAll(s.ClearCookies())
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	jar.SetAll(s.SessionCookies(tokens))
	return user, nil
}

// SessionCookies returns the cookies carrying tokens to the browser.
func (s *AuthService) SessionCookies(tokens *domain.Tokens) []*http.Cookie {
	now := s.now()
	return []*http.Cookie{
		s.cookie(AccessCookie, tokens.AccessToken, int(tokens.RefreshExpiresAt.Sub(now).Seconds())),
		s.cookie(RefreshCookie, tokens.RefreshToken, int(tokens.RefreshExpiresAt.Sub(now).Seconds())),
	}
}

// ClearCookies returns cookie mutations deleting both session cookies.
func (s *AuthService) ClearCookies() []*http.Cookie {
	return []*http.Cookie{
		s.cookie(AccessCookie, "", -1),
		s.cookie(RefreshCookie, "", -1),
	}
}

// RefreshTokenFrom picks the refresh token out of request cookies.
func (s *AuthService) RefreshTokenFrom(cookies []*http.Cookie) string {
	return cookieValue(cookies, RefreshCookie)
}

func (s *AuthService) refresh(ctx context.Context, token string) (*domain.User, *domain.Tokens, error) {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.sessions.Retire(ctx, token, s.cfg.ReuseInterval); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to retire rotated session")
	}

	s.log.Debug().Str("user_id", user.ID).Msg("session refreshed")
	return user, tokens, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*domain.Tokens, error) {
	now := s.now()
	accessExp := now.Add(s.cfg.AccessTTL)
	refreshExp := now.Add(s.cfg.RefreshTTL)

	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
		Email:        user.Email,
		UserMetadata: user.Metadata,
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	sess := domain.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now.UTC(),
		ExpiresAt: refreshExp.UTC(),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &domain.Tokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     sess.Token,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *AuthService) parseAccessToken(raw string) (*domain.User, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return &domain.User{
		ID:       claims.Subject,
		Email:    claims.Email,
		Metadata: claims.UserMetadata,
	}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record sign-in failure")
	}
}

func (s *AuthService) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.cfg.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func cookieValue(cookies []*http.Cookie, name string) string {
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
