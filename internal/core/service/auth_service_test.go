package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/ports"
)

type stubUserRepo struct {
	users map[string]*domain.User // by email
	seq   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.seq++
	copy := cloneUser(user)
	copy.ID = "user-" + string(rune('0'+r.seq))
	r.users[copy.Email] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type stubSessionStore struct {
	sessions map[string]domain.Session
	retired  map[string]time.Duration
	getErr   error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]domain.Session), retired: make(map[string]time.Duration)}
}

func (s *stubSessionStore) Save(_ context.Context, sess domain.Session) error {
	s.sessions[sess.Token] = sess
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, token string) (domain.Session, error) {
	if s.getErr != nil {
		return domain.Session{}, s.getErr
	}
	sess, ok := s.sessions[token]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *stubSessionStore) Retire(_ context.Context, token string, grace time.Duration) error {
	s.retired[token] = grace
	return nil
}

func (s *stubSessionStore) Delete(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

type stubLimiter struct {
	blocked  bool
	failures int
	resets   int
}

func (l *stubLimiter) Allow(context.Context, string) (bool, error) { return !l.blocked, nil }

func (l *stubLimiter) RecordFailure(context.Context, string) error {
	l.failures++
	return nil
}

func (l *stubLimiter) Reset(context.Context, string) error {
	l.resets++
	return nil
}

type testJar struct {
	in  []*http.Cookie
	out []*http.Cookie
}

func (j *testJar) GetAll() []*http.Cookie { return j.in }

func (j *testJar) SetAll(cookies []*http.Cookie) { j.out = append(j.out, cookies...) }

func (j *testJar) written(name string) *http.Cookie {
	for _, c := range j.out {
		if c.Name == name {
			return c
		}
	}
	return nil
}

type authFixture struct {
	svc      *AuthService
	users    *stubUserRepo
	sessions *stubSessionStore
	limiter  *stubLimiter
	clock    time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:    newStubUserRepo(),
		sessions: newStubSessionStore(),
		limiter:  &stubLimiter{},
		clock:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewAuthService(f.users, f.sessions, f.limiter, AuthConfig{
		JWTSecret:     "secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		ReuseInterval: 10 * time.Second,
	}, zerolog.Nop())
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *authFixture) signUpAndIn(t *testing.T, email, role string) *domain.Tokens {
	t.Helper()
	if _, err := f.svc.SignUp(context.Background(), ports.SignUpInput{Email: email, Password: "pass1234", Role: role}); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	tokens, _, err := f.svc.SignIn(context.Background(), email, "pass1234")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return tokens
}

func sessionJar(tokens *domain.Tokens) *testJar {
	return &testJar{in: []*http.Cookie{
		{Name: AccessCookie, Value: tokens.AccessToken},
		{Name: RefreshCookie, Value: tokens.RefreshToken},
	}}
}

func TestAuthService_SignUp_Success(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.svc.SignUp(context.Background(), ports.SignUpInput{
		Email: "  Dana@Example.com ", Password: "pass1234", FullName: "Dana Levi", Role: "broker",
	})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if user.Email != "dana@example.com" {
		t.Fatalf("expected normalised email, got %q", user.Email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass1234")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.RoleOrDefault() != domain.RoleBroker {
		t.Fatalf("unexpected role: %v", user.Metadata)
	}
}

func TestAuthService_SignUp_DefaultRole(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.svc.SignUp(context.Background(), ports.SignUpInput{Email: "a@example.com", Password: "pass1234"})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if user.Metadata[domain.MetadataRoleKey] != "investor" {
		t.Fatalf("expected investor role, got %v", user.Metadata)
	}
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	f := newAuthFixture(t)

	if _, err := f.svc.SignUp(context.Background(), ports.SignUpInput{Password: "x"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.svc.SignUp(context.Background(), ports.SignUpInput{Email: "b@example.com", Password: "x", Role: "admin"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for bad role, got %v", err)
	}
}

func TestAuthService_SignUp_Duplicate(t *testing.T) {
	f := newAuthFixture(t)

	_, _ = f.svc.SignUp(context.Background(), ports.SignUpInput{Email: "c@example.com", Password: "pass1234"})
	if _, err := f.svc.SignUp(context.Background(), ports.SignUpInput{Email: "C@example.com", Password: "other"}); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_SignIn_Success(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.signUpAndIn(t, "carol@example.com", "lawyer")

	if _, ok := f.sessions.sessions[tokens.RefreshToken]; !ok {
		t.Fatalf("refresh session not stored")
	}
	if f.limiter.resets != 1 {
		t.Fatalf("expected limiter reset, got %d", f.limiter.resets)
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokens.AccessToken, claims, func(*jwt.Token) (any, error) {
		return []byte("secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return f.clock }))
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	meta, _ := claims["user_metadata"].(map[string]any)
	if meta["role"] != "lawyer" {
		t.Fatalf("expected lawyer role in claims, got %v", claims["user_metadata"])
	}
}

func TestAuthService_SignIn_InvalidPassword(t *testing.T) {
	f := newAuthFixture(t)
	_, _ = f.svc.SignUp(context.Background(), ports.SignUpInput{Email: "dave@example.com", Password: "goodpass"})

	if _, _, err := f.svc.SignIn(context.Background(), "dave@example.com", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if f.limiter.failures != 1 {
		t.Fatalf("expected one recorded failure, got %d", f.limiter.failures)
	}
}

func TestAuthService_SignIn_UnknownUserLooksLikeBadPassword(t *testing.T) {
	f := newAuthFixture(t)

	if _, _, err := f.svc.SignIn(context.Background(), "ghost@example.com", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_SignIn_Throttled(t *testing.T) {
	f := newAuthFixture(t)
	f.limiter.blocked = true

	if _, _, err := f.svc.SignIn(context.Background(), "eve@example.com", "pass"); err != domain.ErrTooManyAttempts {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_CurrentUser_NoCookies(t *testing.T) {
	f := newAuthFixture(t)
	jar := &testJar{}

	user, err := f.svc.CurrentUser(context.Background(), jar)
	if err != nil || user != nil {
		t.Fatalf("expected anonymous, got %v %v", user, err)
	}
	if len(jar.out) != 0 {
		t.Fatalf("expected no cookie mutations, got %d", len(jar.out))
	}
}

func TestAuthService_CurrentUser_ValidAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.signUpAndIn(t, "frank@example.com", "mortgage_advisor")
	jar := sessionJar(tokens)

	user, err := f.svc.CurrentUser(context.Background(), jar)
	if err != nil {
		t.Fatalf("CurrentUser error: %v", err)
	}
	if user == nil || user.Email != "frank@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.RoleOrDefault() != domain.RoleMortgageAdvisor {
		t.Fatalf("unexpected role: %v", user.Metadata)
	}
	if len(jar.out) != 0 {
		t.Fatalf("valid token must not rewrite cookies")
	}
}

func TestAuthService_CurrentUser_RefreshesExpiredAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.signUpAndIn(t, "gila@example.com", "broker")
	f.clock = f.clock.Add(time.Hour)
	jar := sessionJar(tokens)

	user, err := f.svc.CurrentUser(context.Background(), jar)
	if err != nil {
		t.Fatalf("CurrentUser error: %v", err)
	}
	if user == nil || user.RoleOrDefault() != domain.RoleBroker {
		t.Fatalf("unexpected user: %+v", user)
	}

	access := jar.written(AccessCookie)
	refresh := jar.written(RefreshCookie)
	if access == nil || refresh == nil {
		t.Fatalf("expected refreshed cookies, got %+v", jar.out)
	}
	if access.Value == tokens.AccessToken || refresh.Value == tokens.RefreshToken {
		t.Fatalf("tokens were not rotated")
	}
	if !access.HttpOnly || access.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", access)
	}
	if grace, ok := f.sessions.retired[tokens.RefreshToken]; !ok || grace != 10*time.Second {
		t.Fatalf("old session not retired: %v", f.sessions.retired)
	}
}

func TestAuthService_CurrentUser_UnknownRefreshClearsCookies(t *testing.T) {
	f := newAuthFixture(t)
	jar := &testJar{in: []*http.Cookie{{Name: RefreshCookie, Value: "gone"}}}

	user, err := f.svc.CurrentUser(context.Background(), jar)
	if err != nil || user != nil {
		t.Fatalf("expected anonymous, got %v %v", user, err)
	}
	for _, name := range []string{AccessCookie, RefreshCookie} {
		c := jar.written(name)
		if c == nil || c.MaxAge >= 0 {
			t.Fatalf("expected %s to be cleared, got %+v", name, c)
		}
	}
}

func TestAuthService_CurrentUser_StoreFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.sessions.getErr = errors.New("connection refused")
	jar := &testJar{in: []*http.Cookie{{Name: RefreshCookie, Value: "token"}}}

	if _, err := f.svc.CurrentUser(context.Background(), jar); err == nil {
		t.Fatalf("expected error")
	}
	if len(jar.out) != 0 {
		t.Fatalf("store failure must not clear cookies")
	}
}

func TestAuthService_CurrentUser_ForgedToken(t *testing.T) {
	f := newAuthFixture(t)
	forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1", "iss": tokenIssuer, "exp": f.clock.Add(time.Hour).Unix(),
		"user_metadata": map[string]any{"role": "broker"},
	}).SignedString([]byte("not-the-secret"))
	jar := &testJar{in: []*http.Cookie{{Name: AccessCookie, Value: forged}}}

	user, err := f.svc.CurrentUser(context.Background(), jar)
	if !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if user != nil {
		t.Fatalf("expected no user")
	}
}

func TestAuthService_SignOut(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.signUpAndIn(t, "hila@example.com", "")

	if err := f.svc.SignOut(context.Background(), tokens.RefreshToken); err != nil {
		t.Fatalf("SignOut error: %v", err)
	}
	if _, ok := f.sessions.sessions[tokens.RefreshToken]; ok {
		t.Fatalf("session still present")
	}
}
