package handler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nadlan-invest/portal/internal/api/middleware"
	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/ports"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func withUser(c echo.Context, u *domain.User) {
	c.Set(middleware.ContextKeyUser, u)
	c.Set(middleware.ContextKeyRole, u.RoleOrDefault())
}

func testUser(id string, role domain.Role) *domain.User {
	return &domain.User{ID: id, Email: id + "@example.com", Metadata: map[string]any{domain.MetadataRoleKey: string(role)}}
}

type stubDashboards struct{}

func (stubDashboards) DashboardURL(locale domain.Locale, role domain.Role) string {
	return "/" + string(locale) + "/dashboard/" + strings.ReplaceAll(string(role), "_", "-")
}

type recordingActivity struct {
	mu      sync.Mutex
	entries []domain.Activity
}

func (r *recordingActivity) Enqueue(a domain.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, a)
}

func (r *recordingActivity) Record(_ context.Context, a domain.Activity) error {
	r.Enqueue(a)
	return nil
}

func (r *recordingActivity) ListByUser(_ context.Context, userID string, _ int) ([]domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Activity
	for _, a := range r.entries {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

type stubAuthService struct {
	signUpFn  func(ctx context.Context, in ports.SignUpInput) (*domain.User, error)
	signInFn  func(ctx context.Context, email, password string) (*domain.Tokens, *domain.User, error)
	signedOut []string
}

func (s *stubAuthService) CurrentUser(context.Context, ports.CookieJar) (*domain.User, error) {
	return nil, nil
}

func (s *stubAuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.User, error) {
	return s.signUpFn(ctx, in)
}

func (s *stubAuthService) SignIn(ctx context.Context, email, password string) (*domain.Tokens, *domain.User, error) {
	return s.signInFn(ctx, email, password)
}

func (s *stubAuthService) SignOut(_ context.Context, refreshToken string) error {
	s.signedOut = append(s.signedOut, refreshToken)
	return nil
}

func (s *stubAuthService) SessionCookies(tokens *domain.Tokens) []*http.Cookie {
	return []*http.Cookie{
		{Name: "re-access-token", Value: tokens.AccessToken, Path: "/"},
		{Name: "re-refresh-token", Value: tokens.RefreshToken, Path: "/"},
	}
}

func (s *stubAuthService) ClearCookies() []*http.Cookie {
	return []*http.Cookie{
		{Name: "re-access-token", Path: "/", MaxAge: -1},
		{Name: "re-refresh-token", Path: "/", MaxAge: -1},
	}
}

func (s *stubAuthService) RefreshTokenFrom(cookies []*http.Cookie) string {
	for _, c := range cookies {
		if c.Name == "re-refresh-token" {
			return c.Value
		}
	}
	return ""
}

func testTokens() *domain.Tokens {
	return &domain.Tokens{
		AccessToken:      "access",
		AccessExpiresAt:  time.Date(2026, 1, 1, 0, 15, 0, 0, time.UTC),
		RefreshToken:     "refresh",
		RefreshExpiresAt: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

type stubPropertyService struct {
	createFn func(ctx context.Context, in ports.CreatePropertyInput) (*domain.Property, error)
	getFn    func(ctx context.Context, id string) (*domain.Property, error)
	listFn   func(ctx context.Context, f ports.ListPropertiesFilter) (*ports.ListPropertiesResult, error)
	updateFn func(ctx context.Context, in ports.UpdatePropertyStatusInput) (*domain.Property, error)
}

func (s *stubPropertyService) CreateProperty(ctx context.Context, in ports.CreatePropertyInput) (*domain.Property, error) {
	return s.createFn(ctx, in)
}

func (s *stubPropertyService) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	return s.getFn(ctx, id)
}

func (s *stubPropertyService) ListProperties(ctx context.Context, f ports.ListPropertiesFilter) (*ports.ListPropertiesResult, error) {
	return s.listFn(ctx, f)
}

func (s *stubPropertyService) UpdateStatus(ctx context.Context, in ports.UpdatePropertyStatusInput) (*domain.Property, error) {
	return s.updateFn(ctx, in)
}

type stubDocumentService struct {
	uploaded []string
	docs     map[string]domain.Document
	content  map[string]string
}

func (s *stubDocumentService) Upload(_ context.Context, ownerID, filename, contentType string, size int64, content io.Reader) (*domain.Document, error) {
	if size > domain.MaxDocumentSize {
		return nil, domain.ErrDocumentTooLarge
	}
	b, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	s.uploaded = append(s.uploaded, string(b))
	return &domain.Document{ID: "doc-1", OwnerID: ownerID, Filename: filename, ContentType: contentType, Size: int64(len(b))}, nil
}

func (s *stubDocumentService) List(_ context.Context, ownerID string) ([]domain.Document, error) {
	var out []domain.Document
	for _, d := range s.docs {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *stubDocumentService) Open(_ context.Context, id, ownerID string) (*domain.Document, io.ReadCloser, error) {
	d, ok := s.docs[id]
	if !ok {
		return nil, nil, domain.ErrDocumentNotFound
	}
	if d.OwnerID != ownerID {
		return nil, nil, domain.ErrForbidden
	}
	return &d, io.NopCloser(strings.NewReader(s.content[id])), nil
}
