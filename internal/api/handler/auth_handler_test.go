package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/ports"
)

func signInOK(user *domain.User) func(context.Context, string, string) (*domain.Tokens, *domain.User, error) {
	return func(context.Context, string, string) (*domain.Tokens, *domain.User, error) {
		return testTokens(), user, nil
	}
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func responseCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestAuthHandler_SignUp_JSON(t *testing.T) {
	e := newEcho()
	activity := &recordingActivity{}
	stub := &stubAuthService{
		signUpFn: func(_ context.Context, in ports.SignUpInput) (*domain.User, error) {
			if in.Email != "dana@example.com" || in.Role != "broker" || in.FullName != "Dana" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return testUser("u-1", domain.RoleBroker), nil
		},
		signInFn: signInOK(testUser("u-1", domain.RoleBroker)),
	}
	h := NewAuthHandler(stub, stubDashboards{}, activity)

	body := `{"email":"dana@example.com","password":"correct-horse","full_name":"Dana","role":"broker"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-up", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.User.Role != domain.RoleBroker || resp.Dashboard != "/en/dashboard/broker" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if cookies := responseCookies(rec); cookies["re-access-token"] == nil || cookies["re-refresh-token"] == nil {
		t.Fatalf("session cookies not set")
	}
	if len(activity.entries) != 1 || activity.entries[0].Kind != domain.ActivitySignedUp {
		t.Fatalf("expected signed_up activity, got %+v", activity.entries)
	}
}

func TestAuthHandler_SignUp_ValidationFails(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{}, stubDashboards{}, &recordingActivity{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-up", strings.NewReader(`{"email":"nope","password":"short"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.SignUp(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestAuthHandler_SignUp_UserExistsForm(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		signUpFn: func(context.Context, ports.SignUpInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub, stubDashboards{}, &recordingActivity{})

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest("/api/auth/sign-up", url.Values{
		"email": {"dana@example.com"}, "password": {"correct-horse"}, "locale": {"he"},
	}), rec)

	if err := h.SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/he/sign-up?error=user_exists" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestAuthHandler_SignIn_JSON(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{signInFn: signInOK(testUser("u-2", domain.RoleMortgageAdvisor))}
	h := NewAuthHandler(stub, stubDashboards{}, &recordingActivity{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-in", strings.NewReader(`{"email":"a@example.com","password":"pw"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.SignIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Dashboard != "/en/dashboard/mortgage-advisor" {
		t.Fatalf("unexpected dashboard %q", resp.Dashboard)
	}
}

func TestAuthHandler_SignIn_JSONErrorsPropagate(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrTooManyAttempts} {
		e := newEcho()
		stub := &stubAuthService{
			signInFn: func(context.Context, string, string) (*domain.Tokens, *domain.User, error) {
				return nil, nil, want
			},
		}
		h := NewAuthHandler(stub, stubDashboards{}, &recordingActivity{})

		req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-in", strings.NewReader(`{"email":"a@example.com","password":"pw"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		if err := h.SignIn(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestAuthHandler_SignIn_FormRedirectsToRequestedPage(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{signInFn: signInOK(testUser("u-3", domain.RoleInvestor))}
	h := NewAuthHandler(stub, stubDashboards{}, &recordingActivity{})

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest("/api/auth/sign-in", url.Values{
		"email": {"a@example.com"}, "password": {"pw"}, "locale": {"he"}, "redirect": {"/he/properties?city=haifa"},
	}), rec)

	if err := h.SignIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/he/properties?city=haifa" {
		t.Fatalf("unexpected location %q", loc)
	}
	if len(responseCookies(rec)) != 2 {
		t.Fatalf("expected session cookies on redirect")
	}
}

func TestAuthHandler_SignIn_FormRejectsOffsiteRedirect(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{signInFn: signInOK(testUser("u-3", domain.RoleLawyer))}
	h := NewAuthHandler(stub, stubDashboards{}, &recordingActivity{})

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest("/api/auth/sign-in", url.Values{
		"email": {"a@example.com"}, "password": {"pw"}, "redirect": {"//evil.example/phish"},
	}), rec)

	if err := h.SignIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/en/dashboard/lawyer" {
		t.Fatalf("expected dashboard fallback, got %q", loc)
	}
}

func TestAuthHandler_SignIn_FormBadCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		signInFn: func(context.Context, string, string) (*domain.Tokens, *domain.User, error) {
			return nil, nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, stubDashboards{}, &recordingActivity{})

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest("/api/auth/sign-in", url.Values{
		"email": {"a@example.com"}, "password": {"bad"}, "redirect": {"/en/documents"},
	}), rec)

	if err := h.SignIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	want := "/en/sign-in?error=invalid_credentials&redirect=%2Fen%2Fdocuments"
	if loc := rec.Header().Get(echo.HeaderLocation); loc != want {
		t.Fatalf("expected %q, got %q", want, loc)
	}
	if len(responseCookies(rec)) != 0 {
		t.Fatalf("no cookies expected on failure")
	}
}

func TestAuthHandler_SignOut(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{}
	h := NewAuthHandler(stub, stubDashboards{}, &recordingActivity{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-out", nil)
	req.AddCookie(&http.Cookie{Name: "re-refresh-token", Value: "r-1"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.SignOut(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(stub.signedOut) != 1 || stub.signedOut[0] != "r-1" {
		t.Fatalf("session not revoked: %v", stub.signedOut)
	}
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge >= 0 {
			t.Fatalf("cookie %s not cleared", ck.Name)
		}
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{}, stubDashboards{}, &recordingActivity{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), rec)
	withUser(c, testUser("u-9", domain.RoleLawyer))

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != "u-9" || resp.Role != domain.RoleLawyer {
		t.Fatalf("unexpected user %+v", resp)
	}
}

func TestSafeRedirect(t *testing.T) {
	cases := map[string]string{
		"/en/properties":             "/en/properties",
		"/he/dashboard?tab=1":        "/he/dashboard?tab=1",
		"":                           "/fallback",
		"https://evil.example":       "/fallback",
		"//evil.example":             "/fallback",
		"/\\evil.example":            "/fallback",
		"relative/path":              "/fallback",
		"javascript:alert(1)":        "/fallback",
		"/en/reports/q1%3Fdraft%23x": "/en/reports/q1%3Fdraft%23x",
	}
	for in, want := range cases {
		if got := safeRedirect(in, "/fallback"); got != want {
			t.Fatalf("safeRedirect(%q) = %q, want %q", in, got, want)
		}
	}
}
