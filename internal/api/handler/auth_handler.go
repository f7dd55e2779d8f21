package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nadlan-invest/portal/internal/api/metrics"
	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/ports"
)

// DashboardResolver maps a role to its locale-prefixed dashboard URL.
type DashboardResolver interface {
	DashboardURL(locale domain.Locale, role domain.Role) string
}

type AuthHandler struct {
	authService ports.AuthService
	dashboards  DashboardResolver
	activity    ports.ActivityRecorder
	now         func() time.Time
}

func NewAuthHandler(authService ports.AuthService, dashboards DashboardResolver, activity ports.ActivityRecorder) *AuthHandler {
	return &AuthHandler{authService: authService, dashboards: dashboards, activity: activity, now: time.Now}
}

// SignUp creates an account and signs it in.
//
// @Summary      Create an account
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      signUpRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Success      303   {string}  string         "Form submission: redirect to onboarding"
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/auth/sign-up [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	form := isForm(c)
	locale := formLocale(c, req.Locale)
	if err := c.Validate(&req); err != nil {
		if form {
			return backToForm(c, locale, "/sign-up", "invalid_input", "")
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	ctx := c.Request().Context()
	user, err := h.authService.SignUp(ctx, ports.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		if form && isFormError(err) {
			return backToForm(c, locale, "/sign-up", formErrorCode(err), "")
		}
		return err
	}
	metrics.SignUpsTotal.WithLabelValues(string(user.RoleOrDefault())).Inc()
	h.record(user.ID, domain.ActivitySignedUp, "")

	tokens, user, err := h.authService.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	setCookies(c, h.authService.SessionCookies(tokens))

	if form {
		return c.Redirect(http.StatusSeeOther, "/"+string(locale)+"/onboarding")
	}
	return c.JSON(http.StatusCreated, h.authResponse(locale, user, tokens))
}

// SignIn authenticates with email and password and sets the session cookies.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Success      303   {string}  string         "Form submission: redirect to the requested page or the dashboard"
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/auth/sign-in [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	form := isForm(c)
	locale := formLocale(c, req.Locale)
	if err := c.Validate(&req); err != nil {
		if form {
			return backToForm(c, locale, "/sign-in", "invalid_input", req.Redirect)
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	tokens, user, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.SignInsTotal.WithLabelValues(signInResult(err)).Inc()
		if form && isFormError(err) {
			return backToForm(c, locale, "/sign-in", formErrorCode(err), req.Redirect)
		}
		return err
	}
	metrics.SignInsTotal.WithLabelValues("success").Inc()
	h.record(user.ID, domain.ActivitySignedIn, "")
	setCookies(c, h.authService.SessionCookies(tokens))

	if form {
		dashboard := h.dashboards.DashboardURL(locale, user.RoleOrDefault())
		return c.Redirect(http.StatusSeeOther, safeRedirect(req.Redirect, dashboard))
	}
	return c.JSON(http.StatusOK, h.authResponse(locale, user, tokens))
}

// SignOut ends the session and clears the session cookies.
//
// @Summary      Sign out
// @Tags         auth
// @Success      204
// @Success      303  {string}  string  "Form submission: redirect to sign-in"
// @Router       /api/auth/sign-out [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	if token := h.authService.RefreshTokenFrom(c.Cookies()); token != "" {
		if err := h.authService.SignOut(c.Request().Context(), token); err != nil {
			return err
		}
	}
	setCookies(c, h.authService.ClearCookies())

	if isForm(c) {
		return c.Redirect(http.StatusSeeOther, "/"+string(formLocale(c, c.FormValue("locale")))+"/sign-in")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the signed-in user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) authResponse(locale domain.Locale, user *domain.User, tokens *domain.Tokens) authResponse {
	return authResponse{
		User:            toUserResponse(user),
		Dashboard:       h.dashboards.DashboardURL(locale, user.RoleOrDefault()),
		AccessExpiresAt: tokens.AccessExpiresAt,
	}
}

func (h *AuthHandler) record(userID string, kind domain.ActivityKind, subject string) {
	h.activity.Enqueue(domain.Activity{UserID: userID, Kind: kind, Subject: subject, At: h.now().UTC()})
}

func setCookies(c echo.Context, cookies []*http.Cookie) {
	for _, ck := range cookies {
		c.SetCookie(ck)
	}
}

// backToForm sends a failed form submission back to its page with an error
// code the page can render.
func backToForm(c echo.Context, locale domain.Locale, page, code, redirect string) error {
	q := url.Values{"error": {code}}
	if redirect != "" {
		q.Set("redirect", redirect)
	}
	return c.Redirect(http.StatusSeeOther, "/"+string(locale)+page+"?"+q.Encode())
}

func isFormError(err error) bool {
	return formErrorCode(err) != ""
}

func formErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "too_many_attempts"
	case errors.Is(err, domain.ErrUserExists):
		return "user_exists"
	}
	return ""
}

func signInResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	}
	return "error"
}
