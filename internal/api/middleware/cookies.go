package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// echoCookieJar exposes the request cookies and writes mutations onto the
// response headers of the same echo context, so they reach the client with
// whatever response is eventually sent, redirects included.
type echoCookieJar struct {
	c echo.Context
}

func newCookieJar(c echo.Context) *echoCookieJar { return &echoCookieJar{c: c} }

func (j *echoCookieJar) GetAll() []*http.Cookie { return j.c.Cookies() }

func (j *echoCookieJar) SetAll(cookies []*http.Cookie) {
	for _, ck := range cookies {
		j.c.SetCookie(ck)
	}
}
