package gatekeeper

import (
	"net/http"

	"golang.org/x/text/language"

	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/ports"
)

// LocaleCookie remembers the last locale the visitor browsed in.
const LocaleCookie = "locale"

const localeCookieMaxAge = 365 * 24 * 60 * 60

// LocaleRewriter performs internationalized routing ahead of authorization.
// It returns a redirect location when the request has to move to a
// locale-prefixed URL. Cookie mutations go through jar.
type LocaleRewriter interface {
	Rewrite(r *http.Request, jar ports.CookieJar) (location string, redirect bool)
}

// PrefixRewriter keeps every page URL under a locale prefix. Requests without
// one are redirected to the preferred locale: the locale cookie, then the
// Accept-Language header, then the default locale.
type PrefixRewriter struct {
	matcher language.Matcher
	locales []domain.Locale
	secure  bool
}

// NewPrefixRewriter returns a PrefixRewriter for the supported locales.
func NewPrefixRewriter(secureCookies bool) *PrefixRewriter {
	locales := domain.Locales()
	tags := make([]language.Tag, 0, len(locales))
	for _, l := range locales {
		tags = append(tags, language.MustParse(string(l)))
	}
	return &PrefixRewriter{
		matcher: language.NewMatcher(tags),
		locales: locales,
		secure:  secureCookies,
	}
}

// Rewrite keeps the path in its escaped form so encoded "?" and "#" survive
// the redirect.
func (p *PrefixRewriter) Rewrite(r *http.Request, jar ports.CookieJar) (string, bool) {
	path := r.URL.EscapedPath()
	if path == "" {
		path = "/"
	}

	if locale, _, prefixed := domain.SplitLocale(path); prefixed {
		if current, _ := cookieValue(jar.GetAll(), LocaleCookie); current != string(locale) {
			jar.SetAll([]*http.Cookie{p.localeCookie(locale)})
		}
		return "", false
	}

	target := "/" + string(p.preferred(r, jar))
	if path != "/" {
		target += path
	}
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	return target, true
}

func (p *PrefixRewriter) preferred(r *http.Request, jar ports.CookieJar) domain.Locale {
	if v, ok := cookieValue(jar.GetAll(), LocaleCookie); ok {
		if l, ok := domain.ParseLocale(v); ok {
			return l
		}
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		tags, _, err := language.ParseAcceptLanguage(header)
		if err == nil && len(tags) > 0 {
			if _, idx, conf := p.matcher.Match(tags...); conf != language.No {
				return p.locales[idx]
			}
		}
	}
	return domain.DefaultLocale
}

func (p *PrefixRewriter) localeCookie(l domain.Locale) *http.Cookie {
	return &http.Cookie{
		Name:     LocaleCookie,
		Value:    string(l),
		Path:     "/",
		MaxAge:   localeCookieMaxAge,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func cookieValue(cookies []*http.Cookie, name string) (string, bool) {
	for _, c := range cookies {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}
