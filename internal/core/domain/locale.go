package domain

import "strings"

// Locale is a supported UI language, encoded as the first path segment.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleHebrew  Locale = "he"
)

// DefaultLocale applies to every request without an explicit locale prefix.
const DefaultLocale = LocaleEnglish

// Locales lists the supported locales, default first.
func Locales() []Locale {
	return []Locale{LocaleEnglish, LocaleHebrew}
}

// ParseLocale reports whether s names a supported locale.
func ParseLocale(s string) (Locale, bool) {
	switch l := Locale(s); l {
	case LocaleEnglish, LocaleHebrew:
		return l, true
	}
	return "", false
}

// Direction returns the text direction used by the layout: "rtl" or "ltr".
func (l Locale) Direction() string {
	if l == LocaleHebrew {
		return "rtl"
	}
	return "ltr"
}

func (l Locale) String() string { return string(l) }

// SplitLocale extracts the locale prefix from a request path.
//
//	"/he/properties" → he, "/properties", true
//	"/en"            → en, "/",           true
//	"/properties"    → en, "/properties", false
//
// The match is purely textual and segment-bounded, so "/hebrew" is not a
// Hebrew path.
func SplitLocale(path string) (locale Locale, rest string, prefixed bool) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	seg := path[1:]
	tail := ""
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg, tail = seg[:i], seg[i:]
	}
	l, ok := ParseLocale(seg)
	if !ok {
		return DefaultLocale, path, false
	}
	if tail == "" {
		tail = "/"
	}
	return l, tail, true
}
