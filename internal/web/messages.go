package web

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/nadlan-invest/portal/internal/core/domain"
)

// messages is the source of the UI catalog. Missing Hebrew entries fall
// back to English, missing keys render as the key itself.
var messages = map[domain.Locale]map[string]string{
	domain.LocaleEnglish: {
		"brand":                     "Nadlan Invest",
		"home.title":                "Invest in Israeli real estate",
		"home.lead":                 "Browse vetted listings, work with brokers, lawyers and mortgage advisors in one place.",
		"nav.properties":            "Properties",
		"nav.documents":             "Documents",
		"nav.dashboard":             "Dashboard",
		"nav.sign_in":               "Sign in",
		"nav.sign_up":               "Create account",
		"nav.sign_out":              "Sign out",
		"form.email":                "Email",
		"form.password":             "Password",
		"form.full_name":            "Full name",
		"form.role":                 "I am a",
		"form.submit_sign_in":       "Sign in",
		"form.submit_sign_up":       "Create account",
		"sign_in.title":             "Sign in",
		"sign_up.title":             "Create your account",
		"onboarding.title":          "Welcome aboard",
		"onboarding.lead":           "Tell our assistant about your goals and we will tailor the marketplace to you.",
		"dashboard.title":           "Dashboard",
		"dashboard.activity":        "Recent activity",
		"properties.title":          "Properties",
		"properties.empty":          "No listings match your search.",
		"documents.title":           "My documents",
		"documents.upload":          "Upload",
		"documents.empty":           "You have not uploaded any documents yet.",
		"role.investor":             "Investor",
		"role.broker":               "Broker",
		"role.lawyer":               "Lawyer",
		"role.mortgage_advisor":     "Mortgage advisor",
		"error.invalid_credentials": "Wrong email or password.",
		"error.too_many_attempts":   "Too many attempts. Try again later.",
		"error.user_exists":         "An account with this email already exists.",
		"error.invalid_input":       "Please check the highlighted fields.",
		"status.available":          "Available",
		"status.under_offer":        "Under offer",
		"status.sold":               "Sold",
		"status.withdrawn":          "Withdrawn",
		"language.switch":           "עברית",
	},
	domain.LocaleHebrew: {
		"brand":                     "נדל״ן השקעות",
		"home.title":                "השקעה בנדל״ן בישראל",
		"home.lead":                 "נכסים נבחרים, מתווכים, עורכי דין ויועצי משכנתאות במקום אחד.",
		"nav.properties":            "נכסים",
		"nav.documents":             "מסמכים",
		"nav.dashboard":             "לוח בקרה",
		"nav.sign_in":               "התחברות",
		"nav.sign_up":               "הרשמה",
		"nav.sign_out":              "התנתקות",
		"form.email":                "דוא״ל",
		"form.password":             "סיסמה",
		"form.full_name":            "שם מלא",
		"form.role":                 "אני",
		"form.submit_sign_in":       "התחברות",
		"form.submit_sign_up":       "יצירת חשבון",
		"sign_in.title":             "התחברות",
		"sign_up.title":             "יצירת חשבון",
		"onboarding.title":          "ברוכים הבאים",
		"onboarding.lead":           "ספרו לעוזר שלנו על המטרות שלכם ונתאים עבורכם את השוק.",
		"dashboard.title":           "לוח בקרה",
		"dashboard.activity":        "פעילות אחרונה",
		"properties.title":          "נכסים",
		"properties.empty":          "לא נמצאו נכסים מתאימים.",
		"documents.title":           "המסמכים שלי",
		"documents.upload":          "העלאה",
		"documents.empty":           "עדיין לא העליתם מסמכים.",
		"role.investor":             "משקיע",
		"role.broker":               "מתווך",
		"role.lawyer":               "עורך דין",
		"role.mortgage_advisor":     "יועץ משכנתאות",
		"error.invalid_credentials": "דוא״ל או סיסמה שגויים.",
		"error.too_many_attempts":   "יותר מדי ניסיונות. נסו שוב מאוחר יותר.",
		"error.user_exists":         "כבר קיים חשבון עם כתובת זו.",
		"error.invalid_input":       "נא לבדוק את השדות המסומנים.",
		"status.available":          "זמין",
		"status.under_offer":        "בהצעה",
		"status.sold":               "נמכר",
		"status.withdrawn":          "הוסר",
		"language.switch":           "English",
	},
}

// printers holds one catalog-backed printer per supported locale.
var printers = newPrinters(messages)

func newPrinters(src map[domain.Locale]map[string]string) map[domain.Locale]*message.Printer {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, l := range domain.Locales() {
		tag := language.MustParse(string(l))
		for key, msg := range src[domain.DefaultLocale] {
			if _, ok := src[l][key]; !ok {
				_ = b.SetString(tag, key, msg)
			}
		}
		for key, msg := range src[l] {
			_ = b.SetString(tag, key, msg)
		}
	}

	out := make(map[domain.Locale]*message.Printer, len(src))
	for _, l := range domain.Locales() {
		out[l] = message.NewPrinter(language.MustParse(string(l)), message.Catalog(b))
	}
	return out
}

// Translate returns the UI string for key in locale. Unknown keys print as
// themselves.
func Translate(locale domain.Locale, key string) string {
	p, ok := printers[locale]
	if !ok {
		p = printers[domain.DefaultLocale]
	}
	return p.Sprintf(key)
}
