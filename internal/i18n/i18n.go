// Package i18n resolves the visitor's language and prints page strings.
//
// Messages are registered in the x/text default catalog by the messages_*.go
// files; keys look like "page.reviews_title" or "alert.review_posted".
package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference.
	LangCookieName = "lp_lang"
)

var (
	BrazilianPortuguese = language.MustParse("pt-BR")
	AmericanEnglish     = language.MustParse("en-US")
)

var supportedTags = []language.Tag{
	BrazilianPortuguese,
	AmericanEnglish,
}

var tagMatcher = language.NewMatcher(supportedTags)

// Supported returns the list of supported language tags.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// Printer returns a message printer for the supplied tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// Resolver picks a supported language for a request.
type Resolver struct {
	fallback language.Tag
}

// NewResolver uses defaultLang when the request expresses no usable
// preference. An unsupported defaultLang falls back to pt-BR.
func NewResolver(defaultLang string) Resolver {
	tag, ok := ParseTag(defaultLang)
	if !ok {
		tag = BrazilianPortuguese
	}
	return Resolver{fallback: tag}
}

func (r Resolver) Default() language.Tag {
	return r.fallback
}

// Resolve checks the lang query param, then the cookie, then
// Accept-Language. The bool reports whether the query param should be
// persisted as a cookie.
func (r Resolver) Resolve(req *http.Request) (language.Tag, bool) {
	if req == nil {
		return r.fallback, false
	}

	if v := strings.TrimSpace(req.URL.Query().Get(LangParam)); v != "" {
		if tag, ok := ParseTag(v); ok {
			return tag, true
		}
	}

	if cookie, err := req.Cookie(LangCookieName); err == nil {
		if tag, ok := ParseTag(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(req.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			if _, idx, conf := tagMatcher.Match(tags...); conf != language.No {
				return supportedTags[idx], false
			}
		}
	}

	return r.fallback, false
}

// ParseTag maps value to a supported tag. "pt" and "en" match their regional
// variants.
func ParseTag(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Und, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Und, false
	}
	_, idx, conf := tagMatcher.Match(tag)
	if conf == language.No {
		return language.Und, false
	}
	return supportedTags[idx], true
}

// SetLanguageCookie persists the selected language on the response.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}
