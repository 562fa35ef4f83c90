// Package catalog turns upstream game documents into model.Game.
//
// Two upstream shapes exist. The LetterPlay backend sends the legacy
// Portuguese schema, usually wrapped as {"jogo": {...}, "status_jogo": ...}.
// External catalogs send IGDB-style objects (name, summary, cover.url,
// involved_companies, ...). Both are read with gjson so a field can be a
// string in one document and an object in another without a pile of
// intermediate structs.
//
// Fields fall back in order and a fallback is taken whenever the earlier
// value is missing, null, false, 0 or "".
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/sakif/letterplay/internal/model"
)

const (
	DefaultSummary = "Sem descrição disponível."
	UnknownCompany = "Desconhecido"

	// Ratings and metacritic scores are percentages.
	minScore = 0
	maxScore = 100
)

var (
	ErrEmpty     = errors.New("catalog: empty game document")
	ErrNotObject = errors.New("catalog: game document is not a JSON object")
)

// Normalize reads one game document. It fails only when raw is empty, null or
// not a JSON object; missing fields get their defaults instead.
func Normalize(raw []byte) (*model.Game, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ErrEmpty
	}
	if !gjson.ValidBytes(raw) {
		return nil, ErrNotObject
	}

	doc := gjson.ParseBytes(raw)
	if doc.Type == gjson.Null {
		return nil, ErrEmpty
	}
	if !doc.IsObject() {
		return nil, ErrNotObject
	}

	g := doc
	if jogo := doc.Get("jogo"); jogo.IsObject() {
		g = jogo
	}

	game := &model.Game{
		ID:          parseID(first(g, "id_jogo", "id")),
		Name:        first(g, "titulo", "name").String(),
		Summary:     first(g, "descricao", "summary").String(),
		Rating:      score(first(g, "nota_metacritic", "rating", "total_rating").Float()),
		CoverURL:    fixImage(first(g, "cover_url", "cover", "capa_url")),
		Screenshots: screenshots(g.Get("screenshots")),
		Genres:      genres(first(g, "generos", "genres")),
		Developer:   company(g, "developer", "desenvolvedora"),
		Publisher:   company(g, "publisher", "publicadora"),
		IsFavorite:  truthy(g.Get("is_favorite")),
		ReleaseDate: releaseDate(first(g, "data_lancamento", "first_release_date", "release_date")),
	}
	if game.Summary == "" {
		game.Summary = DefaultSummary
	}

	// A score that ends up at 0 reads back as missing, so it is dropped here.
	if m := first(g, "nota_metacritic", "metacritic", "metacritic_rating"); m.Exists() {
		if v := score(m.Float()); v > minScore {
			game.Metacritic = &v
		}
	}

	// The envelope's status wins; a canonical document carries it inline.
	status := doc.Get("status_jogo")
	if !truthy(status) {
		status = g.Get("user_status")
	}
	if truthy(status) {
		s := status.String()
		game.UserStatus = &s
	}

	validUTF8(game)
	return game, nil
}

// score rounds f and clamps it to [minScore, maxScore].
func score(f float64) int {
	switch {
	case math.IsNaN(f) || f <= minScore:
		return minScore
	case f >= maxScore:
		return maxScore
	}
	return int(math.Round(f))
}

// validUTF8 replaces invalid byte sequences with U+FFFD, so a game survives a
// trip through the JSON cache unchanged.
func validUTF8(g *model.Game) {
	fix := func(s string) string { return strings.ToValidUTF8(s, "\uFFFD") }

	g.Name = fix(g.Name)
	g.Summary = fix(g.Summary)
	g.CoverURL = fix(g.CoverURL)
	g.Developer = fix(g.Developer)
	g.Publisher = fix(g.Publisher)
	g.ReleaseDate = fix(g.ReleaseDate)
	for i := range g.Screenshots {
		g.Screenshots[i] = fix(g.Screenshots[i])
	}
	for i := range g.Genres {
		g.Genres[i] = fix(g.Genres[i])
	}
	if g.UserStatus != nil {
		s := fix(*g.UserStatus)
		g.UserStatus = &s
	}
}

// NormalizeGame feeds a canonical game back through Normalize. The result
// equals g for any value Normalize produced.
func NormalizeGame(g model.Game) model.Game {
	raw, err := json.Marshal(g)
	if err != nil {
		return g
	}
	out, err := Normalize(raw)
	if err != nil {
		return g
	}
	return *out
}

// truthy mirrors the loose truth test the upstream documents were written for.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0 && !math.IsNaN(r.Num)
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}

// first returns the first truthy value among keys, or an empty Result.
func first(g gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if r := g.Get(k); truthy(r) {
			return r
		}
	}
	return gjson.Result{}
}

func parseID(r gjson.Result) int64 {
	switch r.Type {
	case gjson.Number:
		return r.Int()
	case gjson.String:
		id, err := strconv.ParseInt(strings.TrimSpace(r.Str), 10, 64)
		if err != nil {
			return 0
		}
		return id
	}
	return 0
}

// fixImage accepts a URL string or an {"url": ...} object. IGDB serves
// protocol-relative thumbnails; they are made absolute and swapped for the
// larger renditions.
func fixImage(r gjson.Result) string {
	if !truthy(r) {
		return ""
	}
	url := r.String()
	if r.IsObject() {
		url = r.Get("url").String()
	}
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}
	url = strings.ReplaceAll(url, "t_thumb", "t_cover_big")
	url = strings.ReplaceAll(url, "t_screenshot_med", "t_screenshot_big")
	return url
}

func screenshots(r gjson.Result) []string {
	out := []string{}
	if !r.IsArray() {
		return out
	}
	for _, item := range r.Array() {
		if url := fixImage(item); url != "" {
			out = append(out, url)
		}
	}
	return out
}

func genres(r gjson.Result) []string {
	out := []string{}
	if !r.IsArray() {
		return out
	}
	for _, item := range r.Array() {
		var name string
		switch {
		case item.Type == gjson.String:
			name = item.Str
		case item.IsObject():
			name = first(item, "nome_genero", "name").String()
		}
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// company resolves a developer or publisher name. role is the IGDB key
// ("developer") and legacy the backend key ("desenvolvedora").
func company(g gjson.Result, role, legacy string) string {
	if r := g.Get(role); r.Type == gjson.String && r.Str != "" {
		return r.Str
	}
	if name := g.Get(legacy + ".nome"); truthy(name) {
		return name.String()
	}

	involved := g.Get("involved_companies")
	if involved.IsArray() {
		for _, c := range involved.Array() {
			if !truthy(c.Get(role)) {
				continue
			}
			if name := first(c, "company.name", "name"); truthy(name) {
				return name.String()
			}
			break
		}
	}
	return UnknownCompany
}

// releaseDate renders unix seconds as a UTC calendar date and passes strings
// through untouched.
func releaseDate(r gjson.Result) string {
	switch r.Type {
	case gjson.Number:
		return time.Unix(r.Int(), 0).UTC().Format(time.DateOnly)
	case gjson.String:
		return r.Str
	}
	return ""
}
