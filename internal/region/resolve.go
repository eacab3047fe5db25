package region

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/nurpe/licitaciones-portal/internal/model"
)

var index = buildIndex()

func buildIndex() map[string]model.RegionCode {
	idx := make(map[string]model.RegionCode, len(catalog)*5)
	add := func(raw string, code model.RegionCode) {
		if key := normalize(raw); key != "" {
			idx[key] = code
		}
	}
	for _, r := range catalog {
		add(r.Name, r.Code)
		add(r.APIName, r.Code)
		add(string(r.Code), r.Code)
		add(r.Numeral, r.Code)
		for _, alias := range aliases[r.Code] {
			add(alias, r.Code)
		}
	}
	return idx
}

// Resolve maps any backend spelling of a region to the catalog entry:
// display names with or without accents, compact API names, ISO codes,
// roman numerals and "Región de ..." prefixes.
func Resolve(raw string) (model.Region, bool) {
	key := normalize(raw)
	if key == "" {
		return model.Region{}, false
	}
	candidates := []string{key}
	for _, prefix := range []string{"dela", "del", "de"} {
		if rest := strings.TrimPrefix(key, prefix); rest != key && rest != "" {
			candidates = append(candidates, rest)
		}
	}
	for _, candidate := range candidates {
		if code, ok := index[candidate]; ok {
			return ByCode(code)
		}
	}
	return model.Region{}, false
}

// CodeOf is Resolve reduced to the join key, RegionUnknown when unresolved.
func CodeOf(raw string) model.RegionCode {
	if r, ok := Resolve(raw); ok {
		return r.Code
	}
	return model.RegionUnknown
}

func normalize(raw string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		raw,
	)
	if err != nil {
		stripped = raw
	}

	var b strings.Builder
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	key := b.String()
	if rest := strings.TrimPrefix(key, "region"); rest != "" {
		key = rest
	}
	return key
}
