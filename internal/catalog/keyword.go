package catalog

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks so accented card names ("Pokémon",
// "Flabébé") match their plain-ASCII spellings.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and removes diacritics.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// KeywordSearch matches records by case- and accent-insensitive substring
// matching over id, name, set code and collector number. All query tokens must
// match (AND semantics). Results are ordered by card ID.
func KeywordSearch(records []CardRecord, query string, limit int) []CardRecord {
	tokens := strings.Fields(Fold(query))
	if len(tokens) == 0 {
		return []CardRecord{}
	}

	var out []CardRecord
	for _, rec := range records {
		blob := Fold(strings.Join([]string{rec.ID, rec.Name, rec.SetCode, rec.CollectorNumber}, "\n"))
		ok := true
		for _, tok := range tokens {
			if !strings.Contains(blob, tok) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
