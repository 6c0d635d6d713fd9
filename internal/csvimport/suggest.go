package csvimport

import (
	"strings"

	"github.com/pkordes/masjid-admin/internal/domain"
)

// aliases rewrite common spellings of prayer names to the import schema's.
var aliases = map[string]string{
	"zuhr":    "dhur",
	"zohr":    "dhur",
	"dhuhr":   "dhur",
	"duhr":    "dhur",
	"thuhr":   "dhur",
	"maghrib": "magrib",
	"mughrib": "magrib",
	"ishaa":   "isha",
	"esha":    "isha",
	"fajar":   "fajr",
	"subh":    "fajr",
	"shuruq":  "sunrise",
	"shurooq": "sunrise",
	"jamaat":  "jammat",
	"jamat":   "jammat",
	"jamah":   "jammat",
	"jamaah":  "jammat",
	"iqamah":  "jammat",
	"iqama":   "jammat",
	"iqamat":  "jammat",
	"begins":  "start",
	"begin":   "start",
	"adhan":   "start",
	"athan":   "start",
	"azan":    "start",
	"starts":  "start",
}

// normalize lower-cases a header, splits it on anything that is not a
// letter or digit, applies aliases and joins the words with underscores.
func normalize(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for i, w := range words {
		if a, ok := aliases[w]; ok {
			words[i] = a
		}
	}
	return strings.Join(words, "_")
}

// Suggest proposes a header for each import field that is not yet mapped,
// matching on normalized names. Headers already used by the mapping are not
// offered again. Suggestions are advisory; nothing is assigned.
func Suggest(headers []string, mapping map[string]string) map[string]string {
	used := make(map[string]bool, len(mapping))
	for _, h := range mapping {
		used[h] = true
	}

	byName := make(map[string]string, len(headers))
	for _, h := range headers {
		n := normalize(h)
		if _, taken := byName[n]; !taken && !used[h] {
			byName[n] = h
		}
	}

	out := make(map[string]string)
	fields := append(append([]string{}, domain.RequiredImportFields...), domain.OptionalImportFields...)
	for _, f := range fields {
		if mapping[f] != "" {
			continue
		}
		if h, ok := byName[f]; ok {
			out[f] = h
			delete(byName, f)
		}
	}
	return out
}

// Suggest runs Suggest over the session's headers and current mapping.
func (s *Session) Suggest() map[string]string {
	return Suggest(s.Headers, s.Mapping)
}
