package index

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultSearchLimit caps results when the caller passes no limit.
const DefaultSearchLimit = 20

const snippetRadius = 60

// queryTerms splits a free-text query into lower-cased terms. All terms
// must match for a lead to be returned.
func queryTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// likePattern builds a substring LIKE pattern for term, escaping the LIKE
// wildcards with a backslash.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

// matchExpr quotes each term as an FTS5 prefix query so punctuation in
// emails and phone numbers is not parsed as query syntax.
func matchExpr(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"*`
	}
	return strings.Join(quoted, " ")
}

// snippetAround returns the part of body around the first occurrence of
// term, with "..." marking cut ends.
func snippetAround(body, term string) string {
	at, n := indexLower(body, term)
	if at < 0 {
		at, n = 0, 0
	}
	start := max(0, at-snippetRadius)
	end := min(len(body), at+n+snippetRadius)
	for start > 0 && !utf8.RuneStart(body[start]) {
		start--
	}
	for end < len(body) && !utf8.RuneStart(body[end]) {
		end++
	}
	out := strings.Join(strings.Fields(body[start:end]), " ")
	if start > 0 {
		out = "..." + out
	}
	if end < len(body) {
		out += "..."
	}
	return out
}

// indexLower finds term, already lower-cased, in body by lowering body one
// rune at a time. It returns the byte offset and byte length of the match
// within body itself, since lowering can change a rune's encoded size.
func indexLower(body, term string) (int, int) {
	if term == "" {
		return 0, 0
	}
	for i := range body {
		if n, ok := hasLowerPrefix(body[i:], term); ok {
			return i, n
		}
	}
	return -1, 0
}

func hasLowerPrefix(s, term string) (int, bool) {
	n := 0
	for _, want := range term {
		r, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 || unicode.ToLower(r) != want {
			return 0, false
		}
		n += size
	}
	return n, true
}
