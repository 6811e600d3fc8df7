package knowledge

import "unicode"

// Tokenize breaks a query into retrieval tokens: every CJK ideograph
// becomes a single-character token, and ASCII letter/digit runs longer
// than one character become whole-word tokens. Everything else is a
// separator.
func Tokenize(query string) []string {
	var tokens []string
	seen := make(map[string]struct{})

	add := func(token string) {
		if _, ok := seen[token]; ok {
			return
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}

	var run []rune
	flush := func() {
		if len(run) > 1 {
			add(string(run))
		}
		run = run[:0]
	}

	for _, r := range query {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			add(string(r))
		case isASCIIAlnum(r):
			run = append(run, unicode.ToLower(r))
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func isASCIIAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}
