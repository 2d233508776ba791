package dict

import (
	"sort"
	"strings"
	"unicode"
)

// rule is one compiled replacement: the case-folded tokens of the key and
// the canonical value substituted for a match.
type rule struct {
	key    string
	tokens []string
	value  string
}

// token is one word of the input text with its byte span.
type token struct {
	start  int
	end    int
	folded string
}

// compileRules tokenizes and orders the replacement table. Longer phrases
// sort first so a short key cannot shadow a longer overlapping one; ties on
// token count fall back to key length, then lexicographic order, keeping
// the result deterministic regardless of map iteration.
func compileRules(replacements map[string]string) []rule {
	if len(replacements) == 0 {
		return nil
	}

	rules := make([]rule, 0, len(replacements))
	for key, value := range replacements {
		tokens := foldTokens(key)
		if len(tokens) == 0 {
			continue
		}
		rules = append(rules, rule{key: strings.ToLower(key), tokens: tokens, value: value})
	}

	sort.Slice(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if len(a.tokens) != len(b.tokens) {
			return len(a.tokens) > len(b.tokens)
		}
		if len(a.key) != len(b.key) {
			return len(a.key) > len(b.key)
		}
		return a.key < b.key
	})

	return rules
}

// Apply substitutes dictionary phrases in text. Matching is case-insensitive
// over whole tokens only, processed longest-phrase-first, and single-pass: a
// replaced span is never re-scanned by a later rule. Surrounding whitespace
// and punctuation are preserved.
func (c *Config) Apply(text string) string {
	if text == "" || len(c.rules) == 0 {
		return text
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return text
	}

	type match struct {
		first, last int
		value       string
	}

	consumed := make([]bool, len(tokens))
	var matches []match

	for _, r := range c.rules {
		n := len(r.tokens)
		for i := 0; i+n <= len(tokens); i++ {
			if spanConsumed(consumed[i : i+n]) {
				continue
			}
			if !tokensMatch(tokens[i:i+n], r.tokens) {
				continue
			}
			for j := i; j < i+n; j++ {
				consumed[j] = true
			}
			matches = append(matches, match{first: i, last: i + n - 1, value: r.value})
			i += n - 1
		}
	}

	if len(matches) == 0 {
		return text
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].first < matches[j].first
	})

	var out strings.Builder
	out.Grow(len(text))
	prev := 0
	for _, m := range matches {
		out.WriteString(text[prev:tokens[m.first].start])
		out.WriteString(m.value)
		prev = tokens[m.last].end
	}
	out.WriteString(text[prev:])

	return out.String()
}

func spanConsumed(span []bool) bool {
	for _, c := range span {
		if c {
			return true
		}
	}
	return false
}

func tokensMatch(window []token, want []string) bool {
	for i, w := range want {
		if window[i].folded != w {
			return false
		}
	}
	return true
}

// tokenize splits text into word tokens with byte offsets. A word is a run
// of letters, digits, or inner apostrophes, so "dbtx" is one token and a
// single-word key can never match inside it.
func tokenize(text string) []token {
	var tokens []token
	start := -1

	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, token{start: start, end: i, folded: strings.ToLower(text[start:i])})
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{start: start, end: len(text), folded: strings.ToLower(text[start:])})
	}

	return tokens
}

func foldTokens(phrase string) []string {
	raw := tokenize(phrase)
	out := make([]string, len(raw))
	for i, t := range raw {
		out[i] = t.folded
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
}
