package query

import (
	"regexp"
	"strings"
)

// colorOrder is the canonical WUBRG ordering used for merged color tokens.
const colorOrder = "wubrg"

var singleColorToken = regexp.MustCompile(`(?i)^(?:c|color):([wubrg])$`)

// MergeColors collapses two or more distinct top-level single-color filters
// ("c:r c:g") into one multi-color filter ("c:rg") placed at the front of the
// query. Tokens inside parentheses, negated tokens and exact-color filters
// ("c=b") are left alone. With fewer than two distinct colors q is returned
// unchanged.
func MergeColors(q string) string {
	tokens := tokenize(q)

	seen := make(map[byte]bool, len(colorOrder))
	var colorIdx []int
	for i, tok := range tokens {
		if tok.depth != 0 {
			continue
		}
		m := singleColorToken.FindStringSubmatch(tok.text)
		if m == nil {
			continue
		}
		seen[strings.ToLower(m[1])[0]] = true
		colorIdx = append(colorIdx, i)
	}
	if len(seen) < 2 {
		return q
	}

	var merged strings.Builder
	merged.WriteString("c:")
	for i := 0; i < len(colorOrder); i++ {
		if seen[colorOrder[i]] {
			merged.WriteByte(colorOrder[i])
		}
	}

	drop := make(map[int]bool, len(colorIdx))
	for _, i := range colorIdx {
		drop[i] = true
	}
	out := make([]string, 0, len(tokens)-len(colorIdx)+1)
	out = append(out, merged.String())
	for i, tok := range tokens {
		if !drop[i] {
			out = append(out, tok.text)
		}
	}
	return strings.Join(out, " ")
}

type token struct {
	text  string
	depth int // paren depth before the token starts
}

// tokenize splits q on whitespace outside double quotes, tracking parenthesis
// depth outside quotes. Unbalanced quotes run to the end of the input.
func tokenize(q string) []token {
	var (
		tokens  []token
		cur     strings.Builder
		depth   int
		start   int
		inQuote bool
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, token{text: cur.String(), depth: start})
			cur.Reset()
		}
	}
	for _, r := range q {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
			continue
		}
		if cur.Len() == 0 {
			start = depth
		}
		cur.WriteRune(r)
		if inQuote {
			continue
		}
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
	}
	flush()
	return tokens
}
