// Package query holds the natural-language to Scryfall query pipeline: the
// literal-name classifier, the translation contract handed to the language
// model, and the deterministic rewrites applied to whatever the model returns.
//
// Everything here is pure. Network calls live in the services package.
package query

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// defaultOperatorPatterns detect input that is already (partially) written in
// Scryfall syntax: color, type and oracle prefixes, and numeric comparisons on
// card stats.
var defaultOperatorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(^|[\s(-])(c|color|id|identity)(:|=|<=|>=|<|>|!=)`),
	regexp.MustCompile(`(?i)(^|[\s(-])(t|type):`),
	regexp.MustCompile(`(?i)(^|[\s(-])(o|oracle):`),
	regexp.MustCompile(`(?i)(^|[\s(-])(cmc|mv|manavalue|pow|power|tou|toughness|loy|loyalty)(:|=|<=|>=|<|>|!=)`),
}

// defaultKeywords is the domain vocabulary that marks a phrase as descriptive.
// Color words are deliberately absent so names like "Black Lotus" stay literal.
var defaultKeywords = []string{
	// card types
	"creature", "instant", "sorcery", "spell", "enchantment", "planeswalker",
	"artifact", "land", "token",
	// ability keywords
	"flying", "haste", "trample", "flash", "deathtouch", "lifelink", "vigilance",
	"menace", "reach", "hexproof", "indestructible", "first strike",
	"double strike", "defender", "ward",
	// effects
	"draw", "destroy", "counter", "discard", "sacrifice", "mill", "mana",
	"damage", "exile", "tutor", "ramp", "etb", "ltb", "bounce", "reanimate",
	"removal", "lifegain", "wipe",
	// zones
	"graveyard", "library", "battlefield",
	// quantifiers and archetypes
	"cheap", "expensive", "big", "small", "large", "mono", "tribal",
}

// ClassifierRules is the data that drives IsLikelyCardName. Operator patterns
// are checked first, then the single-word shortcut, then keyword membership.
type ClassifierRules struct {
	OperatorPatterns []*regexp.Regexp
	Keywords         []string
}

// DefaultRules returns the built-in rule set. extraKeywords are appended to
// the keyword vocabulary (lowercased, blanks dropped).
func DefaultRules(extraKeywords ...string) ClassifierRules {
	keywords := make([]string, 0, len(defaultKeywords)+len(extraKeywords))
	keywords = append(keywords, defaultKeywords...)
	for _, kw := range extraKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	patterns := make([]*regexp.Regexp, len(defaultOperatorPatterns))
	copy(patterns, defaultOperatorPatterns)
	return ClassifierRules{OperatorPatterns: patterns, Keywords: keywords}
}

// Classifier decides between the literal and the descriptive search path.
type Classifier struct {
	rules    ClassifierRules
	keywords map[string]struct{}
	phrases  []string
}

// NewClassifier builds a classifier from rules. Multi-word keywords are matched
// as phrases, single words by token membership.
func NewClassifier(rules ClassifierRules) *Classifier {
	c := &Classifier{
		rules:    rules,
		keywords: make(map[string]struct{}, len(rules.Keywords)),
	}
	for _, kw := range rules.Keywords {
		kw = Fold(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(kw, " ") {
			c.phrases = append(c.phrases, kw)
			continue
		}
		c.keywords[kw] = struct{}{}
	}
	return c
}

// IsLikelyCardName reports whether raw should be sent to the card search
// verbatim instead of being translated first.
func (c *Classifier) IsLikelyCardName(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return true
	}

	if c.HasOperatorSyntax(trimmed) {
		return false
	}

	if len(strings.Fields(trimmed)) == 1 {
		return true
	}

	return !c.HasKeyword(trimmed)
}

// HasOperatorSyntax reports whether s contains any structured-query operator.
func (c *Classifier) HasOperatorSyntax(s string) bool {
	for _, p := range c.rules.OperatorPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// HasKeyword reports whether s mentions a domain keyword. Tokens match a
// keyword exactly or in plural form ("creatures", "tokens").
func (c *Classifier) HasKeyword(s string) bool {
	folded := Fold(s)
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if c.isKeyword(w) {
			return true
		}
	}

	if len(c.phrases) > 0 {
		padded := " " + strings.Join(words, " ") + " "
		for _, p := range c.phrases {
			if strings.Contains(padded, " "+p+" ") {
				return true
			}
		}
	}
	return false
}

func (c *Classifier) isKeyword(word string) bool {
	if _, ok := c.keywords[word]; ok {
		return true
	}
	if base, ok := strings.CutSuffix(word, "es"); ok {
		if _, ok := c.keywords[base]; ok {
			return true
		}
	}
	if base, ok := strings.CutSuffix(word, "s"); ok {
		if _, ok := c.keywords[base]; ok {
			return true
		}
	}
	return false
}

var defaultClassifier = NewClassifier(DefaultRules())

// IsLikelyCardName classifies raw with the default rules.
func IsLikelyCardName(raw string) bool {
	return defaultClassifier.IsLikelyCardName(raw)
}

// Fold lowercases, strips diacritics and collapses whitespace so
// "Lim-Dûl" and "lim-dul" compare equal.
func Fold(s string) string {
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripAccents, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(folded), " ")
}
