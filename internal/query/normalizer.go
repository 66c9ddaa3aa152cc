package query

import (
	"regexp"
)

// RewriteRule maps one known model mistake or piece of slang onto canonical
// Scryfall syntax. Replacement is inserted literally.
type RewriteRule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

func rule(name, pattern, replacement string) RewriteRule {
	return RewriteRule{
		Name:        name,
		Pattern:     regexp.MustCompile(`(?i)` + pattern),
		Replacement: replacement,
	}
}

// rewriteRules run top to bottom, one pass each. Quoted and multi-word forms
// come before the bare keyword they contain, and no replacement may contain
// text that any rule matches: Normalize must stay idempotent.
var rewriteRules = []RewriteRule{
	// token phrasing
	rule("quoted-create-tokens", `\bo:"(?:create|creates|make|makes|summon|summons) tokens?"`, `o:token`),

	// quoted slang
	rule("quoted-etb", `\bo:"etb"`, `o:"enters the battlefield"`),
	rule("quoted-ltb", `\bo:"ltb"`, `o:"leaves the battlefield"`),
	rule("quoted-board-wipe", `\bo:"(?:board ?wipe|wipe)"`, `o:"destroy all"`),
	rule("quoted-draw-cards", `\bo:"draw cards"(?: cards\b)*`, `o:draw`),
	rule("quoted-mana-dork", `\bo:"mana dork"`, `o:"add {"`),
	rule("quoted-chump-blocker", `\bo:"chump ?blockers?"`, `type:creature o:defender`),

	// multi-word bare slang
	rule("board-wipe", `\bo:board ?wipe\b`, `o:"destroy all"`),
	rule("draw-cards", `\bo:draw(?: cards)+\b`, `o:draw`),
	rule("mana-dork", `\bo:mana dorks?\b`, `o:"add {"`),
	rule("chump-blocker", `\bo:chump ?blockers?\b`, `type:creature o:defender`),

	// single-word bare slang
	rule("etb", `\bo:etb\b`, `o:"enters the battlefield"`),
	rule("ltb", `\bo:ltb\b`, `o:"leaves the battlefield"`),
	rule("dies", `\bo:dies\b`, `o:"dies"`),
	rule("flicker", `\bo:(?:flicker|blink)\b`, `o:"exile" o:"return"`),
	rule("ramp", `\bo:ramp\b`, `o:"search your library" o:land`),
	rule("mill", `\bo:mill\b`, `o:"put the top" o:graveyard`),
	rule("discard", `\bo:discard\b`, `o:"discard"`),
	rule("lifegain", `\bo:lifegain\b`, `o:"gain life"`),
	rule("counterspell", `\bo:counterspells?\b`, `o:"counter target spell"`),
	rule("wrath", `\bo:wrath\b`, `o:"destroy all creatures"`),
	rule("wipe", `\bo:wipe\b`, `o:"destroy all"`),
	rule("bounce", `\bo:bounce\b`, `o:"return target" o:hand`),
	rule("fixing", `\bo:fixing\b`, `o:"add one mana of any color"`),
	rule("loot", `\bo:loot(?:ing)?\b`, `o:"draw a card" o:"discard a card"`),
	rule("cantrip", `\bo:cantrip\b`, `o:"draw a card"`),
	rule("tutor", `\bo:tutors?\b`, `o:"search your library"`),
	rule("reanimate", `\bo:(?:reanimate|reanimation|reanimator)\b`, `o:"return target creature card from your graveyard"`),
	rule("bolt", `\bo:bolt\b`, `o:"3 damage"`),
	rule("burn", `\bo:burn\b`, `o:damage`),

	// grammar repair
	rule("type-spell", `\b(?:type|t):spells?\b`, `(type:instant OR type:sorcery)`),
}

// Rules returns a copy of the ordered rewrite rules.
func Rules() []RewriteRule {
	out := make([]RewriteRule, len(rewriteRules))
	copy(out, rewriteRules)
	return out
}

// Normalize applies every rewrite rule once, in order. Input that matches no
// rule is returned unchanged.
func Normalize(q string) string {
	for _, r := range rewriteRules {
		q = r.Pattern.ReplaceAllLiteralString(q, r.Replacement)
	}
	return q
}
