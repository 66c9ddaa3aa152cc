package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`type:creature o:etb`, `type:creature o:"enters the battlefield"`},
		{`type:creature O:ETB`, `type:creature o:"enters the battlefield"`},
		{`o:"etb" c:w`, `o:"enters the battlefield" c:w`},
		{`o:ltb`, `o:"leaves the battlefield"`},
		{`c:b o:"create tokens"`, `c:b o:token`},
		{`c:b o:"makes tokens"`, `c:b o:token`},
		{`o:"summon tokens"`, `o:token`},
		{`c:w o:board wipe`, `c:w o:"destroy all"`},
		{`o:"board wipe"`, `o:"destroy all"`},
		{`o:wipe`, `o:"destroy all"`},
		{`o:draw cards`, `o:draw`},
		{`o:"draw cards"`, `o:draw`},
		{`o:draw cards cards`, `o:draw`},
		{`o:"draw cards" cards cards`, `o:draw`},
		{`o:draw cardsmith`, `o:draw cardsmith`},
		{`o:dies`, `o:"dies"`},
		{`o:flicker`, `o:"exile" o:"return"`},
		{`o:blink type:creature`, `o:"exile" o:"return" type:creature`},
		{`c:g o:ramp`, `c:g o:"search your library" o:land`},
		{`o:mill`, `o:"put the top" o:graveyard`},
		{`o:discard`, `o:"discard"`},
		{`o:lifegain`, `o:"gain life"`},
		{`o:mana dork`, `o:"add {"`},
		{`o:counterspell`, `o:"counter target spell"`},
		{`c:w o:wrath cmc<=4`, `c:w o:"destroy all creatures" cmc<=4`},
		{`c:u o:bounce`, `c:u o:"return target" o:hand`},
		{`o:fixing`, `o:"add one mana of any color"`},
		{`o:loot`, `o:"draw a card" o:"discard a card"`},
		{`o:cantrip`, `o:"draw a card"`},
		{`c:b o:tutor`, `c:b o:"search your library"`},
		{`o:reanimate`, `o:"return target creature card from your graveyard"`},
		{`o:"chump blocker"`, `type:creature o:defender`},
		{`o:bolt`, `o:"3 damage"`},
		{`c:r o:burn`, `c:r o:damage`},
		{`c:r type:spell`, `c:r (type:instant OR type:sorcery)`},
		{`-o:etb`, `-o:"enters the battlefield"`},

		// untouched
		{``, ``},
		{`(c:u OR c:b) type:creature o:flying`, `(c:u OR c:b) type:creature o:flying`},
		{`o:millstone`, `o:millstone`},
		{`o:"draw two cards"`, `o:"draw two cards"`},
		{`Sol Ring`, `Sol Ring`},
		{`foo:etb`, `foo:etb`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		`type:creature o:etb`,
		`o:"create tokens" o:etb o:ltb o:dies`,
		`o:"draw cards" cards`,
		`o:draw cards cards`,
		`o:"draw cards" cards cards`,
		`o:draw cards cards cardsmith`,
		`c:w o:board wipe o:wipe o:wrath`,
		`o:flicker o:blink o:ramp o:mill o:discard o:lifegain`,
		`o:mana dork o:counterspell o:bounce o:fixing o:loot o:cantrip`,
		`o:tutor o:reanimate o:chump blocker o:bolt o:burn type:spell`,
		`(c:u OR c:b) type:creature o:flying`,
		`c=b type:creature o:deathtouch`,
		`nothing to see here`,
		``,
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize not idempotent for %q", in)
	}
}

// Every replacement must already be canonical; otherwise a second pass would
// rewrite it again.
func TestRules_ReplacementsAreFixedPoints(t *testing.T) {
	for _, r := range Rules() {
		assert.Equal(t, r.Replacement, Normalize(r.Replacement), "rule %s", r.Name)
	}
}

func TestRules_ReturnsCopy(t *testing.T) {
	rules := Rules()
	rules[0].Replacement = "tampered"
	assert.NotEqual(t, "tampered", Rules()[0].Replacement)
}
