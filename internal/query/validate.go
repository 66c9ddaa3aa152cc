package query

import (
	"regexp"
	"strings"
)

// Family is one of the primary filter-prefix families used to decide whether
// a translation is usable.
type Family string

const (
	FamilyColor  Family = "color"
	FamilyType   Family = "type"
	FamilyOracle Family = "oracle"
)

var familyPatterns = map[Family]*regexp.Regexp{
	FamilyColor:  regexp.MustCompile(`(?i)(^|[\s(-])(c|color|id|identity)(:|=|<=|>=|<|>|!=)`),
	FamilyType:   regexp.MustCompile(`(?i)(^|[\s(-])(t|type):`),
	FamilyOracle: regexp.MustCompile(`(?i)(^|[\s(-])(o|oracle):`),
}

// Families returns the prefix families present in q, in color/type/oracle order.
func Families(q string) []Family {
	var out []Family
	for _, f := range []Family{FamilyColor, FamilyType, FamilyOracle} {
		if familyPatterns[f].MatchString(q) {
			out = append(out, f)
		}
	}
	return out
}

// IsUsable reports whether q looks like a structured query: non-blank and
// carrying at least one color, type or oracle filter.
func IsUsable(q string) bool {
	if strings.TrimSpace(q) == "" {
		return false
	}
	return len(Families(q)) > 0
}

var (
	fencePattern = regexp.MustCompile("^```[a-zA-Z]*$")
	labelPattern = regexp.MustCompile(`(?i)^(?:scryfall(?: query)?|query|search)\s*:\s*`)
)

// ExtractQuery pulls the query line out of a model reply: code fences,
// leading labels, backticks and wrapping quotes are dropped. The first usable
// line wins, so a line of prose ahead of the query is skipped; when no line is
// usable the first non-empty one is returned. A blank reply yields "".
func ExtractQuery(reply string) string {
	first := ""
	for _, line := range strings.Split(reply, "\n") {
		line = cleanLine(line)
		if line == "" {
			continue
		}
		if IsUsable(line) {
			return line
		}
		if first == "" {
			first = line
		}
	}
	return first
}

func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || fencePattern.MatchString(line) {
		return ""
	}
	line = labelPattern.ReplaceAllString(line, "")
	line = strings.Trim(line, "`")
	line = strings.TrimSpace(line)
	if len(line) >= 2 && line[0] == '"' && line[len(line)-1] == '"' && strings.Count(line, `"`) == 2 {
		line = line[1 : len(line)-1]
	}
	return strings.TrimSpace(line)
}

// Canonicalize runs the deterministic post-processing on a model reply:
// extraction, slang normalization, then color merging.
func Canonicalize(reply string) string {
	return MergeColors(Normalize(ExtractQuery(reply)))
}
