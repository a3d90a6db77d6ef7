package parse

import (
	"regexp"
	"strings"
)

// prefixMinLen is the minimum length of a display name's first word for it
// to participate in prefix matching. Shorter first words are too common to
// match safely.
const prefixMinLen = 4

// FindAssetName finds a known asset display name in the message text.
//
// Two rules apply, case-insensitively: the full display name occurring
// verbatim in the text (exact), and the display name's first word occurring
// as a whole word (prefix), so "godzilla" matches "Godzilla (Premium)".
//
// Returns the matched name only when exactly one distinct name matched.
// Zero matches and ambiguous matches both return false: a wrong attachment
// is worse than no attachment.
func FindAssetName(text string, names []string) (string, bool) {
	textLower := strings.ToLower(text)

	var matched []string
	seen := make(map[string]bool)
	record := func(name string) {
		if !seen[name] {
			seen[name] = true
			matched = append(matched, name)
		}
	}

	for _, name := range names {
		nameLower := strings.ToLower(name)
		if nameLower == "" {
			continue
		}

		if strings.Contains(textLower, nameLower) {
			record(name)
			continue
		}

		firstWord := strings.Fields(nameLower)
		if len(firstWord) == 0 || len(firstWord[0]) < prefixMinLen {
			continue
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(firstWord[0]) + `\b`)
		if err != nil {
			continue
		}
		if re.MatchString(textLower) {
			record(name)
		}
	}

	if len(matched) == 1 {
		return matched[0], true
	}
	return "", false
}
