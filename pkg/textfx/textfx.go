// Package textfx holds text transforms used by the game core: display names
// derived from ids, and the dialogue corruption shown at high burnout.
package textfx

import (
	"hash/fnv"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// DisplayName turns a content id such as "aunt_mae" or "dr-okafor" into
// "Aunt Mae" / "Dr Okafor".
func DisplayName(id string) string {
	fields := strings.FieldsFunc(id, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return ""
	}
	return titleCaser.String(strings.ToLower(strings.Join(fields, " ")))
}

// glitches replace whole words when dialogue corrupts. Keys are matched
// case-insensitively.
var glitches = map[string]string{
	"fine":     "f̷i̷n̷e̷",
	"okay":     "o k a y",
	"tired":    "tiiired",
	"later":    "...later",
	"busy":     "busybusy",
	"love":     "lo-",
	"tomorrow": "tomorrow tomorrow",
}

var wordRegex = regexp.MustCompile(`\p{L}+`)

// Corrupt degrades dialogue for the burnout tier that enables it. The output
// is deterministic for a given text and intensity so a moment re-renders
// identically. intensity is clamped to [0,1]; 0 returns text unchanged.
func Corrupt(text string, intensity float64) string {
	if intensity <= 0 || text == "" {
		return text
	}
	if intensity > 1 {
		intensity = 1
	}

	threshold := uint32(intensity * 100)
	return wordRegex.ReplaceAllStringFunc(text, func(word string) string {
		if replacement, ok := glitches[strings.ToLower(word)]; ok {
			return preserveCase(word, replacement)
		}
		if len(word) < 4 || roll(word) >= threshold {
			return word
		}
		return stutter(word)
	})
}

// roll maps a word onto [0,100) so corruption is stable per word.
func roll(word string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(word)))
	return h.Sum32() % 100
}

// stutter repeats the first letter: "really" -> "r-really".
func stutter(word string) string {
	r := []rune(word)
	return string(r[0]) + "-" + word
}

// preserveCase applies the case pattern of the original word to the replacement
func preserveCase(original, replacement string) string {
	if len(original) == 0 {
		return replacement
	}

	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}

	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}

	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// Mixed case: copy case rune by rune
	result := make([]rune, 0, len(replacement))
	originalRunes := []rune(original)
	for i, r := range []rune(replacement) {
		if i < len(originalRunes) && unicode.IsUpper(originalRunes[i]) {
			result = append(result, unicode.ToUpper(r))
		} else {
			result = append(result, unicode.ToLower(r))
		}
	}
	return string(result)
}
