package llm

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/joseph-ayodele/resume-extractor/internal/entity"
)

const msgATSUnparsed = "Could not parse ATS match details."

var reFirstInt = regexp.MustCompile(`\d+`)

// ParseATSScore reads the first integer in a plain-text reply, clamped to 0..100.
func ParseATSScore(reply string) int {
	m := reFirstInt.FindString(reply)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		// more digits than an int holds
		return 100
	}
	return clampScore(n)
}

// ParseATSMatch decodes a detailed match reply. A reply that cannot be
// repaired into an object yields the zero match with an explanatory summary.
func ParseATSMatch(reply string) entity.ATSMatch {
	fallback := entity.ATSMatch{
		MatchedKeywords: []string{},
		MissingKeywords: []string{},
		Summary:         msgATSUnparsed,
	}

	clean, _ := Sanitize(reply)
	var obj map[string]any
	if clean == "" || json.Unmarshal([]byte(clean), &obj) != nil || obj == nil {
		return fallback
	}

	out := entity.ATSMatch{
		Score:           clampScore(score(obj["score"])),
		MatchedKeywords: stringList(obj["matchedKeywords"]),
		MissingKeywords: stringList(obj["missingKeywords"]),
	}
	if s, ok := obj["summary"].(string); ok {
		out.Summary = s
	}
	return out
}

func stringList(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clampScore(n int) int {
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	}
	return n
}
