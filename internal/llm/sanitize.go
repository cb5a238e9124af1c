package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
)

const msgUnparseable = "Received an invalid JSON response from the AI. The AI's output could not be parsed, even after attempting to clean it. Please try again or check the file content."

var (
	// a fenced block: ```lang\n ... ``` where the tag is only taken when a newline follows it
	reFence         = regexp.MustCompile("(?s)^```(?:[A-Za-z0-9_+.-]*[ \\t]*\\r?\\n)?(.*?)\\s*```$")
	reTrailingComma = regexp.MustCompile(`,\s*([}\]])`)
	reLeadingComma  = regexp.MustCompile(`([{\[])\s*,`)
	reCommaRun      = regexp.MustCompile(`,\s*,`)
)

// Pass is one pure text repair applied to a service reply.
type Pass struct {
	Name  string
	Apply func(string) string
}

// Passes is the ordered repair pipeline run by Sanitize.
var Passes = []Pass{
	{Name: "strip_code_fence", Apply: StripCodeFence},
	{Name: "truncate_to_object", Apply: TruncateToObject},
	{Name: "drop_trailing_commas", Apply: DropTrailingCommas},
	{Name: "drop_leading_commas", Apply: DropLeadingCommas},
	{Name: "collapse_comma_runs", Apply: CollapseCommaRuns},
	{Name: "drop_trailing_commas", Apply: DropTrailingCommas},
	{Name: "drop_leading_commas", Apply: DropLeadingCommas},
	{Name: "trim", Apply: strings.TrimSpace},
}

// SanitizeReport lists the passes that changed the text and any warnings.
type SanitizeReport struct {
	Applied  []string
	Warnings []string
}

// Sanitize repairs near-JSON into text a strict JSON decoder should accept.
// Sanitize(Sanitize(x)) == Sanitize(x) for every x.
func Sanitize(raw string) (string, SanitizeReport) {
	var rep SanitizeReport
	s := raw
	for _, p := range Passes {
		next := p.Apply(s)
		if next != s {
			rep.Applied = append(rep.Applied, p.Name)
		}
		if p.Name == "truncate_to_object" && next != "" && !hasObjectSpan(next) {
			rep.Warnings = append(rep.Warnings, "no JSON object found in response")
		}
		s = next
	}
	return s, rep
}

// ParseResponse sanitizes a reply and decodes it. An empty reply decodes to
// the canonical empty record value.
func ParseResponse(raw string) (any, SanitizeReport, error) {
	clean, rep := Sanitize(raw)
	if clean == "" {
		return EmptyRecordValue(), rep, nil
	}
	var v any
	if err := json.Unmarshal([]byte(clean), &v); err != nil {
		return nil, rep, common.NewAppError(common.CodeResponse, msgUnparseable,
			fmt.Errorf("%w: %v", common.ErrUnparseableResponse, err))
	}
	return v, rep, nil
}

// EmptyRecordValue is the decoded form of a reply that carried no data.
func EmptyRecordValue() map[string]any {
	return map[string]any{
		constants.KeyFullName:       nil,
		constants.KeyEmail:          nil,
		constants.KeyPhoneNumber:    nil,
		constants.KeyWorkExperience: []any{},
	}
}

// StripCodeFence removes ``` wrappers (with optional language tag) for as long
// as the whole trimmed text is wrapped in one.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	for {
		m := reFence.FindStringSubmatch(s)
		if m == nil {
			return s
		}
		s = strings.TrimSpace(m[1])
	}
}

// TruncateToObject keeps the span from the first '{' to the last '}'.
// Text without such a span is returned unchanged.
func TruncateToObject(s string) string {
	first := strings.IndexByte(s, '{')
	last := strings.LastIndexByte(s, '}')
	if first == -1 || last <= first {
		return s
	}
	return s[first : last+1]
}

func hasObjectSpan(s string) bool {
	first := strings.IndexByte(s, '{')
	return first != -1 && strings.LastIndexByte(s, '}') > first
}

// DropTrailingCommas removes a comma (and following space) that precedes } or ].
func DropTrailingCommas(s string) string {
	return outsideStrings(s, func(seg string) string {
		return reTrailingComma.ReplaceAllString(seg, "${1}")
	})
}

// DropLeadingCommas removes a comma (and preceding space) that follows { or [.
func DropLeadingCommas(s string) string {
	return outsideStrings(s, func(seg string) string {
		return reLeadingComma.ReplaceAllString(seg, "${1}")
	})
}

// CollapseCommaRuns reduces ",  ,," style runs to one comma, to a fixed point.
func CollapseCommaRuns(s string) string {
	return outsideStrings(s, func(seg string) string {
		for {
			next := reCommaRun.ReplaceAllString(seg, ",")
			if next == seg {
				return seg
			}
			seg = next
		}
	})
}

// outsideStrings applies fn to every run of s that lies outside a JSON string
// literal. Literals, escapes included, are copied verbatim. An unterminated
// literal extends to the end of s.
func outsideStrings(s string, fn func(string) string) string {
	var b strings.Builder
	b.Grow(len(s))

	segStart := 0
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
				b.WriteString(s[segStart : i+1])
				segStart = i + 1
			}
			continue
		}
		if c == '"' {
			b.WriteString(fn(s[segStart:i]))
			segStart = i
			inString = true
		}
	}
	if inString {
		b.WriteString(s[segStart:])
	} else {
		b.WriteString(fn(s[segStart:]))
	}
	return b.String()
}
