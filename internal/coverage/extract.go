package coverage

import (
	"strings"
	"unicode/utf8"
)

// ErrNoModelJSON is the message placed in the error payload when a model reply
// carries no parseable JSON object.
const ErrNoModelJSON = "Could not extract JSON from model output"

// ExtractFromText runs the pattern-based path over declaration-page text.
// Undetected fields are simply absent from the result.
func ExtractFromText(text string) CoverageResult {
	lines := splitLines(text)
	var a accumulator
	matchFields(lines, &a)
	segmentDrivers(lines, &a)
	segmentVehicles(lines, &a)
	return a.result()
}

// ExtractFromModelOutput normalizes the JSON object embedded in a model reply.
// It never fails: when no object can be parsed the result is an error payload
// holding the raw text.
func ExtractFromModelOutput(raw string) CoverageResult {
	obj, ok := parseModelJSON(raw)
	if !ok {
		return ErrorPayload(raw)
	}
	n := flattenWrappers(obj)
	n = normalizeKeys(n)
	n = normalizeValues(n, "")
	return n.(Object)
}

// ErrorPayload builds the {error, raw} result returned for unusable model output.
func ErrorPayload(raw string) CoverageResult {
	return Object{
		{Key: "error", Value: Text(ErrNoModelJSON)},
		{Key: "raw", Value: Text(raw)},
	}
}

// IsErrorPayload reports whether r is the result of ErrorPayload.
func IsErrorPayload(r CoverageResult) bool {
	v, ok := r.Get("error")
	if !ok {
		return false
	}
	s, ok := v.(Text)
	return ok && string(s) == ErrNoModelJSON
}

// parseModelJSON takes the text between the first '{' and the last '}' and
// decodes it as an object.
func parseModelJSON(raw string) (Object, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	n, err := ParseNode([]byte(raw[start : end+1]))
	if err != nil {
		return nil, false
	}
	obj, ok := n.(Object)
	return obj, ok
}

// splitLines breaks text on every line boundary Unicode text tools recognize:
// \n, \r, \r\n, \v, \f, the file/group/record separators, NEL, LS and PS.
// Empty lines are kept.
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i, r := range text {
		if !isLineBreak(r) {
			continue
		}
		if i < start {
			// \n of a \r\n pair, already consumed
			continue
		}
		lines = append(lines, text[start:i])
		start = i + utf8.RuneLen(r)
		if r == '\r' && start < len(text) && text[start] == '\n' {
			start++
		}
	}
	return append(lines, text[start:])
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
