package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var ErrInvalidTechStack = errors.New("invalid tech stack")

// TechStack accepts a JSON array of strings, or a string holding either a JSON array or a
// comma separated list.
type TechStack []string

func (t *TechStack) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ErrInvalidTechStack
	}
	switch b[0] {
	case '[':
		var items []string
		if err := json.Unmarshal(b, &items); err != nil {
			return ErrInvalidTechStack
		}
		*t = TechStack(cleanTechStack(items))
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return ErrInvalidTechStack
		}
		*t = TechStack(ParseTechStack(s))
		return nil
	default:
		return ErrInvalidTechStack
	}
}

// ParseTechStack decodes raw as a JSON array of strings and falls back to splitting on
// commas. Either way entries are sanitized and empty ones dropped. The result is never nil.
func ParseTechStack(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []string{}
	}

	if strings.HasPrefix(raw, "[") {
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return cleanTechStack(items)
		}
	}

	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = Sanitize(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func cleanTechStack(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = Sanitize(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
