package ai

import (
	"strings"

	"github.com/tidwall/gjson"

	apperrors "rezeptapp/internal/errors"
)

// StripCodeFence removes a surrounding markdown code fence, with or without a
// language tag.
func StripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseObject parses a JSON object from model output. Failures carry the raw
// text so the caller can diagnose the response.
func ParseObject(content string) (gjson.Result, error) {
	body := StripCodeFence(content)
	if !gjson.Valid(body) {
		return gjson.Result{}, apperrors.Upstream("AI provider returned invalid JSON", content, nil)
	}
	res := gjson.Parse(body)
	if !res.IsObject() {
		return gjson.Result{}, apperrors.Upstream("AI provider returned invalid JSON", content, nil)
	}
	return res, nil
}

// TextBlock reads a field that may be a string or an array of strings and
// returns a newline-delimited block.
func TextBlock(v gjson.Result) string {
	if v.IsArray() {
		lines := make([]string, 0, len(v.Array()))
		for _, item := range v.Array() {
			lines = append(lines, item.String())
		}
		return strings.Join(lines, "\n")
	}
	return v.String()
}

// StringList reads an array of strings. Non-arrays yield an empty list.
func StringList(v gjson.Result) []string {
	out := []string{}
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		out = append(out, item.String())
	}
	return out
}
