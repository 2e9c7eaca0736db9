package parser

import (
	"regexp"
	"strings"
)

var (
	anyTagRe     = regexp.MustCompile(`</?[A-Za-z_][A-Za-z0-9_.:-]*(?:\s[^<>]*)?/?>`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// ExtractChatResponse pulls the assistant's answer out of a simplified-chat
// reply. Text between <response> tags is preferred; when the markers are
// absent the whole reply is returned with any stray markup cleaned off.
func ExtractChatResponse(raw string) string {
	if body, ok := FindSection(raw, "response"); ok {
		return StripTags(body)
	}
	return StripTags(raw)
}

// StripTags removes markup tags and CDATA wrappers from free text and
// collapses the leftover blank lines.
func StripTags(s string) string {
	s = strings.ReplaceAll(s, "<![CDATA[", "")
	s = strings.ReplaceAll(s, "]]>", "")
	s = anyTagRe.ReplaceAllString(s, "")
	s = blankLinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
