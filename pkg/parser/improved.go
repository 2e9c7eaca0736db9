package parser

import (
	"regexp"
	"strings"

	"github.com/helmcode/sql-copilot/pkg/model"
)

const rationaleMarker = "-- rationale:"

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`(?m)--[^\n]*`)
	queryStartRe   = regexp.MustCompile(`(?i)\b(SELECT|WITH)\b`)
)

// ParseImprovedQuery decodes an improvement reply: a rationale line followed
// by one fenced code block holding the rewritten statement. The candidate is
// sanitized and must come out as a single read-only statement; otherwise
// ImprovedQuery is left empty and the caller must not execute anything.
func ParseImprovedQuery(raw string) *model.ImprovedQuery {
	out := &model.ImprovedQuery{RawResponse: raw}

	if i := strings.Index(raw, rationaleMarker); i >= 0 {
		rest := raw[i+len(rationaleMarker):]
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		out.Rationale = strings.TrimSpace(rest)
	}

	out.ImprovedQuery = SanitizeStatement(extractFence(raw))
	return out
}

// extractFence pulls the inner text of the first code fence, preferring a
// sql-tagged fence over a generic one.
func extractFence(raw string) string {
	start := strings.Index(raw, "```sql")
	if start < 0 {
		start = strings.Index(raw, "```")
	}
	if start < 0 {
		return ""
	}
	nl := strings.IndexByte(raw[start:], '\n')
	if nl < 0 {
		return ""
	}
	start += nl + 1
	end := strings.Index(raw[start:], "```")
	if end < 0 {
		return strings.TrimSpace(raw[start:])
	}
	return strings.TrimSpace(raw[start : start+end])
}

// SanitizeStatement enforces the single read-only statement contract:
// comments are stripped, everything before the first query-start keyword is
// discarded, the statement is truncated at the first terminator, and
// anything that still does not begin with SELECT or WITH is rejected.
// The execution step downstream assumes the result is side-effect free.
func SanitizeStatement(s string) string {
	s = blockCommentRe.ReplaceAllString(s, " ")
	s = lineCommentRe.ReplaceAllString(s, " ")

	loc := queryStartRe.FindStringIndex(s)
	if loc == nil {
		return ""
	}
	s = s[loc[0]:]
	if k := strings.IndexByte(s, ';'); k >= 0 {
		s = s[:k]
	}
	s = strings.TrimSpace(s)

	upper := strings.ToUpper(s)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return ""
	}
	return s
}
