package prompts

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/helmcode/sql-copilot/pkg/bundle"
	"github.com/helmcode/sql-copilot/pkg/model"
)

// RequestKind selects the instruction paragraph appended to a request.
type RequestKind int

const (
	// RequestAnalyze asks for an initial structured diagnosis.
	RequestAnalyze RequestKind = iota
	// RequestImprove asks for a first rewritten query.
	RequestImprove
	// RequestImproveRecursive asks for a further rewrite that accounts for
	// all earlier iterations.
	RequestImproveRecursive
)

// sectionOrder is the fixed envelope layout. Every request carries all seven
// sections, in this order, even when a section is empty: the model must be
// able to tell "field present but empty" from "no such field".
var sectionOrder = []string{"query", "explain", "logs", "schema", "stats", "config", "system"}

// EncodeBundle renders a bundle as the <database_info> request envelope.
func EncodeBundle(b bundle.Bundle) string {
	fields := map[string]string{
		"query":   b.Query,
		"explain": b.Explain,
		"logs":    b.Logs,
		"schema":  b.Schema,
		"stats":   b.Stats,
		"config":  b.Config,
		"system":  b.System,
	}

	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sb.WriteString("<database_info>\n")
	for _, tag := range sectionOrder {
		text := strings.TrimSpace(fields[tag])
		if text == "" {
			fmt.Fprintf(&sb, "<%s></%s>\n", tag, tag)
			continue
		}
		fmt.Fprintf(&sb, "<%s>\n%s\n</%s>\n", tag, text, tag)
	}
	sb.WriteString("</database_info>")
	return sb.String()
}

// ReconstructDiagnosis rebuilds a structured diagnosis block from a typed
// Diagnosis. Used as prior-round context when the raw model reply was not
// retained; the output parses back through the normal decoder with the same
// findings, order and attributes.
func ReconstructDiagnosis(d *model.Diagnosis) string {
	if d == nil {
		return ""
	}
	var lines []string
	lines = append(lines, "<diagnosis>")
	if d.Reasoning != "" {
		lines = append(lines, "  <reasoning>\n    <![CDATA[\n"+d.Reasoning+"\n    ]]>\n  </reasoning>")
	}
	if len(d.Bottlenecks) > 0 {
		lines = append(lines, "  <bottlenecks>")
		for _, b := range d.Bottlenecks {
			lines = append(lines, fmt.Sprintf("    <bottleneck type=%q severity=%q>%s</bottleneck>", b.Type, b.Severity, b.Description))
		}
		lines = append(lines, "  </bottlenecks>")
	}
	if len(d.RootCauses) > 0 {
		lines = append(lines, "  <root_causes>")
		for _, c := range d.RootCauses {
			lines = append(lines, fmt.Sprintf("    <root_cause type=%q>%s</root_cause>", c.Type, c.Description))
		}
		lines = append(lines, "  </root_causes>")
	}
	if len(d.Recommendations) > 0 {
		lines = append(lines, "  <recommendations>")
		for _, r := range d.Recommendations {
			lines = append(lines, fmt.Sprintf("    <recommendation type=%q priority=%q>%s</recommendation>", r.Type, r.Priority, r.Description))
		}
		lines = append(lines, "  </recommendations>")
	}
	if len(d.Comments) > 0 {
		lines = append(lines, "  <comments>")
		for _, c := range d.Comments {
			lines = append(lines, "    <comment>"+c+"</comment>")
		}
		lines = append(lines, "  </comments>")
	}
	lines = append(lines, "</diagnosis>")
	return strings.Join(lines, "\n")
}

// HistoryLine summarizes one iteration as a single prompt line.
func HistoryLine(rec model.IterationRecord) string {
	elapsed := "n/a"
	if rec.ElapsedMS != nil {
		elapsed = fmt.Sprintf("%.2f ms", *rec.ElapsedMS)
	}
	q := truncate(strings.Join(strings.Fields(rec.Query), " "), 100)
	return fmt.Sprintf("iteration %d [%s] elapsed=%s query: %s", rec.Iteration, rec.Kind, elapsed, q)
}

// truncate shortens s to at most n runes, never splitting a multi-byte rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// FormatHistory renders the iteration history context block, one line per
// prior record. Returns "" when there is no history worth mentioning.
func FormatHistory(records []model.IterationRecord) string {
	if len(records) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("<!-- iteration_history -->\n")
	for _, rec := range records {
		sb.WriteString(HistoryLine(rec))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

const improveInstruction = `Given the provided <database_info> and optional <diagnosis> context, propose an improved SQL query that is semantically equivalent but more efficient based on the provided schema, stats, plans, logs, and recommendations.

Strict output constraints:
- Propose exactly ONE rewritten query.
- The query must be a single read-only statement (SELECT or WITH). No INSERT/UPDATE/DELETE, no DDL, no schema changes.
- Put no comments or prose inside the code block.

Respond in this exact format only:

<improved>
-- rationale: one or two sentences explaining the key changes
` + "```sql\n<your improved SQL here>\n```" + `
</improved>`

const recursiveInstruction = `Given the provided <database_info>, the <diagnosis> context, and the iteration history above, propose a FURTHER improved SQL query. Consider all previous iterations: keep what made earlier rewrites faster and target bottlenecks that have not been addressed yet. The query must remain semantically equivalent to the original.

Strict output constraints:
- Propose exactly ONE rewritten query.
- The query must be a single read-only statement (SELECT or WITH). No INSERT/UPDATE/DELETE, no DDL, no schema changes.
- Put no comments or prose inside the code block.

Respond in this exact format only:

<improved>
-- rationale: one or two sentences explaining the key changes
` + "```sql\n<your improved SQL here>\n```" + `
</improved>`

const analyzeInstruction = `Analyze the database information above and respond with your structured diagnosis.`

// BuildAnalyzeRequest encodes a bundle for an initial diagnosis call.
func BuildAnalyzeRequest(b bundle.Bundle) string {
	return EncodeBundle(b) + "\n\n" + analyzeInstruction
}

// BuildImproveRequest encodes a bundle plus prior-round context for a
// query-improvement call. The verbatim raw diagnosis reply is preferred as
// context; when absent, an equivalent block is reconstructed from the typed
// diagnosis so the context survives either way.
func BuildImproveRequest(b bundle.Bundle, priorRaw string, prior *model.Diagnosis, history []model.IterationRecord, kind RequestKind) string {
	parts := []string{EncodeBundle(b)}

	if strings.Contains(priorRaw, "<diagnosis>") {
		parts = append(parts, "<!-- prior_diagnosis -->\n"+strings.TrimSpace(priorRaw))
	} else if prior != nil {
		parts = append(parts, "<!-- prior_diagnosis -->\n"+ReconstructDiagnosis(prior))
	}

	if h := FormatHistory(history); h != "" {
		parts = append(parts, h)
	}

	switch kind {
	case RequestImproveRecursive:
		parts = append(parts, recursiveInstruction)
	default:
		parts = append(parts, improveInstruction)
	}
	return strings.Join(parts, "\n\n")
}

// ChatPair is one earlier (user, assistant) exchange in the simplified chat
// protocol.
type ChatPair struct {
	User     string
	Response string
}

// BuildChatRequest encodes prior exchanges plus the new message for the
// free-form chat session.
func BuildChatRequest(pairs []ChatPair, message string) string {
	var sb strings.Builder
	for _, p := range pairs {
		sb.WriteString("<queries>" + p.User + "</queries>\n")
		sb.WriteString("<response>" + p.Response + "</response>\n")
	}
	sb.WriteString("<queries>" + message + "</queries>\n\n")
	sb.WriteString("Respond to the latest query in simple <response></response> tags.")
	return sb.String()
}
