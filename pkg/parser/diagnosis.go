package parser

import (
	"strings"

	"github.com/helmcode/sql-copilot/pkg/model"
)

const (
	diagnosisOpen  = "<diagnosis>"
	diagnosisClose = "</diagnosis>"
)

// Attribute defaults. The model is not guaranteed to supply them.
const (
	defaultType     = "Unknown"
	defaultSeverity = "Medium"
	defaultPriority = "Medium"
)

// ParseDiagnosis decodes a model reply into a typed Diagnosis. It is total:
// any input, including empty or truncated text, yields a structurally valid
// result. When the diagnosis envelope is missing the parser falls back to a
// bare reasoning extraction and records a parse error; the raw reply is
// retained either way.
func ParseDiagnosis(raw string) *model.Diagnosis {
	d := model.NewDiagnosis()
	d.RawResponse = raw

	start := strings.Index(raw, diagnosisOpen)
	end := strings.Index(raw, diagnosisClose)
	if start < 0 || end < 0 || end < start {
		if reasoning, ok := FindSection(raw, "reasoning"); ok {
			d.Reasoning = StripCDATA(reasoning)
		}
		d.ParseError = "could not find <diagnosis> envelope in response"
		return d
	}

	tree := ParseTree(raw[start : end+len(diagnosisClose)])
	diag := tree.Child("diagnosis")
	if diag == nil {
		if reasoning, ok := FindSection(raw, "reasoning"); ok {
			d.Reasoning = StripCDATA(reasoning)
		}
		d.ParseError = "diagnosis envelope did not parse"
		return d
	}

	d.Reasoning = diag.Child("reasoning").Text()

	for _, n := range diag.Child("bottlenecks").ChildrenNamed("bottleneck") {
		d.Bottlenecks = append(d.Bottlenecks, model.Bottleneck{
			Type:        n.Attr("type", defaultType),
			Severity:    n.Attr("severity", defaultSeverity),
			Description: n.Text(),
		})
	}
	for _, n := range diag.Child("root_causes").ChildrenNamed("root_cause") {
		d.RootCauses = append(d.RootCauses, model.RootCause{
			Type:        n.Attr("type", defaultType),
			Description: n.Text(),
		})
	}
	for _, n := range diag.Child("recommendations").ChildrenNamed("recommendation") {
		d.Recommendations = append(d.Recommendations, model.Recommendation{
			Type:        n.Attr("type", defaultType),
			Priority:    n.Attr("priority", defaultPriority),
			Description: n.Text(),
		})
	}
	for _, n := range diag.Child("comments").ChildrenNamed("comment") {
		if text := n.Text(); text != "" {
			d.Comments = append(d.Comments, text)
		}
	}
	return d
}
