package model

import "time"

// Diagnosis is the typed result of one analysis round. RawResponse always
// carries the verbatim model output; when parsing failed, ParseError is set
// and Reasoning holds whatever could still be extracted.
type Diagnosis struct {
	Reasoning       string           `json:"reasoning" yaml:"reasoning"`
	Bottlenecks     []Bottleneck     `json:"bottlenecks" yaml:"bottlenecks"`
	RootCauses      []RootCause      `json:"root_causes" yaml:"root_causes"`
	Recommendations []Recommendation `json:"recommendations" yaml:"recommendations"`
	Comments        []string         `json:"comments" yaml:"comments"`
	RawResponse     string           `json:"raw_response,omitempty" yaml:"raw_response,omitempty"`
	ParseError      string           `json:"parse_error,omitempty" yaml:"parse_error,omitempty"`
}

type Bottleneck struct {
	Type        string `json:"type" yaml:"type"`
	Severity    string `json:"severity" yaml:"severity"`
	Description string `json:"description" yaml:"description"`
}

type RootCause struct {
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
}

type Recommendation struct {
	Type        string `json:"type" yaml:"type"`
	Priority    string `json:"priority" yaml:"priority"`
	Description string `json:"description" yaml:"description"`
}

// ImprovedQuery is the parsed result of a query-improvement round.
// ImprovedQuery is empty when the model's output failed the single
// read-only statement contract.
type ImprovedQuery struct {
	ImprovedQuery string `json:"improved_query" yaml:"improved_query"`
	Rationale     string `json:"rationale" yaml:"rationale"`
	RawResponse   string `json:"raw_response,omitempty" yaml:"raw_response,omitempty"`
}

// IterationKind records how a history entry was produced.
type IterationKind string

const (
	KindOriginal  IterationKind = "original"
	KindImproved  IterationKind = "improved"
	KindRecursive IterationKind = "recursive"
)

// IterationRecord is one executed, timed round in the improvement history.
// Records are append-only and never mutated after creation.
type IterationRecord struct {
	Iteration int           `json:"iteration" yaml:"iteration"`
	Query     string        `json:"query" yaml:"query"`
	ElapsedMS *float64      `json:"execution_time_ms" yaml:"execution_time_ms"`
	Diagnosis *Diagnosis    `json:"diagnosis,omitempty" yaml:"diagnosis,omitempty"`
	Timestamp time.Time     `json:"timestamp" yaml:"timestamp"`
	Kind      IterationKind `json:"kind" yaml:"kind"`
}

// NewDiagnosis returns a structurally valid empty diagnosis. All slice
// fields are non-nil so callers and serializers can rely on them.
func NewDiagnosis() *Diagnosis {
	return &Diagnosis{
		Bottlenecks:     []Bottleneck{},
		RootCauses:      []RootCause{},
		Recommendations: []Recommendation{},
		Comments:        []string{},
	}
}
