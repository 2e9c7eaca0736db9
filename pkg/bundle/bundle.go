package bundle

import (
	"regexp"
	"strconv"
)

// Bundle is the evidence collected for one query: the statement itself plus
// whatever diagnostic context the collector could gather. Fields that the
// collector cannot supply stay empty; an empty field is valid data, not an
// error. A Bundle describes a single measurement and is never mutated after
// the collector returns it.
type Bundle struct {
	Query         string `json:"query"`
	Explain       string `json:"explain"`
	Logs          string `json:"logs"`
	Schema        string `json:"schema"`
	Stats         string `json:"stats"`
	Config        string `json:"config"`
	System        string `json:"system"`
	ResultPreview string `json:"result_preview,omitempty"`
}

// Collectors that execute the query record wall-clock timing in the logs as
// "Execution elapsed: <n> ms". The looser patterns cover hand-pasted logs.
var elapsedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Execution elapsed:\s*([0-9.]+)\s*ms`),
	regexp.MustCompile(`(?i)elapsed:?\s*([0-9.]+)\s*ms`),
	regexp.MustCompile(`(?i)([0-9.]+)\s*ms\s*elapsed`),
}

// ElapsedMS extracts the execution time from a collector's log text.
// The second return value is false when no timing line is present.
func ElapsedMS(logs string) (float64, bool) {
	for _, p := range elapsedPatterns {
		m := p.FindStringSubmatch(logs)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return v, true
	}
	return 0, false
}

// Elapsed reports the timing recorded in this bundle's logs.
func (b Bundle) Elapsed() (float64, bool) {
	return ElapsedMS(b.Logs)
}
