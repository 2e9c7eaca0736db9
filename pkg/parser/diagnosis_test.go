package parser

import (
	"strings"
	"testing"
)

// mockDiagnosisResponse mirrors the shape of a real model reply for the
// classic missing-index scenario, chatter around the envelope included.
const mockDiagnosisResponse = `Here is my analysis of the query:

<diagnosis>
  <reasoning>
    <![CDATA[
    The execution plan shows a sequential scan over the orders table (100,000 rows)
    filtered by customer_id. There is no index on orders.customer_id, so every row
    is read and compared. The 2847 ms elapsed time is dominated by this scan.
    ]]>
  </reasoning>
  <bottlenecks>
    <bottleneck type="FullTableScan" severity="High">Sequential scan of orders reads all 100,000 rows</bottleneck>
    <bottleneck type="SortSpill" severity="Medium">ORDER BY created_at sorts the scanned rows without index support</bottleneck>
  </bottlenecks>
  <root_causes>
    <root_cause type="MissingIndex">No index exists on orders.customer_id</root_cause>
  </root_causes>
  <recommendations>
    <recommendation type="CreateIndex" priority="High">CREATE INDEX idx_orders_customer_id ON orders(customer_id)</recommendation>
    <recommendation type="RewriteQuery" priority="Low">Select only the needed columns instead of *</recommendation>
  </recommendations>
  <comments>
    <comment>Re-run ANALYZE after creating the index.</comment>
  </comments>
</diagnosis>

Let me know if you need more detail.`

func TestParseDiagnosisComplete(t *testing.T) {
	d := ParseDiagnosis(mockDiagnosisResponse)

	if d.ParseError != "" {
		t.Fatalf("unexpected parse error: %s", d.ParseError)
	}
	if d.RawResponse != mockDiagnosisResponse {
		t.Error("raw response must be retained verbatim")
	}
	if !strings.Contains(d.Reasoning, "sequential scan over the orders table") {
		t.Errorf("reasoning not extracted: %q", d.Reasoning)
	}

	if len(d.Bottlenecks) != 2 {
		t.Fatalf("got %d bottlenecks, want 2", len(d.Bottlenecks))
	}
	if d.Bottlenecks[0].Type != "FullTableScan" || d.Bottlenecks[0].Severity != "High" {
		t.Errorf("first bottleneck = %+v", d.Bottlenecks[0])
	}

	if len(d.RootCauses) != 1 {
		t.Fatalf("got %d root causes, want 1", len(d.RootCauses))
	}
	if d.RootCauses[0].Type != "MissingIndex" {
		t.Errorf("root cause type = %q, want MissingIndex", d.RootCauses[0].Type)
	}

	if len(d.Recommendations) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(d.Recommendations))
	}
	if d.Recommendations[0].Priority != "High" {
		t.Errorf("first recommendation priority = %q", d.Recommendations[0].Priority)
	}

	if len(d.Comments) != 1 || !strings.Contains(d.Comments[0], "ANALYZE") {
		t.Errorf("comments = %v", d.Comments)
	}
}

func TestParseDiagnosisAttributeDefaults(t *testing.T) {
	d := ParseDiagnosis(`<diagnosis>
		<bottlenecks><bottleneck>untagged finding</bottleneck></bottlenecks>
		<root_causes><root_cause>untagged cause</root_cause></root_causes>
		<recommendations><recommendation>untagged fix</recommendation></recommendations>
	</diagnosis>`)

	if d.Bottlenecks[0].Type != "Unknown" || d.Bottlenecks[0].Severity != "Medium" {
		t.Errorf("bottleneck defaults = %+v", d.Bottlenecks[0])
	}
	if d.RootCauses[0].Type != "Unknown" {
		t.Errorf("root cause default = %+v", d.RootCauses[0])
	}
	if d.Recommendations[0].Type != "Unknown" || d.Recommendations[0].Priority != "Medium" {
		t.Errorf("recommendation defaults = %+v", d.Recommendations[0])
	}
}

// The decoder is total: no input may produce a panic or a nil result.
func TestParseDiagnosisNeverFails(t *testing.T) {
	inputs := []string{
		"",
		"no markup at all",
		"<diagnosis>",
		"</diagnosis><diagnosis>",
		"<diagnosis><reasoning>truncated mid-sent",
		"<<<>>> <= < >",
		strings.Repeat("<a>", 500),
	}
	for _, in := range inputs {
		d := ParseDiagnosis(in)
		if d == nil {
			t.Fatalf("ParseDiagnosis(%q) returned nil", in)
		}
		if d.RawResponse != in {
			t.Errorf("raw response not retained for %q", in)
		}
		if d.Bottlenecks == nil || d.RootCauses == nil || d.Recommendations == nil {
			t.Errorf("slices must be non-nil for %q", in)
		}
	}
}

func TestParseDiagnosisMissingEnvelope(t *testing.T) {
	d := ParseDiagnosis(`I could not produce structured output.
<reasoning>The plan looks fine; the table is just large.</reasoning>`)

	if d.ParseError == "" {
		t.Fatal("missing envelope should be recorded as a parse error")
	}
	if !strings.Contains(d.Reasoning, "table is just large") {
		t.Errorf("fallback reasoning not extracted: %q", d.Reasoning)
	}
	if len(d.Bottlenecks) != 0 {
		t.Errorf("fallback should carry no findings, got %d", len(d.Bottlenecks))
	}
}

func TestParseDiagnosisUnescapedSQLInFindings(t *testing.T) {
	d := ParseDiagnosis(`<diagnosis>
		<bottlenecks>
			<bottleneck type="FullTableScan" severity="High">WHERE total < 100 forces a scan</bottleneck>
		</bottlenecks>
	</diagnosis>`)

	if d.ParseError != "" {
		t.Fatalf("unexpected parse error: %s", d.ParseError)
	}
	if got := d.Bottlenecks[0].Description; got != "WHERE total < 100 forces a scan" {
		t.Errorf("description = %q", got)
	}
}
