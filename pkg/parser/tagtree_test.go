package parser

import "testing"

func TestParseTreeBasic(t *testing.T) {
	root := ParseTree(`<diagnosis><reasoning>slow scan</reasoning></diagnosis>`)
	diag := root.Child("diagnosis")
	if diag == nil {
		t.Fatal("diagnosis element not found")
	}
	if got := diag.Child("reasoning").Text(); got != "slow scan" {
		t.Errorf("reasoning = %q, want %q", got, "slow scan")
	}
}

func TestParseTreeAttributes(t *testing.T) {
	root := ParseTree(`<bottleneck type="FullTableScan" severity='High'>scan of orders</bottleneck>`)
	n := root.Child("bottleneck")
	if n == nil {
		t.Fatal("bottleneck element not found")
	}
	if got := n.Attr("type", "Unknown"); got != "FullTableScan" {
		t.Errorf("type attr = %q, want FullTableScan", got)
	}
	if got := n.Attr("severity", "Medium"); got != "High" {
		t.Errorf("severity attr = %q, want High", got)
	}
	if got := n.Attr("priority", "Medium"); got != "Medium" {
		t.Errorf("missing attr should hit the default, got %q", got)
	}
}

func TestParseTreeCDATA(t *testing.T) {
	root := ParseTree(`<reasoning><![CDATA[The query uses a < comparison and an <unescaped> marker.]]></reasoning>`)
	got := root.Child("reasoning").Text()
	want := "The query uses a < comparison and an <unescaped> marker."
	if got != want {
		t.Errorf("CDATA text = %q, want %q", got, want)
	}
}

// Bare comparison operators in SQL text must not be mistaken for tags.
func TestParseTreeBareAngleBrackets(t *testing.T) {
	root := ParseTree(`<query>SELECT * FROM orders WHERE total < 100 AND qty <= 5</query>`)
	got := root.Child("query").Text()
	want := "SELECT * FROM orders WHERE total < 100 AND qty <= 5"
	if got != want {
		t.Errorf("query text = %q, want %q", got, want)
	}
}

func TestParseTreeMismatchedClose(t *testing.T) {
	// </reasoning> closes the still-open <reasoning> even though <b> was
	// never closed; the stray </nope> is dropped.
	root := ParseTree(`<reasoning>text <b>bold</reasoning></nope><next>after</next>`)
	if got := root.Child("reasoning").Text(); got != "text" {
		t.Errorf("reasoning text = %q, want %q", got, "text")
	}
	if got := root.Child("next").Text(); got != "after" {
		t.Errorf("next text = %q, want %q", got, "after")
	}
}

func TestParseTreeUnclosedAtEOF(t *testing.T) {
	root := ParseTree(`<diagnosis><reasoning>truncated reply`)
	diag := root.Child("diagnosis")
	if diag == nil {
		t.Fatal("unclosed diagnosis element should still exist")
	}
	if got := diag.Child("reasoning").Text(); got != "truncated reply" {
		t.Errorf("reasoning = %q, want %q", got, "truncated reply")
	}
}

func TestParseTreeRepeatedChildren(t *testing.T) {
	root := ParseTree(`<bottlenecks>
		<bottleneck severity="High">a</bottleneck>
		<bottleneck severity="Low">b</bottleneck>
	</bottlenecks>`)
	kids := root.Child("bottlenecks").ChildrenNamed("bottleneck")
	if len(kids) != 2 {
		t.Fatalf("got %d bottleneck children, want 2", len(kids))
	}
	if kids[0].Text() != "a" || kids[1].Text() != "b" {
		t.Errorf("children out of order: %q, %q", kids[0].Text(), kids[1].Text())
	}
}

func TestParseTreeCommentsIgnored(t *testing.T) {
	root := ParseTree(`<response><!-- internal note -->visible</response>`)
	if got := root.Child("response").Text(); got != "visible" {
		t.Errorf("text = %q, want %q", got, "visible")
	}
}

func TestNilNodeSafety(t *testing.T) {
	var n *Node
	if n.Child("x") != nil {
		t.Error("nil Child should return nil")
	}
	if n.ChildrenNamed("x") != nil {
		t.Error("nil ChildrenNamed should return nil")
	}
	if got := n.Attr("k", "def"); got != "def" {
		t.Errorf("nil Attr = %q, want def", got)
	}
	if n.Text() != "" {
		t.Error("nil Text should be empty")
	}
}

func TestFindSection(t *testing.T) {
	body, ok := FindSection("junk <response>hello</response> junk", "response")
	if !ok || body != "hello" {
		t.Errorf("FindSection = %q, %v; want hello, true", body, ok)
	}
	if _, ok := FindSection("no markers here", "response"); ok {
		t.Error("FindSection should fail without markers")
	}
}

func TestStripCDATA(t *testing.T) {
	if got := StripCDATA("  <![CDATA[ inner ]]>  "); got != "inner" {
		t.Errorf("StripCDATA = %q, want inner", got)
	}
	if got := StripCDATA("plain"); got != "plain" {
		t.Errorf("StripCDATA(plain) = %q", got)
	}
}
