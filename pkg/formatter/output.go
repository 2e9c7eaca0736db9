package formatter

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/sql-copilot/pkg/bundle"
	"github.com/helmcode/sql-copilot/pkg/model"
)

// DisplayDiagnosis renders a diagnosis in the requested format.
func DisplayDiagnosis(d *model.Diagnosis, format string) error {
	switch format {
	case "json":
		return displayJSON(d)
	case "yaml":
		return displayYAML(d)
	case "human":
		fallthrough
	default:
		displayHuman(d)
	}
	return nil
}

func displayJSON(v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

func displayYAML(v interface{}) error {
	output, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

func displayHuman(d *model.Diagnosis) {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	green := color.New(color.FgGreen, color.Bold)

	fmt.Println()
	cyan.Println("🔍 ANALYSIS & REASONING")
	fmt.Println(strings.Repeat("─", 40))
	fmt.Println(wrapText(d.Reasoning, 100, ""))
	fmt.Println()

	if len(d.Bottlenecks) > 0 {
		red.Println("🚨 PERFORMANCE BOTTLENECKS")
		fmt.Println(strings.Repeat("─", 40))
		for i, b := range d.Bottlenecks {
			fmt.Printf("%d. %s %s (%s): %s\n", i+1, severityIcon(b.Severity), b.Type, b.Severity, b.Description)
		}
		fmt.Println()
	}

	if len(d.RootCauses) > 0 {
		yellow.Println("⚠️  ROOT CAUSES IDENTIFIED")
		fmt.Println(strings.Repeat("─", 40))
		for i, c := range d.RootCauses {
			fmt.Printf("%d. %s: %s\n", i+1, c.Type, c.Description)
		}
		fmt.Println()
	}

	if len(d.Recommendations) > 0 {
		green.Println("💡 RECOMMENDATIONS")
		fmt.Println(strings.Repeat("─", 40))
		for i, r := range d.Recommendations {
			fmt.Printf("%d. %s %s (%s):\n", i+1, priorityIcon(r.Priority), r.Type, r.Priority)
			if looksLikeSQL(r.Description) {
				fmt.Printf("   %s\n", color.CyanString(r.Description))
			} else {
				fmt.Printf("   %s\n", r.Description)
			}
		}
		fmt.Println()
	}

	if len(d.Comments) > 0 {
		cyan.Println("📝 ADDITIONAL COMMENTS")
		fmt.Println(strings.Repeat("─", 40))
		for _, c := range d.Comments {
			fmt.Printf("• %s\n", c)
		}
		fmt.Println()
	}

	if d.ParseError != "" {
		yellow.Printf("⚠️  Response parsing degraded: %s\n", d.ParseError)
		fmt.Println(color.HiBlackString("The raw model reply is retained; rerun with -o json to inspect it."))
		fmt.Println()
	}
}

// DisplayImprovement renders a proposed query rewrite.
func DisplayImprovement(improved *model.ImprovedQuery, format string) error {
	switch format {
	case "json":
		return displayJSON(improved)
	case "yaml":
		return displayYAML(improved)
	}

	green := color.New(color.FgGreen, color.Bold)
	fmt.Println()
	if improved.ImprovedQuery == "" {
		color.New(color.FgYellow).Println("⚠️  No usable improvement was produced.")
		if improved.Rationale != "" {
			fmt.Printf("   %s\n", improved.Rationale)
		}
		return nil
	}
	green.Println("✨ PROPOSED IMPROVED QUERY")
	fmt.Println(strings.Repeat("─", 40))
	fmt.Println(color.CyanString(improved.ImprovedQuery))
	if improved.Rationale != "" {
		fmt.Printf("\nRationale: %s\n", improved.Rationale)
	}
	return nil
}

// DisplayHistory renders the iteration history and the best round as a
// comparison table.
func DisplayHistory(records []model.IterationRecord, best *model.IterationRecord) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Println()
	cyan.Println("🔁 ITERATION HISTORY")
	fmt.Println(strings.Repeat("─", 70))
	fmt.Printf("%-4s %-10s %-14s %s\n", "#", "KIND", "ELAPSED", "QUERY")
	for _, rec := range records {
		elapsed := "n/a"
		if rec.ElapsedMS != nil {
			elapsed = fmt.Sprintf("%.2f ms", *rec.ElapsedMS)
		}
		q := strings.Join(strings.Fields(rec.Query), " ")
		if r := []rune(q); len(r) > 48 {
			q = string(r[:48]) + "..."
		}
		marker := " "
		if best != nil && rec.Iteration == best.Iteration {
			marker = color.GreenString("★")
		}
		fmt.Printf("%-4d %-10s %-14s %s %s\n", rec.Iteration, rec.Kind, elapsed, q, marker)
	}
	fmt.Println()

	if best != nil && len(records) > 1 && records[0].ElapsedMS != nil && best.ElapsedMS != nil {
		baseline := *records[0].ElapsedMS
		if *best.ElapsedMS < baseline {
			saved := baseline - *best.ElapsedMS
			color.New(color.FgGreen).Printf("✓ Best round is iteration %d: %.2f ms faster than the original (%.1f%% improvement)\n",
				best.Iteration, saved, saved/baseline*100)
		} else {
			color.New(color.FgYellow).Println("⚠ No round beat the original query.")
		}
	}
}

// WriteReport saves a plain-text analysis report, appending the raw input
// and the raw model reply for audit.
func WriteReport(path, title string, b bundle.Bundle, d *model.Diagnosis) error {
	var sb strings.Builder
	sb.WriteString("SQL COPILOT ANALYSIS REPORT\n")
	sb.WriteString("Scenario: " + title + "\n")
	sb.WriteString("Timestamp: " + time.Now().Format(time.RFC3339) + "\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n\n")

	sb.WriteString("ANALYSIS & REASONING\n" + strings.Repeat("-", 40) + "\n")
	sb.WriteString(d.Reasoning + "\n\n")

	if len(d.Bottlenecks) > 0 {
		sb.WriteString("PERFORMANCE BOTTLENECKS\n" + strings.Repeat("-", 40) + "\n")
		for i, bn := range d.Bottlenecks {
			fmt.Fprintf(&sb, "%d. %s (%s): %s\n", i+1, bn.Type, bn.Severity, bn.Description)
		}
		sb.WriteString("\n")
	}
	if len(d.RootCauses) > 0 {
		sb.WriteString("ROOT CAUSES\n" + strings.Repeat("-", 40) + "\n")
		for i, c := range d.RootCauses {
			fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, c.Type, c.Description)
		}
		sb.WriteString("\n")
	}
	if len(d.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS\n" + strings.Repeat("-", 40) + "\n")
		for i, r := range d.Recommendations {
			fmt.Fprintf(&sb, "%d. %s (%s): %s\n", i+1, r.Type, r.Priority, r.Description)
		}
		sb.WriteString("\n")
	}
	if len(d.Comments) > 0 {
		sb.WriteString("ADDITIONAL COMMENTS\n" + strings.Repeat("-", 40) + "\n")
		for _, c := range d.Comments {
			sb.WriteString("- " + c + "\n")
		}
		sb.WriteString("\n")
	}
	if d.ParseError != "" {
		sb.WriteString("PARSE ERROR\n" + strings.Repeat("-", 40) + "\n")
		sb.WriteString(d.ParseError + "\n\n")
	}

	sb.WriteString(strings.Repeat("=", 80) + "\nRAW INPUT DATA\n" + strings.Repeat("=", 80) + "\n")
	sb.WriteString("Query:\n" + b.Query + "\n\n")
	sb.WriteString("Explain Plan:\n" + b.Explain + "\n\n")

	if d.RawResponse != "" {
		sb.WriteString(strings.Repeat("=", 80) + "\nRAW MODEL RESPONSE\n" + strings.Repeat("=", 80) + "\n")
		sb.WriteString(d.RawResponse + "\n")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func severityIcon(severity string) string {
	switch strings.ToLower(severity) {
	case "high":
		return "🔴"
	case "medium":
		return "🟠"
	case "low":
		return "🟡"
	default:
		return "⚪"
	}
}

func priorityIcon(priority string) string {
	switch strings.ToLower(priority) {
	case "high":
		return "⚡"
	case "medium":
		return "🔹"
	case "low":
		return "▫️"
	default:
		return "•"
	}
}

func looksLikeSQL(s string) bool {
	upper := strings.ToUpper(s)
	for _, kw := range []string{"CREATE INDEX", "SELECT ", "ANALYZE", "VACUUM", "ALTER TABLE"} {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}
		current := indent
		for _, word := range words {
			if len(current)+len(word)+1 > width {
				result.WriteString(current + "\n")
				current = indent + word
			} else if current == indent {
				current += word
			} else {
				current += " " + word
			}
		}
		if current != indent {
			result.WriteString(current + "\n")
		}
	}
	return strings.TrimSuffix(result.String(), "\n")
}
