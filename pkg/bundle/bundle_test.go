package bundle

import "testing"

func TestElapsedMS(t *testing.T) {
	tests := []struct {
		name string
		logs string
		want float64
		ok   bool
	}{
		{
			name: "collector convention",
			logs: "Executing query with timing...\nExecution elapsed: 2847.23 ms\nRows previewed: 10",
			want: 2847.23,
			ok:   true,
		},
		{
			name: "integer millis",
			logs: "Execution elapsed: 312 ms",
			want: 312,
			ok:   true,
		},
		{
			name: "loose pasted log",
			logs: "query done, elapsed 4524.456 ms, 1500 rows",
			want: 4524.456,
			ok:   true,
		},
		{
			name: "trailing form",
			logs: "123.5 ms elapsed",
			want: 123.5,
			ok:   true,
		},
		{
			name: "no timing",
			logs: "EXPLAIN only, query not executed",
			ok:   false,
		},
		{
			name: "empty logs",
			logs: "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ElapsedMS(tt.logs)
			if ok != tt.ok {
				t.Fatalf("ElapsedMS(%q) ok = %v, want %v", tt.logs, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ElapsedMS(%q) = %v, want %v", tt.logs, got, tt.want)
			}
		})
	}
}

func TestBundleElapsed(t *testing.T) {
	b := Bundle{Logs: "Execution elapsed: 55.5 ms"}
	got, ok := b.Elapsed()
	if !ok || got != 55.5 {
		t.Errorf("Elapsed() = %v, %v; want 55.5, true", got, ok)
	}

	empty := Bundle{}
	if _, ok := empty.Elapsed(); ok {
		t.Error("empty bundle should report no timing")
	}
}
