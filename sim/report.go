// The metrics report codec: the flat key=value file a finished run exports
// and the comparator consumes. The wire order is fixed; a literal `separator`
// line divides the header (timer, schedule_policy) from the body.

package sim

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Report is the exportable snapshot of one simulation run.
type Report struct {
	Timer             uint64
	SchedulePolicy    string
	AvgWaitingTime    uint64
	MaxWaitingTime    uint64
	AvgTurnaroundTime uint64
	MaxTurnaroundTime uint64
	AvgThroughput     float64
	MaxThroughput     float64
}

// ReportKeys is the canonical key order of the export format.
var ReportKeys = []string{
	"timer",
	"schedule_policy",
	"avg_waiting_time",
	"max_waiting_time",
	"avg_turnaround_time",
	"max_turnaround_time",
	"avg_throughput",
	"max_throughput",
}

// LowerBetterKeys are the metrics where a smaller value wins a comparison.
var LowerBetterKeys = map[string]bool{
	"timer":               true,
	"avg_waiting_time":    true,
	"max_waiting_time":    true,
	"avg_turnaround_time": true,
	"max_turnaround_time": true,
}

// Encode writes the report in wire order. Throughput values carry two
// fractional digits; everything else is integral or verbatim.
func (r *Report) Encode(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "timer = %d\n", r.Timer)
	fmt.Fprintf(&sb, "schedule_policy = %s\n", r.SchedulePolicy)
	sb.WriteString("separator\n")
	fmt.Fprintf(&sb, "avg_waiting_time = %d\n", r.AvgWaitingTime)
	fmt.Fprintf(&sb, "max_waiting_time = %d\n", r.MaxWaitingTime)
	fmt.Fprintf(&sb, "avg_turnaround_time = %d\n", r.AvgTurnaroundTime)
	fmt.Fprintf(&sb, "max_turnaround_time = %d\n", r.MaxTurnaroundTime)
	fmt.Fprintf(&sb, "avg_throughput = %.2f\n", r.AvgThroughput)
	fmt.Fprintf(&sb, "max_throughput = %.2f\n", r.MaxThroughput)
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteFile encodes the report to path.
func (r *Report) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	defer f.Close()
	if err := r.Encode(f); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// ParseReport decodes report content into a key -> raw value table.
// Whitespace around `=` is optional; blank lines and the literal `separator`
// line are skipped. A non-blank line without `=` is a parse error.
func ParseReport(content string) (map[string]string, error) {
	table := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "separator" {
			continue
		}
		key, value, found := strings.Cut(trimmed, "=")
		if !found {
			return nil, fmt.Errorf("malformed report line: %q", line)
		}
		table[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return table, nil
}

// ParseReportFile reads and decodes a report file.
func ParseReportFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	table, err := ParseReport(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return table, nil
}

// KeySetsMatch reports whether every table carries exactly the same keys.
// The comparator refuses to compare reports whose key sets differ.
func KeySetsMatch(tables []map[string]string) bool {
	if len(tables) < 2 {
		return true
	}
	first := tables[0]
	for _, table := range tables[1:] {
		if len(table) != len(first) {
			return false
		}
		for key := range first {
			if _, ok := table[key]; !ok {
				return false
			}
		}
	}
	return true
}
