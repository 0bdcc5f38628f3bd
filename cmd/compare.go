package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sim-os/sim-os/sim"
)

// compareCmd renders two or more metrics reports side by side, marking the
// winner per metric. Reports with differing key sets are refused.
var compareCmd = &cobra.Command{
	Use:   "compare <a.met> <b.met> [more.met...]",
	Short: "Compare metrics reports from previous runs",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		tables := make([]map[string]string, 0, len(args))
		for _, path := range args {
			table, err := sim.ParseReportFile(path)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			tables = append(tables, table)
		}
		if !sim.KeySetsMatch(tables) {
			logrus.Fatalf("the files carry different metrics. Try regenerating them")
		}
		renderComparison(os.Stdout, args, tables)
	},
}

func renderComparison(out io.Writer, paths []string, tables []map[string]string) {
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)

	fmt.Fprint(w, "metric")
	for _, path := range paths {
		fmt.Fprintf(w, "\t%s", filepath.Base(path))
	}
	fmt.Fprintln(w)

	for _, key := range sim.ReportKeys {
		if _, ok := tables[0][key]; !ok {
			continue
		}
		fmt.Fprint(w, key)
		best := bestValueIndex(key, tables)
		for i, table := range tables {
			marker := ""
			if i == best {
				marker = " *"
			}
			fmt.Fprintf(w, "\t%s%s", table[key], marker)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}

// bestValueIndex picks the winning column for a numeric metric, honoring the
// lower-is-better set. Returns -1 for non-numeric rows.
func bestValueIndex(key string, tables []map[string]string) int {
	best := -1
	var bestValue float64
	for i, table := range tables {
		v, err := strconv.ParseFloat(table[key], 64)
		if err != nil {
			return -1
		}
		better := v > bestValue
		if sim.LowerBetterKeys[key] {
			better = v < bestValue
		}
		if best == -1 || better {
			best = i
			bestValue = v
		}
	}
	return best
}
