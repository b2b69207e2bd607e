package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MJE43/trainerrand/internal/personal"
	"github.com/MJE43/trainerrand/internal/runner"
	"github.com/MJE43/trainerrand/internal/scan"
)

const maxReportNames = 6

// writeReport prints the run header, pass statistics and, when detailed is
// set, one line per trainer naming its new team.
func writeReport(w io.Writer, res *runner.Result, table *personal.Table, detailed bool) error {
	p := message.NewPrinter(language.English)
	title := cases.Title(language.English)

	header := []string{
		p.Sprintf("Version:  %s", res.Version),
		p.Sprintf("Seed:     %d", res.Seed),
		p.Sprintf("Draws:    %d", res.Draws),
		p.Sprintf("Trainers: %d (%d skipped)", res.Stats.Trainers, res.Stats.Skipped),
		p.Sprintf("Entries:  %d (+%d / -%d)", res.Stats.Entries, res.Stats.EntriesAdded, res.Stats.EntriesDropped),
		p.Sprintf("Classes:  %d changed", res.Stats.ClassesChanged),
		p.Sprintf("Megas:    %d swapped, %d forced evolutions, %d movesets sanitized",
			res.Stats.MegaSwaps, res.Stats.ForcedEvolves, res.Stats.MovesSanitized),
	}
	if res.RunID != "" {
		header = append(header, "Run:      "+res.RunID)
	}
	for _, line := range header {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	for _, line := range res.Logs {
		fmt.Fprintf(w, "filter: %s\n", line)
	}
	if !detailed {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nID\tCLASS\tMODE\tSIZE\tLEVEL\tTEAM")
	for _, s := range res.Summaries {
		names := make([]string, 0, len(s.Species))
		for i, id := range s.Species {
			if i == maxReportNames {
				break
			}
			name := fmt.Sprintf("#%d", id)
			if info, ok := table.Get(id); ok && info.Name != "" {
				name = title.String(info.Name)
			}
			names = append(names, name)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%d\t%s\n", s.ID, s.Class, s.Mode, s.TeamSize, s.AvgLevel, strings.Join(names, ", "))
	}
	return tw.Flush()
}

func writeScanReport(w io.Writer, metric string, res *scan.Result) error {
	p := message.NewPrinter(language.English)
	sum := res.Summary
	p.Fprintf(w, "Scanned %d seeds (%d failed), %d hits on %s\n", sum.TotalEvaluated, sum.Failed, sum.HitsFound, metric)
	if sum.TimedOut {
		p.Fprintln(w, "Scan stopped early")
	}
	if len(res.Hits) == 0 {
		return nil
	}
	p.Fprintf(w, "Metric min %.2f, max %.2f, mean %.2f\n", sum.MinMetric, sum.MaxMetric, sum.MeanMetric)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEED\tMETRIC")
	for _, h := range res.Hits {
		fmt.Fprintf(tw, "%d\t%g\n", h.Seed, h.Metric)
	}
	return tw.Flush()
}
