// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/pulsewatch/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRunSummary outputs a human-readable overview of a finished run.
func (p *Printer) PrintRunSummary(report *types.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Topic:    %s\n", report.Topic))
	sb.WriteString(fmt.Sprintf("Window:   %s to %s (%.0f days)\n",
		report.Window.Start.Format("2006-01-02"),
		report.Window.End.Format("2006-01-02"),
		report.Window.Days()))
	sb.WriteString(fmt.Sprintf("Depth:    %s\n", report.Depth))
	sb.WriteString(fmt.Sprintf("Mode:     %s\n", report.Mode))

	if len(report.Sources) > 0 {
		names := make([]string, len(report.Sources))
		for i, s := range report.Sources {
			names[i] = string(s)
		}
		sb.WriteString(fmt.Sprintf("Sources:  %s\n", strings.Join(names, ", ")))
	}

	sb.WriteString(fmt.Sprintf("Items:    %d\n", len(report.Items)))
	sb.WriteString(fmt.Sprintf("Elapsed:  %s", report.Elapsed.Round(time.Millisecond)))

	p.printBox("RUN SUMMARY", sb.String())
}

// PrintTopItems outputs the top N ranked items with score breakdowns.
func (p *Printer) PrintTopItems(report *types.Report) {
	if report == nil || len(report.Items) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total items ranked: %d\n\n", len(report.Items)))

	count := min(len(report.Items), maxItemsToShow)
	for i := 0; i < count; i++ {
		item := report.Items[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, truncate(item.Headline, 45)))
		sb.WriteString(fmt.Sprintf("    Score: %.1f  [%s]\n", item.Score, item.Source))
		if bd := item.Breakdown; bd != nil {
			sb.WriteString(fmt.Sprintf("    rel=%.0f rec=%.0f", bd.RelevancePct, bd.RecencyPct))
			if bd.EngagementPct != nil {
				sb.WriteString(fmt.Sprintf(" eng=%.0f", *bd.EngagementPct))
			}
			if bd.Penalty > 0 {
				sb.WriteString(fmt.Sprintf(" penalty=-%.0f", bd.Penalty))
			}
			sb.WriteString("\n")
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(report.Items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more items", len(report.Items)-maxItemsToShow))
	}

	p.printBox("TOP RANKED ITEMS", sb.String())
}

// PrintProviderErrors outputs per-provider failures, or a success box when
// every provider answered.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProviderErrors(report *types.Report) {
	if report == nil {
		return
	}
	if len(report.Errors) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ ALL PROVIDERS RESPONDED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d provider errors:\n\n", len(report.Errors)))

	i := 0
	for _, source := range types.AllSources() {
		msg, ok := report.Errors[string(source)]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("⚠ %s\n", source))
		sb.WriteString(fmt.Sprintf("  %s\n", truncate(msg, 45)))
		if i < len(report.Errors)-1 {
			sb.WriteString("\n")
		}
		i++
	}

	p.printBox("PROVIDER ERRORS", sb.String())
}

// truncate shortens s to at most max runes, ending in "..." when cut.
// Counting runes rather than bytes keeps multi-byte text intact.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
