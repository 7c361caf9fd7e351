package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// formatSymbolsText formats CLISymbol results as aligned columns.
func formatSymbolsText(w io.Writer, syms []CLISymbol) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKIND\tFILE\tLINE\tEXPORTED")
	for _, s := range syms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%t\n",
			s.ID, s.Name, s.Kind, s.File, s.Line, s.IsExported)
	}
	tw.Flush()
}

// formatReferencesText formats CLIReference results as aligned columns.
func formatReferencesText(w io.Writer, refs []CLIReference) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FROM\tTO\tKIND\tFILE\tLINE")
	for _, r := range refs {
		from := r.FromID
		if r.FromName != "" {
			from = fmt.Sprintf("%s (%s)", r.FromName, r.FromID)
		}
		to := r.ToID
		if r.ToName != "" {
			to = fmt.Sprintf("%s (%s)", r.ToName, r.ToID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", from, to, r.Kind, r.File, r.Line)
	}
	tw.Flush()
}

// formatStatsText formats CLIStats as readable text.
func formatStatsText(w io.Writer, stats CLIStats) {
	fmt.Fprintln(w, "Graph Statistics")
	fmt.Fprintln(w, "================")
	fmt.Fprintf(w, "Symbols:    %d\n", stats.TotalSymbols)
	fmt.Fprintf(w, "References: %d\n", stats.TotalReferences)
	fmt.Fprintf(w, "Files:      %d\n", stats.TotalFiles)
	fmt.Fprintf(w, "Memory:     %d bytes\n", stats.MemoryUsageBytes)
	if len(stats.DirtyFiles) > 0 {
		fmt.Fprintf(w, "Dirty:      %d file(s)\n", len(stats.DirtyFiles))
		for _, path := range stats.DirtyFiles {
			fmt.Fprintf(w, "  %s\n", path)
		}
	}
}

// formatCallGraphText formats a CLICallGraph as an indented node list plus
// its edge table.
func formatCallGraphText(w io.Writer, cg CLICallGraph) {
	fmt.Fprintf(w, "Root: %s (max depth %d)\n", cg.Root, cg.MaxDepth)
	for _, n := range cg.Nodes {
		indent := strings.Repeat("  ", n.Depth)
		fmt.Fprintf(w, "%s%s (%s) %s:%d\n",
			indent, n.Symbol.Name, n.Symbol.Kind, n.Symbol.File, n.Symbol.Line)
	}
	if len(cg.Edges) > 0 {
		fmt.Fprintln(w)
		formatReferencesText(w, cg.Edges)
	}
}

// formatHotspotsText formats CLIHotspot results as aligned columns.
func formatHotspotsText(w io.Writer, items []CLIHotspot) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tFILE\tCALLERS\tCALLEES")
	for _, h := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n",
			h.Symbol.Name, h.Symbol.Kind, h.Symbol.File, h.CallerCount, h.CalleeCount)
	}
	tw.Flush()
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type. It writes to os.Stdout.
func outputResultText(result CLIResult) error {
	w := io.Writer(os.Stdout)

	switch v := result.Results.(type) {
	case []CLISymbol:
		formatSymbolsText(w, v)
	case CLISymbol:
		formatSymbolsText(w, []CLISymbol{v})
	case []CLIReference:
		formatReferencesText(w, v)
	case CLIStats:
		formatStatsText(w, v)
	case CLICallGraph:
		formatCallGraphText(w, v)
	case []CLIHotspot:
		formatHotspotsText(w, v)
	case nil:
		// No output for nil results.
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
