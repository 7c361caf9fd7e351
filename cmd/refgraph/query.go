package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jward/refgraph"
	"github.com/spf13/cobra"
)

var (
	flagDepth int
	flagTop   int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the reference graph",
	Long:  "Run queries against a snapshotted graph. All line and column numbers come from the original parser dumps.",
}

func init() {
	queryCmd.AddCommand(callersCmd)
	queryCmd.AddCommand(calleesCmd)
	queryCmd.AddCommand(unusedCmd)
	queryCmd.AddCommand(exportedCmd)
	queryCmd.AddCommand(nameCmd)
	queryCmd.AddCommand(fileCmd)
	queryCmd.AddCommand(statsCmd)
	queryCmd.AddCommand(transitiveCallersCmd)
	queryCmd.AddCommand(transitiveCalleesCmd)
	queryCmd.AddCommand(hotspotsCmd)
}

// --- Helpers ---

// openEngine loads the snapshot from the --db flag path (or default).
func openEngine() (*refgraph.Engine, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}
	dbPath := resolveDBPath(findRepoRoot(cwd))

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("snapshot not found: %s (run 'refgraph load' first)", dbPath)
	}

	engine, err := refgraph.New()
	if err != nil {
		return nil, err
	}
	if err := engine.LoadSnapshot(dbPath); err != nil {
		return nil, err
	}
	return engine, nil
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// --- Adjacency commands ---

var callersCmd = &cobra.Command{
	Use:   "callers <symbol-id>",
	Short: "Find direct callers of a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runCallers,
}

func runCallers(cmd *cobra.Command, args []string) error {
	engine, err := openEngine()
	if err != nil {
		return outputError("callers", err)
	}

	g := engine.Graph()
	refs := referencesToCLI(g, g.Callers(args[0]))

	count := len(refs)
	return outputResult(CLIResult{
		Command:    "callers",
		Results:    refs,
		TotalCount: &count,
	})
}

var calleesCmd = &cobra.Command{
	Use:   "callees <symbol-id>",
	Short: "Find symbols a symbol directly references",
	Args:  cobra.ExactArgs(1),
	RunE:  runCallees,
}

func runCallees(cmd *cobra.Command, args []string) error {
	engine, err := openEngine()
	if err != nil {
		return outputError("callees", err)
	}

	g := engine.Graph()
	refs := referencesToCLI(g, g.Callees(args[0]))

	count := len(refs)
	return outputResult(CLIResult{
		Command:    "callees",
		Results:    refs,
		TotalCount: &count,
	})
}

// --- Discovery commands ---

var unusedCmd = &cobra.Command{
	Use:   "unused",
	Short: "List symbols with no recorded caller",
	Args:  cobra.NoArgs,
	RunE:  runUnused,
}

func runUnused(cmd *cobra.Command, args []string) error {
	engine, err := openEngine()
	if err != nil {
		return outputError("unused", err)
	}

	syms := symbolsToCLI(engine.Query().Symbols(refgraph.SymbolFilter{UnusedOnly: true}))

	count := len(syms)
	return outputResult(CLIResult{
		Command:    "unused",
		Results:    syms,
		TotalCount: &count,
	})
}

var exportedCmd = &cobra.Command{
	Use:   "exported",
	Short: "List exported symbols",
	Args:  cobra.NoArgs,
	RunE:  runExported,
}

func runExported(cmd *cobra.Command, args []string) error {
	engine, err := openEngine()
	if err != nil {
		return outputError("exported", err)
	}

	syms := symbolsToCLI(engine.Query().Symbols(refgraph.SymbolFilter{ExportedOnly: true}))

	count := len(syms)
	return outputResult(CLIResult{
		Command:    "exported",
		Results:    syms,
		TotalCount: &count,
	})
}

var nameCmd = &cobra.Command{
	Use:   "name <symbol-name>",
	Short: "Find symbols by exact name",
	Args:  cobra.ExactArgs(1),
	RunE:  runName,
}

func runName(cmd *cobra.Command, args []string) error {
	engine, err := openEngine()
	if err != nil {
		return outputError("name", err)
	}

	syms := symbolsToCLI(engine.Query().Symbols(refgraph.SymbolFilter{Name: args[0]}))

	count := len(syms)
	return outputResult(CLIResult{
		Command:    "name",
		Results:    syms,
		TotalCount: &count,
	})
}

var fileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "List symbols recorded for a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runFile,
}

func runFile(cmd *cobra.Command, args []string) error {
	engine, err := openEngine()
	if err != nil {
		return outputError("file", err)
	}

	g := engine.Graph()
	if !g.HasFile(args[0]) {
		return outputError("file", fmt.Errorf("file not indexed: %s", args[0]))
	}
	syms := symbolsToCLI(g.SymbolsByFile(args[0]))

	count := len(syms)
	return outputResult(CLIResult{
		Command:    "file",
		Results:    syms,
		TotalCount: &count,
	})
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show graph statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	engine, err := openEngine()
	if err != nil {
		return outputError("stats", err)
	}

	g := engine.Graph()
	stats := g.Stats()
	return outputResult(CLIResult{
		Command: "stats",
		Results: CLIStats{
			TotalSymbols:     stats.TotalSymbols,
			TotalReferences:  stats.TotalReferences,
			TotalFiles:       stats.TotalFiles,
			MemoryUsageBytes: stats.MemoryUsageBytes,
			DirtyFiles:       g.DirtyFiles(),
		},
	})
}

// --- Graph traversal commands ---

var transitiveCallersCmd = &cobra.Command{
	Use:   "transitive-callers <symbol-id>",
	Short: "Walk the caller graph from a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runTransitiveCallers,
}

var transitiveCalleesCmd = &cobra.Command{
	Use:   "transitive-callees <symbol-id>",
	Short: "Walk the callee graph from a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runTransitiveCallees,
}

func init() {
	transitiveCallersCmd.Flags().IntVar(&flagDepth, "depth", 10, "maximum traversal depth (capped at 100)")
	transitiveCalleesCmd.Flags().IntVar(&flagDepth, "depth", 10, "maximum traversal depth (capped at 100)")
}

func runTransitiveCallers(cmd *cobra.Command, args []string) error {
	return runTransitive("transitive-callers", args[0], true)
}

func runTransitiveCallees(cmd *cobra.Command, args []string) error {
	return runTransitive("transitive-callees", args[0], false)
}

func runTransitive(command, symbolID string, callers bool) error {
	engine, err := openEngine()
	if err != nil {
		return outputError(command, err)
	}

	q := engine.Query()
	var cg *refgraph.CallGraph
	if callers {
		cg, err = q.TransitiveCallers(symbolID, flagDepth)
	} else {
		cg, err = q.TransitiveCallees(symbolID, flagDepth)
	}
	if err != nil {
		return outputError(command, err)
	}
	if cg == nil {
		return outputError(command, fmt.Errorf("symbol not found: %s", symbolID))
	}

	g := engine.Graph()
	cli := CLICallGraph{
		Root:     cg.Root,
		Nodes:    make([]CLICallGraphNode, len(cg.Nodes)),
		Edges:    referencesToCLI(g, cg.Edges),
		MaxDepth: cg.Depth,
	}
	for i, n := range cg.Nodes {
		cli.Nodes[i] = CLICallGraphNode{Symbol: symbolToCLI(n.Symbol), Depth: n.Depth}
	}

	count := len(cli.Nodes)
	return outputResult(CLIResult{
		Command:    command,
		Results:    cli,
		TotalCount: &count,
	})
}

var hotspotsCmd = &cobra.Command{
	Use:   "hotspots",
	Short: "List the most-referenced symbols",
	Args:  cobra.NoArgs,
	RunE:  runHotspots,
}

func init() {
	hotspotsCmd.Flags().IntVar(&flagTop, "top", 20, "number of hotspots to show")
}

func runHotspots(cmd *cobra.Command, args []string) error {
	engine, err := openEngine()
	if err != nil {
		return outputError("hotspots", err)
	}

	items, err := engine.Query().Hotspots(flagTop)
	if err != nil {
		return outputError("hotspots", err)
	}

	cli := make([]CLIHotspot, len(items))
	for i, h := range items {
		cli[i] = CLIHotspot{
			Symbol:      symbolToCLI(h.Symbol),
			CallerCount: h.CallerCount,
			CalleeCount: h.CalleeCount,
		}
	}

	count := len(cli)
	return outputResult(CLIResult{
		Command:    "hotspots",
		Results:    cli,
		TotalCount: &count,
	})
}
