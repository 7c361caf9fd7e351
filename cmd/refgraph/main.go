package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jward/refgraph"
	"github.com/jward/refgraph/scripts"
	"github.com/spf13/cobra"
)

var (
	flagDB     string
	flagFormat string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "refgraph",
	Short:         "In-memory symbol reference graph for code analysis",
	Long:          "Refgraph ingests symbol/reference dumps from external parsers into a queryable in-memory graph, with SQLite snapshots for persistence and Risor scripts for custom analyses.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "snapshot path (default: .refgraph/index.db relative to repo root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
}

var flagFresh bool

var loadCmd = &cobra.Command{
	Use:   "load <dump.json> [<dump.json>...]",
	Short: "Load parser dumps into the graph and snapshot it",
	Long:  "Applies one or more JSON dump files to the graph. Files already in the snapshot are replaced with full cascade; new files are added. The updated graph is written back to the snapshot.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLoad,
}

func init() {
	loadCmd.Flags().BoolVar(&flagFresh, "fresh", false, "start from an empty graph instead of the existing snapshot")
}

func runLoad(cmd *cobra.Command, args []string) error {
	start := time.Now()

	dbPath, err := ensureDBPath()
	if err != nil {
		return err
	}

	engine, err := refgraph.New()
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	if !flagFresh {
		if _, err := os.Stat(dbPath); err == nil {
			if err := engine.LoadSnapshot(dbPath); err != nil {
				return fmt.Errorf("loading snapshot: %w", err)
			}
		}
	}

	for _, dump := range args {
		if err := engine.LoadDump(dump); err != nil {
			return err
		}
	}

	if err := engine.SaveSnapshot(dbPath); err != nil {
		return err
	}

	stats := engine.Graph().Stats()
	fmt.Fprintf(os.Stderr, "Loaded %d dump(s) in %s: %d symbols, %d references, %d files\n",
		len(args),
		time.Since(start).Round(time.Millisecond),
		stats.TotalSymbols, stats.TotalReferences, stats.TotalFiles,
	)
	fmt.Fprintf(os.Stderr, "Snapshot: %s\n", dbPath)

	return nil
}

var (
	flagScriptsDir string
	flagSave       bool
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a Risor analysis script against the graph",
	Long:  "Loads the snapshot, executes a Risor script with the graph host functions bound, and optionally writes mutations back with --save. Built-in scripts are embedded; --scripts-dir loads from disk instead.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagScriptsDir, "scripts-dir", "", "load scripts from disk path instead of embedded")
	runCmd.Flags().BoolVar(&flagSave, "save", false, "write graph mutations back to the snapshot")
}

func runRun(cmd *cobra.Command, args []string) error {
	dbPath, err := ensureDBPath()
	if err != nil {
		return err
	}

	var opts []refgraph.Option
	if flagScriptsDir != "" {
		opts = append(opts, refgraph.WithScriptsDir(flagScriptsDir))
	} else {
		opts = append(opts, refgraph.WithScriptsFS(scripts.FS))
	}

	engine, err := refgraph.New(opts...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := engine.LoadSnapshot(dbPath); err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}
	}

	if err := engine.RunScript(context.Background(), resolveScriptPath(args[0])); err != nil {
		return fmt.Errorf("running script: %w", err)
	}

	if flagSave {
		if err := engine.SaveSnapshot(dbPath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Snapshot: %s\n", dbPath)
	}

	return nil
}

// resolveScriptPath lets built-in scripts be named by their bare name, so
// "deadcode" resolves to "analysis/deadcode.risor". Paths with an extension
// or a directory component pass through unchanged.
func resolveScriptPath(name string) string {
	if strings.ContainsAny(name, "/.") {
		return name
	}
	return "analysis/" + name + ".risor"
}

// ensureDBPath resolves the snapshot path and creates its parent directory.
func ensureDBPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}
	dbPath := resolveDBPath(findRepoRoot(cwd))

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return dbPath, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding .git.
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the snapshot path from the --db flag or the default.
func resolveDBPath(repoRoot string) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(repoRoot, flagDB)
	}
	return filepath.Join(repoRoot, ".refgraph", "index.db")
}
