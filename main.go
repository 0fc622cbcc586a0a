// rustsym indexes Rust declarations in a workspace and answers symbol queries.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	mcpgo "github.com/mark3labs/mcp-go/server"

	"github.com/phobologic/rustsym/internal/config"
	"github.com/phobologic/rustsym/internal/discover"
	"github.com/phobologic/rustsym/internal/engine"
	"github.com/phobologic/rustsym/internal/export"
	"github.com/phobologic/rustsym/internal/logging"
	"github.com/phobologic/rustsym/internal/mcpserver"
	"github.com/phobologic/rustsym/internal/model"
	"github.com/phobologic/rustsym/internal/ranking"
	"github.com/phobologic/rustsym/internal/toon"
)

var version = "dev"

func main() {
	args := os.Args[1:]

	var err error
	switch {
	case len(args) > 0 && args[0] == "init":
		err = runInit(args[1:], os.Stdout, os.Stderr)
	case len(args) > 0 && args[0] == "mcp":
		err = runMCP(args[1:], os.Stderr)
	default:
		err = run(args, os.Stdout, os.Stderr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// indexFlags are shared by every command that builds an index.
type indexFlags struct {
	configPath  string
	noToolchain bool
	logLevel    string
}

func (f *indexFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "config file (.toml or .yaml)")
	fs.BoolVar(&f.noToolchain, "no-toolchain", false, "do not index the toolchain standard library")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// openEngine loads config for root and builds the index.
func openEngine(ctx context.Context, root string, f indexFlags, stderr io.Writer) (*engine.Engine, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	cfg, err := config.Load(root, f.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.noToolchain {
		cfg.Toolchain = false
	}

	logger := logging.New(stderr, cfg.LogLevel, "engine")
	return engine.New(ctx, root, engineOptions(cfg, logger))
}

func engineOptions(cfg config.Config, logger *slog.Logger) engine.Options {
	var resolver discover.RootResolver = discover.NoSecondaryRoot{}
	if cfg.Toolchain {
		resolver = discover.Rustup{}
	}
	return engine.Options{
		Resolver:      resolver,
		Gitignore:     cfg.RespectGitignore,
		MaxFileSize:   cfg.MaxFileSize,
		SearchWorkers: cfg.SearchWorkers,
		Logger:        logger,
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("rustsym", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		idx         indexFlags
		query       string
		hasQuery    bool
		file        string
		complete    string
		lookup      string
		maxResults  int
		jsonOut     bool
		dbPath      string
		showVersion bool
	)

	idx.register(fs)
	queryFlag := func(v string) error {
		query = v
		hasQuery = true
		return nil
	}
	fs.Func("q", "workspace symbol search (empty string lists everything)", queryFlag)
	fs.Func("query", "workspace symbol search (empty string lists everything)", queryFlag)
	fs.StringVar(&file, "f", "", "list symbols declared in a file")
	fs.StringVar(&file, "file", "", "list symbols declared in a file")
	fs.StringVar(&complete, "complete", "", "list completion labels for a file")
	fs.StringVar(&lookup, "lookup", "", "find declarations with exactly this name")
	fs.IntVar(&maxResults, "n", 0, "maximum number of results to print")
	fs.IntVar(&maxResults, "max-results", 0, "maximum number of results to print")
	fs.BoolVar(&jsonOut, "json", false, "print JSON instead of TOON")
	fs.StringVar(&dbPath, "db", "", "write the symbol table to this SQLite file")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "rustsym %s\n", version)
		return nil
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	ctx := context.Background()
	e, err := openEngine(ctx, root, idx, stderr)
	if err != nil {
		return err
	}

	if dbPath != "" {
		if err := export.WriteSQLite(ctx, dbPath, e.Root(), e.Store()); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stderr, "wrote %d symbols to %s\n", e.Store().Len(), dbPath)
	}

	p := printer{stdout: stdout, root: e.Root(), json: jsonOut}

	switch {
	case hasQuery:
		return p.symbols("results", ranking.Limit(e.WorkspaceSymbols(query), maxResults))
	case file != "":
		symbols, ok := e.DocumentSymbols(file)
		if !ok {
			return fmt.Errorf("%s: no data (file not indexed)", file)
		}
		return p.symbols("symbols", ranking.Limit(symbols, maxResults))
	case complete != "":
		items, ok := e.Complete(complete)
		if !ok {
			return fmt.Errorf("%s: no data (file not indexed)", complete)
		}
		if maxResults > 0 && maxResults < len(items) {
			items = items[:maxResults]
		}
		return p.completions(items)
	case lookup != "":
		return p.symbols("definitions", ranking.Limit(e.Lookup(lookup), maxResults))
	default:
		return p.summary(e.Stats())
	}
}

func runMCP(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("rustsym mcp", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var idx indexFlags
	idx.register(fs)
	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	e, err := openEngine(context.Background(), root, idx, stderr)
	if err != nil {
		return err
	}

	s := mcpserver.New(mcpserver.NewHandler(e), version)
	_, _ = fmt.Fprintf(stderr, "rustsym MCP server serving %s\n", e.Root())
	if err := mcpgo.ServeStdio(s); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

type printer struct {
	stdout io.Writer
	root   string
	json   bool
}

type jsonSymbol struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Container string `json:"container,omitempty"`
	File      string `json:"file"`
	Line      int    `json:"line"`
}

func (p printer) symbols(name string, symbols []model.Symbol) error {
	if !p.json {
		_, err := fmt.Fprintln(p.stdout, toon.EncodeSymbols(name, p.root, symbols))
		return err
	}
	out := make([]jsonSymbol, len(symbols))
	for i := range symbols {
		s := &symbols[i]
		out[i] = jsonSymbol{
			Name:      s.Name,
			Kind:      string(s.Kind),
			Container: s.Container,
			File:      s.Location.File,
			Line:      s.Location.Line,
		}
	}
	return p.encode(out)
}

func (p printer) completions(items []model.CompletionItem) error {
	if !p.json {
		_, err := fmt.Fprintln(p.stdout, toon.EncodeCompletions(items))
		return err
	}
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = it.Label
	}
	return p.encode(labels)
}

func (p printer) summary(stats engine.Stats) error {
	if !p.json {
		_, err := fmt.Fprintln(p.stdout, toon.EncodeSummary(toon.Summary{
			Root:      stats.Root,
			Roots:     stats.Roots,
			Files:     stats.Files,
			Symbols:   stats.Symbols,
			Duration:  stats.Duration,
			IndexedAt: stats.IndexedAt,
		}))
		return err
	}
	return p.encode(map[string]any{
		"root":        stats.Root,
		"roots":       stats.Roots,
		"files":       stats.Files,
		"symbols":     stats.Symbols,
		"duration_ms": stats.Duration.Milliseconds(),
		"indexed_at":  stats.IndexedAt,
	})
}

func (p printer) encode(v any) error {
	enc := json.NewEncoder(p.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-q": true, "--q": true,
	"-query": true, "--query": true,
	"-f": true, "--f": true,
	"-file": true, "--file": true,
	"-complete": true, "--complete": true,
	"-lookup": true, "--lookup": true,
	"-n": true, "--n": true,
	"-max-results": true, "--max-results": true,
	"-db": true, "--db": true,
	"-config": true, "--config": true,
	"-log-level": true, "--log-level": true,
	"-target": true, "--target": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
