// Command argscope resolves the calls of Python files against the
// functions they call and reports arguments that cannot bind.
//
// Usage:
//
//	argscope [flags] path...
//
// Directories are searched for .py and .pyi files.
//
// The exit status is 1 when any issue was found and 2 on usage or I/O
// errors.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/funvibe/argscope/internal/analyzer"
	"github.com/funvibe/argscope/internal/config"
	"github.com/funvibe/argscope/internal/diagnostics"
	"github.com/funvibe/argscope/internal/issuestore"
	"github.com/funvibe/argscope/internal/parser"
	"github.com/funvibe/argscope/internal/pipeline"
	"github.com/funvibe/argscope/internal/utils"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// result is what one file produced. Cached results carry issues only.
type result struct {
	path    string
	calls   []pipeline.CallReport
	dynamic []pipeline.FunctionReport
	issues  []*diagnostics.DiagnosticError
	cached  bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("argscope", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to argscope.yaml (default: searched upwards from the first file)")
	dbPath := fs.String("db", "", "keep issues in this SQLite database and skip unchanged files")
	jobs := fs.Int("j", runtime.NumCPU(), "number of files analyzed in parallel")
	noColor := fs.Bool("no-color", false, "disable styled output")
	showCalls := fs.Bool("calls", false, "print the binding of every call")
	verbose := fs.Bool("v", false, "log analysis details to stderr")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: argscope [flags] path...\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	files, err := utils.SourceFiles(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "argscope: %s\n", err)
		return 2
	}

	logger := zap.NewNop()
	if *verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			logger = l
		}
	}
	defer logger.Sync()

	cfg, err := loadConfig(*configPath, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "argscope: %s\n", err)
		return 2
	}

	var store *issuestore.Store
	if *dbPath != "" {
		store, err = issuestore.Open(ctx, *dbPath)
		if err != nil {
			fmt.Fprintf(stderr, "argscope: %s\n", err)
			return 2
		}
		defer store.Close()
	}
	settings, err := cfg.Marshal()
	if err != nil {
		fmt.Fprintf(stderr, "argscope: %s\n", err)
		return 2
	}

	results := make([]result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, *jobs))
	for i, path := range files {
		g.Go(func() error {
			r, err := analyzeFile(gctx, path, cfg, settings, store, logger)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(stderr, "argscope: %s\n", err)
		return 2
	}

	p := newPrinter(stdout, !*noColor && isTerminal(stdout))
	failed := false
	for _, r := range results {
		if *showCalls {
			p.calls(r)
		}
		p.issues(r)
		if len(r.issues) > 0 {
			failed = true
		}
	}
	if failed {
		return 1
	}
	return 0
}

// loadConfig reads the configuration named on the command line, or the
// nearest argscope.yaml above the first path, or the defaults.
func loadConfig(explicit, firstPath string) (*config.Config, error) {
	if explicit != "" {
		return config.LoadConfig(explicit)
	}
	found, err := config.FindConfig(utils.ConfigSearchDir(firstPath))
	if err != nil {
		return nil, err
	}
	if found == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(found)
}

// analyzeFile runs the pipeline over one file. With a store, results are
// reused while both the file and the settings are unchanged.
func analyzeFile(ctx context.Context, path string, cfg *config.Config, settings []byte, store *issuestore.Store, logger *zap.Logger) (result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return result{}, fmt.Errorf("reading %s: %w", path, err)
	}

	hash := issuestore.Hash(source, settings)
	if store != nil {
		fresh, err := store.Fresh(ctx, path, hash)
		if err != nil {
			return result{}, err
		}
		if fresh {
			issues, err := store.Issues(ctx, path)
			logger.Debug("using stored issues", zap.String("file", path), zap.Int("issues", len(issues)))
			return result{path: path, issues: issues, cached: true}, err
		}
	}

	pctx := pipeline.NewPipelineContext(path, source, cfg)
	pctx.SetLogger(logger)
	pctx = pipeline.New(
		&parser.ParserProcessor{Ctx: ctx},
		&analyzer.ResolverProcessor{},
	).Run(pctx)

	r := result{
		path:    path,
		calls:   pctx.Calls,
		dynamic: pctx.DynamicParams,
		issues:  pctx.Errors(),
	}
	if store != nil {
		if err := store.Replace(ctx, path, hash, r.issues); err != nil {
			return result{}, err
		}
	}
	return r, nil
}
