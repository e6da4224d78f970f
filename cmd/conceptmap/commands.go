package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/poiesic/conceptmap/annotate/conllu"
	"github.com/poiesic/conceptmap/config"
	"github.com/poiesic/conceptmap/core"
	"github.com/poiesic/conceptmap/graph"
	"github.com/poiesic/conceptmap/pipeline"
	"github.com/urfave/cli/v2"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatDOT  = "dot"
)

func analyzeCommand(c *cli.Context) error {
	format := strings.ToLower(c.String("format"))
	if format != formatText && format != formatJSON && format != formatDOT {
		return fmt.Errorf("invalid format %q: must be one of text, json, dot", format)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cm, err := openConceptMap(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer cm.Close()

	var result *pipeline.Result
	if path := c.String("conllu"); path != "" {
		tokens, err := readCoNLLU(path)
		if err != nil {
			return err
		}
		result, err = cm.AnalyzeTokens(cfg.Language, tokens, "")
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
	} else {
		text, err := readInput(c)
		if err != nil {
			return err
		}
		result, err = cm.Analyze(c.Context, pipeline.Request{Text: text, Language: cfg.Language})
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
	}

	if result.Empty() {
		slog.Warn("no concepts found in input", "language", result.Language)
	}
	return writeResult(c.App.Writer, result, format, c.Int("top"))
}

func batchCommand(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return errors.New("at least one input file is required")
	}
	format := strings.ToLower(c.String("format"))
	if format != formatJSON && format != formatDOT {
		return fmt.Errorf("invalid format %q: must be one of json, dot", format)
	}
	batchSize := c.Int("batch-size")
	if batchSize <= 0 {
		return errors.New("batch-size must be greater than 0")
	}
	if c.Int("report-interval") <= 0 {
		return errors.New("report-interval must be greater than 0")
	}

	outDir := c.String("out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cm, err := openConceptMap(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer cm.Close()

	stderr := errWriter(c)
	fmt.Fprintf(stderr, "Documents: %d\n", len(files))
	fmt.Fprintf(stderr, "Language: %s\n", cfg.Language)
	fmt.Fprintf(stderr, "Strategy: %s\n", cfg.Strategy)
	fmt.Fprintf(stderr, "Output: %s\n", outDir)
	fmt.Fprintln(stderr)

	names := outputNames(files, format)
	tracker := newProgressTracker(stderr, len(files), c.Int("report-interval"))
	tracker.Start()

	for start := 0; start < len(files); start += batchSize {
		if err := c.Context.Err(); err != nil {
			tracker.Finish()
			return err
		}
		end := min(start+batchSize, len(files))

		var reqs []pipeline.Request
		var idx []int
		failed := 0
		for i := start; i < end; i++ {
			data, err := os.ReadFile(files[i])
			if err != nil {
				slog.Error("failed to read document", "file", files[i], "err", err)
				failed++
				continue
			}
			reqs = append(reqs, pipeline.Request{Text: string(data), Language: cfg.Language})
			idx = append(idx, i)
		}

		results, err := cm.AnalyzeBatch(c.Context, reqs)
		if err != nil {
			slog.Error("documents failed", "err", err)
		}
		for j, result := range results {
			file := files[idx[j]]
			if result == nil {
				failed++
				continue
			}
			if result.Empty() {
				slog.Warn("no concepts found in document", "file", file)
			}
			if err := writeGraphFile(filepath.Join(outDir, names[idx[j]]), result.Graph, format); err != nil {
				slog.Error("failed to write graph", "file", file, "err", err)
				failed++
			}
		}
		tracker.Add(end-start, failed)
	}
	tracker.Finish()

	fmt.Fprintf(stderr, "Completed in %s\n", tracker.Elapsed().Round(time.Millisecond))
	if n := tracker.Failed(); n > 0 {
		return fmt.Errorf("%d of %d documents failed", n, len(files))
	}
	return nil
}

func annotateCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	text, err := readInput(c)
	if err != nil {
		return err
	}

	cm, err := openConceptMap(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer cm.Close()

	tokens, err := cm.Annotate(c.Context, text, cfg.Language)
	if err != nil {
		return fmt.Errorf("annotation failed: %w", err)
	}
	if len(tokens) == 0 {
		slog.Warn("input is empty after normalization")
	}
	return conllu.Write(c.App.Writer, tokens)
}

func fetchModelCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cm, err := openConceptMap(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer cm.Close()

	if err := cm.Acquire(c.Context, cfg.Language); err != nil {
		return fmt.Errorf("failed to fetch model: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Model for %s is installed\n", cfg.Language)
	return nil
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("lang") {
		cfg.Language = core.Language(c.String("lang"))
	}
	if c.IsSet("strategy") {
		cfg.Strategy = core.Strategy(c.String("strategy"))
	}
	if c.IsSet("scale") {
		cfg.Scale = c.Int("scale")
	}
	if c.IsSet("workers") {
		cfg.PoolSize = c.Int("workers")
	}

	ann := &cfg.Annotator
	if c.IsSet("backend") {
		ann.Backend = c.String("backend")
	}
	if c.IsSet("model") {
		if ann.Models == nil {
			ann.Models = make(map[string]string)
		}
		ann.Models[strings.ToLower(strings.TrimSpace(string(cfg.Language)))] = c.String("model")
	}
	if c.IsSet("python") {
		ann.Python = c.String("python")
	}
	if c.IsSet("llm-host") {
		ann.LLM.Host = c.String("llm-host")
	}
	if c.IsSet("llm-model") {
		ann.LLM.Model = c.String("llm-model")
	}
	if c.IsSet("llm-token") {
		ann.LLM.Token = c.String("llm-token")
	}

	if c.IsSet("cache-dir") {
		cfg.Cache.Dir = c.String("cache-dir")
	}
	if c.Bool("no-cache") {
		cfg.Cache.Dir = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readInput returns the document from the arguments, --file or stdin.
func readInput(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	if path := c.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return string(data), nil
	}

	r := c.App.Reader
	if r == nil {
		r = os.Stdin
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func readCoNLLU(path string) ([]core.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CoNLL-U file: %w", err)
	}
	defer f.Close()

	tokens, err := conllu.Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return tokens, nil
}

func writeResult(w io.Writer, result *pipeline.Result, format string, top int) error {
	switch format {
	case formatJSON:
		return graph.WriteJSON(w, result.Graph)
	case formatDOT:
		return graph.WriteDOT(w, result.Graph)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Language:\t%s\n", result.Language)
	fmt.Fprintf(tw, "Strategy:\t%s\n", result.Strategy)
	fmt.Fprintf(tw, "Concepts:\t%d (%d mentions)\n", result.Concepts.Len(), result.Concepts.Total())
	fmt.Fprintf(tw, "Edges:\t%d\n", result.Graph.EdgeCount())

	fmt.Fprintln(tw, "\nTop terms:")
	for _, tc := range result.TopTerms(top) {
		fmt.Fprintf(tw, "  %s\t%d\n", tc.Term, tc.Count)
	}

	arrow := "--"
	if result.Graph.Directed() {
		arrow = "->"
	}
	fmt.Fprintln(tw, "\nRelations:")
	for _, e := range result.Graph.Edges() {
		fmt.Fprintf(tw, "  %s %s %s\t%d\n", e.Source, arrow, e.Target, e.Weight)
	}
	return tw.Flush()
}

func writeGraphFile(path string, g *core.Graph, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if format == formatDOT {
		err = graph.WriteDOT(f, g)
	} else {
		err = graph.WriteJSON(f, g)
	}
	return errors.Join(err, f.Close())
}

// outputNames maps each input file to a unique output file name.
func outputNames(files []string, format string) []string {
	names := make([]string, len(files))
	used := make(map[string]bool)
	for i, file := range files {
		base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		name := base + "." + format
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s-%d.%s", base, n, format)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}
