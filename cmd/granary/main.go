// Copyright 2025 Kestrel Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kestrelworks/granary"
	"github.com/kestrelworks/granary/config"
	"github.com/kestrelworks/granary/ingest"
	"github.com/kestrelworks/granary/watch"
)

func main() {
	app := &cli.App{
		Name:  "granary",
		Usage: "Knowledge ingestion and retrieval over a local vector store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides GRANARY_DB_PATH)",
			},
		},
		Before: setupLogger,
		Action: shellCommand,
		Commands: []*cli.Command{
			{
				Name:      "insert",
				Usage:     "Ingest text given on the command line",
				ArgsUsage: "<text>...",
				Action:    insertCommand,
			},
			{
				Name:      "insert-file",
				Usage:     "Ingest a single file",
				ArgsUsage: "<path>",
				Action:    insertFileCommand,
			},
			{
				Name:      "batch",
				Usage:     "Ingest every supported file under a directory",
				ArgsUsage: "<dir>",
				Action:    batchCommand,
			},
			{
				Name:   "watch",
				Usage:  "Watch a directory and ingest files as they appear or change",
				Action: watchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Directory to watch (overrides GRANARY_WATCH_DIR)",
					},
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period before a changed file is ingested",
					},
					&cli.BoolFlag{
						Name:  "skip-existing",
						Usage: "Do not ingest files already present in the directory",
					},
				},
			},
			{
				Name:      "search",
				Aliases:   []string{"query"},
				Usage:     "Find stored units similar to a query",
				ArgsUsage: "<query>...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 5,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a question using stored knowledge",
				ArgsUsage: "<question>...",
				Action:    askCommand,
			},
			{
				Name:   "count",
				Usage:  "Print the number of stored units",
				Action: countCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig builds the runtime configuration from the environment,
// letting command-line flags win over environment variables.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if db := c.String("db"); db != "" {
		cfg.DBPath = db
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openGranary(cfg *config.Config) (*granary.Granary, error) {
	g, err := granary.New(cfg.DBPath, granary.WithAIConfig(cfg.AIConfig()))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return g, nil
}

func newPipeline(g *granary.Granary, cfg *config.Config) (*ingest.Pipeline, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	return g.NewPipeline(
		ingest.WithPolicy(policy),
		ingest.WithRetry(cfg.MaxRetryAttempts, ingest.DefaultBaseDelay),
	)
}

func insertCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no text given")
	}
	text := strings.Join(c.Args().Slice(), " ")

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	g, err := openGranary(cfg)
	if err != nil {
		return err
	}
	defer g.Close()

	pipeline, err := newPipeline(g, cfg)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	result, err := pipeline.IngestText(context.Background(), text)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	if !result.Accepted {
		fmt.Println("already stored, skipped")
		return nil
	}
	fmt.Printf("stored %d units\n", result.Units)
	return nil
}

func insertFileCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file path")
	}
	path := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	g, err := openGranary(cfg)
	if err != nil {
		return err
	}
	defer g.Close()

	pipeline, err := newPipeline(g, cfg)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	result, err := pipeline.IngestFile(context.Background(), path)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	if !result.Accepted {
		fmt.Println("already stored, skipped")
		return nil
	}
	fmt.Printf("stored %d units from %s\n", result.Units, path)
	return nil
}

func batchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one directory path")
	}
	dir := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	g, err := openGranary(cfg)
	if err != nil {
		return err
	}
	defer g.Close()

	pipeline, err := newPipeline(g, cfg)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	uploader := ingest.NewBatchUploader(pipeline, os.Stderr)
	summary, err := uploader.UploadDir(context.Background(), dir)
	if err != nil {
		return fmt.Errorf("batch upload failed: %w", err)
	}

	fmt.Printf("scanned %d, ingested %d, skipped %d, failed %d\n",
		summary.Scanned, summary.Ingested, summary.Skipped, summary.Failed)
	return nil
}

func watchCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	dir := cfg.WatchDir
	if c.IsSet("dir") {
		dir = c.String("dir")
	}
	debounce := cfg.WatchDebounce
	if c.IsSet("debounce") {
		debounce = c.Duration("debounce")
	}

	g, err := openGranary(cfg)
	if err != nil {
		return err
	}
	defer g.Close()

	pipeline, err := newPipeline(g, cfg)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	watcher, err := g.NewWatcher(dir, pipeline, watch.WithDebounce(debounce))
	if err != nil {
		return err
	}

	ctx := context.Background()
	if !c.Bool("skip-existing") {
		if err := watcher.IngestExisting(ctx); err != nil {
			return fmt.Errorf("initial scan failed: %w", err)
		}
	}

	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Stop()

	fmt.Fprintf(os.Stderr, "watching %s (debounce %s), press Ctrl-C to stop\n", dir, debounce)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	fmt.Fprintln(os.Stderr, "shutting down")
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no query given")
	}
	q := strings.Join(c.Args().Slice(), " ")

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	g, err := openGranary(cfg)
	if err != nil {
		return err
	}
	defer g.Close()

	searcher, err := g.NewSearcher()
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := searcher.FindSimilar(context.Background(), q, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits in %s\n", len(results), time.Since(start).Round(time.Millisecond))
	for i, hit := range results {
		fmt.Printf("%d: %q (%s)[%0.3f]\n", i, hit.Record.Text, hit.Record.UnitID, hit.Score)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no question given")
	}
	question := strings.Join(c.Args().Slice(), " ")

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	g, err := openGranary(cfg)
	if err != nil {
		return err
	}
	defer g.Close()

	answerer, err := g.NewAnswerer()
	if err != nil {
		return err
	}

	answer, err := answerer.Answer(context.Background(), question)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for i, src := range answer.Sources {
			fmt.Printf("  [%d] %s [%0.3f]\n", i+1, src.Record.UnitID, src.Score)
		}
	}
	return nil
}

// shellCommand runs an interactive prompt loop. Lines starting with
// "insert " or "file " ingest; anything else is answered as a question.
func shellCommand(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	g, err := openGranary(cfg)
	if err != nil {
		return err
	}
	defer g.Close()

	pipeline, err := newPipeline(g, cfg)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	answerer, err := g.NewAnswerer()
	if err != nil {
		return err
	}

	ctx := context.Background()
	fmt.Println("granary shell: 'insert <text>', 'file <path>', a question, or 'exit'")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			return nil
		case strings.HasPrefix(line, "insert "):
			result, err := pipeline.IngestText(ctx, strings.TrimSpace(strings.TrimPrefix(line, "insert ")))
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			if !result.Accepted {
				fmt.Println("already stored, skipped")
				continue
			}
			fmt.Printf("stored %d units\n", result.Units)
		case strings.HasPrefix(line, "file "):
			result, err := pipeline.IngestFile(ctx, strings.TrimSpace(strings.TrimPrefix(line, "file ")))
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			if !result.Accepted {
				fmt.Println("already stored, skipped")
				continue
			}
			fmt.Printf("stored %d units\n", result.Units)
		default:
			answer, err := answerer.Answer(ctx, line)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println(answer.Text)
		}
	}
}

func countCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	g, err := openGranary(cfg)
	if err != nil {
		return err
	}
	defer g.Close()

	n, err := g.Store().Count(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("%d units stored\n", n)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
