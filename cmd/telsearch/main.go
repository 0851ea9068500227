// Copyright 2025 Poiesic Systems
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
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/telsearch"
	"github.com/poiesic/telsearch/ai"
	"github.com/poiesic/telsearch/ai/openai"
	"github.com/poiesic/telsearch/core"
	"github.com/poiesic/telsearch/reembed"
	"github.com/poiesic/telsearch/storage/badger"
)

func main() {
	serviceFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "rerank-host",
			Usage: "Cross-encoder rerank service host URL (empty disables reranking)",
		},
		&cli.StringFlag{
			Name:  "rerank-model",
			Usage: "Cross-encoder model name",
		},
	}

	app := &cli.App{
		Name:  "telsearch",
		Usage: "Hybrid retrieval over telecom agreement documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Load documents from a JSON file and rebuild the search index",
				Action: indexCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "docs",
						Usage:    "Path to the JSON document corpus",
						Required: true,
					},
				}, serviceFlags...),
			},
			{
				Name:      "search",
				Usage:     "Run the full retrieval pipeline for one query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "top",
						Usage: "Maximum number of documents to return",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "context",
						Usage: "Print the assembled evidence block instead of the ranked list",
					},
				}, serviceFlags...),
			},
			{
				Name:      "explain",
				Usage:     "Run one query and dump every pipeline stage",
				ArgsUsage: "<query>",
				Action:    explainCommand,
				Flags:     serviceFlags,
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all stored passages with the configured embedding model",
				Action: reembedCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of passages to embed in each batch",
						Value: 32,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N passages",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				}, serviceFlags...),
			},
			{
				Name:      "cascade",
				Usage:     "Resolve one query with the cheapest confident layer",
				ArgsUsage: "<query>",
				Action:    cascadeCommand,
				Flags:     serviceFlags,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openEngine wires storage and model services from the shared flags.
// The returned cleanup closes them in reverse order.
func openEngine(c *cli.Context, opts ...telsearch.Option) (*telsearch.Engine, func(), error) {
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	passageRepo, err := badger.NewPassageRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to create passage repository: %w", err)
	}
	documentRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		passageRepo.Close()
		backend.Close()
		return nil, nil, fmt.Errorf("failed to create document repository: %w", err)
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithRerankHost(c.String("rerank-host")),
		ai.WithRerankModel(c.String("rerank-model")),
	)
	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		documentRepo.Close()
		passageRepo.Close()
		backend.Close()
		return nil, nil, fmt.Errorf("failed to create AI provider: %w", err)
	}

	engine, err := telsearch.NewEngine(passageRepo, documentRepo, provider, opts...)
	if err != nil {
		provider.Close()
		documentRepo.Close()
		passageRepo.Close()
		backend.Close()
		return nil, nil, fmt.Errorf("failed to create engine: %w", err)
	}

	cleanup := func() {
		provider.Close()
		documentRepo.Close()
		passageRepo.Close()
		backend.Close()
	}
	return engine, cleanup, nil
}

func loadDocuments(path string) ([]*core.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}
	var docs []*core.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file: %w", err)
	}
	return docs, nil
}

func queryArg(c *cli.Context) (string, error) {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return "", fmt.Errorf("a query argument is required")
	}
	return query, nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	docs, err := loadDocuments(c.String("docs"))
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("corpus file contains no documents")
	}

	engine, cleanup, err := openEngine(c)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Documents: %d\n", len(docs))
	fmt.Fprintln(os.Stderr)

	if err := engine.Rebuild(ctx, docs); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query, err := queryArg(c)
	if err != nil {
		return err
	}

	engine, cleanup, err := openEngine(c, telsearch.WithFinalLimit(c.Int("top")))
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.Load(ctx); err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	result, err := engine.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if c.Bool("context") {
		fmt.Print(engine.BuildContext(result))
		return nil
	}

	if result.Empty() {
		fmt.Println("No matching document.")
		return nil
	}
	for i, match := range result.Documents {
		heading := match.DocID
		if doc := engine.Document(match.DocID); doc != nil && doc.TitleFR != "" {
			heading = fmt.Sprintf("%s — %s", match.DocID, doc.TitleFR)
		}
		fmt.Printf("%d. %s (score %.3f)\n", i+1, heading, match.Score)
		if match.Best.Passage != nil {
			fmt.Printf("   %s\n", match.Best.Passage.Text)
		}
	}
	fmt.Printf("\nretrieved=%d filtered=%d dense=%v cross_encoder=%v\n",
		result.RetrievedCount, result.FilteredCount, result.DenseUsed, result.CrossEncoderUsed)
	return nil
}

func explainCommand(c *cli.Context) error {
	ctx := context.Background()

	query, err := queryArg(c)
	if err != nil {
		return err
	}

	engine, cleanup, err := openEngine(c)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.Load(ctx); err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	exp, err := engine.Explain(ctx, query)
	if err != nil {
		return fmt.Errorf("explain failed: %w", err)
	}

	fmt.Printf("query: %q\n", exp.Analysis.Raw)
	fmt.Printf("  normalized: %q\n", exp.Analysis.Normalized)
	fmt.Printf("  expanded:   %q\n", exp.Analysis.Expanded)
	fmt.Printf("  lang=%s intent=%s (%.2f) entities=%v hard_filter=%v\n",
		exp.Analysis.Lang, exp.Analysis.Intent, exp.Analysis.IntentConfidence,
		exp.Analysis.Entities, exp.Analysis.HardFilter)
	fmt.Printf("  prices=%v speeds=%v free=%v beneficiary=%s\n",
		exp.Analysis.Prices, exp.Analysis.Speeds, exp.Analysis.WantsFree, exp.Analysis.Beneficiary)

	fmt.Printf("\nrule candidates (%d):\n", len(exp.RuleCandidates))
	for _, cand := range exp.RuleCandidates {
		fmt.Printf("  %-30s %.2f\n", cand.DocID, cand.Score)
	}
	fmt.Printf("sparse hits: %d, dense hits: %d\n", len(exp.SparseHits), len(exp.DenseHits))

	fmt.Printf("\nfused candidates (%d):\n", len(exp.Fused))
	for _, cand := range exp.Fused {
		fmt.Printf("  %-30s hybrid=%.4f sparse=%.4f dense=%.4f rule=%.2f num=%.2f sig=%.2f\n",
			cand.Passage.DocID, cand.Hybrid, cand.Sparse, cand.Dense,
			cand.Rule, cand.NumericBoost, cand.SignatureBoost)
	}

	fmt.Printf("\nreranked (cross_encoder=%v):\n", exp.CrossEncoderUsed)
	for _, cand := range exp.Reranked {
		fmt.Printf("  %-30s final=%.4f\n", cand.Passage.DocID, cand.Final)
	}

	fmt.Printf("\nfinal documents (%d):\n", len(exp.Result.Documents))
	for i, match := range exp.Result.Documents {
		fmt.Printf("  %d. %s score=%.4f support=%d\n", i+1, match.DocID, match.Score, len(match.Support))
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewPassageRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create passage repository: %w", err)
	}
	defer repo.Close()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}
	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembed.NewReembedder(repo, embedder, reembedConfig, os.Stderr).Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func cascadeCommand(c *cli.Context) error {
	ctx := context.Background()

	query, err := queryArg(c)
	if err != nil {
		return err
	}

	engine, cleanup, err := openEngine(c)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.Load(ctx); err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	res, err := engine.Cascade(ctx, query)
	if err != nil {
		return fmt.Errorf("cascade failed: %w", err)
	}

	if !res.Found {
		fmt.Println("layer=not_found")
		return nil
	}
	fmt.Printf("layer=%s doc=%s score=%.4f\n", res.Layer, res.DocID, res.Score)
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
