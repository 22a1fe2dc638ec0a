package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/dshills/ragmcp/internal/eval"
	"github.com/dshills/ragmcp/internal/ingest"
	"github.com/dshills/ragmcp/internal/search"
	"github.com/dshills/ragmcp/internal/transport"
	"github.com/dshills/ragmcp/internal/watcher"
	"github.com/dshills/ragmcp/pkg/domain"
)

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cfgPath := configFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := buildApp(ctx, *cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	stdio := transport.NewStdio(a.dispatcher)
	log.Println("ragmcp stdio server ready")
	return stdio.Serve(ctx)
}

func runServeHTTP(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve-http", flag.ContinueOnError)
	cfgPath := configFlag(fs)
	port := fs.Int("port", 0, "override http_server.port from config")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := buildApp(ctx, *cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	p := a.cfg.HTTPServer.Port
	if *port > 0 {
		p = *port
	}

	httpT := transport.NewHTTP(a.dispatcher, a.store, transport.HTTPConfig{
		Addr:           fmt.Sprintf(":%d", p),
		Authless:       a.cfg.HTTPServer.Authless,
		BearerToken:    a.cfg.HTTPServer.BearerToken,
		AllowedOrigins: []string{"*"},
	})
	log.Printf("ragmcp http server listening on :%d (authless=%v)", p, a.cfg.HTTPServer.Authless)
	return httpT.ListenAndServe(ctx)
}

func runIngest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	cfgPath := configFlag(fs)
	force := fs.Bool("force", false, "re-ingest every document regardless of content hash")
	cleanup := fs.Bool("cleanup", false, "remove index entries for files no longer on disk")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := buildApp(ctx, *cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	report, err := a.ingester.Run(ctx, ingest.Options{Force: *force, Cleanup: *cleanup})
	if err != nil {
		return err
	}
	log.Printf("ingest: scanned=%d created=%d updated=%d unchanged=%d removed=%d errors=%d",
		report.Scanned, report.Created, report.Updated, report.Unchanged, report.Removed, report.Errors)
	for _, msg := range report.ErrorMessages {
		log.Printf("ingest error: %s", msg)
	}
	return nil
}

func runEmbed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("embed", flag.ContinueOnError)
	cfgPath := configFlag(fs)
	force := fs.Bool("force", false, "re-embed chunks that already have an embedding")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := buildApp(ctx, *cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	report, err := a.embedder.EmbedMissing(ctx, *force)
	if err != nil {
		return err
	}
	log.Printf("embed: %+v", report)
	return nil
}

func runSearch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	cfgPath := configFlag(fs)
	namespace := fs.String("namespace", "", "restrict results to this namespace")
	agent := fs.String("agent", "", "restrict results to this agent name")
	k := fs.Int("k", 0, "number of results to return (0 uses the configured default)")
	minScore := fs.Float64("min-score", -1, "minimum fused score (negative uses the configured default)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("search: a query string is required")
	}
	query := fs.Arg(0)

	a, err := buildApp(ctx, *cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	req := search.Request{
		Query:        query,
		K:            *k,
		Filters:      domain.SearchFilters{Namespace: *namespace, AgentName: *agent},
		MinScore:     a.cfg.Search.MinScore,
		BM25Weight:   a.cfg.Search.HybridBM25Weight,
		VectorWeight: a.cfg.Search.HybridVectorWeight,
	}
	if req.K == 0 {
		req.K = a.cfg.Search.DefaultK
	}
	if *minScore >= 0 {
		req.MinScore = *minScore
	}

	results, err := a.fusion.Search(ctx, req)
	if err != nil {
		return err
	}
	for i, r := range results {
		fmt.Printf("%d. [%s] %s (score=%.4f, method=%s)\n   %s\n", i+1, r.SectionHeader, r.DocPath, r.Score, r.Method, snippet(r.ChunkText))
	}
	return nil
}

func snippet(text string) string {
	const maxLen = 160
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}

func runWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	cfgPath := configFlag(fs)
	debounceMS := fs.Int("debounce-ms", 0, "debounce window before re-ingesting (0 uses the watcher default)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := buildApp(ctx, *cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	debounce := watcher.DefaultDebounce
	if *debounceMS > 0 {
		debounce = time.Duration(*debounceMS) * time.Millisecond
	}

	w, err := watcher.New(a.cfg.RAGMCP.RAGFolder, a.ingester, debounce)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	log.Printf("watching %s for changes", a.cfg.RAGMCP.RAGFolder)
	return w.Run(ctx)
}

func runEval(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	cfgPath := configFlag(fs)
	queriesPath := fs.String("queries", "", "path to the JSON evaluation dataset")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *queriesPath == "" {
		return fmt.Errorf("eval: --queries is required")
	}

	a, err := buildApp(ctx, *cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	queries, err := eval.LoadQueries(*queriesPath)
	if err != nil {
		return err
	}
	report, err := eval.Run(ctx, a.fusion, a.store, queries)
	if err != nil {
		return err
	}

	fmt.Printf("precision@5=%.3f (>=%.2f) recall@10=%.3f (>=%.2f) mrr=%.3f (>=%.2f)\n",
		report.AvgPrecision, eval.ThresholdPrecision,
		report.AvgRecall, eval.ThresholdRecall,
		report.MRR, eval.ThresholdMRR)
	for _, q := range report.Queries {
		fmt.Printf("  %-30s precision@5=%.3f recall@10=%.3f n=%d\n", q.Query, q.PrecisionAt5, q.RecallAt10, q.ResultCount)
	}

	if !report.Pass() {
		return fmt.Errorf("eval: thresholds not met")
	}
	return nil
}
