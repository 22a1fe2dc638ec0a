// Command ragmcp serves a local document corpus to LLM clients over MCP,
// fusing BM25 and vector search, and provides the ingestion, embedding,
// and evaluation subcommands that keep the index current.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("ragmcp\nVersion: %s\nBuild Time: %s\n", version, buildTime)
		os.Exit(0)
	}

	log.SetOutput(os.Stderr)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("received shutdown signal, stopping...")
		cancel()
	}()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, args)
	case "serve-http":
		err = runServeHTTP(ctx, args)
	case "ingest":
		err = runIngest(ctx, args)
	case "embed":
		err = runEmbed(ctx, args)
	case "search":
		err = runSearch(ctx, args)
	case "watch":
		err = runWatch(ctx, args)
	case "eval":
		err = runEval(ctx, args)
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "ragmcp: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Printf("ragmcp: %v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `ragmcp — local-first hybrid retrieval over a document corpus

Usage:
  ragmcp serve [--config PATH]
  ragmcp serve-http [--config PATH] [--port N]
  ragmcp ingest [--config PATH] [--force] [--cleanup]
  ragmcp embed [--config PATH] [--force]
  ragmcp search <query> [--config PATH] [--namespace N] [--agent A] [--k N] [--min-score F]
  ragmcp watch [--config PATH] [--debounce-ms N]
  ragmcp eval [--config PATH] --queries PATH
  ragmcp --version
`)
}
