// Package main is the kura CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hyperjump/kura/internal/cli"
	"github.com/hyperjump/kura/internal/config"
	"github.com/hyperjump/kura/internal/embedding"
	"github.com/hyperjump/kura/internal/extract"
	"github.com/hyperjump/kura/internal/indexer"
	"github.com/hyperjump/kura/internal/storage"
	"github.com/hyperjump/kura/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "kura: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("kura", flag.ContinueOnError)
	fs.SetOutput(stderr)
	reset := fs.Bool("reset", false, "Delete the vector store before ingesting")
	fs.Usage = func() {
		fmt.Fprintf(stderr, `kura - load PDFs into a persistent vector store

Usage:
  kura [--reset]

Configuration comes from the environment (and a .env file):
  %s, %s, %s, %s, %s, %s
Set %s to read a YAML config file first, and %s=json for a JSON summary.

Flags:
`, config.EnvModelName, config.EnvStoragePath, config.EnvDataPath,
			config.EnvChunkSize, config.EnvChunkOverlap, config.EnvDevice, config.EnvConfigFile, config.EnvOutput)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg, err := config.Load(os.Getenv(config.EnvConfigFile))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	format, err := cli.ParseOutputFormat(cfg.Output)
	if err != nil {
		return err
	}

	baseLogger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = baseLogger.Sync() }()
	logger, runID := utils.WithRunID(baseLogger)

	if *reset {
		logger.Info("resetting vector store", zap.String("path", cfg.Storage.Path))
		if err := storage.Reset(cfg.Storage.Path); err != nil {
			return fmt.Errorf("failed to reset store: %w", err)
		}
	}

	emb, err := embedding.New(embedding.Config{
		Provider:       cfg.Embedding.Provider,
		ModelName:      cfg.Embedding.ModelName,
		TokenizerPath:  cfg.Embedding.TokenizerPath,
		Device:         cfg.Embedding.Device,
		Normalize:      cfg.Embedding.NormalizeOrDefault(),
		BaseURL:        cfg.Embedding.BaseURL,
		APIKey:         cfg.Embedding.APIKey,
		Dimensions:     cfg.Embedding.Dimensions,
		MaxTokens:      cfg.Embedding.MaxTokens,
		RuntimeLibrary: cfg.Embedding.RuntimeLibrary,
	})
	if err != nil {
		return err
	}
	defer emb.Close()

	coll, err := storage.OpenCollection(ctx, cfg.Storage.Path, emb, storage.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer coll.Close()

	splitter, err := indexer.NewSplitter(cfg.Chunking.SizeOrDefault(), cfg.Chunking.OverlapOrDefault())
	if err != nil {
		return err
	}
	idx := indexer.NewIndexer(coll, splitter, extract.NewExtractor(), indexer.WithLogger(logger))
	res, err := idx.Run(ctx, cfg.DataPath)
	if err != nil {
		return err
	}

	storeBytes, err := storage.DiskUsageBytes(cfg.Storage.Path)
	if err != nil {
		logger.Warn("failed to measure store size", zap.Error(err))
	}
	logger.Info("ingestion complete",
		zap.Int("documents", res.Documents),
		zap.Int("chunks", res.Chunks),
		zap.Int("added", res.Added),
		zap.Int64("store_bytes", storeBytes),
	)
	return cli.WriteRunSummary(stdout, cli.NewRunSummary(runID, cfg.Storage.Path, *reset, res, storeBytes), format)
}
