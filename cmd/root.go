package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"omnidoc/internal/chunker"
	"omnidoc/internal/config"
	"omnidoc/internal/embedding"
	"omnidoc/internal/index"
	"omnidoc/internal/index/chromemdb"
	"omnidoc/internal/index/pgindex"
	"omnidoc/internal/ingest"
	"omnidoc/internal/llm"
	"omnidoc/internal/monitor"
	"omnidoc/internal/rag"
)

var configFilePath string

var rootCmd = &cobra.Command{
	Use:   "omnidoc",
	Short: "Retrieval-augmented question answering over uploaded documents and websites",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFilePath, "config", "./configs/config.yaml", "Path to the config file")
	rootCmd.AddCommand(serveCmd, ingestCmd, queryCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the wired pipeline shared by the subcommands.
type app struct {
	cfg     *config.Config
	index   index.Index
	router  *ingest.Router
	rag     *rag.RAG
	sink    *monitor.Sink
	cleanup func()
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, err
	}
	chat, err := llm.NewChat(&cfg.ChatLLM)
	if err != nil {
		return nil, err
	}

	var idx index.Index
	cleanup := func() {}
	switch cfg.Index.Backend {
	case "postgres":
		sqldb, err := pgindex.ConnectDB(&cfg.Index)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		store := pgindex.New(sqldb, embedder, cfg.Index.Debug)
		if err := store.Init(ctx); err != nil {
			return nil, fmt.Errorf("initializing database: %w", err)
		}
		idx = store
		cleanup = func() { store.Close() }
	default:
		store, err := chromemdb.New(cfg.Index.Path, cfg.Index.Collection, embedder)
		if err != nil {
			return nil, fmt.Errorf("creating vector store: %w", err)
		}
		idx = store
	}

	sink, err := monitor.NewSink(cfg.Monitor.LogFile)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("creating telemetry sink: %w", err)
	}

	splitter := chunker.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	router := ingest.NewRouter(idx, splitter, llm.NewTableFilter(chat))

	return &app{
		cfg:     cfg,
		index:   idx,
		router:  router,
		rag:     rag.New(idx, chat, sink, &cfg.RAG),
		sink:    sink,
		cleanup: cleanup,
	}, nil
}
