package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/lostmarbl3/f-ai/internal/config"
	"github.com/lostmarbl3/f-ai/internal/mcp"
	"github.com/lostmarbl3/f-ai/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	remoteURL := flag.String("url", "", "base URL of a remote FitTrack server; empty for local database mode")
	apiKey := flag.String("api-key", os.Getenv("FITTRACK_API_KEY"), "API key for the remote server")
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	flag.Parse()

	// stdout belongs to the stdio transport; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *remoteURL != "" {
		ds = mcp.NewHTTPClient(*remoteURL, *apiKey)
		log.Info("FitTrack MCP starting", "version", Version, "mode", "remote", "url", *remoteURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		switch cfg.Database.Driver {
		case "postgres":
			pg, err := storage.OpenPostgres(context.Background(), cfg.Database.DSN())
			if err != nil {
				log.Error("failed to open postgres store", "error", err)
				os.Exit(1)
			}
			defer pg.Close()
			ds = pg
		default:
			sq, err := storage.OpenSQLite(cfg.Database.Path)
			if err != nil {
				log.Error("failed to open sqlite store", "error", err)
				os.Exit(1)
			}
			defer sq.Close()
			ds = sq
		}
		log.Info("FitTrack MCP starting", "version", Version, "mode", "local", "driver", cfg.Database.Driver)
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
