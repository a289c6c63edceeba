// Command meterflow normalizes utility-meter readings from heterogeneous
// source files (delimited text, JSON, spreadsheet archives) into one
// universal tabular format.
//
// One-shot conversion:
//
//	meterflow -input releves.csv -output universel.csv -mapping mapping.json -source-name SYS_A
//
// Server mode exposes the same pipeline as a JSON API:
//
//	meterflow -serve -port 8080
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nboulle/meterflow/internal/config"
	"github.com/nboulle/meterflow/internal/logging"
	"github.com/nboulle/meterflow/internal/pipeline"
	"github.com/nboulle/meterflow/internal/web"
)

func main() {
	input := flag.String("input", "", "source file (csv, tsv, json, xlsx, exl)")
	output := flag.String("output", "", "output file; extension selects the format (.csv or .xlsx)")
	format := flag.String("format", "", "source format; defaults to the input file's extension")
	mappingPath := flag.String("mapping", "", "field mapping JSON file")
	sourceName := flag.String("source-name", "unknown", "source system label")
	serve := flag.Bool("serve", false, "run the HTTP API server instead of a one-shot conversion")
	host := flag.String("host", "", "server host (overrides SERVER_HOST)")
	port := flag.Int("port", 0, "server port (overrides SERVER_PORT)")
	flag.Parse()

	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err == nil {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if *serve {
		if *host != "" {
			cfg.Server.Host = *host
		}
		if *port != 0 {
			cfg.Server.Port = *port
		}
		runServer(cfg)
		return
	}

	if *input == "" || *output == "" || *mappingPath == "" {
		fmt.Fprintln(os.Stderr, "usage: meterflow -input <file> -output <file> -mapping <file> [-format csv|tsv|json|xlsx|exl] [-source-name NAME]")
		fmt.Fprintln(os.Stderr, "       meterflow -serve [-host HOST] [-port PORT]")
		os.Exit(2)
	}

	result, err := pipeline.RunFile(*input, *output, *format, *mappingPath, *sourceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%d/%d rows normalized -> %s\n", result.Written, result.Read, *output)
}

func runServer(cfg *config.Config) {
	server := web.NewServer(cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
