package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/griddock/stationscope/internal/config"
	"github.com/griddock/stationscope/internal/processor"
	"github.com/griddock/stationscope/internal/server"
	"github.com/griddock/stationscope/internal/store"
	"github.com/griddock/stationscope/internal/version"
)

func main() {
	// Subcommands first: "stationscope backup ..." / "stationscope restore ...".
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "backup":
			runBackup(os.Args[2:])
			return
		case "restore":
			runRestore(os.Args[2:])
			return
		}
	}

	configPath := flag.String("config", "", "path to configuration file")
	process := flag.Bool("process", false, "process the export files given as arguments and print the result as JSON")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	if *process {
		if err := runOnce(logger, flag.Args()); err != nil {
			logger.Fatal("processing failed", zap.Error(err))
		}
		return
	}

	serve(logger, *configPath)
}

// runOnce processes the given export files and writes the batch result to
// stdout. One-shot mode; nothing is persisted.
func runOnce(logger *zap.Logger, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no export files given")
	}

	files := make([]processor.InputFile, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %q: %w", path, err)
		}
		files = append(files, processor.InputFile{
			Name:    filepath.Base(path),
			Content: string(content),
		})
	}

	result, err := processor.New(logger).ProcessFiles(context.Background(), files)
	if err != nil {
		return err
	}
	if result.Metadata.ProcessedFiles == 0 {
		return fmt.Errorf("no files could be parsed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// serve runs the HTTP server until SIGINT/SIGTERM.
func serve(logger *zap.Logger, configPath string) {
	logger.Info("StationScope server starting")

	// Load configuration
	settings, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	st, err := store.New(settings.Store.Path)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer st.Close()

	srv := server.New(settings.Addr(), processor.New(logger), st, logger)

	// Start server in background
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("StationScope server ready", zap.String("addr", settings.Addr()))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("StationScope server stopped")
}
