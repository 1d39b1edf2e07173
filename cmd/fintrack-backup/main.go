// Command fintrack-backup exports or imports the stored document without
// starting the interactive app.
//
//	fintrack-backup export [path]        write a backup archive (default: backup dir)
//	fintrack-backup [-y] import <path>   replace the stored document with an archive
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/backup"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

func main() {
	bootLogger := cli.SetupLogger(log.ComponentBackup, config.Load().LogLevel)
	cli.LoadEnvFile(bootLogger)

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		bootLogger.Error("startup failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(log.ComponentBackup, cfg.LogLevel)

	force := flag.Bool("y", false, "skip the overwrite confirmation on import")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-y] <export [path] | import <path>>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	result, err := cli.InitBackend(cfg, logger)
	if err != nil {
		logger.Error("startup failed", log.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("backend cleanup failed", log.FieldError, err)
			}
		}
	}()

	ctx := context.Background()
	documents := store.New(result.Backend,
		store.WithLogger(logger.WithComponent(log.ComponentStore).Logger))

	switch args[0] {
	case "export":
		err = runExport(ctx, documents, cfg, args[1:], logger)
	case "import":
		err = runImport(ctx, documents, args[1:], logger, *force,
			bufio.NewReader(os.Stdin), os.Stdout)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("backup command failed", log.FieldError, err)
		os.Exit(1)
	}
}

func runExport(ctx context.Context, documents *store.Store, cfg *config.Config, args []string, logger *log.Logger) error {
	if err := documents.Load(ctx); err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	archive, err := backup.Export(documents.Snapshot(), time.Now())
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.BackupDir, archive.Filename)
	if len(args) > 0 {
		path = args[0]
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create backup directory: %w", err)
		}
	}
	if err := os.WriteFile(path, archive.Data, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	logger.Info("backup written", log.FieldFilename, path, log.FieldBytes, len(archive.Data))
	return nil
}

// runImport replaces the stored document with the archive. The overwrite is
// destructive, so it must be confirmed on stdin unless -y was given.
func runImport(ctx context.Context, documents *store.Store, args []string, logger *log.Logger, force bool, in *bufio.Reader, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("import needs exactly one archive path")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	contentType := "application/octet-stream"
	if strings.HasSuffix(strings.ToLower(args[0]), ".json") {
		contentType = backup.ContentType
	}

	candidate, err := backup.Parse(contentType, data)
	if err != nil {
		return err
	}

	if !force && !confirmOverwrite(in, out) {
		logger.Info("import cancelled")
		return nil
	}

	if err := documents.Restore(ctx, candidate); err != nil {
		return fmt.Errorf("restore document: %w", err)
	}
	logger.Info("backup imported",
		log.FieldFilename, args[0],
		log.FieldCount, len(candidate.Transactions))
	return nil
}

// confirmOverwrite prompts y/N; EOF or a read failure counts as a decline.
func confirmOverwrite(in *bufio.Reader, out io.Writer) bool {
	fmt.Fprint(out, "Importing replaces ALL current data. Continue? [y/N] ")
	answer, err := in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
