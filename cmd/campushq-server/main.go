// Package main is the entrypoint for the CampusHQ server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/campushq-io/campushq/internal/api"
	"github.com/campushq-io/campushq/internal/audit"
	"github.com/campushq-io/campushq/internal/backup"
	"github.com/campushq-io/campushq/internal/config"
	"github.com/campushq-io/campushq/internal/crypto"
	"github.com/campushq-io/campushq/internal/db"
	"github.com/campushq-io/campushq/internal/export"
	"github.com/campushq-io/campushq/internal/jobs"
	"github.com/campushq-io/campushq/internal/scope"
	"github.com/campushq-io/campushq/internal/snapshot"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "campushq-server",
		Short:        "CampusHQ backup and restore server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(),
		newMigrateCmd(),
		newKeygenCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("CampusHQ Server %s\n", Version)
			fmt.Printf("  Commit:     %s\n", Commit)
			fmt.Printf("  Built:      %s\n", BuildDate)
			fmt.Printf("  Go version: %s\n", runtime.Version())
			fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			logger := newLogger()

			cfg := config.LoadServerConfig()
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}

			database, err := db.New(ctx, db.DefaultConfig(cfg.DatabaseURL), logger)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer database.Close()

			return database.Migrate(ctx)
		},
	}
}

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate fresh key material for MASTER_KEY and SIGNING_SEED",
		RunE: func(cmd *cobra.Command, args []string) error {
			master, err := crypto.GenerateMasterKey()
			if err != nil {
				return err
			}
			seed, err := crypto.GenerateSigningSeed()
			if err != nil {
				return err
			}
			signer, err := crypto.NewSigner(seed)
			if err != nil {
				return err
			}

			fmt.Printf("MASTER_KEY=%s\n", crypto.KeyToBase64(master))
			fmt.Printf("SIGNING_SEED=%s\n", crypto.KeyToBase64(seed))
			fmt.Printf("SIGNING_PUBLIC_KEY=%s\n", crypto.KeyToBase64(signer.PublicKey()))
			return nil
		},
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("version", Version).Logger()
	if os.Getenv("ENV") != string(config.EnvProduction) {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger
}

func serve() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := newLogger()
	logger.Info().
		Str("version", Version).
		Str("commit", Commit).
		Str("build_date", BuildDate).
		Msg("starting CampusHQ server")

	cfg := config.LoadServerConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	database, err := db.New(ctx, db.DefaultConfig(cfg.DatabaseURL), logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Key material
	masterKey, err := crypto.KeyFromBase64(cfg.MasterKey)
	if err != nil {
		return fmt.Errorf("decode MASTER_KEY: %w", err)
	}
	cipher, err := crypto.NewCipher(masterKey)
	if err != nil {
		return fmt.Errorf("initialize cipher: %w", err)
	}

	var signer *crypto.Signer
	var verifierPub []byte
	if cfg.SigningSeed != "" {
		seed, err := crypto.KeyFromBase64(cfg.SigningSeed)
		if err != nil {
			return fmt.Errorf("decode SIGNING_SEED: %w", err)
		}
		signer, err = crypto.NewSigner(seed)
		if err != nil {
			return fmt.Errorf("initialize signer: %w", err)
		}
		verifierPub = signer.PublicKey()
	} else {
		verifierPub, err = crypto.KeyFromBase64(cfg.SigningPublicKey)
		if err != nil {
			return fmt.Errorf("decode SIGNING_PUBLIC_KEY: %w", err)
		}
	}
	pubVerifier, err := crypto.NewVerifier(verifierPub)
	if err != nil {
		return fmt.Errorf("initialize signature verifier: %w", err)
	}

	// Snapshot blob storage
	var blobs snapshot.Store
	switch cfg.SnapshotBackend {
	case config.BackendS3:
		blobs, err = snapshot.NewS3Store(ctx, snapshot.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			UseSSL:          true,
		}, logger)
	default:
		blobs, err = snapshot.NewFSStore(cfg.SnapshotDir, logger)
	}
	if err != nil {
		return fmt.Errorf("initialize snapshot store (%s): %w", cfg.SnapshotBackend, err)
	}

	// Core wiring
	sink := audit.NewSink(database, logger)
	guard := scope.NewGuard(sink, logger)
	exporter := export.NewExporter(database, logger)
	importer := export.NewImporter(database, logger)

	generator := backup.NewGenerator(database, exporter, blobs, cipher, signer, cfg.RetentionPeriod, sink, logger)
	restorer := backup.NewRestorer(database, importer, sink, logger)
	verifier := backup.NewVerifier(pubVerifier, sink, logger)

	runner := jobs.NewRunner(jobs.RunnerConfig{
		WorkerCount:     cfg.WorkerCount,
		QueueSize:       cfg.TaskQueueSize,
		MaxTaskDuration: cfg.MaxTaskDuration,
	}, logger)
	if err := runner.Start(); err != nil {
		return fmt.Errorf("start task runner: %w", err)
	}
	defer runner.Stop()

	service := backup.NewService(database, blobs, guard, runner, generator, restorer, verifier, cipher, database, sink, logger)

	scheduler := backup.NewScheduler(database, service, backup.DefaultSchedulerConfig(), logger)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("start backup scheduler: %w", err)
	}
	defer scheduler.Stop()

	router := api.NewRouter(database, service, guard, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info().Str("signal", sig.String()).Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
		return err
	}

	logger.Info().Msg("server stopped gracefully")
	return nil
}
