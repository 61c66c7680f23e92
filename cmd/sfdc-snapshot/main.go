package main

import (
	"context"
	"fmt"
	"os"

	"github.com/natserract/sfdclib/pkg/config"
	"github.com/natserract/sfdclib/pkg/salesforce/rest"
	"github.com/natserract/sfdclib/pkg/salesforce/soap"
	"github.com/natserract/sfdclib/pkg/session"
	"github.com/natserract/sfdclib/pkg/snapshot"
	"github.com/natserract/sfdclib/pkg/snapshot/postgres"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Objects to snapshot; all objects when none are given
	err = run(context.Background(), os.Args[1:], logger)
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run takes one snapshot. Deferred cleanup (logout, database close) always
// runs before main decides the exit code.
func run(ctx context.Context, objects []string, logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		return fmt.Errorf("failed to load config: %w", err)
	}

	sess, err := session.NewWithLogger(cfg, logger)
	if err != nil {
		logger.Error("Failed to create session", zap.Error(err))
		return fmt.Errorf("failed to create session: %w", err)
	}
	if err := sess.Login(ctx); err != nil {
		logger.Error("Failed to log in", zap.Error(err))
		return fmt.Errorf("failed to log in: %w", err)
	}
	defer func() {
		if err := sess.Logout(ctx); err != nil {
			logger.Warn("Failed to log out", zap.Error(err))
		}
	}()

	restClient, err := rest.New(sess, logger)
	if err != nil {
		logger.Error("Failed to create REST client", zap.Error(err))
		return fmt.Errorf("failed to create REST client: %w", err)
	}
	soapClient, err := soap.New(sess, logger)
	if err != nil {
		logger.Error("Failed to create SOAP client", zap.Error(err))
		return fmt.Errorf("failed to create SOAP client: %w", err)
	}

	// Database persistence is optional: without DB_HOST the snapshot is only printed
	var store snapshot.Store
	previous := map[string]int64{}
	if os.Getenv("DB_HOST") != "" {
		db, err := postgres.New(ctx, postgres.NewConfig(), logger)
		if err != nil {
			logger.Error("Failed to connect to database", zap.Error(err))
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.InitSchema(ctx); err != nil {
			logger.Error("Failed to initialize schema", zap.Error(err))
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		pgStore := postgres.NewStore(db)
		store = pgStore

		latest, err := pgStore.LatestCounts(ctx)
		if err != nil {
			logger.Warn("Failed to load previous counts", zap.Error(err))
		}
		for _, rc := range latest {
			previous[rc.Name] = rc.Count
		}
	}

	svc := snapshot.NewService(restClient, soapClient, store, sess.APIVersion(), logger)

	snap, metrics, err := svc.Run(ctx, objects)
	if err != nil {
		logger.Error("Snapshot failed", zap.Error(err))
		return fmt.Errorf("snapshot failed: %w", err)
	}

	fmt.Printf("Snapshot %s (API v%s)\n", snap.RunID, snap.APIVersion)
	for _, rc := range snap.Counts {
		if prev, ok := previous[rc.Name]; ok {
			fmt.Printf("  %-40s %10d (%+d)\n", rc.Name, rc.Count, rc.Count-prev)
			continue
		}
		fmt.Printf("  %-40s %10d\n", rc.Name, rc.Count)
	}
	fmt.Printf("Describes: %d succeeded, %d failed\n", metrics.DescribesSucceeded, metrics.DescribesFailed)
	return nil
}
