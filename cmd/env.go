package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jacobterminal/earnings-terminal/internal/backfill"
	"github.com/jacobterminal/earnings-terminal/internal/blobstore"
	"github.com/jacobterminal/earnings-terminal/internal/config"
	"github.com/jacobterminal/earnings-terminal/internal/extract"
	"github.com/jacobterminal/earnings-terminal/internal/rank"
	"github.com/jacobterminal/earnings-terminal/internal/record"
)

// env wires the blob store, record store and orchestrator for a command.
type env struct {
	Blobs        blobstore.Store
	Records      *record.Store
	Orchestrator *backfill.Orchestrator
}

func newEnv(ctx context.Context) (*env, error) {
	blobs, err := openBlobStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	records := record.New(ctx, blobs)
	orch := backfill.New(ctx, records,
		rank.New(cfg.Ranker),
		extract.New(cfg.Extract),
		blobs,
		backfill.WithTTL(time.Duration(cfg.Backfill.TTLHours)*time.Hour),
	)

	return &env{Blobs: blobs, Records: records, Orchestrator: orch}, nil
}

func (e *env) Close() {
	e.Orchestrator.Close()
	e.Records.Close()
	if err := e.Blobs.Close(); err != nil {
		zap.L().Warn("blob store close failed", zap.Error(err))
	}
}

func openBlobStore(ctx context.Context, cfg config.StoreConfig) (blobstore.Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return blobstore.NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return blobstore.NewPostgres(ctx, cfg.DatabaseURL)
	case "memory":
		return blobstore.NewMemory(), nil
	}
	return nil, eris.Errorf("unknown store driver %q", cfg.Driver)
}
