package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"vademecum/internal"
	"vademecum/internal/browse"
	"vademecum/internal/codes"
	"vademecum/internal/config"
	"vademecum/internal/storage"
	"vademecum/internal/transfer"
)

const exportFilename = "vade-mecum.xlsx"

// Syncer is the part of codes.SyncService the watcher drives.
type Syncer interface {
	FullSync(ctx context.Context) (internal.SyncRun, error)
}

var _ Syncer = (*codes.SyncService)(nil)

type Service struct {
	db     *storage.DB
	syncer Syncer
	cfg    config.Config
	log    *zap.Logger
}

func NewService(db *storage.DB, syncer Syncer, cfg config.Config, log *zap.Logger) *Service {
	return &Service{db: db, syncer: syncer, cfg: cfg, log: log}
}

// Run syncs, optionally exports, then waits for the next interval until ctx is done.
// Cycle failures are logged and retried on the next tick.
func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.WatchIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	for {
		if err := s.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Error("watch cycle failed", zap.Error(err))
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	run, err := s.syncer.FullSync(ctx)
	if err != nil {
		return err
	}

	exported := ""
	if s.cfg.WatchAutoExport {
		exported, err = s.export()
		if err != nil {
			return err
		}
	}

	s.log.Info("watch cycle done",
		zap.String("trace_id", run.TraceID),
		zap.Int("records", run.Counts["records"]),
		zap.Int("codes", run.Counts["codes"]),
		zap.String("exported", exported))
	return nil
}

func (s *Service) export() (string, error) {
	recs, err := s.db.ListArticles()
	if err != nil {
		return "", err
	}
	outputPath := filepath.Join(s.cfg.OutputDir, "watch", exportFilename)
	if err := transfer.ExportGroupsToXLSX(browse.Group(recs), outputPath); err != nil {
		return "", fmt.Errorf("export snapshot: %w", err)
	}
	return outputPath, nil
}
