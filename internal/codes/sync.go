package codes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vademecum/internal"
	"vademecum/internal/browse"
	"vademecum/internal/config"
	"vademecum/internal/storage"
)

const (
	lastFullSyncKey    = "codes.last_full_sync"
	lastRefreshKeyBase = "codes.last_refresh."

	RunKindFull    = "full"
	RunKindRefresh = "refresh"
)

type SyncService struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
	log    *zap.Logger
}

func NewSyncService(db *storage.DB, cfg config.Config, log *zap.Logger) *SyncService {
	return &SyncService{db: db, client: NewClient(cfg), cfg: cfg, log: log}
}

func (s *SyncService) Client() *Client {
	return s.client
}

// FullSync replaces the local snapshot with the backend's full listing.
func (s *SyncService) FullSync(ctx context.Context) (internal.SyncRun, error) {
	run := newRun(RunKindFull)
	log := s.log.With(zap.String("trace_id", run.TraceID))

	started := time.Now()
	recs, err := s.client.ListRecords(ctx)
	if err != nil {
		return run, fmt.Errorf("list codes: %w", err)
	}
	run.Timings["fetch_ms"] = msSince(started)

	started = time.Now()
	if err := s.db.ReplaceAll(recs); err != nil {
		return run, fmt.Errorf("store snapshot: %w", err)
	}
	run.Timings["store_ms"] = msSince(started)

	run.Counts["records"] = len(recs)
	run.Counts["codes"] = len(browse.Group(recs))

	_ = s.db.SetMetadata(lastFullSyncKey, time.Now().UTC().Format(time.RFC3339))
	if err := s.db.InsertRun(run); err != nil {
		log.Warn("record sync run failed", zap.Error(err))
	}
	log.Info("full sync done",
		zap.Int("records", run.Counts["records"]),
		zap.Int("codes", run.Counts["codes"]),
		zap.Float64("fetch_ms", run.Timings["fetch_ms"]))
	return run, nil
}

// RefreshCodes refetches the named codes concurrently and replaces their rows.
// Any fetch failure cancels the rest and nothing is written.
func (s *SyncService) RefreshCodes(ctx context.Context, names []string) (internal.SyncRun, error) {
	run := newRun(RunKindRefresh)
	log := s.log.With(zap.String("trace_id", run.TraceID))

	names = uniqueNames(names)
	fetched := make(map[string][]internal.CodeArticleRecord, len(names))
	var mu sync.Mutex

	started := time.Now()
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.cfg.RefreshConcurrency)
	for _, name := range names {
		name := name
		eg.Go(func() error {
			recs, err := s.client.ListRecordsByCode(egCtx, name)
			if err != nil {
				return fmt.Errorf("refresh %q: %w", name, err)
			}
			mu.Lock()
			fetched[name] = recs
			mu.Unlock()
			log.Debug("code fetched", zap.String("codigo", name), zap.Int("records", len(recs)))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return run, err
	}
	run.Timings["fetch_ms"] = msSince(started)

	started = time.Now()
	total := 0
	for _, name := range names {
		recs := fetched[name]
		if err := s.db.ReplaceCode(storedName(name, recs), recs); err != nil {
			return run, fmt.Errorf("store %q: %w", name, err)
		}
		_ = s.db.SetMetadata(lastRefreshKeyBase+name, time.Now().UTC().Format(time.RFC3339))
		total += len(recs)
	}
	run.Timings["store_ms"] = msSince(started)
	run.Counts["codes"] = len(names)
	run.Counts["records"] = total

	if err := s.db.InsertRun(run); err != nil {
		log.Warn("record sync run failed", zap.Error(err))
	}
	log.Info("refresh done", zap.Strings("codigos", names), zap.Int("records", total))
	return run, nil
}

func (s *SyncService) LastFullSync() (*string, error) {
	return s.db.GetMetadata(lastFullSyncKey)
}

func newRun(kind string) internal.SyncRun {
	return internal.SyncRun{
		TraceID: uuid.NewString(),
		Kind:    kind,
		Timings: map[string]float64{},
		Counts:  map[string]int{},
	}
}

// storedName is the nomeCodigo the backend actually uses for the requested code.
func storedName(requested string, recs []internal.CodeArticleRecord) string {
	for _, r := range recs {
		if nome := strings.TrimSpace(r.NomeCodigo); nome != "" {
			return nome
		}
	}
	return requested
}

func uniqueNames(names []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
