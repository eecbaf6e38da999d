package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"FeeCast/internal/domain/models"
	domrepo "FeeCast/internal/domain/repository"
	pkgch "FeeCast/pkg/clickhouse"
	applogger "FeeCast/pkg/logger"
)

// CHFeeStore keeps ingested fee snapshots in ClickHouse and serves them back
// as a FeeSource.
type CHFeeStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

var (
	_ domrepo.FeeSource     = (*CHFeeStore)(nil)
	_ domrepo.SnapshotStore = (*CHFeeStore)(nil)
)

func NewCHFeeStore(ch *pkgch.Client) *CHFeeStore {
	return &CHFeeStore{db: ch.DB(), database: ch.Database()}
}

// SetLogger injects a structured logger.
func (s *CHFeeStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHFeeStore) table(name string) string {
	return s.database + "." + name
}

func (s *CHFeeStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("SELECT 1 FROM %s LIMIT 0", s.table(pkgch.FeeStatsTable))); err != nil {
		return fmt.Errorf("fee store init: %w", err)
	}
	return nil
}

func (s *CHFeeStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// LatestSnapshot reads the newest pool valuation and the newest days fee
// buckets concurrently. A store without a pool row yields an empty valuation.
func (s *CHFeeStore) LatestSnapshot(ctx context.Context, days int) (*models.Snapshot, error) {
	start := time.Now()
	snap := &models.Snapshot{Source: "clickhouse", FetchedAt: start.UTC()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q := fmt.Sprintf(`
        SELECT ts, aum
        FROM %s FINAL
        ORDER BY ts DESC
        LIMIT 1
    `, s.table(pkgch.PoolStatsTable))
		var ts time.Time
		err := s.db.QueryRowContext(gctx, q).Scan(&ts, &snap.PoolValuationRaw)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("latest pool stat: %w", err)
		}
		snap.ValuationTime = ts.Unix()
		return nil
	})
	g.Go(func() error {
		recs, err := s.latestFees(gctx, days)
		if err != nil {
			return err
		}
		snap.Records = recs
		return nil
	})

	if err := g.Wait(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_snapshot error",
				applogger.Int("days", days),
				applogger.Error(err),
			)
		}
		return nil, err
	}
	if s.l != nil {
		s.l.Info("clickhouse latest_snapshot ok",
			applogger.Int("days", days),
			applogger.Int("rows", len(snap.Records)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return snap, nil
}

func (s *CHFeeStore) latestFees(ctx context.Context, days int) ([]models.RawFeeRecord, error) {
	q := fmt.Sprintf(`
        SELECT ts, swap, margin_and_liquidation, mint, burn
        FROM %s FINAL
        ORDER BY ts DESC
        LIMIT ?
    `, s.table(pkgch.FeeStatsTable))
	rows, err := s.db.QueryContext(ctx, q, days)
	if err != nil {
		return nil, fmt.Errorf("latest fee stats: %w", err)
	}
	defer rows.Close()

	out := make([]models.RawFeeRecord, 0, days)
	for rows.Next() {
		var ts time.Time
		c := make([]string, models.ComponentCount)
		if err := rows.Scan(&ts, &c[models.ComponentSwap], &c[models.ComponentMarginAndLiquidation], &c[models.ComponentMint], &c[models.ComponentBurn]); err != nil {
			return nil, fmt.Errorf("scan fee stat: %w", err)
		}
		out = append(out, models.RawFeeRecord{Timestamp: ts.Unix(), Components: c})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// StoreSnapshot writes the pool valuation and every fee bucket. Rows are
// deduplicated by timestamp on merge, so re-ingesting a day is harmless.
func (s *CHFeeStore) StoreSnapshot(ctx context.Context, snap *models.Snapshot) error {
	if snap == nil {
		return nil
	}
	now := time.Now().UTC()
	if snap.PoolValuationRaw != "" {
		ts := snap.ValuationTime
		if ts == 0 {
			ts = snap.FetchedAt.Unix()
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, aum, source, ingested_at) VALUES (?, ?, ?, ?)", s.table(pkgch.PoolStatsTable))
		if _, err := s.db.ExecContext(ctx, q, time.Unix(ts, 0).UTC(), snap.PoolValuationRaw, snap.Source, now); err != nil {
			return fmt.Errorf("insert pool stat: %w", err)
		}
	}

	const chunkSize = 500
	for start := 0; start < len(snap.Records); start += chunkSize {
		end := start + chunkSize
		if end > len(snap.Records) {
			end = len(snap.Records)
		}
		q, args := buildFeeInsert(s.table(pkgch.FeeStatsTable), snap.Records[start:end], snap.Source, now)
		if len(args) == 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert fee stats: %w", err)
		}
	}
	if s.l != nil {
		s.l.Debug("clickhouse store_snapshot ok",
			applogger.Int("rows", len(snap.Records)),
			applogger.String("source", snap.Source),
		)
	}
	return nil
}

// buildFeeInsert renders one multi-row INSERT. Records without a timestamp
// or with the wrong component count are skipped.
func buildFeeInsert(table string, recs []models.RawFeeRecord, source string, ingested time.Time) (string, []interface{}) {
	values := make([]string, 0, len(recs))
	args := make([]interface{}, 0, len(recs)*7)
	for _, r := range recs {
		if r.Timestamp == 0 || len(r.Components) != models.ComponentCount {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			time.Unix(r.Timestamp, 0).UTC(),
			r.Components[models.ComponentSwap],
			r.Components[models.ComponentMarginAndLiquidation],
			r.Components[models.ComponentMint],
			r.Components[models.ComponentBurn],
			source,
			ingested,
		)
	}
	q := fmt.Sprintf("INSERT INTO %s (ts, swap, margin_and_liquidation, mint, burn, source, ingested_at) VALUES %s", table, strings.Join(values, ","))
	return q, args
}
