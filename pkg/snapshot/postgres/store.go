package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/natserract/sfdclib/pkg/salesforce/rest"
	"github.com/natserract/sfdclib/pkg/snapshot"
	"go.uber.org/zap"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshot_runs (
	id          UUID PRIMARY KEY,
	taken_at    TIMESTAMPTZ NOT NULL,
	api_version TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot_record_counts (
	run_id       UUID NOT NULL REFERENCES snapshot_runs (id) ON DELETE CASCADE,
	object_name  TEXT NOT NULL,
	record_count BIGINT NOT NULL,
	PRIMARY KEY (run_id, object_name)
);

CREATE TABLE IF NOT EXISTS snapshot_describes (
	run_id       UUID NOT NULL REFERENCES snapshot_runs (id) ON DELETE CASCADE,
	object_name  TEXT NOT NULL,
	describe_xml TEXT NOT NULL,
	PRIMARY KEY (run_id, object_name)
);
`

const (
	insertRunSQL      = `INSERT INTO snapshot_runs (id, taken_at, api_version) VALUES ($1, $2, $3)`
	insertCountSQL    = `INSERT INTO snapshot_record_counts (run_id, object_name, record_count) VALUES ($1, $2, $3)`
	insertDescribeSQL = `INSERT INTO snapshot_describes (run_id, object_name, describe_xml) VALUES ($1, $2, $3)`

	latestCountsSQL = `
SELECT c.object_name, c.record_count
FROM snapshot_record_counts c
WHERE c.run_id = (SELECT id FROM snapshot_runs ORDER BY taken_at DESC LIMIT 1)
ORDER BY c.object_name`
)

// Store persists snapshots in Postgres
type Store struct {
	db *DB
}

var _ snapshot.Store = &Store{}

// NewStore creates a snapshot store on db
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// SaveSnapshot writes a run, its record counts and describes in one transaction
func (s *Store) SaveSnapshot(ctx context.Context, snap *snapshot.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, insertRunSQL, snap.RunID, snap.TakenAt, snap.APIVersion); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", snap.RunID, err)
	}

	batch := &pgx.Batch{}
	for _, rc := range snap.Counts {
		batch.Queue(insertCountSQL, snap.RunID, rc.Name, rc.Count)
	}
	for _, d := range snap.Describes {
		batch.Queue(insertDescribeSQL, snap.RunID, d.Object, d.XML)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert snapshot rows: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.db.logger.Info("Saved snapshot",
		zap.String("run_id", snap.RunID.String()),
		zap.Int("record_counts", len(snap.Counts)),
		zap.Int("describes", len(snap.Describes)))
	return nil
}

// LatestCounts returns the record counts of the most recent run, or nil when
// no run has been saved yet.
func (s *Store) LatestCounts(ctx context.Context) ([]rest.RecordCount, error) {
	rows, err := s.db.pool.Query(ctx, latestCountsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest counts: %w", err)
	}

	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (rest.RecordCount, error) {
		var rc rest.RecordCount
		err := row.Scan(&rc.Name, &rc.Count)
		return rc, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read latest counts: %w", err)
	}
	return counts, nil
}

// DeleteRun removes a run and its rows
func (s *Store) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	tag, err := s.db.pool.Exec(ctx, `DELETE FROM snapshot_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", runID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s not found: %w", runID, pgx.ErrNoRows)
	}
	return nil
}
