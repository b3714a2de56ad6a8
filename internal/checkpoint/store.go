// Package checkpoint persists finished pipeline results in PostgreSQL so a
// record is only normalized once unless reprocessing is requested.
package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/pipeline"
	apperrors "github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/postgres"
)

// Schema creates the checkpoint table.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS processed_records (
		id           TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		raw_text     TEXT NOT NULL,
		result       JSONB NOT NULL,
		processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Store implements pipeline.Checkpoint.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

func New(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "checkpoint"),
	}
}

// EnsureSchema creates the table if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.db.Migrate(ctx, Schema...); err != nil {
		return fmt.Errorf("creating checkpoint schema: %w", err)
	}
	return nil
}

// Get loads the stored result for id. ContentHash comes from the row, not
// the stored payload.
func (s *Store) Get(ctx context.Context, id string) (*pipeline.Result, error) {
	var (
		hash string
		raw  []byte
	)
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT content_hash, result FROM processed_records WHERE id = $1`, id).Scan(&hash, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying checkpoint %s: %w", id, err)
	}
	var res pipeline.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decoding checkpoint %s: %w", id, err)
	}
	res.ContentHash = hash
	return &res, nil
}

// Save upserts the result for rec. Writing the same record twice leaves a
// single row holding the latest result.
func (s *Store) Save(ctx context.Context, rec pipeline.Record, res *pipeline.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding result %s: %w", rec.ID, err)
	}
	hash := pipeline.ContentHash(rec.Text)
	err = s.db.InTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO processed_records (id, content_hash, raw_text, result, processed_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET content_hash = EXCLUDED.content_hash,
				raw_text = EXCLUDED.raw_text,
				result = EXCLUDED.result,
				processed_at = EXCLUDED.processed_at`,
			rec.ID, hash, rec.Text, payload, res.ProcessedAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("upserting checkpoint %s: %w", rec.ID, err)
	}
	s.logger.Debug("checkpoint saved", "record_id", rec.ID, "content_hash", hash[:12])
	return nil
}
