// Package history persists one record per completed statement generation.
// Records are append-only: written once, listed newest first, never updated.
package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"statement-service/internal/domain"
)

// Repository is the metadata-persistence collaborator for generated statements.
type Repository interface {
	Append(ctx context.Context, item domain.StatementHistoryItem) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.StatementHistoryItem, error)
}

// PostgresRepository implements Repository on a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a history repository backed by Postgres.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the history table when it does not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS statement_history (
			id            TEXT PRIMARY KEY,
			owner_id      TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			period        TEXT NOT NULL,
			file_name     TEXT NOT NULL,
			reference     TEXT NOT NULL,
			config        JSONB NOT NULL,
			generated_at  TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_statement_history_owner
			ON statement_history (owner_id, generated_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("ensure statement_history schema: %w", err)
	}
	return nil
}

// Append inserts one history record.
func (r *PostgresRepository) Append(ctx context.Context, item domain.StatementHistoryItem) error {
	configJSON, err := json.Marshal(item.Config)
	if err != nil {
		return fmt.Errorf("marshal statement config: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO statement_history
			(id, owner_id, customer_name, period, file_name, reference, config, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		item.ID,
		item.OwnerID,
		item.CustomerName,
		item.Period,
		item.FileName,
		item.Reference,
		configJSON,
		item.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("append statement history: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's history, most recent first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.StatementHistoryItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, customer_name, period, file_name, reference, config, generated_at
		FROM statement_history
		WHERE owner_id = $1
		ORDER BY generated_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list statement history: %w", err)
	}
	defer rows.Close()

	var items []domain.StatementHistoryItem
	for rows.Next() {
		var item domain.StatementHistoryItem
		var configJSON []byte
		if err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.CustomerName,
			&item.Period,
			&item.FileName,
			&item.Reference,
			&configJSON,
			&item.GeneratedAt,
		); err != nil {
			return nil, fmt.Errorf("scan statement history row: %w", err)
		}
		if err := json.Unmarshal(configJSON, &item.Config); err != nil {
			return nil, fmt.Errorf("unmarshal statement config: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
