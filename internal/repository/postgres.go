package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"broadcast/internal/models"
	"broadcast/internal/service"

	_ "github.com/lib/pq"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(connStr string) (*PostgresRepo, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	createTableQuery := `
	CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		name VARCHAR(64) NOT NULL,
		data JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	if _, err = db.Exec(createTableQuery); err != nil {
		return nil, fmt.Errorf("failed to ensure events table exists: %w", err)
	}
	return &PostgresRepo{db: db}, nil
}

var _ service.EventLog = (*PostgresRepo)(nil)

func (r *PostgresRepo) Record(ctx context.Context, event models.Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to encode event data: %w", err)
	}
	query := `INSERT INTO events (id, name, data, created_at)
	          VALUES ($1, $2, $3, $4);`
	_, err = r.db.ExecContext(ctx, query, event.ID, event.Name, data, event.CreatedAt)
	return err
}

func (r *PostgresRepo) ListEvents(ctx context.Context, limit int) ([]models.Event, error) {
	query := `SELECT id, name, data, created_at
	          FROM events
	          ORDER BY created_at DESC
	          LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.Event{}
	for rows.Next() {
		var event models.Event
		var data []byte
		if err := rows.Scan(&event.ID, &event.Name, &data, &event.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &event.Data); err != nil {
			return nil, fmt.Errorf("failed to decode data of event %s: %w", event.ID, err)
		}
		results = append(results, event)
	}
	return results, rows.Err()
}

func (r *PostgresRepo) Close() error {
	return r.db.Close()
}
