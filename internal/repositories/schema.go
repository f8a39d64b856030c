package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Схема переносима: одна и та же DDL работает и в Postgres, и в SQLite (тесты).
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		role          TEXT NOT NULL DEFAULT 'user',
		password_hash TEXT NOT NULL DEFAULT '',
		last_login    TIMESTAMP NULL,
		created_at    TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		industry      TEXT NOT NULL DEFAULT '',
		website       TEXT NOT NULL DEFAULT '',
		revenue_range TEXT NOT NULL DEFAULT '',
		tech_stack    TEXT NOT NULL DEFAULT '[]',
		created_at    TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id         TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id),
		name       TEXT NOT NULL,
		email      TEXT NOT NULL DEFAULT '',
		phone      TEXT NOT NULL DEFAULT '',
		title      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS opportunities (
		id                 TEXT PRIMARY KEY,
		account_id         TEXT NULL,
		primary_contact_id TEXT NULL,
		company_name       TEXT NOT NULL DEFAULT '',
		contact_name       TEXT NOT NULL DEFAULT '',
		email              TEXT NOT NULL DEFAULT '',
		phone              TEXT NOT NULL DEFAULT '',
		website            TEXT NOT NULL DEFAULT '',
		industry           TEXT NOT NULL DEFAULT '',
		revenue_range      TEXT NOT NULL DEFAULT '',
		stage              TEXT NOT NULL,
		score              TEXT NULL,
		notes              TEXT NOT NULL DEFAULT '',
		assigned_to        TEXT NULL REFERENCES users(id),
		last_contact       TIMESTAMP NULL,
		created_at         TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id             TEXT PRIMARY KEY,
		account_id     TEXT NULL,
		contact_id     TEXT NULL,
		opportunity_id TEXT NULL,
		type           TEXT NOT NULL,
		direction      TEXT NOT NULL,
		subject        TEXT NOT NULL DEFAULT '',
		content        TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL DEFAULT 'completed',
		date           TIMESTAMP NOT NULL,
		created_at     TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS app_settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_opportunities_stage ON opportunities(stage)`,
	`CREATE INDEX IF NOT EXISTS idx_contacts_account ON contacts(account_id)`,
}

// Migrate создаёт таблицы, если их ещё нет.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("миграция, шаг %d: %w", i+1, err)
		}
	}
	return nil
}

// nullIfEmpty пишет NULL вместо пустой строки (FK-колонки).
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func timeOrNil(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
