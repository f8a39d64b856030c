package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/wire"
)

// OpportunityRepository хранит сделки в формате wire (snake_case = колонки).
type OpportunityRepository struct {
	db *sql.DB
}

func NewOpportunityRepository(db *sql.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

const opportunityColumns = `
	o.id, o.account_id, o.primary_contact_id, o.company_name, o.contact_name,
	o.email, o.phone, o.website, o.industry, o.revenue_range, o.stage, o.score,
	o.notes, o.assigned_to, u.name, o.last_contact, o.created_at`

// List возвращает все сделки; имя ответственного подтягивается через LEFT JOIN.
func (r *OpportunityRepository) List(ctx context.Context) ([]wire.Opportunity, error) {
	query := `SELECT` + opportunityColumns + `
		FROM opportunities o
		LEFT JOIN users u ON u.id = o.assigned_to
		ORDER BY o.created_at DESC, o.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("список сделок: %w", err)
	}
	defer rows.Close()

	out := []wire.Opportunity{}
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение сделки: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("список сделок: %w", err)
	}
	return out, nil
}

// GetByID возвращает сделку или *models.ErrNotFound.
func (r *OpportunityRepository) GetByID(ctx context.Context, id string) (*wire.Opportunity, error) {
	query := `SELECT` + opportunityColumns + `
		FROM opportunities o
		LEFT JOIN users u ON u.id = o.assigned_to
		WHERE o.id = $1`
	o, err := scanOpportunity(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.ErrNotFound{Resource: "opportunity", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("получение сделки по id: %w", err)
	}
	return &o, nil
}

// Create вставляет ровно одну строку (без upsert). Пустой id генерируется.
func (r *OpportunityRepository) Create(ctx context.Context, o *wire.Opportunity) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	score, err := encodeScore(o.Score)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO opportunities (
			id, account_id, primary_contact_id, company_name, contact_name,
			email, phone, website, industry, revenue_range, stage, score,
			notes, assigned_to, last_contact, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		o.ID, nullIfEmpty(o.AccountID), nullIfEmpty(o.PrimaryContactID), o.CompanyName, o.ContactName,
		o.Email, o.Phone, o.Website, o.Industry, o.RevenueRange, o.Stage, score,
		o.Notes, nullIfEmpty(o.AssignedTo), nullTimePtr(o.LastContact), o.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &models.ErrConflict{Message: "opportunity already exists: " + o.ID}
		}
		return fmt.Errorf("создание сделки: %w", err)
	}
	return nil
}

// upsertQuery: новый id вставляется целиком; у существующего обновляется только
// фиксированный набор полей (стадия, контакты, выручка, заметки, ответственный).
// Строки, отсутствующие в пакете, не удаляются.
const upsertQuery = `
	INSERT INTO opportunities (
		id, account_id, primary_contact_id, company_name, contact_name,
		email, phone, website, industry, revenue_range, stage, score,
		notes, assigned_to, last_contact, created_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	ON CONFLICT (id) DO UPDATE SET
		stage         = excluded.stage,
		contact_name  = excluded.contact_name,
		email         = excluded.email,
		phone         = excluded.phone,
		website       = excluded.website,
		revenue_range = excluded.revenue_range,
		notes         = excluded.notes,
		assigned_to   = excluded.assigned_to`

// BulkUpsert пишет весь пакет в одной транзакции: либо все записи, либо ни одной.
func (r *OpportunityRepository) BulkUpsert(ctx context.Context, batch []wire.Opportunity) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("bulk upsert: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		return 0, fmt.Errorf("bulk upsert: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range batch {
		o := &batch[i]
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
		score, err := encodeScore(o.Score)
		if err != nil {
			return 0, fmt.Errorf("bulk upsert: record %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx,
			o.ID, nullIfEmpty(o.AccountID), nullIfEmpty(o.PrimaryContactID), o.CompanyName, o.ContactName,
			o.Email, o.Phone, o.Website, o.Industry, o.RevenueRange, o.Stage, score,
			o.Notes, nullIfEmpty(o.AssignedTo), nullTimePtr(o.LastContact), o.CreatedAt,
		); err != nil {
			return 0, fmt.Errorf("bulk upsert: record %d (id=%s): %w", i, o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("bulk upsert: commit: %w", err)
	}
	return len(batch), nil
}

// UpdateScore сохраняет оценку ИИ (bulk upsert её не трогает).
func (r *OpportunityRepository) UpdateScore(ctx context.Context, id string, s *wire.Score) error {
	score, err := encodeScore(s)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE opportunities SET score = $1 WHERE id = $2`, score, id)
	if err != nil {
		return fmt.Errorf("обновление оценки: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &models.ErrNotFound{Resource: "opportunity", ID: id}
	}
	return nil
}

// TouchLastContact отмечает время последнего контакта (после активности).
func (r *OpportunityRepository) TouchLastContact(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE opportunities SET last_contact = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("обновление last_contact: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOpportunity(row rowScanner) (wire.Opportunity, error) {
	var (
		o                              wire.Opportunity
		accountID, contactID, assignee sql.NullString
		assigneeName, score            sql.NullString
		lastContact                    sql.NullTime
	)
	err := row.Scan(
		&o.ID, &accountID, &contactID, &o.CompanyName, &o.ContactName,
		&o.Email, &o.Phone, &o.Website, &o.Industry, &o.RevenueRange, &o.Stage, &score,
		&o.Notes, &assignee, &assigneeName, &lastContact, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}
	o.AccountID = accountID.String
	o.PrimaryContactID = contactID.String
	o.AssignedTo = assignee.String
	o.AssignedToName = assigneeName.String
	o.LastContact = timeOrNil(lastContact)
	if score.Valid && score.String != "" {
		var s wire.Score
		if err := json.Unmarshal([]byte(score.String), &s); err != nil {
			return o, fmt.Errorf("score json: %w", err)
		}
		o.Score = &s
	}
	return o, nil
}

func encodeScore(s *wire.Score) (sql.NullString, error) {
	if s == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("score json: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
