package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skyaboveme/yourgency/internal/models"
)

type ActivityRepository interface {
	Store(ctx context.Context, a *models.Activity) error
	FindAll(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, error)
}

type activityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Store(ctx context.Context, a *models.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	const q = `
		INSERT INTO activities (id, account_id, contact_id, opportunity_id, type, direction,
			subject, content, status, date, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.db.ExecContext(ctx, q,
		a.ID, nullIfEmpty(a.AccountID), nullIfEmpty(a.ContactID), nullIfEmpty(a.OpportunityID),
		string(a.Type), string(a.Direction), a.Subject, a.Content, a.Status, a.Date, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("сохранение активности: %w", err)
	}
	return nil
}

func (r *activityRepository) FindAll(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, error) {
	baseQuery := `SELECT id, account_id, contact_id, opportunity_id, type, direction,
		subject, content, status, date, created_at FROM activities`

	conditions := []string{}
	args := []any{}
	argID := 1

	if filter.AccountID != "" {
		conditions = append(conditions, fmt.Sprintf("account_id = $%d", argID))
		args = append(args, filter.AccountID)
		argID++
	}
	if filter.ContactID != "" {
		conditions = append(conditions, fmt.Sprintf("contact_id = $%d", argID))
		args = append(args, filter.ContactID)
		argID++
	}
	if filter.OpportunityID != "" {
		conditions = append(conditions, fmt.Sprintf("opportunity_id = $%d", argID))
		args = append(args, filter.OpportunityID)
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY date DESC, id"

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("список активностей: %w", err)
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		var (
			a                           models.Activity
			accountID, contactID, oppID sql.NullString
			typ, dir                    string
		)
		if err := rows.Scan(
			&a.ID, &accountID, &contactID, &oppID, &typ, &dir,
			&a.Subject, &a.Content, &a.Status, &a.Date, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.AccountID = accountID.String
		a.ContactID = contactID.String
		a.OpportunityID = oppID.String
		a.Type = models.ActivityType(typ)
		a.Direction = models.Direction(dir)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
