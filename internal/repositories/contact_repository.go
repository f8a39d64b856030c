package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skyaboveme/yourgency/internal/models"
)

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	const q = `
		INSERT INTO contacts (id, account_id, name, email, phone, title, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, q, c.ID, c.AccountID, c.Name, c.Email, c.Phone, c.Title, c.CreatedAt); err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

// List возвращает контакты; пустой accountID: все контакты.
func (r *ContactRepository) List(ctx context.Context, accountID string) ([]*models.Contact, error) {
	q := `SELECT id, account_id, name, email, phone, title, created_at FROM contacts`
	var args []any
	if accountID != "" {
		q += ` WHERE account_id = $1`
		args = append(args, accountID)
	}
	q += ` ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var res []*models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Name, &c.Email, &c.Phone, &c.Title, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		res = append(res, &c)
	}
	return res, rows.Err()
}
