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
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.TechStack == nil {
		a.TechStack = []string{}
	}
	stack, err := json.Marshal(a.TechStack)
	if err != nil {
		return fmt.Errorf("tech_stack json: %w", err)
	}
	const q = `
		INSERT INTO accounts (id, name, industry, website, revenue_range, tech_stack, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, q, a.ID, a.Name, a.Industry, a.Website, a.RevenueRange, string(stack), a.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return &models.ErrConflict{Message: "account already exists: " + a.ID}
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

const accountColumns = `id, name, industry, website, revenue_range, tech_stack, created_at`

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.ErrNotFound{Resource: "account", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var res []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a     models.Account
		stack string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Industry, &a.Website, &a.RevenueRange, &stack, &a.CreatedAt); err != nil {
		return nil, err
	}
	// битый JSON в tech_stack не должен ронять весь список
	if err := json.Unmarshal([]byte(stack), &a.TechStack); err != nil {
		a.TechStack = nil
	}
	return &a, nil
}
