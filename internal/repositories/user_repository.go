package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/skyaboveme/yourgency/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	const q = `
		INSERT INTO users (id, name, email, role, password_hash, last_login, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.DB.ExecContext(ctx, q,
		user.ID,
		user.Name,
		strings.ToLower(strings.TrimSpace(user.Email)),
		string(user.Role),
		user.PasswordHash,
		nullTimePtr(user.LastLogin),
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &models.ErrConflict{Message: "user with this email already exists"}
		}
		return fmt.Errorf("создание пользователя: %w", err)
	}
	return nil
}

const userColumns = `id, name, email, role, password_hash, last_login, created_at`

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.ErrNotFound{Resource: "user", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.ErrNotFound{Resource: "user", ID: email}
	}
	if err != nil {
		return nil, fmt.Errorf("получение пользователя по email: %w", err)
	}
	return u, nil
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("список пользователей: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение пользователя: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("подсчёт пользователей: %w", err)
	}
	return n, nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("обновление last_login: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u         models.User
		role      string
		lastLogin sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.PasswordHash, &lastLogin, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	u.LastLogin = timeOrNil(lastLogin)
	return &u, nil
}

// isUniqueViolation распознаёт нарушение уникальности в Postgres (23505) и SQLite.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
