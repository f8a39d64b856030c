package services

import (
	"context"
	"strings"
	"time"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/repositories"
)

type AccountService struct {
	Repo *repositories.AccountRepository
}

func NewAccountService(repo *repositories.AccountRepository) *AccountService {
	return &AccountService{Repo: repo}
}

func (s *AccountService) Create(ctx context.Context, account *models.Account) error {
	account.Name = strings.TrimSpace(account.Name)
	if account.Name == "" {
		return &models.ErrValidation{Field: "name", Message: "name is required"}
	}
	stack := account.TechStack[:0]
	for _, t := range account.TechStack {
		if t = strings.TrimSpace(t); t != "" {
			stack = append(stack, t)
		}
	}
	account.TechStack = stack
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	return s.Repo.Create(ctx, account)
}

func (s *AccountService) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *AccountService) List(ctx context.Context) ([]*models.Account, error) {
	list, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.Account{}
	}
	return list, nil
}

func (s *AccountService) Count(ctx context.Context) (int, error) {
	return s.Repo.Count(ctx)
}

// ContactService ведёт контакты; контакт всегда принадлежит аккаунту.
type ContactService struct {
	Repo     *repositories.ContactRepository
	Accounts *repositories.AccountRepository
}

func NewContactService(repo *repositories.ContactRepository, accounts *repositories.AccountRepository) *ContactService {
	return &ContactService{Repo: repo, Accounts: accounts}
}

func (s *ContactService) Create(ctx context.Context, c *models.Contact) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return &models.ErrValidation{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(c.AccountID) == "" {
		return &models.ErrValidation{Field: "accountId", Message: "accountId is required"}
	}
	if _, err := s.Accounts.GetByID(ctx, c.AccountID); err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return s.Repo.Create(ctx, c)
}

// List: контакты аккаунта; пустой accountID = все контакты.
func (s *ContactService) List(ctx context.Context, accountID string) ([]*models.Contact, error) {
	list, err := s.Repo.List(ctx, strings.TrimSpace(accountID))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.Contact{}
	}
	return list, nil
}
