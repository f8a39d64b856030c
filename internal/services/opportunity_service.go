package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/observability"
	"github.com/skyaboveme/yourgency/internal/repositories"
	"github.com/skyaboveme/yourgency/internal/wire"
)

// OpportunityService: серверная сторона Sync Gateway для сделок.
type OpportunityService struct {
	repo    *repositories.OpportunityRepository
	metrics *observability.Metrics
	log     *zap.Logger
}

func NewOpportunityService(repo *repositories.OpportunityRepository, metrics *observability.Metrics, log *zap.Logger) *OpportunityService {
	return &OpportunityService{repo: repo, metrics: metrics, log: log}
}

func (s *OpportunityService) List(ctx context.Context) ([]wire.Opportunity, error) {
	return s.repo.List(ctx)
}

func (s *OpportunityService) Get(ctx context.Context, id string) (*wire.Opportunity, error) {
	return s.repo.GetByID(ctx, id)
}

// Deals читает всю коллекцию в доменной модели (отчёты, brief).
func (s *OpportunityService) Deals(ctx context.Context) ([]models.Deal, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return wire.ToDeals(records)
}

// Create вставляет одну сделку. Пустая стадия = PROSPECT.
func (s *OpportunityService) Create(ctx context.Context, o *wire.Opportunity) error {
	if o.Stage == "" {
		o.Stage = string(models.StageProspect)
	}
	if err := normalizeStage(o); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return err
	}
	s.log.Info("opportunities: created", zap.String("id", o.ID), zap.String("stage", o.Stage))
	return nil
}

// BulkUpsert принимает всю коллекцию клиента. Неизвестная стадия отклоняет
// весь пакет до записи.
func (s *OpportunityService) BulkUpsert(ctx context.Context, batch []wire.Opportunity) (int, error) {
	start := time.Now()
	for i := range batch {
		if err := normalizeStage(&batch[i]); err != nil {
			s.metrics.RecordUpsert(0, err)
			return 0, fmt.Errorf("record %d (id=%q): %w", i, batch[i].ID, err)
		}
	}
	n, err := s.repo.BulkUpsert(ctx, batch)
	s.metrics.RecordUpsert(n, err)
	if err != nil {
		s.log.Error("opportunities: bulk upsert failed", zap.Int("batch", len(batch)), zap.Error(err))
		return 0, err
	}
	s.log.Info("opportunities: bulk upsert",
		zap.Int("count", n),
		zap.Duration("took", time.Since(start)),
	)
	return n, nil
}

func (s *OpportunityService) UpdateScore(ctx context.Context, id string, score *models.LeadScore) error {
	return s.repo.UpdateScore(ctx, id, wire.ScoreFrom(score))
}

func (s *OpportunityService) TouchLastContact(ctx context.Context, id string, at time.Time) error {
	return s.repo.TouchLastContact(ctx, id, at)
}

func normalizeStage(o *wire.Opportunity) error {
	stage, err := models.ParseStage(o.Stage)
	if err != nil {
		return &models.ErrValidation{Field: "stage", Message: err.Error()}
	}
	o.Stage = string(stage)
	return nil
}
