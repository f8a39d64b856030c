package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/repositories"
)

type ActivityService struct {
	repo repositories.ActivityRepository
	opps *OpportunityService
	log  *zap.Logger
}

func NewActivityService(repo repositories.ActivityRepository, opps *OpportunityService, log *zap.Logger) *ActivityService {
	return &ActivityService{repo: repo, opps: opps, log: log}
}

// Log записывает активность в таймлайн. Если она привязана к сделке,
// у сделки обновляется last_contact.
func (s *ActivityService) Log(ctx context.Context, a *models.Activity) error {
	if !a.Type.Valid() {
		return &models.ErrValidation{Field: "type", Message: "type must be call, email, meeting or note"}
	}
	if strings.TrimSpace(a.Content) == "" {
		return &models.ErrValidation{Field: "content", Message: "content is required"}
	}
	switch a.Direction {
	case "":
		a.Direction = models.DirectionOutbound
	case models.DirectionInbound, models.DirectionOutbound:
	default:
		return &models.ErrValidation{Field: "direction", Message: "direction must be inbound or outbound"}
	}
	if strings.TrimSpace(a.Subject) == "" {
		a.Subject = fmt.Sprintf("%s %s", a.Direction, a.Type)
	}
	if a.Status == "" {
		a.Status = "completed"
	}
	if a.Date.IsZero() {
		a.Date = time.Now().UTC()
	}

	if err := s.repo.Store(ctx, a); err != nil {
		return err
	}

	if a.OpportunityID != "" && s.opps != nil {
		if err := s.opps.TouchLastContact(ctx, a.OpportunityID, a.Date); err != nil {
			s.log.Warn("activities: touch last contact failed",
				zap.String("opportunity_id", a.OpportunityID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *ActivityService) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, error) {
	list, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Activity{}
	}
	return list, nil
}
