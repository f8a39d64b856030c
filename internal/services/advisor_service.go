package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/skyaboveme/yourgency/internal/ai"
	"github.com/skyaboveme/yourgency/internal/cache"
	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/observability"
)

const scoreCacheName = "lead_score"

// AdvisorService: серверные AI-сценарии: оценка лидов, анализ, чат,
// письма и утренний бриф.
type AdvisorService struct {
	advisor  *ai.Advisor // nil, если ключ Gemini не задан
	settings *SettingsService
	opps     *OpportunityService
	email    EmailService
	notifier Notifier
	scores   *cache.InMemory[models.LeadScore]
	metrics  *observability.Metrics
	log      *zap.Logger
}

type AdvisorDeps struct {
	Advisor  *ai.Advisor
	Settings *SettingsService
	Opps     *OpportunityService
	Email    EmailService
	Notifier Notifier
	Scores   *cache.InMemory[models.LeadScore]
	Metrics  *observability.Metrics
	Log      *zap.Logger
}

func NewAdvisorService(d AdvisorDeps) *AdvisorService {
	return &AdvisorService{
		advisor:  d.Advisor,
		settings: d.Settings,
		opps:     d.Opps,
		email:    d.Email,
		notifier: d.Notifier,
		scores:   d.Scores,
		metrics:  d.Metrics,
		log:      d.Log,
	}
}

// Score оценивает лида. Одинаковые входные данные берутся из кэша; при
// DealID оценка сохраняется в сделку. HOT-лид уходит в Telegram.
func (s *AdvisorService) Score(ctx context.Context, req models.ScoreRequest) (*models.LeadScore, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	key := scoreKey(req)

	score, cached := s.scores.Get(key)
	if cached {
		s.metrics.IncrCacheHit(scoreCacheName)
	} else {
		s.metrics.IncrCacheMiss(scoreCacheName)
		fresh, err := s.advisor.Score(ctx, s.settings.Instruction(ctx), req)
		if err != nil {
			return nil, s.external(err)
		}
		score = *fresh
		s.scores.Set(key, score)
	}

	if req.DealID != "" {
		if err := s.opps.UpdateScore(ctx, req.DealID, &score); err != nil {
			return nil, err
		}
	}

	if !cached && score.Tier() == models.TierHot && s.notifier != nil {
		if err := s.notifier.NotifyHotLead(req.CompanyName, score); err != nil {
			s.log.Warn("advisor: hot lead alert failed", zap.String("company", req.CompanyName), zap.Error(err))
		}
	}
	return &score, nil
}

func (s *AdvisorService) DeepAnalysis(ctx context.Context, req models.AnalysisRequest) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	text, err := s.advisor.DeepAnalysis(ctx, req)
	if err != nil {
		return "", s.external(err)
	}
	return text, nil
}

func (s *AdvisorService) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatReply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, &models.ErrValidation{Field: "message", Message: "message is required"}
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	reply, err := s.advisor.Chat(ctx, s.settings.Instruction(ctx), req)
	if err != nil {
		return nil, s.external(err)
	}
	return reply, nil
}

func (s *AdvisorService) DraftOutreach(ctx context.Context, req models.OutreachRequest) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	text, err := s.advisor.DraftOutreach(ctx, s.settings.Instruction(ctx), req)
	if err != nil {
		return "", s.external(err)
	}
	return text, nil
}

// SendOutreach отправляет письмо; если указана сделка, отмечает контакт.
func (s *AdvisorService) SendOutreach(ctx context.Context, msg models.OutreachEmail) error {
	if s.email == nil {
		return errMailDisabled
	}
	if err := s.email.SendOutreachEmail(msg); err != nil {
		var ext *models.ErrExternalService
		if errors.As(err, &ext) {
			s.metrics.IncrExternalError(ext.Service)
		}
		return err
	}
	if msg.DealID != "" {
		if err := s.opps.TouchLastContact(ctx, msg.DealID, nowUTC()); err != nil {
			s.log.Warn("advisor: touch last contact failed", zap.String("deal_id", msg.DealID), zap.Error(err))
		}
	}
	return nil
}

// MorningBrief строится по текущему состоянию хранилища.
func (s *AdvisorService) MorningBrief(ctx context.Context) (*models.Brief, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	deals, err := s.opps.Deals(ctx)
	if err != nil {
		return nil, err
	}
	brief, err := s.advisor.MorningBrief(ctx, s.settings.Instruction(ctx), deals)
	if err != nil {
		return nil, s.external(err)
	}
	return brief, nil
}

func (s *AdvisorService) ready() error {
	if s.advisor == nil {
		s.metrics.IncrExternalError("gemini")
		return &models.ErrExternalService{Service: "gemini", Err: ai.ErrNotConfigured}
	}
	return nil
}

func (s *AdvisorService) external(err error) error {
	s.metrics.IncrExternalError("gemini")
	s.log.Warn("advisor: model call failed", zap.Error(err))
	return err
}

// scoreKey не зависит от регистра и пробелов по краям.
func scoreKey(req models.ScoreRequest) string {
	h := sha256.New()
	for _, part := range []string{req.CompanyName, req.Industry, req.Observations} {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(part))))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
