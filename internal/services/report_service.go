package services

import (
	"context"
	"io"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/pdf"
	"github.com/skyaboveme/yourgency/internal/repositories"
)

// atRiskBelow: активная сделка с оценкой ниже порога (или без оценки) в зоне риска.
const atRiskBelow = 60

type ReportService struct {
	opps     *OpportunityService
	users    repositories.UserRepository
	accounts *repositories.AccountRepository
	pdfGen   pdf.Generator
}

func NewReportService(opps *OpportunityService, users repositories.UserRepository, accounts *repositories.AccountRepository, pdfGen pdf.Generator) *ReportService {
	return &ReportService{opps: opps, users: users, accounts: accounts, pdfGen: pdfGen}
}

// Summary: KPI дашборда; источники читаются параллельно.
func (s *ReportService) Summary(ctx context.Context) (*models.Summary, error) {
	summary, _, err := s.collect(ctx)
	return summary, err
}

// PipelinePDF пишет отчёт по воронке в w.
func (s *ReportService) PipelinePDF(ctx context.Context, w io.Writer) error {
	summary, deals, err := s.collect(ctx)
	if err != nil {
		return err
	}
	return s.pdfGen.PipelineReport(w, pdf.ReportData{
		Summary:     *summary,
		Deals:       deals,
		GeneratedAt: nowUTC(),
	})
}

func (s *ReportService) collect(ctx context.Context) (*models.Summary, []models.Deal, error) {
	var (
		deals    []models.Deal
		users    int
		accounts int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		deals, err = s.opps.Deals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.users.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		accounts, err = s.accounts.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	summary := Summarize(deals)
	summary.Users = users
	summary.Accounts = accounts
	return &summary, deals, nil
}

// Summarize считает распределение по стадиям, активные сделки, win rate
// (won / (won+lost), в процентах) и сделки в зоне риска.
func Summarize(deals []models.Deal) models.Summary {
	counts := make(map[models.Stage]int, len(models.Stages))
	var active, atRisk int
	for _, d := range deals {
		counts[d.Stage]++
		if d.Stage.Closed() {
			continue
		}
		active++
		if d.Score == nil || d.Score.Composite < atRiskBelow {
			atRisk++
		}
	}

	dist := make([]models.StageCount, 0, len(models.Stages))
	for _, st := range models.Stages {
		dist = append(dist, models.StageCount{Stage: st, Name: st.Label(), Value: counts[st]})
	}

	var winRate float64
	if closed := counts[models.StageClosedWon] + counts[models.StageClosedLost]; closed > 0 {
		winRate = math.Round(float64(counts[models.StageClosedWon])/float64(closed)*1000) / 10
	}

	return models.Summary{
		ActiveProspects: active,
		WinRate:         winRate,
		AtRisk:          atRisk,
		Distribution:    dist,
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
