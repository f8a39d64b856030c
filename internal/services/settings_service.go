package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/repositories"
)

type SettingsService struct {
	repo *repositories.SettingsRepository
	log  *zap.Logger
}

func NewSettingsService(repo *repositories.SettingsRepository, log *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, log: log}
}

// Get отдаёт сохранённые настройки или значения по умолчанию.
func (s *SettingsService) Get(ctx context.Context) (models.Settings, error) {
	stored, found, err := s.repo.Get(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	if !found {
		return models.DefaultSettings(), nil
	}
	if len(stored.Industries) == 0 {
		stored.Industries = models.DefaultSettings().Industries
	}
	return stored, nil
}

// Save чистит список отраслей (пробелы, пустые, дубли) и сохраняет.
func (s *SettingsService) Save(ctx context.Context, in models.Settings) (models.Settings, error) {
	seen := make(map[string]bool, len(in.Industries))
	industries := make([]string, 0, len(in.Industries))
	for _, name := range in.Industries {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		industries = append(industries, name)
	}
	out := models.Settings{
		Industries:        industries,
		SystemInstruction: strings.TrimSpace(in.SystemInstruction),
	}
	if err := s.repo.Save(ctx, out); err != nil {
		return models.Settings{}, err
	}
	s.log.Info("settings: saved", zap.Int("industries", len(industries)), zap.Bool("custom_instruction", out.SystemInstruction != ""))
	return out, nil
}

// Instruction: пользовательская системная инструкция для ИИ или "" (тогда
// используется встроенная). Ошибка чтения не мешает вызову ИИ.
func (s *SettingsService) Instruction(ctx context.Context) string {
	st, err := s.Get(ctx)
	if err != nil {
		s.log.Warn("settings: read failed, using built-in instruction", zap.Error(err))
		return ""
	}
	return st.SystemInstruction
}
