package services

import (
	"fmt"
	"html"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/skyaboveme/yourgency/internal/models"
)

// Notifier сообщает команде о горячих лидах.
type Notifier interface {
	NotifyHotLead(company string, score models.LeadScore) error
}

type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *zap.Logger
}

// NewTelegramNotifier подключается к Bot API (getMe). Пустой endpoint:
// официальный api.telegram.org.
func NewTelegramNotifier(token string, chatID int64, endpoint string, log *zap.Logger) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram: token and chat id are required")
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("telegram: connect bot: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, log: log}, nil
}

func (t *TelegramNotifier) NotifyHotLead(company string, score models.LeadScore) error {
	text := fmt.Sprintf("🔥 <b>Hot lead: %s</b>\nComposite: %.0f (fit %.0f, need %.0f, timing %.0f, readiness %.0f)\n%s",
		html.EscapeString(company), score.Composite,
		score.Fit, score.Need, score.Timing, score.Readiness,
		html.EscapeString(score.Rationale),
	)
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		t.log.Warn("telegram: send failed", zap.Int64("chat_id", t.chatID), zap.Error(err))
		return &models.ErrExternalService{Service: "telegram", Err: err}
	}
	t.log.Info("telegram: hot lead sent", zap.String("company", company))
	return nil
}
