package services

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/skyaboveme/yourgency/internal/models"
)

type EmailService interface {
	SendWelcomeEmail(email, name string) error
	SendOutreachEmail(msg models.OutreachEmail) error
}

// mailSender: то, что нужно от gomail.Dialer; в тестах подменяется.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer mailSender
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendWelcomeEmail(email, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to Yourgency CRM")

	body := fmt.Sprintf(`
		<h2>Welcome aboard, %s!</h2>
		<p>An account has been created for you in the Yourgency sales CRM.</p>
		<p>Sign in with this email address and the password your admin gave you.</p>
		<p>Best regards,<br>The Yourgency Team</p>
	`, name)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	return nil
}

// SendOutreachEmail отправляет черновик, подготовленный AI, как обычное письмо.
func (s *emailService) SendOutreachEmail(msg models.OutreachEmail) error {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return &models.ErrValidation{Field: "to", Message: "recipient is required"}
	}
	if strings.TrimSpace(msg.Body) == "" {
		return &models.ErrValidation{Field: "body", Message: "body is required"}
	}
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = "Growing your business with Yourgency"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return &models.ErrExternalService{Service: "smtp", Err: fmt.Errorf("failed to send outreach email: %w", err)}
	}
	return nil
}

// errMailDisabled возвращается, когда SMTP не настроен.
var errMailDisabled = &models.ErrExternalService{Service: "smtp", Err: errors.New("smtp is not configured")}
