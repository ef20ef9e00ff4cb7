package notification

import (
	"context"
	"fmt"
	"html"

	"github.com/joshua31324324/user-management/internal/config"
	"github.com/joshua31324324/user-management/pkg/domain"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// EmailService delivers account emails over SMTP.
type EmailService struct {
	config     config.EmailConfig
	appBaseURL string
	logger     *zap.Logger
	send       func(*mail.Message) error
}

// NewEmailService creates an SMTP notifier whose verification links point at appBaseURL.
func NewEmailService(cfg config.EmailConfig, appBaseURL string, logger *zap.Logger) *EmailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &EmailService{
		config:     cfg,
		appBaseURL: appBaseURL,
		logger:     logger,
		send: func(m *mail.Message) error {
			return dialer.DialAndSend(m)
		},
	}
}

// SendVerification emails the verification link for user.
func (s *EmailService) SendVerification(ctx context.Context, user *domain.User, token string) error {
	verifyURL := VerificationURL(s.appBaseURL, user, token)
	escaped := html.EscapeString(verifyURL)

	body := fmt.Sprintf(`<html><body>
		<h2>Verify Your Email Address</h2>
		<p>Thank you for registering! Please verify your email address to complete your registration.</p>
		<p><a href="%s">Click here to verify your email</a></p>
		<p>Or copy this link to your browser: %s</p>
	</body></html>`, escaped, escaped)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.sendEmail(user.Email, "Verify Your Email Address", body, verifyURL); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}

	s.logger.Info("verification email sent", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *EmailService) sendEmail(to, subject, htmlBody, textBody string) error {
	m := mail.NewMessage()
	m.SetAddressHeader("From", s.config.From, s.config.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	return s.send(m)
}

// VerificationURL builds the link that confirms user's email address.
func VerificationURL(appBaseURL string, user *domain.User, token string) string {
	return fmt.Sprintf("%s/verify-email/%s/%s", appBaseURL, user.ID, token)
}
