package notification

import (
	"context"

	"github.com/joshua31324324/user-management/pkg/domain"
	"go.uber.org/zap"
)

// LogNotifier stands in for email delivery when SMTP is not configured. The
// verification link is only written at debug level.
type LogNotifier struct {
	appBaseURL string
	logger     *zap.Logger
}

// NewLogNotifier creates a notifier that only logs verification links.
func NewLogNotifier(appBaseURL string, logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{appBaseURL: appBaseURL, logger: logger}
}

// SendVerification logs that no email was sent. It never fails.
func (n *LogNotifier) SendVerification(_ context.Context, user *domain.User, token string) error {
	n.logger.Info("email delivery disabled, verification email not sent", zap.String("user_id", user.ID.String()))
	n.logger.Debug("verification link", zap.String("user_id", user.ID.String()), zap.String("url", VerificationURL(n.appBaseURL, user, token)))
	return nil
}
