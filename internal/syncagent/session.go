package syncagent

import (
	"bizdir_backend/internal/config"
	"bizdir_backend/internal/email"
	"bizdir_backend/internal/services/dto"
)

// Session bundles a running agent with the toast sink its UI drains.
type Session struct {
	Agent  *Agent
	Toasts *ToastSink
}

// NewSession builds an agent for one signed-in recipient with the
// configured interval, alert cap and sinks. The email sink is attached
// only when the platform channel is enabled.
func NewSession(api QueryAPI, recipient dto.RecipientRef, cfg *config.Config) *Session {
	toasts := NewToastSink(16)
	sinks := []AlertSink{toasts}

	if cfg.Email.Enabled && recipient.Email != "" {
		sender := email.NewSender(email.Config{
			SMTPHost: cfg.Email.SMTPHost,
			SMTPPort: cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
			From:     cfg.Email.FromEmail,
			FromName: cfg.Email.FromName,
		})
		sinks = append(sinks, NewEmailSink(sender, recipient.Email))
	}

	agent := New(api, recipient,
		WithInterval(cfg.PollInterval()),
		WithMaxAlertsPerPoll(cfg.MaxAlerts()),
		WithSinks(sinks...),
	)

	return &Session{Agent: agent, Toasts: toasts}
}
