package mail

import (
	"context"

	"go.uber.org/zap"
)

// LogChannel is the development fallback used when no mail provider is
// configured. It records that a ticket was issued without logging the ticket.
type LogChannel struct {
	log *zap.SugaredLogger
}

func NewLogChannel(log *zap.SugaredLogger) *LogChannel {
	return &LogChannel{log: log}
}

func (c *LogChannel) SendPasswordReset(ctx context.Context, toEmail, username, ticket string) error {
	c.log.Infow("password reset ticket issued", "email", toEmail, "username", username)
	return nil
}
