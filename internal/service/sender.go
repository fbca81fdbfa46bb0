// Package service contains the application services that sit between the
// HTTP handlers and the repositories.
package service

import (
	"context"
	"log/slog"

	"memberbase/internal/middleware"
	"memberbase/internal/models"
)

// Sender delivers one-time codes out of band. Email/SMS provider integrations
// implement this; the core never talks to a provider directly.
type Sender interface {
	Send(ctx context.Context, contact string, channel models.OTPChannel, code string) error
}

// LogSender writes codes to the structured log instead of delivering them.
// Development and test environments only.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, contact string, channel models.OTPChannel, code string) error {
	middleware.Logger.InfoContext(ctx, "otp code issued (dev sender)",
		slog.String("contact", contact),
		slog.String("channel", string(channel)),
		slog.String("code", code),
	)
	return nil
}
