package notifier

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// Sender delivers buyer-facing messages. The default implementation fakes a
// provider call so the worker exercises realistic latency without an
// external dependency.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type logSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(ctx context.Context, to, subject, body string) error {
	delay := time.Duration(50+rand.Intn(151)) * time.Millisecond
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}
