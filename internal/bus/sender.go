package bus

import (
	"context"
	"log/slog"

	"canbridge/internal/can"
)

// Sender transmits outbound frames.
type Sender interface {
	Send(ctx context.Context, f can.Frame) error
}

// LogSender stands in for a transmitter when the bus is a replay: frames are
// logged at debug level and dropped.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, f can.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Debug("tx frame", "frame", f.String())
	return nil
}
