package connection

import (
	"context"
	"time"

	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"go.uber.org/zap"
)

// Liveness pings every connection on a fixed interval so dead peers are found
// even when nothing else is written to them.
type Liveness struct {
	registry *Registry
	interval time.Duration
	logger   *zap.Logger
}

func NewLiveness(registry *Registry, interval time.Duration, logger *zap.Logger) *Liveness {
	return &Liveness{
		registry: registry,
		interval: interval,
		logger:   logger.With(zap.String("component", "liveness")),
	}
}

func (l *Liveness) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.PingAll()
		}
	}
}

func (l *Liveness) PingAll() {
	payload, err := protocol.Encode(protocol.Ping{})
	if err != nil {
		l.logger.Error("failed to encode ping", zap.Error(err))
		return
	}

	for _, c := range l.registry.Snapshot() {
		if err := c.Write(payload, WriteWait); err != nil {
			l.logger.Debug("ping failed", zap.String("session_id", c.SessionID), zap.Error(err))
			l.registry.MarkForDisconnect(c.SessionID)
		}
	}
}
