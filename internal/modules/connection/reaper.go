package connection

import (
	"context"

	"go.uber.org/zap"
)

// Cleaner removes a departed user from everything they took part in.
type Cleaner interface {
	Disconnect(ctx context.Context, userID, displayName string)
}

type Reaper struct {
	registry    *Registry
	disconnects *Queue[string]
	cleaner     Cleaner
	logger      *zap.Logger
}

func NewReaper(registry *Registry, disconnects *Queue[string], cleaner Cleaner, logger *zap.Logger) *Reaper {
	return &Reaper{
		registry:    registry,
		disconnects: disconnects,
		cleaner:     cleaner,
		logger:      logger.With(zap.String("component", "reaper")),
	}
}

func (r *Reaper) Run(ctx context.Context) error {
	for {
		sessionID, err := r.disconnects.Take(ctx)
		if err != nil {
			return nil
		}

		r.Reap(ctx, sessionID)
	}
}

func (r *Reaper) Reap(ctx context.Context, sessionID string) {
	c, ok := r.registry.Unregister(sessionID)
	if !ok {
		return
	}

	if err := c.Close(); err != nil {
		r.logger.Debug("failed to close connection", zap.String("session_id", sessionID), zap.Error(err))
	}

	userID := c.UserID()

	r.logger.Info(
		"connection closed",
		zap.String("session_id", sessionID),
		zap.String("user_id", userID),
	)

	if userID == "" {
		return
	}

	r.cleaner.Disconnect(ctx, userID, c.DisplayName())
}
