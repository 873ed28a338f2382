package connection

import (
	"context"
	"time"

	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"go.uber.org/zap"
)

// WriteWait bounds a single socket write.
const WriteWait = 10 * time.Second

type Egress struct {
	registry *Registry
	outbound *Queue[protocol.Envelope]
	logger   *zap.Logger
}

func NewEgress(registry *Registry, outbound *Queue[protocol.Envelope], logger *zap.Logger) *Egress {
	return &Egress{
		registry: registry,
		outbound: outbound,
		logger:   logger.With(zap.String("component", "egress")),
	}
}

func (e *Egress) Run(ctx context.Context) error {
	for {
		envelope, err := e.outbound.Take(ctx)
		if err != nil {
			return nil
		}

		e.Send(envelope)
	}
}

// Send writes one envelope. Messages for sessions that are gone are dropped.
func (e *Egress) Send(envelope protocol.Envelope) {
	c, ok := e.registry.Get(envelope.RecipientSessionID)
	if !ok {
		e.logger.Debug(
			"dropping message for offline recipient",
			zap.String("session_id", envelope.RecipientSessionID),
			zap.String("action", envelope.Response.Action()),
		)
		return
	}

	payload, err := protocol.Encode(envelope.Response)
	if err != nil {
		e.logger.Error(
			"failed to encode response",
			zap.String("action", envelope.Response.Action()),
			zap.Error(err),
		)
		return
	}

	if err := c.Write(payload, WriteWait); err != nil {
		e.logger.Debug(
			"connection write failed",
			zap.String("session_id", c.SessionID),
			zap.Error(err),
		)
		e.registry.MarkForDisconnect(c.SessionID)
	}
}
