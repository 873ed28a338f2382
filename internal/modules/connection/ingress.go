package connection

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"go.uber.org/zap"
)

const (
	// MaxLineBytes bounds a single message. Longer lines are discarded.
	MaxLineBytes = 64 * 1024

	readChunkBytes   = 4096
	readsPerPoll     = 16
	pollReadDeadline = time.Millisecond
)

// Ingress polls every connection for complete lines and hands decoded
// requests to the dispatcher.
type Ingress struct {
	registry *Registry
	inbound  *Queue[protocol.Inbound]
	interval time.Duration
	logger   *zap.Logger
}

func NewIngress(
	registry *Registry,
	inbound *Queue[protocol.Inbound],
	interval time.Duration,
	logger *zap.Logger,
) *Ingress {
	return &Ingress{
		registry: registry,
		inbound:  inbound,
		interval: interval,
		logger:   logger.With(zap.String("component", "ingress")),
	}
}

func (in *Ingress) Run(ctx context.Context) error {
	ticker := time.NewTicker(in.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := in.Poll(ctx); err != nil {
				return nil
			}
		}
	}
}

// Poll makes one pass over all connections. It only fails when ctx is done
// while waiting for room on the inbound queue.
func (in *Ingress) Poll(ctx context.Context) error {
	for _, c := range in.registry.Snapshot() {
		if err := in.poll(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (in *Ingress) poll(ctx context.Context, c *Connection) error {
	if readErr := in.read(c); readErr != nil {
		in.logger.Debug(
			"connection read failed",
			zap.String("session_id", c.SessionID),
			zap.Error(readErr),
		)
		in.registry.MarkForDisconnect(c.SessionID)
	}

	for {
		i := bytes.IndexByte(c.pending, '\n')
		if i < 0 {
			break
		}

		line := bytes.TrimSpace(c.pending[:i])
		c.pending = c.pending[i+1:]

		if c.discarding {
			c.discarding = false
			continue
		}

		if len(line) == 0 {
			continue
		}

		if err := in.accept(ctx, c, line); err != nil {
			return err
		}
	}

	if c.discarding {
		c.pending = nil
		return nil
	}

	if len(c.pending) > MaxLineBytes {
		in.logger.Warn(
			"discarding oversized message",
			zap.String("session_id", c.SessionID),
			zap.Int("bytes", len(c.pending)),
		)
		c.pending = nil
		c.discarding = true
	}

	return nil
}

// read drains whatever the socket has ready. A read timeout only means there
// is nothing more to read right now.
func (in *Ingress) read(c *Connection) error {
	buf := make([]byte, readChunkBytes)

	for i := 0; i < readsPerPoll; i++ {
		if err := c.conn.SetReadDeadline(time.Now().Add(pollReadDeadline)); err != nil {
			return err
		}

		n, err := c.conn.Read(buf)
		if n > 0 {
			c.pending = append(c.pending, buf[:n]...)
		}

		if err != nil {
			if isTimeout(err) {
				return nil
			}
			return err
		}
	}

	return nil
}

func (in *Ingress) accept(ctx context.Context, c *Connection, line []byte) error {
	request, err := protocol.Decode(line)
	if err != nil {
		in.logger.Debug(
			"dropping undecodable message",
			zap.String("session_id", c.SessionID),
			zap.Error(err),
		)
		return nil
	}

	if c.UserID() == "" && !protocol.Anonymous(request) {
		in.logger.Debug(
			"dropping message from connection that has not logged in",
			zap.String("session_id", c.SessionID),
			zap.String("action", request.Action()),
		)
		return nil
	}

	return in.inbound.Put(ctx, protocol.Inbound{SessionID: c.SessionID, Request: request})
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
