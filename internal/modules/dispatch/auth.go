package dispatch

import (
	"context"
	"errors"

	"github.com/eskrenkovic/ludo-server/internal/modules/account"
	"github.com/eskrenkovic/ludo-server/internal/modules/connection"
	"github.com/eskrenkovic/ludo-server/internal/modules/core"
	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"go.uber.org/zap"
)

func (d *Dispatcher) HandleLoginManual(ctx context.Context, sessionID string, r protocol.LoginManual) {
	identity, err := d.accounts.Login(ctx, r.Username, r.Password)
	if err != nil {
		d.send(sessionID, protocol.LoginResponse{Response: core.ReasonOf(err, protocol.ReasonInternalError)})
		return
	}

	if !d.bind(sessionID, identity) {
		return
	}

	token, err := d.accounts.IssueSessionToken(ctx, identity.UserID)
	if err != nil {
		// Login still succeeds, only without a token for next time.
		d.logger.Error("failed to issue session token", zap.String("user_id", identity.UserID), zap.Error(err))
	}

	d.send(sessionID, protocol.LoginResponse{
		LoginStatus:  true,
		Response:     protocol.ReasonLoginOK,
		UserID:       identity.UserID,
		DisplayName:  identity.DisplayName,
		SessionToken: token,
	})
}

func (d *Dispatcher) HandleLoginAuto(ctx context.Context, sessionID string, r protocol.LoginAuto) {
	identity, err := d.accounts.LoginWithToken(ctx, r.SessionToken)
	if err != nil {
		d.send(sessionID, protocol.LoginResponse{Response: core.ReasonOf(err, protocol.ReasonInternalError)})
		return
	}

	if !d.bind(sessionID, identity) {
		return
	}

	d.send(sessionID, protocol.LoginResponse{
		LoginStatus:  true,
		Response:     protocol.ReasonLoginOK,
		UserID:       identity.UserID,
		DisplayName:  identity.DisplayName,
		SessionToken: r.SessionToken,
	})
}

// bind attaches the identity to the session and answers the client when that
// is not possible.
func (d *Dispatcher) bind(sessionID string, identity account.Identity) bool {
	err := d.registry.BindUser(sessionID, identity.UserID, identity.DisplayName)
	switch {
	case err == nil:
		d.logger.Info("user logged in", zap.String("session_id", sessionID), zap.String("user_id", identity.UserID))
		return true
	case errors.Is(err, connection.ErrNotFound):
		// Disconnected while the request was queued.
		return false
	case errors.Is(err, connection.ErrUserOnline), errors.Is(err, connection.ErrAlreadyBound):
		d.send(sessionID, protocol.LoginResponse{Response: protocol.ReasonLoginAlready})
		return false
	default:
		d.internalError(sessionID, err, "failed to bind session")
		return false
	}
}

func (d *Dispatcher) HandleRegister(ctx context.Context, sessionID string, r protocol.Register) {
	if err := d.accounts.Register(ctx, r.Username, r.Password); err != nil {
		d.send(sessionID, protocol.RegisterResponse{Response: core.ReasonOf(err, protocol.ReasonInternalError)})
		return
	}

	d.send(sessionID, protocol.RegisterResponse{RegisterStatus: true, Response: protocol.ReasonRegisterOK})
}
