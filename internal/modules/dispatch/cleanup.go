package dispatch

import (
	"context"

	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"go.uber.org/zap"
)

// cleanup runs the disconnect cascade: chat rooms first, then games, then
// invitations the user never answered, which count as declined.
func (d *Dispatcher) cleanup(ctx context.Context, userID, displayName string) {
	for _, room := range d.rooms.Of(userID) {
		d.leaveRoom(ctx, room, userID, displayName, false)
	}

	for _, g := range d.games.Of(userID) {
		d.leaveGame(ctx, g, userID, displayName)
	}

	for _, invitation := range d.games.InvitationsFor(displayName) {
		g, ok := d.games.Get(invitation.GameID)
		if !ok {
			continue
		}

		if _, err := d.games.Answer(g.ID, displayName, false); err != nil {
			d.logger.Warn("failed to decline invitation", zap.String("game_id", g.ID), zap.Error(err))
			continue
		}

		d.sendToUser(g.HostUserID, protocol.UserDeclinedGameInvitationResponse{UserID: userID, GameID: g.ID})
		d.startIfAnswered(g)
	}

	d.logger.Info("user cleaned up", zap.String("user_id", userID))
}
