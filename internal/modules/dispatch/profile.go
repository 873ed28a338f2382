package dispatch

import (
	"context"
	"strings"

	"github.com/eskrenkovic/ludo-server/internal/modules/account/domain"
	"github.com/eskrenkovic/ludo-server/internal/modules/core"
	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"go.uber.org/zap"
)

func (d *Dispatcher) HandleViewProfile(ctx context.Context, sessionID string, r protocol.ViewProfile) {
	var (
		profile domain.Profile
		err     error
	)

	if name := strings.TrimSpace(r.DisplayName); name != "" {
		profile, err = d.accounts.ProfileByDisplayName(ctx, name)
	} else {
		profile, err = d.accounts.Profile(ctx, r.UserID)
	}

	if err != nil {
		d.send(sessionID, protocol.UserWantToViewProfileResponse{
			Message: core.ReasonOf(err, protocol.ReasonInternalError),
		})
		return
	}

	d.send(sessionID, protocol.UserWantToViewProfileResponse{
		UserID:      profile.UserID.String(),
		DisplayName: profile.DisplayName,
		GamesPlayed: profile.GamesPlayed,
		GamesWon:    profile.GamesWon,
		ImageString: profile.ImageString,
	})
}

func (d *Dispatcher) HandleEditProfile(ctx context.Context, sessionID string, r protocol.EditProfile) {
	result, err := d.accounts.EditProfile(ctx, r.UserID, r.DisplayName, r.Password, r.ImageString)
	if err != nil {
		d.send(sessionID, protocol.UserWantToEditProfileResponse{
			Response:    core.ReasonOf(err, protocol.ReasonInternalError),
			DisplayName: d.displayName(r.UserID),
		})
		return
	}

	if oldName := d.displayName(r.UserID); result.Changed && result.DisplayName != oldName {
		d.rename(r.UserID, oldName, result.DisplayName)
	}

	d.send(sessionID, protocol.UserWantToEditProfileResponse{
		Response:    result.Reason,
		Changed:     result.Changed,
		DisplayName: result.DisplayName,
	})
}

// rename carries a display name change everywhere the server keys on it:
// the session, chat rooms, game seats and pending invitations.
func (d *Dispatcher) rename(userID, oldName, newName string) {
	d.registry.SetDisplayName(userID, newName)
	d.rooms.Rename(userID, oldName, newName)
	d.games.RenameInvitee(oldName, newName)

	for _, g := range d.games.Of(userID) {
		g.RenamePlayer(userID, newName)
	}

	d.logger.Info("display name changed", zap.String("user_id", userID))
}

func (d *Dispatcher) HandleLeaderboard(ctx context.Context, sessionID string, _ protocol.Leaderboard) {
	leaderboard, err := d.accounts.Leaderboard(ctx)
	if err != nil {
		d.internalError(sessionID, err, "failed to load leaderboard")
		return
	}

	toResponse := func(e domain.LeaderboardEntry) protocol.LeaderboardEntry {
		return protocol.LeaderboardEntry{DisplayName: e.DisplayName, Count: e.Count}
	}

	d.send(sessionID, protocol.LeaderboardResponse{
		TopTenPlays: core.Map(leaderboard.TopTenPlays, toResponse),
		TopTenWins:  core.Map(leaderboard.TopTenWins, toResponse),
	})
}
