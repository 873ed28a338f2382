package dispatch

import (
	"context"
	"strings"

	"github.com/eskrenkovic/ludo-server/internal/modules/core"
	"github.com/eskrenkovic/ludo-server/internal/modules/ludo"
	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"go.uber.org/zap"
)

func (d *Dispatcher) HandleCreateGame(ctx context.Context, sessionID string, r protocol.CreateGame) {
	hostName := d.displayName(r.HostID)

	invitees := core.Filter(core.Map(r.ToInviteDisplayNames, strings.TrimSpace), func(invitee string) bool {
		return invitee != "" && !strings.EqualFold(invitee, hostName)
	})

	g := d.newGame(ctx, r.HostID, hostName, invitees)

	d.send(sessionID, protocol.CreateGameResponse{
		GameID:     g.ID,
		JoinStatus: true,
		Response:   protocol.ReasonGameJoinOK,
	})

	// Offline invitees could never answer, so only online ones are waited on.
	var online []string
	for _, invitee := range invitees {
		userID, ok := d.registry.LookupUserIDByDisplayName(invitee)
		if !ok {
			d.logger.Debug("skipping offline invitee", zap.String("game_id", g.ID), zap.String("invitee", invitee))
			continue
		}

		online = append(online, invitee)
		d.sendToUser(userID, protocol.SendGameInvitationsResponse{HostDisplayName: hostName, GameID: g.ID})
	}

	if len(online) == 0 {
		return
	}

	if _, err := d.games.Invite(g.ID, r.HostID, online); err != nil {
		d.logger.Error("failed to record invitation", zap.String("game_id", g.ID), zap.Error(err))
	}
}

// newGame creates a game hosted by the user along with its game-only chat
// room.
func (d *Dispatcher) newGame(ctx context.Context, hostUserID, hostName string, invitees []string) *ludo.Game {
	g := d.games.Create(hostUserID, hostName)
	d.watch(g)

	allowed := append([]string{hostName}, invitees...)
	if err := d.rooms.Create(g.ID, true, allowed); err != nil {
		d.logger.Error("failed to create game room", zap.String("game_id", g.ID), zap.Error(err))
	}

	if err := d.store.SaveRoom(ctx, g.ID); err != nil {
		d.logger.Error("failed to persist game room", zap.String("game_id", g.ID), zap.Error(err))
	}

	d.logger.Info("game created", zap.String("game_id", g.ID), zap.String("host_user_id", hostUserID))

	return g
}

// watch turns engine events into messages for the game's players.
func (d *Dispatcher) watch(g *ludo.Game) {
	g.OnDiceRolled(func(e ludo.DiceRolled) {
		d.sendToUsers(g.ActiveUserIDs(), protocol.DiceThrowResponse{
			GameID:     e.GameID,
			PlayerID:   e.PlayerIndex,
			DiceRolled: e.Value,
		})
	})

	g.OnPieceMoved(func(e ludo.PieceMoved) {
		d.sendToUsers(g.ActiveUserIDs(), protocol.PieceMovedResponse{
			GameID:     e.GameID,
			PlayerID:   e.PlayerIndex,
			PieceMoved: e.PieceIndex,
			MovedFrom:  e.From,
			MovedTo:    e.To,
		})
	})

	g.OnPlayerStateChanged(func(e ludo.PlayerStateChanged) {
		if e.State != ludo.Won {
			return
		}

		d.sendToUsers(g.ActiveUserIDs(), protocol.PlayerWonGameResponse{GameID: e.GameID, PlayerWonID: e.PlayerIndex})
	})
}

func (d *Dispatcher) HandleGameInvitationAnswer(ctx context.Context, sessionID string, r protocol.GameInvitationAnswer) {
	g, ok := d.games.Get(r.GameID)
	if !ok {
		d.send(sessionID, protocol.ErrorMessageResponse{Message: protocol.ReasonGameNotFound})
		return
	}

	displayName := d.displayName(r.UserID)

	invitation, ok := d.games.Invitation(g.ID)
	if !ok || !invitation.Invited(displayName) || invitation.Answered(displayName) {
		d.send(sessionID, protocol.ErrorMessageResponse{Message: protocol.ReasonGameJoinFail})
		return
	}

	accepted := r.Accepted
	if accepted {
		if _, err := g.AddPlayer(r.UserID, displayName); err != nil {
			d.logger.Info("invitee could not join game", zap.String("game_id", g.ID), zap.Error(err))
			d.send(sessionID, protocol.ErrorMessageResponse{Message: protocol.ReasonGameJoinFail})
			accepted = false
		}
	}

	if _, err := d.games.Answer(g.ID, displayName, accepted); err != nil {
		d.logger.Error("failed to record invitation answer", zap.String("game_id", g.ID), zap.Error(err))
		return
	}

	if accepted {
		d.sendToUsers(g.ActiveUserIDs(), protocol.UserJoinedGameResponse{
			PlayersInLobby: g.ActiveDisplayNames(),
			UserID:         r.UserID,
			GameID:         g.ID,
		})
	} else if !r.Accepted {
		d.sendToUser(g.HostUserID, protocol.UserDeclinedGameInvitationResponse{UserID: r.UserID, GameID: g.ID})
	}

	d.startIfAnswered(g)
}

// startIfAnswered starts the game once every invitee has answered and at
// least one of them accepted. A game nobody accepted stays open for random
// search.
func (d *Dispatcher) startIfAnswered(g *ludo.Game) {
	invitation, ok := d.games.Invitation(g.ID)
	if !ok || !invitation.Complete() {
		return
	}

	d.games.ClearInvitation(g.ID)

	if invitation.Accepted() == 0 || g.Status() != ludo.Initiated {
		return
	}

	d.start(g)
}

func (d *Dispatcher) start(g *ludo.Game) {
	if err := g.Start(); err != nil {
		d.logger.Info("game could not start", zap.String("game_id", g.ID), zap.Error(err))
		return
	}

	d.logger.Info("game started", zap.String("game_id", g.ID), zap.Int("players", g.ActivePlayerCount()))
	d.sendToUsers(g.ActiveUserIDs(), protocol.GameHasStartedResponse{GameID: g.ID})
}

func (d *Dispatcher) HandleRandomGameSearch(ctx context.Context, sessionID string, r protocol.RandomGameSearch) {
	displayName := d.displayName(r.UserID)

	g, ok := d.games.FindOpen(r.UserID)
	if !ok {
		g = d.newGame(ctx, r.UserID, displayName, nil)
		d.send(sessionID, protocol.CreateGameResponse{
			GameID:     g.ID,
			JoinStatus: true,
			Response:   protocol.ReasonGameJoinOK,
		})
		return
	}

	if _, err := g.AddPlayer(r.UserID, displayName); err != nil {
		d.logger.Info("random search could not join game", zap.String("game_id", g.ID), zap.Error(err))
		d.send(sessionID, protocol.ErrorMessageResponse{Message: protocol.ReasonGameJoinFail})
		return
	}

	if err := d.rooms.Allow(g.ID, displayName); err != nil {
		d.logger.Warn("game room missing", zap.String("game_id", g.ID), zap.Error(err))
	}

	d.sendToUsers(g.ActiveUserIDs(), protocol.UserJoinedGameResponse{
		PlayersInLobby: g.ActiveDisplayNames(),
		UserID:         r.UserID,
		GameID:         g.ID,
	})

	if g.ActivePlayerCount() == ludo.MaxPlayers {
		d.start(g)
	}
}

func (d *Dispatcher) HandleLeaveGame(ctx context.Context, sessionID string, r protocol.LeaveGame) {
	g, ok := d.games.Get(r.GameID)
	if !ok || !g.HasActivePlayer(r.UserID) {
		d.send(sessionID, protocol.ErrorMessageResponse{Message: protocol.ReasonGameNotFound})
		return
	}

	d.leaveGame(ctx, g, r.UserID, d.displayName(r.UserID))
}

// leaveGame marks the player as gone, tells the others, and discards the
// game along with its chat room once nobody is left in it.
func (d *Dispatcher) leaveGame(ctx context.Context, g *ludo.Game, userID, displayName string) {
	if err := g.RemovePlayer(userID); err != nil {
		d.logger.Warn("failed to remove player", zap.String("game_id", g.ID), zap.Error(err))
		return
	}

	d.sendToUsers(g.ActiveUserIDs(), protocol.UserLeftGameResponse{DisplayName: displayName, GameID: g.ID})

	if g.ActivePlayerCount() == 0 {
		d.games.Discard(g.ID)
		d.closeGameRoom(ctx, g.ID)
		d.logger.Info("game discarded", zap.String("game_id", g.ID))
	}
}

// closeGameRoom drops a discarded game's chat room. Members still in it are
// told they left.
func (d *Dispatcher) closeGameRoom(ctx context.Context, gameID string) {
	info, ok := d.rooms.Get(gameID)
	if !ok {
		return
	}

	for _, m := range info.Members {
		d.sendToUser(m.UserID, protocol.UserLeftChatRoomResponse{DisplayName: m.DisplayName, ChatRoomName: info.Name})
	}

	d.rooms.Delete(info.Name)

	if err := d.store.RemoveRoom(ctx, info.Name); err != nil {
		d.logger.Error("failed to remove game room", zap.String("game_id", gameID), zap.Error(err))
	}
}

// gameRoomAllowList names everyone who may be in the game's room: the players
// still in the game and invitees who have not answered yet.
func (d *Dispatcher) gameRoomAllowList(g *ludo.Game) []string {
	allowed := g.ActiveDisplayNames()
	if invitation, ok := d.games.Invitation(g.ID); ok {
		allowed = append(allowed, invitation.Pending()...)
	}
	return allowed
}

func (d *Dispatcher) HandleDiceThrow(_ context.Context, sessionID string, r protocol.DiceThrow) {
	g, index, ok := d.playerOf(sessionID, r.GameID, r.UserID)
	if !ok {
		return
	}

	if _, err := g.ThrowDice(index); err != nil {
		d.logger.Debug("dice throw rejected", zap.String("game_id", g.ID), zap.Error(err))
		d.send(sessionID, protocol.ErrorMessageResponse{Message: protocol.ReasonInvalidMove})
	}
}

func (d *Dispatcher) HandlePieceMove(ctx context.Context, sessionID string, r protocol.PieceMove) {
	g, index, ok := d.playerOf(sessionID, r.GameID, r.UserID)
	if !ok {
		return
	}

	if !g.MovePiece(index, r.MovedFrom, r.MovedTo) {
		d.send(sessionID, protocol.ErrorMessageResponse{Message: protocol.ReasonInvalidMove})
		return
	}

	if p, _ := g.Player(index); p.State == ludo.Won {
		d.recordResult(ctx, g, p.UserID)
	}
}

// playerOf resolves the game and the user's seat in it, answering the client
// when either is missing.
func (d *Dispatcher) playerOf(sessionID, gameID, userID string) (*ludo.Game, int, bool) {
	g, ok := d.games.Get(gameID)
	if !ok {
		d.send(sessionID, protocol.ErrorMessageResponse{Message: protocol.ReasonGameNotFound})
		return nil, 0, false
	}

	index, ok := g.PlayerIndex(userID)
	if !ok || !g.HasActivePlayer(userID) {
		d.send(sessionID, protocol.ErrorMessageResponse{Message: protocol.ReasonInvalidMove})
		return nil, 0, false
	}

	return g, index, true
}

// recordResult credits the finished game to everyone who stayed until the
// end.
func (d *Dispatcher) recordResult(ctx context.Context, g *ludo.Game, winnerID string) {
	players := g.ActiveUserIDs()

	if err := d.accounts.RecordGameResult(ctx, players, winnerID); err != nil {
		d.logger.Error("failed to record game result", zap.String("game_id", g.ID), zap.Error(err))
		return
	}

	d.logger.Info("game won", zap.String("game_id", g.ID), zap.String("winner_user_id", winnerID))
}
