package lobby

import (
	"errors"
	"sync"

	"github.com/eskrenkovic/ludo-server/internal/modules/ludo"

	"github.com/google/uuid"
)

var (
	ErrGameNotFound       = errors.New("game not found")
	ErrInvitationNotFound = errors.New("no pending invitation for game")
)

type GameInfo struct {
	ID           string
	HostUserID   string
	Status       ludo.Status
	Players      []ludo.Player
	ActivePlayer int
	DiceValue    int
	Pending      []string
}

// Games is the table of active games and their pending invitations. Game
// values themselves are not guarded here; callers serialize play.
type Games struct {
	mu          sync.RWMutex
	games       map[string]*ludo.Game
	order       []string
	invitations map[string]*Invitation

	opts []ludo.Option
}

// NewGames creates an empty table. The options are applied to every game it
// creates.
func NewGames(opts ...ludo.Option) *Games {
	return &Games{
		games:       make(map[string]*ludo.Game),
		invitations: make(map[string]*Invitation),
		opts:        opts,
	}
}

func (gs *Games) Create(hostUserID, hostDisplayName string) *ludo.Game {
	g := ludo.NewGame(uuid.NewString(), hostUserID, hostDisplayName, gs.opts...)

	gs.mu.Lock()
	gs.games[g.ID] = g
	gs.order = append(gs.order, g.ID)
	gs.mu.Unlock()

	return g
}

func (gs *Games) Get(gameID string) (*ludo.Game, bool) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	g, ok := gs.games[gameID]
	return g, ok
}

func (gs *Games) Count() int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return len(gs.games)
}

// Invite records a pending invitation, replacing any earlier one for the game.
func (gs *Games) Invite(gameID, hostUserID string, invitees []string) (*Invitation, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if _, ok := gs.games[gameID]; !ok {
		return nil, ErrGameNotFound
	}

	i := newInvitation(gameID, hostUserID, invitees)
	gs.invitations[gameID] = i
	return i, nil
}

func (gs *Games) Invitation(gameID string) (*Invitation, bool) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	i, ok := gs.invitations[gameID]
	return i, ok
}

func (gs *Games) Answer(gameID, displayName string, accepted bool) (*Invitation, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	i, ok := gs.invitations[gameID]
	if !ok {
		return nil, ErrInvitationNotFound
	}

	if err := i.answer(displayName, accepted); err != nil {
		return nil, err
	}

	return i, nil
}

// InvitationsFor lists the pending invitations still waiting on an answer from
// the display name.
func (gs *Games) InvitationsFor(displayName string) []*Invitation {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	var invitations []*Invitation
	for _, id := range gs.order {
		if i, ok := gs.invitations[id]; ok && i.Invited(displayName) && !i.Answered(displayName) {
			invitations = append(invitations, i)
		}
	}
	return invitations
}

// RenameInvitee carries a display name change into every invitation that
// names the user.
func (gs *Games) RenameInvitee(oldDisplayName, newDisplayName string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	for _, invitation := range gs.invitations {
		invitation.rename(oldDisplayName, newDisplayName)
	}
}

func (gs *Games) ClearInvitation(gameID string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	delete(gs.invitations, gameID)
}

// Discard drops the game together with any pending invitation.
func (gs *Games) Discard(gameID string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	delete(gs.games, gameID)
	delete(gs.invitations, gameID)

	for i, id := range gs.order {
		if id == gameID {
			gs.order = append(gs.order[:i], gs.order[i+1:]...)
			break
		}
	}
}

// FindOpen returns the oldest game still gathering players that the user is
// not part of. Games waiting on invitation answers are skipped.
func (gs *Games) FindOpen(userID string) (*ludo.Game, bool) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	for _, id := range gs.order {
		g := gs.games[id]

		if g.Status() != ludo.Initiated || g.ActivePlayerCount() >= ludo.MaxPlayers {
			continue
		}

		if _, invited := gs.invitations[id]; invited {
			continue
		}

		if _, joined := g.PlayerIndex(userID); joined {
			continue
		}

		return g, true
	}

	return nil, false
}

// Of lists the games in which the user is still an active player.
func (gs *Games) Of(userID string) []*ludo.Game {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	var games []*ludo.Game
	for _, id := range gs.order {
		if g := gs.games[id]; g.HasActivePlayer(userID) {
			games = append(games, g)
		}
	}
	return games
}

func (gs *Games) Info(gameID string) (GameInfo, bool) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	g, ok := gs.games[gameID]
	if !ok {
		return GameInfo{}, false
	}

	return gs.info(g), true
}

func (gs *Games) Snapshot() []GameInfo {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	infos := make([]GameInfo, 0, len(gs.order))
	for _, id := range gs.order {
		infos = append(infos, gs.info(gs.games[id]))
	}
	return infos
}

func (gs *Games) info(g *ludo.Game) GameInfo {
	info := GameInfo{
		ID:           g.ID,
		HostUserID:   g.HostUserID,
		Status:       g.Status(),
		Players:      g.Players(),
		ActivePlayer: g.ActivePlayerIndex(),
		DiceValue:    g.DiceValue(),
	}

	if i, ok := gs.invitations[g.ID]; ok {
		info.Pending = i.Pending()
	}

	return info
}
