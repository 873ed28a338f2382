package ludo

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrGameFull          = errors.New("game already has four players")
	ErrGameNotInitiated  = errors.New("game is no longer accepting players")
	ErrGameNotStarted    = errors.New("game has not started")
	ErrNotEnoughPlayers  = errors.New("game needs at least two players")
	ErrPlayerExists      = errors.New("player already in game")
	ErrPlayerNotFound    = errors.New("player not found in game")
	ErrNotYourTurn       = errors.New("not the player's turn")
	ErrDiceAlreadyRolled = errors.New("dice already rolled this turn")
)

type Status int

const (
	Initiated Status = iota
	Started
	Finished
)

func (s Status) String() string {
	switch s {
	case Initiated:
		return "INITIATED"
	case Started:
		return "STARTED"
	case Finished:
		return "FINISHED"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

type PlayerState int

const (
	Waiting PlayerState = iota
	Playing
	Won
	LeftGame
)

func (s PlayerState) String() string {
	switch s {
	case Waiting:
		return "WAITING"
	case Playing:
		return "PLAYING"
	case Won:
		return "WON"
	case LeftGame:
		return "LEFTGAME"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal states never get a turn again.
func (s PlayerState) Terminal() bool {
	return s == Won || s == LeftGame
}

type Player struct {
	UserID      string
	DisplayName string
	Color       Color
	Pieces      [PiecesPerPlayer]int
	State       PlayerState
}

func (p Player) finishedPieces() int {
	count := 0
	for _, pos := range p.Pieces {
		if pos == FinishPosition {
			count++
		}
	}
	return count
}

// Game is a single Ludo match. It is not safe for concurrent use; callers
// serialize access to it.
type Game struct {
	ID         string
	HostUserID string

	players []*Player
	status  Status
	active  int
	dice    int

	roll func() int

	diceRolledListeners   []func(DiceRolled)
	pieceMovedListeners   []func(PieceMoved)
	stateChangedListeners []func(PlayerStateChanged)
}

type Option func(*Game)

// WithDice replaces the random roller. Values outside 1..6 are clamped.
func WithDice(roll func() int) Option {
	return func(g *Game) {
		g.roll = roll
	}
}

func NewGame(id, hostUserID, hostDisplayName string, opts ...Option) *Game {
	g := &Game{
		ID:         id,
		HostUserID: hostUserID,
		roll:       func() int { return rand.Intn(6) + 1 },
	}

	for _, opt := range opts {
		opt(g)
	}

	g.players = append(g.players, &Player{
		UserID:      hostUserID,
		DisplayName: hostDisplayName,
		Color:       Red,
		State:       Waiting,
	})

	return g
}

func (g *Game) Status() Status {
	return g.status
}

func (g *Game) DiceValue() int {
	return g.dice
}

func (g *Game) ActivePlayerIndex() int {
	return g.active
}

// Players returns copies of every player slot, including those who left.
func (g *Game) Players() []Player {
	players := make([]Player, 0, len(g.players))
	for _, p := range g.players {
		players = append(players, *p)
	}
	return players
}

func (g *Game) Player(index int) (Player, bool) {
	if index < 0 || index >= len(g.players) {
		return Player{}, false
	}
	return *g.players[index], true
}

func (g *Game) PlayerIndex(userID string) (int, bool) {
	for i, p := range g.players {
		if p.UserID == userID {
			return i, true
		}
	}
	return 0, false
}

// HasActivePlayer reports whether the user holds a slot they have not left.
func (g *Game) HasActivePlayer(userID string) bool {
	i, ok := g.PlayerIndex(userID)
	return ok && g.players[i].State != LeftGame
}

// ActivePlayerCount counts players that have not left the game.
func (g *Game) ActivePlayerCount() int {
	count := 0
	for _, p := range g.players {
		if p.State != LeftGame {
			count++
		}
	}
	return count
}

func (g *Game) ActiveUserIDs() []string {
	ids := make([]string, 0, len(g.players))
	for _, p := range g.players {
		if p.State != LeftGame {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}

func (g *Game) ActiveDisplayNames() []string {
	names := make([]string, 0, len(g.players))
	for _, p := range g.players {
		if p.State != LeftGame {
			names = append(names, p.DisplayName)
		}
	}
	return names
}

func (g *Game) OnDiceRolled(l func(DiceRolled)) {
	g.diceRolledListeners = append(g.diceRolledListeners, l)
}

func (g *Game) OnPieceMoved(l func(PieceMoved)) {
	g.pieceMovedListeners = append(g.pieceMovedListeners, l)
}

func (g *Game) OnPlayerStateChanged(l func(PlayerStateChanged)) {
	g.stateChangedListeners = append(g.stateChangedListeners, l)
}

func (g *Game) AddPlayer(userID, displayName string) (int, error) {
	if g.status != Initiated {
		return 0, ErrGameNotInitiated
	}

	if _, ok := g.PlayerIndex(userID); ok {
		return 0, ErrPlayerExists
	}

	if len(g.players) >= MaxPlayers {
		return 0, ErrGameFull
	}

	index := len(g.players)
	g.players = append(g.players, &Player{
		UserID:      userID,
		DisplayName: displayName,
		Color:       Color(index),
		State:       Waiting,
	})

	return index, nil
}

// RenamePlayer updates the display name shown for the user's seat.
func (g *Game) RenamePlayer(userID, displayName string) bool {
	index, ok := g.PlayerIndex(userID)
	if !ok {
		return false
	}

	g.players[index].DisplayName = displayName
	return true
}

func (g *Game) Start() error {
	if g.status != Initiated {
		return ErrGameNotInitiated
	}

	if g.ActivePlayerCount() < 2 {
		return ErrNotEnoughPlayers
	}

	g.status = Started
	g.active = -1
	g.advanceTurn()

	return nil
}

// RemovePlayer marks the player as having left. Their slot keeps its index so
// the other colors do not shift.
func (g *Game) RemovePlayer(userID string) error {
	index, ok := g.PlayerIndex(userID)
	if !ok {
		return ErrPlayerNotFound
	}

	p := g.players[index]
	if p.State == LeftGame {
		return nil
	}

	wasActive := g.status == Started && index == g.active
	g.setState(index, LeftGame)

	if g.status != Started {
		return nil
	}

	if g.remainingContenders() < 2 {
		g.status = Finished
		g.dice = 0
		return nil
	}

	if wasActive {
		g.dice = 0
		g.advanceTurn()
	}

	return nil
}

// ThrowDice rolls for the active player. When the roll leaves no legal move
// the turn passes, except on a six which gives the player another roll.
func (g *Game) ThrowDice(playerIndex int) (int, error) {
	if g.status != Started {
		return 0, ErrGameNotStarted
	}

	if playerIndex != g.active {
		return 0, ErrNotYourTurn
	}

	if g.dice != 0 {
		return 0, ErrDiceAlreadyRolled
	}

	value := g.roll()
	if value < 1 {
		value = 1
	}
	if value > 6 {
		value = 6
	}

	g.dice = value

	p := g.players[playerIndex]
	for _, l := range g.diceRolledListeners {
		l(DiceRolled{GameID: g.ID, PlayerIndex: playerIndex, UserID: p.UserID, Value: value})
	}

	if !g.hasLegalMove(playerIndex) {
		g.dice = 0
		if value != LeaveHomeRoll {
			g.advanceTurn()
		}
	}

	return value, nil
}

// MovePiece moves one piece of the active player from a local position to
// another. It reports false, emitting nothing, when the move is not legal.
func (g *Game) MovePiece(playerIndex, from, to int) bool {
	if !g.legalMove(playerIndex, from, to) {
		return false
	}

	p := g.players[playerIndex]

	pieceIndex := -1
	for i, pos := range p.Pieces {
		if pos == from {
			pieceIndex = i
			break
		}
	}

	p.Pieces[pieceIndex] = to
	dice := g.dice
	g.dice = 0

	event := PieceMoved{
		GameID:      g.ID,
		PlayerIndex: playerIndex,
		UserID:      p.UserID,
		PieceIndex:  pieceIndex,
		From:        from,
		To:          to,
		Captured:    g.capture(playerIndex, to),
	}

	for _, l := range g.pieceMovedListeners {
		l(event)
	}

	if p.finishedPieces() == PiecesPerPlayer {
		g.setState(playerIndex, Won)
		g.status = Finished
		return true
	}

	if dice == LeaveHomeRoll && from != HomePosition {
		return true
	}

	g.advanceTurn()

	return true
}

func (g *Game) legalMove(playerIndex, from, to int) bool {
	if g.status != Started || playerIndex != g.active || g.dice == 0 {
		return false
	}

	p := g.players[playerIndex]

	if from < HomePosition || from >= FinishPosition || to > FinishPosition {
		return false
	}

	hasPiece := false
	for _, pos := range p.Pieces {
		if pos == from {
			hasPiece = true
			break
		}
	}
	if !hasPiece {
		return false
	}

	if from == HomePosition {
		if g.dice != LeaveHomeRoll || to != StartPosition {
			return false
		}
	} else if to != from+g.dice {
		return false
	}

	return !g.blocked(playerIndex, to)
}

// blocked reports whether two or more of the player's own pieces already sit
// on the destination.
func (g *Game) blocked(playerIndex, to int) bool {
	if to == FinishPosition {
		return false
	}

	count := 0
	for _, pos := range g.players[playerIndex].Pieces {
		if pos == to {
			count++
		}
	}
	return count >= 2
}

func (g *Game) hasLegalMove(playerIndex int) bool {
	for _, from := range g.players[playerIndex].Pieces {
		to := from + g.dice
		if from == HomePosition {
			to = StartPosition
		}
		if g.legalMove(playerIndex, from, to) {
			return true
		}
	}
	return false
}

// capture sends a lone opposing piece on the destination cell back home.
func (g *Game) capture(playerIndex, to int) *Capture {
	mover := g.players[playerIndex]

	cell, onRing := GlobalCell(mover.Color, to)
	if !onRing {
		return nil
	}

	var (
		victim      *Player
		victimIndex int
		pieceIndex  int
		occupants   int
	)

	for i, p := range g.players {
		if i == playerIndex || p.State == LeftGame {
			continue
		}

		for j, pos := range p.Pieces {
			if other, ok := GlobalCell(p.Color, pos); ok && other == cell {
				occupants++
				victim, victimIndex, pieceIndex = p, i, j
			}
		}
	}

	if occupants != 1 {
		return nil
	}

	captured := &Capture{
		PlayerIndex: victimIndex,
		UserID:      victim.UserID,
		PieceIndex:  pieceIndex,
		From:        victim.Pieces[pieceIndex],
	}
	victim.Pieces[pieceIndex] = HomePosition

	return captured
}

func (g *Game) remainingContenders() int {
	count := 0
	for _, p := range g.players {
		if !p.State.Terminal() {
			count++
		}
	}
	return count
}

// advanceTurn hands the turn to the next non-terminal player in index order.
func (g *Game) advanceTurn() {
	n := len(g.players)

	if g.active >= 0 && g.active < n && g.players[g.active].State == Playing {
		g.setState(g.active, Waiting)
	}

	for step := 1; step <= n; step++ {
		next := (g.active + step + n) % n
		if !g.players[next].State.Terminal() {
			g.active = next
			g.setState(next, Playing)
			return
		}
	}
}

func (g *Game) setState(index int, state PlayerState) {
	p := g.players[index]
	if p.State == state {
		return
	}

	p.State = state

	for _, l := range g.stateChangedListeners {
		l(PlayerStateChanged{GameID: g.ID, PlayerIndex: index, UserID: p.UserID, State: state})
	}
}
