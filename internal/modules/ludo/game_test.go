package ludo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fixedDice returns the given values in order and then keeps repeating the last one.
func fixedDice(values ...int) func() int {
	i := 0
	return func() int {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}

func startedGame(t *testing.T, players int, dice func() int) *Game {
	t.Helper()

	g := NewGame("game-1", "user-0", "host", WithDice(dice))
	for i := 1; i < players; i++ {
		_, err := g.AddPlayer(userID(i), displayName(i))
		require.NoError(t, err)
	}

	require.NoError(t, g.Start())
	return g
}

func userID(i int) string {
	return []string{"user-0", "user-1", "user-2", "user-3"}[i]
}

func displayName(i int) string {
	return []string{"host", "blue", "yellow", "green"}[i]
}

func Test_GlobalCell_Translates_Local_Positions_Onto_Ring(t *testing.T) {
	tests := []struct {
		name   string
		color  Color
		local  int
		cell   int
		onRing bool
	}{
		{"home is off ring", Red, HomePosition, 0, false},
		{"red start", Red, 1, 1, true},
		{"blue start", Blue, 1, 14, true},
		{"green wraps", Green, 20, 7, true},
		{"last ring cell", Yellow, 51, 25, true},
		{"home stretch is off ring", Blue, 52, 0, false},
		{"finished is off ring", Red, FinishPosition, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell, onRing := GlobalCell(tt.color, tt.local)

			require.Equal(t, tt.onRing, onRing)
			if tt.onRing {
				require.Equal(t, tt.cell, cell)
			}
		})
	}
}

func Test_FinishPosition_Is_Ring_Plus_Home_Stretch(t *testing.T) {
	require.Equal(t, 57, FinishPosition)
}

func Test_AddPlayer_Rejects_Fifth_Player(t *testing.T) {
	// Arrange
	g := NewGame("game-1", "user-0", "host")
	for i := 1; i < MaxPlayers; i++ {
		_, err := g.AddPlayer(userID(i), displayName(i))
		require.NoError(t, err)
	}

	// Act
	_, err := g.AddPlayer("user-4", "late")

	// Assert
	require.ErrorIs(t, err, ErrGameFull)
}

func Test_AddPlayer_Rejects_Player_After_Start(t *testing.T) {
	// Arrange
	g := startedGame(t, 2, fixedDice(1))

	// Act
	_, err := g.AddPlayer("user-9", "late")

	// Assert
	require.ErrorIs(t, err, ErrGameNotInitiated)
}

func Test_Start_Makes_First_Player_Active(t *testing.T) {
	// Arrange
	g := NewGame("game-1", "user-0", "host")
	_, err := g.AddPlayer("user-1", "blue")
	require.NoError(t, err)

	// Act
	err = g.Start()

	// Assert
	require.NoError(t, err)
	require.Equal(t, Started, g.Status())
	require.Equal(t, 0, g.ActivePlayerIndex())

	host, _ := g.Player(0)
	require.Equal(t, Playing, host.State)

	other, _ := g.Player(1)
	require.Equal(t, Waiting, other.State)
}

func Test_Start_Requires_Two_Players(t *testing.T) {
	g := NewGame("game-1", "user-0", "host")
	require.ErrorIs(t, g.Start(), ErrNotEnoughPlayers)
}

func Test_ThrowDice_Emits_Event_To_Every_Listener(t *testing.T) {
	// Arrange
	g := startedGame(t, 2, fixedDice(6))

	var first, second []DiceRolled
	g.OnDiceRolled(func(e DiceRolled) { first = append(first, e) })
	g.OnDiceRolled(func(e DiceRolled) { second = append(second, e) })

	// Act
	value, err := g.ThrowDice(0)

	// Assert
	require.NoError(t, err)
	require.Equal(t, 6, value)

	expected := DiceRolled{GameID: "game-1", PlayerIndex: 0, UserID: "user-0", Value: 6}
	require.Equal(t, []DiceRolled{expected}, first)
	require.Equal(t, []DiceRolled{expected}, second)
}

func Test_ThrowDice_Rejects_Player_Out_Of_Turn(t *testing.T) {
	g := startedGame(t, 2, fixedDice(3))

	_, err := g.ThrowDice(1)

	require.ErrorIs(t, err, ErrNotYourTurn)
}

func Test_ThrowDice_Passes_Turn_When_No_Piece_Can_Leave_Home(t *testing.T) {
	// Arrange
	g := startedGame(t, 2, fixedDice(3))

	// Act
	_, err := g.ThrowDice(0)

	// Assert
	require.NoError(t, err)
	require.Equal(t, 1, g.ActivePlayerIndex())
	require.Zero(t, g.DiceValue())
}

func Test_ThrowDice_Six_Without_Legal_Move_Keeps_Turn(t *testing.T) {
	// Arrange
	g := startedGame(t, 2, fixedDice(6))
	g.players[0].Pieces = [PiecesPerPlayer]int{FinishPosition, FinishPosition, FinishPosition, 55}

	// Act
	_, err := g.ThrowDice(0)

	// Assert
	require.NoError(t, err)
	require.Equal(t, 0, g.ActivePlayerIndex())
	require.Zero(t, g.DiceValue())
}

func Test_ThrowDice_Rejects_Second_Roll_Before_Move(t *testing.T) {
	// Arrange
	g := startedGame(t, 2, fixedDice(6))
	_, err := g.ThrowDice(0)
	require.NoError(t, err)

	// Act
	_, err = g.ThrowDice(0)

	// Assert
	require.ErrorIs(t, err, ErrDiceAlreadyRolled)
}

func Test_MovePiece_Leaving_Home_Requires_Six(t *testing.T) {
	// Arrange
	g := startedGame(t, 2, fixedDice(5))
	g.players[0].Pieces[0] = 10

	_, err := g.ThrowDice(0)
	require.NoError(t, err)

	var moved []PieceMoved
	g.OnPieceMoved(func(e PieceMoved) { moved = append(moved, e) })

	// Act
	ok := g.MovePiece(0, HomePosition, StartPosition)

	// Assert
	require.False(t, ok)
	require.Empty(t, moved)
	require.Equal(t, 5, g.DiceValue())
}

func Test_MovePiece_Leaving_Home_With_Six_Passes_Turn(t *testing.T) {
	// Arrange
	g := startedGame(t, 2, fixedDice(6))

	_, err := g.ThrowDice(0)
	require.NoError(t, err)

	var moved []PieceMoved
	g.OnPieceMoved(func(e PieceMoved) { moved = append(moved, e) })

	// Act
	ok := g.MovePiece(0, HomePosition, StartPosition)

	// Assert
	require.True(t, ok)
	require.Len(t, moved, 1)
	require.Equal(t, PieceMoved{
		GameID:      "game-1",
		PlayerIndex: 0,
		UserID:      "user-0",
		PieceIndex:  0,
		From:        HomePosition,
		To:          StartPosition,
	}, moved[0])
	require.Equal(t, 1, g.ActivePlayerIndex())
}

func Test_MovePiece_Six_On_Board_Grants_Another_Roll(t *testing.T) {
	// Arrange
	g := startedGame(t, 2, fixedDice(6))
	g.players[0].Pieces[0] = 10

	_, err := g.ThrowDice(0)
	require.NoError(t, err)

	// Act
	ok := g.MovePiece(0, 10, 16)

	// Assert
	require.True(t, ok)
	require.Equal(t, 0, g.ActivePlayerIndex())

	_, err = g.ThrowDice(0)
	require.NoError(t, err)
}

func Test_MovePiece_Retry_Of_Same_Move_Fails(t *testing.T) {
	// Arrange
	g := startedGame(t, 2, fixedDice(4))
	g.players[0].Pieces[0] = 10

	_, err := g.ThrowDice(0)
	require.NoError(t, err)
	require.True(t, g.MovePiece(0, 10, 14))

	var moved []PieceMoved
	g.OnPieceMoved(func(e PieceMoved) { moved = append(moved, e) })

	// Act
	ok := g.MovePiece(0, 10, 14)

	// Assert
	require.False(t, ok)
	require.Empty(t, moved)
}

func Test_MovePiece_Rejects_Wrong_Distance(t *testing.T) {
	g := startedGame(t, 2, fixedDice(4))
	g.players[0].Pieces[0] = 10

	_, err := g.ThrowDice(0)
	require.NoError(t, err)

	require.False(t, g.MovePiece(0, 10, 15))
}

func Test_MovePiece_Rejects_Overshooting_Finish(t *testing.T) {
	// Arrange
	g := startedGame(t, 2, fixedDice(5))
	g.players[0].Pieces = [PiecesPerPlayer]int{55, 20, HomePosition, HomePosition}

	_, err := g.ThrowDice(0)
	require.NoError(t, err)

	// Act
	ok := g.MovePiece(0, 55, 60)

	// Assert
	require.False(t, ok)
}

func Test_MovePiece_Rejects_Landing_On_Own_Blockade(t *testing.T) {
	// Arrange
	g := startedGame(t, 2, fixedDice(3))
	g.players[0].Pieces = [PiecesPerPlayer]int{10, 13, 13, HomePosition}

	_, err := g.ThrowDice(0)
	require.NoError(t, err)

	// Act
	ok := g.MovePiece(0, 10, 13)

	// Assert
	require.False(t, ok)
}

func Test_MovePiece_Captures_Lone_Opposing_Piece(t *testing.T) {
	// Arrange
	g := startedGame(t, 2, fixedDice(5))

	// Blue local 7 sits on global cell 20.
	g.players[1].Pieces[0] = 7
	g.players[0].Pieces[0] = 15

	cell, _ := GlobalCell(Blue, 7)
	require.Equal(t, 20, cell)

	_, err := g.ThrowDice(0)
	require.NoError(t, err)

	var moved []PieceMoved
	g.OnPieceMoved(func(e PieceMoved) { moved = append(moved, e) })

	// Act
	ok := g.MovePiece(0, 15, 20)

	// Assert
	require.True(t, ok)

	blue, _ := g.Player(1)
	require.Equal(t, HomePosition, blue.Pieces[0])

	red, _ := g.Player(0)
	require.Equal(t, 20, red.Pieces[0])

	require.Len(t, moved, 1)
	require.Equal(t, "user-0", moved[0].UserID)
	require.NotNil(t, moved[0].Captured)
	require.Equal(t, Capture{PlayerIndex: 1, UserID: "user-1", PieceIndex: 0, From: 7}, *moved[0].Captured)
}

func Test_MovePiece_Does_Not_Capture_Opposing_Pair(t *testing.T) {
	// Arrange
	g := startedGame(t, 2, fixedDice(5))
	g.players[1].Pieces[0] = 7
	g.players[1].Pieces[1] = 7
	g.players[0].Pieces[0] = 15

	_, err := g.ThrowDice(0)
	require.NoError(t, err)

	// Act
	ok := g.MovePiece(0, 15, 20)

	// Assert
	require.True(t, ok)

	blue, _ := g.Player(1)
	require.Equal(t, 7, blue.Pieces[0])
	require.Equal(t, 7, blue.Pieces[1])
}

func Test_MovePiece_Last_Piece_Home_Wins_Game(t *testing.T) {
	// Arrange
	g := startedGame(t, 2, fixedDice(2))
	g.players[0].Pieces = [PiecesPerPlayer]int{FinishPosition, FinishPosition, FinishPosition, 55}

	_, err := g.ThrowDice(0)
	require.NoError(t, err)

	var changes []PlayerStateChanged
	g.OnPlayerStateChanged(func(e PlayerStateChanged) { changes = append(changes, e) })

	// Act
	ok := g.MovePiece(0, 55, FinishPosition)

	// Assert
	require.True(t, ok)
	require.Equal(t, Finished, g.Status())

	host, _ := g.Player(0)
	require.Equal(t, Won, host.State)
	require.Contains(t, changes, PlayerStateChanged{GameID: "game-1", PlayerIndex: 0, UserID: "user-0", State: Won})

	_, err = g.ThrowDice(1)
	require.ErrorIs(t, err, ErrGameNotStarted)
}

func Test_Turn_Skips_Players_Who_Left(t *testing.T) {
	// Arrange
	g := startedGame(t, 4, fixedDice(3))
	require.NoError(t, g.RemovePlayer("user-1"))

	// Act
	_, err := g.ThrowDice(0)

	// Assert
	require.NoError(t, err)
	require.Equal(t, 2, g.ActivePlayerIndex())
}

func Test_RemovePlayer_Active_Player_Advances_Turn(t *testing.T) {
	// Arrange
	g := startedGame(t, 3, fixedDice(6))
	_, err := g.ThrowDice(0)
	require.NoError(t, err)

	// Act
	err = g.RemovePlayer("user-0")

	// Assert
	require.NoError(t, err)
	require.Equal(t, 1, g.ActivePlayerIndex())
	require.Zero(t, g.DiceValue())
	require.Equal(t, 2, g.ActivePlayerCount())

	host, _ := g.Player(0)
	require.Equal(t, LeftGame, host.State)
}

func Test_RemovePlayer_Keeps_Indices_Stable(t *testing.T) {
	// Arrange
	g := startedGame(t, 4, fixedDice(1))

	// Act
	require.NoError(t, g.RemovePlayer("user-1"))

	// Assert
	players := g.Players()
	require.Len(t, players, 4)
	require.Equal(t, Yellow, players[2].Color)
	require.Equal(t, []string{"user-0", "user-2", "user-3"}, g.ActiveUserIDs())
}

func Test_RemovePlayer_Unknown_User(t *testing.T) {
	g := startedGame(t, 2, fixedDice(1))
	require.ErrorIs(t, g.RemovePlayer("nobody"), ErrPlayerNotFound)
}

func Test_RenamePlayer_Updates_Seat(t *testing.T) {
	// Arrange
	g := NewGame("game-1", "user-0", "host")
	_, err := g.AddPlayer("user-1", "bob")
	require.NoError(t, err)

	// Act
	renamed := g.RenamePlayer("user-1", "robert")

	// Assert
	require.True(t, renamed)
	require.Equal(t, []string{"host", "robert"}, g.ActiveDisplayNames())
	require.False(t, g.RenamePlayer("user-9", "ghost"))
}
