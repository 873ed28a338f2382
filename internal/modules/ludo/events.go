package ludo

type DiceRolled struct {
	GameID      string
	PlayerIndex int
	UserID      string
	Value       int
}

// Capture describes an opposing piece sent home by a move.
type Capture struct {
	PlayerIndex int
	UserID      string
	PieceIndex  int
	From        int
}

// PieceMoved fires once per successful move. A capture is reported on the
// mover's event; the captured player gets no event of their own.
type PieceMoved struct {
	GameID      string
	PlayerIndex int
	UserID      string
	PieceIndex  int
	From        int
	To          int
	Captured    *Capture
}

type PlayerStateChanged struct {
	GameID      string
	PlayerIndex int
	UserID      string
	State       PlayerState
}
