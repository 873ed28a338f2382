package ludo

import "fmt"

const (
	RingLength        = 52
	HomeStretchLength = 6
	FinishPosition    = RingLength - 1 + HomeStretchLength

	HomePosition    = 0
	StartPosition   = 1
	PiecesPerPlayer = 4
	MaxPlayers      = 4

	// LeaveHomeRoll is the only dice value that lets a piece leave home.
	LeaveHomeRoll = 6
)

type Color int

const (
	Red Color = iota
	Blue
	Yellow
	Green
)

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Blue:
		return "blue"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	default:
		return fmt.Sprintf("color(%d)", int(c))
	}
}

// EntryOffset is the ring cell a color's local position 0 lines up with.
func (c Color) EntryOffset() int {
	return int(c) * (RingLength / MaxPlayers)
}

// GlobalCell translates a local position onto the shared ring. Pieces at
// home, on the home stretch or finished are not on the ring.
func GlobalCell(c Color, local int) (int, bool) {
	if local < StartPosition || local >= RingLength {
		return 0, false
	}

	return (c.EntryOffset() + local) % RingLength, true
}
