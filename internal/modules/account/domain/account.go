package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID           uuid.UUID `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	DisplayName  string    `db:"display_name"`
	ImageString  string    `db:"image_string"`
	GamesPlayed  int       `db:"games_played"`
	GamesWon     int       `db:"games_won"`
}

// RegisterAccount creates a new account. The display name starts out as the
// username.
func RegisterAccount(username, password string, passwordHasher *PasswordHasher) (Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Account{}, fmt.Errorf("username is empty")
	}

	passwordHash, err := passwordHasher.HashPassword(password)
	if err != nil {
		return Account{}, err
	}

	return Account{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		DisplayName:  username,
	}, nil
}

func (a Account) Authenticate(password string, passwordHasher *PasswordHasher) error {
	if err := passwordHasher.Verify(a.PasswordHash, password); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	return nil
}

func (a Account) Profile() Profile {
	return Profile{
		UserID:      a.ID,
		DisplayName: a.DisplayName,
		ImageString: a.ImageString,
		GamesPlayed: a.GamesPlayed,
		GamesWon:    a.GamesWon,
	}
}

type Profile struct {
	UserID      uuid.UUID `db:"id"`
	DisplayName string    `db:"display_name"`
	ImageString string    `db:"image_string"`
	GamesPlayed int       `db:"games_played"`
	GamesWon    int       `db:"games_won"`
}

// SessionToken lets a client log back in without a password. Issuing a new
// token terminates the user's previous ones.
type SessionToken struct {
	Token        uuid.UUID  `db:"token"`
	UserID       uuid.UUID  `db:"user_id"`
	CreatedAt    time.Time  `db:"created_at"`
	TerminatedAt *time.Time `db:"terminated_at"`
}

type LeaderboardEntry struct {
	DisplayName string `db:"display_name" json:"display_name"`
	Count       int    `db:"count" json:"count"`
}

type Leaderboard struct {
	TopTenPlays []LeaderboardEntry `json:"top_ten_plays"`
	TopTenWins  []LeaderboardEntry `json:"top_ten_wins"`
}
