package domain

import (
	"crypto/sha512"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_RegisterAccount_Uses_Username_As_Display_Name(t *testing.T) {
	// Arrange
	hasher := NewPasswordHasher(sha512.New)

	// Act
	account, err := RegisterAccount(" alice ", "secret", hasher)

	// Assert
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, account.ID)
	require.Equal(t, "alice", account.Username)
	require.Equal(t, "alice", account.DisplayName)
	require.NotEqual(t, "secret", account.PasswordHash)
	require.NoError(t, account.Authenticate("secret", hasher))
	require.Error(t, account.Authenticate("wrong", hasher))
}

func Test_RegisterAccount_Rejects_Blank_Username(t *testing.T) {
	_, err := RegisterAccount("  ", "secret", NewPasswordHasher(sha512.New))
	require.Error(t, err)
}

func Test_Profile_Copies_Public_Fields(t *testing.T) {
	account := Account{ID: uuid.New(), DisplayName: "alice", ImageString: "img", GamesPlayed: 3, GamesWon: 1}

	profile := account.Profile()

	require.Equal(t, Profile{
		UserID:      account.ID,
		DisplayName: "alice",
		ImageString: "img",
		GamesPlayed: 3,
		GamesWon:    1,
	}, profile)
}
