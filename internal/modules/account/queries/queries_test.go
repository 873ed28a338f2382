package queries

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/eskrenkovic/ludo-server/internal/modules/account/domain"
	"github.com/eskrenkovic/ludo-server/internal/modules/core"
	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"
	"github.com/eskrenkovic/ludo-server/internal/test"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	code := m.Run()

	if err := test.StopPostgres(); err != nil {
		log.Println(err)
	}

	os.Exit(code)
}

func insertPlayer(t *testing.T, db *sqlx.DB, displayName string, played, won int) uuid.UUID {
	t.Helper()

	const stmt = `
		INSERT INTO
			account.player (id, username, password_hash, display_name, games_played, games_won)
		VALUES
			($1, $2, 'unused', $2, $3, $4);`

	id := uuid.New()
	_, err := db.ExecContext(context.Background(), stmt, id, displayName, played, won)
	require.NoError(t, err)

	return id
}

func Test_GetProfile_Finds_By_Id_And_By_Display_Name(t *testing.T) {
	// Arrange
	db := test.Postgres(t)
	name := "profile-" + uuid.NewString()[:8]
	id := insertPlayer(t, db, name, 3, 1)

	handler := NewGetProfileQueryHandler(db)

	// Act
	byID, err := handler.Handle(context.Background(), GetProfileQuery{UserID: id})
	require.NoError(t, err)

	byName, err := handler.Handle(context.Background(), GetProfileQuery{DisplayName: "PROFILE-" + name[8:]})
	require.NoError(t, err)

	// Assert
	expected := domain.Profile{UserID: id, DisplayName: name, GamesPlayed: 3, GamesWon: 1}
	require.Equal(t, expected, byID)
	require.Equal(t, expected, byName)
}

func Test_GetProfile_Fails_For_Unknown_User(t *testing.T) {
	// Arrange
	db := test.Postgres(t)
	handler := NewGetProfileQueryHandler(db)

	// Act
	_, err := handler.Handle(context.Background(), GetProfileQuery{UserID: uuid.New()})

	// Assert
	require.Equal(t, protocol.ReasonViewProfileFail, core.ReasonOf(err, ""))
}

func Test_GetProfileQuery_Validate_Requires_Id_Or_Name(t *testing.T) {
	require.Error(t, GetProfileQuery{}.Validate())
	require.NoError(t, GetProfileQuery{DisplayName: "alice"}.Validate())
}

func Test_GetLeaderboard_Orders_By_Count_And_Caps_At_Ten(t *testing.T) {
	// Arrange
	db := test.Postgres(t)

	_, err := db.ExecContext(context.Background(), `DELETE FROM account.player;`)
	require.NoError(t, err)

	for i := 0; i < LeaderboardSize+2; i++ {
		insertPlayer(t, db, "player-"+uuid.NewString()[:8], i, i/2)
	}
	top := insertPlayer(t, db, "champion", 100, 50)

	handler := NewGetLeaderboardQueryHandler(db)

	// Act
	leaderboard, err := handler.Handle(context.Background(), GetLeaderboardQuery{})

	// Assert
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, top)
	require.Len(t, leaderboard.TopTenPlays, LeaderboardSize)
	require.Len(t, leaderboard.TopTenWins, LeaderboardSize)
	require.Equal(t, domain.LeaderboardEntry{DisplayName: "champion", Count: 100}, leaderboard.TopTenPlays[0])
	require.Equal(t, domain.LeaderboardEntry{DisplayName: "champion", Count: 50}, leaderboard.TopTenWins[0])

	for i := 1; i < len(leaderboard.TopTenPlays); i++ {
		require.GreaterOrEqual(t, leaderboard.TopTenPlays[i-1].Count, leaderboard.TopTenPlays[i].Count)
	}
}
