package queries

import (
	"context"
	"net/http"

	"github.com/eskrenkovic/ludo-server/internal/modules/account/domain"
	"github.com/eskrenkovic/ludo-server/internal/modules/core"

	"github.com/eskrenkovic/mediator-go"
	"github.com/jmoiron/sqlx"
)

const LeaderboardSize = 10

type GetLeaderboardQuery struct{}

func (q GetLeaderboardQuery) Validate() error {
	return nil
}

func HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[GetLeaderboardQuery, domain.Leaderboard](r.Context(), GetLeaderboardQuery{})
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetLeaderboardQueryHandler struct {
	db *sqlx.DB
}

func NewGetLeaderboardQueryHandler(db *sqlx.DB) *GetLeaderboardQueryHandler {
	return &GetLeaderboardQueryHandler{db}
}

func (h *GetLeaderboardQueryHandler) Handle(ctx context.Context, _ GetLeaderboardQuery) (domain.Leaderboard, error) {
	const playsQuery = `
		SELECT
			display_name, games_played AS count
		FROM
			account.player
		ORDER BY
			games_played DESC, display_name ASC
		LIMIT $1;`

	leaderboard := domain.Leaderboard{
		TopTenPlays: []domain.LeaderboardEntry{},
		TopTenWins:  []domain.LeaderboardEntry{},
	}

	if err := h.db.SelectContext(ctx, &leaderboard.TopTenPlays, playsQuery, LeaderboardSize); err != nil {
		return domain.Leaderboard{}, core.NewCommandError(500, err)
	}

	const winsQuery = `
		SELECT
			display_name, games_won AS count
		FROM
			account.player
		ORDER BY
			games_won DESC, display_name ASC
		LIMIT $1;`

	if err := h.db.SelectContext(ctx, &leaderboard.TopTenWins, winsQuery, LeaderboardSize); err != nil {
		return domain.Leaderboard{}, core.NewCommandError(500, err)
	}

	return leaderboard, nil
}
