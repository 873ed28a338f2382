package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eskrenkovic/ludo-server/internal/modules/account/domain"
	"github.com/eskrenkovic/ludo-server/internal/modules/core"
	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"github.com/eskrenkovic/tql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// GetProfileQuery looks a profile up by id, or by display name when no id is
// given.
type GetProfileQuery struct {
	UserID      uuid.UUID
	DisplayName string
}

func (q GetProfileQuery) Validate() error {
	if q.UserID == uuid.Nil && q.DisplayName == "" {
		return fmt.Errorf("either UserID or DisplayName is required")
	}

	return nil
}

type GetProfileQueryHandler struct {
	db *sqlx.DB
}

func NewGetProfileQueryHandler(db *sqlx.DB) *GetProfileQueryHandler {
	return &GetProfileQueryHandler{db}
}

func (h *GetProfileQueryHandler) Handle(ctx context.Context, request GetProfileQuery) (domain.Profile, error) {
	var (
		profile domain.Profile
		err     error
	)

	if request.UserID != uuid.Nil {
		const query = `
			SELECT
				id, display_name, image_string, games_played, games_won
			FROM
				account.player
			WHERE
				id = $1;`
		profile, err = tql.QueryFirst[domain.Profile](ctx, h.db, query, request.UserID)
	} else {
		const query = `
			SELECT
				id, display_name, image_string, games_played, games_won
			FROM
				account.player
			WHERE
				lower(display_name) = lower($1);`
		profile, err = tql.QueryFirst[domain.Profile](ctx, h.db, query, request.DisplayName)
	}

	switch {
	case err != nil && errors.Is(err, sql.ErrNoRows):
		return domain.Profile{}, core.NewCommandError(
			404,
			"profile not found",
			core.WithReason(protocol.ReasonViewProfileFail),
		)
	case err != nil:
		return domain.Profile{}, core.NewCommandError(500, err)
	}

	return profile, nil
}
