package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eskrenkovic/ludo-server/internal/modules/core"
	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"github.com/eskrenkovic/tql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type LoginWithTokenCommand struct {
	Token string
}

func (c LoginWithTokenCommand) Validate() error {
	if _, err := uuid.Parse(c.Token); err != nil {
		return fmt.Errorf("invalid Token: %w", err)
	}

	return nil
}

type LoginWithTokenCommandHandler struct {
	db *sqlx.DB
}

func NewLoginWithTokenCommandHandler(db *sqlx.DB) *LoginWithTokenCommandHandler {
	return &LoginWithTokenCommandHandler{db}
}

func (h *LoginWithTokenCommandHandler) Handle(
	ctx context.Context,
	request LoginWithTokenCommand,
) (LoginResponse, error) {
	type tokenOwner struct {
		ID          uuid.UUID `db:"id"`
		DisplayName string    `db:"display_name"`
	}

	const query = `
		SELECT
			p.id, p.display_name
		FROM
			account.session_token t
		JOIN
			account.player p ON p.id = t.user_id
		WHERE
			t.token = $1 AND t.terminated_at IS NULL;`

	owner, err := tql.QueryFirst[tokenOwner](ctx, h.db, query, request.Token)
	switch {
	case err != nil && errors.Is(err, sql.ErrNoRows):
		return LoginResponse{}, core.NewCommandError(401, "unknown session token", core.WithReason(protocol.ReasonInvalidToken))
	case err != nil:
		return LoginResponse{}, core.NewCommandError(500, err)
	}

	return LoginResponse{UserID: owner.ID, DisplayName: owner.DisplayName}, nil
}
