package commands

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

type LoginCommand struct {
	Username string
	Password string
}

func (c LoginCommand) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("invalid Username: '%s'", c.Username)
	}

	if c.Password == "" {
		return fmt.Errorf("invalid Password")
	}

	return nil
}

type LoginResponse struct {
	UserID      uuid.UUID
	DisplayName string
}

type LoginCommandHandler struct {
	db             *sqlx.DB
	passwordHasher *domain.PasswordHasher
}

func NewLoginCommandHandler(db *sqlx.DB, passwordHasher *domain.PasswordHasher) *LoginCommandHandler {
	return &LoginCommandHandler{db: db, passwordHasher: passwordHasher}
}

func (h *LoginCommandHandler) Handle(ctx context.Context, request LoginCommand) (LoginResponse, error) {
	const query = `
		SELECT
			id, username, password_hash, display_name, image_string, games_played, games_won
		FROM
			account.player
		WHERE
			username = $1;`

	account, err := tql.QueryFirst[domain.Account](ctx, h.db, query, request.Username)
	switch {
	case err != nil && errors.Is(err, sql.ErrNoRows):
		return LoginResponse{}, core.NewCommandError(401, "invalid credentials", core.WithReason(protocol.ReasonLoginFail))
	case err != nil:
		return LoginResponse{}, core.NewCommandError(500, err)
	}

	if err := account.Authenticate(request.Password, h.passwordHasher); err != nil {
		return LoginResponse{}, core.NewCommandError(401, "invalid credentials", core.WithReason(protocol.ReasonLoginFail))
	}

	return LoginResponse{UserID: account.ID, DisplayName: account.DisplayName}, nil
}
