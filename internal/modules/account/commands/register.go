package commands

import (
	"context"
	"fmt"

	"github.com/eskrenkovic/ludo-server/internal/modules/account/domain"
	"github.com/eskrenkovic/ludo-server/internal/modules/core"
	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"github.com/eskrenkovic/tql"
	"github.com/jmoiron/sqlx"
)

type RegisterCommand struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c RegisterCommand) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("invalid Username: '%s'", c.Username)
	}

	if c.Password == "" {
		return fmt.Errorf("invalid Password")
	}

	return nil
}

type RegisterCommandHandler struct {
	db             *sqlx.DB
	passwordHasher *domain.PasswordHasher
}

func NewRegisterCommandHandler(db *sqlx.DB, passwordHasher *domain.PasswordHasher) *RegisterCommandHandler {
	return &RegisterCommandHandler{db: db, passwordHasher: passwordHasher}
}

func (h *RegisterCommandHandler) Handle(ctx context.Context, request RegisterCommand) (core.Unit, error) {
	var count int
	const existingAccountQuery = `
		SELECT
			count(id)
		FROM
			account.player
		WHERE
			lower(username) = lower($1) OR lower(display_name) = lower($1);`

	if err := h.db.GetContext(ctx, &count, existingAccountQuery, request.Username); err != nil {
		return core.Unit{}, core.NewCommandError(500, err)
	}

	if count > 0 {
		return core.Unit{}, core.NewCommandError(
			409,
			"username already taken",
			core.WithReason(protocol.ReasonRegisterFail),
		)
	}

	account, err := domain.RegisterAccount(request.Username, request.Password, h.passwordHasher)
	if err != nil {
		return core.Unit{}, core.NewCommandError(400, err, core.WithReason(protocol.ReasonRegisterFail))
	}

	const stmt = `
		INSERT INTO
			account.player (id, username, password_hash, display_name, image_string, games_played, games_won)
		VALUES
			(:id, :username, :password_hash, :display_name, :image_string, :games_played, :games_won);`

	if _, err := tql.Exec(ctx, h.db, stmt, account); err != nil {
		return core.Unit{}, core.NewCommandError(500, err)
	}

	return core.Unit{}, nil
}
