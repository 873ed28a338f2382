package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/eskrenkovic/ludo-server/internal/modules/account/domain"
	"github.com/eskrenkovic/ludo-server/internal/modules/core"
	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"github.com/eskrenkovic/tql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type EditProfileCommand struct {
	UserID      uuid.UUID
	DisplayName string
	Password    string
	ImageString string
}

func (c EditProfileCommand) Validate() error {
	if c.UserID == uuid.Nil {
		return fmt.Errorf("invalid UserID - '%s'", c.UserID)
	}

	return nil
}

type EditProfileResponse struct {
	Reason      string
	Changed     bool
	DisplayName string
}

type EditProfileCommandHandler struct {
	db             *sqlx.DB
	passwordHasher *domain.PasswordHasher
}

func NewEditProfileCommandHandler(db *sqlx.DB, passwordHasher *domain.PasswordHasher) *EditProfileCommandHandler {
	return &EditProfileCommandHandler{db: db, passwordHasher: passwordHasher}
}

// Handle updates the display name and image unless another account already
// uses the requested name, and the password whenever one is given.
func (h *EditProfileCommandHandler) Handle(ctx context.Context, request EditProfileCommand) (EditProfileResponse, error) {
	const accountQuery = `
		SELECT
			id, username, password_hash, display_name, image_string, games_played, games_won
		FROM
			account.player
		WHERE
			id = $1;`

	account, err := tql.QueryFirst[domain.Account](ctx, h.db, accountQuery, request.UserID)
	switch {
	case err != nil && errors.Is(err, sql.ErrNoRows):
		return EditProfileResponse{}, core.NewCommandError(
			404,
			fmt.Sprintf("account '%s' not found", request.UserID),
			core.WithReason(protocol.ReasonEditProfileFail),
		)
	case err != nil:
		return EditProfileResponse{}, core.NewCommandError(500, err)
	}

	displayName := strings.TrimSpace(request.DisplayName)
	if displayName == "" {
		displayName = account.DisplayName
	}

	profileChanged := false
	passwordChanged := false

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		var taken int
		const takenQuery = `
			SELECT
				count(id)
			FROM
				account.player
			WHERE
				lower(display_name) = lower($1) AND id <> $2;`

		if err := tx.QueryRowContext(ctx, takenQuery, displayName, account.ID).Scan(&taken); err != nil {
			return err
		}

		if taken == 0 {
			const profileStmt = `
				UPDATE
					account.player
				SET
					display_name = $1, image_string = $2
				WHERE
					id = $3;`

			if _, err := tql.Exec(ctx, tx, profileStmt, displayName, request.ImageString, account.ID); err != nil {
				return err
			}
			profileChanged = true
		}

		if request.Password != "" {
			passwordHash, err := h.passwordHasher.HashPassword(request.Password)
			if err != nil {
				return err
			}

			const passwordStmt = `
				UPDATE
					account.player
				SET
					password_hash = $1
				WHERE
					id = $2;`

			if _, err := tql.Exec(ctx, tx, passwordStmt, passwordHash, account.ID); err != nil {
				return err
			}
			passwordChanged = true
		}

		return nil
	}

	if err := core.Tx(ctx, h.db, txFn); err != nil {
		return EditProfileResponse{}, core.NewCommandError(500, err)
	}

	switch {
	case profileChanged && passwordChanged:
		return EditProfileResponse{Reason: protocol.ReasonEditProfileOK, Changed: true, DisplayName: displayName}, nil
	case profileChanged:
		return EditProfileResponse{Reason: protocol.ReasonEditProfileNoPW, Changed: true, DisplayName: displayName}, nil
	case passwordChanged:
		return EditProfileResponse{Reason: protocol.ReasonEditProfileOnlyPW, Changed: true, DisplayName: account.DisplayName}, nil
	default:
		return EditProfileResponse{Reason: protocol.ReasonEditProfileFail, Changed: false, DisplayName: account.DisplayName}, nil
	}
}
