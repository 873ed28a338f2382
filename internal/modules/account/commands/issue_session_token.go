package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eskrenkovic/ludo-server/internal/modules/core"

	"github.com/eskrenkovic/tql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type IssueSessionTokenCommand struct {
	UserID uuid.UUID
}

func (c IssueSessionTokenCommand) Validate() error {
	if c.UserID == uuid.Nil {
		return fmt.Errorf("invalid UserID - '%s'", c.UserID)
	}

	return nil
}

type IssueSessionTokenResponse struct {
	Token uuid.UUID
}

type IssueSessionTokenCommandHandler struct {
	db *sqlx.DB
}

func NewIssueSessionTokenCommandHandler(db *sqlx.DB) *IssueSessionTokenCommandHandler {
	return &IssueSessionTokenCommandHandler{db}
}

// Handle terminates the user's open tokens and issues a fresh one.
func (h *IssueSessionTokenCommandHandler) Handle(
	ctx context.Context,
	request IssueSessionTokenCommand,
) (IssueSessionTokenResponse, error) {
	token := uuid.New()

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		const terminateStmt = `
			UPDATE
				account.session_token
			SET
				terminated_at = now()
			WHERE
				user_id = $1 AND terminated_at IS NULL;`

		if _, err := tql.Exec(ctx, tx, terminateStmt, request.UserID); err != nil {
			return err
		}

		const insertStmt = `
			INSERT INTO
				account.session_token (token, user_id)
			VALUES
				($1, $2);`

		_, err := tql.Exec(ctx, tx, insertStmt, token, request.UserID)
		return err
	}

	if err := core.Tx(ctx, h.db, txFn); err != nil {
		return IssueSessionTokenResponse{}, core.NewCommandError(500, err)
	}

	return IssueSessionTokenResponse{Token: token}, nil
}
