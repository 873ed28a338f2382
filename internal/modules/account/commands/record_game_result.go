package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eskrenkovic/ludo-server/internal/modules/core"

	"github.com/eskrenkovic/tql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// RecordGameResultCommand credits a played game to every participant and a
// win to the winner.
type RecordGameResultCommand struct {
	PlayerIDs []uuid.UUID
	WinnerID  uuid.UUID
}

func (c RecordGameResultCommand) Validate() error {
	if len(c.PlayerIDs) == 0 {
		return fmt.Errorf("invalid PlayerIDs: no players")
	}

	if c.WinnerID == uuid.Nil {
		return fmt.Errorf("invalid WinnerID - '%s'", c.WinnerID)
	}

	return nil
}

type RecordGameResultCommandHandler struct {
	db *sqlx.DB
}

func NewRecordGameResultCommandHandler(db *sqlx.DB) *RecordGameResultCommandHandler {
	return &RecordGameResultCommandHandler{db}
}

func (h *RecordGameResultCommandHandler) Handle(
	ctx context.Context,
	request RecordGameResultCommand,
) (core.Unit, error) {
	txFn := func(ctx context.Context, tx *sql.Tx) error {
		const playedStmt = `
			UPDATE
				account.player
			SET
				games_played = games_played + 1
			WHERE
				id = ANY($1);`

		if _, err := tx.ExecContext(ctx, playedStmt, pq.Array(request.PlayerIDs)); err != nil {
			return err
		}

		const wonStmt = `
			UPDATE
				account.player
			SET
				games_won = games_won + 1
			WHERE
				id = $1;`

		_, err := tql.Exec(ctx, tx, wonStmt, request.WinnerID)
		return err
	}

	if err := core.Tx(ctx, h.db, txFn); err != nil {
		return core.Unit{}, core.NewCommandError(500, err)
	}

	return core.Unit{}, nil
}
