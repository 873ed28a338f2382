package chat

import (
	"context"
	"strings"
	"time"

	"github.com/eskrenkovic/tql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Message struct {
	ID          int64     `db:"id"`
	RoomName    string    `db:"room_name"`
	UserID      uuid.UUID `db:"user_id"`
	DisplayName string    `db:"display_name"`
	Body        string    `db:"body"`
	SentAt      time.Time `db:"sent_at"`
}

// Store persists rooms and their messages.
type Store interface {
	SaveRoom(ctx context.Context, name string) error
	RemoveRoom(ctx context.Context, name string) error
	SaveMessage(ctx context.Context, m Message) error
	RecentMessages(ctx context.Context, roomName string, limit int) ([]Message, error)
}

var _ Store = (*Repository)(nil)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db}
}

func (r *Repository) SaveRoom(ctx context.Context, name string) error {
	const stmt = `
		INSERT INTO chat.room (name, name_key)
		VALUES ($1, $2)
		ON CONFLICT (name_key) DO NOTHING;`

	_, err := tql.Exec(ctx, r.db, stmt, name, strings.ToLower(name))
	return err
}

func (r *Repository) RemoveRoom(ctx context.Context, name string) error {
	const stmt = `
		DELETE FROM chat.room
		WHERE name_key = $1;`

	_, err := tql.Exec(ctx, r.db, stmt, strings.ToLower(name))
	return err
}

func (r *Repository) SaveMessage(ctx context.Context, m Message) error {
	const stmt = `
		INSERT INTO
			chat.message (room_name, user_id, display_name, body, sent_at)
		VALUES
			(:room_name, :user_id, :display_name, :body, :sent_at);`

	m.RoomName = strings.ToLower(m.RoomName)
	_, err := r.db.NamedExecContext(ctx, stmt, m)
	return err
}

// RecentMessages returns up to limit of the room's newest messages, oldest
// first.
func (r *Repository) RecentMessages(ctx context.Context, roomName string, limit int) ([]Message, error) {
	const query = `
		SELECT id, room_name, user_id, display_name, body, sent_at
		FROM (
			SELECT id, room_name, user_id, display_name, body, sent_at
			FROM chat.message
			WHERE room_name = $1
			ORDER BY id DESC
			LIMIT $2
		) AS recent
		ORDER BY id ASC;`

	return tql.Query[Message](ctx, r.db, query, strings.ToLower(roomName), limit)
}
