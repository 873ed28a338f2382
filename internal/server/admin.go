package server

import (
	"context"
	"net"
	"net/http"

	"github.com/eskrenkovic/ludo-server/internal/modules/account/queries"
	"github.com/eskrenkovic/ludo-server/internal/modules/chat"
	"github.com/eskrenkovic/ludo-server/internal/modules/connection"
	"github.com/eskrenkovic/ludo-server/internal/modules/core"
	"github.com/eskrenkovic/ludo-server/internal/modules/dispatch"
	"github.com/eskrenkovic/ludo-server/internal/modules/lobby"

	"github.com/go-chi/chi"
)

type views interface {
	Stats() dispatch.Stats
	Rooms() []chat.RoomInfo
	Game(gameID string) (lobby.GameInfo, bool)
	Games() []lobby.GameInfo
}

type pinger interface {
	PingContext(ctx context.Context) error
}

var _ views = (*dispatch.Dispatcher)(nil)

type roomView struct {
	Name     string   `json:"name"`
	GameRoom bool     `json:"game_room"`
	Members  []string `json:"members"`
}

type playerView struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Color       string `json:"color"`
	State       string `json:"state"`
	Pieces      []int  `json:"pieces"`
}

type gameView struct {
	ID           string       `json:"id"`
	HostUserID   string       `json:"host_user_id"`
	Status       string       `json:"status"`
	ActivePlayer int          `json:"active_player"`
	DiceValue    int          `json:"dice_value"`
	Players      []playerView `json:"players"`
	Pending      []string     `json:"pending_invitees"`
}

func toRoomView(info chat.RoomInfo) roomView {
	return roomView{
		Name:     info.Name,
		GameRoom: info.GameRoom,
		Members:  core.Map(info.Members, func(m chat.Member) string { return m.DisplayName }),
	}
}

func toGameView(info lobby.GameInfo) gameView {
	players := make([]playerView, 0, len(info.Players))
	for _, p := range info.Players {
		players = append(players, playerView{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Color:       p.Color.String(),
			State:       p.State.String(),
			Pieces:      p.Pieces[:],
		})
	}

	pending := info.Pending
	if pending == nil {
		pending = []string{}
	}

	return gameView{
		ID:           info.ID,
		HostUserID:   info.HostUserID,
		Status:       info.Status.String(),
		ActivePlayer: info.ActivePlayer,
		DiceValue:    info.DiceValue,
		Players:      players,
		Pending:      pending,
	}
}

type adminHandler struct {
	views    views
	registry *connection.Registry
	db       pinger
}

// newAdminRouter serves a read-only view of the running server.
func newAdminRouter(baseCtx context.Context, v views, registry *connection.Registry, db pinger) http.Handler {
	h := adminHandler{views: v, registry: registry, db: db}

	r := chi.NewRouter()
	r.Use(baseContextMiddleware(baseCtx))
	r.Use(core.CorrelationIDHTTPMiddleware)

	r.Get("/healthz", h.healthz)
	r.Get("/stats", h.stats)
	r.Get("/users", h.users)
	r.Get("/rooms", h.rooms)
	r.Get("/games", h.games)
	r.Get("/games/{id}", h.game)
	r.Get("/leaderboard", queries.HandleGetLeaderboard)

	return r
}

func (h adminHandler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			core.WriteResponse(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}

	core.WriteOK(w, r, map[string]string{"status": "ok"})
}

func (h adminHandler) stats(w http.ResponseWriter, r *http.Request) {
	core.WriteOK(w, r, h.views.Stats())
}

func (h adminHandler) users(w http.ResponseWriter, r *http.Request) {
	core.WriteOK(w, r, core.Map(h.registry.OnlineUsers(), func(u connection.OnlineUser) string {
		return u.DisplayName
	}))
}

func (h adminHandler) rooms(w http.ResponseWriter, r *http.Request) {
	core.WriteOK(w, r, core.Map(h.views.Rooms(), toRoomView))
}

func (h adminHandler) games(w http.ResponseWriter, r *http.Request) {
	core.WriteOK(w, r, core.Map(h.views.Games(), toGameView))
}

func (h adminHandler) game(w http.ResponseWriter, r *http.Request) {
	info, ok := h.views.Game(chi.URLParam(r, "id"))
	if !ok {
		core.WriteNotFound(w, r, map[string]string{"error": "game not found"})
		return
	}

	core.WriteOK(w, r, toGameView(info))
}

// baseContextMiddleware detaches request handling from the connection context
// so handlers observe server shutdown instead.
func baseContextMiddleware(baseCtx context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			baseCtx := baseCtx

			if v, ok := ctx.Value(http.ServerContextKey).(*http.Server); ok {
				baseCtx = context.WithValue(baseCtx, http.ServerContextKey, v)
			}

			if v, ok := ctx.Value(http.LocalAddrContextKey).(net.Addr); ok {
				baseCtx = context.WithValue(baseCtx, http.LocalAddrContextKey, v)
			}

			next.ServeHTTP(w, r.WithContext(baseCtx))
		})
	}
}
