package dispatch

import (
	"context"
	"strings"
	"testing"

	"github.com/eskrenkovic/ludo-server/internal/modules/account"
	"github.com/eskrenkovic/ludo-server/internal/modules/account/commands"
	"github.com/eskrenkovic/ludo-server/internal/modules/account/domain"
	"github.com/eskrenkovic/ludo-server/internal/modules/chat"
	"github.com/eskrenkovic/ludo-server/internal/modules/connection"
	"github.com/eskrenkovic/ludo-server/internal/modules/core"
	"github.com/eskrenkovic/ludo-server/internal/modules/lobby"
	"github.com/eskrenkovic/ludo-server/internal/modules/ludo"
	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUser struct {
	password string
	profile  domain.Profile
}

type gameResult struct {
	players []string
	winner  string
}

type fakeAccounts struct {
	users  map[string]*fakeUser
	tokens map[string]string

	err         error
	edit        commands.EditProfileResponse
	leaderboard domain.Leaderboard
	results     []gameResult
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{
		users:  make(map[string]*fakeUser),
		tokens: make(map[string]string),
	}
}

func (f *fakeAccounts) add(username, password string) account.Identity {
	u := &fakeUser{
		password: password,
		profile:  domain.Profile{UserID: uuid.New(), DisplayName: username},
	}
	f.users[username] = u
	return account.Identity{UserID: u.profile.UserID.String(), DisplayName: username}
}

func (f *fakeAccounts) byID(userID string) (*fakeUser, bool) {
	for _, u := range f.users {
		if u.profile.UserID.String() == userID {
			return u, true
		}
	}
	return nil, false
}

func (f *fakeAccounts) Login(_ context.Context, username, password string) (account.Identity, error) {
	if f.err != nil {
		return account.Identity{}, f.err
	}

	u, ok := f.users[username]
	if !ok || u.password != password {
		return account.Identity{}, core.NewCommandError(401, "invalid credentials", core.WithReason(protocol.ReasonLoginFail))
	}

	return account.Identity{UserID: u.profile.UserID.String(), DisplayName: u.profile.DisplayName}, nil
}

func (f *fakeAccounts) LoginWithToken(_ context.Context, token string) (account.Identity, error) {
	if f.err != nil {
		return account.Identity{}, f.err
	}

	userID, ok := f.tokens[token]
	if !ok {
		return account.Identity{}, core.NewCommandError(401, "unknown token", core.WithReason(protocol.ReasonInvalidToken))
	}

	u, _ := f.byID(userID)
	return account.Identity{UserID: userID, DisplayName: u.profile.DisplayName}, nil
}

func (f *fakeAccounts) IssueSessionToken(_ context.Context, userID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	token := "token-" + userID
	f.tokens[token] = userID
	return token, nil
}

func (f *fakeAccounts) Register(_ context.Context, username, password string) error {
	if f.err != nil {
		return f.err
	}

	if _, exists := f.users[username]; exists {
		return core.NewCommandError(409, "taken", core.WithReason(protocol.ReasonRegisterFail))
	}

	f.add(username, password)
	return nil
}

func (f *fakeAccounts) Profile(_ context.Context, userID string) (domain.Profile, error) {
	if f.err != nil {
		return domain.Profile{}, f.err
	}

	u, ok := f.byID(userID)
	if !ok {
		return domain.Profile{}, core.NewCommandError(404, "missing", core.WithReason(protocol.ReasonViewProfileFail))
	}
	return u.profile, nil
}

func (f *fakeAccounts) ProfileByDisplayName(_ context.Context, displayName string) (domain.Profile, error) {
	if f.err != nil {
		return domain.Profile{}, f.err
	}

	for _, u := range f.users {
		if strings.EqualFold(u.profile.DisplayName, displayName) {
			return u.profile, nil
		}
	}
	return domain.Profile{}, core.NewCommandError(404, "missing", core.WithReason(protocol.ReasonViewProfileFail))
}

func (f *fakeAccounts) EditProfile(_ context.Context, _, _, _, _ string) (commands.EditProfileResponse, error) {
	if f.err != nil {
		return commands.EditProfileResponse{}, f.err
	}
	return f.edit, nil
}

func (f *fakeAccounts) Leaderboard(_ context.Context) (domain.Leaderboard, error) {
	if f.err != nil {
		return domain.Leaderboard{}, f.err
	}
	return f.leaderboard, nil
}

func (f *fakeAccounts) RecordGameResult(_ context.Context, playerIDs []string, winnerID string) error {
	if f.err != nil {
		return f.err
	}

	f.results = append(f.results, gameResult{players: playerIDs, winner: winnerID})
	return nil
}

type fakeStore struct {
	rooms    map[string]bool
	removed  []string
	messages []chat.Message
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rooms: make(map[string]bool)}
}

func (s *fakeStore) SaveRoom(_ context.Context, name string) error {
	if s.err != nil {
		return s.err
	}
	s.rooms[strings.ToLower(name)] = true
	return nil
}

func (s *fakeStore) RemoveRoom(_ context.Context, name string) error {
	if s.err != nil {
		return s.err
	}
	delete(s.rooms, strings.ToLower(name))
	s.removed = append(s.removed, name)
	return nil
}

func (s *fakeStore) SaveMessage(_ context.Context, m chat.Message) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, m)
	return nil
}

func (s *fakeStore) RecentMessages(_ context.Context, roomName string, limit int) ([]chat.Message, error) {
	if s.err != nil {
		return nil, s.err
	}

	var messages []chat.Message
	for _, m := range s.messages {
		if strings.EqualFold(m.RoomName, roomName) {
			messages = append(messages, m)
		}
	}

	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

type harness struct {
	d        *Dispatcher
	registry *connection.Registry
	rooms    *chat.Rooms
	games    *lobby.Games
	accounts *fakeAccounts
	store    *fakeStore
	inbound  *connection.Queue[protocol.Inbound]
	outbound *connection.Queue[protocol.Envelope]
}

func newHarness(t *testing.T, opts ...ludo.Option) *harness {
	t.Helper()

	logger := zap.NewNop()

	h := &harness{
		registry: connection.NewRegistry(connection.NewQueue[string](100), logger),
		rooms:    chat.NewRooms(),
		games:    lobby.NewGames(opts...),
		accounts: newFakeAccounts(),
		store:    newFakeStore(),
		inbound:  connection.NewQueue[protocol.Inbound](100),
		outbound: connection.NewQueue[protocol.Envelope](1000),
	}

	h.d = NewDispatcher(
		h.registry,
		h.rooms,
		h.games,
		h.store,
		h.accounts,
		h.inbound,
		h.outbound,
		logger,
	)

	return h
}

type client struct {
	sessionID string
	userID    string
	name      string
}

// online connects and logs in a user without going through the accounts.
func (h *harness) online(t *testing.T, name string) client {
	t.Helper()

	c := h.registry.Register(nil)
	userID := uuid.NewString()
	require.NoError(t, h.registry.BindUser(c.SessionID, userID, name))

	return client{sessionID: c.SessionID, userID: userID, name: name}
}

func (h *harness) do(c client, r protocol.Request) {
	h.d.Handle(context.Background(), protocol.Inbound{SessionID: c.sessionID, Request: r})
}

// disconnect mimics the reaper for the client.
func (h *harness) disconnect(c client) {
	h.registry.Unregister(c.sessionID)
	h.d.Disconnect(context.Background(), c.userID, c.name)
}

func (h *harness) drain() []protocol.Envelope {
	var envelopes []protocol.Envelope
	for h.outbound.Len() > 0 {
		e, _ := h.outbound.Take(context.Background())
		envelopes = append(envelopes, e)
	}
	return envelopes
}

// received filters the responses of type T sent to the session.
func received[T protocol.Response](envelopes []protocol.Envelope, sessionID string) []T {
	var responses []T
	for _, e := range envelopes {
		if e.RecipientSessionID != sessionID {
			continue
		}
		if r, ok := e.Response.(T); ok {
			responses = append(responses, r)
		}
	}
	return responses
}

func fixedDice(values ...int) func() int {
	i := 0
	return func() int {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}
