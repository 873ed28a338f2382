package connection

import (
	"errors"
	"net"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrAlreadyBound = errors.New("session is already bound to a user")
	ErrUserOnline   = errors.New("user is already logged in on another session")
	ErrNotFound     = errors.New("session not found")
)

type OnlineUser struct {
	UserID      string
	DisplayName string
	SessionID   string
}

// Registry owns every live connection. Membership changes happen under a
// single lock; lookups may run concurrently.
type Registry struct {
	mu        sync.RWMutex
	bySession map[string]*Connection
	byUser    map[string]string

	disconnects *Queue[string]
	logger      *zap.Logger
}

func NewRegistry(disconnects *Queue[string], logger *zap.Logger) *Registry {
	return &Registry{
		bySession:   make(map[string]*Connection),
		byUser:      make(map[string]string),
		disconnects: disconnects,
		logger:      logger.With(zap.String("component", "registry")),
	}
}

func (r *Registry) Register(conn net.Conn) *Connection {
	c := newConnection(uuid.NewString(), conn)

	r.mu.Lock()
	r.bySession[c.SessionID] = c
	r.mu.Unlock()

	return c
}

// BindUser attaches a logged in user to a session. A session is bound at most
// once and a user may be bound to at most one session.
func (r *Registry) BindUser(sessionID, userID, displayName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.bySession[sessionID]
	if !ok {
		return ErrNotFound
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.userID != "" {
		return ErrAlreadyBound
	}

	if _, online := r.byUser[userID]; online {
		return ErrUserOnline
	}

	c.userID = userID
	c.displayName = displayName
	r.byUser[userID] = sessionID

	return nil
}

func (r *Registry) SetDisplayName(userID, displayName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessionID, ok := r.byUser[userID]
	if !ok {
		return false
	}

	c := r.bySession[sessionID]
	c.mu.Lock()
	c.displayName = displayName
	c.mu.Unlock()

	return true
}

func (r *Registry) Get(sessionID string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.bySession[sessionID]
	return c, ok
}

// LookupUserID returns false both for unknown sessions and for sessions that
// have not logged in yet.
func (r *Registry) LookupUserID(sessionID string) (string, bool) {
	c, ok := r.Get(sessionID)
	if !ok {
		return "", false
	}

	userID := c.UserID()
	return userID, userID != ""
}

func (r *Registry) LookupSessionID(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessionID, ok := r.byUser[userID]
	return sessionID, ok
}

func (r *Registry) LookupDisplayName(userID string) (string, bool) {
	sessionID, ok := r.LookupSessionID(userID)
	if !ok {
		return "", false
	}

	c, ok := r.Get(sessionID)
	if !ok {
		return "", false
	}

	return c.DisplayName(), true
}

// LookupUserIDByDisplayName only finds users that are online.
func (r *Registry) LookupUserIDByDisplayName(displayName string) (string, bool) {
	for _, u := range r.OnlineUsers() {
		if strings.EqualFold(u.DisplayName, displayName) {
			return u.UserID, true
		}
	}
	return "", false
}

func (r *Registry) IsUserLoggedIn(userID string) bool {
	_, ok := r.LookupSessionID(userID)
	return ok
}

func (r *Registry) Unregister(sessionID string) (*Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.bySession[sessionID]
	if !ok {
		return nil, false
	}

	delete(r.bySession, sessionID)

	if userID := c.UserID(); userID != "" && r.byUser[userID] == sessionID {
		delete(r.byUser, userID)
	}

	return c, true
}

// Snapshot copies the live connections so callers can iterate without
// holding the lock.
func (r *Registry) Snapshot() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Connection, 0, len(r.bySession))
	for _, c := range r.bySession {
		conns = append(conns, c)
	}
	return conns
}

// OnlineUsers lists logged in users ordered by display name.
func (r *Registry) OnlineUsers() []OnlineUser {
	r.mu.RLock()
	users := make([]OnlineUser, 0, len(r.byUser))
	for userID, sessionID := range r.byUser {
		users = append(users, OnlineUser{
			UserID:      userID,
			DisplayName: r.bySession[sessionID].DisplayName(),
			SessionID:   sessionID,
		})
	}
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i].DisplayName < users[j].DisplayName })
	return users
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySession)
}

// MarkForDisconnect queues the session for the reaper once, however many
// workers notice the failure.
func (r *Registry) MarkForDisconnect(sessionID string) {
	c, ok := r.Get(sessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	if c.pendingDisconnect {
		c.mu.Unlock()
		return
	}
	c.pendingDisconnect = true
	c.mu.Unlock()

	if err := r.disconnects.TryPut(sessionID); err != nil {
		r.logger.Error(
			"failed to queue connection for disconnect",
			zap.String("session_id", sessionID),
			zap.Int("queue_capacity", r.disconnects.Cap()),
			zap.Error(err),
		)

		c.mu.Lock()
		c.pendingDisconnect = false
		c.mu.Unlock()
	}
}
