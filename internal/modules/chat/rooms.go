package chat

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

const (
	GlobalRoom = "Global"

	// ChatLogSize is how many trailing messages a joining user receives.
	ChatLogSize = 50
)

var (
	ErrRoomNotFound  = errors.New("chat room not found")
	ErrRoomExists    = errors.New("chat room already exists")
	ErrNotAllowed    = errors.New("user is not allowed in game room")
	ErrAlreadyMember = errors.New("user already in chat room")
	ErrNotMember     = errors.New("user is not in chat room")
)

type Member struct {
	UserID      string
	DisplayName string
}

type RoomInfo struct {
	Name     string
	GameRoom bool
	Members  []Member
}

type room struct {
	name     string
	gameRoom bool
	members  map[string]string
	allowed  map[string]struct{}
}

func (r *room) info() RoomInfo {
	members := make([]Member, 0, len(r.members))
	for userID, displayName := range r.members {
		members = append(members, Member{UserID: userID, DisplayName: displayName})
	}

	sort.Slice(members, func(i, j int) bool { return members[i].DisplayName < members[j].DisplayName })

	return RoomInfo{Name: r.name, GameRoom: r.gameRoom, Members: members}
}

// Rooms is the table of open chat rooms. Names are matched case-insensitively.
// The global room is created up front and never removed.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

func NewRooms() *Rooms {
	r := &Rooms{rooms: make(map[string]*room)}
	r.rooms[key(GlobalRoom)] = newRoom(GlobalRoom, false, nil)
	return r
}

func newRoom(name string, gameRoom bool, allowed []string) *room {
	r := &room{
		name:     name,
		gameRoom: gameRoom,
		members:  make(map[string]string),
		allowed:  make(map[string]struct{}, len(allowed)),
	}

	for _, displayName := range allowed {
		r.allowed[key(displayName)] = struct{}{}
	}

	return r
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (rs *Rooms) Create(name string, gameRoom bool, allowedDisplayNames []string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, ok := rs.rooms[key(name)]; ok {
		return ErrRoomExists
	}

	rs.rooms[key(name)] = newRoom(name, gameRoom, allowedDisplayNames)
	return nil
}

func (rs *Rooms) Get(name string) (RoomInfo, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	r, ok := rs.rooms[key(name)]
	if !ok {
		return RoomInfo{}, false
	}
	return r.info(), true
}

func (rs *Rooms) Exists(name string) bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	_, ok := rs.rooms[key(name)]
	return ok
}

// Allowed reports whether the display name may join. Only game rooms restrict
// membership.
func (rs *Rooms) Allowed(name, displayName string) bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	r, ok := rs.rooms[key(name)]
	if !ok || !r.gameRoom {
		return true
	}

	_, allowed := r.allowed[key(displayName)]
	return allowed
}

func (rs *Rooms) Allow(name, displayName string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	r, ok := rs.rooms[key(name)]
	if !ok {
		return ErrRoomNotFound
	}

	r.allowed[key(displayName)] = struct{}{}
	return nil
}

func (rs *Rooms) Join(name, userID, displayName string) (RoomInfo, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	r, ok := rs.rooms[key(name)]
	if !ok {
		return RoomInfo{}, ErrRoomNotFound
	}

	if r.gameRoom {
		if _, allowed := r.allowed[key(displayName)]; !allowed {
			return RoomInfo{}, ErrNotAllowed
		}
	}

	if _, member := r.members[userID]; member {
		return RoomInfo{}, ErrAlreadyMember
	}

	r.members[userID] = displayName
	return r.info(), nil
}

// Leave removes the user and deletes the room once it is empty, unless it is
// the global room. The returned info lists the remaining members.
func (rs *Rooms) Leave(name, userID string) (info RoomInfo, deleted bool, err error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	k := key(name)

	r, ok := rs.rooms[k]
	if !ok {
		return RoomInfo{}, false, ErrRoomNotFound
	}

	if _, member := r.members[userID]; !member {
		return RoomInfo{}, false, ErrNotMember
	}

	delete(r.members, userID)

	if len(r.members) == 0 && k != key(GlobalRoom) {
		delete(rs.rooms, k)
		deleted = true
	}

	return r.info(), deleted, nil
}

func (rs *Rooms) IsMember(name, userID string) bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	r, ok := rs.rooms[key(name)]
	if !ok {
		return false
	}

	_, member := r.members[userID]
	return member
}

// Rename updates a member's display name in every room they are in and in
// every game room allow list that names them.
func (rs *Rooms) Rename(userID, oldDisplayName, newDisplayName string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for _, r := range rs.rooms {
		if _, member := r.members[userID]; member {
			r.members[userID] = newDisplayName
		}

		if _, allowed := r.allowed[key(oldDisplayName)]; allowed {
			delete(r.allowed, key(oldDisplayName))
			r.allowed[key(newDisplayName)] = struct{}{}
		}
	}
}

// Delete drops a room regardless of members. The global room stays.
func (rs *Rooms) Delete(name string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if key(name) == key(GlobalRoom) {
		return
	}

	delete(rs.rooms, key(name))
}

// Public lists the names of rooms that are not tied to a game.
func (rs *Rooms) Public() []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	names := make([]string, 0, len(rs.rooms))
	for _, r := range rs.rooms {
		if !r.gameRoom {
			names = append(names, r.name)
		}
	}

	sort.Strings(names)
	return names
}

// Of lists the rooms the user is a member of.
func (rs *Rooms) Of(userID string) []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	var names []string
	for _, r := range rs.rooms {
		if _, member := r.members[userID]; member {
			names = append(names, r.name)
		}
	}

	sort.Strings(names)
	return names
}

func (rs *Rooms) Snapshot() []RoomInfo {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	infos := make([]RoomInfo, 0, len(rs.rooms))
	for _, r := range rs.rooms {
		infos = append(infos, r.info())
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
