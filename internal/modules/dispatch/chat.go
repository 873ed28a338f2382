package dispatch

import (
	"context"
	"errors"
	"strings"

	"github.com/eskrenkovic/ludo-server/internal/modules/chat"
	"github.com/eskrenkovic/ludo-server/internal/modules/connection"
	"github.com/eskrenkovic/ludo-server/internal/modules/core"
	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (d *Dispatcher) HandleListChatRooms(_ context.Context, sessionID string, _ protocol.ListChatRooms) {
	d.send(sessionID, protocol.ChatRoomsListResponse{ChatRooms: d.rooms.Public()})
}

func (d *Dispatcher) HandleJoinChat(ctx context.Context, sessionID string, r protocol.JoinChat) {
	name := strings.TrimSpace(r.ChatRoomName)
	displayName := d.displayName(r.UserID)

	if name == "" {
		d.send(sessionID, protocol.ChatJoinResponse{Response: protocol.ReasonRoomJoinFail})
		return
	}

	reason := protocol.ReasonRoomJoinOK

	if !d.rooms.Exists(name) {
		// A live game's room that emptied comes back as a game room.
		var allowed []string
		g, isGame := d.games.Get(strings.ToLower(name))
		if isGame {
			name = g.ID
			allowed = d.gameRoomAllowList(g)

			if !core.Contains(allowed, displayName, strings.EqualFold) {
				d.send(sessionID, protocol.ChatJoinResponse{Response: protocol.ReasonRoomNotAllowed, ChatRoomName: name})
				return
			}
		}

		if err := d.store.SaveRoom(ctx, name); err != nil {
			d.logger.Error("failed to persist chat room", zap.String("room", name), zap.Error(err))
			d.send(sessionID, protocol.ChatJoinResponse{Response: protocol.ReasonInternalError, ChatRoomName: name})
			return
		}

		if err := d.rooms.Create(name, isGame, allowed); err != nil && !errors.Is(err, chat.ErrRoomExists) {
			d.internalError(sessionID, err, "failed to create chat room")
			return
		}

		reason = protocol.ReasonRoomCreateOK
	}

	info, err := d.rooms.Join(name, r.UserID, displayName)
	switch {
	case errors.Is(err, chat.ErrNotAllowed):
		d.send(sessionID, protocol.ChatJoinResponse{Response: protocol.ReasonRoomNotAllowed, ChatRoomName: name})
		return
	case errors.Is(err, chat.ErrAlreadyMember):
		d.send(sessionID, protocol.ChatJoinResponse{Response: protocol.ReasonRoomJoinFail, ChatRoomName: name})
		return
	case err != nil:
		d.internalError(sessionID, err, "failed to join chat room")
		return
	}

	d.send(sessionID, protocol.ChatJoinResponse{
		Status:       true,
		Response:     reason,
		ChatRoomName: info.Name,
		UsersInRoom:  memberNames(info.Members),
		ChatLog:      d.chatLog(ctx, info.Name),
	})

	for _, m := range info.Members {
		if m.UserID == r.UserID {
			continue
		}
		d.sendToUser(m.UserID, protocol.ChatJoinNewUserResponse{DisplayName: displayName, ChatRoomName: info.Name})
	}
}

// chatLog loads the trailing messages of a room. A storage failure yields an
// empty log rather than failing the join.
func (d *Dispatcher) chatLog(ctx context.Context, roomName string) []protocol.ChatLogEntry {
	messages, err := d.store.RecentMessages(ctx, roomName, chat.ChatLogSize)
	if err != nil {
		d.logger.Error("failed to load chat log", zap.String("room", roomName), zap.Error(err))
		return []protocol.ChatLogEntry{}
	}

	log := make([]protocol.ChatLogEntry, 0, len(messages))
	for _, m := range messages {
		log = append(log, protocol.ChatLogEntry{
			DisplayName: m.DisplayName,
			ChatMessage: m.Body,
			Timestamp:   m.SentAt.Unix(),
		})
	}
	return log
}

func (d *Dispatcher) HandleLeaveChatRoom(ctx context.Context, sessionID string, r protocol.LeaveChatRoom) {
	if !d.leaveRoom(ctx, r.ChatRoomName, r.UserID, d.displayName(r.UserID), true) {
		d.send(sessionID, protocol.ErrorMessageResponse{Message: protocol.ReasonRoomLeaveError})
	}
}

// leaveRoom removes the user from the room and tells the remaining members.
// Rooms left empty are removed from storage too.
func (d *Dispatcher) leaveRoom(ctx context.Context, roomName, userID, displayName string, notifyLeaver bool) bool {
	info, deleted, err := d.rooms.Leave(roomName, userID)
	if err != nil {
		return false
	}

	left := protocol.UserLeftChatRoomResponse{DisplayName: displayName, ChatRoomName: info.Name}

	if notifyLeaver {
		d.sendToUser(userID, left)
	}

	for _, m := range info.Members {
		d.sendToUser(m.UserID, left)
	}

	if deleted {
		if err := d.store.RemoveRoom(ctx, info.Name); err != nil {
			d.logger.Error("failed to remove chat room", zap.String("room", info.Name), zap.Error(err))
		}
	}

	return true
}

func (d *Dispatcher) HandleSendMessage(ctx context.Context, sessionID string, r protocol.SendMessage) {
	info, ok := d.rooms.Get(r.ChatRoomName)
	if !ok {
		d.send(sessionID, protocol.ErrorMessageResponse{Message: protocol.ReasonMessageNoRoom})
		return
	}

	if !d.rooms.IsMember(info.Name, r.UserID) {
		d.send(sessionID, protocol.ErrorMessageResponse{Message: protocol.ReasonMessageNotInRoom})
		return
	}

	userID, err := uuid.Parse(r.UserID)
	if err != nil {
		d.internalError(sessionID, err, "bound user id is not a uuid")
		return
	}

	message := chat.Message{
		RoomName:    info.Name,
		UserID:      userID,
		DisplayName: d.displayName(r.UserID),
		Body:        r.ChatMessage,
		SentAt:      d.now().UTC(),
	}

	if err := d.store.SaveMessage(ctx, message); err != nil {
		d.internalError(sessionID, err, "failed to persist chat message")
		return
	}

	sent := protocol.SentMessageResponse{
		DisplayName:  message.DisplayName,
		ChatRoomName: info.Name,
		ChatMessage:  message.Body,
		Timestamp:    message.SentAt.Unix(),
	}

	for _, m := range info.Members {
		d.sendToUser(m.UserID, sent)
	}
}

func (d *Dispatcher) HandleSearchUsers(_ context.Context, sessionID string, r protocol.SearchUsers) {
	query := strings.ToLower(strings.TrimSpace(r.SearchQuery))

	matches := core.Filter(d.registry.OnlineUsers(), func(u connection.OnlineUser) bool {
		return u.UserID != r.UserID && strings.Contains(strings.ToLower(u.DisplayName), query)
	})

	d.send(sessionID, protocol.UsersListResponse{
		DisplayNames: core.Map(matches, func(u connection.OnlineUser) string { return u.DisplayName }),
	})
}

func memberNames(members []chat.Member) []string {
	return core.Map(members, func(m chat.Member) string { return m.DisplayName })
}
