package dispatch

import (
	"testing"

	"github.com/eskrenkovic/ludo-server/internal/modules/chat"
	"github.com/eskrenkovic/ludo-server/internal/modules/ludo"
	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"github.com/stretchr/testify/require"
)

func Test_Disconnect_Deletes_Room_Of_Sole_Member(t *testing.T) {
	// Arrange
	h := newHarness(t)
	alice := h.online(t, "alice")
	h.do(alice, protocol.JoinChat{UserID: alice.userID, ChatRoomName: "lounge"})
	h.do(alice, protocol.JoinChat{UserID: alice.userID, ChatRoomName: chat.GlobalRoom})
	h.drain()

	// Act
	h.disconnect(alice)

	// Assert
	require.False(t, h.rooms.Exists("lounge"))
	require.Equal(t, []string{"lounge"}, h.store.removed)

	require.True(t, h.rooms.Exists(chat.GlobalRoom))
	require.False(t, h.rooms.IsMember(chat.GlobalRoom, alice.userID))
}

func Test_Disconnect_Tells_Remaining_Room_Members(t *testing.T) {
	// Arrange
	h := newHarness(t)
	alice := h.online(t, "alice")
	bob := h.online(t, "bob")
	h.do(alice, protocol.JoinChat{UserID: alice.userID, ChatRoomName: "lounge"})
	h.do(bob, protocol.JoinChat{UserID: bob.userID, ChatRoomName: "lounge"})
	h.drain()

	// Act
	h.disconnect(alice)

	// Assert
	require.Equal(
		t,
		[]protocol.UserLeftChatRoomResponse{{DisplayName: "alice", ChatRoomName: "lounge"}},
		received[protocol.UserLeftChatRoomResponse](h.drain(), bob.sessionID),
	)
	require.True(t, h.rooms.Exists("lounge"))
	require.Empty(t, h.store.removed)
}

func Test_Disconnect_Shrinks_Game_And_Discards_It_When_Empty(t *testing.T) {
	// Arrange
	h := newHarness(t)
	players := []client{
		h.online(t, "alice"),
		h.online(t, "bob"),
		h.online(t, "carol"),
		h.online(t, "dave"),
	}

	for _, p := range players {
		h.do(p, protocol.RandomGameSearch{UserID: p.userID})
	}
	gameID := received[protocol.CreateGameResponse](h.drain(), players[0].sessionID)[0].GameID

	// Act
	h.disconnect(players[3])
	afterFirst := h.drain()

	// Assert
	g, ok := h.games.Get(gameID)
	require.True(t, ok)
	require.Equal(t, 3, g.ActivePlayerCount())
	require.Equal(t, ludo.Started, g.Status())

	for _, p := range players[:3] {
		require.Equal(
			t,
			[]protocol.UserLeftGameResponse{{DisplayName: "dave", GameID: gameID}},
			received[protocol.UserLeftGameResponse](afterFirst, p.sessionID),
		)
	}

	for _, p := range players[:3] {
		h.disconnect(p)
	}

	_, ok = h.games.Get(gameID)
	require.False(t, ok)
}

func Test_Disconnect_Counts_As_Declined_Invitation(t *testing.T) {
	// Arrange
	h := newHarness(t)
	alice := h.online(t, "alice")
	bob := h.online(t, "bob")
	carol := h.online(t, "carol")
	gameID := createGame(t, h, alice, "bob", "carol")

	h.do(carol, protocol.GameInvitationAnswer{Accepted: true, UserID: carol.userID, GameID: gameID})
	h.drain()

	// Act
	h.disconnect(bob)

	// Assert
	envelopes := h.drain()

	require.Equal(
		t,
		[]protocol.UserDeclinedGameInvitationResponse{{UserID: bob.userID, GameID: gameID}},
		received[protocol.UserDeclinedGameInvitationResponse](envelopes, alice.sessionID),
	)
	require.Len(t, received[protocol.GameHasStartedResponse](envelopes, carol.sessionID), 1)

	g, _ := h.games.Get(gameID)
	require.Equal(t, ludo.Started, g.Status())
}
