package connection

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/eskrenkovic/ludo-server/internal/modules/protocol"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pipelineFixture struct {
	registry    *Registry
	disconnects *Queue[string]
	inbound     *Queue[protocol.Inbound]
	outbound    *Queue[protocol.Envelope]
}

func newPipelineFixture() pipelineFixture {
	disconnects := NewQueue[string](10)
	return pipelineFixture{
		registry:    NewRegistry(disconnects, zap.NewNop()),
		disconnects: disconnects,
		inbound:     NewQueue[protocol.Inbound](10),
		outbound:    NewQueue[protocol.Envelope](10),
	}
}

func (f pipelineFixture) connect(t *testing.T) (*Connection, net.Conn) {
	t.Helper()

	server, client := net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})

	return f.registry.Register(server), client
}

func writeAsync(client net.Conn, payload string) {
	go func() {
		_, _ = client.Write([]byte(payload))
	}()
}

func pollUntil(t *testing.T, in *Ingress, condition func() bool) {
	t.Helper()

	require.Eventually(t, func() bool {
		_ = in.Poll(context.Background())
		return condition()
	}, time.Second, 5*time.Millisecond)
}

func Test_Ingress_Decodes_Complete_Lines_Tagged_With_Session(t *testing.T) {
	// Arrange
	f := newPipelineFixture()
	c, client := f.connect(t)
	in := NewIngress(f.registry, f.inbound, time.Millisecond, zap.NewNop())

	// Act
	writeAsync(client, `{"action":"UserDoesLoginManual","username":"alice","password":"pw"}`+"\n")
	pollUntil(t, in, func() bool { return f.inbound.Len() == 1 })

	// Assert
	msg, err := f.inbound.Take(context.Background())
	require.NoError(t, err)
	require.Equal(t, c.SessionID, msg.SessionID)
	require.Equal(t, protocol.LoginManual{Username: "alice", Password: "pw"}, msg.Request)
}

func Test_Ingress_Joins_Partial_Reads(t *testing.T) {
	// Arrange
	f := newPipelineFixture()
	_, client := f.connect(t)
	in := NewIngress(f.registry, f.inbound, time.Millisecond, zap.NewNop())

	writeAsync(client, `{"action":"UserDoesRegister",`)
	pollUntil(t, in, func() bool { return len(f.registry.Snapshot()[0].pending) > 0 })
	require.Zero(t, f.inbound.Len())

	// Act
	writeAsync(client, `"username":"bob","password":"pw"}`+"\n")
	pollUntil(t, in, func() bool { return f.inbound.Len() == 1 })

	// Assert
	msg, err := f.inbound.Take(context.Background())
	require.NoError(t, err)
	require.Equal(t, protocol.Register{Username: "bob", Password: "pw"}, msg.Request)
}

func Test_Ingress_Drops_Undecodable_And_Unauthenticated_Messages(t *testing.T) {
	// Arrange
	f := newPipelineFixture()
	_, client := f.connect(t)
	in := NewIngress(f.registry, f.inbound, time.Millisecond, zap.NewNop())

	payload := strings.Join([]string{
		`not json`,
		`{"action":"UserJoinChat","userid":"u-1","chatroomname":"Global"}`,
		`{"action":"UserDoesLoginAuto","sessiontoken":"t"}`,
	}, "\n") + "\n"

	// Act
	writeAsync(client, payload)
	pollUntil(t, in, func() bool { return f.inbound.Len() == 1 })

	// Assert
	msg, err := f.inbound.Take(context.Background())
	require.NoError(t, err)
	require.Equal(t, protocol.LoginAuto{SessionToken: "t"}, msg.Request)
}

func Test_Ingress_Skips_Tail_Of_Oversized_Line(t *testing.T) {
	// Arrange
	f := newPipelineFixture()
	c, _ := f.connect(t)
	in := NewIngress(f.registry, f.inbound, time.Millisecond, zap.NewNop())

	c.pending = []byte(strings.Repeat("x", MaxLineBytes+1))
	require.NoError(t, in.Poll(context.Background()))
	require.Empty(t, c.pending)

	c.pending = []byte(strings.Repeat("y", 128))
	require.NoError(t, in.Poll(context.Background()))
	require.Empty(t, c.pending)

	// Act
	c.pending = []byte(
		`{"action":"UserDoesLoginAuto","sessiontoken":"tail"}` + "\n" +
			`{"action":"UserDoesLoginAuto","sessiontoken":"next"}` + "\n",
	)
	require.NoError(t, in.Poll(context.Background()))

	// Assert
	require.Equal(t, 1, f.inbound.Len())

	msg, err := f.inbound.Take(context.Background())
	require.NoError(t, err)
	require.Equal(t, protocol.LoginAuto{SessionToken: "next"}, msg.Request)
}

func Test_Ingress_Accepts_Requests_After_Login(t *testing.T) {
	// Arrange
	f := newPipelineFixture()
	c, client := f.connect(t)
	require.NoError(t, f.registry.BindUser(c.SessionID, "u-1", "alice"))
	in := NewIngress(f.registry, f.inbound, time.Millisecond, zap.NewNop())

	// Act
	writeAsync(client, `{"action":"UserJoinChat","userid":"u-1","chatroomname":"Global"}`+"\n")
	pollUntil(t, in, func() bool { return f.inbound.Len() == 1 })

	// Assert
	msg, err := f.inbound.Take(context.Background())
	require.NoError(t, err)
	require.Equal(t, protocol.JoinChat{UserID: "u-1", ChatRoomName: "Global"}, msg.Request)
}

func Test_Ingress_Marks_Closed_Connection_For_Disconnect(t *testing.T) {
	// Arrange
	f := newPipelineFixture()
	c, client := f.connect(t)
	in := NewIngress(f.registry, f.inbound, time.Millisecond, zap.NewNop())

	// Act
	require.NoError(t, client.Close())
	pollUntil(t, in, func() bool { return f.disconnects.Len() == 1 })

	// Assert
	sessionID, err := f.disconnects.Take(context.Background())
	require.NoError(t, err)
	require.Equal(t, c.SessionID, sessionID)
}

func Test_Egress_Writes_Encoded_Line_To_Recipient(t *testing.T) {
	// Arrange
	f := newPipelineFixture()
	c, client := f.connect(t)
	e := NewEgress(f.registry, f.outbound, zap.NewNop())

	lines := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(client).ReadString('\n')
		lines <- line
	}()

	// Act
	e.Send(protocol.Envelope{
		RecipientSessionID: c.SessionID,
		Response:           protocol.GameHasStartedResponse{GameID: "g-1"},
	})

	// Assert
	select {
	case line := <-lines:
		require.Equal(t, "{\"action\":\"GameHasStartedResponse\",\"gameid\":\"g-1\"}\n", line)
	case <-time.After(time.Second):
		t.Fatal("no line written")
	}
}

func Test_Egress_Drops_Message_For_Offline_Recipient(t *testing.T) {
	f := newPipelineFixture()
	e := NewEgress(f.registry, f.outbound, zap.NewNop())

	e.Send(protocol.Envelope{RecipientSessionID: "gone", Response: protocol.Ping{}})

	require.Zero(t, f.disconnects.Len())
}

func Test_Egress_Write_Failure_Marks_For_Disconnect(t *testing.T) {
	// Arrange
	f := newPipelineFixture()
	c, client := f.connect(t)
	e := NewEgress(f.registry, f.outbound, zap.NewNop())
	require.NoError(t, client.Close())

	// Act
	e.Send(protocol.Envelope{RecipientSessionID: c.SessionID, Response: protocol.Ping{}})
	e.Send(protocol.Envelope{RecipientSessionID: c.SessionID, Response: protocol.Ping{}})

	// Assert
	require.Equal(t, 1, f.disconnects.Len())
}

func Test_Liveness_Pings_Every_Connection(t *testing.T) {
	// Arrange
	f := newPipelineFixture()
	_, alive := f.connect(t)
	dead, deadClient := f.connect(t)
	require.NoError(t, deadClient.Close())

	l := NewLiveness(f.registry, time.Second, zap.NewNop())

	lines := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(alive).ReadString('\n')
		lines <- line
	}()

	// Act
	l.PingAll()

	// Assert
	require.Equal(t, "{\"action\":\"Ping\"}\n", <-lines)

	sessionID, err := f.disconnects.Take(context.Background())
	require.NoError(t, err)
	require.Equal(t, dead.SessionID, sessionID)
}

type recordingCleaner struct {
	calls [][2]string
}

func (c *recordingCleaner) Disconnect(_ context.Context, userID, displayName string) {
	c.calls = append(c.calls, [2]string{userID, displayName})
}

func Test_Reaper_Unregisters_And_Cascades_For_Bound_User(t *testing.T) {
	// Arrange
	f := newPipelineFixture()
	c, _ := f.connect(t)
	require.NoError(t, f.registry.BindUser(c.SessionID, "u-1", "alice"))

	cleaner := &recordingCleaner{}
	r := NewReaper(f.registry, f.disconnects, cleaner, zap.NewNop())

	// Act
	r.Reap(context.Background(), c.SessionID)
	r.Reap(context.Background(), c.SessionID)

	// Assert
	require.Zero(t, f.registry.Count())
	require.False(t, f.registry.IsUserLoggedIn("u-1"))
	require.Equal(t, [][2]string{{"u-1", "alice"}}, cleaner.calls)
}

func Test_Reaper_Skips_Cascade_For_Anonymous_Connection(t *testing.T) {
	f := newPipelineFixture()
	c, _ := f.connect(t)

	cleaner := &recordingCleaner{}
	r := NewReaper(f.registry, f.disconnects, cleaner, zap.NewNop())

	r.Reap(context.Background(), c.SessionID)

	require.Zero(t, f.registry.Count())
	require.Empty(t, cleaner.calls)
}
