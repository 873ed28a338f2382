package connection

import (
	"net"
	"sync"
	"time"
)

// Connection is one client socket. The session id is assigned when the socket
// is registered and never changes.
type Connection struct {
	SessionID string

	conn net.Conn

	writeMu sync.Mutex

	mu                sync.Mutex
	userID            string
	displayName       string
	pendingDisconnect bool

	// pending and discarding are only touched by the ingress poller.
	// discarding is set while the rest of an oversized line is skipped.
	pending    []byte
	discarding bool
}

func newConnection(sessionID string, conn net.Conn) *Connection {
	return &Connection{SessionID: sessionID, conn: conn}
}

func (c *Connection) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Connection) DisplayName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayName
}

func (c *Connection) RemoteAddr() string {
	if c.conn == nil {
		return ""
	}
	return c.conn.RemoteAddr().String()
}

// Write sends one encoded message. Egress and the liveness monitor share the
// socket, so writes are serialized.
func (c *Connection) Write(payload []byte, timeout time.Duration) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}

	_, err := c.conn.Write(payload)
	return err
}

func (c *Connection) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
