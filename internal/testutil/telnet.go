package testutil

import (
	"errors"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cory-johannsen/hallcrawl/internal/frontend/telnet"
)

// TelnetClient plays a remote terminal against a character-mode server.
// Option negotiation is ignored; servers that only announce options never
// wait on a reply.
type TelnetClient struct {
	t    *testing.T
	conn net.Conn
}

// NewTelnetClient dials addr and registers cleanup with t.
//
// Postcondition: Returns a connected TelnetClient or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &TelnetClient{t: t, conn: conn}
}

// ReadUntil reads until the visible text (ANSI sequences removed) contains
// substr, and returns the raw bytes read including escape sequences.
//
// Precondition: substr must be non-empty.
// Postcondition: Returns the accumulated raw output, or fails on timeout.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	deadline := time.Now().Add(timeout)
	_ = c.conn.SetReadDeadline(deadline)

	var raw string
	tmp := make([]byte, 4096)
	for !strings.Contains(telnet.StripANSI(raw), substr) {
		n, err := c.conn.Read(tmp)
		raw += string(tmp[:n])
		if err != nil && !strings.Contains(telnet.StripANSI(raw), substr) {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				c.t.Fatalf("no %q within %s; visible output: %q", substr, timeout, telnet.StripANSI(raw))
			}
			c.t.Fatalf("reading until %q: %v; visible output: %q", substr, err, telnet.StripANSI(raw))
		}
	}
	return raw
}

// SendKeys writes raw keystrokes without a line terminator, the way a
// character-mode terminal delivers them.
func (c *TelnetClient) SendKeys(keys string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := c.conn.Write([]byte(keys)); err != nil {
		c.t.Fatalf("sending keys %q: %v", keys, err)
	}
}

// Close closes the connection.
func (c *TelnetClient) Close() {
	_ = c.conn.Close()
}
