package telnet

import (
	"bufio"
	"fmt"
	"net"
	"sync"
	"time"
)

// Telnet IAC (Interpret As Command) constants per RFC 854.
const (
	IAC  byte = 255 // Interpret As Command
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250 // Sub-negotiation Begin
	SE   byte = 240 // Sub-negotiation End
	NOP  byte = 241
	GA   byte = 249 // Go Ahead

	// Telnet options
	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

// Conn wraps a TCP connection with Telnet protocol handling in
// character-at-a-time mode: the server echoes nothing and receives every
// keystroke as it is typed.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	mu     sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps a raw TCP connection with Telnet protocol handling.
//
// Precondition: raw must be a valid, open network connection.
// Postcondition: Returns a Conn ready for reading and writing.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate asks the client for character mode: the server will echo and
// suppress go-ahead, and the client should not use linemode.
//
// Postcondition: Negotiation bytes are written to the connection.
func (c *Conn) Negotiate() error {
	return c.Write([]byte{
		IAC, WILL, OptEcho,
		IAC, WILL, OptSuppressGoAhead,
		IAC, DO, OptSuppressGoAhead,
		IAC, DONT, OptLinemode,
	})
}

// ReadKeys blocks until at least one data byte arrives and returns it with
// every data byte already buffered behind it. Telnet command sequences are
// consumed and never returned; a CR followed by LF or NUL yields a lone CR.
//
// Postcondition: Returns a non-empty slice, or an error (including io.EOF
// and read timeouts).
func (c *Conn) ReadKeys() ([]byte, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var out []byte
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			if len(out) > 0 {
				return out, nil
			}
			return nil, err
		}

		switch {
		case b == IAC:
			literal, err := c.handleIAC()
			if err != nil {
				return out, err
			}
			if literal {
				out = append(out, IAC)
			}
		case b == '\r':
			out = append(out, b)
			if c.reader.Buffered() == 0 {
				break
			}
			if next, err := c.reader.Peek(1); err == nil && (next[0] == '\n' || next[0] == 0) {
				_, _ = c.reader.ReadByte()
			}
		default:
			out = append(out, b)
		}

		if len(out) > 0 && c.reader.Buffered() == 0 {
			return out, nil
		}
	}
}

// handleIAC processes a Telnet IAC sequence after the initial IAC byte
// has been read. It reports whether the sequence was an escaped literal 0xFF.
func (c *Conn) handleIAC() (bool, error) {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return false, err
	}

	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err := c.reader.ReadByte()
		return false, err
	case SB:
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return false, err
			}
			if b != IAC {
				continue
			}
			next, err := c.reader.ReadByte()
			if err != nil {
				return false, err
			}
			if next == SE {
				return false, nil
			}
		}
	case IAC:
		return true, nil
	default:
		return false, nil
	}
}

// WriteLine sends a line of text followed by \r\n to the client.
//
// Precondition: text should not contain trailing newline characters.
// Postcondition: text + \r\n is written to the connection.
func (c *Conn) WriteLine(text string) error {
	return c.WriteString(text + "\r\n")
}

// WriteString sends text unchanged.
func (c *Conn) WriteString(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := fmt.Fprint(c.raw, text)
	return err
}

// Write sends raw bytes to the client.
//
// Postcondition: The data is written to the connection.
func (c *Conn) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// Close closes the underlying TCP connection.
//
// Postcondition: The connection is closed and no longer usable.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

// FilterIAC removes Telnet IAC sequences from raw input bytes.
// This is a pure function useful for testing and protocol parsing.
//
// Postcondition: Returns input with all IAC sequences removed.
func FilterIAC(input []byte) []byte {
	result := make([]byte, 0, len(input))
	i := 0
	for i < len(input) {
		if input[i] == IAC && i+1 < len(input) {
			switch input[i+1] {
			case WILL, WONT, DO, DONT:
				i += 3
				continue
			case SB:
				j := i + 2
				for j < len(input)-1 {
					if input[j] == IAC && input[j+1] == SE {
						j += 2
						break
					}
					j++
				}
				i = j
				continue
			case IAC:
				result = append(result, IAC)
				i += 2
				continue
			default:
				i += 2
				continue
			}
		}
		result = append(result, input[i])
		i++
	}
	return result
}
