package ircd

import (
	"bufio"
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// lineConn wraps a net.Conn with buffered, line-oriented I/O. Writes
// flush immediately; the session model is one message per write.
type lineConn struct {
	conn net.Conn
	rw   *bufio.ReadWriter
}

func newLineConn(conn net.Conn) *lineConn {
	return &lineConn{
		conn: conn,
		rw:   bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn)),
	}
}

// hostIP returns the remote IP as a string, used as the client's host
// in prefixes. Falls back to the whole address if it is not host:port.
func (c *lineConn) hostIP() string {
	addr := c.conn.RemoteAddr().String()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func (c *lineConn) remoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *lineConn) close() error {
	return c.conn.Close()
}

// readLine reads one line, terminator included.
func (c *lineConn) readLine() (string, error) {
	line, err := c.rw.ReadString('\n')
	if err != nil {
		return line, errors.Wrap(err, "error reading")
	}
	return line, nil
}

// writeLine writes s and flushes.
func (c *lineConn) writeLine(s string) error {
	sz, err := c.rw.WriteString(s)
	if err != nil {
		return errors.Wrap(err, "error writing")
	}
	if sz != len(s) {
		return fmt.Errorf("short write")
	}
	if err := c.rw.Flush(); err != nil {
		return errors.Wrap(err, "flush error")
	}
	return nil
}
