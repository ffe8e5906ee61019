// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"io"
	"net"
	"time"
)

// stdioConn adapts the process's standard input/output streams to
// [net.Conn], for inetd mode: operation as a one-shot child whose
// plaintext socket is already connected on its standard streams.
// Deadlines are not supported: a pre-connected pipe
// or socket inherited from the invoking supervisor has no portable way to
// set an I/O deadline independent of closing it, so the methods are
// present only to satisfy [net.Conn] and return [errNoDeadlineSupport].
type stdioConn struct {
	in  io.Reader
	out io.Writer
}

var _ net.Conn = stdioConn{}

func (c stdioConn) Read(b []byte) (int, error)  { return c.in.Read(b) }
func (c stdioConn) Write(b []byte) (int, error) { return c.out.Write(b) }

func (c stdioConn) Close() error {
	if closer, ok := c.in.(io.Closer); ok {
		closer.Close()
	}
	if closer, ok := c.out.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c stdioConn) LocalAddr() net.Addr               { return stdioAddr{} }
func (c stdioConn) RemoteAddr() net.Addr              { return stdioAddr{} }
func (c stdioConn) SetDeadline(t time.Time) error      { return errNoDeadlineSupport }
func (c stdioConn) SetReadDeadline(t time.Time) error  { return errNoDeadlineSupport }
func (c stdioConn) SetWriteDeadline(t time.Time) error { return errNoDeadlineSupport }

type stdioAddr struct{}

func (stdioAddr) Network() string { return "stdio" }
func (stdioAddr) String() string  { return "stdio" }
