package main

import "net"

// netTransport adapts a net.Conn to pgclient.Transport. It reads and
// writes straight off the net.Conn with no buffering layer of its own;
// buffering belongs to the stream FSM, not the transport.
type netTransport struct {
	conn net.Conn
}

func newNetTransport(conn net.Conn) *netTransport {
	return &netTransport{conn: conn}
}

func (t *netTransport) ReadSome(p []byte) (int, error) {
	return t.conn.Read(p)
}

func (t *netTransport) WriteAll(p []byte) error {
	for len(p) > 0 {
		n, err := t.conn.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

func (t *netTransport) Close() error {
	return t.conn.Close()
}
