package main

import (
	"fmt"
	"net"

	"github.com/nativepg/pgclient"
)

// dialAndConnect opens a TCP connection to the host/port named in dsn and
// performs the startup/auth handshake, returning the live connection plus
// the "host:port" address it dialed (used in the subcommands' output).
func dialAndConnect(dsn string) (*pgclient.Conn, string, error) {
	params, err := parseDSN(dsn)
	if err != nil {
		return nil, "", err
	}

	host := params["host"]
	if host == "" {
		host = "localhost"
	}
	port := params["port"]
	if port == "" {
		port = "5432"
	}
	addr := net.JoinHostPort(host, port)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, addr, fmt.Errorf("dial %s: %w", addr, err)
	}

	transport := newNetTransport(conn)
	client, err := pgclient.Connect(transport, pgclient.Params{
		User:     params["user"],
		Password: params["password"],
		Database: params["database"],
	})
	if err != nil {
		conn.Close()
		return nil, addr, err
	}
	return client, addr, nil
}
