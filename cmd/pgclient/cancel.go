package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nativepg/pgclient/pkg/buffer"
	"github.com/nativepg/pgclient/pkg/message"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel [pid] [secret-key]",
	Short: "Send a CancelRequest for a backend process over a fresh socket",
	Args:  cobra.ExactArgs(2),
	Example: "# pgclient cancel 4821 813237501 --dsn 'host=localhost;port=5432'",
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid pid: %w", err)
		}
		secretKey, err := strconv.ParseInt(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid secret key: %w", err)
		}

		params, err := parseDSN(dsn)
		if err != nil {
			return err
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
			return fmt.Errorf("dial %s: %w", addr, err)
		}
		defer conn.Close()

		req, err := message.BuildCancelRequest(buffer.NewWriter(), int32(pid), int32(secretKey))
		if err != nil {
			return err
		}
		if _, err := conn.Write(req); err != nil {
			return err
		}

		fmt.Printf("sent CancelRequest for pid %d to %s\n", pid, addr)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
