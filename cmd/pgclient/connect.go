package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Open a connection and print the backend's startup parameters",
	Example: "# pgclient connect --dsn 'user=postgres;database=postgres;host=localhost;port=5432'",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, addr, err := dialAndConnect(dsn)
		if err != nil {
			return err
		}
		defer client.Close()

		fmt.Printf("connected to %s (backend pid %d)\n", addr, client.BackendPID())
		for _, key := range []string{"server_version", "server_encoding", "client_encoding", "TimeZone"} {
			if v, ok := client.ParameterStatus(key); ok {
				fmt.Printf("  %s = %s\n", key, v)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
