// Command pgclient is a thin CLI around the pgclient library: a worked
// example of the connection-string parsing and transport adapter the
// library itself deliberately leaves to its callers.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pgclient",
	Short: "A minimal PostgreSQL wire protocol client",
}

var dsn string

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "user=postgres;database=postgres;host=localhost;port=5432",
		"connection string, KEY=VALUE;KEY=VALUE;...")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
