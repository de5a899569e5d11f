package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nativepg/pgclient/pkg/message"
	"github.com/nativepg/pgclient/pkg/request"
	"github.com/nativepg/pgclient/pkg/response"
	"github.com/nativepg/pgclient/pkg/types"
)

// printingHandler implements response.Handler by printing every
// RowDescription/DataRow/CommandComplete it observes as plain text, since
// the CLI has no compile-time Go struct to hand to pkg/rows.Into for an
// arbitrary ad hoc query.
type printingHandler struct {
	columns []string
}

func (h *printingHandler) OnMessage(tag byte, body []byte) (response.HandlerResult, error) {
	switch types.BackendMessage(tag) {
	case types.BackendRowDescription:
		rd, err := message.ParseRowDescription(body)
		if err != nil {
			return response.Done, err
		}
		h.columns = h.columns[:0]
		for _, f := range rd.Fields {
			h.columns = append(h.columns, f.Name)
		}
		fmt.Println(strings.Join(h.columns, "\t"))
		return response.NeedsMore, nil

	case types.BackendDataRow:
		dr, err := message.ParseDataRow(body)
		if err != nil {
			return response.Done, err
		}
		cells := make([]string, len(dr.Values))
		for i, v := range dr.Values {
			if v == nil {
				cells[i] = "NULL"
			} else {
				cells[i] = string(v)
			}
		}
		fmt.Println(strings.Join(cells, "\t"))
		return response.NeedsMore, nil

	case types.BackendCommandComplete:
		cc, err := message.ParseCommandComplete(body)
		if err != nil {
			return response.Done, err
		}
		fmt.Println(cc.Tag)
		return response.Done, nil

	default:
		return response.NeedsMore, nil
	}
}

var queryCmd = &cobra.Command{
	Use:     "query [sql]",
	Short:   "Run one simple-query statement and print its result set",
	Args:    cobra.ExactArgs(1),
	Example: "# pgclient query 'select 1' --dsn 'user=postgres;database=postgres'",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := dialAndConnect(dsn)
		if err != nil {
			return err
		}
		defer client.Close()

		req, err := request.New().AddSimpleQuery(args[0]).Build()
		if err != nil {
			return err
		}

		return client.Execute(req, &printingHandler{})
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
