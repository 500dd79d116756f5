// Copyright 2024-present, The veloxdb Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/veloxdb/veloxdb/pkg/sqlast"
	"github.com/veloxdb/veloxdb/pkg/store"
)

var (
	queryTable   string
	queryFile    string
	queryExplain bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "run a JSON-encoded query AST against a table",
	Long: `Runs a query against a table. SQL parsing is out of scope for this
tool; the query is given as a JSON-encoded sqlast.Query, e.g.:

  {"select": [{"kind": 1, "name": "a"}]}
`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryTable, "table", "", "table to query (required)")
	queryCmd.Flags().StringVar(&queryFile, "query", "", "path to a JSON query file, or \"-\" for stdin (required)")
	queryCmd.Flags().BoolVar(&queryExplain, "explain", false, "include a per-operator row-count breakdown")
	_ = queryCmd.MarkFlagRequired("table")
	_ = queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	table, ok := registry.Table(queryTable)
	if !ok {
		return errors.Newf("no such table %q", queryTable)
	}

	raw, err := readQueryFile(queryFile)
	if err != nil {
		return err
	}
	var q sqlast.Query
	if err := json.Unmarshal(raw, &q); err != nil {
		return errors.Wrap(err, "parsing query JSON")
	}

	task := &store.QueryTask{Table: table, Query: &q, Options: store.QueryOptions{Explain: queryExplain}}
	pool := store.NewPool()
	if err := pool.Run(cmd.Context(), task); err != nil {
		return err
	}

	return printResult(cmd, task.Result)
}

func readQueryFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func printResult(cmd *cobra.Command, res *store.QueryResult) error {
	cmd.Println(strings.Join(res.ColNames, "\t"))
	for _, row := range res.Rows {
		vals := make([]string, len(row))
		for i, v := range row {
			vals[i] = v.String()
		}
		cmd.Println(strings.Join(vals, "\t"))
	}
	cmd.Printf("-- runtime=%dns rows_scanned=%d\n", res.Stats.RuntimeNS, res.Stats.RowsScanned)
	if queryExplain {
		for _, op := range res.Stats.Breakdown {
			cmd.Printf("  %s: %d rows\n", op.Name, op.Rows)
		}
	}
	return nil
}
