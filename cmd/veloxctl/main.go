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

// Command veloxctl is a thin CLI over the store.Task interface: ingest
// loads a CSV file into a table, query runs a JSON-encoded query against
// one and prints the result.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veloxdb/veloxdb/pkg/store"
)

var registry = store.NewRegistry()

var rootCmd = &cobra.Command{
	Use:   "veloxctl",
	Short: "ingest CSV data and run vectorized analytical queries",
}

func main() {
	rootCmd.AddCommand(ingestCmd, queryCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
