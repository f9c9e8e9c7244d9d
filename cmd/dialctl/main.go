// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command dialctl is the terminal client for the Aleutian Dial server.
//
// Usage:
//
//	dialctl call "Call Pizza Palace and order a large pepperoni"
//	dialctl call --server http://localhost:9090 "Call the dentist tomorrow"
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// serverURL holds the --server flag value.
var serverURL string

func main() {
	rootCmd := &cobra.Command{
		Use:   "dialctl",
		Short: "Terminal client for the Aleutian Dial server",
		Long: `dialctl plans and places outbound phone calls through a running
Aleutian Dial server: it sends your request to the planner, asks you for any
required details the planner could not infer, and places the call.`,
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080",
		"Base URL of the Aleutian Dial server")

	rootCmd.AddCommand(newCallCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
