// Package main is the entry point for densho-reconcile CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/densho-reconcile/cmd/densho-reconcile/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
