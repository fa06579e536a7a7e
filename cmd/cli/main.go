package main

import (
	"fmt"
	"os"

	"github.com/crucial707/phonebook/cmd/cli/entries"
	"github.com/crucial707/phonebook/cmd/cli/root"
	"github.com/crucial707/phonebook/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	users.InitUsers(rootCmd)
	entries.InitEntries(rootCmd)

	// Execute the root Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
