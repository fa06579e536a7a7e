package root

import (
	"github.com/spf13/cobra"

	"github.com/crucial707/phonebook/cmd/cli/config"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:           "phonebook",
	Short:         "Phonebook CLI",
	Long:          "Command line interface for interacting with the phonebook API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&config.APIURLFlag, "api-url", "",
		"API base URL (default $PHONEBOOK_API_URL or http://localhost:8080)")
}

// Optional helper to return the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}
