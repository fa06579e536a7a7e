package entries

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/crucial707/phonebook/cmd/cli/client"
	"github.com/crucial707/phonebook/cmd/cli/config"
	"github.com/crucial707/phonebook/cmd/cli/output"
	"github.com/crucial707/phonebook/internal/models"
)

var entryHeaders = []string{"ID", "Name", "Phone number"}

// ==========================
// Init Entries
// ==========================
func InitEntries(rootCmd *cobra.Command) {

	entriesCmd := &cobra.Command{
		Use:     "entries",
		Aliases: []string{"entry"},
		Short:   "Manage your phonebook entries",
	}

	entriesCmd.AddCommand(
		listEntriesCmd(),
		getEntryCmd(),
		createEntryCmd(),
		updateEntryCmd(),
		deleteEntryCmd(),
	)

	rootCmd.AddCommand(entriesCmd)
}

func entryPath(id string) string {
	return "/phonebook/" + url.PathEscape(id)
}

func render(cmd *cobra.Command, asJSON bool, v interface{}, list []models.Entry) error {
	if asJSON {
		return output.PrintJSON(cmd.OutOrStdout(), v)
	}
	rows := make([][]interface{}, 0, len(list))
	for _, e := range list {
		rows = append(rows, []interface{}{e.ID, e.Name, e.PhoneNumber})
	}
	output.RenderTable(cmd.OutOrStdout(), entryHeaders, rows)
	return nil
}

// ==========================
// LIST
// ==========================
func listEntriesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				return err
			}

			var list []models.Entry
			if err := client.Do("GET", "/phonebook/", token, nil, &list); err != nil {
				return err
			}
			if list == nil {
				list = []models.Entry{}
			}
			return render(cmd, asJSON, list, list)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// ==========================
// GET
// ==========================
func getEntryCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				return err
			}

			var entry models.Entry
			if err := client.Do("GET", entryPath(args[0]), token, nil, &entry); err != nil {
				return err
			}
			return render(cmd, asJSON, entry, []models.Entry{entry})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// ==========================
// CREATE
// ==========================
func createEntryCmd() *cobra.Command {
	var name, phone string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || phone == "" {
				return errors.New("--name and --phone are required")
			}
			token, err := config.LoadToken()
			if err != nil {
				return err
			}

			var entry models.Entry
			payload := map[string]string{"name": name, "phonenumber": phone}
			if err := client.Do("POST", "/phonebook/", token, payload, &entry); err != nil {
				return err
			}
			return render(cmd, asJSON, entry, []models.Entry{entry})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "contact name")
	cmd.Flags().StringVar(&phone, "phone", "", "contact phone number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// ==========================
// UPDATE
// ==========================
func updateEntryCmd() *cobra.Command {
	var name, phone string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Replace an entry's name and phone number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || phone == "" {
				return errors.New("--name and --phone are required")
			}
			token, err := config.LoadToken()
			if err != nil {
				return err
			}

			var entry models.Entry
			payload := map[string]string{"name": name, "phonenumber": phone}
			if err := client.Do("PUT", entryPath(args[0]), token, payload, &entry); err != nil {
				return err
			}
			return render(cmd, asJSON, entry, []models.Entry{entry})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "contact name")
	cmd.Flags().StringVar(&phone, "phone", "", "contact phone number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteEntryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				return err
			}

			var out struct {
				Message string `json:"message"`
			}
			if err := client.Do("DELETE", entryPath(args[0]), token, nil, &out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Message)
			return nil
		},
	}
}
