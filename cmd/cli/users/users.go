package users

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/crucial707/phonebook/cmd/cli/client"
	"github.com/crucial707/phonebook/cmd/cli/config"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ==========================
// CLI Command Init
// ==========================
func InitUsers(rootCmd *cobra.Command) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users and authentication",
		Long: `Register or login a user to the phonebook API.
Stores the access token locally for future commands.`,
	}

	usersCmd.AddCommand(registerCmd(), loginCmd(), logoutCmd())
	rootCmd.AddCommand(usersCmd)
}

// ==========================
// Register User
// ==========================
func registerCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Long:  "Register a new user and save the returned access token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || email == "" {
				return errors.New("--username and --email are required")
			}
			pw, err := resolvePassword(cmd, password)
			if err != nil {
				return err
			}

			var out struct {
				User struct {
					Username string `json:"username"`
					Email    string `json:"email"`
				} `json:"user"`
				tokenResponse
			}
			payload := map[string]string{"username": username, "email": email, "password": pw}
			if err := client.Do("POST", "/register", "", payload, &out); err != nil {
				return err
			}
			if err := config.SaveToken(out.AccessToken); err != nil {
				return fmt.Errorf("save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s <%s>. Token saved.\n", out.User.Username, out.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address (login identity)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	return cmd
}

// ==========================
// Login User
// ==========================
func loginCmd() *cobra.Command {
	var email, password string
	var form bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login an existing user",
		Long:  "Login and save the access token locally for future CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			pw, err := resolvePassword(cmd, password)
			if err != nil {
				return err
			}

			var out tokenResponse
			if form {
				err = client.PostForm("/token", url.Values{
					"grant_type": {"password"},
					"username":   {email},
					"password":   {pw},
				}, &out)
			} else {
				err = client.Do("POST", "/login", "", map[string]string{"email": email, "password": pw}, &out)
			}
			if err != nil {
				return err
			}
			if out.AccessToken == "" {
				return errors.New("login succeeded but no token returned")
			}
			if err := config.SaveToken(out.AccessToken); err != nil {
				return fmt.Errorf("save token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Login successful. Token saved locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	cmd.Flags().BoolVar(&form, "form", false, "use the form-encoded /token endpoint")
	return cmd
}

// ==========================
// Logout User
// ==========================
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout current user",
		Long:  "Call the logout endpoint and remove the locally saved token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if errors.Is(err, config.ErrNotLoggedIn) {
				fmt.Fprintln(cmd.OutOrStdout(), "No user logged in.")
				return nil
			}
			if err != nil {
				return err
			}

			// An expired or rejected token is still removed locally.
			var apiErr *client.APIError
			if err := client.Do("POST", "/logout", token, nil, nil); err != nil && !errors.As(err, &apiErr) {
				return err
			}

			if _, err := config.RemoveToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out successfully.")
			return nil
		},
	}
}

// ==========================
// Password Prompt
// ==========================

// resolvePassword returns flagValue, or prompts for it. Input is hidden on a terminal.
func resolvePassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("password is required")
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New("password is required")
	}
	return pw, nil
}
