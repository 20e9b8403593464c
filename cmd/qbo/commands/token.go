package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewTokenCommand creates the token command group.
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage OAuth credentials",
	}

	cmd.AddCommand(newTokenSetCommand())
	cmd.AddCommand(newTokenRefreshCommand())

	return cmd
}

func newTokenSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Store OAuth credentials interactively",
		Long: `Store OAuth credentials in the CLI configuration.

The client secret and refresh token are read without echo. Values left
empty keep their current setting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadCLIConfig()

			clientID, err := promptValue("Client ID")
			if err != nil {
				return err
			}

			if clientID != "" {
				config.ClientID = clientID
			}

			clientSecret, err := promptSecret("Client Secret")
			if err != nil {
				return err
			}

			if clientSecret != "" {
				config.ClientSecret = clientSecret
			}

			refreshToken, err := promptSecret("Refresh Token")
			if err != nil {
				return err
			}

			if refreshToken != "" {
				config.RefreshToken = refreshToken
			}

			if err := saveCLIConfig(config); err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, "Credentials saved.")

			return nil
		},
	}
}

func newTokenRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Force a token refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			if err := client.RefreshToken(cmd.Context()); err != nil {
				return fmt.Errorf("refresh failed: %w", err)
			}

			fmt.Fprintln(os.Stdout, "Token refreshed.")

			return nil
		},
	}
}

func promptValue(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)

	reader := bufio.NewReader(os.Stdin)

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", label, err)
	}

	return strings.TrimSpace(line), nil
}

func promptSecret(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)

	// Fall back to echoing input when stdin is not a terminal, for piping.
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return promptValue("")
	}

	secret, err := term.ReadPassword(int(os.Stdin.Fd()))

	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("reading %s: %w", label, err)
	}

	return strings.TrimSpace(string(secret)), nil
}
