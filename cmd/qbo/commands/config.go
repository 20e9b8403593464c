package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ledgerkit-io/qbo-client/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// cliConfig is the on-disk CLI configuration, stored at ~/.qbo/config.yml.
type cliConfig struct {
	CompanyID    string `yaml:"company_id,omitempty"`
	Environment  string `yaml:"environment,omitempty"`
	ClientID     string `yaml:"client_id,omitempty"`
	ClientSecret string `yaml:"client_secret,omitempty"`
	AccessToken  string `yaml:"access_token,omitempty"`
	RefreshToken string `yaml:"refresh_token,omitempty"`
	TokenURL     string `yaml:"token_url,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
	MinorVersion string `yaml:"minor_version,omitempty"`
	Output       string `yaml:"output,omitempty"`
}

// secretConfigKeys are redacted in config show output.
var secretConfigKeys = map[string]bool{
	"client_secret": true,
	"access_token":  true,
	"refresh_token": true,
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadCLIConfig()

			accessors := configAccessors(config)

			display := make(map[string]string, len(accessors))
			for key, accessor := range accessors {
				value := *accessor
				if value != "" && secretConfigKeys[key] {
					value = "[REDACTED]"
				}

				display[key] = value
			}

			return renderOutput(display)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(args[0], args[1])
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(args[0], "")
		},
	}
}

func setConfigValue(key, value string) error {
	config := loadCLIConfig()

	accessor, ok := configAccessors(config)[key]
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrUnknownConfigKey, key)
	}

	*accessor = value

	if err := saveCLIConfig(config); err != nil {
		return err
	}

	action := "Set"
	if value == "" {
		action = "Unset"
	}

	fmt.Fprintf(os.Stdout, "%s %s\n", action, key)

	return nil
}

// configAccessors maps config keys to their struct fields.
func configAccessors(config *cliConfig) map[string]*string {
	return map[string]*string{
		"company_id":    &config.CompanyID,
		"environment":   &config.Environment,
		"client_id":     &config.ClientID,
		"client_secret": &config.ClientSecret,
		"access_token":  &config.AccessToken,
		"refresh_token": &config.RefreshToken,
		"token_url":     &config.TokenURL,
		"base_url":      &config.BaseURL,
		"minor_version": &config.MinorVersion,
		"output":        &config.Output,
	}
}

func loadCLIConfig() *cliConfig {
	return &cliConfig{
		CompanyID:    viper.GetString("company_id"),
		Environment:  viper.GetString("environment"),
		ClientID:     viper.GetString("client_id"),
		ClientSecret: viper.GetString("client_secret"),
		AccessToken:  viper.GetString("access_token"),
		RefreshToken: viper.GetString("refresh_token"),
		TokenURL:     viper.GetString("token_url"),
		BaseURL:      viper.GetString("base_url"),
		MinorVersion: viper.GetString("minor_version"),
		Output:       viper.GetString("output"),
	}
}

func saveCLIConfig(config *cliConfig) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ".qbo")

		if err := os.MkdirAll(configDir, constants.ConfigDirPerm); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configFile, data, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Make the new values visible to the rest of this invocation.
	for key, accessor := range configAccessors(config) {
		viper.Set(key, *accessor)
	}

	return nil
}
