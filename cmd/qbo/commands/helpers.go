package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/ledgerkit-io/qbo-client/internal/constants"
	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
	"github.com/ledgerkit-io/qbo-client/pkg/qboclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Common static errors used throughout the commands package.
var (
	ErrUnknownEntity       = errors.New("unknown entity type")
	ErrEntityNotSendable   = errors.New("entity type does not support send or pdf")
	ErrEmptyBatchOperation = errors.New("operation must set query, create, update, or delete")
	ErrInvalidReportParam  = errors.New("report parameter must be key=value")
	ErrUnknownConfigKey    = errors.New("unknown config key")
	ErrNoCompanyConfigured = errors.New("no company configured, set company_id or use --company")
	ErrNotAuthenticated    = errors.New("not authenticated, run 'qbo token set' or 'qbo config set' first")
)

// createClient builds a client from the resolved viper configuration.
func createClient(ctx context.Context) (qbo.Client, error) {
	if viper.GetString("company_id") == "" {
		return nil, ErrNoCompanyConfigured
	}

	if viper.GetString("access_token") == "" && viper.GetString("refresh_token") == "" {
		return nil, ErrNotAuthenticated
	}

	environment, err := qbo.ParseEnvironment(viper.GetString("environment"))
	if err != nil {
		return nil, fmt.Errorf("resolving environment: %w", err)
	}

	client, err := qboclient.New(ctx, &qbo.Config{
		CompanyID:    viper.GetString("company_id"),
		Environment:  environment,
		ClientID:     viper.GetString("client_id"),
		ClientSecret: viper.GetString("client_secret"),
		AccessToken:  viper.GetString("access_token"),
		RefreshToken: viper.GetString("refresh_token"),
		TokenURL:     viper.GetString("token_url"),
		BaseURL:      viper.GetString("base_url"),
		MinorVersion: viper.GetString("minor_version"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// renderOutput writes data in the configured output format. Table output is a
// flattened view; json and yaml render the full structure.
func renderOutput(data interface{}) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return nil
	default:
		return renderTable(data)
	}
}

// renderTable normalizes data through a JSON round trip and renders one row
// per object with the union of scalar fields as columns.
func renderTable(data interface{}) error {
	rows, err := tableRows(data)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		_, _ = os.Stdout.WriteString("No results.\n")

		return nil
	}

	columns := tableColumns(rows)

	headers := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		headers = append(headers, column)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(headers...)

	for _, row := range rows {
		cells := make([]string, 0, len(columns))
		for _, column := range columns {
			cells = append(cells, row[column])
		}

		_ = table.Append(cells)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func tableRows(data interface{}) ([]map[string]string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to flatten output: %w", err)
	}

	var list []map[string]interface{}

	if err := json.Unmarshal(raw, &list); err != nil {
		var single map[string]interface{}

		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("output is not tabular, use --output json: %w", err)
		}

		list = []map[string]interface{}{single}
	}

	rows := make([]map[string]string, 0, len(list))

	for _, item := range list {
		row := make(map[string]string, len(item))

		for key, value := range item {
			switch v := value.(type) {
			case string:
				row[key] = v
			case float64:
				row[key] = strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				row[key] = strconv.FormatBool(v)
			case nil:
				row[key] = ""
			default:
				encoded, _ := json.Marshal(v)
				row[key] = string(encoded)
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// tableColumns returns the union of keys across rows, Id first and the rest
// sorted.
func tableColumns(rows []map[string]string) []string {
	seen := make(map[string]bool)

	for _, row := range rows {
		for key := range row {
			seen[key] = true
		}
	}

	columns := make([]string, 0, len(seen))

	for key := range seen {
		if key != "Id" {
			columns = append(columns, key)
		}
	}

	sort.Strings(columns)

	if seen["Id"] {
		columns = append([]string{"Id"}, columns...)
	}

	return columns
}
