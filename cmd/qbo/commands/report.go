package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledgerkit-io/qbo-client/internal/constants"
	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	var (
		startDate string
		endDate   string
		params    []string
	)

	cmd := &cobra.Command{
		Use:   "report NAME",
		Short: "Run a named financial report",
		Long: `Run a named financial report:

  qbo report ProfitAndLoss --start 2026-01-01 --end 2026-06-30
  qbo report BalanceSheet --end 2026-06-30
  qbo report AgedReceivables --param report_date=2026-06-30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			report, err := runReport(cmd, client, args[0], startDate, endDate, params)
			if err != nil {
				return fmt.Errorf("failed to run report %s: %w", args[0], err)
			}

			if viper.GetString("output") != constants.FormatTable {
				return renderOutput(report)
			}

			return renderReportTable(report)
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "report period start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "report period end date (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&params, "param", nil, "additional report parameter (key=value)")

	return cmd
}

func runReport(cmd *cobra.Command, client qbo.Client, name, startDate, endDate string, params []string) (*qbo.Report, error) {
	switch {
	case name == "ProfitAndLoss" && len(params) == 0:
		return client.Reports().ProfitAndLoss(cmd.Context(), startDate, endDate)
	case name == "BalanceSheet" && len(params) == 0:
		return client.Reports().BalanceSheet(cmd.Context(), endDate)
	default:
		reportParams := make(map[string]string, len(params)+2)

		if startDate != "" {
			reportParams["start_date"] = startDate
		}

		if endDate != "" {
			reportParams["end_date"] = endDate
		}

		for _, param := range params {
			key, value, found := strings.Cut(param, "=")
			if !found {
				return nil, fmt.Errorf("%w: '%s'", ErrInvalidReportParam, param)
			}

			reportParams[key] = value
		}

		return client.Reports().Run(cmd.Context(), name, reportParams)
	}
}

// renderReportTable flattens the report's nested sections into indented rows.
func renderReportTable(report *qbo.Report) error {
	if report.Header.ReportName != "" {
		title := report.Header.ReportName
		if report.Header.StartPeriod != "" {
			title += fmt.Sprintf(" (%s to %s)", report.Header.StartPeriod, report.Header.EndPeriod)
		}

		fmt.Fprintln(os.Stdout, title)
	}

	headers := make([]interface{}, 0, len(report.Columns.Column))
	for _, column := range report.Columns.Column {
		headers = append(headers, column.ColTitle)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(headers...)

	appendReportRows(table, report.Rows.Row, 0)

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render report table: %w", err)
	}

	return nil
}

func appendReportRows(table *tablewriter.Table, rows []qbo.ReportRow, depth int) {
	for _, row := range rows {
		if row.Header != nil {
			_ = table.Append(reportCellsToRow(row.Header.ColData, depth))
		}

		if len(row.ColData) > 0 {
			_ = table.Append(reportCellsToRow(row.ColData, depth))
		}

		if row.Rows != nil {
			appendReportRows(table, row.Rows.Row, depth+1)
		}

		if row.Summary != nil {
			_ = table.Append(reportCellsToRow(row.Summary.ColData, depth))
		}
	}
}

func reportCellsToRow(cells []qbo.ReportCell, depth int) []string {
	row := make([]string, 0, len(cells))

	for i, cell := range cells {
		value := cell.Value
		if i == 0 {
			value = strings.Repeat("  ", depth) + value
		}

		row = append(row, value)
	}

	return row
}
