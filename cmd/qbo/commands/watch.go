package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var (
		entities []string
		interval time.Duration
		natsURL  string
		subject  string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll for changed entities",
		Long: `Poll change data capture for modified entities and print each change.

With --nats, every changed entity is also published as JSON to
SUBJECT.<entity>.<id>:

  qbo watch --entities Invoice,Payment --interval 30s --nats nats://localhost:4222`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			var conn *nats.Conn

			if natsURL != "" {
				conn, err = nats.Connect(natsURL)
				if err != nil {
					return fmt.Errorf("failed to connect to NATS: %w", err)
				}

				defer conn.Close()
			}

			return watchLoop(cmd, client, conn, entities, interval, subject)
		},
	}

	cmd.Flags().StringSliceVar(&entities, "entities", []string{"Invoice", "Customer", "Payment"}, "entity types to watch")
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "poll interval")
	cmd.Flags().StringVar(&natsURL, "nats", "", "NATS server URL to publish changes to")
	cmd.Flags().StringVar(&subject, "subject", "qbo.cdc", "NATS subject prefix")

	return cmd
}

func watchLoop(cmd *cobra.Command, client qbo.Client, conn *nats.Conn, entities []string, interval time.Duration, subject string) error {
	ctx := cmd.Context()
	since := time.Now().Add(-interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		polledAt := time.Now()

		changes, err := client.ChangeDataCapture().Changes(ctx, entities, since)
		if err != nil {
			return fmt.Errorf("change poll failed: %w", err)
		}

		for _, changeSet := range changes.Changes {
			for _, entity := range changeSet.Entities {
				printChange(changeSet.EntityName, entity)

				if conn != nil {
					target := fmt.Sprintf("%s.%s.%s", subject, strings.ToLower(changeSet.EntityName), entity.ID)
					if err := conn.Publish(target, entity.Raw); err != nil {
						return fmt.Errorf("failed to publish change: %w", err)
					}
				}
			}
		}

		since = polledAt

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func printChange(entityName string, entity qbo.CDCEntity) {
	status := entity.Status
	if status == "" {
		status = "Updated"
	}

	fmt.Fprintf(os.Stdout, "%s %s %s\n", time.Now().Format(time.RFC3339), status, entityName+"/"+entity.ID)
}
