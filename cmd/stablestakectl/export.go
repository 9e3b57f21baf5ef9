package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"stablestake/integrations/exports"
	"stablestake/storage/journal"
)

func newExportCmd(load configLoader) *cobra.Command {
	var (
		format    string
		account   string
		eventType string
		limit     int
		output    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export journaled ledger events as CSV or JSON Lines",
		Long:  "Reads the node's event journal and writes the newest matching records. The SHA-256 checksum of the export is printed to stderr.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			render := exports.EventsCSV
			switch strings.ToLower(format) {
			case "csv":
			case "jsonl":
				render = exports.EventsJSONL
			default:
				return fmt.Errorf("unsupported format %q", format)
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Journal.Driver) == "" {
				return fmt.Errorf("event journal is disabled in the configuration")
			}
			filter := journal.Filter{Type: eventType, Limit: limit}
			if account != "" {
				if !common.IsHexAddress(account) {
					return fmt.Errorf("invalid account %q", account)
				}
				filter.Account = common.HexToAddress(account).Hex()
			}

			j, err := journal.Open(cfg.Journal.Driver, cfg.JournalDSN())
			if err != nil {
				return err
			}
			defer j.Close()
			records, err := j.List(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("list events: %w", err)
			}
			data, sum, err := render(records)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return err
				}
			} else if _, err := out.Write(data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d records, sha256 %s\n", len(records), sum)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "Export format: csv or jsonl")
	cmd.Flags().StringVar(&account, "account", "", "Only export events for this account")
	cmd.Flags().StringVar(&eventType, "type", "", "Only export events of this type")
	cmd.Flags().IntVar(&limit, "limit", 1000, "Maximum number of records")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}
