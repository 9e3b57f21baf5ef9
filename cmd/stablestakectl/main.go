// Command stablestakectl is the operator tool for a stablestaked node: it
// exports the event journal, mints caller tokens and checks configuration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stablestake/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "stablestakectl",
		Short:         "StableStake node operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "./stablestake.toml", "Path to the node configuration file")

	load := func() (*config.Config, error) {
		if _, err := os.Stat(cfgPath); err != nil {
			return nil, fmt.Errorf("config %s: %w", cfgPath, err)
		}
		return config.Load(cfgPath)
	}
	root.AddCommand(newExportCmd(load))
	root.AddCommand(newTokenCmd(load))
	root.AddCommand(newValidateCmd(load))
	return root
}

type configLoader func() (*config.Config, error)

func newValidateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the node configuration and deployment registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			deployments, err := config.LoadDeployments(cfg.DeploymentsFile)
			if err != nil {
				return err
			}
			deployment, err := deployments.Resolve(cfg.ChainID)
			if err != nil {
				return err
			}
			if _, err := cfg.Genesis(deployment.SupportedToken); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: chain %d (%s), ledger %s\n", cfg.ChainID, deployment.Name, deployment.Ledger.Hex())
			return nil
		},
	}
}
