package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bigincgenesis/bigcli/internal/logging"
	"github.com/bigincgenesis/bigcli/internal/rpc"
	"github.com/bigincgenesis/bigcli/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.StyleTitle.Render("Current Configuration"))
		fmt.Fprintln(out, string(data))
		fmt.Fprintln(out, ui.Meta("Config directory: "+cfg.Dir()))
		return nil
	},
}

var configSetPollIntervalCmd = &cobra.Command{
	Use:   "set-poll-interval <seconds>",
	Short: "Set how often watch re-reads the contracts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secs, err := strconv.Atoi(args[0])
		if err != nil || secs <= 0 {
			return fmt.Errorf("poll interval must be a positive number of seconds, got %q", args[0])
		}
		cfg.PollInterval = secs
		return saveAndReport(cmd, fmt.Sprintf("Poll interval set to %ds", secs))
	},
}

var configSetDefaultNetworkCmd = &cobra.Command{
	Use:   "set-default-network <network>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setDefaultNetwork(cmd, args[0])
	},
}

var configSetDefaultWalletCmd = &cobra.Command{
	Use:   "set-default-wallet <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := useWallet(walletManager(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q", args[0])))
		return nil
	},
}

var configSetRPCAlgorithmCmd = &cobra.Command{
	Use:   "set-rpc-algorithm <fastest|round-robin|failover>",
	Short: "Set how an RPC endpoint is selected",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		algo, err := rpc.ParseAlgorithm(args[0])
		if err != nil {
			return err
		}
		cfg.RPCAlgorithm = string(algo)
		return saveAndReport(cmd, fmt.Sprintf("RPC algorithm set to %q", algo))
	},
}

var configSetLogLevelCmd = &cobra.Command{
	Use:   "set-log-level <debug|info|warn|error>",
	Short: "Set the default log level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := logging.ParseLevel(args[0]); err != nil {
			return err
		}
		cfg.LogLevel = args[0]
		return saveAndReport(cmd, fmt.Sprintf("Log level set to %q", args[0]))
	},
}

func saveAndReport(cmd *cobra.Command, msg string) error {
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success(msg))
	return nil
}

func init() {
	configCmd.AddCommand(
		configListCmd,
		configSetPollIntervalCmd,
		configSetDefaultNetworkCmd,
		configSetDefaultWalletCmd,
		configSetRPCAlgorithmCmd,
		configSetLogLevelCmd,
	)
}
