package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bigincgenesis/bigcli/internal/config"
	"github.com/bigincgenesis/bigcli/internal/logging"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/bigincgenesis/bigcli/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	verbose     bool
	networkFlag string
	rpcFlag     string
	logLevel    string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "bigcli",
	Short: "Buy and track BigInc Genesis shares from the terminal",
	Long: `bigcli talks to the BigInc Genesis share sale contract.

  View the ownership chart, watch it live, approve a payment token and mint
  shares with USDT or USDC.

The network comes from --network or the configured default (local).
Contract addresses are synced from the deploy artifact with:
  bigcli addresses sync --file deployment/contracts.json`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return setupLogging(cmd)
	},
}

func setupLogging(cmd *cobra.Command) error {
	lvl := cfg.LogLevel
	if logLevel != "" {
		lvl = logLevel
	}
	if verbose {
		lvl = "debug"
		logging.SetTextOutput(cmd.ErrOrStderr())
	} else {
		logging.SetOutput(cmd.ErrOrStderr())
	}
	level, err := logging.ParseLevel(lvl)
	if err != nil {
		return err
	}
	logging.SetLevel(level)
	return nil
}

// Execute runs the root command. Ctrl-C cancels the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgDir, "config", "", "config directory (default: $"+config.EnvConfigDir+" or ~/.bigcli)")
	pf.StringVarP(&networkFlag, "network", "n", "", "network to use (default: configured default)")
	pf.StringVar(&rpcFlag, "rpc", "", "RPC URL to use instead of selecting one")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging in text form")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		sharesCmd,
		watchCmd,
		buyCmd,
		allowanceCmd,
		approveCmd,
		callCmd,
		methodsCmd,
		addressesCmd,
		walletCmd,
		rpcCmd,
		networkCmd,
		configCmd,
	)
}
