package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/bigincgenesis/bigcli/internal/config"
	"github.com/bigincgenesis/bigcli/internal/logging"
	deploysync "github.com/bigincgenesis/bigcli/internal/sync"
	"github.com/bigincgenesis/bigcli/internal/ui"
)

var (
	syncFile     string
	syncWatch    bool
	syncInterval time.Duration
)

var addressesCmd = &cobra.Command{
	Use:   "addresses",
	Short: "Show and sync deployed contract addresses",
}

var addressesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the contract addresses for the current network",
	RunE: func(cmd *cobra.Command, args []string) error {
		network := networkName()
		a := cfg.Addresses(network)

		t := ui.NewTable("CONTRACT", "ADDRESS", "STATUS")
		for _, row := range [][2]string{
			{config.NameGenesis, a.BigIncGenesis},
			{config.NameMockUSDT, a.MockUSDT},
			{config.NameMockUSDC, a.MockUSDC},
		} {
			status := ui.StyleSuccess.Render("set")
			if config.IsPlaceholder(row[1]) {
				status = ui.StyleWarning.Render("not set")
			}
			t.AddRow(row[0], orDash(row[1]), status)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.StyleHeader.Render("Contracts on "+network))
		fmt.Fprintln(out, t.Render())

		st, err := cfg.LoadSync()
		if err != nil {
			return fmt.Errorf("reading sync state: %w", err)
		}
		if st.LastSynced != "" && st.Network == network {
			fmt.Fprintln(out, ui.Meta(fmt.Sprintf("Last synced %s from %s", st.LastSynced, st.Source)))
		}
		return nil
	},
}

var addressesSetCmd = &cobra.Command{
	Use:   "set <contract> <address>",
	Short: "Set one contract address (BigIncGenesis, MockUSDT or MockUSDC)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !common.IsHexAddress(args[1]) {
			return fmt.Errorf("invalid address %q", args[1])
		}
		name := canonicalContract(args[0])
		if name == "" {
			return fmt.Errorf("unknown contract %q (use %s, %s or %s)", args[0], config.NameGenesis, config.NameMockUSDT, config.NameMockUSDC)
		}
		addr := common.HexToAddress(args[1]).Hex()
		network := networkName()
		cfg.ApplyDeployment(network, &config.Deployment{
			Contracts: map[string]config.DeployedContract{name: {Address: addr}},
		})
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s on %s set to %s", name, network, addr)))
		return nil
	},
}

var addressesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy contract addresses from the deploy artifact",
	Long: `Read the artifact written by the deploy scripts and store the
BigIncGenesis, MockUSDT and MockUSDC addresses for the network.

--file takes a path or an http(s) URL. Without it the last synced source
is reused, falling back to ` + config.DefaultDeploymentPath + `.

With --watch the artifact is re-applied every time it changes until Ctrl-C.
Remote artifacts are polled every --interval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := syncSource(cmd)
		if err != nil {
			return err
		}

		// The artifact's own network wins unless --network is given.
		s := deploysync.New(cfg, deploysync.WithInterval(syncInterval))
		r, err := s.Run(cmd.Context(), networkFlag, source)
		if err != nil {
			return err
		}
		printSync(cmd, r)
		if !syncWatch {
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Info("watching "+source+" (Ctrl-C to stop)"))
		return s.Watch(cmd.Context(), networkFlag, source,
			func(r deploysync.Result) { printSync(cmd, r) },
			func(err error) {
				logging.Warn("deployment artifact skipped", logging.Err(err))
			},
		)
	},
}

func syncSource(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("file") {
		return syncFile, nil
	}
	st, err := cfg.LoadSync()
	if err != nil {
		return "", fmt.Errorf("reading sync state: %w", err)
	}
	if st.Source != "" {
		return st.Source, nil
	}
	return syncFile, nil
}

func printSync(cmd *cobra.Command, r deploysync.Result) {
	out := cmd.OutOrStdout()
	if len(r.Changed) == 0 {
		fmt.Fprintln(out, ui.Meta("addresses for "+r.Network+" are up to date"))
		return
	}
	a := cfg.Addresses(r.Network)
	for _, name := range r.Changed {
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("%s → %s", name, ui.Addr(addressOf(a, name)))))
	}
}

func canonicalContract(name string) string {
	for _, n := range []string{config.NameGenesis, config.NameMockUSDT, config.NameMockUSDC} {
		if strings.EqualFold(name, n) {
			return n
		}
	}
	return ""
}

func addressOf(a config.ContractAddresses, name string) string {
	switch name {
	case config.NameGenesis:
		return a.BigIncGenesis
	case config.NameMockUSDT:
		return a.MockUSDT
	case config.NameMockUSDC:
		return a.MockUSDC
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	f := addressesSyncCmd.Flags()
	f.StringVarP(&syncFile, "file", "f", config.DefaultDeploymentPath, "deployment artifact path or URL (JSON or YAML)")
	f.BoolVar(&syncWatch, "watch", false, "keep running and re-sync when the artifact changes")
	f.DurationVar(&syncInterval, "interval", deploysync.DefaultRemoteInterval, "polling interval for a remote artifact")

	addressesCmd.AddCommand(addressesShowCmd, addressesSetCmd, addressesSyncCmd)
}
