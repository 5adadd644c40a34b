package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigincgenesis/bigcli/internal/chain"
	"github.com/bigincgenesis/bigcli/internal/config"
	"github.com/bigincgenesis/bigcli/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "List networks and pick the default",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the supported networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		t := ui.NewTable("NAME", "DISPLAY", "CHAIN ID", "CURRENCY", "SALE CONTRACT", "")
		for _, n := range reg.All() {
			sale := ui.StyleWarning.Render("not set")
			if a := cfg.Addresses(n.Name).BigIncGenesis; !config.IsPlaceholder(a) {
				sale = ui.TruncateAddr(a)
			}
			def := ""
			if n.Name == cfg.DefaultNetwork {
				def = ui.StyleSuccess.Render("default")
			}
			t.AddRow(n.Name, n.DisplayName, fmt.Sprintf("%d", n.ChainID), n.NativeCurrency, sale, def)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d networks", len(reg.All()))))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <network>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setDefaultNetwork(cmd, args[0])
	},
}

func setDefaultNetwork(cmd *cobra.Command, name string) error {
	n, err := lookupNetwork(name)
	if err != nil {
		return err
	}
	cfg.DefaultNetwork = n.Name
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default network set to %s", n.DisplayName)))
	return nil
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd)
}
