package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigincgenesis/bigcli/internal/chain"
	"github.com/bigincgenesis/bigcli/internal/config"
	"github.com/bigincgenesis/bigcli/internal/rpc"
	"github.com/bigincgenesis/bigcli/internal/ui"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage RPC endpoints",
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <network> <url>",
	Short: "Add a custom RPC URL for a network",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := lookupNetwork(args[0])
		if err != nil {
			return err
		}
		name, url := n.Name, args[1]
		if err := cfg.AddRPC(name, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Added RPC for %s: %s", name, url)))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <network> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]
		if err := cfg.RemoveRPC(name, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Removed RPC for %s: %s", name, url)))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list [network]",
	Short: "List the RPCs for a network",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := networkArg(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.StyleTitle.Render("RPCs for "+n.DisplayName))
		fmt.Fprintln(out, ui.StyleHeader.Render("Built-in:"))
		for _, r := range n.RPCs {
			fmt.Fprintf(out, "  %s\n", r)
		}
		if custom := cfg.GetRPCs(n.Name); len(custom) > 0 {
			fmt.Fprintln(out, ui.StyleHeader.Render("Custom:"))
			for _, r := range custom {
				fmt.Fprintf(out, "  %s\n", r)
			}
		}
		return nil
	},
}

var rpcBenchCmd = &cobra.Command{
	Use:     "bench [network]",
	Aliases: []string{"benchmark"},
	Short:   "Benchmark the RPCs of a network and show which one is selected",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := networkArg(args)
		if err != nil {
			return err
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()

		var results []rpc.BenchmarkResult
		_ = ui.WithSpinner(cmd.ErrOrStderr(), "Benchmarking "+n.DisplayName+" RPCs", func() error {
			results = rpc.BenchmarkEVM(ctx, endpointURLs(n))
			return nil
		})

		selected := ""
		if best, err := rpc.NewPicker(algo).Pick(rpc.ResultsToEndpoints(results)); err == nil {
			selected = best.URL
		}

		t := ui.NewTable("RPC URL", "LATENCY", "BLOCK", "STATUS", "")
		for _, r := range results {
			status := ui.StyleSuccess.Render("healthy")
			latency := fmt.Sprintf("%dms", r.Latency.Milliseconds())
			block := fmt.Sprintf("%d", r.BlockNumber)
			if r.Err != nil {
				status, latency, block = ui.StyleError.Render("down"), "-", "-"
			}
			mark := ""
			if r.URL == selected {
				mark = ui.StyleBrand.Render("← " + string(algo))
			}
			t.AddRow(r.URL, latency, block, status, mark)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		if selected == "" {
			return rpc.ErrNoHealthyRPC
		}
		return nil
	},
}

// networkArg resolves the optional network argument, else the current one.
func networkArg(args []string) (*chain.Network, error) {
	if len(args) == 1 {
		return lookupNetwork(args[0])
	}
	return resolveNetwork()
}

func init() {
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchCmd)
}
