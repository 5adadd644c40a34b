package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/spf13/cobra"

	"github.com/bigincgenesis/bigcli/internal/config"
	"github.com/bigincgenesis/bigcli/internal/contract"
	"github.com/bigincgenesis/bigcli/internal/ui"
)

var (
	callContract string
	callToken    string
	callWallet   string
	callYes      bool
)

var callCmd = &cobra.Command{
	Use:   "call <method> [args...]",
	Short: "Call any sale contract or token method",
	Long: `Call a method from the built-in ABIs. Reads print the decoded outputs;
writes are signed with your wallet and wait for the receipt.

List the methods with: bigcli methods`,
	Example: `  bigcli call get_shares 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266
  bigcli call balanceOf 0xf39F... --contract token --token usdc
  bigcli call withdraw 0x5FbD... 1000000 --yes`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseTarget(callContract)
		if err != nil {
			return err
		}
		m, ok := contract.Lookup(target, args[0])
		if !ok {
			return fmt.Errorf("%w: %s on %s (see: bigcli methods)", contract.ErrUnknownMethod, args[0], target)
		}
		params, err := contract.ParseArgs(m, args[1:])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		var signer *bind.TransactOpts
		if m.Kind == contract.Write {
			mgr := walletManager()
			w, err := resolveWallet(mgr, callWallet)
			if err != nil {
				return err
			}
			if signer, err = s.transactor(ctx, mgr, w); err != nil {
				return err
			}
		}
		a, err := callTarget(ctx, s, target, signer)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if m.Kind == contract.Read {
			rctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
			defer cancel()
			values, err := a.Call(rctx, m, params...)
			if err != nil {
				return err
			}
			for i, v := range values {
				name := m.Outputs[i].Name
				if name == "" {
					name = m.Outputs[i].Type
				}
				fmt.Fprintf(out, "%s: %s\n", ui.Meta(name), ui.Val(contract.FormatValue(v)))
			}
			return nil
		}

		if !callYes {
			ok, err := ui.Confirm("Send "+m.Signature()+"?", "To: "+a.Address().Hex())
			if err != nil {
				return fmt.Errorf("%w (or pass --yes)", err)
			}
			if !ok {
				return errCancelled
			}
		}
		tx, err := a.Invoke(ctx, m, params...)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Info("sent "+tx.Hash().Hex()))
		err = ui.WithSpinner(cmd.ErrOrStderr(), "Waiting for confirmation", func() error {
			return s.client.WaitMined(ctx, tx)
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success("confirmed"))
		if url := s.network.TxURL(tx.Hash().Hex()); url != "" {
			fmt.Fprintln(out, ui.Hint(url))
		}
		return nil
	},
}

func parseTarget(s string) (contract.Target, error) {
	switch strings.ToLower(s) {
	case "", "genesis":
		return contract.GenesisContract, nil
	case "token":
		return contract.TokenContract, nil
	}
	return "", fmt.Errorf("unknown contract %q (use genesis or token)", s)
}

func callTarget(ctx context.Context, s *session, t contract.Target, signer *bind.TransactOpts) (*contract.Adapter, error) {
	if t == contract.GenesisContract {
		g, err := s.genesis(signer)
		if err != nil {
			return nil, err
		}
		return g.Adapter, nil
	}
	g, err := s.genesis(nil)
	if err != nil {
		return nil, err
	}
	addr, err := s.tokenAddress(ctx, g, callToken)
	if err != nil {
		return nil, err
	}
	tok, err := s.token(addr, signer)
	if err != nil {
		return nil, err
	}
	return tok.Adapter, nil
}

var methodsContract string

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List the callable contract methods",
	RunE: func(cmd *cobra.Command, args []string) error {
		methods := contract.Methods()
		if methodsContract != "" {
			t, err := parseTarget(methodsContract)
			if err != nil {
				return err
			}
			methods = contract.MethodsFor(t)
		}

		t := ui.NewTable("CONTRACT", "METHOD", "KIND", "SELECTOR", "RETURNS")
		for _, m := range methods {
			outs := make([]string, len(m.Outputs))
			for i, p := range m.Outputs {
				outs[i] = p.Type
			}
			t.AddRow(string(m.Contract), m.Signature(), m.Kind.String(), m.Selector(), strings.Join(outs, ", "))
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

func init() {
	f := callCmd.Flags()
	f.StringVar(&callContract, "contract", "genesis", "contract to call: genesis or token")
	f.StringVar(&callToken, "token", "usdt", "token for --contract token: usdt or usdc")
	f.StringVarP(&callWallet, "wallet", "w", "", "signing wallet for writes (default: default wallet)")
	f.BoolVarP(&callYes, "yes", "y", false, "skip the confirmation prompt for writes")

	methodsCmd.Flags().StringVar(&methodsContract, "contract", "", "only list methods of genesis or token")
}
