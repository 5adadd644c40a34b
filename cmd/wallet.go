package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigincgenesis/bigcli/internal/ui"
	"github.com/bigincgenesis/bigcli/internal/wallet"
)

var (
	walletKeyFlag   string
	walletRemoveYes bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
	Long: `Wallets are stored in wallets.json in the config directory. Private keys
of signing wallets live in the OS keychain, or in an encrypted file when no
keychain is available (set ` + wallet.EnvKeyringBackend + `=file to force it).`,
}

var walletAddCmd = &cobra.Command{
	Use:   "add [name] [address]",
	Short: "Add a signing or watch-only wallet",
	Example: `  bigcli wallet add                        # interactive
  bigcli wallet add alice --key 0xac09...  # signing
  bigcli wallet add bob 0x7099...          # watch-only`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := walletManager()
		out := cmd.OutOrStdout()

		var in ui.WalletInput
		switch {
		case len(args) >= 1 && walletKeyFlag != "":
			in = ui.WalletInput{Name: args[0], Kind: "key", Secret: walletKeyFlag}
		case len(args) == 2:
			in = ui.WalletInput{Name: args[0], Kind: "watch", Secret: args[1]}
		case len(args) == 1:
			return fmt.Errorf("address required for watch-only wallet\n  Usage: bigcli wallet add <name> <address>\n  Or for signing: bigcli wallet add <name> --key <private-key>")
		default:
			if err := ui.RunWalletForm(&in); err != nil {
				return err
			}
		}

		var err error
		if in.Kind == "key" {
			err = mgr.AddWithKey(in.Name, in.Secret)
		} else {
			err = mgr.Add(in.Name, in.Secret)
		}
		if err != nil {
			return err
		}
		w, err := mgr.Get(in.Name)
		if err != nil {
			return err
		}

		kind := "Watch-only"
		if w.CanSign() {
			kind = "Signing"
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("%s wallet %q added: %s", kind, w.Name, ui.Addr(w.Address))))

		if in.Default || cfg.DefaultWallet == "" {
			if err := useWallet(mgr, w.Name); err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Meta("Set as the default wallet."))
		} else {
			fmt.Fprintln(out, ui.Hint(fmt.Sprintf("Set as default with: bigcli wallet use %s", w.Name)))
		}
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets, err := walletManager().List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Info("No wallets configured yet."))
			fmt.Fprintln(out, ui.Hint("Add one with: bigcli wallet add"))
			return nil
		}

		t := ui.NewTable("NAME", "ADDRESS", "TYPE", "DEFAULT")
		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Val(w.Name), ui.Addr(w.Address), ui.Meta(w.Type), def)
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !walletRemoveYes {
			ok, err := ui.Confirm(fmt.Sprintf("Remove wallet %q?", name), "Its private key is deleted from the keychain.")
			if err != nil {
				return fmt.Errorf("%w (or pass --yes)", err)
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Cancelled."))
				return nil
			}
		}
		if err := walletManager().Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := useWallet(walletManager(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q.", args[0])))
		fmt.Fprintln(cmd.OutOrStdout(), ui.Hint("This wallet is used whenever --wallet is not given."))
		return nil
	},
}

func useWallet(mgr *wallet.Manager, name string) error {
	if err := mgr.SetDefault(name); err != nil {
		return err
	}
	cfg.DefaultWallet = name
	return cfg.Save()
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key (hex) for a signing wallet")
	walletRemoveCmd.Flags().BoolVarP(&walletRemoveYes, "yes", "y", false, "skip the confirmation prompt")

	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd)
}
