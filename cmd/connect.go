package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/voltpay/voltcli/internal/ui"
	"github.com/voltpay/voltcli/internal/wallet"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a wallet account to the charging dashboard",
	Long: `Request access to the enrolled wallet accounts. On approval the
primary account is remembered and the dashboard becomes available.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Banner())

		provider := newProvider()
		b := newBridge(provider)

		if err := b.Detect(); err != nil {
			if errors.Is(err, wallet.ErrProviderMissing) {
				fmt.Println(ui.Notice("No wallet detected.\nEnroll an account first:  voltcli account add --key <hex>"))
				return nil
			}
			return err
		}

		sess, err := b.Connect(cmd.Context())
		if err != nil {
			if errors.Is(err, wallet.ErrAccessDenied) {
				fmt.Println(ui.Warn("Connect cancelled — access was denied."))
				return nil
			}
			return err
		}

		fmt.Println(ui.Success("Wallet connected"))
		fmt.Println(ui.Meta("Account: ") + ui.Addr(sess.Account()))
		fmt.Println(ui.Meta("Network: ") + sess.Network())
		fmt.Println()
		fmt.Println(ui.Meta("Open the dashboard with:  voltcli dashboard"))
		return nil
	},
}
