package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/voltpay/voltcli/internal/ui"
)

var accountKey string

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the enrolled wallet accounts",
}

var accountAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Enroll an account from a hex private key",
	RunE: func(cmd *cobra.Command, args []string) error {
		if accountKey == "" {
			return fmt.Errorf("--key is required")
		}

		provider := newProvider()
		account, err := provider.Enroll(accountKey)
		if err != nil {
			return err
		}

		fmt.Println(ui.Success("Account enrolled"))
		fmt.Println(ui.Meta("Address: ") + ui.Addr(account.Address))
		return nil
	},
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := newProvider()
		accounts, err := provider.List()
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Println(ui.Meta("No accounts enrolled."))
			return nil
		}
		for i, a := range accounts {
			fmt.Printf("%d  %s  %s\n", i, ui.Addr(a.Address), ui.Meta(a.CreatedAt))
		}
		return nil
	},
}

var accountRemoveCmd = &cobra.Command{
	Use:   "remove [address]",
	Short: "Unenroll an account and remove its key",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := newProvider()

		var address string
		if len(args) == 1 {
			address = args[0]
		} else {
			accounts, err := provider.List()
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				fmt.Println(ui.Meta("No accounts enrolled."))
				return nil
			}
			addrs := make([]string, len(accounts))
			for i, a := range accounts {
				addrs[i] = a.Address
			}
			prompt := promptui.Select{
				Label: "Remove which account",
				Items: addrs,
			}
			_, address, err = prompt.Run()
			if err != nil {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
		}

		if !ui.Confirm("Remove " + address + "?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := provider.Remove(address); err != nil {
			return err
		}
		fmt.Println(ui.Success("Account removed"))
		return nil
	},
}

func init() {
	accountAddCmd.Flags().StringVar(&accountKey, "key", "", "hex private key (required)")
	accountCmd.AddCommand(accountAddCmd, accountListCmd, accountRemoveCmd)
}
