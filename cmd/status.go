package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/voltpay/voltcli/internal/chain"
	"github.com/voltpay/voltcli/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status <txhash>",
	Short: "Check the status of a submitted payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := chain.NewClient(cfg.RPCURL)

		receipt, err := client.TransactionReceipt(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if receipt == nil {
			fmt.Println(ui.Warn("Pending — not mined yet."))
			return nil
		}

		if receipt.Status == 1 {
			fmt.Println(ui.Success("Confirmed"))
		} else {
			fmt.Println(ui.Err("Reverted"))
		}
		fmt.Println(ui.Meta(fmt.Sprintf("Block %d · gas used %d", receipt.BlockNumber, receipt.GasUsed)))
		return nil
	},
}
