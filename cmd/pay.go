package cmd

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
	"github.com/voltpay/voltcli/internal/chain"
	"github.com/voltpay/voltcli/internal/contract"
	"github.com/voltpay/voltcli/internal/transfer"
	"github.com/voltpay/voltcli/internal/ui"
	"github.com/voltpay/voltcli/internal/wallet"
)

var (
	payTo     string
	payAmount string
	payYes    bool
)

var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Pay a charging station with one token transfer",
	RunE: func(cmd *cobra.Command, args []string) error {
		if payTo == "" {
			return fmt.Errorf("--to is required")
		}
		if payAmount == "" {
			return fmt.Errorf("--amount is required")
		}
		amount, ok := new(big.Int).SetString(payAmount, 10)
		if !ok || amount.Sign() < 0 {
			return fmt.Errorf("invalid --amount %q: expected a non-negative integer", payAmount)
		}

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
				fmt.Println(ui.Warn("Payment cancelled — access was denied."))
				return nil
			}
			return err
		}

		signer, err := b.Signer(0)
		if err != nil {
			return err
		}

		fmt.Println(ui.Meta("From:     ") + ui.Addr(sess.Account()))
		fmt.Println(ui.Meta("Station:  ") + ui.Addr(payTo))
		fmt.Println(ui.Meta("Amount:   ") + ui.Val(amount.String()+" "+cfg.TokenSymbol))
		fmt.Println(ui.Meta("Network:  ") + sess.Network())

		if !payYes && !ui.Confirm("Submit this payment?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		client := chain.NewClient(cfg.RPCURL)
		initiator := transfer.New(client, cfg.ContractAddress, contract.ChargeTokenABI)

		spin := ui.NewSpinner("Submitting payment...")
		spin.Start()
		pending, err := initiator.SubmitTransfer(cmd.Context(), signer, payTo, amount)
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(ui.Meta("Tx: ") + ui.Addr(pending.Hash))

		spin = ui.NewSpinner("Waiting for confirmation...")
		spin.Start()
		receipt, err := initiator.AwaitConfirmation(cmd.Context(), pending)
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(ui.Success("Payment confirmed"))
		fmt.Println(ui.Meta(fmt.Sprintf("Block %d · gas used %d", receipt.BlockNumber, receipt.GasUsed)))
		return nil
	},
}

func init() {
	payCmd.Flags().StringVar(&payTo, "to", "", "charging station address (required)")
	payCmd.Flags().StringVar(&payAmount, "amount", "", "charging tokens to pay (required)")
	payCmd.Flags().BoolVarP(&payYes, "yes", "y", false, "skip the confirmation prompt")
}
