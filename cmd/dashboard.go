package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/spf13/cobra"
	"github.com/voltpay/voltcli/internal/chain"
	"github.com/voltpay/voltcli/internal/contract"
	"github.com/voltpay/voltcli/internal/price"
	"github.com/voltpay/voltcli/internal/transfer"
	"github.com/voltpay/voltcli/internal/ui"
	"github.com/voltpay/voltcli/internal/wallet"
)

var (
	dashStation  string
	dashUnits    string
	dashInterval int
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live charging dashboard: unit price, balance, credits, pay",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		units, ok := new(big.Int).SetString(dashUnits, 10)
		if !ok || units.Sign() < 0 {
			return fmt.Errorf("invalid --units %q: expected a non-negative integer", dashUnits)
		}

		client := chain.NewClient(cfg.RPCURL)
		reader := contract.NewReader(client, cfg.ContractAddress, contract.ChargeTokenABI)
		initiator := transfer.New(client, cfg.ContractAddress, contract.ChargeTokenABI)
		prices := price.NewFetcher(cfg.PriceCurrency)

		account := sess.Account()

		program := ui.NewDashboard(ui.DashboardConfig{
			Account:  account,
			Network:  sess.Network(),
			Symbol:   cfg.TokenSymbol,
			Station:  dashStation,
			Units:    units.String(),
			Interval: time.Duration(dashInterval) * time.Second,
			Fetch: func() (ui.Stats, error) {
				ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
				defer cancel()

				balance, err := reader.BalanceOf(ctx, account)
				if err != nil {
					return ui.Stats{}, err
				}
				credits, err := reader.CreditsOf(ctx, account)
				if err != nil {
					return ui.Stats{}, err
				}

				stats := ui.Stats{
					Balance: chain.FormatUnits(balance, cfg.TokenDecimals),
					Credits: credits.String(),
				}
				if unit, err := prices.UnitPrice(cfg.CoinGeckoID, cfg.UnitPricePerKWh); err == nil {
					stats.UnitPrice = fmt.Sprintf("%.2f %s/kWh", unit, cfg.PriceCurrency)
				} else {
					stats.UnitPrice = fmt.Sprintf("%.2f %s/kWh", cfg.UnitPricePerKWh, cfg.TokenSymbol)
				}
				return stats, nil
			},
			Pay: func() (string, error) {
				signer, err := b.Signer(0)
				if err != nil {
					return "", err
				}
				pending, err := initiator.SubmitTransfer(cmd.Context(), signer, dashStation, units)
				if err != nil {
					return "", err
				}
				receipt, err := initiator.AwaitConfirmation(cmd.Context(), pending)
				if err != nil {
					return "", err
				}
				return receipt.TxHash, nil
			},
		})

		_, err = program.Run()
		return err
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashStation, "station", "0xC4C7AACE8A168B7DCdD0dD0bded0D1F329aaD1dc", "charging station address to pay")
	dashboardCmd.Flags().StringVar(&dashUnits, "units", "5", "charging tokens per payment")
	dashboardCmd.Flags().IntVar(&dashInterval, "interval", 15, "refresh interval in seconds")
}
