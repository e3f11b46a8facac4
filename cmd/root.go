package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/voltpay/voltcli/internal/bridge"
	"github.com/voltpay/voltcli/internal/config"
	"github.com/voltpay/voltcli/internal/logger"
	"github.com/voltpay/voltcli/internal/store"
	"github.com/voltpay/voltcli/internal/ui"
	"github.com/voltpay/voltcli/internal/wallet"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/voltpay/voltcli/cmd.Version=1.2.3" .
var Version = "1.0.0"

var (
	cfgDir  string
	cfg     *config.Config
	verbose bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "voltcli",
	Short: "Terminal dashboard for the VoltCharge EV charging network",
	Long: `voltcli — pay for EV charging with charging tokens, from the terminal.

  Connect a local wallet account, check the charging unit price, your
  token balance and credits, and pay a charging station with a single
  token transfer on the configured test network.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		logger.Init(verbose)
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// VOLTCLI_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("VOLTCLI_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.voltcli)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		accountCmd,
		connectCmd,
		dashboardCmd,
		payCmd,
		statusCmd,
	)
}

// newProvider builds the wallet provider with the interactive
// permission prompt installed.
func newProvider() *wallet.KeyringProvider {
	return wallet.NewKeyringProvider(
		wallet.AccountsPath(cfg.Dir()),
		wallet.WithApproval(ui.ApproveAccounts),
	)
}

// newBridge wires the provider to the persisted account store on the
// configured network.
func newBridge(provider wallet.Provider) *bridge.Bridge {
	st := store.NewFileStore(store.DefaultPath(cfg.Dir()))
	return bridge.New(provider, st, cfg.Network)
}
