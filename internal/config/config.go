package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	defaultNetwork  = "sepolia"
	defaultRPCURL   = "https://ethereum-sepolia-rpc.publicnode.com"
	defaultContract = "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"
	defaultSymbol   = "VOLT"
	defaultDecimals = 0
	defaultCurrency = "usd"
	defaultCoinID   = "ethereum"

	configFile = "config.json"
)

// Config holds the client-bundled deployment configuration: which test
// network to talk to and where the charging-token contract lives.
// Neither is user-selectable at runtime; they are fixed per deployment
// and only change via the config file or environment overrides.
type Config struct {
	Network         string  `json:"network"`
	RPCURL          string  `json:"rpc_url"`
	ContractAddress string  `json:"contract_address"`
	TokenSymbol     string  `json:"token_symbol"`
	TokenDecimals   int     `json:"token_decimals"`
	PriceCurrency   string  `json:"price_currency"`
	CoinGeckoID     string  `json:"coingecko_id"`
	UnitPricePerKWh float64 `json:"unit_price_per_kwh"` // in charging tokens

	// internal: config dir path used for Save()
	configDir string
}

// Load reads config from dir (or creates defaults). dir defaults to
// ~/.voltcli. A .env file in the working directory and VOLTCLI_*
// environment variables override the file values.
func Load(dir string) (*Config, error) {
	_ = godotenv.Load() // best-effort; env vars may be set externally

	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".voltcli")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
		cfg.configDir = dir
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		Network:         defaultNetwork,
		RPCURL:          defaultRPCURL,
		ContractAddress: defaultContract,
		TokenSymbol:     defaultSymbol,
		TokenDecimals:   defaultDecimals,
		PriceCurrency:   defaultCurrency,
		CoinGeckoID:     defaultCoinID,
		UnitPricePerKWh: 1,
		configDir:       dir,
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("VOLTCLI_NETWORK"); v != "" {
		cfg.Network = v
	}
	if v := os.Getenv("VOLTCLI_RPC_URL"); v != "" {
		cfg.RPCURL = v
	}
	if v := os.Getenv("VOLTCLI_CONTRACT"); v != "" {
		cfg.ContractAddress = v
	}
}
