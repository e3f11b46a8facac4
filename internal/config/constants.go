package config

import "time"

// Gas limit used as the EstimateGas fallback when the node cannot
// simulate the transfer. Conservative upper bound; actual gas used
// will be lower.
const GasLimitTokenTransfer = uint64(60_000)

// Confirmation wait bounds. The charging contract needs a single
// confirmation; two minutes covers several missed blocks on Sepolia
// before the flow gives up and reports the network unavailable.
const (
	ConfirmTimeout      = 2 * time.Minute
	ReceiptPollInterval = 2 * time.Second
)

// AccountKey is the single persisted entry the dashboard owns: the
// address selected at the last successful connect.
const AccountKey = "account"
