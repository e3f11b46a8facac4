// Package transfer submits the one contract call this dashboard makes:
// transfer(recipient, amount) on the charging-token contract. A
// transfer moves through Idle → Built → Submitted and ends Confirmed,
// Rejected, or TimedOut; there is no retry transition, a failed
// transfer is re-initiated from Idle by the user.
package transfer

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog/log"
	"github.com/voltpay/voltcli/internal/chain"
	"github.com/voltpay/voltcli/internal/config"
	"github.com/voltpay/voltcli/internal/contract"
	"github.com/voltpay/voltcli/internal/wallet"
)

// Errors.
var (
	// ErrInvalidRecipient means the recipient failed format validation;
	// the transfer never reached the network.
	ErrInvalidRecipient = errors.New("invalid recipient address")
	// ErrInvalidAmount means the amount is missing or negative.
	ErrInvalidAmount = errors.New("invalid transfer amount")
	// ErrTransferInFlight means a previous transfer has not resolved yet.
	ErrTransferInFlight = errors.New("a transfer is already in flight")
	// ErrTransactionRejected means the network (or the signer) declined
	// the transfer.
	ErrTransactionRejected = errors.New("transaction rejected")
	// ErrNetworkUnavailable means the network gave no answer within the
	// confirmation bound.
	ErrNetworkUnavailable = errors.New("network unavailable")
)

// State is a transfer's position in its lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateBuilt     State = "built"
	StateSubmitted State = "submitted"
	StateConfirmed State = "confirmed"
	StateRejected  State = "rejected"
	StateTimedOut  State = "timed-out"
)

// Pending is the handle for a submitted transfer awaiting confirmation.
type Pending struct {
	Hash      string
	Recipient string
	Amount    *big.Int

	state State
}

// State returns the transfer's current lifecycle state.
func (p *Pending) State() State {
	return p.state
}

// Receipt reports a confirmed transfer.
type Receipt struct {
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
}

// Initiator submits charging payments against the fixed contract.
type Initiator struct {
	client         *chain.Client
	contractAddr   string
	abi            []contract.ABIEntry
	confirmTimeout time.Duration
	pollInterval   time.Duration

	mu       sync.Mutex
	inFlight bool
}

// Option configures an Initiator.
type Option func(*Initiator)

// WithConfirmTimeout overrides the confirmation bound (tests shorten it).
func WithConfirmTimeout(timeout, poll time.Duration) Option {
	return func(i *Initiator) {
		i.confirmTimeout = timeout
		i.pollInterval = poll
	}
}

// New creates an Initiator bound to the deployed charging contract.
func New(client *chain.Client, contractAddr string, abi []contract.ABIEntry, opts ...Option) *Initiator {
	i := &Initiator{
		client:         client,
		contractAddr:   contractAddr,
		abi:            abi,
		confirmTimeout: config.ConfirmTimeout,
		pollInterval:   config.ReceiptPollInterval,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// SubmitTransfer validates, builds, signs, and broadcasts one
// transfer(recipient, amount) call. It returns as soon as the network
// has accepted the raw transaction; confirmation is a separate wait.
// Only one transfer may be in flight at a time.
func (i *Initiator) SubmitTransfer(ctx context.Context, signer *wallet.Signer, recipient string, amount *big.Int) (*Pending, error) {
	// Format validation only; balance and existence checks are the
	// contract's problem.
	if !common.IsHexAddress(recipient) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRecipient, recipient)
	}
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	i.mu.Lock()
	if i.inFlight {
		i.mu.Unlock()
		return nil, ErrTransferInFlight
	}
	i.inFlight = true
	i.mu.Unlock()

	pending, err := i.submit(ctx, signer, recipient, amount)
	if err != nil {
		i.release()
		return nil, err
	}
	return pending, nil
}

func (i *Initiator) submit(ctx context.Context, signer *wallet.Signer, recipient string, amount *big.Int) (*Pending, error) {
	fn := contract.FindFunction(i.abi, "transfer")
	if fn == nil {
		return nil, fmt.Errorf("transfer function not found in ABI")
	}

	calldata, err := contract.EncodeCall(fn, recipient, amount.String())
	if err != nil {
		return nil, fmt.Errorf("encoding call: %w", err)
	}

	from := signer.Address()

	gas, err := i.client.EstimateGas(ctx, from, i.contractAddr, calldata)
	if err != nil {
		gas = config.GasLimitTokenTransfer // fallback
	}

	gasPrice, err := i.client.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := i.client.PendingNonce(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}

	chainID, err := i.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting chain id: %w", err)
	}

	toAddr := common.HexToAddress(i.contractAddr)
	calldataBytes, err := hex.DecodeString(calldata[2:])
	if err != nil {
		return nil, fmt.Errorf("decoding calldata: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &toAddr,
		Value:     big.NewInt(0),
		Data:      calldataBytes,
	})

	pending := &Pending{Recipient: recipient, Amount: new(big.Int).Set(amount), state: StateBuilt}

	raw, err := signer.SignTx(tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := i.client.SendRawTransaction(ctx, "0x"+hex.EncodeToString(raw))
	if err != nil {
		return nil, fmt.Errorf("broadcasting transaction: %w", err)
	}

	pending.Hash = hash
	pending.state = StateSubmitted
	log.Debug().Str("hash", hash).Str("recipient", recipient).Str("amount", amount.String()).Msg("transfer submitted")
	return pending, nil
}

// AwaitConfirmation suspends until the transfer is mined (one
// confirmation) or the configured bound elapses. Terminal either way;
// nothing is retried.
func (i *Initiator) AwaitConfirmation(ctx context.Context, pending *Pending) (*Receipt, error) {
	defer i.release()

	receipt, err := i.client.WaitForReceipt(ctx, pending.Hash, i.confirmTimeout, i.pollInterval)
	if err != nil {
		pending.state = StateTimedOut
		return nil, fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}

	if receipt.Status == 0 {
		pending.state = StateRejected
		return nil, fmt.Errorf("%w: transaction %s reverted", ErrTransactionRejected, pending.Hash)
	}

	pending.state = StateConfirmed
	return &Receipt{
		TxHash:      receipt.Hash,
		BlockNumber: receipt.BlockNumber,
		GasUsed:     receipt.GasUsed,
	}, nil
}

// InFlight reports whether a transfer is awaiting confirmation. Views
// use this to disable the pay control.
func (i *Initiator) InFlight() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.inFlight
}

func (i *Initiator) release() {
	i.mu.Lock()
	i.inFlight = false
	i.mu.Unlock()
}
