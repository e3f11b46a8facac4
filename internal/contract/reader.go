package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/voltpay/voltcli/internal/chain"
)

// Reader calls the charging-token contract's view functions.
type Reader struct {
	client  *chain.Client
	address string
	abi     []ABIEntry
}

// NewReader creates a Reader bound to the deployed contract.
func NewReader(client *chain.Client, address string, abi []ABIEntry) *Reader {
	return &Reader{client: client, address: address, abi: abi}
}

// BalanceOf returns the token balance of account.
func (r *Reader) BalanceOf(ctx context.Context, account string) (*big.Int, error) {
	return r.readUint(ctx, "balanceOf", account)
}

// CreditsOf returns the charging credits of account.
func (r *Reader) CreditsOf(ctx context.Context, account string) (*big.Int, error) {
	return r.readUint(ctx, "creditsOf", account)
}

func (r *Reader) readUint(ctx context.Context, funcName, account string) (*big.Int, error) {
	fn := FindFunction(r.abi, funcName)
	if fn == nil {
		return nil, fmt.Errorf("function %q not found in ABI", funcName)
	}

	calldata, err := EncodeCall(fn, account)
	if err != nil {
		return nil, fmt.Errorf("encoding call: %w", err)
	}

	result, err := r.client.CallContract(ctx, r.address, calldata)
	if err != nil {
		return nil, fmt.Errorf("contract call failed: %w", err)
	}

	return DecodeUint(result)
}
