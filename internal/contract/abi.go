// Package contract holds the fixed charging-token contract interface
// and just enough ABI plumbing to call it: 4-byte selectors, 32-byte
// word encoding for address and uint256 arguments, and uint decoding
// for read results. The ABI is static configuration, not discovered at
// runtime.
package contract

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ABIEntry is a single ABI function entry.
type ABIEntry struct {
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Inputs          []ABIParam `json:"inputs"`
	Outputs         []ABIParam `json:"outputs"`
	StateMutability string     `json:"stateMutability"`
}

// ABIParam is a parameter in an ABI entry.
type ABIParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ChargeTokenABI describes the only methods the dashboard touches on
// the charging-token contract.
var ChargeTokenABI = []ABIEntry{
	{
		Name: "transfer",
		Type: "function",
		Inputs: []ABIParam{
			{Name: "recipient", Type: "address"},
			{Name: "amount", Type: "uint256"},
		},
		Outputs:         []ABIParam{{Name: "", Type: "bool"}},
		StateMutability: "nonpayable",
	},
	{
		Name:            "balanceOf",
		Type:            "function",
		Inputs:          []ABIParam{{Name: "account", Type: "address"}},
		Outputs:         []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name:            "creditsOf",
		Type:            "function",
		Inputs:          []ABIParam{{Name: "account", Type: "address"}},
		Outputs:         []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
}

// FindFunction returns the ABI entry named name, or nil.
func FindFunction(abi []ABIEntry, name string) *ABIEntry {
	for i := range abi {
		if abi[i].Type == "function" && abi[i].Name == name {
			return &abi[i]
		}
	}
	return nil
}

// EncodeCall builds calldata for fn: 4-byte selector + encoded args.
func EncodeCall(fn *ABIEntry, args ...string) (string, error) {
	if len(args) != len(fn.Inputs) {
		return "", fmt.Errorf("%s expects %d args, got %d", fn.Name, len(fn.Inputs), len(args))
	}

	var encoded strings.Builder
	encoded.WriteString(Selector(fn))

	for i, param := range fn.Inputs {
		enc, err := encodeParam(param.Type, args[i])
		if err != nil {
			return "", fmt.Errorf("encoding param %s: %w", param.Name, err)
		}
		encoded.WriteString(enc)
	}

	return encoded.String(), nil
}

// Selector computes the 4-byte function selector for fn.
func Selector(fn *ABIEntry) string {
	sig := fn.Name + "("
	types := make([]string, len(fn.Inputs))
	for i, p := range fn.Inputs {
		types[i] = p.Type
	}
	sig += strings.Join(types, ",") + ")"

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// encodeParam encodes a single ABI parameter value as a 32-byte hex word.
func encodeParam(typ, val string) (string, error) {
	switch {
	case typ == "address":
		clean := strings.TrimPrefix(strings.TrimPrefix(val, "0x"), "0X")
		if len(clean) != 40 {
			return "", fmt.Errorf("invalid address: %s", val)
		}
		if _, err := hex.DecodeString(clean); err != nil {
			return "", fmt.Errorf("invalid address: %s", val)
		}
		return fmt.Sprintf("%064s", strings.ToLower(clean)), nil

	case strings.HasPrefix(typ, "uint"):
		n := new(big.Int)
		if _, ok := n.SetString(val, 10); !ok {
			return "", fmt.Errorf("invalid integer: %s", val)
		}
		if n.Sign() < 0 {
			return "", fmt.Errorf("negative value: %s", val)
		}
		return fmt.Sprintf("%064x", n), nil

	default:
		return "", fmt.Errorf("unsupported parameter type: %s", typ)
	}
}

// DecodeUint decodes a single uint256 return word.
func DecodeUint(hexData string) (*big.Int, error) {
	clean := strings.TrimPrefix(hexData, "0x")
	if clean == "" {
		return big.NewInt(0), nil
	}
	n, ok := new(big.Int).SetString(clean, 16)
	if !ok {
		return nil, fmt.Errorf("could not parse uint result: %s", hexData)
	}
	return n, nil
}
