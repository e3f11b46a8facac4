// Package wallet plays the role the injected wallet extension plays in
// a browser: it holds enrolled accounts, asks the user for permission
// before handing them out, and signs transactions without exposing
// keys. The dashboard only ever sees it through the Provider interface,
// so tests substitute a double.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// Errors.
var (
	// ErrProviderMissing means no wallet capability is available in
	// this environment (no accounts enrolled).
	ErrProviderMissing = errors.New("no wallet provider detected")
	// ErrAccessDenied means the user refused the account-access prompt.
	ErrAccessDenied = errors.New("account access denied")
	// ErrAccountExists means the address is already enrolled.
	ErrAccountExists = errors.New("account already enrolled")
	// ErrAccountNotFound means no enrolled account has that address.
	ErrAccountNotFound = errors.New("account not found")
)

// Provider is the wallet capability the bridge depends on.
type Provider interface {
	// Detect reports whether a wallet capability is present. It is
	// idempotent within a session.
	Detect() error
	// RequestAccounts prompts for account access and, on approval,
	// returns the ordered list of account addresses (at least one).
	RequestAccounts(ctx context.Context) ([]string, error)
	// Signer returns a signing capability for the index-th account of
	// the most recent RequestAccounts result.
	Signer(index int) (*Signer, error)
}

// ApprovalFunc is the permission prompt: it receives the account
// addresses that would be exposed and returns whether the user agreed.
type ApprovalFunc func(accounts []string) bool

// Account is one enrolled account.
type Account struct {
	Address   string `json:"address"`
	KeyRef    string `json:"key_ref"`
	CreatedAt string `json:"created_at"`
}

// KeyringProvider is a Provider backed by an accounts file and the OS
// keychain.
type KeyringProvider struct {
	path    string
	ks      Keystore
	approve ApprovalFunc
}

// Option configures a KeyringProvider.
type Option func(*KeyringProvider)

// WithKeystore sets a custom keystore (tests use the in-memory one).
func WithKeystore(ks Keystore) Option {
	return func(p *KeyringProvider) { p.ks = ks }
}

// WithApproval sets the permission prompt.
func WithApproval(f ApprovalFunc) Option {
	return func(p *KeyringProvider) { p.approve = f }
}

// NewKeyringProvider creates a provider whose accounts file lives at
// path. Without an approval func every request is approved, which is
// only acceptable in tests; the CLI always installs a prompt.
func NewKeyringProvider(path string, opts ...Option) *KeyringProvider {
	p := &KeyringProvider{
		path:    path,
		approve: func([]string) bool { return true },
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.ks == nil {
		p.ks = DefaultKeystore()
	}
	return p
}

// AccountsPath returns the accounts file inside the config dir.
func AccountsPath(configDir string) string {
	return filepath.Join(configDir, "accounts.json")
}

// Detect reports ErrProviderMissing when no accounts are enrolled —
// the terminal equivalent of the extension not being installed.
func (p *KeyringProvider) Detect() error {
	accounts, err := p.load()
	if err != nil {
		return fmt.Errorf("reading accounts: %w", err)
	}
	if len(accounts) == 0 {
		return ErrProviderMissing
	}
	return nil
}

// RequestAccounts runs the permission prompt and returns the ordered
// account addresses on approval.
func (p *KeyringProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.Detect(); err != nil {
		return nil, err
	}

	accounts, err := p.load()
	if err != nil {
		return nil, err
	}
	addrs := make([]string, len(accounts))
	for i, a := range accounts {
		addrs[i] = a.Address
	}

	if !p.approve(addrs) {
		return nil, ErrAccessDenied
	}
	return addrs, nil
}

// Signer returns the signing capability for the index-th enrolled
// account.
func (p *KeyringProvider) Signer(index int) (*Signer, error) {
	accounts, err := p.load()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(accounts) {
		return nil, fmt.Errorf("account index %d out of range (%d accounts)", index, len(accounts))
	}
	a := accounts[index]
	return NewSigner(a.Address, a.KeyRef, p.ks), nil
}

// Enroll derives the address from a hex private key, stores the key in
// the keystore, and appends the account to the accounts file.
func (p *KeyringProvider) Enroll(hexKey string) (*Account, error) {
	privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	addr := crypto.PubkeyToAddress(privKey.PublicKey).Hex()

	accounts, err := p.load()
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.Address == addr {
			return nil, ErrAccountExists
		}
	}

	ref, err := p.ks.Store(addr, hexKey)
	if err != nil {
		return nil, fmt.Errorf("storing key: %w", err)
	}

	account := Account{
		Address:   addr,
		KeyRef:    ref,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	accounts = append(accounts, account)
	if err := p.save(accounts); err != nil {
		return nil, err
	}
	return &account, nil
}

// List returns all enrolled accounts in enrollment order.
func (p *KeyringProvider) List() ([]Account, error) {
	return p.load()
}

// Remove unenrolls an account and evicts its key from the keystore.
func (p *KeyringProvider) Remove(address string) error {
	accounts, err := p.load()
	if err != nil {
		return err
	}
	for i, a := range accounts {
		if a.Address == address {
			_ = p.ks.Delete(a.KeyRef)
			return p.save(append(accounts[:i], accounts[i+1:]...))
		}
	}
	return ErrAccountNotFound
}

// --- accounts file ---

func (p *KeyringProvider) load() ([]Account, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var accounts []Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (p *KeyringProvider) save(accounts []Account) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o600)
}
