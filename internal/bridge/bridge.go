// Package bridge connects the dashboard to the wallet provider: it
// requests account access, remembers the resulting session, and hands
// out signers bound to the approved accounts. The provider and the
// persistent store are injected so the flow can run against doubles.
package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/voltpay/voltcli/internal/config"
	"github.com/voltpay/voltcli/internal/store"
	"github.com/voltpay/voltcli/internal/wallet"
)

// ErrNoActiveSession means a signer was requested before any
// successful Connect.
var ErrNoActiveSession = errors.New("no active wallet session")

// Session is the in-memory result of a successful connect: the ordered
// account list the user approved, plus the network the bridge was
// configured with. It lives until the process exits.
type Session struct {
	accounts []string
	network  string
}

// Accounts returns the approved account addresses in provider order.
func (s *Session) Accounts() []string {
	out := make([]string, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// Account returns the primary (first) account address.
func (s *Session) Account() string {
	return s.accounts[0]
}

// Network returns the network this session is bound to.
func (s *Session) Network() string {
	return s.network
}

// Bridge mediates between the dashboard and the wallet provider.
type Bridge struct {
	provider wallet.Provider
	store    store.Store
	network  string
	session  *Session
}

// New creates a Bridge. The network is fixed at construction and not
// user-selectable afterwards.
func New(provider wallet.Provider, st store.Store, network string) *Bridge {
	return &Bridge{provider: provider, store: st, network: network}
}

// Detect reports whether a wallet provider is present, without
// prompting. Repeated calls within one session return the same result
// as long as no accounts are enrolled or removed.
func (b *Bridge) Detect() error {
	return b.provider.Detect()
}

// Connect requests account access and, on approval, persists the first
// account address and opens a session. The flow suspends at the
// provider's permission prompt.
func (b *Bridge) Connect(ctx context.Context) (*Session, error) {
	accounts, err := b.provider.RequestAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("provider returned no accounts")
	}

	if err := b.store.Put(config.AccountKey, accounts[0]); err != nil {
		return nil, fmt.Errorf("persisting account: %w", err)
	}
	log.Debug().Str("account", accounts[0]).Str("network", b.network).Msg("wallet connected")

	b.session = &Session{accounts: accounts, network: b.network}
	return b.session, nil
}

// Signer returns a signing capability for the index-th account of the
// current session. Fails with ErrNoActiveSession before a successful
// Connect.
func (b *Bridge) Signer(index int) (*wallet.Signer, error) {
	if b.session == nil {
		return nil, ErrNoActiveSession
	}
	if index < 0 || index >= len(b.session.accounts) {
		return nil, fmt.Errorf("account index %d out of range (%d accounts in session)", index, len(b.session.accounts))
	}

	signer, err := b.provider.Signer(index)
	if err != nil {
		return nil, err
	}
	// The provider's account list may have changed since Connect; the
	// signer must match what the user approved.
	if signer.Address() != b.session.accounts[index] {
		return nil, fmt.Errorf("account %d changed since connect (have %s, session %s)",
			index, signer.Address(), b.session.accounts[index])
	}
	return signer, nil
}

// LastAccount returns the persisted account address from the previous
// connect, if any.
func (b *Bridge) LastAccount() (string, bool) {
	return b.store.Get(config.AccountKey)
}
