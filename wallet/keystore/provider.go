// Package walletks adapts a local go-ethereum keystore to the wallet provider
// interface the session service expects. It stands in for a browser wallet in
// server-side and CLI deployments: accounts come from encrypted key files,
// chain switching re-dials the RPC endpoint registered for the target chain.
package walletks

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/edutoken/dapp/core"
	"github.com/edutoken/dapp/core/chain"
)

// Provider is a chain.Provider backed by a keystore directory and a set of
// known RPC endpoints, one per chain id.
type Provider struct {
	name       string
	ks         *keystore.KeyStore
	passphrase string

	mu         sync.Mutex
	endpoints  map[string]string // chain id (hex) -> RPC URL
	client     *rpc.Client
	chainID    string
	authorized bool

	accountsHandler func([]common.Address)
	chainHandler    func(chainID string)

	events chan accounts.WalletEvent
	sub    event.Subscription
}

var _ chain.Provider = (*Provider)(nil)

// NewProvider opens the keystore at dir and registers the given network as the
// provider's starting chain.
func NewProvider(name, dir, passphrase string, network core.NetworkConfig) *Provider {
	p := &Provider{
		name:       name,
		ks:         keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP),
		passphrase: passphrase,
		endpoints:  make(map[string]string),
		chainID:    network.ChainID,
		events:     make(chan accounts.WalletEvent, 16),
	}
	if len(network.RPCURLs) > 0 {
		p.endpoints[normalizeChainID(network.ChainID)] = network.RPCURLs[0]
	}
	p.sub = p.ks.Subscribe(p.events)
	go p.watchWallets()
	return p
}

func (p *Provider) Name() string { return p.name }

// Available reports whether the keystore holds at least one account.
func (p *Provider) Available() bool {
	return len(p.ks.Accounts()) > 0
}

func (p *Provider) Authorized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.authorized
}

// RequestAccounts unlocks the keystore accounts with the configured
// passphrase. A wrong passphrase maps to the user-rejected code: the
// credential holder declined, as far as the session logic is concerned.
func (p *Provider) RequestAccounts(context.Context) ([]common.Address, error) {
	accts := p.ks.Accounts()
	addrs := make([]common.Address, 0, len(accts))
	for _, acct := range accts {
		if err := p.ks.Unlock(acct, p.passphrase); err != nil {
			return nil, &chain.ProviderError{Code: chain.CodeUserRejected, Message: err.Error()}
		}
		addrs = append(addrs, acct.Address)
	}
	p.mu.Lock()
	p.authorized = len(addrs) > 0
	p.mu.Unlock()
	return addrs, nil
}

func (p *Provider) ChainID(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chainID, nil
}

// SwitchChain re-dials the endpoint registered for the target chain and
// verifies the node actually serves it.
func (p *Provider) SwitchChain(ctx context.Context, chainID string) error {
	p.mu.Lock()
	url, ok := p.endpoints[normalizeChainID(chainID)]
	p.mu.Unlock()
	if !ok {
		return &chain.ProviderError{Code: chain.CodeUnknownChain, Message: "no endpoint registered for chain " + chainID}
	}

	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return errors.Wrapf(err, "dialing %s", url)
	}
	var nodeChainID string
	if err := client.CallContext(ctx, &nodeChainID, "eth_chainId"); err != nil {
		client.Close()
		return errors.Wrap(err, "reading node chain id")
	}
	if !chain.SameChain(nodeChainID, chainID) {
		client.Close()
		return errors.Errorf("endpoint %s serves chain %s, not %s", url, nodeChainID, chainID)
	}

	p.mu.Lock()
	if p.client != nil {
		p.client.Close()
	}
	p.client = client
	p.chainID = chainID
	handler := p.chainHandler
	p.mu.Unlock()

	if handler != nil {
		handler(chainID)
	}
	return nil
}

func (p *Provider) AddChain(_ context.Context, cfg core.NetworkConfig) error {
	if len(cfg.RPCURLs) == 0 {
		return errors.New("network config has no RPC URL")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endpoints[normalizeChainID(cfg.ChainID)] = cfg.RPCURLs[0]
	return nil
}

func (p *Provider) OnAccountsChanged(h func([]common.Address)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accountsHandler = h
}

func (p *Provider) OnChainChanged(h func(string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chainHandler = h
}

// TransactorFor returns signing options bound to the given keystore account
// and the provider's current chain.
func (p *Provider) TransactorFor(_ context.Context, from common.Address) (*bind.TransactOpts, error) {
	p.mu.Lock()
	chainID := p.chainID
	p.mu.Unlock()

	numericID, err := parseChainID(chainID)
	if err != nil {
		return nil, err
	}
	acct := accounts.Account{Address: from}
	if !p.ks.HasAddress(from) {
		return nil, errors.Errorf("account %s not in keystore", from.Hex())
	}
	return bind.NewKeyStoreTransactorWithChainID(p.ks, acct, numericID)
}

// Close tears down the wallet event subscription and the RPC connection.
func (p *Provider) Close() {
	if p.sub != nil {
		p.sub.Unsubscribe()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}

// watchWallets translates keystore arrivals and drops into account events.
func (p *Provider) watchWallets() {
	for range p.events {
		accts := p.ks.Accounts()
		addrs := make([]common.Address, len(accts))
		for i, acct := range accts {
			addrs[i] = acct.Address
		}

		p.mu.Lock()
		if len(addrs) == 0 {
			p.authorized = false
		}
		handler := p.accountsHandler
		p.mu.Unlock()

		if handler != nil {
			handler(addrs)
		}
	}
}

func normalizeChainID(chainID string) string {
	return strings.ToLower(chainID)
}

func parseChainID(chainID string) (*big.Int, error) {
	s := strings.TrimPrefix(normalizeChainID(chainID), "0x")
	id, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, errors.Errorf("malformed chain id %q", chainID)
	}
	return id, nil
}
