package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/edutoken/dapp/core"
)

// FakeProvider is a scripted wallet for tests: preloaded accounts and chain,
// optional canned failures, and manual event firing.
type FakeProvider struct {
	WalletName    string
	Present       bool
	PreAuthorized bool
	Accounts      []common.Address
	Chain         string

	RequestErr error
	SwitchErr  error
	AddErr     error

	KnownChains map[string]bool // chains the wallet can switch to

	RequestCalls int
	SwitchCalls  int
	AddCalls     int

	accountsHandler func([]common.Address)
	chainHandler    func(string)
}

var _ Provider = (*FakeProvider)(nil)

func (p *FakeProvider) Name() string {
	if p.WalletName == "" {
		return "fake"
	}
	return p.WalletName
}

func (p *FakeProvider) Available() bool { return p.Present }

func (p *FakeProvider) Authorized() bool { return p.PreAuthorized }

func (p *FakeProvider) RequestAccounts(context.Context) ([]common.Address, error) {
	p.RequestCalls++
	if p.RequestErr != nil {
		return nil, p.RequestErr
	}
	return p.Accounts, nil
}

func (p *FakeProvider) ChainID(context.Context) (string, error) {
	return p.Chain, nil
}

func (p *FakeProvider) SwitchChain(_ context.Context, chainID string) error {
	p.SwitchCalls++
	if p.SwitchErr != nil {
		return p.SwitchErr
	}
	if p.KnownChains != nil && !p.KnownChains[chainID] {
		return &ProviderError{Code: CodeUnknownChain, Message: "Unrecognized chain ID"}
	}
	p.Chain = chainID
	return nil
}

func (p *FakeProvider) AddChain(_ context.Context, cfg core.NetworkConfig) error {
	p.AddCalls++
	if p.AddErr != nil {
		return p.AddErr
	}
	if p.KnownChains == nil {
		p.KnownChains = make(map[string]bool)
	}
	p.KnownChains[cfg.ChainID] = true
	p.Chain = cfg.ChainID
	return nil
}

func (p *FakeProvider) OnAccountsChanged(h func([]common.Address)) { p.accountsHandler = h }

func (p *FakeProvider) OnChainChanged(h func(string)) { p.chainHandler = h }

// FireAccountsChanged simulates the wallet emitting an accountsChanged event.
func (p *FakeProvider) FireAccountsChanged(accounts []common.Address) {
	p.Accounts = accounts
	if p.accountsHandler != nil {
		p.accountsHandler(accounts)
	}
}

// FireChainChanged simulates the wallet emitting a chainChanged event.
func (p *FakeProvider) FireChainChanged(chainID string) {
	p.Chain = chainID
	if p.chainHandler != nil {
		p.chainHandler(chainID)
	}
}

// HasAccountsHandler reports whether a subscription is currently installed.
func (p *FakeProvider) HasAccountsHandler() bool { return p.accountsHandler != nil }

// HasChainHandler reports whether a subscription is currently installed.
func (p *FakeProvider) HasChainHandler() bool { return p.chainHandler != nil }
