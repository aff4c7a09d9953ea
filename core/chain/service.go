package chain

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/edutoken/dapp/core"
)

type (
	// AccountsHandler observes account-change events after the Service has
	// applied them to the session. An empty list means disconnected.
	AccountsHandler func(accounts []common.Address)

	// ChainHandler observes chain-change events. By then the session has
	// already been torn down; the host must reload from scratch.
	ChainHandler func(chainID string)

	// Service owns provider detection, account authorization, chain-switch
	// negotiation and the Session singleton.
	Service struct {
		network   core.NetworkConfig
		providers []Provider
		log       core.Logger

		mu      sync.Mutex
		active  Provider
		session Session
		gen     uint64

		accountsHandler AccountsHandler
		chainHandler    ChainHandler
	}
)

// NewService builds a session service over an ordered provider list: the first
// available provider wins, so a named wallet placed before the generic one
// takes precedence deliberately.
func NewService(network core.NetworkConfig, log core.Logger, providers ...Provider) *Service {
	return &Service{
		network:   network,
		providers: providers,
		log:       log,
	}
}

func (svc *Service) detect() (Provider, error) {
	for _, p := range svc.providers {
		if p.Available() {
			return p, nil
		}
	}
	return nil, core.ErrNoProvider
}

// PreviouslyAuthorized reports whether some available wallet already granted
// account access, so the host can reconnect without a user gesture.
func (svc *Service) PreviouslyAuthorized() bool {
	p, err := svc.detect()
	if err != nil {
		return false
	}
	return p.Authorized()
}

// Connect detects a wallet, requests account authorization, enforces the
// required network and installs the event subscriptions. It never reports a
// connected session on the wrong chain.
func (svc *Service) Connect(ctx context.Context) (Session, error) {
	provider, err := svc.detect()
	if err != nil {
		return Session{}, err
	}

	accounts, err := provider.RequestAccounts(ctx)
	if err != nil {
		if ErrorCode(err) == CodeUserRejected {
			return Session{}, core.ErrUserRejected
		}
		return Session{}, errors.Wrap(err, "requesting accounts")
	}
	if len(accounts) == 0 {
		return Session{}, core.ErrUserRejected
	}

	if err := svc.ensureChain(ctx, provider); err != nil {
		return Session{}, err
	}

	// Re-subscribing replaces any prior handler, so connecting twice never
	// stacks duplicate notifications.
	provider.OnAccountsChanged(svc.handleAccountsChanged)
	provider.OnChainChanged(svc.handleChainChanged)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.active = provider
	svc.session = Session{
		Account:   accounts[0],
		ChainID:   svc.network.ChainID,
		Connected: true,
	}
	svc.gen++
	svc.log.Info("wallet connected", map[string]interface{}{
		"provider": provider.Name(),
		"account":  accounts[0].Hex(),
		"chain":    svc.network.ChainID,
	})
	return svc.session, nil
}

// ensureChain reads the wallet's chain id and negotiates a switch when it does
// not match the required one: one switch attempt, then one add-then-recheck
// when the wallet does not know the chain. Anything else aborts the connect.
func (svc *Service) ensureChain(ctx context.Context, provider Provider) error {
	chainID, err := provider.ChainID(ctx)
	if err != nil {
		return errors.Wrap(err, "reading chain id")
	}
	if SameChain(chainID, svc.network.ChainID) {
		return nil
	}

	if err := provider.SwitchChain(ctx, svc.network.ChainID); err != nil {
		if ErrorCode(err) != CodeUnknownChain {
			if ErrorCode(err) == CodeUserRejected {
				return core.ErrUserRejected
			}
			return core.NewNetworkSwitchError(svc.network.ChainID, err)
		}
		if err := provider.AddChain(ctx, svc.network); err != nil {
			return core.NewNetworkSwitchError(svc.network.ChainID, errors.Wrap(err, "failed to add network to wallet"))
		}
	}

	chainID, err = provider.ChainID(ctx)
	if err != nil {
		return errors.Wrap(err, "re-reading chain id")
	}
	if !SameChain(chainID, svc.network.ChainID) {
		return core.NewNetworkSwitchError(svc.network.ChainID, errors.Errorf("wallet stayed on chain %s", chainID))
	}
	return nil
}

// Disconnect tears the session down and removes the provider subscriptions.
func (svc *Service) Disconnect() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.active != nil {
		svc.active.OnAccountsChanged(nil)
		svc.active.OnChainChanged(nil)
	}
	svc.active = nil
	svc.session = Session{}
	svc.gen++
}

// Current returns a snapshot of the session.
func (svc *Service) Current() Session {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.session
}

// Generation is a monotonic counter bumped on every session-altering event.
// In-flight work captures it before suspending and discards its result when
// the generation has moved on.
func (svc *Service) Generation() uint64 {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.gen
}

// OnAccountsChanged registers the host callback fired after the Service has
// applied an account change. Replaces any prior callback.
func (svc *Service) OnAccountsChanged(h AccountsHandler) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.accountsHandler = h
}

// OnChainChanged registers the host callback fired after a chain change has
// torn the session down. Replaces any prior callback.
func (svc *Service) OnChainChanged(h ChainHandler) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.chainHandler = h
}

func (svc *Service) handleAccountsChanged(accounts []common.Address) {
	svc.mu.Lock()
	if len(accounts) == 0 {
		// wallet revoked access: disconnected
		svc.session = Session{}
	} else {
		svc.session = Session{
			Account:   accounts[0],
			ChainID:   svc.network.ChainID,
			Connected: true,
		}
	}
	svc.gen++
	h := svc.accountsHandler
	svc.mu.Unlock()

	if h != nil {
		h(accounts)
	}
}

// A chain change invalidates signer and provider bindings; there is no partial
// recovery. The session dies here and the host reloads from scratch.
func (svc *Service) handleChainChanged(chainID string) {
	svc.mu.Lock()
	svc.session = Session{}
	svc.gen++
	h := svc.chainHandler
	svc.mu.Unlock()

	svc.log.Info("chain changed, session reset", map[string]interface{}{"chain": chainID})
	if h != nil {
		h(chainID)
	}
}
