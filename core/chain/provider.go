package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/edutoken/dapp/core"
)

// EIP-1193 provider error codes the session logic cares about.
const (
	CodeUserRejected = 4001 // user declined the wallet prompt
	CodeUnknownChain = 4902 // chain not added to the wallet yet
)

// ProviderError is a wallet-reported failure with its EIP-1193 code.
type ProviderError struct {
	Code    int
	Message string
}

func (err *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", err.Code, err.Message)
}

// ErrorCode extracts the provider error code from err, or 0.
func ErrorCode(err error) int {
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr.Code
	}
	return 0
}

// Provider is an injected wallet: the session's window onto accounts and
// networks. Implementations must keep at most one handler registered per
// event type; passing nil removes the current one.
type Provider interface {
	// Name identifies the wallet for logs ("talisman", "metamask"...).
	Name() string

	// Available reports whether the wallet is actually present. Connect walks
	// providers in order and uses the first available one.
	Available() bool

	// RequestAccounts asks the wallet for account authorization and returns
	// the authorized accounts, primary first.
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// Authorized reports whether the wallet already granted account access in
	// a previous session (no prompt).
	Authorized() bool

	// ChainID returns the wallet's current chain id as a 0x-prefixed hex string.
	ChainID(ctx context.Context) (string, error)

	// SwitchChain asks the wallet to move to the given chain id. A wallet that
	// does not know the chain fails with CodeUnknownChain.
	SwitchChain(ctx context.Context, chainID string) error

	// AddChain teaches the wallet a new network.
	AddChain(ctx context.Context, cfg core.NetworkConfig) error

	OnAccountsChanged(h func(accounts []common.Address))
	OnChainChanged(h func(chainID string))
}
