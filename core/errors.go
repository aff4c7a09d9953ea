package core

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoProvider is returned when no wallet provider is installed at all.
	// Fatal to a connect attempt; the user has to install a wallet.
	ErrNoProvider = stderrors.New("no wallet provider found; install Talisman or MetaMask")

	// ErrUserRejected is returned when the user declines an account or network
	// prompt in their wallet. Recoverable; connecting again re-prompts.
	ErrUserRejected = stderrors.New("request rejected in wallet")

	// ErrNotConnected is a precondition failure: the operation needs an
	// established session. It never reaches the network.
	ErrNotConnected = stderrors.New("wallet not connected")

	// ErrNotAuthorized is a precondition failure: the operation is admin-only
	// and the current account is not the contract owner.
	ErrNotAuthorized = stderrors.New("admin only")

	// ErrTxPending rejects a duplicate action while a previous transaction for
	// the same action is still awaiting confirmation.
	ErrTxPending = stderrors.New("a transaction for this action is still pending")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// NetworkSwitchError means the wallet could not be moved onto the required
// chain for a reason other than "chain unknown". Fatal to the connect attempt.
type NetworkSwitchError struct {
	ChainID string
	Err     error
}

func NewNetworkSwitchError(chainID string, err error) error {
	return &NetworkSwitchError{ChainID: chainID, Err: err}
}

func (err NetworkSwitchError) Error() string {
	return fmt.Sprintf("could not switch wallet to chain %s: %v", err.ChainID, err.Err)
}

func (err NetworkSwitchError) Unwrap() error { return err.Err }

// FetchError wraps a failed read-only query. The prior cache is left intact;
// callers must render an explicit error state instead of stale content.
type FetchError struct {
	What string
	Err  error
}

func NewFetchError(what string, err error) error {
	return &FetchError{What: what, Err: err}
}

func (err FetchError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", err.What, err.Err)
}

func (err FetchError) Unwrap() error { return err.Err }

// TxRevertedError means the authority rejected a state-changing call, typically
// with a human-readable reason extracted from the revert payload.
type TxRevertedError struct {
	Reason string
	Err    error
}

func NewTxRevertedError(reason string, err error) error {
	return &TxRevertedError{Reason: reason, Err: err}
}

func (err TxRevertedError) Error() string {
	if err.Reason != "" {
		return err.Reason
	}
	if err.Err != nil {
		return err.Err.Error()
	}
	return "transaction reverted"
}

func (err TxRevertedError) Unwrap() error { return err.Err }

// ErrorMessage normalizes any error to a display string: prefer an embedded
// revert reason, then validation text, then the raw message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var txErr *TxRevertedError
	if stderrors.As(err, &txErr) && txErr.Reason != "" {
		return txErr.Reason
	}
	var vErr *ValidationError
	if stderrors.As(err, &vErr) && len(vErr.Fields) > 0 {
		return vErr.Fields[0].Field + ": " + vErr.Fields[0].Error
	}
	return errors.Cause(err).Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
