package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Session is the client's current wallet connection state. Owned exclusively
// by the Service; mutated only on connect/disconnect/account-change/
// chain-change events. Connected holds iff an account is authorized and the
// wallet sits on the required chain.
type Session struct {
	Account   common.Address `json:"account"`
	ChainID   string         `json:"chain_id"`
	Connected bool           `json:"connected"`
}

func (s Session) ShortAccount() string {
	if !s.Connected {
		return ""
	}
	hex := s.Account.Hex()
	return hex[:6] + "..." + hex[len(hex)-4:]
}

// SameChain compares two hex chain ids case-insensitively.
func SameChain(a, b string) bool {
	return strings.EqualFold(a, b)
}
