package role

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/edutoken/dapp/core"
	"github.com/edutoken/dapp/core/chain"
)

// Roles. Admin is the contract owner; every other connected account is a teacher.
type Role string

const (
	Teacher Role = "teacher"
	Admin   Role = "admin"
)

func (r Role) IsAdmin() bool { return r == Admin }

func (r Role) Label() string {
	if r == Admin {
		return "Admin (Owner)"
	}
	return "Teacher"
}

// OwnerReader reports the authority's configured owner.
type OwnerReader interface {
	Owner(ctx context.Context) (common.Address, error)
}

// Resolver derives the session's role from on-chain truth. It holds no state:
// the role must be recomputed whenever the account changes.
type Resolver struct {
	authority OwnerReader
}

func NewResolver(authority OwnerReader) *Resolver {
	return &Resolver{authority: authority}
}

// Resolve returns Admin iff the session account equals the authority's owner
// (case-insensitive address compare). Failure to reach the authority is a hard
// error: the role cannot be determined, and it never defaults to Admin.
func (r *Resolver) Resolve(ctx context.Context, session chain.Session) (Role, error) {
	if !session.Connected {
		return Teacher, core.ErrNotConnected
	}
	owner, err := r.authority.Owner(ctx)
	if err != nil {
		return Teacher, core.NewFetchError("contract owner", err)
	}
	if strings.EqualFold(session.Account.Hex(), owner.Hex()) {
		return Admin, nil
	}
	return Teacher, nil
}
