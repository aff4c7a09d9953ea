// Package dummycontract is an in-memory stand-in for the EduToken contract.
// It enforces the same ownership and status-machine rules and is used by tests
// and by dev mode when no RPC endpoint is configured.
package dummycontract

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/edutoken/dapp/core"
	"github.com/edutoken/dapp/core/review"
	"github.com/edutoken/dapp/core/role"
	"github.com/edutoken/dapp/core/submission"
)

// revert reasons, mirroring the deployed contract
const (
	reasonNotOwner    = "Ownable: caller is not the owner"
	reasonNotPending  = "Submission is not pending"
	reasonNotApproved = "Submission is not approved"
	reasonUnknownID   = "Invalid submission ID"
	reasonBadCategory = "Invalid achievement type"
	reasonLowBalance  = "Insufficient balance"
	reasonLowSupply   = "Teacher balance too low"
)

type Authority struct {
	mu sync.RWMutex

	owner       common.Address
	counter     uint64
	blockNumber uint64

	submissions map[uint64]*submission.Submission
	byTeacher   map[common.Address][]uint64
	balances    map[common.Address]*big.Int
	rewards     map[string]*big.Int
	history     map[common.Address][]string
	totals      map[common.Address]*big.Int

	nowFunc func() time.Time // mockable
}

var (
	_ role.OwnerReader  = (*Authority)(nil)
	_ submission.Reader = (*Authority)(nil)
	_ review.Authority  = (*Authority)(nil)
)

func NewAuthority(owner common.Address) *Authority {
	a := &Authority{
		owner:       owner,
		submissions: make(map[uint64]*submission.Submission),
		byTeacher:   make(map[common.Address][]uint64),
		balances:    make(map[common.Address]*big.Int),
		rewards:     make(map[string]*big.Int),
		history:     make(map[common.Address][]string),
		totals:      make(map[common.Address]*big.Int),
		nowFunc:     time.Now,
	}
	// categories configured at deployment
	for name, amount := range map[string]string{
		"Workshop":      "10",
		"Publication":   "50",
		"Certification": "25",
		"Mentorship":    "15",
	} {
		a.rewards[name] = core.MustParseAmount(amount).Wei()
	}
	return a
}

func revert(reason string) error {
	return core.NewTxRevertedError(reason, nil)
}

func (a *Authority) receipt() review.Receipt {
	a.blockNumber++
	return review.Receipt{
		TxHash:      common.BigToHash(new(big.Int).SetUint64(a.blockNumber)),
		BlockNumber: a.blockNumber,
		GasUsed:     21_000,
	}
}

func (a *Authority) balanceOf(addr common.Address) *big.Int {
	if b, ok := a.balances[addr]; ok {
		return b
	}
	b := new(big.Int)
	a.balances[addr] = b
	return b
}

func (a *Authority) totalOf(addr common.Address) *big.Int {
	if t, ok := a.totals[addr]; ok {
		return t
	}
	t := new(big.Int)
	a.totals[addr] = t
	return t
}

func (a *Authority) pay(teacher common.Address, achievementType string, amount *big.Int) {
	a.balanceOf(teacher).Add(a.balanceOf(teacher), amount)
	a.totalOf(teacher).Add(a.totalOf(teacher), amount)
	a.history[teacher] = append(a.history[teacher], achievementType)
}

// Read side

func (a *Authority) Owner(context.Context) (common.Address, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.owner, nil
}

func (a *Authority) BalanceOf(_ context.Context, addr common.Address) (core.Amount, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if b, ok := a.balances[addr]; ok {
		return core.NewAmount(b), nil
	}
	return core.NewAmount(nil), nil
}

func (a *Authority) RewardAmount(_ context.Context, category string) (core.Amount, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if r, ok := a.rewards[category]; ok {
		return core.NewAmount(r), nil
	}
	return core.NewAmount(nil), nil
}

func (a *Authority) TeacherSubmissions(_ context.Context, teacher common.Address) ([]uint64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]uint64(nil), a.byTeacher[teacher]...), nil
}

func (a *Authority) GetSubmission(_ context.Context, id uint64) (submission.Submission, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if sub, ok := a.submissions[id]; ok {
		return *sub, nil
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (a *Authority) PendingCount(context.Context) (uint64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var n uint64
	for _, sub := range a.submissions {
		if sub.Status == submission.StatusPending {
			n++
		}
	}
	return n, nil
}

func (a *Authority) AllPendingSubmissions(context.Context) ([]submission.Submission, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var subs []submission.Submission
	for id := uint64(1); id <= a.counter; id++ {
		if sub, ok := a.submissions[id]; ok && sub.Status == submission.StatusPending {
			subs = append(subs, *sub)
		}
	}
	return subs, nil
}

func (a *Authority) AchievementHistory(_ context.Context, teacher common.Address) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.history[teacher]...), nil
}

func (a *Authority) TotalRewards(_ context.Context, teacher common.Address) (core.Amount, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if t, ok := a.totals[teacher]; ok {
		return core.NewAmount(t), nil
	}
	return core.NewAmount(nil), nil
}

// Write side

func (a *Authority) SubmitAchievement(_ context.Context, from common.Address, achievementType, description, proofLink string) (review.Receipt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.counter++
	sub := &submission.Submission{
		ID:              a.counter,
		Teacher:         from,
		AchievementType: achievementType,
		Description:     description,
		ProofLink:       proofLink,
		SubmittedAt:     a.nowFunc().UTC(),
		Status:          submission.StatusPending,
	}
	a.submissions[sub.ID] = sub
	a.byTeacher[from] = append(a.byTeacher[from], sub.ID)
	return a.receipt(), nil
}

func (a *Authority) RedeemTokens(_ context.Context, from common.Address, amount core.Amount, _ string) (review.Receipt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	bal := a.balanceOf(from)
	if bal.Cmp(amount.Wei()) < 0 {
		return review.Receipt{}, revert(reasonLowBalance)
	}
	bal.Sub(bal, amount.Wei())
	return a.receipt(), nil
}

func (a *Authority) IssueReward(_ context.Context, from, teacher common.Address, achievementType string) (review.Receipt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if from != a.owner {
		return review.Receipt{}, revert(reasonNotOwner)
	}
	rate, ok := a.rewards[achievementType]
	if !ok || rate.Sign() == 0 {
		return review.Receipt{}, revert(reasonBadCategory)
	}
	a.pay(teacher, achievementType, rate)
	return a.receipt(), nil
}

func (a *Authority) IssueCustomReward(_ context.Context, from, teacher common.Address, amount core.Amount, description string) (review.Receipt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if from != a.owner {
		return review.Receipt{}, revert(reasonNotOwner)
	}
	a.pay(teacher, description, amount.Wei())
	return a.receipt(), nil
}

func (a *Authority) SetRewardCategory(_ context.Context, from common.Address, category string, amount core.Amount) (review.Receipt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if from != a.owner {
		return review.Receipt{}, revert(reasonNotOwner)
	}
	a.rewards[category] = amount.Wei()
	return a.receipt(), nil
}

func (a *Authority) ApproveSubmission(_ context.Context, from common.Address, id uint64) (review.Receipt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if from != a.owner {
		return review.Receipt{}, revert(reasonNotOwner)
	}
	sub, ok := a.submissions[id]
	if !ok {
		return review.Receipt{}, revert(reasonUnknownID)
	}
	if sub.Status != submission.StatusPending {
		return review.Receipt{}, revert(reasonNotPending)
	}
	rate, ok := a.rewards[sub.AchievementType]
	if !ok {
		rate = new(big.Int)
	}
	sub.Status = submission.StatusApproved
	sub.ReviewedAt = a.nowFunc().UTC()
	a.pay(sub.Teacher, sub.AchievementType, rate)
	return a.receipt(), nil
}

func (a *Authority) RejectSubmission(_ context.Context, from common.Address, id uint64, reason string) (review.Receipt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if from != a.owner {
		return review.Receipt{}, revert(reasonNotOwner)
	}
	sub, ok := a.submissions[id]
	if !ok {
		return review.Receipt{}, revert(reasonUnknownID)
	}
	if sub.Status != submission.StatusPending {
		return review.Receipt{}, revert(reasonNotPending)
	}
	sub.Status = submission.StatusRejected
	sub.RejectionReason = reason
	sub.ReviewedAt = a.nowFunc().UTC()
	return a.receipt(), nil
}

func (a *Authority) RevokeReward(_ context.Context, from common.Address, id uint64, reason string) (review.Receipt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if from != a.owner {
		return review.Receipt{}, revert(reasonNotOwner)
	}
	sub, ok := a.submissions[id]
	if !ok {
		return review.Receipt{}, revert(reasonUnknownID)
	}
	if sub.Status != submission.StatusApproved {
		return review.Receipt{}, revert(reasonNotApproved)
	}
	rate, ok := a.rewards[sub.AchievementType]
	if !ok {
		rate = new(big.Int)
	}
	bal := a.balanceOf(sub.Teacher)
	if bal.Cmp(rate) < 0 {
		return review.Receipt{}, revert(reasonLowSupply)
	}
	sub.Status = submission.StatusRevoked
	sub.RejectionReason = reason
	sub.ReviewedAt = a.nowFunc().UTC()
	bal.Sub(bal, rate)
	a.totalOf(sub.Teacher).Sub(a.totalOf(sub.Teacher), rate)
	return a.receipt(), nil
}

func (a *Authority) RevokeCustomAmount(_ context.Context, from, teacher common.Address, amount core.Amount, _ string) (review.Receipt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if from != a.owner {
		return review.Receipt{}, revert(reasonNotOwner)
	}
	bal := a.balanceOf(teacher)
	if bal.Cmp(amount.Wei()) < 0 {
		return review.Receipt{}, revert(reasonLowSupply)
	}
	bal.Sub(bal, amount.Wei())
	return a.receipt(), nil
}

// Fund seeds a balance directly; test helper.
func (a *Authority) Fund(addr common.Address, amount core.Amount) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balanceOf(addr).Set(amount.Wei())
}

// SetNow overrides the clock; test helper.
func (a *Authority) SetNow(now func() time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nowFunc = now
}
