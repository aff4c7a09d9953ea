package review

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/edutoken/dapp/core"
	"github.com/edutoken/dapp/core/chain"
	"github.com/edutoken/dapp/core/role"
	"github.com/edutoken/dapp/core/submission"
)

type (
	// Authority is the state-changing slice of the contract. Every call is
	// two-phase (submit then wait for confirmation); implementations return
	// only after the transaction is mined, or fail with a TxRevertedError.
	Authority interface {
		SubmitAchievement(ctx context.Context, from common.Address, achievementType, description, proofLink string) (Receipt, error)
		RedeemTokens(ctx context.Context, from common.Address, amount core.Amount, benefit string) (Receipt, error)
		IssueReward(ctx context.Context, from, teacher common.Address, achievementType string) (Receipt, error)
		IssueCustomReward(ctx context.Context, from, teacher common.Address, amount core.Amount, description string) (Receipt, error)
		SetRewardCategory(ctx context.Context, from common.Address, category string, amount core.Amount) (Receipt, error)
		ApproveSubmission(ctx context.Context, from common.Address, id uint64) (Receipt, error)
		RejectSubmission(ctx context.Context, from common.Address, id uint64, reason string) (Receipt, error)
		RevokeReward(ctx context.Context, from common.Address, id uint64, reason string) (Receipt, error)
		RevokeCustomAmount(ctx context.Context, from, teacher common.Address, amount core.Amount, reason string) (Receipt, error)
	}

	// Service executes the role-gated actions against the authority and
	// triggers the store refreshes each action invalidates. Preconditions
	// (connectivity, admin role, input validity) fail fast before any network
	// call; duplicate submissions during a pending confirmation are rejected.
	Service struct {
		sessions  *chain.Service
		roles     *role.Resolver
		store     *submission.Store
		authority Authority
		notifier  core.Notifier
		log       core.Logger

		mu       sync.Mutex
		inflight map[string]bool
	}
)

func NewService(
	sessions *chain.Service,
	roles *role.Resolver,
	store *submission.Store,
	authority Authority,
	notifier core.Notifier,
	log core.Logger,
) *Service {
	return &Service{
		sessions:  sessions,
		roles:     roles,
		store:     store,
		authority: authority,
		notifier:  notifier,
		log:       log,
		inflight:  make(map[string]bool),
	}
}

// acquire marks an action busy for the duration of its confirmation window.
func (svc *Service) acquire(key string) (release func(), err error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.inflight[key] {
		return nil, core.ErrTxPending
	}
	svc.inflight[key] = true
	return func() {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		delete(svc.inflight, key)
	}, nil
}

func (svc *Service) requireConnected() (chain.Session, error) {
	sess := svc.sessions.Current()
	if !sess.Connected {
		return chain.Session{}, core.ErrNotConnected
	}
	return sess, nil
}

// requireAdmin resolves the role fresh on every call; a cached role could
// outlive an account switch.
func (svc *Service) requireAdmin(ctx context.Context) (chain.Session, error) {
	sess, err := svc.requireConnected()
	if err != nil {
		return chain.Session{}, err
	}
	r, err := svc.roles.Resolve(ctx, sess)
	if err != nil {
		return chain.Session{}, err
	}
	if !r.IsAdmin() {
		return chain.Session{}, core.ErrNotAuthorized
	}
	return sess, nil
}

func (svc *Service) fail(action string, err error) error {
	svc.log.Error(action+" failed", err)
	core.NotifyErrorf(svc.notifier, "Failed to "+action, err)
	return err
}

// SubmitAchievement files a new achievement claim for the connected account.
func (svc *Service) SubmitAchievement(ctx context.Context, in NewSubmission) (Receipt, error) {
	sess, err := svc.requireConnected()
	if err != nil {
		return Receipt{}, err
	}
	if err := in.Validate(); err != nil {
		return Receipt{}, err
	}
	release, err := svc.acquire("submitAchievement")
	if err != nil {
		return Receipt{}, err
	}
	defer release()

	rcpt, err := svc.authority.SubmitAchievement(ctx, sess.Account, in.AchievementType, in.Description, in.ProofLink)
	if err != nil {
		return Receipt{}, svc.fail("submit", err)
	}
	core.NotifySuccessf(svc.notifier, "Achievement submitted successfully!")
	svc.refreshMine(ctx)
	return rcpt, nil
}

// RedeemTokens burns tokens from the connected account's balance for a benefit.
func (svc *Service) RedeemTokens(ctx context.Context, in Redemption) (Receipt, error) {
	sess, err := svc.requireConnected()
	if err != nil {
		return Receipt{}, err
	}
	if err := in.Validate(); err != nil {
		return Receipt{}, err
	}
	release, err := svc.acquire("redeemTokens")
	if err != nil {
		return Receipt{}, err
	}
	defer release()

	rcpt, err := svc.authority.RedeemTokens(ctx, sess.Account, in.Amount, in.Benefit)
	if err != nil {
		return Receipt{}, svc.fail("redeem", err)
	}
	core.NotifySuccessf(svc.notifier, "Tokens redeemed successfully!")
	svc.refreshHistory(ctx)
	return rcpt, nil
}

// IssueReward pays a teacher the configured rate for an achievement category.
func (svc *Service) IssueReward(ctx context.Context, in DirectReward) (Receipt, error) {
	sess, err := svc.requireAdmin(ctx)
	if err != nil {
		return Receipt{}, err
	}
	if err := in.Validate(); err != nil {
		return Receipt{}, err
	}
	release, err := svc.acquire("issueReward")
	if err != nil {
		return Receipt{}, err
	}
	defer release()

	rcpt, err := svc.authority.IssueReward(ctx, sess.Account, in.TeacherAddress(), in.AchievementType)
	if err != nil {
		return Receipt{}, svc.fail("issue reward", err)
	}
	core.NotifySuccessf(svc.notifier, "Reward issued successfully!")
	return rcpt, nil
}

// IssueCustomReward pays a teacher an arbitrary amount.
func (svc *Service) IssueCustomReward(ctx context.Context, in CustomReward) (Receipt, error) {
	sess, err := svc.requireAdmin(ctx)
	if err != nil {
		return Receipt{}, err
	}
	if err := in.Validate(); err != nil {
		return Receipt{}, err
	}
	release, err := svc.acquire("issueCustomReward")
	if err != nil {
		return Receipt{}, err
	}
	defer release()

	rcpt, err := svc.authority.IssueCustomReward(ctx, sess.Account, in.TeacherAddress(), in.Amount, in.Description)
	if err != nil {
		return Receipt{}, svc.fail("issue custom reward", err)
	}
	core.NotifySuccessf(svc.notifier, "Custom reward issued successfully!")
	return rcpt, nil
}

// SetRewardCategory creates or reprices an achievement category.
func (svc *Service) SetRewardCategory(ctx context.Context, in CategoryUpdate) (Receipt, error) {
	sess, err := svc.requireAdmin(ctx)
	if err != nil {
		return Receipt{}, err
	}
	if err := in.Validate(); err != nil {
		return Receipt{}, err
	}
	release, err := svc.acquire("setRewardCategory")
	if err != nil {
		return Receipt{}, err
	}
	defer release()

	rcpt, err := svc.authority.SetRewardCategory(ctx, sess.Account, in.Name, in.Amount)
	if err != nil {
		return Receipt{}, svc.fail("add category", err)
	}
	core.NotifySuccessf(svc.notifier, "Category added/updated successfully!")
	return rcpt, nil
}

// ApproveSubmission approves a pending claim, paying its reward. The contract
// rejects non-pending ids; the client surfaces that, it does not pre-filter.
func (svc *Service) ApproveSubmission(ctx context.Context, id uint64) (Receipt, error) {
	sess, err := svc.requireAdmin(ctx)
	if err != nil {
		return Receipt{}, err
	}
	release, err := svc.acquire(fmt.Sprintf("approve:%d", id))
	if err != nil {
		return Receipt{}, err
	}
	defer release()

	rcpt, err := svc.authority.ApproveSubmission(ctx, sess.Account, id)
	if err != nil {
		return Receipt{}, svc.fail("approve", err)
	}
	core.NotifySuccessf(svc.notifier, "Submission approved! Reward sent to teacher.")
	svc.refreshPending(ctx)
	return rcpt, nil
}

// RejectSubmission rejects a pending claim with a reason.
func (svc *Service) RejectSubmission(ctx context.Context, in Rejection) (Receipt, error) {
	sess, err := svc.requireAdmin(ctx)
	if err != nil {
		return Receipt{}, err
	}
	if err := in.Validate(); err != nil {
		return Receipt{}, err
	}
	release, err := svc.acquire(fmt.Sprintf("reject:%d", in.ID))
	if err != nil {
		return Receipt{}, err
	}
	defer release()

	rcpt, err := svc.authority.RejectSubmission(ctx, sess.Account, in.ID, in.Reason)
	if err != nil {
		return Receipt{}, svc.fail("reject", err)
	}
	core.NotifySuccessf(svc.notifier, "Submission rejected.")
	svc.refreshPending(ctx)
	return rcpt, nil
}

// RevokeReward reverses a previously approved submission's reward.
func (svc *Service) RevokeReward(ctx context.Context, in Revocation) (Receipt, error) {
	sess, err := svc.requireAdmin(ctx)
	if err != nil {
		return Receipt{}, err
	}
	if err := in.Validate(); err != nil {
		return Receipt{}, err
	}
	release, err := svc.acquire(fmt.Sprintf("revoke:%d", in.ID))
	if err != nil {
		return Receipt{}, err
	}
	defer release()

	rcpt, err := svc.authority.RevokeReward(ctx, sess.Account, in.ID, in.Reason)
	if err != nil {
		return Receipt{}, svc.fail("revoke", err)
	}
	core.NotifySuccessf(svc.notifier, "Reward revoked successfully!")
	svc.refreshAll(ctx)
	return rcpt, nil
}

// RevokeCustomAmount claws back an arbitrary amount from a teacher.
func (svc *Service) RevokeCustomAmount(ctx context.Context, in CustomRevocation) (Receipt, error) {
	sess, err := svc.requireAdmin(ctx)
	if err != nil {
		return Receipt{}, err
	}
	if err := in.Validate(); err != nil {
		return Receipt{}, err
	}
	release, err := svc.acquire("revokeCustomAmount")
	if err != nil {
		return Receipt{}, err
	}
	defer release()

	rcpt, err := svc.authority.RevokeCustomAmount(ctx, sess.Account, in.TeacherAddress(), in.Amount, in.Reason)
	if err != nil {
		return Receipt{}, svc.fail("revoke", err)
	}
	core.NotifySuccessf(svc.notifier, "Custom amount revoked successfully!")
	return rcpt, nil
}

// Post-success refreshes. The session may have moved while the tx confirmed,
// so state is re-checked after resumption. A failed refresh never undoes the
// action, but it must leave a log trace and an error toast; the stale cache is
// already invalid.

func (svc *Service) refreshFailed(err error) {
	svc.log.Error("refresh after action failed", err)
	core.NotifyErrorf(svc.notifier, "Failed to refresh", err)
}

func (svc *Service) refreshMine(ctx context.Context) {
	sess := svc.sessions.Current()
	if !sess.Connected {
		return
	}
	if _, err := svc.store.RefreshMine(ctx, sess.Account); err != nil {
		svc.refreshFailed(err)
	}
}

func (svc *Service) refreshPending(ctx context.Context) {
	if _, err := svc.store.RefreshPending(ctx); err != nil {
		svc.refreshFailed(err)
	}
}

func (svc *Service) refreshHistory(ctx context.Context) {
	sess := svc.sessions.Current()
	if !sess.Connected {
		return
	}
	if _, err := svc.store.RefreshHistory(ctx, sess.Account); err != nil {
		svc.refreshFailed(err)
	}
}

func (svc *Service) refreshAll(ctx context.Context) {
	sess := svc.sessions.Current()
	if !sess.Connected {
		return
	}
	if err := svc.store.RefreshAll(ctx, sess.Account); err != nil {
		core.NotifyErrorf(svc.notifier, "Failed to refresh", err)
	}
}
