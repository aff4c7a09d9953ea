package dapp

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/edutoken/dapp/core"
	"github.com/edutoken/dapp/core/chain"
	"github.com/edutoken/dapp/core/role"
	"github.com/edutoken/dapp/core/submission"
)

// Tab identifies a display surface. Teacher is the default; Admin is gated on
// the resolved role.
type Tab string

const (
	TabTeacher Tab = "teacher"
	TabHistory Tab = "history"
	TabAdmin   Tab = "admin"
)

// State is a point-in-time snapshot for display layers.
type State struct {
	Session    chain.Session `json:"session"`
	Role       role.Role     `json:"role"`
	ActiveTab  Tab           `json:"active_tab"`
	Generation uint64        `json:"generation"`
}

type (
	// Orchestrator sequences the session lifecycle: connect, role resolution,
	// cache refreshes, and the teardown triggered by wallet events. It is the
	// single writer of role and tab state; reads go through State().
	Orchestrator struct {
		sessions *chain.Service
		roles    *role.Resolver
		store    *submission.Store
		notifier core.Notifier
		log      core.Logger

		mu        sync.RWMutex
		role      role.Role
		activeTab Tab
	}
)

func NewOrchestrator(
	sessions *chain.Service,
	roles *role.Resolver,
	store *submission.Store,
	notifier core.Notifier,
	log core.Logger,
) *Orchestrator {
	orc := &Orchestrator{
		sessions:  sessions,
		roles:     roles,
		store:     store,
		notifier:  notifier,
		log:       log,
		role:      role.Teacher,
		activeTab: TabTeacher,
	}
	sessions.OnAccountsChanged(orc.handleAccountsChanged)
	sessions.OnChainChanged(orc.handleChainChanged)
	return orc
}

// Connect establishes the wallet session, resolves the role and warms every
// cache. Refresh failures are reported individually and do not fail the
// connect itself.
func (orc *Orchestrator) Connect(ctx context.Context) (State, error) {
	sess, err := orc.sessions.Connect(ctx)
	if err != nil {
		core.NotifyErrorf(orc.notifier, "Failed to connect wallet", err)
		return orc.State(), err
	}

	if err := orc.resolveRole(ctx, sess); err != nil {
		return orc.State(), err
	}
	core.NotifySuccessf(orc.notifier, "Wallet connected: %s", sess.ShortAccount())

	if err := orc.store.RefreshAll(ctx, sess.Account); err != nil {
		orc.log.Warn("initial refresh incomplete", err)
	}
	return orc.State(), nil
}

// Resume reconnects without prompting when a provider already authorized this
// origin. No provider or no prior authorization is not an error.
func (orc *Orchestrator) Resume(ctx context.Context) (State, error) {
	if !orc.sessions.PreviouslyAuthorized() {
		return orc.State(), nil
	}
	return orc.Connect(ctx)
}

// Disconnect tears the session down: caches cleared, role and tab reverted to
// their defaults.
func (orc *Orchestrator) Disconnect() State {
	orc.sessions.Disconnect()
	orc.store.Reset()

	orc.mu.Lock()
	orc.role = role.Teacher
	orc.activeTab = TabTeacher
	orc.mu.Unlock()

	return orc.State()
}

// SelectTab activates a tab. The admin tab is refused while the resolved role
// is not Admin, regardless of how the caller got hold of the tab id.
func (orc *Orchestrator) SelectTab(tab Tab) (State, error) {
	switch tab {
	case TabTeacher, TabHistory, TabAdmin:
	default:
		return orc.State(), core.NewValidationError(nil, core.FieldError{Field: "tab", Error: "unknown tab"})
	}

	orc.mu.Lock()
	defer orc.mu.Unlock()
	if tab == TabAdmin && !orc.role.IsAdmin() {
		return orc.snapshotLocked(), core.ErrNotAuthorized
	}
	orc.activeTab = tab
	return orc.snapshotLocked(), nil
}

// Refresh re-fetches every cache for the current session.
func (orc *Orchestrator) Refresh(ctx context.Context) error {
	sess := orc.sessions.Current()
	if !sess.Connected {
		return core.ErrNotConnected
	}
	return orc.store.RefreshAll(ctx, sess.Account)
}

func (orc *Orchestrator) State() State {
	orc.mu.RLock()
	defer orc.mu.RUnlock()
	return orc.snapshotLocked()
}

func (orc *Orchestrator) snapshotLocked() State {
	return State{
		Session:    orc.sessions.Current(),
		Role:       orc.role,
		ActiveTab:  orc.activeTab,
		Generation: orc.sessions.Generation(),
	}
}

func (orc *Orchestrator) resolveRole(ctx context.Context, sess chain.Session) error {
	r, err := orc.roles.Resolve(ctx, sess)
	if err != nil {
		orc.log.Error("role resolution failed", err)
		core.NotifyErrorf(orc.notifier, "Failed to determine account role", err)
		return err
	}

	orc.mu.Lock()
	orc.role = r
	if orc.activeTab == TabAdmin && !r.IsAdmin() {
		orc.activeTab = TabTeacher
	}
	orc.mu.Unlock()
	return nil
}

// handleAccountsChanged runs on every wallet-side account event. An empty
// account list is a revocation: full teardown. Otherwise the session already
// points at the new account; re-resolve the role, supersede in-flight
// refreshes and rebuild the caches.
func (orc *Orchestrator) handleAccountsChanged(accounts []common.Address) {
	if len(accounts) == 0 {
		orc.Disconnect()
		core.NotifyInfof(orc.notifier, "Wallet disconnected")
		return
	}

	ctx := context.Background()
	sess := orc.sessions.Current()
	orc.store.Supersede()

	if err := orc.resolveRole(ctx, sess); err != nil {
		return
	}
	core.NotifyInfof(orc.notifier, "Account changed: %s", sess.ShortAccount())
	if err := orc.store.RefreshAll(ctx, sess.Account); err != nil {
		orc.log.Warn("refresh after account change incomplete", err)
	}
}

// handleChainChanged treats any chain move as a cold start: tear down and
// reconnect so the chain check in Connect runs again.
func (orc *Orchestrator) handleChainChanged(chainID string) {
	orc.log.Info("chain changed, reloading session", chainID)
	orc.Disconnect()
	if _, err := orc.Connect(context.Background()); err != nil {
		orc.log.Error("reconnect after chain change failed", err)
	}
}
