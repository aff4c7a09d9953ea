package submission

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/edutoken/dapp/core"
)

type (
	// Reader is the read-only slice of the contract the store synchronizes from.
	Reader interface {
		TeacherSubmissions(ctx context.Context, teacher common.Address) ([]uint64, error)
		GetSubmission(ctx context.Context, id uint64) (Submission, error)
		PendingCount(ctx context.Context) (uint64, error)
		AllPendingSubmissions(ctx context.Context) ([]Submission, error)
		AchievementHistory(ctx context.Context, teacher common.Address) ([]string, error)
		TotalRewards(ctx context.Context, teacher common.Address) (core.Amount, error)
		BalanceOf(ctx context.Context, addr common.Address) (core.Amount, error)
		RewardAmount(ctx context.Context, category string) (core.Amount, error)
	}

	// Store caches the last successfully fetched submission views. Each refresh
	// replaces its cache wholesale on success and leaves it untouched on
	// failure; a failed fetch must be rendered as an error state, never as
	// silently stale data.
	Store struct {
		repo Reader
		log  core.Logger

		mu  sync.RWMutex
		gen uint64

		mine       []Submission
		hasMine    bool
		pending    []Submission
		pendingN   uint64
		hasPending bool
		history    History
		hasHistory bool
	}
)

func NewStore(repo Reader, log core.Logger) *Store {
	return &Store{repo: repo, log: log}
}

// Reset drops every cache and supersedes all in-flight refreshes. Called on
// disconnect and on every session-altering event.
func (st *Store) Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.gen++
	st.mine, st.hasMine = nil, false
	st.pending, st.pendingN, st.hasPending = nil, 0, false
	st.history, st.hasHistory = History{}, false
}

// Supersede invalidates in-flight refreshes without dropping current caches.
func (st *Store) Supersede() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.gen++
}

func (st *Store) generation() uint64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.gen
}

// RefreshMine fetches the id list for the account, then each submission by id.
// An empty id list is an empty set, not an error.
func (st *Store) RefreshMine(ctx context.Context, teacher common.Address) ([]Submission, error) {
	gen := st.generation()

	ids, err := st.repo.TeacherSubmissions(ctx, teacher)
	if err != nil {
		return nil, core.NewFetchError("your submissions", err)
	}
	subs := make([]Submission, 0, len(ids))
	for _, id := range ids {
		sub, err := st.repo.GetSubmission(ctx, id)
		if err != nil {
			return nil, core.NewFetchError("your submissions", err)
		}
		subs = append(subs, sub)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.gen != gen {
		// a newer session event superseded this refresh; drop the result
		st.log.Debug("discarding superseded submissions refresh")
		return subs, nil
	}
	st.mine, st.hasMine = subs, true
	return subs, nil
}

// RefreshPending fetches the pending count and, when non-zero, the full
// pending batch. Admin-facing, but gating is the caller's job.
func (st *Store) RefreshPending(ctx context.Context) ([]Submission, error) {
	gen := st.generation()

	count, err := st.repo.PendingCount(ctx)
	if err != nil {
		return nil, core.NewFetchError("pending submissions", err)
	}
	var subs []Submission
	if count > 0 {
		if subs, err = st.repo.AllPendingSubmissions(ctx); err != nil {
			return nil, core.NewFetchError("pending submissions", err)
		}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.gen != gen {
		st.log.Debug("discarding superseded pending refresh")
		return subs, nil
	}
	st.pending, st.pendingN, st.hasPending = subs, count, true
	return subs, nil
}

// RefreshHistory fetches the achievement history, resolving each achievement's
// current category rate, plus total rewards and the live balance.
func (st *Store) RefreshHistory(ctx context.Context, teacher common.Address) (History, error) {
	gen := st.generation()

	total, err := st.repo.TotalRewards(ctx, teacher)
	if err != nil {
		return History{}, core.NewFetchError("achievement history", err)
	}
	balance, err := st.repo.BalanceOf(ctx, teacher)
	if err != nil {
		return History{}, core.NewFetchError("achievement history", err)
	}
	names, err := st.repo.AchievementHistory(ctx, teacher)
	if err != nil {
		return History{}, core.NewFetchError("achievement history", err)
	}
	achievements := make([]AchievementReward, 0, len(names))
	for _, name := range names {
		reward, err := st.repo.RewardAmount(ctx, name)
		if err != nil {
			return History{}, core.NewFetchError("achievement history", err)
		}
		achievements = append(achievements, AchievementReward{Name: name, Reward: reward})
	}
	hist := History{Achievements: achievements, TotalRewards: total, CurrentBalance: balance}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.gen != gen {
		st.log.Debug("discarding superseded history refresh")
		return hist, nil
	}
	st.history, st.hasHistory = hist, true
	return hist, nil
}

// RefreshAll runs the three refreshes in parallel. Each reports independently:
// one failing leaves the other two caches correctly populated.
func (st *Store) RefreshAll(ctx context.Context, teacher common.Address) error {
	var wg sync.WaitGroup
	errs := make([]error, 3)

	wg.Add(3)
	go func() {
		defer wg.Done()
		if _, err := st.RefreshMine(ctx, teacher); err != nil {
			errs[0] = err
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := st.RefreshPending(ctx); err != nil {
			errs[1] = err
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := st.RefreshHistory(ctx, teacher); err != nil {
			errs[2] = err
		}
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			st.log.Error("refresh failed", err)
		}
	}
	return errors.Join(errs...)
}

// Mine returns the cached "my submissions" view. ok is false until the first
// successful refresh (or after a Reset).
func (st *Store) Mine() (subs []Submission, ok bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]Submission(nil), st.mine...), st.hasMine
}

// Pending returns the cached pending queue and its count.
func (st *Store) Pending() (subs []Submission, count uint64, ok bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]Submission(nil), st.pending...), st.pendingN, st.hasPending
}

// History returns the cached achievement history view.
func (st *Store) History() (hist History, ok bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.history, st.hasHistory
}
