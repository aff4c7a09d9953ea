package submission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/edutoken/dapp/core"
)

var teacherAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")

// fakeReader serves canned data and can fail per query.
type fakeReader struct {
	mu           sync.Mutex
	submissions  map[uint64]Submission
	byTeacher    map[common.Address][]uint64
	achievements map[common.Address][]string
	rates        map[string]core.Amount
	total        core.Amount
	balance      core.Amount

	failIDs     error
	failGet     error
	failPending error
	failHistory error

	// blockIDs holds TeacherSubmissions until released, to order races in
	// tests; enteredIDs is closed once the call is inside the fetch.
	blockIDs   chan struct{}
	enteredIDs chan struct{}
}

func (r *fakeReader) TeacherSubmissions(_ context.Context, teacher common.Address) ([]uint64, error) {
	if r.blockIDs != nil {
		if r.enteredIDs != nil {
			close(r.enteredIDs)
		}
		<-r.blockIDs
	}
	if r.failIDs != nil {
		return nil, r.failIDs
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint64(nil), r.byTeacher[teacher]...), nil
}

func (r *fakeReader) GetSubmission(_ context.Context, id uint64) (Submission, error) {
	if r.failGet != nil {
		return Submission{}, r.failGet
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.submissions[id]
	if !ok {
		return Submission{}, ErrNotFound
	}
	return sub, nil
}

func (r *fakeReader) PendingCount(context.Context) (uint64, error) {
	if r.failPending != nil {
		return 0, r.failPending
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n uint64
	for _, sub := range r.submissions {
		if sub.Status == StatusPending {
			n++
		}
	}
	return n, nil
}

func (r *fakeReader) AllPendingSubmissions(context.Context) ([]Submission, error) {
	if r.failPending != nil {
		return nil, r.failPending
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var subs []Submission
	for _, sub := range r.submissions {
		if sub.Status == StatusPending {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

func (r *fakeReader) AchievementHistory(_ context.Context, teacher common.Address) ([]string, error) {
	if r.failHistory != nil {
		return nil, r.failHistory
	}
	return r.achievements[teacher], nil
}

func (r *fakeReader) TotalRewards(context.Context, common.Address) (core.Amount, error) {
	if r.failHistory != nil {
		return core.Amount{}, r.failHistory
	}
	return r.total, nil
}

func (r *fakeReader) BalanceOf(context.Context, common.Address) (core.Amount, error) {
	if r.failHistory != nil {
		return core.Amount{}, r.failHistory
	}
	return r.balance, nil
}

func (r *fakeReader) RewardAmount(_ context.Context, category string) (core.Amount, error) {
	return r.rates[category], nil
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		submissions:  make(map[uint64]Submission),
		byTeacher:    make(map[common.Address][]uint64),
		achievements: make(map[common.Address][]string),
		rates:        make(map[string]core.Amount),
	}
}

func (r *fakeReader) add(sub Submission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions[sub.ID] = sub
	r.byTeacher[sub.Teacher] = append(r.byTeacher[sub.Teacher], sub.ID)
}

func pendingSub(id uint64, teacher common.Address) Submission {
	return Submission{
		ID:              id,
		Teacher:         teacher,
		AchievementType: "Workshop",
		Description:     "Taught a robotics workshop",
		ProofLink:       "https://example.org/proof",
		SubmittedAt:     time.Now().UTC(),
		Status:          StatusPending,
	}
}

func TestRefreshMine(t *testing.T) {
	repo := newFakeReader()
	repo.add(pendingSub(1, teacherAddr))
	repo.add(pendingSub(2, teacherAddr))
	st := NewStore(repo, core.NopLogger{})

	subs, err := st.RefreshMine(context.Background(), teacherAddr)
	if err != nil {
		t.Fatalf("RefreshMine() failed: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("RefreshMine() returned %d submissions, want 2", len(subs))
	}
	if cached, ok := st.Mine(); !ok || len(cached) != 2 {
		t.Errorf("Mine() = (%d, %v), want (2, true)", len(cached), ok)
	}
}

func TestRefreshMineEmptyIsNotAnError(t *testing.T) {
	st := NewStore(newFakeReader(), core.NopLogger{})

	subs, err := st.RefreshMine(context.Background(), teacherAddr)
	if err != nil {
		t.Fatalf("RefreshMine() over empty id list failed: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("RefreshMine() = %v, want empty set", subs)
	}
	if _, ok := st.Mine(); !ok {
		t.Error("empty result did not populate the cache")
	}
}

func TestRefreshMineFailureKeepsPriorCache(t *testing.T) {
	repo := newFakeReader()
	repo.add(pendingSub(1, teacherAddr))
	st := NewStore(repo, core.NopLogger{})

	if _, err := st.RefreshMine(context.Background(), teacherAddr); err != nil {
		t.Fatalf("RefreshMine() failed: %v", err)
	}

	repo.failIDs = errors.New("rpc timeout")
	_, err := st.RefreshMine(context.Background(), teacherAddr)
	var fetchErr *core.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("RefreshMine() error = %v, want FetchError", err)
	}
	if cached, ok := st.Mine(); !ok || len(cached) != 1 {
		t.Errorf("prior cache lost after failed refresh: (%d, %v)", len(cached), ok)
	}
}

func TestRefreshPending(t *testing.T) {
	repo := newFakeReader()
	repo.add(pendingSub(1, teacherAddr))
	approved := pendingSub(2, teacherAddr)
	approved.Status = StatusApproved
	repo.add(approved)
	st := NewStore(repo, core.NopLogger{})

	subs, err := st.RefreshPending(context.Background())
	if err != nil {
		t.Fatalf("RefreshPending() failed: %v", err)
	}
	if len(subs) != 1 || subs[0].ID != 1 {
		t.Errorf("RefreshPending() = %v, want only submission 1", subs)
	}
	if _, count, ok := st.Pending(); !ok || count != 1 {
		t.Errorf("Pending() count = %d, want 1", count)
	}
}

func TestRefreshHistoryUsesCurrentRates(t *testing.T) {
	repo := newFakeReader()
	repo.achievements[teacherAddr] = []string{"Workshop", "Publication", "Workshop"}
	repo.rates["Workshop"] = core.MustParseAmount("10")
	repo.rates["Publication"] = core.MustParseAmount("50")
	repo.total = core.MustParseAmount("70")
	repo.balance = core.MustParseAmount("45.5")
	st := NewStore(repo, core.NopLogger{})

	hist, err := st.RefreshHistory(context.Background(), teacherAddr)
	if err != nil {
		t.Fatalf("RefreshHistory() failed: %v", err)
	}
	if len(hist.Achievements) != 3 {
		t.Fatalf("history has %d achievements, want 3", len(hist.Achievements))
	}
	if got := hist.Achievements[1].Reward.String(); got != "50.00" {
		t.Errorf("Publication reward = %s, want 50.00", got)
	}
	if got := hist.CurrentBalance.String(); got != "45.50" {
		t.Errorf("balance = %s, want 45.50", got)
	}
}

func TestRefreshAllIndependentFailures(t *testing.T) {
	repo := newFakeReader()
	repo.add(pendingSub(1, teacherAddr))
	repo.achievements[teacherAddr] = []string{"Workshop"}
	repo.failHistory = errors.New("rpc timeout")
	st := NewStore(repo, core.NopLogger{})

	err := st.RefreshAll(context.Background(), teacherAddr)
	if err == nil {
		t.Fatal("RefreshAll() succeeded, want history failure reported")
	}
	if _, ok := st.Mine(); !ok {
		t.Error("mine cache not populated despite history failure")
	}
	if _, _, ok := st.Pending(); !ok {
		t.Error("pending cache not populated despite history failure")
	}
	if _, ok := st.History(); ok {
		t.Error("failed history refresh populated its cache")
	}
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	repo := newFakeReader()
	repo.add(pendingSub(1, teacherAddr))
	repo.blockIDs = make(chan struct{})
	repo.enteredIDs = make(chan struct{})
	st := NewStore(repo, core.NopLogger{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = st.RefreshMine(context.Background(), teacherAddr)
	}()

	// an account change supersedes the in-flight refresh before it resolves
	<-repo.enteredIDs
	st.Reset()
	close(repo.blockIDs)
	<-done

	if _, ok := st.Mine(); ok {
		t.Error("stale refresh result overwrote the reset cache")
	}
}

func TestResetClearsCaches(t *testing.T) {
	repo := newFakeReader()
	repo.add(pendingSub(1, teacherAddr))
	st := NewStore(repo, core.NopLogger{})
	if _, err := st.RefreshMine(context.Background(), teacherAddr); err != nil {
		t.Fatalf("RefreshMine() failed: %v", err)
	}

	st.Reset()
	if _, ok := st.Mine(); ok {
		t.Error("Mine() still populated after Reset()")
	}
	if _, _, ok := st.Pending(); ok {
		t.Error("Pending() still populated after Reset()")
	}
	if _, ok := st.History(); ok {
		t.Error("History() still populated after Reset()")
	}
}
