package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	dummycontract "github.com/edutoken/dapp/contract/dummy"
	"github.com/edutoken/dapp/core"
	"github.com/edutoken/dapp/core/chain"
	"github.com/edutoken/dapp/core/dapp"
	"github.com/edutoken/dapp/core/review"
	"github.com/edutoken/dapp/core/role"
	"github.com/edutoken/dapp/core/submission"
	notifsvc "github.com/edutoken/dapp/services/notifier"
)

var (
	ownerAddr   = common.HexToAddress("0x1AF1C89DCF2fC4aDcC4Ba174289aa6E6cd1710cD")
	teacherAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")

	testNetwork = core.NetworkConfig{ChainID: "0x190F1B46", ChainName: "Paseo Asset Hub"}
)

type httpErr struct {
	Error string `json:"error"`
}

func setup(t *testing.T, account common.Address) (Server, *dummycontract.Authority, *chain.FakeProvider) {
	t.Helper()

	provider := &chain.FakeProvider{
		Present:  true,
		Accounts: []common.Address{account},
		Chain:    testNetwork.ChainID,
	}
	sessions := chain.NewService(testNetwork, core.NopLogger{}, provider)
	authority := dummycontract.NewAuthority(ownerAddr)
	store := submission.NewStore(authority, core.NopLogger{})
	notifications := notifsvc.NewRingNotifier(0)
	roles := role.NewResolver(authority)
	orc := dapp.NewOrchestrator(sessions, roles, store, notifications, core.NopLogger{})
	reviewSvc := review.NewService(sessions, roles, store, authority, notifications, core.NopLogger{})

	srv := NewServer(&Options{
		Address:        ":0",
		DisableReqLogs: true,
		Logger:         core.NopLogger{},
		Orchestrator:   orc,
		ReviewSvc:      reviewSvc,
		Store:          store,
		Notifications:  notifications,
	})
	return srv, authority, provider
}

func doRequest(srv Server, method, path string, data ...[]byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func connect(t *testing.T, srv Server) {
	t.Helper()
	rec := doRequest(srv, http.MethodPost, "/v1/session/connect")
	if rec.Code != http.StatusOK {
		t.Fatalf("connect failed: %d %s", rec.Code, rec.Body.String())
	}
}

func marshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal() failed: %v", err)
	}
	return data
}

func TestSessionEndpoints(t *testing.T) {
	srv, _, provider := setup(t, teacherAddr)

	rec := doRequest(srv, http.MethodGet, "/v1/session")
	assert.Equal(t, http.StatusOK, rec.Code)
	var state dapp.State
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.False(t, state.Session.Connected)

	rec = doRequest(srv, http.MethodPost, "/v1/session/connect")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.Session.Connected)
	assert.Equal(t, role.Teacher, state.Role)

	rec = doRequest(srv, http.MethodPost, "/v1/session/disconnect")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.False(t, state.Session.Connected)

	provider.Present = false
	rec = doRequest(srv, http.MethodPost, "/v1/session/connect")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestViewsBeforeConnect(t *testing.T) {
	srv, _, _ := setup(t, teacherAddr)

	rec := doRequest(srv, http.MethodGet, "/v1/submissions/mine")
	assert.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Fetched bool `json:"fetched"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.False(t, view.Fetched)
}

func TestSubmitAchievementEndpoint(t *testing.T) {
	srv, authority, _ := setup(t, teacherAddr)
	connect(t, srv)

	body := marshal(t, review.NewSubmission{
		AchievementType: "Workshop",
		Description:     "Taught a robotics workshop",
		ProofLink:       "https://example.org/proof",
	})
	rec := doRequest(srv, http.MethodPost, "/v1/submissions", body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	ids, err := authority.TeacherSubmissions(context.Background(), teacherAddr)
	assert.NoError(t, err)
	assert.Len(t, ids, 1)

	rec = doRequest(srv, http.MethodGet, "/v1/submissions/mine")
	assert.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Fetched bool                    `json:"fetched"`
		Data    []submission.Submission `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.Fetched)
	assert.Len(t, view.Data, 1)
	assert.Equal(t, "Workshop", view.Data[0].AchievementType)
}

func TestSubmitValidationError(t *testing.T) {
	srv, _, _ := setup(t, teacherAddr)
	connect(t, srv)

	body := marshal(t, review.NewSubmission{AchievementType: "Workshop"})
	rec := doRequest(srv, http.MethodPost, "/v1/submissions", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var fields map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
	assert.Contains(t, fields, "description")
	assert.Contains(t, fields, "proof_link")
}

func TestSubmitWhileDisconnected(t *testing.T) {
	srv, _, _ := setup(t, teacherAddr)

	body := marshal(t, review.NewSubmission{
		AchievementType: "Workshop",
		Description:     "d",
		ProofLink:       "https://example.org",
	})
	rec := doRequest(srv, http.MethodPost, "/v1/submissions", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminEndpointsForbiddenForTeacher(t *testing.T) {
	srv, _, _ := setup(t, teacherAddr)
	connect(t, srv)

	rec := doRequest(srv, http.MethodPost, "/v1/admin/submissions/1/approve")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/v1/session/tab", marshal(t, map[string]string{"tab": "admin"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApproveRejectFlow(t *testing.T) {
	srv, authority, _ := setup(t, ownerAddr)
	connect(t, srv)

	for i := 0; i < 2; i++ {
		_, err := authority.SubmitAchievement(context.Background(), teacherAddr, "Workshop", "d", "https://example.org")
		assert.NoError(t, err)
	}

	rec := doRequest(srv, http.MethodPost, "/v1/admin/submissions/1/approve")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/v1/admin/submissions/2/reject",
		marshal(t, map[string]string{"reason": "no proof"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	// approving a rejected submission surfaces the contract revert
	rec = doRequest(srv, http.MethodPost, "/v1/admin/submissions/2/approve")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	sub, err := authority.GetSubmission(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, submission.StatusApproved, sub.Status)
	sub, err = authority.GetSubmission(context.Background(), 2)
	assert.NoError(t, err)
	assert.Equal(t, submission.StatusRejected, sub.Status)
	assert.Equal(t, "no proof", sub.RejectionReason)
}

func TestRejectWithoutReason(t *testing.T) {
	srv, authority, _ := setup(t, ownerAddr)
	connect(t, srv)

	_, err := authority.SubmitAchievement(context.Background(), teacherAddr, "Workshop", "d", "https://example.org")
	assert.NoError(t, err)

	rec := doRequest(srv, http.MethodPost, "/v1/admin/submissions/1/reject", marshal(t, map[string]string{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBadSubmissionID(t *testing.T) {
	srv, _, _ := setup(t, ownerAddr)
	connect(t, srv)

	rec := doRequest(srv, http.MethodPost, "/v1/admin/submissions/abc/approve")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoryAndDirectReward(t *testing.T) {
	srv, authority, _ := setup(t, ownerAddr)
	connect(t, srv)

	rec := doRequest(srv, http.MethodPost, "/v1/admin/categories",
		marshal(t, map[string]string{"name": "Hackathon", "amount": "30"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/v1/admin/rewards",
		marshal(t, map[string]string{"teacher": teacherAddr.Hex(), "achievement_type": "Hackathon"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	bal, err := authority.BalanceOf(context.Background(), teacherAddr)
	assert.NoError(t, err)
	assert.Equal(t, "30.00", bal.String())
}

func TestRedeemEndpoint(t *testing.T) {
	srv, authority, _ := setup(t, teacherAddr)
	connect(t, srv)
	authority.Fund(teacherAddr, core.MustParseAmount("20"))

	rec := doRequest(srv, http.MethodPost, "/v1/redeem",
		marshal(t, map[string]string{"amount": "12.5", "benefit": "Conference ticket"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	// over-redeeming maps the revert reason to 422
	rec = doRequest(srv, http.MethodPost, "/v1/redeem",
		marshal(t, map[string]string{"amount": "100", "benefit": "Conference ticket"}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestNotificationsFeed(t *testing.T) {
	srv, _, _ := setup(t, teacherAddr)
	connect(t, srv)

	rec := doRequest(srv, http.MethodGet, "/v1/notifications")
	assert.Equal(t, http.StatusOK, rec.Code)

	var feed []core.Notification
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
	assert.NotEmpty(t, feed) // the connect toast
}
