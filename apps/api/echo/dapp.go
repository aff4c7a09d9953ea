package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edutoken/dapp/core"
	"github.com/edutoken/dapp/core/dapp"
	"github.com/edutoken/dapp/core/review"
	"github.com/edutoken/dapp/core/submission"
	notifsvc "github.com/edutoken/dapp/services/notifier"
)

type dappApi struct {
	orc           *dapp.Orchestrator
	reviewSvc     *review.Service
	store         *submission.Store
	notifications *notifsvc.RingNotifier
}

func registerDappAPI(g *echo.Group, opts *Options) {
	api := dappApi{
		orc:           opts.Orchestrator,
		reviewSvc:     opts.ReviewSvc,
		store:         opts.Store,
		notifications: opts.Notifications,
	}

	sg := g.Group("/session")
	sg.GET("", api.state)
	sg.POST("/connect", api.connect)
	sg.POST("/resume", api.resume)
	sg.POST("/disconnect", api.disconnect)
	sg.POST("/refresh", api.refresh)
	sg.POST("/tab", api.selectTab)

	g.GET("/submissions/mine", api.mySubmissions)
	g.GET("/submissions/pending", api.pendingSubmissions)
	g.GET("/history", api.history)
	g.GET("/notifications", api.listNotifications)

	g.POST("/submissions", api.submitAchievement)
	g.POST("/redeem", api.redeemTokens)

	ag := g.Group("/admin")
	ag.POST("/submissions/:id/approve", api.approveSubmission)
	ag.POST("/submissions/:id/reject", api.rejectSubmission)
	ag.POST("/submissions/:id/revoke", api.revokeReward)
	ag.POST("/rewards", api.issueReward)
	ag.POST("/rewards/custom", api.issueCustomReward)
	ag.POST("/revocations/custom", api.revokeCustomAmount)
	ag.POST("/categories", api.setRewardCategory)
}

// cachedView renders a view cache: an explicit fetched flag instead of silent
// stale data when the backing fetch has not succeeded yet.
type cachedView struct {
	Fetched bool        `json:"fetched"`
	Data    interface{} `json:"data,omitempty"`
}

// Session handlers

func (api *dappApi) state(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.orc.State())
}

func (api *dappApi) connect(ctx echo.Context) error {
	state, err := api.orc.Connect(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "connecting wallet")
	}
	return ctx.JSON(http.StatusOK, state)
}

func (api *dappApi) resume(ctx echo.Context) error {
	state, err := api.orc.Resume(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "resuming session")
	}
	return ctx.JSON(http.StatusOK, state)
}

func (api *dappApi) disconnect(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.orc.Disconnect())
}

func (api *dappApi) refresh(ctx echo.Context) error {
	if err := api.orc.Refresh(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "refreshing caches")
	}
	return ctx.JSON(http.StatusOK, api.orc.State())
}

func (api *dappApi) selectTab(ctx echo.Context) error {
	var data struct {
		Tab dapp.Tab `json:"tab"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding tab selection")
	}
	state, err := api.orc.SelectTab(data.Tab)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, state)
}

// View handlers

func (api *dappApi) mySubmissions(ctx echo.Context) error {
	subs, ok := api.store.Mine()
	return ctx.JSON(http.StatusOK, cachedView{Fetched: ok, Data: subs})
}

func (api *dappApi) pendingSubmissions(ctx echo.Context) error {
	subs, count, ok := api.store.Pending()
	return ctx.JSON(http.StatusOK, struct {
		cachedView
		Count uint64 `json:"count"`
	}{cachedView{Fetched: ok, Data: subs}, count})
}

func (api *dappApi) history(ctx echo.Context) error {
	hist, ok := api.store.History()
	if !ok {
		return ctx.JSON(http.StatusOK, cachedView{Fetched: false})
	}
	return ctx.JSON(http.StatusOK, cachedView{Fetched: true, Data: hist})
}

func (api *dappApi) listNotifications(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.notifications.Recent())
}

// Teacher action handlers

func (api *dappApi) submitAchievement(ctx echo.Context) error {
	var data review.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	rcpt, err := api.reviewSvc.SubmitAchievement(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rcpt)
}

func (api *dappApi) redeemTokens(ctx echo.Context) error {
	var data review.Redemption
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Redemption")
	}
	rcpt, err := api.reviewSvc.RedeemTokens(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rcpt)
}

// Admin action handlers

func (api *dappApi) approveSubmission(ctx echo.Context) error {
	id, err := submissionID(ctx)
	if err != nil {
		return err
	}
	rcpt, err := api.reviewSvc.ApproveSubmission(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rcpt)
}

func (api *dappApi) rejectSubmission(ctx echo.Context) error {
	id, err := submissionID(ctx)
	if err != nil {
		return err
	}
	var data review.Rejection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Rejection")
	}
	data.ID = id
	rcpt, err := api.reviewSvc.RejectSubmission(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rcpt)
}

func (api *dappApi) revokeReward(ctx echo.Context) error {
	id, err := submissionID(ctx)
	if err != nil {
		return err
	}
	var data review.Revocation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Revocation")
	}
	data.ID = id
	rcpt, err := api.reviewSvc.RevokeReward(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rcpt)
}

func (api *dappApi) issueReward(ctx echo.Context) error {
	var data review.DirectReward
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DirectReward")
	}
	rcpt, err := api.reviewSvc.IssueReward(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rcpt)
}

func (api *dappApi) issueCustomReward(ctx echo.Context) error {
	var data review.CustomReward
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CustomReward")
	}
	rcpt, err := api.reviewSvc.IssueCustomReward(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rcpt)
}

func (api *dappApi) revokeCustomAmount(ctx echo.Context) error {
	var data review.CustomRevocation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CustomRevocation")
	}
	rcpt, err := api.reviewSvc.RevokeCustomAmount(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rcpt)
}

func (api *dappApi) setRewardCategory(ctx echo.Context) error {
	var data review.CategoryUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CategoryUpdate")
	}
	rcpt, err := api.reviewSvc.SetRewardCategory(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rcpt)
}

func submissionID(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, core.NewValidationError(nil, core.FieldError{Field: "id", Error: "must be a positive integer"})
	}
	return id, nil
}
