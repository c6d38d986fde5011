package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qash-finance/qash-sub002/client/api/http_api/handlers"
)

func SetRouter(e *echo.Echo, h *handlers.HTTPApp) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/node", h.GetNodeInfo)

	e.GET("/sync", h.GetSyncStatus)
	e.POST("/sync", h.Sync)

	e.GET("/accounts", h.ListAccounts)
	e.GET("/accounts/:accountID", h.GetAccountSnapshot)

	proposals := e.Group("/accounts/:accountID/proposals")
	proposals.GET("", h.ListProposals)
	proposals.POST("", h.CreateBatchProposal)
	proposals.GET("/:proposalID", h.GetProposal)
	proposals.POST("/:proposalID/sign", h.SignProposal)
	proposals.POST("/:proposalID/approve", h.ApproveProposal)
	proposals.POST("/:proposalID/reject_signer", h.RejectBySigner)
	proposals.POST("/:proposalID/cancel", h.CancelProposal)
	proposals.POST("/:proposalID/reject", h.RejectProposal)
	proposals.POST("/:proposalID/execute", h.ExecuteProposal)
}
