package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	. "github.com/qash-finance/qash-sub002/client/api/dto"
	cs "github.com/qash-finance/qash-sub002/client/api/http_api/context_service"
	req "github.com/qash-finance/qash-sub002/client/api/http_api/requests"
	"github.com/qash-finance/qash-sub002/client/api/http_api/responses"
	"github.com/qash-finance/qash-sub002/client/services/syncer"
	"github.com/qash-finance/qash-sub002/client/types"
)

func (a *HTTPApp) GetNodeInfo(c echo.Context) error {
	stx := c.(*cs.ContextService)
	info := responses.NodeInfo{Username: a.username}
	if a.signer != nil {
		info.PublicKey = a.signer.PublicKeyHex()
		info.Commitment = a.signer.Commitment(a.hasher).Hex()
	}
	return stx.Json(http.StatusOK, info)
}

func (a *HTTPApp) ListAccounts(c echo.Context) error {
	stx := c.(*cs.ContextService)
	ids := a.accounts.IDs()
	list := make([]types.MultisigAccount, 0, len(ids))
	for _, id := range ids {
		account, err := a.accounts.Get(id)
		if err != nil {
			continue
		}
		list = append(list, account)
	}
	return stx.Json(http.StatusOK, list)
}

// GetAccountSnapshot returns what the last sync round saw for the account.
func (a *HTTPApp) GetAccountSnapshot(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &AccountDTO{}
	if err := stx.BindToDTO(&req.AccountForm{}, formDTO); err != nil {
		return err
	}

	account, err := a.accounts.Get(formDTO.AccountID)
	if err != nil {
		return stx.JsonFailure(err)
	}
	snapshot, ok := a.syncer.Snapshot(account.AccountID)
	if !ok {
		snapshot = syncer.AccountSnapshot{AccountID: account.AccountID}
	}
	return stx.Json(http.StatusOK, snapshot)
}

func (a *HTTPApp) GetSyncStatus(c echo.Context) error {
	stx := c.(*cs.ContextService)
	return stx.Json(http.StatusOK, responses.SyncStatus{
		Status:   a.syncer.Status(),
		Accounts: a.accounts.IDs(),
	})
}

// Sync runs a round now. A skipped round (paused or busy) is not an error.
func (a *HTTPApp) Sync(c echo.Context) error {
	stx := c.(*cs.ContextService)
	if err := a.syncer.SyncOnce(stx.Request().Context()); err != nil {
		return stx.JsonFailure(err)
	}
	return stx.Json(http.StatusOK, a.syncer.Status())
}
