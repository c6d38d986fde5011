package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	. "github.com/qash-finance/qash-sub002/client/api/dto"
	cs "github.com/qash-finance/qash-sub002/client/api/http_api/context_service"
	req "github.com/qash-finance/qash-sub002/client/api/http_api/requests"
	"github.com/qash-finance/qash-sub002/client/services/proposal"
	"github.com/qash-finance/qash-sub002/client/types"
	"github.com/qash-finance/qash-sub002/fsm/types/requests"
	"github.com/qash-finance/qash-sub002/primitives"
)

func (a *HTTPApp) CreateBatchProposal(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &CreateBatchDTO{}
	if err := stx.BindToDTO(&req.CreateBatchForm{}, formDTO); err != nil {
		return err
	}

	p, err := a.proposals.CreateBatchProposal(stx.Request().Context(), proposal.CreateBatchRequest{
		AccountID:   formDTO.AccountID,
		Recipients:  formDTO.Recipients,
		Description: formDTO.Description,
	})
	if err != nil {
		return stx.JsonFailure(err)
	}
	return stx.Json(http.StatusCreated, p)
}

func (a *HTTPApp) ListProposals(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &AccountDTO{}
	if err := stx.BindToDTO(&req.AccountForm{}, formDTO); err != nil {
		return err
	}

	proposals, err := a.proposals.ListProposals(stx.Request().Context(), formDTO.AccountID)
	if err != nil {
		return stx.JsonFailure(err)
	}
	return stx.Json(http.StatusOK, proposals)
}

func (a *HTTPApp) GetProposal(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &ProposalDTO{}
	if err := stx.BindToDTO(&req.ProposalForm{}, formDTO); err != nil {
		return err
	}

	p, err := a.proposals.GetProposal(stx.Request().Context(), formDTO.AccountID, formDTO.ProposalID)
	if err != nil {
		return stx.JsonFailure(err)
	}
	return stx.Json(http.StatusOK, p)
}

func (a *HTTPApp) SignProposal(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &SignDTO{}
	if err := stx.BindToDTO(&req.SignForm{}, formDTO); err != nil {
		return err
	}

	request, err := signRequest(formDTO)
	if err != nil {
		return stx.JsonFailure(err)
	}
	p, err := a.proposals.SignProposal(stx.Request().Context(), formDTO.AccountID, formDTO.ProposalID, request)
	if err != nil {
		return stx.JsonFailure(err)
	}
	return stx.Json(http.StatusOK, p)
}

func signRequest(formDTO *SignDTO) (proposal.SignRequest, error) {
	request := proposal.SignRequest{
		SignerCommitment: formDTO.SignerCommitment,
		ApproverIndex:    requests.NoApproverIndex,
	}
	if formDTO.ApproverIndex != nil {
		request.ApproverIndex = *formDTO.ApproverIndex
	}
	if formDTO.Scheme != "" {
		scheme, err := primitives.ParseScheme(formDTO.Scheme)
		if err != nil {
			return request, types.NewError(types.KindInput, err)
		}
		request.Scheme = scheme
	}

	signature, err := primitives.DecodeHexBytes(formDTO.Signature)
	if err != nil {
		return request, types.Errorf(types.KindInput, "invalid signature: %v", err)
	}
	if len(signature) == 0 {
		return request, types.Errorf(types.KindInput, "empty signature")
	}
	request.Signature = signature

	if formDTO.PublicKey != "" {
		pk, err := primitives.DecodeHexBytes(formDTO.PublicKey)
		if err != nil {
			return request, types.Errorf(types.KindInput, "invalid public key: %v", err)
		}
		request.PublicKey = pk
	}
	return request, nil
}

func (a *HTTPApp) ApproveProposal(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &ProposalDTO{}
	if err := stx.BindToDTO(&req.ProposalForm{}, formDTO); err != nil {
		return err
	}

	p, err := a.proposals.Approve(stx.Request().Context(), formDTO.AccountID, formDTO.ProposalID)
	if err != nil {
		return stx.JsonFailure(err)
	}
	return stx.Json(http.StatusOK, p)
}

func (a *HTTPApp) RejectBySigner(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &RejectBySignerDTO{}
	if err := stx.BindToDTO(&req.RejectBySignerForm{}, formDTO); err != nil {
		return err
	}

	p, err := a.proposals.RejectBySigner(stx.Request().Context(),
		formDTO.AccountID, formDTO.ProposalID, formDTO.SignerCommitment, formDTO.Reason)
	if err != nil {
		return stx.JsonFailure(err)
	}
	return stx.Json(http.StatusOK, p)
}

func (a *HTTPApp) CancelProposal(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &CloseDTO{}
	if err := stx.BindToDTO(&req.CloseForm{}, formDTO); err != nil {
		return err
	}

	p, err := a.proposals.CancelProposal(stx.Request().Context(), formDTO.AccountID, formDTO.ProposalID, formDTO.Reason)
	if err != nil {
		return stx.JsonFailure(err)
	}
	return stx.Json(http.StatusOK, p)
}

func (a *HTTPApp) RejectProposal(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &CloseDTO{}
	if err := stx.BindToDTO(&req.CloseForm{}, formDTO); err != nil {
		return err
	}

	p, err := a.proposals.RejectProposal(stx.Request().Context(), formDTO.AccountID, formDTO.ProposalID, formDTO.Reason)
	if err != nil {
		return stx.JsonFailure(err)
	}
	return stx.Json(http.StatusOK, p)
}

func (a *HTTPApp) ExecuteProposal(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &ProposalDTO{}
	if err := stx.BindToDTO(&req.ProposalForm{}, formDTO); err != nil {
		return err
	}

	result, err := a.executor.Execute(stx.Request().Context(), formDTO.AccountID, formDTO.ProposalID)
	if err != nil {
		return stx.JsonFailure(fmt.Errorf("failed to execute proposal %s: %w", formDTO.ProposalID, err))
	}
	return stx.Json(http.StatusOK, result)
}
