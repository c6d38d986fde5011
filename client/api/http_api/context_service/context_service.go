package context_service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/censync/go-dto"
	"github.com/censync/go-validator"
	"github.com/labstack/echo/v4"

	"github.com/qash-finance/qash-sub002/client/types"
)

type ContextService struct {
	echo.Context
}

func New(c echo.Context) *ContextService {
	return &ContextService{
		c,
	}
}

type CSJsonResp struct {
	Result interface{} `json:"result"`
}

// Custom error
type CSErrorResp struct {
	Result       interface{} `json:"result"`
	ErrorMessage string      `json:"error_message,omitempty"`
	Kind         string      `json:"kind,omitempty"`
	Warning      string      `json:"warning,omitempty"`

	Code int `json:"-"`
}

func (e *CSErrorResp) Error() string {
	if e == nil {
		return ""
	}
	return e.ErrorMessage
}

// NewErrorResp builds an error response. The status code follows the error
// kind, see StatusOf.
func NewErrorResp(err error) *CSErrorResp {
	resp := &CSErrorResp{
		Result: struct{}{},
		Code:   StatusOf(err),
	}
	if err == nil {
		resp.ErrorMessage = "undefined error"
		return resp
	}
	resp.ErrorMessage = err.Error()
	if kind := types.KindOf(err); kind != types.KindUnknown {
		resp.Kind = kind.String()
	}
	var warning *types.SyncWarning
	if errors.As(err, &warning) {
		resp.Warning = warning.Message
	}
	return resp
}

// StatusOf maps a classified error to an HTTP status.
func StatusOf(err error) int {
	if errors.Is(err, types.ErrAccountNotFound) || errors.Is(err, types.ErrProposalNotFound) {
		return http.StatusNotFound
	}
	switch types.KindOf(err) {
	case types.KindInput:
		return http.StatusBadRequest
	case types.KindRelayState, types.KindRace:
		return http.StatusConflict
	case types.KindThreshold:
		return http.StatusPreconditionFailed
	case types.KindLedgerLag:
		return http.StatusServiceUnavailable
	case types.KindExecution:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// BindToRequest populates the request fields based on the context path and query parameters and body
// and validates the result.
func (cs *ContextService) BindToRequest(request interface{}) error {
	if err := cs.Bind(request); err != nil {
		return badRequest(fmt.Errorf("failed to read request body: %v", err))
	}
	if err := validator.Validate(request); !err.IsEmpty() {
		return badRequest(err.Error())
	}
	return nil
}

// BindToDTO builds a request of the given form based on the context and converts it to a DTO.
func (cs *ContextService) BindToDTO(requestForm, dtoForm interface{}) error {
	if err := cs.BindToRequest(requestForm); err != nil {
		return err
	}
	if err := dto.RequestToDTO(dtoForm, requestForm); err != nil {
		return badRequest(err)
	}
	return nil
}

func badRequest(err error) *CSErrorResp {
	return &CSErrorResp{
		Result:       struct{}{},
		ErrorMessage: err.Error(),
		Code:         http.StatusBadRequest,
	}
}

func (cs *ContextService) Json(code int, data interface{}) error {
	if data != nil {
		return cs.JSON(code, &CSJsonResp{
			Result: data,
		})
	} else {
		return cs.JSON(code, &CSJsonResp{
			Result: struct{}{},
		})
	}
}

func (cs *ContextService) JsonEmpty(code int) error {
	return cs.JSON(code, &CSJsonResp{
		Result: struct{}{},
	})
}

func (cs *ContextService) JsonError(code int, err error) error {
	resp := NewErrorResp(err)
	resp.Code = code
	return cs.JSON(code, resp)
}

// JsonFailure writes err with the status of its kind.
func (cs *ContextService) JsonFailure(err error) error {
	resp := NewErrorResp(err)
	return cs.JSON(resp.Code, resp)
}
