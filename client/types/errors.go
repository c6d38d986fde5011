package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies errors so that callers can react without matching messages.
type Kind uint8

const (
	KindUnknown Kind = iota
	// malformed addresses, amounts, batches, requests
	KindInput
	// relay answered without the expected proposal, delta or acknowledgment
	KindRelayState
	// not enough signatures, or signer sets disagree
	KindThreshold
	// local ledger state lags, resync and retry
	KindLedgerLag
	// another cosigner executed first
	KindRace
	// the ledger rejected execution, proving or submission
	KindExecution
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindRelayState:
		return "relay_state"
	case KindThreshold:
		return "threshold"
	case KindLedgerLag:
		return "ledger_lag"
	case KindRace:
		return "race"
	case KindExecution:
		return "execution"
	default:
		return "unknown"
	}
}

var (
	ErrAccountNotFound        = errors.New("multisig account not found")
	ErrProposalNotFound       = errors.New("proposal not found")
	ErrProposalTerminal       = errors.New("proposal is in a terminal state")
	ErrInsufficientSignatures = errors.New("insufficient signatures")
	ErrDeltaNotFound          = errors.New("delta not found for proposal")
	ErrMissingAcknowledgment  = errors.New("missing acknowledgment signature")
	ErrReconstructionMismatch = errors.New("rebuilt request does not match the signed summary")
	ErrExecutionFailed        = errors.New("execution failed")
)

type Error struct {
	kind Kind
	err  error
}

func NewError(kind Kind, err error) *Error {
	return &Error{kind: kind, err: err}
}

func Errorf(kind Kind, format string, values ...interface{}) *Error {
	return &Error{kind: kind, err: fmt.Errorf(format, values...)}
}

func (e *Error) Error() string {
	return e.kind.String() + ": " + e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}{
		Kind:    e.kind.String(),
		Message: e.err.Error(),
	})
}

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.kind
	}
	var warning *SyncWarning
	if errors.As(err, &warning) {
		return KindLedgerLag
	}
	return KindUnknown
}

const NonceTooLowWarning = "Sync warning: local state is ahead of the on-chain state. " +
	"This can happen right after executing a transaction. Please wait a moment and sync again."

// SyncWarning is returned when the local ledger state lags behind. It is not
// a failure, the operation should be retried after a sync.
type SyncWarning struct {
	Message string
	Err     error
}

func NewSyncWarning(err error) *SyncWarning {
	return &SyncWarning{Message: NonceTooLowWarning, Err: err}
}

func (w *SyncWarning) Error() string {
	if w.Err == nil {
		return w.Message
	}
	return w.Message + ": " + w.Err.Error()
}

func (w *SyncWarning) Unwrap() error {
	return w.Err
}

// Classify attaches a kind to the sentinel errors of this package when they
// arrive unclassified. Already classified errors are returned unchanged.
func Classify(err error) error {
	if err == nil || KindOf(err) != KindUnknown {
		return err
	}
	switch {
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrReconstructionMismatch):
		return NewError(KindInput, err)
	case errors.Is(err, ErrProposalNotFound), errors.Is(err, ErrProposalTerminal),
		errors.Is(err, ErrDeltaNotFound), errors.Is(err, ErrMissingAcknowledgment):
		return NewError(KindRelayState, err)
	case errors.Is(err, ErrInsufficientSignatures):
		return NewError(KindThreshold, err)
	case errors.Is(err, ErrExecutionFailed):
		return NewError(KindExecution, err)
	}
	return err
}
