package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/qash-finance/qash-sub002/batch"
)

var (
	// ErrNonceTooLow is returned when the local account state is ahead of
	// the chain, usually right after another transaction was submitted.
	ErrNonceTooLow = errors.New("account nonce is too low to import")
	// ErrAlreadyApplied is returned when the transaction was already
	// included, typically by another cosigner.
	ErrAlreadyApplied = errors.New("transaction already applied")
	ErrUnknownAccount = errors.New("unknown account")
	ErrUnknownFaucet  = errors.New("unknown faucet")
	// ErrUnauthorized is returned when the advice does not carry enough
	// valid signer signatures over the transaction commitment.
	ErrUnauthorized = errors.New("auth procedure rejected transaction")
)

// ExecutedTransaction is the result of executing a request against the local
// account state.
type ExecutedTransaction struct {
	ID        string
	AccountID string
	Nonce     uint64
	Request   *batch.TransactionRequest
}

type ProvenTransaction struct {
	ExecutedID string
	Proof      []byte
}

type Balance struct {
	FaucetID string `json:"faucet_id"`
	Amount   uint64 `json:"amount"`
}

type FaucetMetadata struct {
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

// Client is the ledger SDK boundary. Steps of a submission must be called in
// order: execute, prove, submit, apply.
type Client interface {
	SyncState(ctx context.Context) (uint64, error)
	ExecuteTransaction(ctx context.Context, accountID string, request *batch.TransactionRequest) (*ExecutedTransaction, error)
	ProveTransaction(ctx context.Context, executed *ExecutedTransaction) (*ProvenTransaction, error)
	SubmitProvenTransaction(ctx context.Context, proven *ProvenTransaction, executed *ExecutedTransaction) (uint64, error)
	ApplyTransaction(ctx context.Context, executed *ExecutedTransaction, submissionHeight uint64) error

	GetAccountBalances(ctx context.Context, accountID string) ([]Balance, error)
	GetFaucetMetadata(ctx context.Context, faucetID string) (FaucetMetadata, error)
}

// IsNonceTooLow reports whether err signals local state ahead of the chain.
// SDK errors arrive as text, so the message is matched as well.
func IsNonceTooLow(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNonceTooLow) || strings.Contains(err.Error(), ErrNonceTooLow.Error())
}

// IsAlreadyApplied reports whether err signals that the effect of the
// transaction is already on chain.
func IsAlreadyApplied(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAlreadyApplied) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already applied") ||
		strings.Contains(msg, "already executed") ||
		strings.Contains(msg, "duplicate transaction")
}
