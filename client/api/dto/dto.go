package dto

import (
	"github.com/qash-finance/qash-sub002/batch"
)

// This packages contains DTO (Data Transfer Object) structures
// for providing validated and sanitized values to service layer

type AccountDTO struct {
	AccountID string
}

type ProposalDTO struct {
	AccountID  string
	ProposalID string
}

type CreateBatchDTO struct {
	AccountID   string
	Recipients  []batch.Recipient
	Description string
}

type SignDTO struct {
	AccountID        string
	ProposalID       string
	SignerCommitment string
	ApproverIndex    *int
	Scheme           string
	Signature        string
	PublicKey        string
}

type RejectBySignerDTO struct {
	AccountID        string
	ProposalID       string
	SignerCommitment string
	Reason           string
}

type CloseDTO struct {
	AccountID  string
	ProposalID string
	Reason     string
}
