package requests

import (
	"github.com/qash-finance/qash-sub002/batch"
)

type AccountForm struct {
	AccountID string `param:"accountID" validate:"attr=accountID,min=3"`
}

type ProposalForm struct {
	AccountID  string `param:"accountID" validate:"attr=accountID,min=3"`
	ProposalID string `param:"proposalID" validate:"attr=proposalID,min=3"`
}

type CreateBatchForm struct {
	AccountID   string            `param:"accountID" validate:"attr=accountID,min=3"`
	Recipients  []batch.Recipient `json:"recipients"`
	Description string            `json:"description"`
}

// SignForm carries a cosigner signature. ApproverIndex is optional, the
// signer commitment is looked up when it is missing.
type SignForm struct {
	AccountID        string `param:"accountID" validate:"attr=accountID,min=3"`
	ProposalID       string `param:"proposalID" validate:"attr=proposalID,min=3"`
	SignerCommitment string `json:"signer_commitment" validate:"attr=signer_commitment,min=3"`
	ApproverIndex    *int   `json:"approver_index"`
	Scheme           string `json:"scheme"`
	Signature        string `json:"signature" validate:"attr=signature,min=3"`
	PublicKey        string `json:"public_key"`
}

type RejectBySignerForm struct {
	AccountID        string `param:"accountID" validate:"attr=accountID,min=3"`
	ProposalID       string `param:"proposalID" validate:"attr=proposalID,min=3"`
	SignerCommitment string `json:"signer_commitment" validate:"attr=signer_commitment,min=3"`
	Reason           string `json:"reason"`
}

type CloseForm struct {
	AccountID  string `param:"accountID" validate:"attr=accountID,min=3"`
	ProposalID string `param:"proposalID" validate:"attr=proposalID,min=3"`
	Reason     string `json:"reason"`
}
