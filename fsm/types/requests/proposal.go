package requests

import (
	"time"

	"github.com/qash-finance/qash-sub002/batch"
	"github.com/qash-finance/qash-sub002/fsm/types"
	"github.com/qash-finance/qash-sub002/primitives"
)

// NoApproverIndex marks a signature submitted without an approver index.
const NoApproverIndex = -1

// States: "state_proposal_idle"
// Events: "event_proposal_init"
type ProposalInitRequest struct {
	AccountID         string
	ProposalType      types.ProposalType
	SummaryCommitment string
	Summary           []byte
	Threshold         int
	SignerCommitments []string
	// Optional, pins the scheme every signature must use
	Scheme      primitives.Scheme
	Recipients  []batch.Recipient
	Description string
	CreatedAt   time.Time
}

// States: "state_proposal_pending", "state_proposal_ready"
// Events: "event_signature_received"
type ProposalSignatureRequest struct {
	SignerCommitment string
	ApproverIndex    int
	Scheme           primitives.Scheme
	Signature        []byte
	PublicKey        []byte
	CreatedAt        time.Time
}

// States: "state_proposal_pending", "state_proposal_ready"
// Events: "event_rejection_received"
type ProposalRejectionRequest struct {
	SignerCommitment string
	Reason           string
	CreatedAt        time.Time
}

// States: "state_proposal_pending", "state_proposal_ready"
// Events: "event_proposal_cancelled", "event_proposal_rejected"
type ProposalCloseRequest struct {
	Reason    string
	CreatedAt time.Time
}

// States: "state_proposal_ready"
// Events: "event_execution_succeeded", "event_execution_failed"
type ProposalExecutionRequest struct {
	TransactionID string
	Error         string
	CreatedAt     time.Time
}
