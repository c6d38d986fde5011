package relay

import (
	"context"

	"github.com/qash-finance/qash-sub002/client/types"
	fsmtypes "github.com/qash-finance/qash-sub002/fsm/types"
	"github.com/qash-finance/qash-sub002/fsm/types/requests"
	"github.com/qash-finance/qash-sub002/primitives"
)

// Client is the read and acknowledgment side of the relay. Deltas and
// proposals are keyed by the normalized summary commitment.
type Client interface {
	GetDeltaProposals(ctx context.Context, accountID string) ([]types.Delta, error)
	PushDelta(ctx context.Context, delta types.Delta) (*types.Acknowledgment, error)
	ListTransactionProposals(ctx context.Context, accountID string) ([]fsmtypes.Proposal, error)
}

// Publisher records proposal lifecycle events on the relay.
type Publisher interface {
	CreateProposal(ctx context.Context, request requests.ProposalInitRequest) (string, error)
	SubmitSignature(ctx context.Context, accountID, proposalID string, request requests.ProposalSignatureRequest) error
	SubmitRejection(ctx context.Context, accountID, proposalID string, request requests.ProposalRejectionRequest) error
	Cancel(ctx context.Context, accountID, proposalID string, request requests.ProposalCloseRequest) error
	Reject(ctx context.Context, accountID, proposalID string, request requests.ProposalCloseRequest) error
	MarkExecuted(ctx context.Context, accountID, proposalID string, request requests.ProposalExecutionRequest) error
	MarkFailed(ctx context.Context, accountID, proposalID string, request requests.ProposalExecutionRequest) error
}

// Refresher is implemented by relays that keep a local view which has to be
// brought up to date.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Relay interface {
	Client
	Publisher
}

// FindProposal returns the proposal with the given commitment.
func FindProposal(ctx context.Context, client Client, accountID, proposalID string) (*fsmtypes.Proposal, error) {
	proposals, err := client.ListTransactionProposals(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for i := range proposals {
		if primitives.EqualHex(proposals[i].SummaryCommitment, proposalID) || primitives.EqualHex(proposals[i].ID, proposalID) {
			return &proposals[i], nil
		}
	}
	return nil, types.ErrProposalNotFound
}

// FindDelta returns the delta with the given commitment.
func FindDelta(ctx context.Context, client Client, accountID, proposalID string) (*types.Delta, error) {
	deltas, err := client.GetDeltaProposals(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for i := range deltas {
		if primitives.EqualHex(deltas[i].SummaryCommitment, proposalID) {
			return &deltas[i], nil
		}
	}
	return nil, types.ErrDeltaNotFound
}
