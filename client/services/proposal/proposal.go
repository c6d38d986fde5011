package proposal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qash-finance/qash-sub002/advice"
	"github.com/qash-finance/qash-sub002/batch"
	"github.com/qash-finance/qash-sub002/client/modules/accounts"
	"github.com/qash-finance/qash-sub002/client/modules/logger"
	"github.com/qash-finance/qash-sub002/client/types"
	fsmtypes "github.com/qash-finance/qash-sub002/fsm/types"
	"github.com/qash-finance/qash-sub002/fsm/types/requests"
	"github.com/qash-finance/qash-sub002/primitives"
	"github.com/qash-finance/qash-sub002/relay"
)

var ErrInvalidSignature = errors.New("signature does not verify against the proposal commitment")

type ProposalService interface {
	CreateBatchProposal(ctx context.Context, request CreateBatchRequest) (*fsmtypes.Proposal, error)
	SignProposal(ctx context.Context, accountID, proposalID string, request SignRequest) (*fsmtypes.Proposal, error)
	Approve(ctx context.Context, accountID, proposalID string) (*fsmtypes.Proposal, error)
	RejectBySigner(ctx context.Context, accountID, proposalID, signerCommitment, reason string) (*fsmtypes.Proposal, error)
	CancelProposal(ctx context.Context, accountID, proposalID, reason string) (*fsmtypes.Proposal, error)
	RejectProposal(ctx context.Context, accountID, proposalID, reason string) (*fsmtypes.Proposal, error)
	GetProposal(ctx context.Context, accountID, proposalID string) (*fsmtypes.Proposal, error)
	ListProposals(ctx context.Context, accountID string) ([]fsmtypes.Proposal, error)
}

type CreateBatchRequest struct {
	AccountID   string
	Recipients  []batch.Recipient
	Description string
}

// SignRequest carries a cosigner signature over the proposal commitment.
// ApproverIndex may be requests.NoApproverIndex.
type SignRequest struct {
	SignerCommitment string
	ApproverIndex    int
	Scheme           primitives.Scheme
	Signature        []byte
	PublicKey        []byte
}

type BaseProposalService struct {
	accounts *accounts.Registry
	relay    relay.Relay
	builder  *batch.Builder
	hasher   primitives.Hasher
	// signer is the node's own cosigner key, nil when the node only relays
	signer *primitives.EcdsaSigner
	logger logger.Logger
	now    func() time.Time
}

func NewProposalService(
	registry *accounts.Registry,
	r relay.Relay,
	builder *batch.Builder,
	signer *primitives.EcdsaSigner,
	l logger.Logger,
) *BaseProposalService {
	if l == nil {
		l = logger.NewNop()
	}
	return &BaseProposalService{
		accounts: registry,
		relay:    r,
		builder:  builder,
		hasher:   builder.Hasher(),
		signer:   signer,
		logger:   l.Named("proposals"),
		now:      time.Now,
	}
}

// WithClock replaces the clock used to stamp requests.
func (s *BaseProposalService) WithClock(now func() time.Time) *BaseProposalService {
	s.now = now
	return s
}

// CreateBatchProposal builds the batch with a fresh auth salt and publishes
// the proposal. The summary, which carries the salt, is stored with it.
func (s *BaseProposalService) CreateBatchProposal(ctx context.Context, request CreateBatchRequest) (*fsmtypes.Proposal, error) {
	account, err := s.accounts.Get(request.AccountID)
	if err != nil {
		return nil, types.Classify(err)
	}
	sender, err := batch.ParseAccountID(account.AccountID)
	if err != nil {
		return nil, types.NewError(types.KindInput, err)
	}

	built, err := s.builder.Build(account.AccountID, request.Recipients, nil)
	if err != nil {
		return nil, types.NewError(types.KindInput, fmt.Errorf("failed to build batch: %w", err))
	}
	summary := batch.NewTransactionSummary(s.hasher, sender, built.Request)
	commitment := summary.Commitment(s.hasher).Hex()

	initRequest := requests.ProposalInitRequest{
		AccountID:         account.AccountID,
		ProposalType:      fsmtypes.ProposalTypeSend,
		SummaryCommitment: commitment,
		Summary:           summary.Bytes(),
		Threshold:         account.EffectiveThreshold(fsmtypes.ProposalTypeSend),
		SignerCommitments: account.SignerCommitments,
		Scheme:            account.Scheme,
		Recipients:        request.Recipients,
		Description:       request.Description,
		CreatedAt:         s.now(),
	}
	if err := initRequest.Validate(); err != nil {
		return nil, types.NewError(types.KindInput, err)
	}

	id, err := s.relay.CreateProposal(ctx, initRequest)
	if err != nil {
		return nil, types.Classify(fmt.Errorf("failed to create proposal: %w", err))
	}
	s.logger.Log("Created proposal %s for account %s with %d recipients", id, account.AccountID, len(request.Recipients))

	return s.GetProposal(ctx, account.AccountID, id)
}

// SignProposal checks a cosigner signature and relays it. ECDSA signatures
// are verified here, Falcon signatures are checked by the account's auth
// procedure on execution.
func (s *BaseProposalService) SignProposal(ctx context.Context, accountID, proposalID string, request SignRequest) (*fsmtypes.Proposal, error) {
	account, proposal, err := s.openProposal(ctx, accountID, proposalID)
	if err != nil {
		return nil, err
	}

	commitment, err := primitives.NormalizeHex(request.SignerCommitment)
	if err != nil || request.SignerCommitment == "" {
		return nil, types.Errorf(types.KindInput, "invalid signer commitment %q", request.SignerCommitment)
	}
	index := account.ApproverIndex(commitment)
	if index < 0 {
		return nil, types.NewError(types.KindInput,
			fmt.Errorf("%w: %s is not a signer of %s", advice.ErrCommitmentMismatch, commitment, account.AccountID))
	}
	if request.ApproverIndex != requests.NoApproverIndex && request.ApproverIndex != index {
		return nil, types.Errorf(types.KindInput, "approver index %d does not belong to %s", request.ApproverIndex, commitment)
	}

	scheme := request.Scheme
	if scheme == "" {
		scheme = account.Scheme
	}
	if err := s.verify(commitment, proposal.ID, scheme, request); err != nil {
		return nil, types.NewError(types.KindInput, err)
	}

	err = s.relay.SubmitSignature(ctx, account.AccountID, proposal.ID, requests.ProposalSignatureRequest{
		SignerCommitment: commitment,
		ApproverIndex:    index,
		Scheme:           scheme,
		Signature:        request.Signature,
		PublicKey:        request.PublicKey,
		CreatedAt:        s.now(),
	})
	if err != nil {
		return nil, types.Classify(fmt.Errorf("failed to submit signature: %w", err))
	}
	s.logger.Log("Signer %s signed proposal %s", commitment, proposal.ID)

	return s.GetProposal(ctx, account.AccountID, proposal.ID)
}

func (s *BaseProposalService) verify(commitment, proposalID string, scheme primitives.Scheme, request SignRequest) error {
	if len(request.Signature) == 0 {
		return fmt.Errorf("%w: empty signature", primitives.ErrMalformedSignature)
	}
	switch scheme {
	case primitives.SchemeFalcon:
		return nil
	case primitives.SchemeEcdsa:
		if len(request.PublicKey) == 0 {
			return primitives.ErrMissingPublicKey
		}
		derived, ok := primitives.DeriveEcdsaCommitment(s.hasher, request.PublicKey)
		if !ok {
			return fmt.Errorf("%w: malformed public key", primitives.ErrMalformedSignature)
		}
		if derived.Hex() != commitment {
			return fmt.Errorf("%w: public key derives %s, not %s", advice.ErrCommitmentMismatch, derived.Hex(), commitment)
		}
		message, err := primitives.WordFromHex(proposalID)
		if err != nil {
			return err
		}
		if !primitives.VerifyEcdsa(request.PublicKey, message, request.Signature) {
			return ErrInvalidSignature
		}
		return nil
	}
	return fmt.Errorf("%w: %q", primitives.ErrUnknownScheme, scheme)
}

// Approve signs the proposal with the node's own key.
func (s *BaseProposalService) Approve(ctx context.Context, accountID, proposalID string) (*fsmtypes.Proposal, error) {
	if s.signer == nil {
		return nil, types.Errorf(types.KindInput, "node has no signer key")
	}
	id, err := primitives.WordFromHex(proposalID)
	if err != nil {
		return nil, types.NewError(types.KindInput, fmt.Errorf("invalid proposal id: %w", err))
	}
	signature, err := s.signer.Sign(id)
	if err != nil {
		return nil, fmt.Errorf("failed to sign proposal: %w", err)
	}
	return s.SignProposal(ctx, accountID, proposalID, SignRequest{
		SignerCommitment: s.signer.Commitment(s.hasher).Hex(),
		ApproverIndex:    requests.NoApproverIndex,
		Scheme:           primitives.SchemeEcdsa,
		Signature:        signature.Bytes(),
		PublicKey:        s.signer.PublicKey(),
	})
}

func (s *BaseProposalService) RejectBySigner(ctx context.Context, accountID, proposalID, signerCommitment, reason string) (*fsmtypes.Proposal, error) {
	account, proposal, err := s.openProposal(ctx, accountID, proposalID)
	if err != nil {
		return nil, err
	}
	if account.ApproverIndex(signerCommitment) < 0 {
		return nil, types.NewError(types.KindInput,
			fmt.Errorf("%w: %s is not a signer of %s", advice.ErrCommitmentMismatch, signerCommitment, account.AccountID))
	}

	err = s.relay.SubmitRejection(ctx, account.AccountID, proposal.ID, requests.ProposalRejectionRequest{
		SignerCommitment: signerCommitment,
		Reason:           reason,
		CreatedAt:        s.now(),
	})
	if err != nil {
		return nil, types.Classify(fmt.Errorf("failed to submit rejection: %w", err))
	}
	return s.GetProposal(ctx, account.AccountID, proposal.ID)
}

func (s *BaseProposalService) CancelProposal(ctx context.Context, accountID, proposalID, reason string) (*fsmtypes.Proposal, error) {
	return s.close(ctx, accountID, proposalID, reason, s.relay.Cancel)
}

func (s *BaseProposalService) RejectProposal(ctx context.Context, accountID, proposalID, reason string) (*fsmtypes.Proposal, error) {
	return s.close(ctx, accountID, proposalID, reason, s.relay.Reject)
}

type closeFunc func(ctx context.Context, accountID, proposalID string, request requests.ProposalCloseRequest) error

func (s *BaseProposalService) close(ctx context.Context, accountID, proposalID, reason string, fn closeFunc) (*fsmtypes.Proposal, error) {
	account, proposal, err := s.openProposal(ctx, accountID, proposalID)
	if err != nil {
		return nil, err
	}
	if err := fn(ctx, account.AccountID, proposal.ID, requests.ProposalCloseRequest{Reason: reason, CreatedAt: s.now()}); err != nil {
		return nil, types.Classify(fmt.Errorf("failed to close proposal: %w", err))
	}
	s.logger.Log("Closed proposal %s: %s", proposal.ID, reason)
	return s.GetProposal(ctx, account.AccountID, proposal.ID)
}

func (s *BaseProposalService) GetProposal(ctx context.Context, accountID, proposalID string) (*fsmtypes.Proposal, error) {
	proposal, err := relay.FindProposal(ctx, s.relay, accountID, proposalID)
	if err != nil {
		return nil, types.Classify(fmt.Errorf("failed to get proposal %s: %w", proposalID, err))
	}
	return proposal, nil
}

func (s *BaseProposalService) ListProposals(ctx context.Context, accountID string) ([]fsmtypes.Proposal, error) {
	if _, err := s.accounts.Get(accountID); err != nil {
		return nil, types.Classify(err)
	}
	proposals, err := s.relay.ListTransactionProposals(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	return proposals, nil
}

// openProposal loads the account and a proposal that still accepts events.
func (s *BaseProposalService) openProposal(ctx context.Context, accountID, proposalID string) (types.MultisigAccount, *fsmtypes.Proposal, error) {
	account, err := s.accounts.Get(accountID)
	if err != nil {
		return account, nil, types.Classify(err)
	}
	proposal, err := s.GetProposal(ctx, account.AccountID, proposalID)
	if err != nil {
		return account, nil, err
	}
	if proposal.Status.IsTerminal() {
		return account, nil, types.NewError(types.KindRelayState,
			fmt.Errorf("%w: %s is %s", types.ErrProposalTerminal, proposal.ID, proposal.Status))
	}
	return account, proposal, nil
}
