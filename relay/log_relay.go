package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/qash-finance/qash-sub002/batch"
	"github.com/qash-finance/qash-sub002/client/modules/logger"
	"github.com/qash-finance/qash-sub002/client/modules/state"
	proposalrepo "github.com/qash-finance/qash-sub002/client/repositories/proposal"
	"github.com/qash-finance/qash-sub002/client/types"
	"github.com/qash-finance/qash-sub002/fsm/fsm"
	"github.com/qash-finance/qash-sub002/fsm/state_machines"
	pf "github.com/qash-finance/qash-sub002/fsm/state_machines/proposal_fsm"
	fsmtypes "github.com/qash-finance/qash-sub002/fsm/types"
	"github.com/qash-finance/qash-sub002/fsm/types/requests"
	"github.com/qash-finance/qash-sub002/primitives"
	"github.com/qash-finance/qash-sub002/storage"
)

var (
	_ Relay     = (*LogRelay)(nil)
	_ Refresher = (*LogRelay)(nil)
)

var ErrCorruptMessage = errors.New("message signature is corrupt")

type LogRelayConfig struct {
	Storage storage.Storage
	State   state.State
	Repo    proposalrepo.ProposalRepo
	Hasher  primitives.Hasher
	Logger  logger.Logger
	// Signer signs every message the node appends to the log.
	Signer *primitives.EcdsaSigner
	// AckSigner is the PSM key. Without it PushDelta returns an empty
	// acknowledgment.
	AckSigner *primitives.EcdsaSigner
	// TrustedSenders restricts accepted messages to these public keys.
	// Any correctly signed message is accepted when empty.
	TrustedSenders []string
}

// LogRelay implements the relay on top of an append-only message log. Every
// node replays the log into its own proposal machines, so all nodes converge
// on the same proposal states.
type LogRelay struct {
	mu      sync.Mutex
	storage storage.Storage
	state   state.State
	repo    proposalrepo.ProposalRepo
	hasher  primitives.Hasher
	logger  logger.Logger
	signer  *primitives.EcdsaSigner
	ack     *primitives.EcdsaSigner
	trusted map[string]struct{}
}

func NewLogRelay(cfg LogRelayConfig) (*LogRelay, error) {
	if cfg.Storage == nil || cfg.State == nil || cfg.Repo == nil {
		return nil, errors.New("storage, state and repo are required")
	}
	if cfg.Signer == nil {
		return nil, errors.New("message signer is required")
	}
	if cfg.Hasher == nil {
		cfg.Hasher = primitives.NewBlake2bHasher()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}

	r := &LogRelay{
		storage: cfg.Storage,
		state:   cfg.State,
		repo:    cfg.Repo,
		hasher:  cfg.Hasher,
		logger:  cfg.Logger.Named("relay"),
		signer:  cfg.Signer,
		ack:     cfg.AckSigner,
		trusted: make(map[string]struct{}, len(cfg.TrustedSenders)),
	}
	for _, sender := range cfg.TrustedSenders {
		pk, err := primitives.DecodeHexBytes(sender)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted sender %q: %w", sender, err)
		}
		r.trusted[fmt.Sprintf("%x", pk)] = struct{}{}
	}
	return r, nil
}

// Refresh reads the log from the saved offset and applies new messages.
// Messages the machines refuse are logged and skipped.
func (r *LogRelay) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	offset, err := r.state.LoadOffset()
	if err != nil {
		return fmt.Errorf("failed to LoadOffset: %w", err)
	}

	messages, err := r.storage.GetMessages(offset)
	if err != nil {
		return fmt.Errorf("failed to GetMessages: %w", err)
	}

	for _, message := range messages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.ProcessMessage(message); err != nil {
			r.logger.Warn("Failed to process message with offset %d: %v", message.Offset, err)
		} else {
			r.logger.Log("Successfully processed message with offset %d, type %s", message.Offset, message.Event)
		}
		if err := r.state.SaveOffset(message.Offset + 1); err != nil {
			return fmt.Errorf("failed to SaveOffset: %w", err)
		}
	}
	return nil
}

// ProcessMessage verifies a log message and applies it to its proposal.
func (r *LogRelay) ProcessMessage(message storage.Message) error {
	if err := r.verifyMessage(message); err != nil {
		return err
	}

	event := fsm.Event(message.Event)
	request, err := decodeRequest(event, message.Data)
	if err != nil {
		return err
	}

	instance, err := r.apply(message.AccountID, message.ProposalID, event, request, true)
	if err != nil {
		return err
	}

	if initRequest, ok := request.(requests.ProposalInitRequest); ok {
		deltas, err := r.repo.GetDeltas(message.AccountID)
		if err != nil {
			return fmt.Errorf("failed to GetDeltas: %w", err)
		}
		if err := r.repo.SaveDelta(types.Delta{
			AccountID:         message.AccountID,
			SummaryCommitment: instance.ID(),
			Summary:           initRequest.Summary,
			Nonce:             uint64(len(deltas)),
		}); err != nil {
			return fmt.Errorf("failed to SaveDelta: %w", err)
		}
	}
	return nil
}

func decodeRequest(event fsm.Event, data []byte) (interface{}, error) {
	var (
		request interface{}
		err     error
	)
	switch event {
	case pf.EventProposalInit:
		var req requests.ProposalInitRequest
		err = json.Unmarshal(data, &req)
		request = req
	case pf.EventSignatureReceived:
		var req requests.ProposalSignatureRequest
		err = json.Unmarshal(data, &req)
		request = req
	case pf.EventRejectionReceived:
		var req requests.ProposalRejectionRequest
		err = json.Unmarshal(data, &req)
		request = req
	case pf.EventProposalCancelled, pf.EventProposalRejected:
		var req requests.ProposalCloseRequest
		err = json.Unmarshal(data, &req)
		request = req
	case pf.EventExecutionSucceeded, pf.EventExecutionFailed:
		var req requests.ProposalExecutionRequest
		err = json.Unmarshal(data, &req)
		request = req
	default:
		return nil, fmt.Errorf("unsupported event %q", event)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s request: %w", event, err)
	}
	return request, nil
}

// apply runs the event on the stored machine and, when persist is set, saves
// the resulting dump.
func (r *LogRelay) apply(accountID, proposalID string, event fsm.Event, request interface{}, persist bool) (*state_machines.ProposalInstance, error) {
	var (
		instance *state_machines.ProposalInstance
		err      error
	)

	dump, err := r.repo.GetProposalDump(accountID, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to GetProposalDump: %w", err)
	}

	if event == pf.EventProposalInit {
		if dump != nil {
			return nil, fmt.Errorf("proposal %s already exists", proposalID)
		}
		initRequest, ok := request.(requests.ProposalInitRequest)
		if !ok {
			return nil, errors.New("cannot cast request to type {ProposalInitRequest}")
		}
		if err := r.checkInit(accountID, proposalID, initRequest); err != nil {
			return nil, err
		}
		if instance, err = state_machines.Create(proposalID); err != nil {
			return nil, err
		}
	} else {
		if dump == nil {
			return nil, fmt.Errorf("%w: %s", types.ErrProposalNotFound, proposalID)
		}
		if instance, err = state_machines.FromDump(dump); err != nil {
			return nil, fmt.Errorf("failed to restore proposal %s: %w", proposalID, err)
		}
		if instance.IsFinished() {
			return nil, fmt.Errorf("%w: %s is %s", types.ErrProposalTerminal, proposalID, instance.State())
		}
	}

	_, newDump, err := instance.Do(event, request)
	if err != nil {
		return nil, fmt.Errorf("failed to Do %s: %w", event, err)
	}

	if persist {
		if err := r.repo.SaveProposalDump(accountID, instance.ID(), newDump); err != nil {
			return nil, fmt.Errorf("failed to SaveProposalDump: %w", err)
		}
	}
	return instance, nil
}

// checkInit binds a new proposal to its summary: the id must be the summary
// commitment and the summary must name the proposing account.
func (r *LogRelay) checkInit(accountID, proposalID string, request requests.ProposalInitRequest) error {
	summary, err := batch.DeserializeSummary(request.Summary)
	if err != nil {
		return err
	}
	commitment := summary.Commitment(r.hasher).Hex()
	if !primitives.EqualHex(commitment, proposalID) || !primitives.EqualHex(commitment, request.SummaryCommitment) {
		return fmt.Errorf("%w: summary commits to %s", types.ErrReconstructionMismatch, commitment)
	}
	account, err := batch.ParseAccountID(accountID)
	if err != nil {
		return err
	}
	requested, err := batch.ParseAccountID(request.AccountID)
	if err != nil {
		return err
	}
	if account != summary.AccountID || requested != summary.AccountID {
		return fmt.Errorf("summary belongs to %s, not %s", summary.AccountID, account)
	}
	return nil
}

func (r *LogRelay) digest(message *storage.Message) primitives.Word {
	return r.hasher.HashElements(primitives.PackU32Felts(message.SigningPayload()))
}

func (r *LogRelay) verifyMessage(message storage.Message) error {
	senderPubKey, err := primitives.DecodeHexBytes(message.SenderAddr)
	if err != nil {
		return fmt.Errorf("invalid sender %q: %w", message.SenderAddr, err)
	}
	if len(r.trusted) > 0 {
		if _, ok := r.trusted[fmt.Sprintf("%x", senderPubKey)]; !ok {
			return fmt.Errorf("sender %s is not trusted", message.SenderAddr)
		}
	}
	if !primitives.VerifyEcdsa(senderPubKey, r.digest(&message), message.Signature) {
		return ErrCorruptMessage
	}
	return nil
}

func (r *LogRelay) buildMessage(accountID, proposalID string, event fsm.Event, data []byte) (*storage.Message, error) {
	message := storage.Message{
		ID:         uuid.New().String(),
		AccountID:  accountID,
		ProposalID: proposalID,
		Event:      string(event),
		Data:       data,
		SenderAddr: r.signer.PublicKeyHex(),
	}

	signature, err := r.signer.Sign(r.digest(&message))
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	message.Signature = signature.Bytes()
	return &message, nil
}

// publish checks the event against the current local state, appends it to
// the log and refreshes.
func (r *LogRelay) publish(ctx context.Context, accountID, proposalID string, event fsm.Event, request interface{}) error {
	normalized, err := primitives.NormalizeHex(proposalID)
	if err != nil || proposalID == "" {
		return types.Errorf(types.KindInput, "invalid proposal id %q", proposalID)
	}

	if err := r.Refresh(ctx); err != nil {
		return err
	}
	if _, err := r.apply(accountID, normalized, event, request, false); err != nil {
		return err
	}

	data, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", event, err)
	}
	message, err := r.buildMessage(accountID, normalized, event, data)
	if err != nil {
		return err
	}
	if err := r.storage.Send(*message); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return r.Refresh(ctx)
}

func (r *LogRelay) CreateProposal(ctx context.Context, request requests.ProposalInitRequest) (string, error) {
	id, err := primitives.NormalizeHex(request.SummaryCommitment)
	if err != nil || request.SummaryCommitment == "" {
		return "", types.Errorf(types.KindInput, "invalid summary commitment %q", request.SummaryCommitment)
	}
	if err := r.publish(ctx, request.AccountID, id, pf.EventProposalInit, request); err != nil {
		return "", err
	}
	return id, nil
}

func (r *LogRelay) SubmitSignature(ctx context.Context, accountID, proposalID string, request requests.ProposalSignatureRequest) error {
	return r.publish(ctx, accountID, proposalID, pf.EventSignatureReceived, request)
}

func (r *LogRelay) SubmitRejection(ctx context.Context, accountID, proposalID string, request requests.ProposalRejectionRequest) error {
	return r.publish(ctx, accountID, proposalID, pf.EventRejectionReceived, request)
}

func (r *LogRelay) Cancel(ctx context.Context, accountID, proposalID string, request requests.ProposalCloseRequest) error {
	return r.publish(ctx, accountID, proposalID, pf.EventProposalCancelled, request)
}

func (r *LogRelay) Reject(ctx context.Context, accountID, proposalID string, request requests.ProposalCloseRequest) error {
	return r.publish(ctx, accountID, proposalID, pf.EventProposalRejected, request)
}

func (r *LogRelay) MarkExecuted(ctx context.Context, accountID, proposalID string, request requests.ProposalExecutionRequest) error {
	return r.publish(ctx, accountID, proposalID, pf.EventExecutionSucceeded, request)
}

func (r *LogRelay) MarkFailed(ctx context.Context, accountID, proposalID string, request requests.ProposalExecutionRequest) error {
	return r.publish(ctx, accountID, proposalID, pf.EventExecutionFailed, request)
}

func (r *LogRelay) GetDeltaProposals(_ context.Context, accountID string) ([]types.Delta, error) {
	deltas, err := r.repo.GetDeltas(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to GetDeltas: %w", err)
	}
	return deltas, nil
}

// PushDelta acknowledges a known delta with the PSM key.
func (r *LogRelay) PushDelta(_ context.Context, delta types.Delta) (*types.Acknowledgment, error) {
	stored, err := r.repo.GetDelta(delta.AccountID, delta.SummaryCommitment)
	if err != nil {
		return nil, fmt.Errorf("failed to GetDelta: %w", err)
	}
	if stored == nil || string(stored.Summary) != string(delta.Summary) {
		return nil, fmt.Errorf("%w: %s", types.ErrDeltaNotFound, delta.SummaryCommitment)
	}
	if r.ack == nil {
		return &types.Acknowledgment{}, nil
	}

	message, err := primitives.WordFromHex(stored.SummaryCommitment)
	if err != nil {
		return nil, err
	}
	signature, err := r.ack.Sign(message)
	if err != nil {
		return nil, fmt.Errorf("failed to sign acknowledgment: %w", err)
	}
	return &types.Acknowledgment{
		Scheme:    primitives.SchemeEcdsa,
		Signature: signature.Bytes(),
		PublicKey: r.ack.PublicKey(),
	}, nil
}

func (r *LogRelay) ListTransactionProposals(_ context.Context, accountID string) ([]fsmtypes.Proposal, error) {
	dumps, err := r.repo.GetProposalDumps(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to GetProposalDumps: %w", err)
	}

	proposals := make([]fsmtypes.Proposal, 0, len(dumps))
	for _, dump := range dumps {
		instance, err := state_machines.FromDump(dump)
		if err != nil {
			return nil, fmt.Errorf("failed to restore proposal: %w", err)
		}
		proposals = append(proposals, instance.Proposal())
	}
	return proposals, nil
}
