package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/qash-finance/qash-sub002/advice"
	"github.com/qash-finance/qash-sub002/batch"
	"github.com/qash-finance/qash-sub002/client/modules/accounts"
	"github.com/qash-finance/qash-sub002/client/modules/logger"
	"github.com/qash-finance/qash-sub002/client/types"
	fsmtypes "github.com/qash-finance/qash-sub002/fsm/types"
	"github.com/qash-finance/qash-sub002/fsm/types/requests"
	"github.com/qash-finance/qash-sub002/ledger"
	"github.com/qash-finance/qash-sub002/primitives"
	"github.com/qash-finance/qash-sub002/relay"
)

const (
	resultExecuted       = "executed"
	resultAlreadyApplied = "already_applied"
	resultSyncWarning    = "sync_warning"
	resultFailed         = "failed"
	resultRefused        = "refused"
)

var (
	executionsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proposal_executions_total",
		Help: "Proposal execution attempts by outcome",
	}, []string{"result"})
	executionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "proposal_execution_duration_seconds",
		Help:    "Time spent in one execution attempt",
		Buckets: prometheus.DefBuckets,
	})
)

// Pauser suspends background work touching the local ledger state.
type Pauser interface {
	Pause()
	Resume()
}

type noopPauser struct{}

func (noopPauser) Pause()  {}
func (noopPauser) Resume() {}

// PSMConfig describes the acknowledgment key. Scheme and PublicKey are used
// when the acknowledgment leaves them out.
type PSMConfig struct {
	Commitment string
	Scheme     primitives.Scheme
	PublicKey  []byte
}

type Result struct {
	ProposalID       string `json:"proposal_id"`
	TransactionID    string `json:"transaction_id"`
	SubmissionHeight uint64 `json:"submission_height"`
	// AlreadyApplied is set when another cosigner got the transaction in first.
	AlreadyApplied bool `json:"already_applied"`
}

type Orchestrator struct {
	accounts *accounts.Registry
	relay    relay.Relay
	ledger   ledger.Client
	builder  *batch.Builder
	hasher   primitives.Hasher
	pauser   Pauser
	psm      PSMConfig
	logger   logger.Logger
	now      func() time.Time
}

func NewOrchestrator(
	registry *accounts.Registry,
	r relay.Relay,
	client ledger.Client,
	builder *batch.Builder,
	psm PSMConfig,
	pauser Pauser,
	l logger.Logger,
) *Orchestrator {
	if pauser == nil {
		pauser = noopPauser{}
	}
	if l == nil {
		l = logger.NewNop()
	}
	if psm.Scheme == "" {
		psm.Scheme = primitives.SchemeEcdsa
	}
	return &Orchestrator{
		accounts: registry,
		relay:    r,
		ledger:   client,
		builder:  builder,
		hasher:   builder.Hasher(),
		pauser:   pauser,
		psm:      psm,
		logger:   l.Named("execution"),
		now:      time.Now,
	}
}

func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Execute submits a READY proposal to the ledger. The sync loop is paused for
// the whole attempt. Errors are classified with types.Kind, a lagging local
// state is reported as *types.SyncWarning and leaves the proposal READY.
func (o *Orchestrator) Execute(ctx context.Context, accountID, proposalID string) (*Result, error) {
	o.pauser.Pause()
	defer o.pauser.Resume()

	start := time.Now()
	defer func() {
		executionDuration.Observe(time.Since(start).Seconds())
	}()

	result, err := o.execute(ctx, accountID, proposalID)
	switch {
	case err == nil && result.AlreadyApplied:
		executionsCounter.WithLabelValues(resultAlreadyApplied).Inc()
	case err == nil:
		executionsCounter.WithLabelValues(resultExecuted).Inc()
	case types.KindOf(err) == types.KindLedgerLag:
		executionsCounter.WithLabelValues(resultSyncWarning).Inc()
	case types.KindOf(err) == types.KindExecution:
		executionsCounter.WithLabelValues(resultFailed).Inc()
	default:
		executionsCounter.WithLabelValues(resultRefused).Inc()
	}
	return result, err
}

func (o *Orchestrator) execute(ctx context.Context, accountID, proposalID string) (*Result, error) {
	if refresher, ok := o.relay.(relay.Refresher); ok {
		if err := refresher.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("failed to refresh relay: %w", err)
		}
	}

	account, err := o.accounts.Get(accountID)
	if err != nil {
		return nil, types.Classify(err)
	}

	proposal, err := o.liveProposal(ctx, account.AccountID, proposalID)
	if err != nil {
		return nil, err
	}

	required := account.EffectiveThreshold(proposal.Type)
	if proposal.Threshold > required {
		required = proposal.Threshold
	}
	if count := countRegistered(account, proposal.Signatures); count < required {
		return nil, types.NewError(types.KindThreshold,
			fmt.Errorf("%w: %d of %d", types.ErrInsufficientSignatures, count, required))
	}

	delta, err := relay.FindDelta(ctx, o.relay, account.AccountID, proposal.ID)
	if err != nil {
		return nil, types.Classify(fmt.Errorf("failed to find delta: %w", err))
	}
	summary, err := batch.DeserializeSummary(delta.Summary)
	if err != nil {
		return nil, types.NewError(types.KindInput, fmt.Errorf("%w: %v", types.ErrReconstructionMismatch, err))
	}
	txCommitment := summary.Commitment(o.hasher)
	if !primitives.EqualHex(txCommitment.Hex(), proposal.SummaryCommitment) {
		return nil, types.NewError(types.KindInput, fmt.Errorf("%w: delta commits to %s, proposal to %s",
			types.ErrReconstructionMismatch, txCommitment.Hex(), proposal.SummaryCommitment))
	}

	signatures, err := cosignerSignatures(proposal.Signatures)
	if err != nil {
		return nil, types.NewError(types.KindInput, err)
	}

	ack, err := o.relay.PushDelta(ctx, *delta)
	if err != nil {
		return nil, types.Classify(fmt.Errorf("failed to push delta: %w", err))
	}
	if ack.IsEmpty() {
		return nil, types.NewError(types.KindRelayState, types.ErrMissingAcknowledgment)
	}
	ackSignature, err := ack.ToSignature(o.psm.Scheme, o.psm.PublicKey)
	if err != nil {
		return nil, types.NewError(types.KindRelayState, fmt.Errorf("%w: %v", types.ErrMissingAcknowledgment, err))
	}

	assembler, err := advice.NewAssembler(o.hasher, account.SignerCommitments, o.psm.Commitment)
	if err != nil {
		return nil, types.NewError(types.KindInput, err)
	}
	adviceMap, err := assembler.Assemble(txCommitment, signatures, ackSignature)
	if err != nil {
		return nil, types.NewError(types.KindInput, fmt.Errorf("failed to assemble advice: %w", err))
	}

	request, err := o.builder.Rebuild(account.AccountID, proposal.Recipients, summary.Salt, adviceMap)
	if err != nil {
		return nil, types.NewError(types.KindInput, fmt.Errorf("failed to rebuild batch: %w", err))
	}
	rebuilt := batch.NewTransactionSummary(o.hasher, summary.AccountID, request).Commitment(o.hasher)
	if rebuilt != txCommitment {
		return nil, types.NewError(types.KindInput, fmt.Errorf("%w: rebuilt %s, signed %s",
			types.ErrReconstructionMismatch, rebuilt.Hex(), txCommitment.Hex()))
	}

	return o.submit(ctx, account.AccountID, proposal.ID, request)
}

// submit runs execute, prove, submit and apply in order.
func (o *Orchestrator) submit(ctx context.Context, accountID, proposalID string, request *batch.TransactionRequest) (*Result, error) {
	executed, err := o.ledger.ExecuteTransaction(ctx, accountID, request)
	if err != nil {
		// no transaction id exists before execution
		return o.ledgerFailure(ctx, accountID, proposalID, "", "execute", err)
	}

	proven, err := o.ledger.ProveTransaction(ctx, executed)
	if err != nil {
		return o.ledgerFailure(ctx, accountID, proposalID, executed.ID, "prove", err)
	}

	// proving is slow, the proposal may have been closed meanwhile
	if refresher, ok := o.relay.(relay.Refresher); ok {
		if err := refresher.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("failed to refresh relay: %w", err)
		}
	}
	if _, err := o.liveProposal(ctx, accountID, proposalID); err != nil {
		return nil, err
	}

	height, err := o.ledger.SubmitProvenTransaction(ctx, proven, executed)
	if err != nil {
		return o.ledgerFailure(ctx, accountID, proposalID, executed.ID, "submit", err)
	}

	if err := o.ledger.ApplyTransaction(ctx, executed, height); err != nil {
		// the transaction is on chain, the next sync catches the local state up
		o.logger.Warn("Failed to apply transaction %s locally: %v", executed.ID, err)
	}

	if err := o.markExecuted(ctx, accountID, proposalID, executed.ID); err != nil {
		return nil, err
	}
	o.logger.Log("Executed proposal %s as transaction %s at height %d", proposalID, executed.ID, height)

	return &Result{ProposalID: proposalID, TransactionID: executed.ID, SubmissionHeight: height}, nil
}

// ledgerFailure sorts a ledger error into a benign race, a sync warning or a
// failed execution.
func (o *Orchestrator) ledgerFailure(ctx context.Context, accountID, proposalID, transactionID, step string, err error) (*Result, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	switch {
	case ledger.IsAlreadyApplied(err):
		if transactionID == "" {
			// the summary commitment is the transaction commitment
			transactionID = proposalID
			o.logger.Warn("Transaction of proposal %s was already applied on %s, recording summary commitment %s as its id: %v",
				proposalID, step, transactionID, err)
		} else {
			o.logger.Warn("Transaction %s of proposal %s was already applied: %v", transactionID, proposalID, err)
		}
		if err := o.markExecuted(ctx, accountID, proposalID, transactionID); err != nil {
			return nil, err
		}
		return &Result{ProposalID: proposalID, TransactionID: transactionID, AlreadyApplied: true}, nil

	case ledger.IsNonceTooLow(err):
		o.logger.Warn("Local state of %s lags on %s: %v", accountID, step, err)
		return nil, types.NewSyncWarning(err)
	}

	o.logger.Error("Failed to %s transaction of proposal %s: %v", step, proposalID, err)
	markErr := o.relay.MarkFailed(ctx, accountID, proposalID, requests.ProposalExecutionRequest{
		Error:     fmt.Sprintf("%s: %v", step, err),
		CreatedAt: o.now(),
	})
	if markErr != nil {
		o.logger.Error("Failed to mark proposal %s as failed: %v", proposalID, markErr)
	}
	return nil, types.NewError(types.KindExecution, fmt.Errorf("%w: %s: %v", types.ErrExecutionFailed, step, err))
}

func (o *Orchestrator) markExecuted(ctx context.Context, accountID, proposalID, transactionID string) error {
	err := o.relay.MarkExecuted(ctx, accountID, proposalID, requests.ProposalExecutionRequest{
		TransactionID: transactionID,
		CreatedAt:     o.now(),
	})
	if err == nil {
		return nil
	}
	// another cosigner may have recorded the same transaction first
	if errors.Is(err, types.ErrProposalTerminal) {
		proposal, findErr := relay.FindProposal(ctx, o.relay, accountID, proposalID)
		if findErr == nil && proposal.Status == fsmtypes.ProposalStatusExecuted {
			o.logger.Warn("Proposal %s is already marked executed as %s: %v", proposalID, proposal.TransactionID, err)
			return nil
		}
	}
	return types.Classify(fmt.Errorf("transaction %s is on chain, failed to mark proposal %s executed: %w",
		transactionID, proposalID, err))
}

// liveProposal returns the proposal if it still accepts execution.
func (o *Orchestrator) liveProposal(ctx context.Context, accountID, proposalID string) (*fsmtypes.Proposal, error) {
	proposal, err := relay.FindProposal(ctx, o.relay, accountID, proposalID)
	if err != nil {
		return nil, types.Classify(fmt.Errorf("failed to find proposal: %w", err))
	}
	if proposal.Status.IsTerminal() {
		return nil, types.NewError(types.KindRelayState,
			fmt.Errorf("%w: %s is %s", types.ErrProposalTerminal, proposal.ID, proposal.Status))
	}
	return proposal, nil
}

// countRegistered counts distinct signatures of the account's signers.
func countRegistered(account types.MultisigAccount, signatures []fsmtypes.ProposalSignature) int {
	seen := make(map[int]struct{}, len(signatures))
	for _, s := range signatures {
		if index := account.ApproverIndex(s.SignerCommitment); index >= 0 {
			seen[index] = struct{}{}
		}
	}
	return len(seen)
}

func cosignerSignatures(signatures []fsmtypes.ProposalSignature) ([]advice.CosignerSignature, error) {
	out := make([]advice.CosignerSignature, 0, len(signatures))
	for _, s := range signatures {
		signature, err := s.ToSignature()
		if err != nil {
			return nil, fmt.Errorf("signature of %s: %w", s.SignerCommitment, err)
		}
		out = append(out, advice.CosignerSignature{SignerID: s.SignerCommitment, Signature: signature})
	}
	return out, nil
}

// IsSyncWarning reports whether err asks the caller to sync and retry.
func IsSyncWarning(err error) bool {
	var warning *types.SyncWarning
	return errors.As(err, &warning)
}
