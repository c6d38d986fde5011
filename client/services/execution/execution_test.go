package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/qash-finance/qash-sub002/batch"
	"github.com/qash-finance/qash-sub002/client/modules/accounts"
	"github.com/qash-finance/qash-sub002/client/modules/state"
	proposalrepo "github.com/qash-finance/qash-sub002/client/repositories/proposal"
	"github.com/qash-finance/qash-sub002/client/services/proposal"
	"github.com/qash-finance/qash-sub002/client/types"
	fsmtypes "github.com/qash-finance/qash-sub002/fsm/types"
	"github.com/qash-finance/qash-sub002/fsm/types/requests"
	"github.com/qash-finance/qash-sub002/ledger"
	"github.com/qash-finance/qash-sub002/mocks/ledgerMocks"
	"github.com/qash-finance/qash-sub002/mocks/relayMocks"
	"github.com/qash-finance/qash-sub002/primitives"
	"github.com/qash-finance/qash-sub002/relay"
	"github.com/qash-finance/qash-sub002/storage"
	"github.com/qash-finance/qash-sub002/storage/file_storage"
)

const (
	testAccount   = "0x9a2c1e0f4b5d6e7f8a9b0c1d2e3f40"
	testFaucet    = "0x1122334455667788990011223344aa"
	testRecipient = "0x2c3d4e5f60718293a4b5c6d7e8f900"
)

var (
	tm     = time.Date(2026, 7, 8, 9, 10, 11, 0, time.UTC)
	hasher = primitives.NewBlake2bHasher()
)

type countingPauser struct {
	paused, resumed int
}

func (p *countingPauser) Pause()  { p.paused++ }
func (p *countingPauser) Resume() { p.resumed++ }

func newSigners(t *testing.T, n int) ([]*primitives.EcdsaSigner, []string) {
	signers := make([]*primitives.EcdsaSigner, n)
	commitments := make([]string, n)
	for i := range signers {
		signer, err := primitives.GenerateEcdsaSigner()
		require.NoError(t, err)
		signers[i] = signer
		commitments[i] = signer.Commitment(hasher).Hex()
	}
	return signers, commitments
}

func newRegistry(t *testing.T, commitments []string, threshold int) *accounts.Registry {
	registry, err := accounts.NewRegistry(types.MultisigAccount{
		AccountID:         testAccount,
		SignerCommitments: commitments,
		Scheme:            primitives.SchemeEcdsa,
		Threshold:         fsmtypes.ThresholdPolicy{Base: threshold},
	})
	require.NoError(t, err)
	return registry
}

func newBuilder() *batch.Builder {
	return batch.NewBuilder(hasher, bytes.NewReader(bytes.Repeat([]byte{3}, 256)))
}

// network is one cosigner node backed by a shared log and ledger.
type network struct {
	relay     *relay.LogRelay
	proposals *proposal.BaseProposalService
	executor  *Orchestrator
	pauser    *countingPauser
}

func newNetwork(t *testing.T, chain ledger.Client, psm *primitives.EcdsaSigner, signers []*primitives.EcdsaSigner, commitments []string, threshold int) *network {
	return newNode(t, newLog(t), chain, psm, signers[0], commitments, threshold)
}

func newLog(t *testing.T) storage.Storage {
	log, err := file_storage.NewFileStorage(filepath.Join(t.TempDir(), "log"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	return log
}

// newNode builds a cosigner node on log. messageSigner signs its log messages.
func newNode(t *testing.T, log storage.Storage, chain ledger.Client, psm, messageSigner *primitives.EcdsaSigner, commitments []string, threshold int) *network {
	req := require.New(t)

	st, err := state.NewLevelDBState(t.TempDir(), "execution_test")
	req.NoError(err)
	t.Cleanup(func() { _ = st.Close() })

	r, err := relay.NewLogRelay(relay.LogRelayConfig{
		Storage:   log,
		State:     st,
		Repo:      proposalrepo.NewProposalRepo(st),
		Hasher:    hasher,
		Signer:    messageSigner,
		AckSigner: psm,
	})
	req.NoError(err)

	if mem, ok := chain.(*ledger.MemLedger); ok {
		req.NoError(mem.RegisterAuth(testAccount, primitives.SchemeEcdsa, commitments, threshold))
	}

	registry := newRegistry(t, commitments, threshold)
	builder := newBuilder()
	pauser := &countingPauser{}

	var psmCfg PSMConfig
	if psm != nil {
		psmCfg.Commitment = psm.Commitment(hasher).Hex()
	}

	return &network{
		relay:     r,
		proposals: proposal.NewProposalService(registry, r, builder, nil, nil).WithClock(func() time.Time { return tm }),
		executor:  NewOrchestrator(registry, r, chain, builder, psmCfg, pauser, nil).WithClock(func() time.Time { return tm }),
		pauser:    pauser,
	}
}

func (n *network) sign(t *testing.T, signer *primitives.EcdsaSigner, proposalID string) *fsmtypes.Proposal {
	message, err := primitives.WordFromHex(proposalID)
	require.NoError(t, err)
	signature, err := signer.Sign(message)
	require.NoError(t, err)

	p, err := n.proposals.SignProposal(context.Background(), testAccount, proposalID, proposal.SignRequest{
		SignerCommitment: signer.Commitment(hasher).Hex(),
		ApproverIndex:    requests.NoApproverIndex,
		Scheme:           primitives.SchemeEcdsa,
		Signature:        signature.Bytes(),
		PublicKey:        signer.PublicKey(),
	})
	require.NoError(t, err)
	return p
}

func newChain(t *testing.T) *ledger.MemLedger {
	chain := ledger.NewMemLedger(hasher)
	require.NoError(t, chain.Fund(testAccount, testFaucet, 1000))
	return chain
}

func TestExecute_OneOfOne(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	chain := newChain(t)
	psm, err := primitives.GenerateEcdsaSigner()
	req.NoError(err)
	signers, commitments := newSigners(t, 1)
	node := newNetwork(t, chain, psm, signers, commitments, 1)

	created, err := node.proposals.CreateBatchProposal(ctx, proposal.CreateBatchRequest{
		AccountID:  testAccount,
		Recipients: []batch.Recipient{{Address: testRecipient, FaucetID: testFaucet, Amount: 100}},
	})
	req.NoError(err)
	req.Equal(fsmtypes.ProposalStatusPending, created.Status)

	signed := node.sign(t, signers[0], created.ID)
	req.Equal(fsmtypes.ProposalStatusReady, signed.Status)

	result, err := node.executor.Execute(ctx, testAccount, created.ID)
	req.NoError(err)
	req.False(result.AlreadyApplied)
	req.Equal(created.SummaryCommitment, result.TransactionID)
	req.Equal(1, node.pauser.paused)
	req.Equal(1, node.pauser.resumed)

	executed, err := node.proposals.GetProposal(ctx, testAccount, created.ID)
	req.NoError(err)
	req.Equal(fsmtypes.ProposalStatusExecuted, executed.Status)
	req.Equal(result.TransactionID, executed.TransactionID)

	balances, err := chain.GetAccountBalances(ctx, testAccount)
	req.NoError(err)
	req.Equal([]ledger.Balance{{FaucetID: testFaucet, Amount: 900}}, balances)

	// a second attempt is refused by the terminal state
	_, err = node.executor.Execute(ctx, testAccount, created.ID)
	req.ErrorIs(err, types.ErrProposalTerminal)
	nonce, err := chain.Nonce(testAccount)
	req.NoError(err)
	req.Equal(uint64(1), nonce)
}

func TestExecute_TwoOfThree(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	chain := newChain(t)
	psm, err := primitives.GenerateEcdsaSigner()
	req.NoError(err)
	signers, commitments := newSigners(t, 3)
	node := newNetwork(t, chain, psm, signers, commitments, 2)

	created, err := node.proposals.CreateBatchProposal(ctx, proposal.CreateBatchRequest{
		AccountID: testAccount,
		Recipients: []batch.Recipient{
			{Address: testRecipient, FaucetID: testFaucet, Amount: 100},
			{Address: testFaucet, FaucetID: testFaucet, Amount: 50},
		},
	})
	req.NoError(err)

	req.Equal(fsmtypes.ProposalStatusPending, node.sign(t, signers[2], created.ID).Status)

	_, err = node.executor.Execute(ctx, testAccount, created.ID)
	req.ErrorIs(err, types.ErrInsufficientSignatures)
	req.Equal(types.KindThreshold, types.KindOf(err))

	// a duplicate signature does not count twice
	req.Equal(fsmtypes.ProposalStatusPending, node.sign(t, signers[2], created.ID).Status)
	req.Equal(fsmtypes.ProposalStatusReady, node.sign(t, signers[0], created.ID).Status)

	result, err := node.executor.Execute(ctx, testAccount, created.ID)
	req.NoError(err)
	req.Equal(uint64(1), result.SubmissionHeight)

	balances, err := chain.GetAccountBalances(ctx, testAccount)
	req.NoError(err)
	req.Equal(uint64(850), balances[0].Amount)
}

func TestExecute_MissingAcknowledgment(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	signers, commitments := newSigners(t, 1)
	node := newNetwork(t, newChain(t), nil, signers, commitments, 1)

	created, err := node.proposals.CreateBatchProposal(ctx, proposal.CreateBatchRequest{
		AccountID:  testAccount,
		Recipients: []batch.Recipient{{Address: testRecipient, FaucetID: testFaucet, Amount: 1}},
	})
	req.NoError(err)
	node.sign(t, signers[0], created.ID)

	_, err = node.executor.Execute(ctx, testAccount, created.ID)
	req.ErrorIs(err, types.ErrMissingAcknowledgment)
	req.Equal(types.KindRelayState, types.KindOf(err))

	p, err := node.proposals.GetProposal(ctx, testAccount, created.ID)
	req.NoError(err)
	req.Equal(fsmtypes.ProposalStatusReady, p.Status)
}

// fixture is a READY 2-of-3 proposal served by a mocked relay.
type fixture struct {
	relay    *relayMocks.MockRelay
	ledger   *ledgerMocks.MockClient
	executor *Orchestrator
	proposal fsmtypes.Proposal
	delta    types.Delta
	psm      *primitives.EcdsaSigner
	summary  batch.TransactionSummary
}

func newFixture(t *testing.T) *fixture {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	signers, commitments := newSigners(t, 3)
	psm, err := primitives.GenerateEcdsaSigner()
	req.NoError(err)

	recipients := []batch.Recipient{{Address: testRecipient, FaucetID: testFaucet, Amount: 100}}
	built, err := newBuilder().Build(testAccount, recipients, nil)
	req.NoError(err)
	sender, err := batch.ParseAccountID(testAccount)
	req.NoError(err)
	summary := batch.NewTransactionSummary(hasher, sender, built.Request)
	commitment := summary.Commitment(hasher)

	p := fsmtypes.Proposal{
		ID:                commitment.Hex(),
		AccountID:         testAccount,
		Type:              fsmtypes.ProposalTypeSend,
		Status:            fsmtypes.ProposalStatusReady,
		SummaryCommitment: commitment.Hex(),
		Summary:           summary.Bytes(),
		Threshold:         2,
		SignerCommitments: commitments,
		Recipients:        recipients,
	}
	for _, i := range []int{0, 2} {
		signature, err := signers[i].Sign(commitment)
		req.NoError(err)
		p.Signatures = append(p.Signatures, fsmtypes.ProposalSignature{
			SignerCommitment: commitments[i],
			ApproverIndex:    i,
			Scheme:           primitives.SchemeEcdsa,
			Signature:        signature.Bytes(),
			PublicKey:        signers[i].PublicKey(),
		})
	}

	mockRelay := relayMocks.NewMockRelay(ctrl)
	mockLedger := ledgerMocks.NewMockClient(ctrl)
	executor := NewOrchestrator(newRegistry(t, commitments, 2), mockRelay, mockLedger, newBuilder(),
		PSMConfig{Commitment: psm.Commitment(hasher).Hex()}, nil, nil).WithClock(func() time.Time { return tm })

	return &fixture{
		relay:    mockRelay,
		ledger:   mockLedger,
		executor: executor,
		proposal: p,
		delta:    types.Delta{AccountID: testAccount, SummaryCommitment: commitment.Hex(), Summary: summary.Bytes()},
		psm:      psm,
		summary:  summary,
	}
}

// expectRelay serves the proposal, its delta and a valid acknowledgment.
func (f *fixture) expectRelay(t *testing.T) {
	f.relay.EXPECT().ListTransactionProposals(gomock.Any(), testAccount).
		Return([]fsmtypes.Proposal{f.proposal}, nil).AnyTimes()
	f.expectDelta(t)
}

// expectDelta serves the delta and a valid acknowledgment.
func (f *fixture) expectDelta(t *testing.T) {
	f.relay.EXPECT().GetDeltaProposals(gomock.Any(), testAccount).
		Return([]types.Delta{f.delta}, nil).AnyTimes()

	message, err := primitives.WordFromHex(f.delta.SummaryCommitment)
	require.NoError(t, err)
	signature, err := f.psm.Sign(message)
	require.NoError(t, err)
	f.relay.EXPECT().PushDelta(gomock.Any(), f.delta).Return(&types.Acknowledgment{
		Scheme:    primitives.SchemeEcdsa,
		Signature: signature.Bytes(),
		PublicKey: f.psm.PublicKey(),
	}, nil).AnyTimes()
}

func (f *fixture) expectProved() *ledger.ExecutedTransaction {
	executed := &ledger.ExecutedTransaction{ID: f.proposal.ID, AccountID: testAccount}
	f.ledger.EXPECT().ExecuteTransaction(gomock.Any(), testAccount, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, request *batch.TransactionRequest) (*ledger.ExecutedTransaction, error) {
			executed.Request = request
			return executed, nil
		})
	f.ledger.EXPECT().ProveTransaction(gomock.Any(), executed).Return(&ledger.ProvenTransaction{ExecutedID: executed.ID}, nil)
	return executed
}

func TestExecute_AdviceCarriesEverySigner(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.expectRelay(t)
	executed := f.expectProved()

	gomock.InOrder(
		f.ledger.EXPECT().SubmitProvenTransaction(gomock.Any(), gomock.Any(), executed).Return(uint64(7), nil),
		f.ledger.EXPECT().ApplyTransaction(gomock.Any(), executed, uint64(7)).Return(nil),
	)
	f.relay.EXPECT().MarkExecuted(gomock.Any(), testAccount, f.proposal.ID, requests.ProposalExecutionRequest{
		TransactionID: executed.ID,
		CreatedAt:     tm,
	}).Return(nil)

	result, err := f.executor.Execute(context.Background(), testAccount, f.proposal.ID)
	req.NoError(err)
	req.Equal(uint64(7), result.SubmissionHeight)

	// two cosigners and the acknowledgment
	req.Equal(3, executed.Request.Advice.Len())
	req.Equal(f.summary.Salt, executed.Request.AuthArg)
	req.Equal(f.summary.OutputNotesCommitment, executed.Request.OutputNotesCommitment(hasher))
}

func TestExecute_ReconstructionMismatch(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	tampered := f.summary
	tampered.Salt[0] ^= 1
	f.delta.Summary = tampered.Bytes()
	f.expectRelay(t)

	_, err := f.executor.Execute(context.Background(), testAccount, f.proposal.ID)
	req.ErrorIs(err, types.ErrReconstructionMismatch)
	req.Equal(types.KindInput, types.KindOf(err))
}

func TestExecute_RebuiltNotesMismatch(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// the stored recipients no longer match what was signed
	f.proposal.Recipients[0].Amount = 101
	f.expectRelay(t)

	_, err := f.executor.Execute(context.Background(), testAccount, f.proposal.ID)
	req.ErrorIs(err, types.ErrReconstructionMismatch)
}

func TestExecute_DeltaNotFound(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.relay.EXPECT().ListTransactionProposals(gomock.Any(), testAccount).Return([]fsmtypes.Proposal{f.proposal}, nil)
	f.relay.EXPECT().GetDeltaProposals(gomock.Any(), testAccount).Return(nil, nil)

	_, err := f.executor.Execute(context.Background(), testAccount, f.proposal.ID)
	req.ErrorIs(err, types.ErrDeltaNotFound)
	req.Equal(types.KindRelayState, types.KindOf(err))
}

func TestExecute_ForeignAcknowledgment(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.psm, _ = primitives.GenerateEcdsaSigner()
	f.expectRelay(t)

	_, err := f.executor.Execute(context.Background(), testAccount, f.proposal.ID)
	req.Error(err)
	req.Equal(types.KindInput, types.KindOf(err))
}

func TestExecute_NonceTooLowIsSyncWarning(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.expectRelay(t)
	f.expectProved()

	f.ledger.EXPECT().SubmitProvenTransaction(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(uint64(0), errors.New("rpc: account nonce is too low to import"))

	_, err := f.executor.Execute(context.Background(), testAccount, f.proposal.ID)
	req.True(IsSyncWarning(err))
	req.Equal(types.KindLedgerLag, types.KindOf(err))
	req.Contains(err.Error(), types.NonceTooLowWarning)
}

func TestExecute_AlreadyAppliedIsBenign(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.expectRelay(t)
	executed := f.expectProved()

	f.ledger.EXPECT().SubmitProvenTransaction(gomock.Any(), gomock.Any(), executed).
		Return(uint64(0), ledger.ErrAlreadyApplied)
	f.relay.EXPECT().MarkExecuted(gomock.Any(), testAccount, f.proposal.ID, gomock.Any()).Return(nil)

	result, err := f.executor.Execute(context.Background(), testAccount, f.proposal.ID)
	req.NoError(err)
	req.True(result.AlreadyApplied)
	req.Equal(executed.ID, result.TransactionID)
}

func TestExecute_AlreadyAppliedAndMarkedByPeer(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	recorded := f.proposal
	recorded.Status = fsmtypes.ProposalStatusExecuted
	recorded.TransactionID = f.proposal.ID
	gomock.InOrder(
		// before execution and after proving
		f.relay.EXPECT().ListTransactionProposals(gomock.Any(), testAccount).
			Return([]fsmtypes.Proposal{f.proposal}, nil).Times(2),
		f.relay.EXPECT().ListTransactionProposals(gomock.Any(), testAccount).
			Return([]fsmtypes.Proposal{recorded}, nil),
	)
	f.expectDelta(t)
	executed := f.expectProved()

	f.ledger.EXPECT().SubmitProvenTransaction(gomock.Any(), gomock.Any(), executed).
		Return(uint64(0), ledger.ErrAlreadyApplied)
	f.relay.EXPECT().MarkExecuted(gomock.Any(), testAccount, f.proposal.ID, gomock.Any()).
		Return(fmt.Errorf("%w: %s is state_proposal_executed", types.ErrProposalTerminal, f.proposal.ID))

	result, err := f.executor.Execute(context.Background(), testAccount, f.proposal.ID)
	req.NoError(err)
	req.True(result.AlreadyApplied)
	req.Equal(executed.ID, result.TransactionID)
}

func TestExecute_AlreadyAppliedOnClosedProposalIsReported(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	cancelled := f.proposal
	cancelled.Status = fsmtypes.ProposalStatusCancelled
	gomock.InOrder(
		f.relay.EXPECT().ListTransactionProposals(gomock.Any(), testAccount).
			Return([]fsmtypes.Proposal{f.proposal}, nil).Times(2),
		f.relay.EXPECT().ListTransactionProposals(gomock.Any(), testAccount).
			Return([]fsmtypes.Proposal{cancelled}, nil),
	)
	f.expectDelta(t)
	executed := f.expectProved()

	f.ledger.EXPECT().SubmitProvenTransaction(gomock.Any(), gomock.Any(), executed).
		Return(uint64(0), ledger.ErrAlreadyApplied)
	f.relay.EXPECT().MarkExecuted(gomock.Any(), testAccount, f.proposal.ID, gomock.Any()).
		Return(fmt.Errorf("%w: %s is state_proposal_cancelled", types.ErrProposalTerminal, f.proposal.ID))

	_, err := f.executor.Execute(context.Background(), testAccount, f.proposal.ID)
	req.ErrorIs(err, types.ErrProposalTerminal)
	req.Equal(types.KindRelayState, types.KindOf(err))
}

func TestExecute_AlreadyAppliedBeforeExecutionUsesSummaryCommitment(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.expectRelay(t)

	f.ledger.EXPECT().ExecuteTransaction(gomock.Any(), testAccount, gomock.Any()).
		Return(nil, ledger.ErrAlreadyApplied)
	f.relay.EXPECT().MarkExecuted(gomock.Any(), testAccount, f.proposal.ID, requests.ProposalExecutionRequest{
		TransactionID: f.proposal.SummaryCommitment,
		CreatedAt:     tm,
	}).Return(nil)

	result, err := f.executor.Execute(context.Background(), testAccount, f.proposal.ID)
	req.NoError(err)
	req.True(result.AlreadyApplied)
	req.Equal(f.proposal.SummaryCommitment, result.TransactionID)
}

// racingLedger runs beforeSubmit once, just before the submission reaches the chain.
type racingLedger struct {
	ledger.Client
	beforeSubmit func()
}

func (l *racingLedger) SubmitProvenTransaction(ctx context.Context, proven *ledger.ProvenTransaction, executed *ledger.ExecutedTransaction) (uint64, error) {
	if hook := l.beforeSubmit; hook != nil {
		l.beforeSubmit = nil
		hook()
	}
	return l.Client.SubmitProvenTransaction(ctx, proven, executed)
}

func TestExecute_LosingRaceToPeerIsBenign(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	chain := newChain(t)
	psm, err := primitives.GenerateEcdsaSigner()
	req.NoError(err)
	signers, commitments := newSigners(t, 2)

	log := newLog(t)
	racing := &racingLedger{Client: chain}
	alice := newNode(t, log, chain, psm, signers[0], commitments, 1)
	bob := newNode(t, log, racing, psm, signers[1], commitments, 1)

	created, err := alice.proposals.CreateBatchProposal(ctx, proposal.CreateBatchRequest{
		AccountID:  testAccount,
		Recipients: []batch.Recipient{{Address: testRecipient, FaucetID: testFaucet, Amount: 100}},
	})
	req.NoError(err)
	req.Equal(fsmtypes.ProposalStatusReady, alice.sign(t, signers[0], created.ID).Status)

	// alice executes and records the proposal while bob is between prove and submit
	racing.beforeSubmit = func() {
		result, err := alice.executor.Execute(ctx, testAccount, created.ID)
		req.NoError(err)
		req.False(result.AlreadyApplied)
	}

	result, err := bob.executor.Execute(ctx, testAccount, created.ID)
	req.NoError(err)
	req.True(result.AlreadyApplied)
	req.Equal(1, bob.pauser.resumed)

	for _, node := range []*network{alice, bob} {
		p, err := node.proposals.GetProposal(ctx, testAccount, created.ID)
		req.NoError(err)
		req.Equal(fsmtypes.ProposalStatusExecuted, p.Status)
	}

	nonce, err := chain.Nonce(testAccount)
	req.NoError(err)
	req.Equal(uint64(1), nonce)
	balances, err := chain.GetAccountBalances(ctx, testAccount)
	req.NoError(err)
	req.Equal([]ledger.Balance{{FaucetID: testFaucet, Amount: 900}}, balances)
}

func TestExecute_ForgedRelaySignaturesDoNotMoveFunds(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	chain := newChain(t)
	psm, err := primitives.GenerateEcdsaSigner()
	req.NoError(err)
	signers, commitments := newSigners(t, 3)
	node := newNetwork(t, chain, psm, signers, commitments, 2)

	created, err := node.proposals.CreateBatchProposal(ctx, proposal.CreateBatchRequest{
		AccountID:  testAccount,
		Recipients: []batch.Recipient{{Address: testRecipient, FaucetID: testFaucet, Amount: 100}},
	})
	req.NoError(err)

	for i := 0; i < 2; i++ {
		err := node.relay.SubmitSignature(ctx, testAccount, created.ID, requests.ProposalSignatureRequest{
			SignerCommitment: commitments[i],
			ApproverIndex:    requests.NoApproverIndex,
			Scheme:           primitives.SchemeEcdsa,
			Signature:        bytes.Repeat([]byte{0xab}, primitives.EcdsaSignatureLen),
			PublicKey:        signers[i].PublicKey(),
			CreatedAt:        tm,
		})
		req.Error(err)
	}

	p, err := node.proposals.GetProposal(ctx, testAccount, created.ID)
	req.NoError(err)
	req.Equal(fsmtypes.ProposalStatusPending, p.Status)
	req.Empty(p.Signatures)

	_, err = node.executor.Execute(ctx, testAccount, created.ID)
	req.ErrorIs(err, types.ErrInsufficientSignatures)

	nonce, err := chain.Nonce(testAccount)
	req.NoError(err)
	req.Zero(nonce)
}

func TestExecute_ProveFailureMarksFailed(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.expectRelay(t)

	f.ledger.EXPECT().ExecuteTransaction(gomock.Any(), testAccount, gomock.Any()).
		Return(&ledger.ExecutedTransaction{ID: f.proposal.ID}, nil)
	f.ledger.EXPECT().ProveTransaction(gomock.Any(), gomock.Any()).Return(nil, errors.New("prover unavailable"))
	f.relay.EXPECT().MarkFailed(gomock.Any(), testAccount, f.proposal.ID, requests.ProposalExecutionRequest{
		Error:     "prove: prover unavailable",
		CreatedAt: tm,
	}).Return(nil)

	_, err := f.executor.Execute(context.Background(), testAccount, f.proposal.ID)
	req.ErrorIs(err, types.ErrExecutionFailed)
	req.Equal(types.KindExecution, types.KindOf(err))
}

func TestExecute_ApplyFailureStillExecuted(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.expectRelay(t)
	executed := f.expectProved()

	f.ledger.EXPECT().SubmitProvenTransaction(gomock.Any(), gomock.Any(), executed).Return(uint64(3), nil)
	f.ledger.EXPECT().ApplyTransaction(gomock.Any(), executed, uint64(3)).Return(errors.New("local store busy"))
	f.relay.EXPECT().MarkExecuted(gomock.Any(), testAccount, f.proposal.ID, gomock.Any()).Return(nil)

	result, err := f.executor.Execute(context.Background(), testAccount, f.proposal.ID)
	req.NoError(err)
	req.Equal(uint64(3), result.SubmissionHeight)
}

func TestExecute_ClosedWhileProving(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	cancelled := f.proposal
	cancelled.Status = fsmtypes.ProposalStatusCancelled
	gomock.InOrder(
		f.relay.EXPECT().ListTransactionProposals(gomock.Any(), testAccount).Return([]fsmtypes.Proposal{f.proposal}, nil),
		f.relay.EXPECT().ListTransactionProposals(gomock.Any(), testAccount).Return([]fsmtypes.Proposal{cancelled}, nil),
	)
	f.relay.EXPECT().GetDeltaProposals(gomock.Any(), testAccount).Return([]types.Delta{f.delta}, nil)
	message, err := primitives.WordFromHex(f.delta.SummaryCommitment)
	req.NoError(err)
	signature, err := f.psm.Sign(message)
	req.NoError(err)
	f.relay.EXPECT().PushDelta(gomock.Any(), f.delta).Return(&types.Acknowledgment{
		Signature: signature.Bytes(),
		PublicKey: f.psm.PublicKey(),
	}, nil)
	f.expectProved()

	_, err = f.executor.Execute(context.Background(), testAccount, f.proposal.ID)
	req.ErrorIs(err, types.ErrProposalTerminal)
}

func TestExecute_InsufficientRegisteredSignatures(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// a signature from outside the account does not count
	f.proposal.Signatures[1].SignerCommitment = hasher.HashElements([]primitives.Felt{8}).Hex()
	f.relay.EXPECT().ListTransactionProposals(gomock.Any(), testAccount).Return([]fsmtypes.Proposal{f.proposal}, nil)

	_, err := f.executor.Execute(context.Background(), testAccount, f.proposal.ID)
	req.ErrorIs(err, types.ErrInsufficientSignatures)
}
