package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qash-finance/qash-sub002/batch"
	"github.com/qash-finance/qash-sub002/client/modules/state"
	proposalrepo "github.com/qash-finance/qash-sub002/client/repositories/proposal"
	"github.com/qash-finance/qash-sub002/client/types"
	pf "github.com/qash-finance/qash-sub002/fsm/state_machines/proposal_fsm"
	fsmtypes "github.com/qash-finance/qash-sub002/fsm/types"
	"github.com/qash-finance/qash-sub002/fsm/types/requests"
	"github.com/qash-finance/qash-sub002/primitives"
	"github.com/qash-finance/qash-sub002/storage"
	"github.com/qash-finance/qash-sub002/storage/file_storage"
)

const (
	testAccount   = "0x9a2c1e0f4b5d6e7f8a9b0c1d2e3f40"
	testFaucet    = "0x1122334455667788990011223344aa"
	testRecipient = "0x2c3d4e5f60718293a4b5c6d7e8f900"
)

var tm = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

type testNode struct {
	relay *LogRelay
	state *state.LevelDBState
}

func newTestNode(t *testing.T, log storage.Storage, ack *primitives.EcdsaSigner, trusted ...string) *testNode {
	req := require.New(t)

	st, err := state.NewLevelDBState(t.TempDir(), "relay_test")
	req.NoError(err)
	t.Cleanup(func() { _ = st.Close() })

	signer, err := primitives.GenerateEcdsaSigner()
	req.NoError(err)

	r, err := NewLogRelay(LogRelayConfig{
		Storage:        log,
		State:          st,
		Repo:           proposalrepo.NewProposalRepo(st),
		Signer:         signer,
		AckSigner:      ack,
		TrustedSenders: trusted,
	})
	req.NoError(err)
	return &testNode{relay: r, state: st}
}

func newTestLog(t *testing.T) *file_storage.FileStorage {
	log, err := file_storage.NewFileStorage(filepath.Join(t.TempDir(), "log"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func newSigners(t *testing.T, n int) []*primitives.EcdsaSigner {
	signers := make([]*primitives.EcdsaSigner, n)
	for i := range signers {
		signer, err := primitives.GenerateEcdsaSigner()
		require.NoError(t, err)
		signers[i] = signer
	}
	return signers
}

func initRequest(t *testing.T, signers []*primitives.EcdsaSigner, threshold int) requests.ProposalInitRequest {
	h := primitives.NewBlake2bHasher()
	recipients := []batch.Recipient{{Address: testRecipient, FaucetID: testFaucet, Amount: 100}}

	built, err := batch.NewBuilder(h, bytes.NewReader(bytes.Repeat([]byte{9}, 32))).Build(testAccount, recipients, nil)
	require.NoError(t, err)
	sender, err := batch.ParseAccountID(testAccount)
	require.NoError(t, err)
	summary := batch.NewTransactionSummary(h, sender, built.Request)

	commitments := make([]string, len(signers))
	for i, s := range signers {
		commitments[i] = s.Commitment(h).Hex()
	}

	return requests.ProposalInitRequest{
		AccountID:         testAccount,
		ProposalType:      fsmtypes.ProposalTypeSend,
		SummaryCommitment: summary.Commitment(h).Hex(),
		Summary:           summary.Bytes(),
		Threshold:         threshold,
		SignerCommitments: commitments,
		Recipients:        recipients,
		CreatedAt:         tm,
	}
}

func signRequest(t *testing.T, signer *primitives.EcdsaSigner, commitment string) requests.ProposalSignatureRequest {
	message, err := primitives.WordFromHex(commitment)
	require.NoError(t, err)
	signature, err := signer.Sign(message)
	require.NoError(t, err)
	return requests.ProposalSignatureRequest{
		SignerCommitment: signer.Commitment(primitives.NewBlake2bHasher()).Hex(),
		ApproverIndex:    requests.NoApproverIndex,
		Scheme:           primitives.SchemeEcdsa,
		Signature:        signature.Bytes(),
		PublicKey:        signer.PublicKey(),
		CreatedAt:        tm,
	}
}

func TestLogRelay_NodesConverge(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := newTestLog(t)
	alice := newTestNode(t, log, nil)
	bob := newTestNode(t, log, nil)
	signers := newSigners(t, 3)

	initReq := initRequest(t, signers, 2)
	id, err := alice.relay.CreateProposal(ctx, initReq)
	req.NoError(err)
	req.Equal(primitives.MustNormalizeHex(initReq.SummaryCommitment), id)

	req.NoError(bob.relay.SubmitSignature(ctx, testAccount, id, signRequest(t, signers[0], id)))
	req.NoError(alice.relay.SubmitSignature(ctx, testAccount, id, signRequest(t, signers[2], id)))

	req.NoError(bob.relay.Refresh(ctx))
	for _, node := range []*testNode{alice, bob} {
		proposals, err := node.relay.ListTransactionProposals(ctx, testAccount)
		req.NoError(err)
		req.Len(proposals, 1)
		req.Equal(fsmtypes.ProposalStatusReady, proposals[0].Status)
		req.Equal(2, proposals[0].SignatureCount())

		deltas, err := node.relay.GetDeltaProposals(ctx, testAccount)
		req.NoError(err)
		req.Len(deltas, 1)
		req.Equal(initReq.Summary, deltas[0].Summary)

		offset, err := node.state.LoadOffset()
		req.NoError(err)
		req.Equal(uint64(3), offset)
	}

	proposal, err := FindProposal(ctx, bob.relay, testAccount, initReq.SummaryCommitment)
	req.NoError(err)
	req.Equal(initReq.Recipients, proposal.Recipients)
}

func TestLogRelay_RefusesInvalidEventsBeforeSending(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := newTestLog(t)
	node := newTestNode(t, log, nil)
	signers := newSigners(t, 2)
	initReq := initRequest(t, signers, 1)

	// unknown proposal
	err := node.relay.SubmitSignature(ctx, testAccount, initReq.SummaryCommitment, signRequest(t, signers[0], initReq.SummaryCommitment))
	req.ErrorIs(err, types.ErrProposalNotFound)

	// summary does not match the commitment
	tampered := initReq
	tampered.SummaryCommitment = primitives.NewBlake2bHasher().HashElements([]primitives.Felt{1}).Hex()
	_, err = node.relay.CreateProposal(ctx, tampered)
	req.ErrorIs(err, types.ErrReconstructionMismatch)

	id, err := node.relay.CreateProposal(ctx, initReq)
	req.NoError(err)
	_, err = node.relay.CreateProposal(ctx, initReq)
	req.Error(err)

	outsider := newSigners(t, 1)[0]
	req.Error(node.relay.SubmitSignature(ctx, testAccount, id, signRequest(t, outsider, id)))

	req.NoError(node.relay.Cancel(ctx, testAccount, id, requests.ProposalCloseRequest{Reason: "typo", CreatedAt: tm}))
	err = node.relay.SubmitSignature(ctx, testAccount, id, signRequest(t, signers[0], id))
	req.ErrorIs(err, types.ErrProposalTerminal)

	messages, err := log.GetMessages(0)
	req.NoError(err)
	req.Len(messages, 2)
}

func TestLogRelay_SkipsCorruptAndUntrustedMessages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := newTestLog(t)
	writer := newTestNode(t, log, nil)
	signers := newSigners(t, 1)
	initReq := initRequest(t, signers, 1)

	_, err := writer.relay.CreateProposal(ctx, initReq)
	req.NoError(err)

	messages, err := log.GetMessages(0)
	req.NoError(err)
	req.Len(messages, 1)

	corrupt := messages[0]
	corrupt.Signature = append([]byte(nil), corrupt.Signature...)
	corrupt.Signature[0] ^= 0xff
	req.ErrorIs(writer.relay.ProcessMessage(corrupt), ErrCorruptMessage)

	stranger, err := primitives.GenerateEcdsaSigner()
	req.NoError(err)
	reader := newTestNode(t, log, nil, stranger.PublicKeyHex())
	req.NoError(reader.relay.Refresh(ctx))

	proposals, err := reader.relay.ListTransactionProposals(ctx, testAccount)
	req.NoError(err)
	req.Empty(proposals)

	// the message is consumed even though it was refused
	offset, err := reader.state.LoadOffset()
	req.NoError(err)
	req.Equal(uint64(1), offset)
}

func TestLogRelay_ReplayRefusesForgedSignatures(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := newTestLog(t)
	writer := newTestNode(t, log, nil)
	signers := newSigners(t, 2)
	initReq := initRequest(t, signers, 1)
	initReq.Scheme = primitives.SchemeEcdsa

	id, err := writer.relay.CreateProposal(ctx, initReq)
	req.NoError(err)

	// signed messages that skip the local checks of SubmitSignature
	forged := signRequest(t, signers[0], id)
	forged.Signature = bytes.Repeat([]byte{0xab}, primitives.EcdsaSignatureLen)
	otherProposal := signRequest(t, signers[1], primitives.NewBlake2bHasher().HashElements([]primitives.Felt{7}).Hex())
	for _, request := range []requests.ProposalSignatureRequest{forged, otherProposal} {
		data, err := json.Marshal(request)
		req.NoError(err)
		message, err := writer.relay.buildMessage(testAccount, id, pf.EventSignatureReceived, data)
		req.NoError(err)
		req.NoError(log.Send(*message))
	}

	reader := newTestNode(t, log, nil)
	for _, node := range []*testNode{writer, reader} {
		req.NoError(node.relay.Refresh(ctx))
		p, err := FindProposal(ctx, node.relay, testAccount, id)
		req.NoError(err)
		req.Equal(fsmtypes.ProposalStatusPending, p.Status)
		req.Zero(p.SignatureCount())

		offset, err := node.state.LoadOffset()
		req.NoError(err)
		req.Equal(uint64(3), offset)
	}

	req.NoError(reader.relay.SubmitSignature(ctx, testAccount, id, signRequest(t, signers[1], id)))
	p, err := FindProposal(ctx, reader.relay, testAccount, id)
	req.NoError(err)
	req.Equal(fsmtypes.ProposalStatusReady, p.Status)
}

func TestLogRelay_PushDelta(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	h := primitives.NewBlake2bHasher()
	log := newTestLog(t)

	psm, err := primitives.GenerateEcdsaSigner()
	req.NoError(err)
	node := newTestNode(t, log, psm)
	signers := newSigners(t, 1)
	initReq := initRequest(t, signers, 1)

	_, err = node.relay.PushDelta(ctx, types.Delta{AccountID: testAccount, SummaryCommitment: initReq.SummaryCommitment, Summary: initReq.Summary})
	req.ErrorIs(err, types.ErrDeltaNotFound)

	_, err = node.relay.CreateProposal(ctx, initReq)
	req.NoError(err)

	delta, err := FindDelta(ctx, node.relay, testAccount, initReq.SummaryCommitment)
	req.NoError(err)

	ack, err := node.relay.PushDelta(ctx, *delta)
	req.NoError(err)
	req.False(ack.IsEmpty())
	req.Equal(primitives.SchemeEcdsa, ack.Scheme)

	message, err := primitives.WordFromHex(initReq.SummaryCommitment)
	req.NoError(err)
	req.True(primitives.VerifyEcdsa(ack.PublicKey, message, ack.Signature))
	derived, ok := primitives.DeriveEcdsaCommitment(h, ack.PublicKey)
	req.True(ok)
	req.Equal(psm.Commitment(h), derived)

	// a node without the PSM key answers with an empty acknowledgment
	plain := newTestNode(t, log, nil)
	req.NoError(plain.relay.Refresh(ctx))
	ack, err = plain.relay.PushDelta(ctx, *delta)
	req.NoError(err)
	req.True(ack.IsEmpty())

	_, err = FindDelta(ctx, node.relay, testAccount, h.HashElements([]primitives.Felt{5}).Hex())
	req.ErrorIs(err, types.ErrDeltaNotFound)
}
