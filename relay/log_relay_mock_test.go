package relay

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/qash-finance/qash-sub002/client/modules/state"
	proposalrepo "github.com/qash-finance/qash-sub002/client/repositories/proposal"
	"github.com/qash-finance/qash-sub002/mocks/clientMocks"
	"github.com/qash-finance/qash-sub002/mocks/storageMocks"
	"github.com/qash-finance/qash-sub002/primitives"
	"github.com/qash-finance/qash-sub002/storage"
)

func newMockedRelay(t *testing.T, stg storage.Storage, st state.State) *LogRelay {
	signer, err := primitives.GenerateEcdsaSigner()
	require.NoError(t, err)

	r, err := NewLogRelay(LogRelayConfig{
		Storage: stg,
		State:   st,
		Repo:    proposalrepo.NewProposalRepo(st),
		Signer:  signer,
	})
	require.NoError(t, err)
	return r
}

func TestLogRelay_RefreshFailsOnStorageError(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	st := clientMocks.NewMockState(ctrl)
	stg := storageMocks.NewMockStorage(ctrl)
	r := newMockedRelay(t, stg, st)

	st.EXPECT().LoadOffset().Return(uint64(3), nil)
	stg.EXPECT().GetMessages(uint64(3)).Return(nil, errors.New("broker down"))

	err := r.Refresh(context.Background())
	req.ErrorContains(err, "broker down")
}

func TestLogRelay_RefreshSkipsCorruptMessage(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	st := clientMocks.NewMockState(ctrl)
	stg := storageMocks.NewMockStorage(ctrl)
	r := newMockedRelay(t, stg, st)

	forger, err := primitives.GenerateEcdsaSigner()
	req.NoError(err)

	gomock.InOrder(
		st.EXPECT().LoadOffset().Return(uint64(7), nil),
		stg.EXPECT().GetMessages(uint64(7)).Return([]storage.Message{{
			ID:         "forged",
			Offset:     7,
			AccountID:  testAccount,
			ProposalID: "0x01",
			Event:      "event_proposal_init",
			SenderAddr: forger.PublicKeyHex(),
			Signature:  []byte{1, 2, 3},
		}}, nil),
		// the offset moves past the message even though it was refused
		st.EXPECT().SaveOffset(uint64(8)).Return(nil),
	)

	req.NoError(r.Refresh(context.Background()))
}

func TestLogRelay_SendFailureLeavesNoProposal(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	st, err := state.NewLevelDBState(t.TempDir(), "relay_test")
	req.NoError(err)
	t.Cleanup(func() { _ = st.Close() })

	stg := storageMocks.NewMockStorage(ctrl)
	r := newMockedRelay(t, stg, st)

	stg.EXPECT().GetMessages(uint64(0)).Return(nil, nil)
	stg.EXPECT().Send(gomock.Any()).Return(errors.New("log is read-only"))

	_, err = r.CreateProposal(ctx, initRequest(t, newSigners(t, 2), 2))
	req.ErrorContains(err, "failed to send message")

	proposals, err := r.ListTransactionProposals(ctx, testAccount)
	req.NoError(err)
	req.Empty(proposals)
}
