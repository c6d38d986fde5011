package proposal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qash-finance/qash-sub002/client/modules/state"
	"github.com/qash-finance/qash-sub002/client/types"
)

const testAccount = "0x9a2c1e0f4b5d6e7f8a9b0c1d2e3f40"

func newTestRepo(t *testing.T) *BaseProposalRepo {
	s, err := state.NewLevelDBState(t.TempDir(), "test_topic")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewProposalRepo(s)
}

func TestProposalDumps(t *testing.T) {
	req := require.New(t)
	repo := newTestRepo(t)

	dump, err := repo.GetProposalDump(testAccount, "0x01")
	req.NoError(err)
	req.Nil(dump)

	req.NoError(repo.SaveProposalDump(testAccount, "0x02", []byte(`{"ID":"b"}`)))
	req.NoError(repo.SaveProposalDump(testAccount, "0x01", []byte(`{"ID":"a"}`)))
	// overwrite keeps a single entry
	req.NoError(repo.SaveProposalDump(testAccount, "0x0001", []byte(`{"ID":"a2"}`)))

	dump, err = repo.GetProposalDump(testAccount, "0x1")
	req.NoError(err)
	req.JSONEq(`{"ID":"a2"}`, string(dump))

	dumps, err := repo.GetProposalDumps(testAccount)
	req.NoError(err)
	req.Len(dumps, 2)
	req.JSONEq(`{"ID":"a2"}`, string(dumps[0]))
	req.JSONEq(`{"ID":"b"}`, string(dumps[1]))

	dumps, err = repo.GetProposalDumps("0x9a2c1e0f4b5d6e7f8a9b0c1d2e3f41")
	req.NoError(err)
	req.Empty(dumps)

	req.Error(repo.SaveProposalDump(testAccount, "0x01", nil))
	req.Error(repo.SaveProposalDump("not hex", "0x01", []byte(`{}`)))
}

func TestDeltas(t *testing.T) {
	req := require.New(t)
	repo := newTestRepo(t)

	delta, err := repo.GetDelta(testAccount, "0x0a")
	req.NoError(err)
	req.Nil(delta)

	req.NoError(repo.SaveDelta(types.Delta{AccountID: testAccount, SummaryCommitment: "0x0B", Summary: []byte{2}, Nonce: 2}))
	req.NoError(repo.SaveDelta(types.Delta{AccountID: testAccount, SummaryCommitment: "0x0a", Summary: []byte{1}, Nonce: 1}))

	delta, err = repo.GetDelta(testAccount, "0xb")
	req.NoError(err)
	req.NotNil(delta)
	req.Equal([]byte{2}, delta.Summary)

	deltas, err := repo.GetDeltas(testAccount)
	req.NoError(err)
	req.Len(deltas, 2)
	req.Equal(uint64(1), deltas[0].Nonce)
	req.Equal(uint64(2), deltas[1].Nonce)
}
