package accounts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qash-finance/qash-sub002/client/types"
	fsmtypes "github.com/qash-finance/qash-sub002/fsm/types"
	"github.com/qash-finance/qash-sub002/primitives"
)

func testAccount(id string) types.MultisigAccount {
	h := primitives.NewBlake2bHasher()
	return types.MultisigAccount{
		AccountID:         id,
		SignerCommitments: []string{h.HashElements([]primitives.Felt{1}).Hex()},
		Scheme:            primitives.SchemeFalcon,
		Threshold:         fsmtypes.ThresholdPolicy{Base: 1},
	}
}

const (
	accountA = "0x1122334455667788990011223344aa"
	accountB = "0x9a2c1e0f4b5d6e7f8a9b0c1d2e3f40"
)

func TestRegistry(t *testing.T) {
	req := require.New(t)

	r, err := NewRegistry(testAccount(accountB), testAccount(accountA))
	req.NoError(err)
	req.Equal(2, r.Len())
	req.Equal([]string{accountA, accountB}, r.IDs())

	// lookups are insensitive to the prefix and case
	account, err := r.Get(strings.ToUpper(accountA[2:]))
	req.NoError(err)
	req.Equal(accountA, account.AccountID)

	// returned copies do not alias the registry
	account.SignerCommitments[0] = "0x01"
	stored, err := r.Get(accountA)
	req.NoError(err)
	req.NotEqual("0x01", stored.SignerCommitments[0])

	r.Remove(accountA)
	_, err = r.Get(accountA)
	req.ErrorIs(err, types.ErrAccountNotFound)

	invalid := testAccount("0x2c3d4e5f60718293a4b5c6d7e8f900")
	invalid.Threshold.Base = 0
	req.Error(r.Add(invalid))
}
