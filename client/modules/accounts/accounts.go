package accounts

import (
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v2"

	"github.com/qash-finance/qash-sub002/batch"
	"github.com/qash-finance/qash-sub002/client/types"
)

// Registry holds the multisig accounts served by the node, keyed by the
// normalized account id.
type Registry struct {
	accounts *xsync.MapOf[string, *types.MultisigAccount]
}

func NewRegistry(accounts ...types.MultisigAccount) (*Registry, error) {
	r := &Registry{accounts: xsync.NewMapOf[*types.MultisigAccount]()}
	for i := range accounts {
		if err := r.Add(accounts[i]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func key(accountID string) string {
	if id, err := batch.ParseAccountID(accountID); err == nil {
		return id.Hex()
	}
	return accountID
}

// Add validates and stores a copy of the account, replacing any previous entry.
func (r *Registry) Add(account types.MultisigAccount) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("invalid multisig account: %w", err)
	}
	account.SignerCommitments = append([]string(nil), account.SignerCommitments...)
	account.PublicKeys = append([]string(nil), account.PublicKeys...)
	r.accounts.Store(key(account.AccountID), &account)
	return nil
}

func (r *Registry) Remove(accountID string) {
	r.accounts.Delete(key(accountID))
}

// Get returns a copy of the account.
func (r *Registry) Get(accountID string) (types.MultisigAccount, error) {
	account, ok := r.accounts.Load(key(accountID))
	if !ok {
		return types.MultisigAccount{}, fmt.Errorf("%w: %s", types.ErrAccountNotFound, accountID)
	}
	out := *account
	out.SignerCommitments = append([]string(nil), account.SignerCommitments...)
	out.PublicKeys = append([]string(nil), account.PublicKeys...)
	return out, nil
}

// IDs returns the registered account ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, r.accounts.Size())
	r.accounts.Range(func(_ string, account *types.MultisigAccount) bool {
		ids = append(ids, account.AccountID)
		return true
	})
	sort.Strings(ids)
	return ids
}

func (r *Registry) Len() int {
	return r.accounts.Size()
}
