package proposal

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/qash-finance/qash-sub002/batch"
	"github.com/qash-finance/qash-sub002/client/modules/state"
	"github.com/qash-finance/qash-sub002/client/types"
	"github.com/qash-finance/qash-sub002/primitives"
)

const (
	ProposalsKeyPrefix = "proposals"
	DeltasKeyPrefix    = "deltas"
)

// ProposalsStorage maps a normalized summary commitment to a machine dump.
type ProposalsStorage map[string]json.RawMessage

type DeltasStorage map[string]types.Delta

// ProposalRepo persists proposal machine dumps and deltas per account.
type ProposalRepo interface {
	SaveProposalDump(accountID, proposalID string, dump []byte) error
	GetProposalDump(accountID, proposalID string) ([]byte, error)
	GetProposalDumps(accountID string) ([][]byte, error)
	SaveDelta(delta types.Delta) error
	GetDelta(accountID, proposalID string) (*types.Delta, error)
	GetDeltas(accountID string) ([]types.Delta, error)
}

type BaseProposalRepo struct {
	mu    sync.Mutex
	state state.State
}

func NewProposalRepo(state state.State) *BaseProposalRepo {
	return &BaseProposalRepo{state: state}
}

func normalize(id string) (string, error) {
	if id == "" {
		return "", errors.New("empty id")
	}
	return primitives.NormalizeHex(id)
}

// accountKey accepts hex and bech32 account ids.
func accountKey(accountID string) (string, error) {
	id, err := batch.ParseAccountID(accountID)
	if err != nil {
		return "", err
	}
	return id.Hex(), nil
}

func (r *BaseProposalRepo) load(prefix, accountID string, out interface{}) error {
	account, err := accountKey(accountID)
	if err != nil {
		return fmt.Errorf("invalid account id %q: %w", accountID, err)
	}

	bz, err := r.state.Get(state.MakeCompositeKeyString(prefix, account))
	if err != nil {
		return fmt.Errorf("failed to get %s for account %s: %w", prefix, account, err)
	}
	if bz == nil {
		return nil
	}
	if err := json.Unmarshal(bz, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", prefix, err)
	}
	return nil
}

func (r *BaseProposalRepo) save(prefix, accountID string, in interface{}) error {
	account, err := accountKey(accountID)
	if err != nil {
		return fmt.Errorf("invalid account id %q: %w", accountID, err)
	}

	bz, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", prefix, err)
	}
	if err := r.state.Set(state.MakeCompositeKeyString(prefix, account), bz); err != nil {
		return fmt.Errorf("failed to save %s: %w", prefix, err)
	}
	return nil
}

func (r *BaseProposalRepo) SaveProposalDump(accountID, proposalID string, dump []byte) error {
	if len(dump) == 0 {
		return errors.New("nothing to save")
	}
	id, err := normalize(proposalID)
	if err != nil {
		return fmt.Errorf("invalid proposal id %q: %w", proposalID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	proposals := make(ProposalsStorage)
	if err := r.load(ProposalsKeyPrefix, accountID, &proposals); err != nil {
		return err
	}
	proposals[id] = append(json.RawMessage(nil), dump...)

	return r.save(ProposalsKeyPrefix, accountID, proposals)
}

// GetProposalDump returns nil when the proposal is unknown.
func (r *BaseProposalRepo) GetProposalDump(accountID, proposalID string) ([]byte, error) {
	id, err := normalize(proposalID)
	if err != nil {
		return nil, fmt.Errorf("invalid proposal id %q: %w", proposalID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	proposals := make(ProposalsStorage)
	if err := r.load(ProposalsKeyPrefix, accountID, &proposals); err != nil {
		return nil, err
	}
	return proposals[id], nil
}

// GetProposalDumps returns every dump of the account ordered by proposal id.
func (r *BaseProposalRepo) GetProposalDumps(accountID string) ([][]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	proposals := make(ProposalsStorage)
	if err := r.load(ProposalsKeyPrefix, accountID, &proposals); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(proposals))
	for id := range proposals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	dumps := make([][]byte, 0, len(ids))
	for _, id := range ids {
		dumps = append(dumps, proposals[id])
	}
	return dumps, nil
}

func (r *BaseProposalRepo) SaveDelta(delta types.Delta) error {
	id, err := normalize(delta.SummaryCommitment)
	if err != nil {
		return fmt.Errorf("invalid summary commitment %q: %w", delta.SummaryCommitment, err)
	}
	delta.SummaryCommitment = id

	r.mu.Lock()
	defer r.mu.Unlock()

	deltas := make(DeltasStorage)
	if err := r.load(DeltasKeyPrefix, delta.AccountID, &deltas); err != nil {
		return err
	}
	deltas[id] = delta

	return r.save(DeltasKeyPrefix, delta.AccountID, deltas)
}

// GetDelta returns nil when no delta is stored for the proposal.
func (r *BaseProposalRepo) GetDelta(accountID, proposalID string) (*types.Delta, error) {
	id, err := normalize(proposalID)
	if err != nil {
		return nil, fmt.Errorf("invalid proposal id %q: %w", proposalID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	deltas := make(DeltasStorage)
	if err := r.load(DeltasKeyPrefix, accountID, &deltas); err != nil {
		return nil, err
	}
	delta, ok := deltas[id]
	if !ok {
		return nil, nil
	}
	return &delta, nil
}

func (r *BaseProposalRepo) GetDeltas(accountID string) ([]types.Delta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deltas := make(DeltasStorage)
	if err := r.load(DeltasKeyPrefix, accountID, &deltas); err != nil {
		return nil, err
	}

	out := make([]types.Delta, 0, len(deltas))
	for _, delta := range deltas {
		out = append(out, delta)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Nonce != out[j].Nonce {
			return out[i].Nonce < out[j].Nonce
		}
		return out[i].SummaryCommitment < out[j].SummaryCommitment
	})
	return out, nil
}
