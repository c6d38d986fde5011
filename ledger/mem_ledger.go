package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/qash-finance/qash-sub002/advice"
	"github.com/qash-finance/qash-sub002/batch"
	"github.com/qash-finance/qash-sub002/primitives"
)

type memAccount struct {
	// nonce on chain
	nonce uint64
	// nonce the local state executes against, trails nonce until synced
	localNonce uint64
	balances   map[string]uint64
	// nil until RegisterAuth
	auth *memAuth
}

// memAuth mirrors the account's on-chain auth procedure.
type memAuth struct {
	scheme      primitives.Scheme
	commitments []primitives.Word
	threshold   int
}

// MemLedger is an in-process ledger used in development mode and tests. It
// models the chain nonce, the lagging local state and the applied set.
type MemLedger struct {
	mu       sync.Mutex
	hasher   primitives.Hasher
	height   uint64
	accounts map[string]*memAccount
	faucets  map[string]FaucetMetadata
	applied  map[string]uint64
	executed map[string]*ExecutedTransaction
}

func NewMemLedger(hasher primitives.Hasher) *MemLedger {
	return &MemLedger{
		hasher:   hasher,
		accounts: make(map[string]*memAccount),
		faucets:  make(map[string]FaucetMetadata),
		applied:  make(map[string]uint64),
		executed: make(map[string]*ExecutedTransaction),
	}
}

func accountKey(id string) (string, error) {
	accountID, err := batch.ParseAccountID(id)
	if err != nil {
		return "", err
	}
	return accountID.Hex(), nil
}

func (l *MemLedger) account(id string) (*memAccount, string, error) {
	key, err := accountKey(id)
	if err != nil {
		return nil, "", err
	}
	account, ok := l.accounts[key]
	if !ok {
		return nil, key, fmt.Errorf("%w: %s", ErrUnknownAccount, key)
	}
	return account, key, nil
}

// Fund credits amount of a faucet to an account, creating the account.
func (l *MemLedger) Fund(accountID, faucetID string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key, err := accountKey(accountID)
	if err != nil {
		return err
	}
	faucet, err := accountKey(faucetID)
	if err != nil {
		return err
	}
	account, ok := l.accounts[key]
	if !ok {
		account = &memAccount{balances: make(map[string]uint64)}
		l.accounts[key] = account
	}
	account.balances[faucet] += amount
	return nil
}

// RegisterAuth installs the signer set an account's auth procedure checks the
// advice against. Accounts without it accept any advice.
func (l *MemLedger) RegisterAuth(accountID string, scheme primitives.Scheme, signerCommitments []string, threshold int) error {
	if threshold < 1 || threshold > len(signerCommitments) {
		return fmt.Errorf("threshold %d out of range [1, %d]", threshold, len(signerCommitments))
	}
	auth := &memAuth{scheme: scheme, threshold: threshold}
	for _, c := range signerCommitments {
		commitment, err := primitives.WordFromHex(c)
		if err != nil {
			return fmt.Errorf("signer commitment %q: %w", c, err)
		}
		auth.commitments = append(auth.commitments, commitment)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key, err := accountKey(accountID)
	if err != nil {
		return err
	}
	account, ok := l.accounts[key]
	if !ok {
		account = &memAccount{balances: make(map[string]uint64)}
		l.accounts[key] = account
	}
	account.auth = auth
	return nil
}

// authorize counts advice entries of registered signers over txCommitment.
// ECDSA entries must verify, falcon entries are counted when present.
func (l *MemLedger) authorize(auth *memAuth, txCommitment primitives.Word, request *batch.TransactionRequest) error {
	valid := 0
	for _, commitment := range auth.commitments {
		value, ok := request.Advice.Get(advice.Key(l.hasher, commitment, txCommitment))
		if !ok {
			continue
		}
		if auth.scheme != primitives.SchemeEcdsa {
			valid++
			continue
		}
		publicKey, signature, err := primitives.DecodeEcdsaAdvice(value)
		if err != nil {
			continue
		}
		derived, ok := primitives.DeriveEcdsaCommitment(l.hasher, publicKey)
		if !ok || derived != commitment || !primitives.VerifyEcdsa(publicKey, txCommitment, signature) {
			continue
		}
		valid++
	}
	if valid < auth.threshold {
		return fmt.Errorf("%w: %d of %d valid signatures", ErrUnauthorized, valid, auth.threshold)
	}
	return nil
}

func (l *MemLedger) RegisterFaucet(faucetID string, metadata FaucetMetadata) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key, err := accountKey(faucetID)
	if err != nil {
		return err
	}
	l.faucets[key] = metadata
	return nil
}

// Nonce returns the on-chain nonce of an account.
func (l *MemLedger) Nonce(accountID string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, _, err := l.account(accountID)
	if err != nil {
		return 0, err
	}
	return account.nonce, nil
}

// SyncState brings every local account state up to the chain.
func (l *MemLedger) SyncState(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, account := range l.accounts {
		account.localNonce = account.nonce
	}
	return l.height, nil
}

func (l *MemLedger) ExecuteTransaction(ctx context.Context, accountID string, request *batch.TransactionRequest) (*ExecutedTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fmt.Errorf("transaction request is nil")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	account, key, err := l.account(accountID)
	if err != nil {
		return nil, err
	}

	required := make(map[string]uint64)
	for _, note := range request.OutputNotes {
		for _, asset := range note.Assets {
			required[asset.Faucet.Hex()] += asset.Amount
		}
	}
	for faucet, amount := range required {
		if account.balances[faucet] < amount {
			return nil, fmt.Errorf("insufficient balance of %s: have %d, need %d", faucet, account.balances[faucet], amount)
		}
	}

	txCommitment := l.transactionCommitment(key, request)
	if account.auth != nil {
		if request.Advice == nil {
			return nil, fmt.Errorf("%w: no advice", ErrUnauthorized)
		}
		if err := l.authorize(account.auth, txCommitment, request); err != nil {
			return nil, err
		}
	}

	executed := &ExecutedTransaction{
		ID:        txCommitment.Hex(),
		AccountID: key,
		Nonce:     account.localNonce,
		Request:   request,
	}
	l.executed[executed.ID] = executed
	return executed, nil
}

func (l *MemLedger) transactionCommitment(accountID string, request *batch.TransactionRequest) primitives.Word {
	sender, _ := batch.ParseAccountID(accountID)
	summary := batch.NewTransactionSummary(l.hasher, sender, request)
	return summary.Commitment(l.hasher)
}

func (l *MemLedger) ProveTransaction(ctx context.Context, executed *ExecutedTransaction) (*ProvenTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if executed == nil {
		return nil, fmt.Errorf("executed transaction is nil")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.executed[executed.ID]; !ok {
		return nil, fmt.Errorf("transaction %s was not executed", executed.ID)
	}
	proof := l.hasher.HashElements(primitives.PackU32Felts(executed.Request.Bytes()))
	return &ProvenTransaction{ExecutedID: executed.ID, Proof: proof.Bytes()}, nil
}

func (l *MemLedger) SubmitProvenTransaction(ctx context.Context, proven *ProvenTransaction, executed *ExecutedTransaction) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if proven == nil || executed == nil || proven.ExecutedID != executed.ID {
		return 0, fmt.Errorf("proof does not belong to the executed transaction")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.applied[executed.ID]; ok {
		return 0, fmt.Errorf("%w: %s", ErrAlreadyApplied, executed.ID)
	}
	account, _, err := l.account(executed.AccountID)
	if err != nil {
		return 0, err
	}
	if executed.Nonce < account.nonce {
		return 0, fmt.Errorf("%w: nonce %d, chain %d", ErrNonceTooLow, executed.Nonce, account.nonce)
	}

	for _, note := range executed.Request.OutputNotes {
		for _, asset := range note.Assets {
			faucet := asset.Faucet.Hex()
			if account.balances[faucet] < asset.Amount {
				return 0, fmt.Errorf("insufficient balance of %s", faucet)
			}
			account.balances[faucet] -= asset.Amount
		}
	}
	account.nonce++
	l.height++
	l.applied[executed.ID] = l.height
	return l.height, nil
}

// ApplyTransaction moves the local state of the account past the submitted
// transaction.
func (l *MemLedger) ApplyTransaction(ctx context.Context, executed *ExecutedTransaction, submissionHeight uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	height, ok := l.applied[executed.ID]
	if !ok || height != submissionHeight {
		return fmt.Errorf("transaction %s is not included at height %d", executed.ID, submissionHeight)
	}
	account, _, err := l.account(executed.AccountID)
	if err != nil {
		return err
	}
	account.localNonce = executed.Nonce + 1
	delete(l.executed, executed.ID)
	return nil
}

func (l *MemLedger) GetAccountBalances(ctx context.Context, accountID string) ([]Balance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	account, _, err := l.account(accountID)
	if err != nil {
		return nil, err
	}
	balances := make([]Balance, 0, len(account.balances))
	for faucet, amount := range account.balances {
		balances = append(balances, Balance{FaucetID: faucet, Amount: amount})
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].FaucetID < balances[j].FaucetID
	})
	return balances, nil
}

func (l *MemLedger) GetFaucetMetadata(ctx context.Context, faucetID string) (FaucetMetadata, error) {
	if err := ctx.Err(); err != nil {
		return FaucetMetadata{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	key, err := accountKey(faucetID)
	if err != nil {
		return FaucetMetadata{}, err
	}
	metadata, ok := l.faucets[key]
	if !ok {
		return FaucetMetadata{}, fmt.Errorf("%w: %s", ErrUnknownFaucet, key)
	}
	return metadata, nil
}
