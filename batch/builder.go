package batch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"lukechampine.com/frand"

	"github.com/qash-finance/qash-sub002/primitives"
)

// MaxBatchRecipients caps the number of payments in one batch.
const MaxBatchRecipients = 50

var (
	ErrEmptyBatch     = errors.New("batch has no recipients")
	ErrBatchTooLarge  = fmt.Errorf("batch exceeds %d recipients", MaxBatchRecipients)
	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidAmount  = errors.New("invalid amount")
)

// Recipient is one payment of a batch. Amount is in the faucet's smallest unit.
type Recipient struct {
	Address  string `json:"address"`
	FaucetID string `json:"faucet_id"`
	Amount   uint64 `json:"amount"`
}

// SaltSource supplies auth-salt entropy.
type SaltSource io.Reader

type frandSource struct{}

func (frandSource) Read(p []byte) (int, error) {
	return frand.Read(p)
}

type BuildResult struct {
	Request  *TransactionRequest
	AuthSalt primitives.Word
}

func (r *BuildResult) AuthSaltHex() string {
	return r.AuthSalt.Hex()
}

// Builder turns a list of payments into a transaction request whose note
// serial numbers are derived from a single auth salt. Rebuilding from the same
// payments and salt yields identical notes.
type Builder struct {
	hasher primitives.Hasher
	salt   SaltSource
}

func NewBuilder(hasher primitives.Hasher, salt SaltSource) *Builder {
	if salt == nil {
		salt = frandSource{}
	}
	return &Builder{hasher: hasher, salt: salt}
}

func (b *Builder) Hasher() primitives.Hasher {
	return b.hasher
}

// Build creates a request with a freshly drawn auth salt.
func (b *Builder) Build(sender string, recipients []Recipient, advice *primitives.AdviceMap) (*BuildResult, error) {
	if err := checkBatchSize(recipients); err != nil {
		return nil, err
	}
	salt, err := b.randomSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to draw auth salt: %w", err)
	}
	request, err := b.Rebuild(sender, recipients, salt, advice)
	if err != nil {
		return nil, err
	}
	return &BuildResult{Request: request, AuthSalt: salt}, nil
}

// Rebuild recreates the request for a known auth salt.
func (b *Builder) Rebuild(sender string, recipients []Recipient, authSalt primitives.Word, advice *primitives.AdviceMap) (*TransactionRequest, error) {
	if err := checkBatchSize(recipients); err != nil {
		return nil, err
	}
	senderID, err := ParseAccountID(sender)
	if err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}

	type output struct {
		target, faucet AccountID
		amount         uint64
	}
	// every recipient is validated before any salt is derived
	outputs := make([]output, len(recipients))
	for i, recipient := range recipients {
		target, err := ParseAccountID(recipient.Address)
		if err != nil {
			return nil, fmt.Errorf("recipient %d: %w", i, err)
		}
		faucet, err := ParseAccountID(recipient.FaucetID)
		if err != nil {
			return nil, fmt.Errorf("recipient %d faucet: %w", i, err)
		}
		if recipient.Amount == 0 || recipient.Amount >= primitives.Modulus {
			return nil, fmt.Errorf("recipient %d: %w: %d", i, ErrInvalidAmount, recipient.Amount)
		}
		outputs[i] = output{target: target, faucet: faucet, amount: recipient.Amount}
	}

	notes := make([]Note, 0, len(outputs))
	for i, out := range outputs {
		noteSalt := primitives.HashWordWithFelt(b.hasher, authSalt, primitives.Felt(i+1))
		serialNumber := primitives.HashWordWithFelt(b.hasher, noteSalt, 0)
		notes = append(notes, NewP2IDNote(
			senderID,
			out.target,
			[]FungibleAsset{{Faucet: out.faucet, Amount: out.amount}},
			serialNumber,
		))
	}

	request := &TransactionRequest{
		OutputNotes: notes,
		AuthArg:     authSalt,
		Advice:      primitives.NewAdviceMap(),
	}
	request.Advice.Extend(advice)
	return request, nil
}

func (b *Builder) randomSalt() (primitives.Word, error) {
	var (
		buf  [primitives.WordSize]byte
		salt primitives.Word
	)
	if _, err := io.ReadFull(b.salt, buf[:]); err != nil {
		return salt, err
	}
	for i := range salt {
		salt[i] = primitives.NewFelt(binary.LittleEndian.Uint64(buf[i*primitives.FeltSize:]))
	}
	return salt, nil
}

func checkBatchSize(recipients []Recipient) error {
	if len(recipients) == 0 {
		return ErrEmptyBatch
	}
	if len(recipients) > MaxBatchRecipients {
		return fmt.Errorf("%w: got %d", ErrBatchTooLarge, len(recipients))
	}
	return nil
}
