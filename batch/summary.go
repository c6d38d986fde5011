package batch

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/qash-finance/qash-sub002/primitives"
)

const (
	summaryVersion byte = 1
	summaryLen          = 1 + 2*primitives.FeltSize + 2*primitives.WordSize
)

var ErrMalformedSummary = errors.New("malformed transaction summary")

// TransactionSummary is what cosigners sign: its commitment is the proposal's
// transaction commitment.
type TransactionSummary struct {
	AccountID             AccountID
	OutputNotesCommitment primitives.Word
	Salt                  primitives.Word
}

func NewTransactionSummary(h primitives.Hasher, sender AccountID, request *TransactionRequest) TransactionSummary {
	return TransactionSummary{
		AccountID:             sender,
		OutputNotesCommitment: request.OutputNotesCommitment(h),
		Salt:                  request.AuthArg,
	}
}

func (s TransactionSummary) Commitment(h primitives.Hasher) primitives.Word {
	felts := []primitives.Felt{s.AccountID.Prefix, s.AccountID.Suffix}
	felts = append(felts, s.OutputNotesCommitment.Felts()...)
	felts = append(felts, s.Salt.Felts()...)
	return h.HashElements(felts)
}

func (s TransactionSummary) Bytes() []byte {
	var w encoder
	w.byte(summaryVersion)
	w.felt(s.AccountID.Prefix)
	w.felt(s.AccountID.Suffix)
	w.word(s.OutputNotesCommitment)
	w.word(s.Salt)
	return w.buf
}

func DeserializeSummary(b []byte) (TransactionSummary, error) {
	var s TransactionSummary
	if len(b) != summaryLen {
		return s, fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformedSummary, summaryLen, len(b))
	}
	if b[0] != summaryVersion {
		return s, fmt.Errorf("%w: unsupported version %d", ErrMalformedSummary, b[0])
	}
	b = b[1:]

	prefix := binary.LittleEndian.Uint64(b)
	suffix := binary.LittleEndian.Uint64(b[primitives.FeltSize:])
	if prefix >= primitives.Modulus || suffix >= primitives.Modulus {
		return s, fmt.Errorf("%w: account id is not canonical", ErrMalformedSummary)
	}
	s.AccountID = AccountID{Prefix: primitives.Felt(prefix), Suffix: primitives.Felt(suffix)}
	b = b[2*primitives.FeltSize:]

	var err error
	if s.OutputNotesCommitment, err = primitives.WordFromBytes(b[:primitives.WordSize]); err != nil {
		return s, fmt.Errorf("%w: %v", ErrMalformedSummary, err)
	}
	if s.Salt, err = primitives.WordFromBytes(b[primitives.WordSize:]); err != nil {
		return s, fmt.Errorf("%w: %v", ErrMalformedSummary, err)
	}
	return s, nil
}
