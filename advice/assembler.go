package advice

import (
	"errors"
	"fmt"

	"github.com/qash-finance/qash-sub002/primitives"
)

var (
	ErrCommitmentMismatch = errors.New("signer commitment mismatch")
	ErrNoAcknowledgment   = errors.New("acknowledgment signature is missing")
	ErrNoPSMCommitment    = errors.New("psm commitment is unknown")
)

// CosignerSignature is a signature over the transaction commitment together
// with the commitment the signer claims.
type CosignerSignature struct {
	SignerID  string
	Signature primitives.Signature
}

// Assembler builds the advice map the on-chain auth procedure verifies against:
// one entry per distinct cosigner plus one for the PSM acknowledgment.
type Assembler struct {
	hasher        primitives.Hasher
	registered    map[string]struct{}
	psmCommitment string
}

// NewAssembler accepts the account's registered signer commitments and the
// configured PSM commitment, which may be empty when the PSM signs with ECDSA.
func NewAssembler(hasher primitives.Hasher, registered []string, psmCommitment string) (*Assembler, error) {
	a := &Assembler{
		hasher:     hasher,
		registered: make(map[string]struct{}, len(registered)),
	}
	for _, c := range registered {
		normalized, err := primitives.NormalizeHex(c)
		if err != nil {
			return nil, fmt.Errorf("registered commitment %q: %w", c, err)
		}
		a.registered[normalized] = struct{}{}
	}
	if psmCommitment != "" {
		normalized, err := primitives.NormalizeHex(psmCommitment)
		if err != nil {
			return nil, fmt.Errorf("psm commitment: %w", err)
		}
		a.psmCommitment = normalized
	}
	return a, nil
}

// Key returns the advice key of a signer for a transaction.
func Key(h primitives.Hasher, signerCommitment, txCommitment primitives.Word) primitives.Word {
	return primitives.Merge(h, signerCommitment, txCommitment)
}

func (a *Assembler) Assemble(
	txCommitment primitives.Word,
	signatures []CosignerSignature,
	ack primitives.Signature,
) (*primitives.AdviceMap, error) {
	if ack == nil {
		return nil, ErrNoAcknowledgment
	}

	out := primitives.NewAdviceMap()
	seen := make(map[primitives.Word]struct{}, len(signatures))
	for _, s := range signatures {
		commitment, err := a.signerCommitment(s)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[commitment]; ok {
			continue
		}
		seen[commitment] = struct{}{}

		value, err := s.Signature.AdviceValue(txCommitment)
		if err != nil {
			return nil, fmt.Errorf("signer %s: %w", commitment.Hex(), err)
		}
		out.Insert(Key(a.hasher, commitment, txCommitment), value)
	}

	psm, err := a.ackCommitment(ack)
	if err != nil {
		return nil, err
	}
	value, err := ack.AdviceValue(txCommitment)
	if err != nil {
		return nil, fmt.Errorf("acknowledgment: %w", err)
	}
	out.Insert(Key(a.hasher, psm, txCommitment), value)

	return out, nil
}

func (a *Assembler) signerCommitment(s CosignerSignature) (primitives.Word, error) {
	if s.Signature == nil {
		return primitives.Word{}, fmt.Errorf("signer %s: %w", s.SignerID, primitives.ErrMalformedSignature)
	}
	if ecdsa, ok := s.Signature.(primitives.EcdsaSignature); ok {
		if derived, ok := primitives.DeriveEcdsaCommitment(a.hasher, ecdsa.PublicKey()); ok {
			if _, registered := a.registered[derived.Hex()]; !registered {
				return derived, fmt.Errorf("%w: public key of %s derives unregistered %s",
					ErrCommitmentMismatch, s.SignerID, derived.Hex())
			}
			return derived, nil
		}
	}

	commitment, err := primitives.WordFromHex(s.SignerID)
	if err != nil {
		return commitment, fmt.Errorf("signer id %q: %w", s.SignerID, err)
	}
	if _, registered := a.registered[commitment.Hex()]; !registered {
		return commitment, fmt.Errorf("%w: %s is not a registered signer", ErrCommitmentMismatch, commitment.Hex())
	}
	return commitment, nil
}

func (a *Assembler) ackCommitment(ack primitives.Signature) (primitives.Word, error) {
	if ecdsa, ok := ack.(primitives.EcdsaSignature); ok {
		if derived, ok := primitives.DeriveEcdsaCommitment(a.hasher, ecdsa.PublicKey()); ok {
			if a.psmCommitment != "" && a.psmCommitment != derived.Hex() {
				return derived, fmt.Errorf("%w: acknowledgment key derives %s, expected %s",
					ErrCommitmentMismatch, derived.Hex(), a.psmCommitment)
			}
			return derived, nil
		}
	}
	if a.psmCommitment == "" {
		return primitives.Word{}, ErrNoPSMCommitment
	}
	return primitives.WordFromHex(a.psmCommitment)
}
