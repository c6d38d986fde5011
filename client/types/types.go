package types

import (
	"fmt"

	fsmtypes "github.com/qash-finance/qash-sub002/fsm/types"
	"github.com/qash-finance/qash-sub002/primitives"
)

// MultisigAccount is the reference data of an account this node cosigns for.
type MultisigAccount struct {
	AccountID         string                   `json:"account_id" mapstructure:"account_id"`
	Name              string                   `json:"name" mapstructure:"name"`
	SignerCommitments []string                 `json:"signer_commitments" mapstructure:"signer_commitments"`
	PublicKeys        []string                 `json:"public_keys,omitempty" mapstructure:"public_keys"`
	Scheme            primitives.Scheme        `json:"scheme" mapstructure:"scheme"`
	Threshold         fsmtypes.ThresholdPolicy `json:"threshold" mapstructure:"threshold"`
}

func (a *MultisigAccount) Validate() error {
	if a.AccountID == "" {
		return fmt.Errorf("{AccountID} cannot be empty")
	}
	if len(a.SignerCommitments) == 0 {
		return fmt.Errorf("account %s: {SignerCommitments} cannot be empty", a.AccountID)
	}
	if len(a.PublicKeys) > 0 && len(a.PublicKeys) != len(a.SignerCommitments) {
		return fmt.Errorf("account %s: {PublicKeys} must match {SignerCommitments}", a.AccountID)
	}
	if a.Threshold.Base < 1 || a.Threshold.Base > len(a.SignerCommitments) {
		return fmt.Errorf("account %s: threshold %d out of range [1, %d]", a.AccountID, a.Threshold.Base, len(a.SignerCommitments))
	}
	for _, c := range a.SignerCommitments {
		if _, err := primitives.NormalizeHex(c); err != nil {
			return fmt.Errorf("account %s: signer commitment %q: %w", a.AccountID, c, err)
		}
	}
	switch a.Scheme {
	case "", primitives.SchemeFalcon, primitives.SchemeEcdsa:
	default:
		return fmt.Errorf("account %s: %w: %q", a.AccountID, primitives.ErrUnknownScheme, a.Scheme)
	}
	return nil
}

// EffectiveThreshold is the number of signatures a proposal of type t needs.
func (a *MultisigAccount) EffectiveThreshold(t fsmtypes.ProposalType) int {
	return a.Threshold.EffectiveThreshold(t)
}

// ApproverIndex returns the position of a signer commitment, or -1.
func (a *MultisigAccount) ApproverIndex(commitment string) int {
	for i, c := range a.SignerCommitments {
		if primitives.EqualHex(c, commitment) {
			return i
		}
	}
	return -1
}

// Delta is the relay's record of a proposed state change: the signed summary
// and the account nonce it applies to.
type Delta struct {
	AccountID         string
	SummaryCommitment string
	Summary           []byte
	Nonce             uint64
}

// Acknowledgment is the PSM countersignature over a pushed delta.
type Acknowledgment struct {
	Scheme    primitives.Scheme
	Signature []byte
	PublicKey []byte
}

func (a *Acknowledgment) IsEmpty() bool {
	return a == nil || len(a.Signature) == 0
}

// ToSignature builds the typed signature. The scheme and public key fall back
// to the given defaults when the PSM left them out.
func (a *Acknowledgment) ToSignature(defaultScheme primitives.Scheme, defaultPublicKey []byte) (primitives.Signature, error) {
	scheme := a.Scheme
	if scheme == "" {
		scheme = defaultScheme
	}
	publicKey := a.PublicKey
	if len(publicKey) == 0 {
		publicKey = defaultPublicKey
	}
	switch scheme {
	case primitives.SchemeFalcon:
		return primitives.NewFalconSignature(a.Signature), nil
	case primitives.SchemeEcdsa:
		return primitives.NewEcdsaSignature(a.Signature, publicKey), nil
	}
	return nil, fmt.Errorf("%w: %q", primitives.ErrUnknownScheme, scheme)
}
