package types

import (
	"time"

	"github.com/qash-finance/qash-sub002/batch"
	"github.com/qash-finance/qash-sub002/primitives"
)

type ProposalType string

const (
	ProposalTypeSend    ProposalType = "SEND"
	ProposalTypeConsume ProposalType = "CONSUME"
)

type ProposalStatus string

const (
	ProposalStatusPending   ProposalStatus = "PENDING"
	ProposalStatusReady     ProposalStatus = "READY"
	ProposalStatusExecuted  ProposalStatus = "EXECUTED"
	ProposalStatusFailed    ProposalStatus = "FAILED"
	ProposalStatusCancelled ProposalStatus = "CANCELLED"
	ProposalStatusRejected  ProposalStatus = "REJECTED"
)

func (s ProposalStatus) IsTerminal() bool {
	switch s {
	case ProposalStatusExecuted, ProposalStatusFailed, ProposalStatusCancelled, ProposalStatusRejected:
		return true
	}
	return false
}

// ThresholdPolicy holds the base threshold of an account and optional
// per-proposal-type overrides.
type ThresholdPolicy struct {
	Base    int                  `json:"base" mapstructure:"base"`
	PerType map[ProposalType]int `json:"per_type,omitempty" mapstructure:"per_type"`
}

// EffectiveThreshold returns the override for t clamped to [1, Base], or Base
// when there is none.
func (p ThresholdPolicy) EffectiveThreshold(t ProposalType) int {
	override, ok := p.PerType[t]
	if !ok || p.Base < 1 {
		return p.Base
	}
	if override < 1 {
		return 1
	}
	if override > p.Base {
		return p.Base
	}
	return override
}

type ProposalSignature struct {
	SignerCommitment string
	ApproverIndex    int
	Scheme           primitives.Scheme
	Signature        []byte
	PublicKey        []byte
	CreatedAt        time.Time
}

// ToSignature rebuilds the typed signature.
func (s ProposalSignature) ToSignature() (primitives.Signature, error) {
	switch s.Scheme {
	case primitives.SchemeFalcon:
		return primitives.NewFalconSignature(s.Signature), nil
	case primitives.SchemeEcdsa:
		return primitives.NewEcdsaSignature(s.Signature, s.PublicKey), nil
	}
	return nil, primitives.ErrUnknownScheme
}

type ProposalRejection struct {
	SignerCommitment string
	Reason           string
	CreatedAt        time.Time
}

// Proposal is a read view of a proposal machine.
type Proposal struct {
	ID                string
	AccountID         string
	Type              ProposalType
	Status            ProposalStatus
	SummaryCommitment string
	Summary           []byte
	Threshold         int
	SignerCommitments []string
	Signatures        []ProposalSignature
	Rejections        []ProposalRejection
	Recipients        []batch.Recipient
	Description       string
	TransactionID     string
	Error             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (p *Proposal) SignatureCount() int {
	return len(p.Signatures)
}
