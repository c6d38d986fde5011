package internal

import (
	"sort"
	"time"

	"github.com/qash-finance/qash-sub002/batch"
	"github.com/qash-finance/qash-sub002/fsm/types"
	"github.com/qash-finance/qash-sub002/primitives"
)

type SignerStatus uint8

const (
	SignerAwaitSignature SignerStatus = iota
	SignerSigned
	SignerRejected
)

func (s SignerStatus) String() string {
	var str = "undefined"
	switch s {
	case SignerAwaitSignature:
		str = "SignerAwaitSignature"
	case SignerSigned:
		str = "SignerSigned"
	case SignerRejected:
		str = "SignerRejected"
	}
	return str
}

type ProposalSigner struct {
	Commitment    string
	ApproverIndex int
	Status        SignerStatus
	Scheme        primitives.Scheme
	Signature     []byte
	PublicKey     []byte
	Reason        string
	UpdatedAt     time.Time
}

// Keyed by normalized signer commitment
type ProposalQuorum map[string]*ProposalSigner

type ProposalPayload struct {
	AccountID         string
	ProposalType      types.ProposalType
	SummaryCommitment string
	Summary           []byte
	Threshold         int
	// Registered signer commitments in approver index order
	SignerCommitments []string
	Quorum            ProposalQuorum
	Scheme            primitives.Scheme
	Recipients        []batch.Recipient
	Description       string
	TransactionID     string
	Error             string
	Reason            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (p *ProposalPayload) QuorumExists(commitment string) bool {
	_, ok := p.Quorum[commitment]
	return ok
}

func (p *ProposalPayload) QuorumGet(commitment string) *ProposalSigner {
	return p.Quorum[commitment]
}

func (p *ProposalPayload) CountByStatus(status SignerStatus) int {
	count := 0
	for _, signer := range p.Quorum {
		if signer.Status == status {
			count++
		}
	}
	return count
}

func (p *ProposalPayload) SignaturesCount() int {
	return p.CountByStatus(SignerSigned)
}

func (p *ProposalPayload) RejectionsCount() int {
	return p.CountByStatus(SignerRejected)
}

// ThresholdReached reports whether enough distinct signers have signed.
func (p *ProposalPayload) ThresholdReached() bool {
	return p.Threshold > 0 && p.SignaturesCount() >= p.Threshold
}

// ThresholdUnreachable reports whether rejections leave too few signers to reach the threshold.
func (p *ProposalPayload) ThresholdUnreachable() bool {
	return len(p.Quorum)-p.RejectionsCount() < p.Threshold
}

// OrderedSigners returns signers sorted by approver index.
func (p *ProposalPayload) OrderedSigners() []*ProposalSigner {
	signers := make([]*ProposalSigner, 0, len(p.Quorum))
	for _, signer := range p.Quorum {
		signers = append(signers, signer)
	}
	sort.Slice(signers, func(i, j int) bool {
		return signers[i].ApproverIndex < signers[j].ApproverIndex
	})
	return signers
}
