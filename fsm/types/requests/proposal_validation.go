package requests

import (
	"errors"
	"fmt"

	"github.com/qash-finance/qash-sub002/fsm/config"
	"github.com/qash-finance/qash-sub002/fsm/types"
	"github.com/qash-finance/qash-sub002/primitives"
)

func (r *ProposalInitRequest) Validate() error {
	if r.AccountID == "" {
		return errors.New("{AccountID} cannot be empty")
	}

	if r.ProposalType != types.ProposalTypeSend && r.ProposalType != types.ProposalTypeConsume {
		return fmt.Errorf("{ProposalType} %q is not supported", r.ProposalType)
	}

	if _, err := primitives.NormalizeHex(r.SummaryCommitment); err != nil || r.SummaryCommitment == "" {
		return errors.New("{SummaryCommitment} must be a word hex")
	}

	if len(r.Summary) == 0 {
		return errors.New("{Summary} cannot zero length")
	}

	if len(r.SignerCommitments) == 0 {
		return errors.New("{SignerCommitments} cannot be empty")
	}

	if len(r.SignerCommitments) > config.SignersMaxCount {
		return fmt.Errorf("{SignerCommitments} cannot exceed %d", config.SignersMaxCount)
	}

	for _, c := range r.SignerCommitments {
		if _, err := primitives.NormalizeHex(c); err != nil {
			return fmt.Errorf("{SignerCommitments} contains invalid commitment %q", c)
		}
	}

	if r.Threshold < 1 {
		return errors.New("{Threshold} must be positive")
	}

	if r.Threshold > len(r.SignerCommitments) {
		return errors.New("{Threshold} cannot exceed signers count")
	}

	if r.Scheme != "" && r.Scheme != primitives.SchemeFalcon && r.Scheme != primitives.SchemeEcdsa {
		return fmt.Errorf("{Scheme} %q is not supported", r.Scheme)
	}

	if len(r.Description) > config.DescriptionMaxLength {
		return fmt.Errorf("{Description} cannot exceed %d chars", config.DescriptionMaxLength)
	}

	if r.CreatedAt.IsZero() {
		return errors.New("{CreatedAt} is not set")
	}

	return nil
}

func (r *ProposalSignatureRequest) Validate() error {
	if _, err := primitives.NormalizeHex(r.SignerCommitment); err != nil || r.SignerCommitment == "" {
		return errors.New("{SignerCommitment} must be a word hex")
	}

	if r.ApproverIndex < NoApproverIndex {
		return errors.New("{ApproverIndex} cannot be a negative number")
	}

	if r.Scheme != primitives.SchemeFalcon && r.Scheme != primitives.SchemeEcdsa {
		return fmt.Errorf("{Scheme} %q is not supported", r.Scheme)
	}

	if len(r.Signature) == 0 {
		return errors.New("{Signature} cannot zero length")
	}

	if r.Scheme == primitives.SchemeEcdsa && len(r.PublicKey) == 0 {
		return errors.New("{PublicKey} is required for ecdsa signatures")
	}

	if r.CreatedAt.IsZero() {
		return errors.New("{CreatedAt} is not set")
	}

	return nil
}

func (r *ProposalRejectionRequest) Validate() error {
	if _, err := primitives.NormalizeHex(r.SignerCommitment); err != nil || r.SignerCommitment == "" {
		return errors.New("{SignerCommitment} must be a word hex")
	}

	if r.CreatedAt.IsZero() {
		return errors.New("{CreatedAt} is not set")
	}

	return nil
}

func (r *ProposalCloseRequest) Validate() error {
	if r.CreatedAt.IsZero() {
		return errors.New("{CreatedAt} is not set")
	}

	return nil
}

func (r *ProposalExecutionRequest) Validate() error {
	if r.TransactionID == "" && r.Error == "" {
		return errors.New("{TransactionID} or {Error} must be set")
	}

	if r.CreatedAt.IsZero() {
		return errors.New("{CreatedAt} is not set")
	}

	return nil
}
