package proposal_fsm

import (
	"errors"
	"fmt"

	"github.com/qash-finance/qash-sub002/fsm/fsm"
	"github.com/qash-finance/qash-sub002/fsm/state_machines/internal"
	"github.com/qash-finance/qash-sub002/fsm/types/requests"
	"github.com/qash-finance/qash-sub002/primitives"
)

func (m *ProposalFSM) actionInitProposal(inEvent fsm.Event, args ...interface{}) (outEvent fsm.Event, response interface{}, err error) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	if len(args) != 1 {
		err = errors.New("{arg0} required {ProposalInitRequest}")
		return
	}

	request, ok := args[0].(requests.ProposalInitRequest)

	if !ok {
		err = errors.New("cannot cast {arg0} to type {ProposalInitRequest}")
		return
	}

	if err = request.Validate(); err != nil {
		return
	}

	quorum := make(internal.ProposalQuorum, len(request.SignerCommitments))
	signers := make([]string, 0, len(request.SignerCommitments))
	for index, c := range request.SignerCommitments {
		commitment := primitives.MustNormalizeHex(c)
		if _, exists := quorum[commitment]; exists {
			err = fmt.Errorf("{SignerCommitments} contains duplicate %s", commitment)
			return
		}
		quorum[commitment] = &internal.ProposalSigner{
			Commitment:    commitment,
			ApproverIndex: index,
			Status:        internal.SignerAwaitSignature,
			UpdatedAt:     request.CreatedAt,
		}
		signers = append(signers, commitment)
	}

	m.payload = &internal.ProposalPayload{
		AccountID:         request.AccountID,
		ProposalType:      request.ProposalType,
		SummaryCommitment: primitives.MustNormalizeHex(request.SummaryCommitment),
		Summary:           append([]byte(nil), request.Summary...),
		Threshold:         request.Threshold,
		SignerCommitments: signers,
		Quorum:            quorum,
		Scheme:            request.Scheme,
		Recipients:        request.Recipients,
		Description:       request.Description,
		CreatedAt:         request.CreatedAt,
		UpdatedAt:         request.CreatedAt,
	}

	return
}

func (m *ProposalFSM) actionSignatureReceived(inEvent fsm.Event, args ...interface{}) (outEvent fsm.Event, response interface{}, err error) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	if len(args) != 1 {
		err = errors.New("{arg0} required {ProposalSignatureRequest}")
		return
	}

	request, ok := args[0].(requests.ProposalSignatureRequest)

	if !ok {
		err = errors.New("cannot cast {arg0} to type {ProposalSignatureRequest}")
		return
	}

	if err = request.Validate(); err != nil {
		return
	}

	commitment := primitives.MustNormalizeHex(request.SignerCommitment)

	if !m.payload.QuorumExists(commitment) {
		err = fmt.Errorf("{SignerCommitment} %s is not a registered signer", commitment)
		return
	}

	if request.ApproverIndex != requests.NoApproverIndex {
		if request.ApproverIndex >= len(m.payload.SignerCommitments) {
			err = fmt.Errorf("{ApproverIndex} %d is out of range", request.ApproverIndex)
			return
		}
		if m.payload.SignerCommitments[request.ApproverIndex] != commitment {
			err = fmt.Errorf("{ApproverIndex} %d does not belong to signer %s", request.ApproverIndex, commitment)
			return
		}
	}

	signer := m.payload.QuorumGet(commitment)

	if signer.Status == internal.SignerRejected {
		err = fmt.Errorf("cannot sign with {Status} = {\"%s\"}", signer.Status)
		return
	}

	if err = m.verifySignature(commitment, request); err != nil {
		return
	}

	// A repeated signature replaces the previous one, the count is unchanged
	signer.Status = internal.SignerSigned
	signer.Scheme = request.Scheme
	signer.Signature = append([]byte(nil), request.Signature...)
	signer.PublicKey = append([]byte(nil), request.PublicKey...)
	signer.UpdatedAt = request.CreatedAt
	m.payload.UpdatedAt = request.CreatedAt

	outEvent = m.thresholdEvent()
	response = m.payload.SignaturesCount()

	return
}

func (m *ProposalFSM) actionRejectionReceived(inEvent fsm.Event, args ...interface{}) (outEvent fsm.Event, response interface{}, err error) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	if len(args) != 1 {
		err = errors.New("{arg0} required {ProposalRejectionRequest}")
		return
	}

	request, ok := args[0].(requests.ProposalRejectionRequest)

	if !ok {
		err = errors.New("cannot cast {arg0} to type {ProposalRejectionRequest}")
		return
	}

	if err = request.Validate(); err != nil {
		return
	}

	commitment := primitives.MustNormalizeHex(request.SignerCommitment)

	if !m.payload.QuorumExists(commitment) {
		err = fmt.Errorf("{SignerCommitment} %s is not a registered signer", commitment)
		return
	}

	signer := m.payload.QuorumGet(commitment)

	switch signer.Status {
	case internal.SignerAwaitSignature:
		signer.Status = internal.SignerRejected
	case internal.SignerRejected:
		// already rejected
	default:
		err = fmt.Errorf("cannot reject with {Status} = {\"%s\"}", signer.Status)
		return
	}

	signer.Reason = request.Reason
	signer.UpdatedAt = request.CreatedAt
	m.payload.UpdatedAt = request.CreatedAt

	if m.payload.ThresholdUnreachable() {
		m.payload.Reason = "threshold is unreachable"
		outEvent = eventSetRejectedInternal
		return
	}

	outEvent = m.thresholdEvent()

	return
}

func (m *ProposalFSM) actionCloseProposal(inEvent fsm.Event, args ...interface{}) (outEvent fsm.Event, response interface{}, err error) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	if len(args) != 1 {
		err = errors.New("{arg0} required {ProposalCloseRequest}")
		return
	}

	request, ok := args[0].(requests.ProposalCloseRequest)

	if !ok {
		err = errors.New("cannot cast {arg0} to type {ProposalCloseRequest}")
		return
	}

	if err = request.Validate(); err != nil {
		return
	}

	m.payload.Reason = request.Reason
	m.payload.UpdatedAt = request.CreatedAt

	return
}

func (m *ProposalFSM) actionExecutionSucceeded(inEvent fsm.Event, args ...interface{}) (outEvent fsm.Event, response interface{}, err error) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	request, err := m.executionRequest(args...)
	if err != nil {
		return
	}

	if request.TransactionID == "" {
		err = errors.New("{TransactionID} cannot be empty")
		return
	}

	if !m.payload.ThresholdReached() {
		err = fmt.Errorf("signatures %d below threshold %d", m.payload.SignaturesCount(), m.payload.Threshold)
		return
	}

	m.payload.TransactionID = request.TransactionID
	m.payload.UpdatedAt = request.CreatedAt

	return
}

func (m *ProposalFSM) actionExecutionFailed(inEvent fsm.Event, args ...interface{}) (outEvent fsm.Event, response interface{}, err error) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	request, err := m.executionRequest(args...)
	if err != nil {
		return
	}

	m.payload.Error = request.Error
	m.payload.UpdatedAt = request.CreatedAt

	return
}

func (m *ProposalFSM) executionRequest(args ...interface{}) (requests.ProposalExecutionRequest, error) {
	if len(args) != 1 {
		return requests.ProposalExecutionRequest{}, errors.New("{arg0} required {ProposalExecutionRequest}")
	}

	request, ok := args[0].(requests.ProposalExecutionRequest)

	if !ok {
		return request, errors.New("cannot cast {arg0} to type {ProposalExecutionRequest}")
	}

	return request, request.Validate()
}

func (m *ProposalFSM) thresholdEvent() fsm.Event {
	if m.payload.ThresholdReached() {
		return eventThresholdReachedInternal
	}
	return eventThresholdLostInternal
}

// verifySignature checks an ECDSA signature against the summary commitment and
// the signer's commitment. Falcon signatures are left to the auth procedure.
func (m *ProposalFSM) verifySignature(commitment string, request requests.ProposalSignatureRequest) error {
	if m.payload.Scheme != "" && request.Scheme != m.payload.Scheme {
		return fmt.Errorf("{Scheme} %q does not match proposal scheme %q", request.Scheme, m.payload.Scheme)
	}
	if request.Scheme != primitives.SchemeEcdsa {
		return nil
	}

	if len(request.Signature) != primitives.EcdsaSignatureLen {
		return fmt.Errorf("{Signature} must be %d bytes, got %d", primitives.EcdsaSignatureLen, len(request.Signature))
	}
	derived, ok := primitives.DeriveEcdsaCommitment(m.hasher, request.PublicKey)
	if !ok {
		return errors.New("{PublicKey} is not a secp256k1 key")
	}
	if !primitives.EqualHex(derived.Hex(), commitment) {
		return fmt.Errorf("{PublicKey} derives %s, not signer %s", derived.Hex(), commitment)
	}
	message, err := primitives.WordFromHex(m.payload.SummaryCommitment)
	if err != nil {
		return fmt.Errorf("{SummaryCommitment} is not a word: %w", err)
	}
	if !primitives.VerifyEcdsa(request.PublicKey, message, request.Signature) {
		return errors.New("{Signature} does not verify against the summary commitment")
	}
	return nil
}
