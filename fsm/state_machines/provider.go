package state_machines

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qash-finance/qash-sub002/fsm/fsm"
	"github.com/qash-finance/qash-sub002/fsm/state_machines/internal"
	"github.com/qash-finance/qash-sub002/fsm/state_machines/proposal_fsm"
	"github.com/qash-finance/qash-sub002/fsm/types"
	"github.com/qash-finance/qash-sub002/primitives"
)

// FSMDump is the persisted form of a proposal machine.
type FSMDump struct {
	ID      string
	State   fsm.State
	Payload *internal.ProposalPayload
}

type ProposalInstance struct {
	machine *proposal_fsm.ProposalFSM
	dump    *FSMDump
}

// Create returns a new machine in the idle state, its ID is the summary commitment.
func Create(id string) (*ProposalInstance, error) {
	normalized, err := primitives.NormalizeHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid proposal id: %w", err)
	}
	i := &ProposalInstance{
		machine: proposal_fsm.New(),
	}
	i.InitDump(normalized)
	return i, nil
}

// FromDump restores a machine from its dump.
func FromDump(data []byte) (*ProposalInstance, error) {
	if len(data) == 0 {
		return nil, errors.New("machine dump is empty")
	}

	i := &ProposalInstance{
		dump: &FSMDump{},
	}

	if err := i.dump.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("cannot read machine dump: %w", err)
	}

	machine, err := proposal_fsm.New().WithSetup(i.dump.State, i.dump.Payload)
	if err != nil {
		return nil, err
	}
	i.machine = machine
	i.dump.State = machine.State()
	i.dump.Payload = machine.Payload()

	return i, nil
}

func (i *ProposalInstance) Do(event fsm.Event, args ...interface{}) (*fsm.Response, []byte, error) {
	result, err := i.machine.Do(event, args...)

	i.dump.State = i.machine.State()
	i.dump.Payload = i.machine.Payload()

	dump, dumpErr := i.dump.Marshal()
	if err == nil && dumpErr != nil {
		err = fmt.Errorf("failed to marshal machine dump: %w", dumpErr)
	}

	return result, dump, err
}

func (i *ProposalInstance) InitDump(id string) {
	if i.dump == nil {
		i.dump = &FSMDump{
			ID:      id,
			State:   i.machine.State(),
			Payload: i.machine.Payload(),
		}
	}
}

func (i *ProposalInstance) ID() string {
	return i.dump.ID
}

func (i *ProposalInstance) State() fsm.State {
	return i.machine.State()
}

func (i *ProposalInstance) IsFinished() bool {
	return i.machine.IsFinState(i.machine.State())
}

func (i *ProposalInstance) Dump() ([]byte, error) {
	return i.dump.Marshal()
}

// Proposal builds the read view of the machine.
func (i *ProposalInstance) Proposal() types.Proposal {
	payload := i.machine.Payload()

	p := types.Proposal{
		ID:                i.dump.ID,
		AccountID:         payload.AccountID,
		Type:              payload.ProposalType,
		Status:            proposal_fsm.Status(i.machine.State()),
		SummaryCommitment: payload.SummaryCommitment,
		Summary:           payload.Summary,
		Threshold:         payload.Threshold,
		SignerCommitments: payload.SignerCommitments,
		Recipients:        payload.Recipients,
		Description:       payload.Description,
		TransactionID:     payload.TransactionID,
		Error:             payload.Error,
		CreatedAt:         payload.CreatedAt,
		UpdatedAt:         payload.UpdatedAt,
	}

	for _, signer := range payload.OrderedSigners() {
		switch signer.Status {
		case internal.SignerSigned:
			p.Signatures = append(p.Signatures, types.ProposalSignature{
				SignerCommitment: signer.Commitment,
				ApproverIndex:    signer.ApproverIndex,
				Scheme:           signer.Scheme,
				Signature:        signer.Signature,
				PublicKey:        signer.PublicKey,
				CreatedAt:        signer.UpdatedAt,
			})
		case internal.SignerRejected:
			p.Rejections = append(p.Rejections, types.ProposalRejection{
				SignerCommitment: signer.Commitment,
				Reason:           signer.Reason,
				CreatedAt:        signer.UpdatedAt,
			})
		}
	}

	return p
}

func (d *FSMDump) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

func (d *FSMDump) Unmarshal(data []byte) error {
	return json.Unmarshal(data, d)
}
