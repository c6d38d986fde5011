package proposal_fsm

import (
	"sync"

	"github.com/qash-finance/qash-sub002/fsm/fsm"
	"github.com/qash-finance/qash-sub002/fsm/state_machines/internal"
	"github.com/qash-finance/qash-sub002/fsm/types"
	"github.com/qash-finance/qash-sub002/primitives"
)

const (
	FsmName = "proposal_fsm"

	StateProposalIdle = fsm.State("state_proposal_idle")

	// Collecting signatures
	StateProposalPending = fsm.State("state_proposal_pending")
	StateProposalReady   = fsm.State("state_proposal_ready")

	// Final
	StateProposalExecuted  = fsm.State("state_proposal_executed")
	StateProposalFailed    = fsm.State("state_proposal_failed")
	StateProposalCancelled = fsm.State("state_proposal_cancelled")
	StateProposalRejected  = fsm.State("state_proposal_rejected")

	// Events

	EventProposalInit       = fsm.Event("event_proposal_init")
	EventSignatureReceived  = fsm.Event("event_signature_received")
	EventRejectionReceived  = fsm.Event("event_rejection_received")
	EventExecutionSucceeded = fsm.Event("event_execution_succeeded")
	EventExecutionFailed    = fsm.Event("event_execution_failed")
	EventProposalCancelled  = fsm.Event("event_proposal_cancelled")
	EventProposalRejected   = fsm.Event("event_proposal_rejected")

	eventThresholdReachedInternal = fsm.Event("event_threshold_reached")
	eventThresholdLostInternal    = fsm.Event("event_threshold_lost")
	eventSetRejectedInternal      = fsm.Event("event_proposal_set_rejected")
)

var collectingStates = []fsm.State{StateProposalPending, StateProposalReady}

type ProposalFSM struct {
	*fsm.FSM
	payload   *internal.ProposalPayload
	payloadMu sync.RWMutex
	hasher    primitives.Hasher
}

func New() *ProposalFSM {
	machine := &ProposalFSM{
		payload: &internal.ProposalPayload{},
		hasher:  primitives.NewBlake2bHasher(),
	}

	machine.FSM = fsm.MustNewFSM(
		FsmName,
		StateProposalIdle,
		[]fsm.EventDesc{
			// Init
			{Name: EventProposalInit, SrcState: []fsm.State{StateProposalIdle}, DstState: StateProposalPending},

			// Signatures and rejections, the callbacks pick the resulting state
			{Name: EventSignatureReceived, SrcState: collectingStates, DstState: StateProposalPending},
			{Name: EventRejectionReceived, SrcState: collectingStates, DstState: StateProposalPending},
			{Name: eventThresholdReachedInternal, SrcState: collectingStates, DstState: StateProposalReady, IsInternal: true},
			{Name: eventThresholdLostInternal, SrcState: collectingStates, DstState: StateProposalPending, IsInternal: true},
			{Name: eventSetRejectedInternal, SrcState: collectingStates, DstState: StateProposalRejected, IsInternal: true},

			// Closed without execution
			{Name: EventProposalCancelled, SrcState: collectingStates, DstState: StateProposalCancelled},
			{Name: EventProposalRejected, SrcState: collectingStates, DstState: StateProposalRejected},

			// Execution result
			{Name: EventExecutionSucceeded, SrcState: []fsm.State{StateProposalReady}, DstState: StateProposalExecuted},
			{Name: EventExecutionFailed, SrcState: []fsm.State{StateProposalReady}, DstState: StateProposalFailed},
		},
		fsm.Callbacks{
			EventProposalInit:       machine.actionInitProposal,
			EventSignatureReceived:  machine.actionSignatureReceived,
			EventRejectionReceived:  machine.actionRejectionReceived,
			EventProposalCancelled:  machine.actionCloseProposal,
			EventProposalRejected:   machine.actionCloseProposal,
			EventExecutionSucceeded: machine.actionExecutionSucceeded,
			EventExecutionFailed:    machine.actionExecutionFailed,
		},
	)

	return machine
}

// WithSetup restores the machine from a dump. While signatures are being
// collected the state is derived from the payload rather than trusted.
func (m *ProposalFSM) WithSetup(state fsm.State, payload *internal.ProposalPayload) (*ProposalFSM, error) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	if payload == nil {
		payload = &internal.ProposalPayload{}
	}
	m.payload = payload

	if state == StateProposalPending || state == StateProposalReady {
		state = StateProposalPending
		if m.payload.ThresholdReached() {
			state = StateProposalReady
		}
	}

	machine, err := m.FSM.CopyWithState(state)
	if err != nil {
		return nil, err
	}
	m.FSM = machine
	return m, nil
}

func (m *ProposalFSM) Payload() *internal.ProposalPayload {
	m.payloadMu.RLock()
	defer m.payloadMu.RUnlock()
	return m.payload
}

// Status maps the machine state to the proposal status.
func Status(state fsm.State) types.ProposalStatus {
	switch state {
	case StateProposalReady:
		return types.ProposalStatusReady
	case StateProposalExecuted:
		return types.ProposalStatusExecuted
	case StateProposalFailed:
		return types.ProposalStatusFailed
	case StateProposalCancelled:
		return types.ProposalStatusCancelled
	case StateProposalRejected:
		return types.ProposalStatusRejected
	}
	return types.ProposalStatusPending
}
