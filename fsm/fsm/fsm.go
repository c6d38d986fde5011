package fsm

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

//
//  machine := fsm.MustNewFSM(name, initialState, events, callbacks)
//
//  resp, err := machine.Do(event, request)
//  if err != nil {
//     return err
//  }
//

type State string

func (s State) String() string {
	return string(s)
}

type Event string

func (e Event) String() string {
	return string(e)
}

func (e Event) IsEmpty() bool {
	return e == ""
}

// Response returns result for processing with events
type Response struct {
	// Returns machine execution result state
	State State
	// Must be cast, according to mapper event_name->response_type
	Data interface{}
}

type FSM struct {
	name         string
	initialState State
	currentState State

	transitions map[trKey]*trEvent

	callbacks Callbacks

	// Finish states, cannot be linked as SrcState in this machine
	finStates map[State]bool

	// stateMu guards access to the currentState state.
	stateMu sync.RWMutex
	// eventMu serializes Do and DoInternal.
	eventMu sync.Mutex
}

// Transition key source + event
type trKey struct {
	source State
	event  Event
}

// Transition lightweight event description
type trEvent struct {
	event      Event
	dstState   State
	isInternal bool
}

type EventDesc struct {
	Name Event

	SrcState []State

	// Dst state changes after callback
	DstState State

	// Internal events, cannot be emitted from external call
	IsInternal bool
}

// Callback may return another event as outEvent, the machine then moves
// along the transition of that event from the current state.
type Callback func(event Event, args ...interface{}) (Event, interface{}, error)

type Callbacks map[Event]Callback

func MustNewFSM(machineName string, initialState State, events []EventDesc, callbacks Callbacks) *FSM {
	machineName = strings.TrimSpace(machineName)
	initialState = State(strings.TrimSpace(initialState.String()))

	if machineName == "" {
		panic("machine name cannot be empty")
	}

	if initialState == "" {
		panic("initial state cannot be empty")
	}

	if len(events) == 0 {
		panic("cannot init fsm with empty events")
	}

	f := &FSM{
		name:         machineName,
		currentState: initialState,
		initialState: initialState,
		transitions:  make(map[trKey]*trEvent),
		finStates:    make(map[State]bool),
		callbacks:    make(map[Event]Callback),
	}

	allEvents := make(map[Event]bool)

	// Required for find finStates
	allSources := make(map[State]bool)
	allStates := make(map[State]bool)

	for _, event := range events {
		event.Name = Event(strings.TrimSpace(event.Name.String()))
		event.DstState = State(strings.TrimSpace(event.DstState.String()))

		if event.Name == "" {
			panic("cannot init empty event")
		}

		if event.DstState == "" {
			panic("event dest cannot be empty")
		}

		if _, ok := allEvents[event.Name]; ok {
			panic(fmt.Sprintf("duplicate event \"%s\"", event.Name))
		}

		allEvents[event.Name] = true
		allStates[event.DstState] = true

		trimmedSourcesCounter := 0

		for _, sourceState := range event.SrcState {
			sourceState := State(strings.TrimSpace(sourceState.String()))

			if sourceState == "" {
				continue
			}

			tKey := trKey{sourceState, event.Name}

			if _, ok := f.transitions[tKey]; ok {
				panic("duplicate dst for pair `source + event`")
			}

			f.transitions[tKey] = &trEvent{
				event:      event.Name,
				dstState:   event.DstState,
				isInternal: event.IsInternal,
			}

			allSources[sourceState] = true
			allStates[sourceState] = true
			trimmedSourcesCounter++
		}

		if trimmedSourcesCounter == 0 {
			panic("event must have minimum one source available state")
		}
	}

	if len(allStates) < 2 {
		panic("machine must contain at least two states")
	}

	for event, callback := range callbacks {
		if event == "" {
			panic("callback event cannot be empty")
		}

		if _, ok := allEvents[event]; !ok {
			panic(fmt.Sprintf("callback for unknown event \"%s\"", event))
		}

		f.callbacks[event] = callback
	}

	for state := range allStates {
		// Exit states cannot be a source in this machine
		if _, exists := allSources[state]; !exists {
			f.finStates[state] = true
		}
	}

	if len(f.finStates) == 0 {
		panic("cannot initialize machine without final states")
	}

	return f
}

func (f *FSM) DoInternal(event Event, args ...interface{}) (resp *Response, err error) {
	f.eventMu.Lock()
	defer f.eventMu.Unlock()

	trEvent, ok := f.transitions[trKey{f.State(), event}]
	if !ok {
		return nil, fmt.Errorf("cannot execute event \"%s\" for state \"%s\"", event, f.State())
	}

	return f.do(trEvent, args...)
}

func (f *FSM) Do(event Event, args ...interface{}) (resp *Response, err error) {
	f.eventMu.Lock()
	defer f.eventMu.Unlock()

	trEvent, ok := f.transitions[trKey{f.State(), event}]
	if !ok {
		return nil, fmt.Errorf("cannot execute event \"%s\" for state \"%s\"", event, f.State())
	}
	if trEvent.isInternal {
		return nil, fmt.Errorf("event \"%s\" is internal", event)
	}

	return f.do(trEvent, args...)
}

func (f *FSM) do(trEvent *trEvent, args ...interface{}) (resp *Response, err error) {
	var outEvent Event

	resp = &Response{
		State: f.State(),
	}

	if callback, ok := f.callbacks[trEvent.event]; ok {
		outEvent, resp.Data, err = callback(trEvent.event, args...)
		// Do not try change state on error
		if err != nil {
			return resp, err
		}
	}

	// Set state when callback executed
	if outEvent.IsEmpty() || trEvent.event == outEvent {
		err = f.SetState(trEvent.event)
	} else {
		err = f.SetState(outEvent)
	}

	resp.State = f.State()

	return
}

// State returns the currentState state of the FSM.
func (f *FSM) State() State {
	f.stateMu.RLock()
	defer f.stateMu.RUnlock()
	return f.currentState
}

// SetState moves the machine along the transition of event from the current state.
// The call does not trigger any callbacks, if defined.
func (f *FSM) SetState(event Event) error {
	f.stateMu.Lock()
	defer f.stateMu.Unlock()

	trEvent, ok := f.transitions[trKey{f.currentState, event}]
	if !ok {
		return fmt.Errorf("cannot change state \"%s\" with event \"%s\"", f.currentState, event)
	}

	f.currentState = trEvent.dstState

	return nil
}

// CopyWithState returns a machine sharing transitions and callbacks, positioned at state.
func (f *FSM) CopyWithState(state State) (*FSM, error) {
	if !f.HasState(state) {
		return nil, fmt.Errorf("unknown state \"%s\" for machine \"%s\"", state, f.name)
	}
	return &FSM{
		name:         f.name,
		initialState: f.initialState,
		currentState: state,
		transitions:  f.transitions,
		callbacks:    f.callbacks,
		finStates:    f.finStates,
	}, nil
}

func (f *FSM) MustCopyWithState(state State) *FSM {
	machine, err := f.CopyWithState(state)
	if err != nil {
		panic(err)
	}
	return machine
}

func (f *FSM) Name() string {
	return f.name
}

func (f *FSM) InitialState() State {
	return f.initialState
}

// EventsList returns external events, sorted.
func (f *FSM) EventsList() (events []Event) {
	var eventsMap = map[Event]bool{}
	for trKey, trEvent := range f.transitions {
		if !trEvent.isInternal {
			eventsMap[trKey.event] = true
		}
	}

	for event := range eventsMap {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i] < events[j] })

	return
}

// StatesSourcesList returns states having outgoing transitions, sorted.
func (f *FSM) StatesSourcesList() (states []State) {
	var allStates = map[State]bool{}
	for trKey := range f.transitions {
		allStates[trKey.source] = true
	}

	for state := range allStates {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })

	return
}

func (f *FSM) HasState(state State) bool {
	if f.finStates[state] || state == f.initialState {
		return true
	}
	for trKey := range f.transitions {
		if trKey.source == state {
			return true
		}
	}
	return false
}

func (f *FSM) IsFinState(state State) bool {
	_, exists := f.finStates[state]
	return exists
}
