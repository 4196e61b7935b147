package state

import (
	"fmt"
	"github.com/shimmeringbee/panel/equipment"
	"time"
)

type reconcileError string

func (r reconcileError) Error() string {
	return string(r)
}

const UnknownEquipment = reconcileError("unknown equipment")
const GatewayOffline = reconcileError("gateway is offline")
const EquipmentUnreachable = reconcileError("equipment is unreachable")
const UnknownTopic = reconcileError("message on unknown topic")
const MalformedPayload = reconcileError("malformed status payload")
const UnknownEvent = reconcileError("unknown event")
const EngineStopped = reconcileError("engine stopped")

// OnlineToken is the only gateway status payload treated as online.
const OnlineToken = "online"

const DefaultGatewayStatusTopic = "zigbee2mqtt/bridge/state"

type EquipmentState struct {
	equipment.Equipment

	Power     equipment.PowerState
	Reachable bool
	LastSeen  time.Time
}

type State struct {
	TransportConnected bool
	GatewayOnline      bool
	Equipment          map[string]EquipmentState
}

func (s State) clone() State {
	c := s
	c.Equipment = make(map[string]EquipmentState, len(s.Equipment))

	for id, e := range s.Equipment {
		c.Equipment[id] = e
	}

	return c
}

type Transition struct {
	State         State
	Effects       []Effect
	Notifications []any
	Err           error
}

type Reconciler struct {
	Registry           *equipment.Registry
	GatewayStatusTopic string
	StaleAfter         time.Duration
}

func (r Reconciler) Initial() State {
	s := State{Equipment: make(map[string]EquipmentState, r.Registry.Len())}

	for _, e := range r.Registry.All() {
		s.Equipment[e.Identifier] = EquipmentState{Equipment: e, Power: equipment.Off}
	}

	return s
}

// Reduce applies a single event to the current state, the input state is never modified.
func (r Reconciler) Reduce(current State, event any) Transition {
	t := Transition{State: current.clone()}

	switch e := event.(type) {
	case Connected:
		r.connected(&t)
	case Disconnected:
		r.disconnected(&t, e)
	case Message:
		r.message(&t, e)
	case TransportError:
		t.Notifications = append(t.Notifications, TransportErrored{Reason: errorReason(e.Err)})
	case CommandRequested:
		r.command(&t, e)
	case Tick:
		r.tick(&t, e)
	default:
		t.Err = fmt.Errorf("%w: %T", UnknownEvent, event)
	}

	return t
}

func (r Reconciler) equipmentState(s State, e equipment.Equipment) EquipmentState {
	if es, found := s.Equipment[e.Identifier]; found {
		es.Equipment = e
		return es
	}

	return EquipmentState{Equipment: e, Power: equipment.Off}
}

func (r Reconciler) connected(t *Transition) {
	t.State.TransportConnected = true

	for _, topic := range r.Registry.Topics(r.GatewayStatusTopic).Subscriptions() {
		t.Effects = append(t.Effects, Subscribe{Topic: topic})
	}

	t.Notifications = append(t.Notifications, TransportConnected{})
}

func (r Reconciler) disconnected(t *Transition, e Disconnected) {
	t.State.TransportConnected = false
	t.Notifications = append(t.Notifications, TransportDisconnected{Reason: errorReason(e.Err)})

	if t.State.GatewayOnline {
		t.State.GatewayOnline = false
		t.Notifications = append(t.Notifications, GatewayStatusUpdate{Online: false})
	}
}

func (r Reconciler) message(t *Transition, m Message) {
	if m.Topic == r.GatewayStatusTopic {
		online := string(m.Payload) == OnlineToken

		if online != t.State.GatewayOnline {
			t.Notifications = append(t.Notifications, GatewayStatusUpdate{Online: online})
		}

		t.State.GatewayOnline = online
		return
	}

	e, found := r.Registry.ByStatusTopic(m.Topic)
	if !found {
		t.Err = fmt.Errorf("%w: %s", UnknownTopic, m.Topic)
		return
	}

	power, err := equipment.ParsePowerState(string(m.Payload))
	if err != nil {
		t.Err = fmt.Errorf("%w: %s: %w", MalformedPayload, m.Topic, err)
		return
	}

	es := r.equipmentState(t.State, e)
	es.Power = power
	es.Reachable = true
	es.LastSeen = m.At

	t.State.Equipment[e.Identifier] = es
	t.Notifications = append(t.Notifications, EquipmentUpdate{Equipment: es})
}

func (r Reconciler) command(t *Transition, c CommandRequested) {
	e, found := r.Registry.Equipment(c.Identifier)
	if !found {
		t.Err = fmt.Errorf("%w: %s", UnknownEquipment, c.Identifier)
		return
	}

	es := r.equipmentState(t.State, e)

	switch {
	case !t.State.GatewayOnline:
		t.Err = GatewayOffline
	case !es.Reachable:
		t.Err = EquipmentUnreachable
	}

	if t.Err != nil {
		t.Notifications = append(t.Notifications, CommandRejected{Identifier: c.Identifier, Desired: c.Desired, Correlation: c.Correlation, Reason: t.Err.Error()})
		return
	}

	es.Power = c.Desired
	t.State.Equipment[e.Identifier] = es

	t.Effects = append(t.Effects, Publish{Topic: e.CommandTopic, Payload: c.Desired.Payload()})
	t.Notifications = append(t.Notifications,
		CommandPublished{Identifier: c.Identifier, Desired: c.Desired, Correlation: c.Correlation},
		EquipmentUpdate{Equipment: es})
}

func (r Reconciler) tick(t *Transition, tk Tick) {
	if r.StaleAfter <= 0 {
		return
	}

	for _, e := range r.Registry.All() {
		es := r.equipmentState(t.State, e)

		if es.Reachable && tk.Now.Sub(es.LastSeen) > r.StaleAfter {
			es.Reachable = false
			t.State.Equipment[e.Identifier] = es
			t.Notifications = append(t.Notifications, EquipmentUpdate{Equipment: es})
		}
	}
}

// Snapshot orders equipment as configured.
func (r Reconciler) Snapshot(s State) Snapshot {
	snap := Snapshot{
		TransportConnected: s.TransportConnected,
		GatewayOnline:      s.GatewayOnline,
		Equipment:          make([]EquipmentState, 0, r.Registry.Len()),
	}

	for _, e := range r.Registry.All() {
		snap.Equipment = append(snap.Equipment, r.equipmentState(s, e))
	}

	return snap
}

type Snapshot struct {
	TransportConnected bool
	GatewayOnline      bool
	Equipment          []EquipmentState
}

func (s Snapshot) Find(id string) (EquipmentState, bool) {
	for _, e := range s.Equipment {
		if e.Identifier == id {
			return e, true
		}
	}

	return EquipmentState{}, false
}

func errorReason(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
