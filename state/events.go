package state

import (
	"github.com/shimmeringbee/panel/equipment"
	"time"
)

// Inbound events, each reduced on its own by the Reconciler.

type Connected struct{}

type Disconnected struct {
	Err error
}

type Message struct {
	Topic   string
	Payload []byte
	At      time.Time
}

type TransportError struct {
	Err error
}

type CommandRequested struct {
	Identifier  string
	Desired     equipment.PowerState
	Correlation string
}

// Tick drives reachability expiry when a stale period is configured.
type Tick struct {
	Now time.Time
}

// Notifications published on the event bus after a transition.

type TransportConnected struct{}

type TransportDisconnected struct {
	Reason string `json:",omitempty"`
}

type TransportErrored struct {
	Reason string
}

type GatewayStatusUpdate struct {
	Online bool
}

type EquipmentUpdate struct {
	Equipment EquipmentState
}

type CommandPublished struct {
	Identifier  string
	Desired     equipment.PowerState
	Correlation string
}

type CommandRejected struct {
	Identifier  string
	Desired     equipment.PowerState
	Correlation string
	Reason      string
}

// Effects requested of the transport by a transition.

type Effect interface {
	isEffect()
}

type Subscribe struct {
	Topic string
}

func (Subscribe) isEffect() {}

type Publish struct {
	Topic   string
	Payload []byte
}

func (Publish) isEffect() {}
