package equipment

import "fmt"

type equipmentError string

func (e equipmentError) Error() string {
	return string(e)
}

const UnknownPowerState = equipmentError("unknown power state")
const DuplicateIdentifier = equipmentError("duplicate equipment identifier")
const DuplicateCommandTopic = equipmentError("duplicate equipment command topic")
const MissingIdentifier = equipmentError("equipment identifier must not be empty")
const MissingCommandTopic = equipmentError("equipment command topic must not be empty")

type Kind string

const (
	KindLight  Kind = "light"
	KindPlug   Kind = "plug"
	KindSwitch Kind = "switch"
	KindFan    Kind = "fan"
	KindHeater Kind = "heater"
	KindOther  Kind = "other"
)

func (k Kind) Known() bool {
	switch k {
	case KindLight, KindPlug, KindSwitch, KindFan, KindHeater, KindOther:
		return true
	default:
		return false
	}
}

// PowerState is binary, a device with no confirmed state is considered Off.
type PowerState bool

const (
	Off PowerState = false
	On  PowerState = true
)

const (
	OnPayload  = "ON"
	OffPayload = "OFF"
)

func (p PowerState) String() string {
	if p {
		return OnPayload
	}

	return OffPayload
}

func (p PowerState) Payload() []byte {
	return []byte(p.String())
}

// ParsePowerState accepts exactly the wire tokens "ON" and "OFF".
func ParsePowerState(s string) (PowerState, error) {
	switch s {
	case OnPayload:
		return On, nil
	case OffPayload:
		return Off, nil
	default:
		return Off, fmt.Errorf("%w: %q", UnknownPowerState, s)
	}
}

func (p PowerState) MarshalText() ([]byte, error) {
	return p.Payload(), nil
}

func (p *PowerState) UnmarshalText(data []byte) error {
	parsed, err := ParsePowerState(string(data))
	if err != nil {
		return err
	}

	*p = parsed
	return nil
}

type Equipment struct {
	Identifier   string
	Name         string
	CommandTopic string
	Kind         Kind
}

const StatusSuffix = "/status"

func (e Equipment) StatusTopic() string {
	return e.CommandTopic + StatusSuffix
}
