package v1

import (
	"context"
	"github.com/shimmeringbee/panel/equipment"
	"github.com/shimmeringbee/panel/state"
)

type Controller interface {
	Snapshot(context.Context) (state.Snapshot, error)
	RequestPower(context.Context, string, equipment.PowerState) (state.EquipmentState, error)
}

var _ Controller = (*state.Engine)(nil)
