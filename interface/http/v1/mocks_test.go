package v1

import (
	"context"
	"github.com/shimmeringbee/panel/equipment"
	"github.com/shimmeringbee/panel/state"
	"github.com/stretchr/testify/mock"
)

var _ Controller = (*mockController)(nil)

type mockController struct {
	mock.Mock
}

func (m *mockController) Snapshot(ctx context.Context) (state.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(state.Snapshot), args.Error(1)
}

func (m *mockController) RequestPower(ctx context.Context, id string, desired equipment.PowerState) (state.EquipmentState, error) {
	args := m.Called(ctx, id, desired)
	return args.Get(0).(state.EquipmentState), args.Error(1)
}
