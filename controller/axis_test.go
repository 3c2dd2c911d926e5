package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/calvinmclean/fiberalign"
	"github.com/calvinmclean/fiberalign/driver/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectedAxis(t *testing.T, specs ...sim.DeviceSpec) (*Axis, *sim.Driver) {
	t.Helper()

	drv := sim.New(specs...)
	r := NewRegistry(drv, discard)
	axis := NewAxis(r, fiberalign.StageInput, fiberalign.AxisX)
	_, err := r.Connect(context.Background())
	require.NoError(t, err)
	return axis, drv
}

func TestAxisBind(t *testing.T) {
	axis, _ := connectedAxis(t, sim.DeviceSpec{Serial: "A", Voltage: 12.5})

	require.NoError(t, axis.Bind("A"))
	assert.Equal(t, "A", axis.Serial())
	assert.Equal(t, "12.5", axis.Reading())
	assert.Equal(t, "Input X", axis.String())
}

func TestAxisBindUnknown(t *testing.T) {
	axis, _ := connectedAxis(t, sim.DeviceSpec{Serial: "A"})
	require.NoError(t, axis.Bind("A"))

	err := axis.Bind("Z")
	assert.ErrorIs(t, err, ErrUnknownDevice)
	assert.Equal(t, "A", axis.Serial())
}

func TestAxisBindEmptyUnbinds(t *testing.T) {
	axis, drv := connectedAxis(t, sim.DeviceSpec{Serial: "A"})
	require.NoError(t, axis.Bind("A"))

	require.NoError(t, axis.Bind(""))
	assert.Empty(t, axis.Serial())
	assert.Empty(t, axis.Reading())
	assert.True(t, drv.Device("A").IsOpen(), "unbinding should not touch the device")
}

func TestAxisUnboundOperations(t *testing.T) {
	axis, drv := connectedAxis(t, sim.DeviceSpec{Serial: "A", Voltage: 3})
	drv.Device("A").ResetCalls()

	ops := map[string]func() error{
		"Increase":   axis.Increase,
		"Decrease":   axis.Decrease,
		"SetVoltage": func() error { return axis.SetVoltage("4") },
		"SetInvalid": func() error { return axis.SetVoltage("abc") },
		"SetValue":   func() error { return axis.SetVoltageValue(4) },
		"Refresh":    axis.Refresh,
		"StepSize": func() error {
			_, err := axis.StepSize()
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), ErrNoDeviceSelected)
		})
	}
	assert.Empty(t, drv.Device("A").Calls())
	assert.Equal(t, 3.0, drv.Device("A").OutputVoltage())
}

func TestAxisIncrease(t *testing.T) {
	axis, drv := connectedAxis(t, sim.DeviceSpec{Serial: "A", Voltage: 3.00, StepSize: 0.10})
	require.NoError(t, axis.Bind("A"))
	assert.Equal(t, "3", axis.Reading())

	require.NoError(t, axis.Increase())
	assert.InDelta(t, 3.10, drv.Device("A").OutputVoltage(), 1e-9)
	assert.Equal(t, "3.1", axis.Reading())

	require.NoError(t, axis.Decrease())
	require.NoError(t, axis.Decrease())
	assert.Equal(t, "2.9", axis.Reading())
}

func TestAxisSetVoltage(t *testing.T) {
	axis, drv := connectedAxis(t, sim.DeviceSpec{Serial: "A", Voltage: 3})
	require.NoError(t, axis.Bind("A"))

	require.NoError(t, axis.SetVoltage(" 42.25 "))
	assert.Equal(t, 42.25, drv.Device("A").OutputVoltage())
	assert.Equal(t, "42.25", axis.Reading())
}

func TestAxisSetVoltageInvalidInput(t *testing.T) {
	axis, drv := connectedAxis(t, sim.DeviceSpec{Serial: "A", Voltage: 3})
	require.NoError(t, axis.Bind("A"))
	drv.Device("A").ResetCalls()

	for _, input := range []string{"abc", "", "NaN", "inf", "1,5"} {
		err := axis.SetVoltage(input)
		assert.ErrorIs(t, err, ErrInvalidVoltageInput, "input %q", input)
	}
	assert.Equal(t, 3.0, drv.Device("A").OutputVoltage())
	assert.Empty(t, drv.Device("A").Calls())
	assert.Equal(t, "3", axis.Reading())
}

func TestAxisDriverFailureKeepsReading(t *testing.T) {
	axis, drv := connectedAxis(t, sim.DeviceSpec{Serial: "A", Voltage: 3})
	require.NoError(t, axis.Bind("A"))
	drv.Device("A").Fail(sim.OpSet, errors.New("output fault"))

	err := axis.SetVoltage("4")

	var driverErr *DriverError
	require.ErrorAs(t, err, &driverErr)
	assert.Equal(t, "A", driverErr.Serial)
	assert.Equal(t, "set voltage", driverErr.Op)
	assert.Equal(t, "3", axis.Reading())
	assert.Equal(t, 3.0, drv.Device("A").OutputVoltage())
}

func TestAxisSetVoltageOutOfRange(t *testing.T) {
	axis, drv := connectedAxis(t, sim.DeviceSpec{Serial: "A", Voltage: 3, MaxVoltage: 75})
	require.NoError(t, axis.Bind("A"))

	assert.Error(t, axis.SetVoltage("100"))
	assert.Equal(t, 3.0, drv.Device("A").OutputVoltage())
	assert.Equal(t, "3", axis.Reading())
}

func TestAxisUnreadableVoltageKeepsReading(t *testing.T) {
	axis, drv := connectedAxis(t, sim.DeviceSpec{Serial: "A", Voltage: 3})
	require.NoError(t, axis.Bind("A"))

	dev, _ := axis.registry.Lookup("A")
	require.NoError(t, dev.Close())

	assert.NoError(t, axis.Refresh())
	assert.Equal(t, "3", axis.Reading())
	assert.False(t, drv.Device("A").IsOpen())
}

func TestAxisClear(t *testing.T) {
	axis, _ := connectedAxis(t, sim.DeviceSpec{Serial: "A", Voltage: 3})
	require.NoError(t, axis.Bind("A"))

	axis.ClearReading()
	assert.Empty(t, axis.Reading())
	assert.Equal(t, "A", axis.Serial())

	require.NoError(t, axis.Refresh())
	axis.Clear()
	assert.Empty(t, axis.Reading())
	assert.Empty(t, axis.Serial())
}
