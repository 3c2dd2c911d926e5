package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/calvinmclean/fiberalign/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerateSorted(t *testing.T) {
	d := NewWithSerials("29000003", "29000001", "29000002")

	serials, err := d.Enumerate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"29000001", "29000002", "29000003"}, serials)
	assert.Equal(t, 1, d.EnumerateCalls())
}

func TestEnumerateFailure(t *testing.T) {
	d := NewWithSerials("A")
	d.FailEnumerate(errors.New("usb bus error"))

	_, err := d.Enumerate(context.Background())
	assert.EqualError(t, err, "usb bus error")
}

func TestOpenUnknownSerial(t *testing.T) {
	d := NewWithSerials("A")

	_, err := d.Open(context.Background(), "B")
	assert.ErrorIs(t, err, driver.ErrUnknownSerial)
}

func TestStepping(t *testing.T) {
	d := New(DeviceSpec{Serial: "A", Voltage: 3.0, StepSize: 0.1, MaxVoltage: 75})
	dev, err := d.Open(context.Background(), "A")
	require.NoError(t, err)

	require.NoError(t, dev.IncreaseVoltage())
	v, err := dev.Voltage()
	require.NoError(t, err)
	assert.InDelta(t, 3.1, v, 1e-9)

	require.NoError(t, dev.SetVoltage(74.95))
	require.NoError(t, dev.IncreaseVoltage())
	v, _ = dev.Voltage()
	assert.Equal(t, 75.0, v)

	require.NoError(t, dev.SetVoltage(0.05))
	require.NoError(t, dev.DecreaseVoltage())
	v, _ = dev.Voltage()
	assert.Equal(t, 0.0, v)
}

func TestSetVoltageOutOfRange(t *testing.T) {
	d := New(DeviceSpec{Serial: "A", Voltage: 10})
	dev, err := d.Open(context.Background(), "A")
	require.NoError(t, err)

	assert.ErrorIs(t, dev.SetVoltage(100), driver.ErrOutOfRange)
	assert.Equal(t, 10.0, d.Device("A").OutputVoltage())
}

func TestClosedDevice(t *testing.T) {
	d := NewWithSerials("A")
	dev, err := d.Open(context.Background(), "A")
	require.NoError(t, err)
	require.NoError(t, dev.Close())

	_, err = dev.Voltage()
	assert.ErrorIs(t, err, driver.ErrNoReading)
	assert.ErrorIs(t, dev.Enable(), driver.ErrClosed)

	require.NoError(t, dev.Open())
	assert.NoError(t, dev.Enable())
}

func TestFailAndCalls(t *testing.T) {
	d := NewWithSerials("A")
	dev, err := d.Open(context.Background(), "A")
	require.NoError(t, err)

	simDev := d.Device("A")
	simDev.ResetCalls()
	simDev.Fail(OpEnable, errors.New("overload"))

	assert.EqualError(t, dev.Enable(), "overload")
	assert.False(t, simDev.Enabled())

	simDev.Fail(OpEnable, nil)
	assert.NoError(t, dev.Enable())
	assert.Equal(t, []string{OpEnable, OpEnable}, simDev.Calls())
}

func TestSetStepSize(t *testing.T) {
	d := NewWithSerials("A")
	dev, err := d.Open(context.Background(), "A")
	require.NoError(t, err)

	assert.Equal(t, DefaultStepSize, dev.StepSize())
	assert.ErrorIs(t, dev.SetStepSize(0), driver.ErrInvalidStep)
	require.NoError(t, dev.SetStepSize(5))
	assert.Equal(t, 5.0, dev.StepSize())
}
