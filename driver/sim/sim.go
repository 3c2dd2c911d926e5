// Package sim is an in-memory piezo driver. It records every call so tests can check what reached the
// hardware, and it can inject failures for a single operation.
package sim

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/calvinmclean/fiberalign/driver"
)

const (
	DefaultMaxVoltage = 75.0
	DefaultStepSize   = 1.0
)

// Operation names used in call records and with Fail
const (
	OpOpen      = "Open"
	OpClose     = "Close"
	OpEnable    = "Enable"
	OpDisable   = "Disable"
	OpIsEnabled = "IsEnabled"
	OpVoltage   = "Voltage"
	OpSet       = "SetVoltage"
	OpIncrease  = "IncreaseVoltage"
	OpDecrease  = "DecreaseVoltage"
	OpSetStep   = "SetStepSize"
)

// DeviceSpec is the initial state of a simulated device
type DeviceSpec struct {
	Serial     string
	Voltage    float64
	Enabled    bool
	StepSize   float64
	MaxVoltage float64
}

// Driver simulates a set of connected piezo controllers
type Driver struct {
	devices       map[string]*Device
	enumerateErr  error
	enumerateCall int
}

var _ driver.Driver = &Driver{}

// New creates a Driver with the devices. Zero StepSize and MaxVoltage use the defaults
func New(specs ...DeviceSpec) *Driver {
	d := &Driver{devices: map[string]*Device{}}
	for _, spec := range specs {
		d.Add(spec)
	}
	return d
}

// NewWithSerials creates a Driver with default devices for each serial
func NewWithSerials(serials ...string) *Driver {
	d := New()
	for _, s := range serials {
		d.Add(DeviceSpec{Serial: s})
	}
	return d
}

// Add plugs in another device
func (d *Driver) Add(spec DeviceSpec) *Device {
	if spec.StepSize == 0 {
		spec.StepSize = DefaultStepSize
	}
	if spec.MaxVoltage == 0 {
		spec.MaxVoltage = DefaultMaxVoltage
	}
	dev := &Device{
		serial:  spec.Serial,
		voltage: spec.Voltage,
		enabled: spec.Enabled,
		step:    spec.StepSize,
		max:     spec.MaxVoltage,
		fail:    map[string]error{},
	}
	d.devices[spec.Serial] = dev
	return dev
}

// Remove unplugs a device. An open handle keeps working, like a cable pulled after connecting
func (d *Driver) Remove(serial string) {
	delete(d.devices, serial)
}

// Device returns the simulated device for inspection
func (d *Driver) Device(serial string) *Device {
	return d.devices[serial]
}

// FailEnumerate makes the next Enumerate calls fail with err until it is reset with nil
func (d *Driver) FailEnumerate(err error) {
	d.enumerateErr = err
}

// EnumerateCalls returns how many times Enumerate was called
func (d *Driver) EnumerateCalls() int {
	return d.enumerateCall
}

// Enumerate implements driver.Driver
func (d *Driver) Enumerate(ctx context.Context) ([]string, error) {
	d.enumerateCall++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.enumerateErr != nil {
		return nil, d.enumerateErr
	}
	return slices.Sorted(maps.Keys(d.devices)), nil
}

// Open implements driver.Driver
func (d *Driver) Open(ctx context.Context, serial string) (driver.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dev, ok := d.devices[serial]
	if !ok {
		return nil, fmt.Errorf("%w: %s", driver.ErrUnknownSerial, serial)
	}
	if err := dev.Open(); err != nil {
		return nil, err
	}
	return dev, nil
}

// Device is a simulated piezo controller
type Device struct {
	serial  string
	open    bool
	enabled bool
	voltage float64
	step    float64
	max     float64

	calls []string
	fail  map[string]error
}

var _ driver.Device = &Device{}

// Fail makes every call of op return err until it is reset with nil
func (d *Device) Fail(op string, err error) {
	if err == nil {
		delete(d.fail, op)
		return
	}
	d.fail[op] = err
}

// Calls returns the operations called on this device, in order
func (d *Device) Calls() []string {
	return slices.Clone(d.calls)
}

// ResetCalls clears the call record
func (d *Device) ResetCalls() {
	d.calls = nil
}

// IsOpen reports whether the handle is open
func (d *Device) IsOpen() bool {
	return d.open
}

// OutputVoltage is the simulated output, readable even while closed
func (d *Device) OutputVoltage() float64 {
	return d.voltage
}

// Enabled is the simulated enable state, readable without recording a call
func (d *Device) Enabled() bool {
	return d.enabled
}

func (d *Device) call(op string) error {
	d.calls = append(d.calls, op)
	if err, ok := d.fail[op]; ok {
		return err
	}
	if op != OpOpen && op != OpClose && !d.open {
		return driver.ErrClosed
	}
	return nil
}

// Serial implements driver.Device
func (d *Device) Serial() string {
	return d.serial
}

// Open implements driver.Device
func (d *Device) Open() error {
	if err := d.call(OpOpen); err != nil {
		return err
	}
	d.open = true
	return nil
}

// Close implements driver.Device
func (d *Device) Close() error {
	if err := d.call(OpClose); err != nil {
		return err
	}
	d.open = false
	return nil
}

// Enable implements driver.Device
func (d *Device) Enable() error {
	if err := d.call(OpEnable); err != nil {
		return err
	}
	d.enabled = true
	return nil
}

// Disable implements driver.Device
func (d *Device) Disable() error {
	if err := d.call(OpDisable); err != nil {
		return err
	}
	d.enabled = false
	return nil
}

// IsEnabled implements driver.Device
func (d *Device) IsEnabled() (bool, error) {
	if err := d.call(OpIsEnabled); err != nil {
		return false, err
	}
	return d.enabled, nil
}

// Voltage implements driver.Device
func (d *Device) Voltage() (float64, error) {
	if err := d.call(OpVoltage); err != nil {
		if err == driver.ErrClosed {
			return 0, driver.ErrNoReading
		}
		return 0, err
	}
	return d.voltage, nil
}

// SetVoltage implements driver.Device
func (d *Device) SetVoltage(v float64) error {
	if err := d.call(OpSet); err != nil {
		return err
	}
	if err := driver.CheckRange(v, d.max); err != nil {
		return err
	}
	d.voltage = v
	return nil
}

// IncreaseVoltage implements driver.Device
func (d *Device) IncreaseVoltage() error {
	if err := d.call(OpIncrease); err != nil {
		return err
	}
	d.voltage = driver.Clamp(d.voltage+d.step, d.max)
	return nil
}

// DecreaseVoltage implements driver.Device
func (d *Device) DecreaseVoltage() error {
	if err := d.call(OpDecrease); err != nil {
		return err
	}
	d.voltage = driver.Clamp(d.voltage-d.step, d.max)
	return nil
}

// StepSize implements driver.Device
func (d *Device) StepSize() float64 {
	return d.step
}

// SetStepSize implements driver.Device
func (d *Device) SetStepSize(step float64) error {
	if err := d.call(OpSetStep); err != nil {
		return err
	}
	if err := driver.CheckStep(step); err != nil {
		return err
	}
	d.step = step
	return nil
}
