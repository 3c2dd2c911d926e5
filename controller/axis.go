package controller

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/calvinmclean/fiberalign"
	"github.com/calvinmclean/fiberalign/driver"
)

// Axis binds one stage axis to at most one device in the Registry. It keeps the serial number, never the
// handle, so a disconnect cannot leave it pointing at a closed device
type Axis struct {
	stage    fiberalign.StageName
	name     fiberalign.AxisName
	registry *Registry
	logger   *slog.Logger

	serial string
	// reading is the last voltage read from the device, formatted for display. Empty means no reading
	reading string
}

// NewAxis creates an unbound axis that is unbound automatically when the registry disconnects
func NewAxis(registry *Registry, stage fiberalign.StageName, name fiberalign.AxisName) *Axis {
	a := &Axis{
		stage:    stage,
		name:     name,
		registry: registry,
		logger:   registry.logger.With("stage", stage.String(), "axis", name.String()),
	}
	registry.track(a)
	return a
}

func (a *Axis) String() string {
	return a.stage.String() + " " + a.name.String()
}

// Name returns which axis this is
func (a *Axis) Name() fiberalign.AxisName {
	return a.name
}

// Serial returns the bound serial number or "" when unbound
func (a *Axis) Serial() string {
	return a.serial
}

// Reading returns the cached voltage display text
func (a *Axis) Reading() string {
	return a.reading
}

// Bind selects the device for this axis and reads its voltage. An empty serial unbinds and empties the
// display. A serial that is not in the registry returns ErrUnknownDevice and leaves the binding alone
func (a *Axis) Bind(serial string) error {
	if serial == "" {
		a.Clear()
		return nil
	}
	if _, ok := a.registry.Lookup(serial); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDevice, serial)
	}

	a.serial = serial
	a.logger.Debug("bound device", "serial", serial)
	return a.Refresh()
}

// Unbind clears the selection. The device itself is not touched
func (a *Axis) Unbind() {
	a.serial = ""
}

// device is the guard for every operation that talks to the driver
func (a *Axis) device() (driver.Device, error) {
	if a.serial == "" {
		return nil, ErrNoDeviceSelected
	}
	dev, ok := a.registry.Lookup(a.serial)
	if !ok {
		// only possible if the registry was changed without going through Disconnect
		a.serial = ""
		return nil, ErrNoDeviceSelected
	}
	return dev, nil
}

// Refresh rereads the voltage into the cached display. An unreadable voltage keeps the last reading
func (a *Axis) Refresh() error {
	dev, err := a.device()
	if err != nil {
		return err
	}

	v, err := dev.Voltage()
	if errors.Is(err, driver.ErrNoReading) {
		a.logger.Debug("no voltage reading", "serial", a.serial)
		return nil
	}
	if err != nil {
		return driverErr(a.serial, "read voltage", err)
	}

	a.reading = fiberalign.FormatVolts(v)
	return nil
}

// Increase steps the voltage up by the device's step size
func (a *Axis) Increase() error {
	return a.mutate("increase voltage", driver.Device.IncreaseVoltage)
}

// Decrease steps the voltage down by the device's step size
func (a *Axis) Decrease() error {
	return a.mutate("decrease voltage", driver.Device.DecreaseVoltage)
}

// SetVoltage parses input and sets it as the absolute voltage
func (a *Axis) SetVoltage(input string) error {
	if _, err := a.device(); err != nil {
		return err
	}

	v, err := ParseVolts(input)
	if err != nil {
		return err
	}
	return a.SetVoltageValue(v)
}

// SetVoltageValue sets an absolute voltage
func (a *Axis) SetVoltageValue(v float64) error {
	return a.mutate("set voltage", func(dev driver.Device) error {
		return dev.SetVoltage(v)
	})
}

// StepSize returns the bound device's step size
func (a *Axis) StepSize() (float64, error) {
	dev, err := a.device()
	if err != nil {
		return 0, err
	}
	return dev.StepSize(), nil
}

// ClearReading empties the voltage display without touching the binding
func (a *Axis) ClearReading() {
	a.reading = ""
}

// Clear unbinds and empties the voltage display
func (a *Axis) Clear() {
	a.Unbind()
	a.ClearReading()
}

// mutate runs a driver call on the bound device and then rereads the voltage so the display is never stale.
// If the call fails, the display keeps its last value
func (a *Axis) mutate(op string, f func(driver.Device) error) error {
	dev, err := a.device()
	if err != nil {
		a.logger.Info("ignored", "op", op, "reason", err)
		return err
	}

	a.logger.Debug(op, "serial", a.serial)
	err = f(dev)
	if err != nil {
		return driverErr(a.serial, op, err)
	}

	return a.Refresh()
}
