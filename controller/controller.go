package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/calvinmclean/fiberalign"
	"github.com/calvinmclean/fiberalign/driver"
)

// Controller is the alignment station: a Registry of piezo controllers and the input and output stages
// bound to them. Every method runs to completion on the caller's goroutine and none of them are safe for
// concurrent use
type Controller struct {
	registry *Registry
	logger   *slog.Logger

	Input  *Stage
	Output *Stage

	connection  fiberalign.ConnectionState
	enableState fiberalign.EnableState
	// stepText is the step size shown for all devices
	stepText string
}

// New creates a disconnected Controller using the driver
func New(drv driver.Driver, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	registry := NewRegistry(drv, logger)
	return &Controller{
		registry: registry,
		logger:   logger,
		Input:    NewStage(registry, fiberalign.StageInput),
		Output:   NewStage(registry, fiberalign.StageOutput),
	}
}

// Stages returns the input and output stages
func (c *Controller) Stages() []*Stage {
	return []*Stage{c.Input, c.Output}
}

// Stage returns the named stage
func (c *Controller) Stage(name fiberalign.StageName) *Stage {
	if name == fiberalign.StageOutput {
		return c.Output
	}
	return c.Input
}

// Axis returns one axis of one stage
func (c *Controller) Axis(stage fiberalign.StageName, axis fiberalign.AxisName) *Axis {
	return c.Stage(stage).Axis(axis)
}

// Serials returns the connected serial numbers, sorted
func (c *Controller) Serials() []string {
	return c.registry.Serials()
}

// ConnectionState returns where the connection lifecycle is
func (c *Controller) ConnectionState() fiberalign.ConnectionState {
	return c.connection
}

// EnableState returns what the Enable/Disable toggle should show
func (c *Controller) EnableState() fiberalign.EnableState {
	return c.enableState
}

// StepText returns the step size display
func (c *Controller) StepText() string {
	return c.stepText
}

// Connect opens the piezo controllers and binds them to the six axes in sorted serial order. When nothing is
// found, ErrNoDevicesConnected is returned and the caller should show itself as disconnected again. Other
// errors are devices that could not be opened; the rest are still connected
func (c *Controller) Connect(ctx context.Context) ([]string, error) {
	serials, err := c.registry.Connect(ctx)
	if len(serials) == 0 {
		c.connection = fiberalign.ConnectionStateNoDevices
		c.enableState = fiberalign.EnableStateUnavailable
		c.stepText = ""
		c.logger.Info("no piezos found")
		return nil, errors.Join(ErrNoDevicesConnected, err)
	}

	c.connection = fiberalign.ConnectionStateConnected
	c.logger.Info("connected", "serials", serials)

	c.updateStepText()
	errs := []error{err, c.bindDefaults(serials)}

	enableState, readErr := c.readEnableState()
	c.enableState = enableState
	errs = append(errs, readErr)

	return serials, errors.Join(errs...)
}

// bindDefaults gives the six axes a sane configuration without user input. Slots past the last device
// stay unbound
func (c *Controller) bindDefaults(serials []string) error {
	var errs []error
	i := 0
	for _, stage := range c.Stages() {
		for _, axis := range stage.Axes() {
			if i >= len(serials) {
				axis.Unbind()
				continue
			}
			errs = append(errs, axis.Bind(serials[i]))
			i++
		}
	}
	return errors.Join(errs...)
}

// readEnableState reads every device. Devices that cannot be read are left out
func (c *Controller) readEnableState() (fiberalign.EnableState, error) {
	enabled, disabled := 0, 0
	err := c.registry.each("read enable state", func(dev driver.Device) error {
		on, err := dev.IsEnabled()
		if err != nil {
			return err
		}
		if on {
			enabled++
		} else {
			disabled++
		}
		return nil
	})

	switch {
	case enabled > 0 && disabled > 0:
		return fiberalign.EnableStateMixed, err
	case enabled > 0:
		return fiberalign.EnableStateEnabled, err
	case disabled > 0:
		return fiberalign.EnableStateDisabled, err
	default:
		// nothing could be read, so let the user choose
		return fiberalign.EnableStateMixed, err
	}
}

// Disconnect unbinds every axis, clears the displays, and closes every device
func (c *Controller) Disconnect() error {
	for _, stage := range c.Stages() {
		stage.ClearAll()
	}
	c.stepText = ""

	err := c.registry.Disconnect()
	c.connection = fiberalign.ConnectionStateDisconnected
	c.enableState = fiberalign.EnableStateUnavailable
	c.logger.Info("disconnected")
	return err
}

// EnableAll enables every device and then reads every bound axis
func (c *Controller) EnableAll() error {
	if c.registry.Len() == 0 {
		c.logger.Info("enable ignored", "reason", ErrNoDevicesConnected)
		return ErrNoDevicesConnected
	}

	// the toggle follows the user's choice even when some devices fail; the error names them
	err := c.registry.each("enable", driver.Device.Enable)
	c.enableState = fiberalign.EnableStateEnabled

	return errors.Join(err, c.refreshAll())
}

// DisableAll disables every device and clears the voltage displays, since voltages mean nothing while disabled
func (c *Controller) DisableAll() error {
	err := c.registry.each("disable", driver.Device.Disable)
	for _, stage := range c.Stages() {
		stage.ClearVoltageDisplay()
	}

	if c.registry.Len() > 0 {
		c.enableState = fiberalign.EnableStateDisabled
	}
	return err
}

// SetGlobalStep sets the step size of every device
func (c *Controller) SetGlobalStep(input string) error {
	step, err := ParseVolts(input)
	if err != nil {
		return err
	}

	err = c.registry.each("set step size", func(dev driver.Device) error {
		return dev.SetStepSize(step)
	})
	c.updateStepText()
	return err
}

// updateStepText shows the step size of the first device by serial number. Step size belongs to each device
// but is presented as one value
func (c *Controller) updateStepText() {
	serials := c.registry.Serials()
	if len(serials) == 0 {
		c.stepText = ""
		return
	}
	dev, _ := c.registry.Lookup(serials[0])
	c.stepText = fiberalign.FormatVolts(dev.StepSize())
}

// SetGlobalVoltage sets every bound axis of both stages to the same voltage. Unbound axes are skipped
func (c *Controller) SetGlobalVoltage(input string) error {
	v, err := ParseVolts(input)
	if err != nil {
		return err
	}

	var errs []error
	for _, stage := range c.Stages() {
		for _, axis := range stage.Axes() {
			err := axis.SetVoltageValue(v)
			if errors.Is(err, ErrNoDeviceSelected) {
				continue
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Controller) refreshAll() error {
	var errs []error
	for _, stage := range c.Stages() {
		errs = append(errs, stage.RefreshAll())
	}
	return errors.Join(errs...)
}

// Status describes the connection, enable state, step size, and every axis
func (c *Controller) Status() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s, %s", c.connection, c.enableState)
	if c.stepText != "" {
		fmt.Fprintf(&sb, ", step=%sV", c.stepText)
	}
	sb.WriteString("\n")

	for _, stage := range c.Stages() {
		for _, axis := range stage.Axes() {
			serial := axis.Serial()
			if serial == "" {
				serial = "-"
			}
			reading := axis.Reading()
			if reading == "" {
				reading = "-"
			} else {
				reading += "V"
			}
			fmt.Fprintf(&sb, "%-8s %s  %-10s %s\n", stage.Name, axis.Name(), serial, reading)
		}
	}
	return sb.String()
}
