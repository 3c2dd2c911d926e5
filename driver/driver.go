// Package driver defines the contract between the alignment controller and the piezo controller hardware.
package driver

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNoReading is returned by Device.Voltage when the output voltage cannot be read, for example
	// because the handle is closed
	ErrNoReading = errors.New("voltage reading unavailable")
	// ErrOutOfRange is returned when an absolute voltage is outside of the device's output range
	ErrOutOfRange = errors.New("voltage out of range")
	// ErrInvalidStep is returned when a step size is not positive
	ErrInvalidStep = errors.New("step size must be positive")
	// ErrClosed is returned when using a Device whose handle is not open
	ErrClosed = errors.New("device is not open")
	// ErrNoHardware is returned by Driver.Enumerate when the bus itself is missing. It means the same as
	// an empty list
	ErrNoHardware = errors.New("no hardware found")
	// ErrUnknownSerial is returned by Driver.Open for a serial that was not enumerated
	ErrUnknownSerial = errors.New("unknown serial number")
)

// Driver discovers and opens piezo controllers
type Driver interface {
	// Enumerate lists the serial numbers of the connected controllers
	Enumerate(ctx context.Context) ([]string, error)

	// Open returns an opened handle to the controller with the serial number
	Open(ctx context.Context, serial string) (Device, error)
}

// Device is a handle to one piezo controller channel
type Device interface {
	Serial() string

	// Open reopens a closed handle. It is a no-op on an open handle
	Open() error
	Close() error

	Enable() error
	Disable() error
	IsEnabled() (bool, error)

	// Voltage reads the current output voltage. ErrNoReading means there is no reading rather than a failure
	Voltage() (float64, error)
	// SetVoltage sets an absolute output voltage
	SetVoltage(float64) error
	// IncreaseVoltage moves the output up by the step size, stopping at the maximum
	IncreaseVoltage() error
	// DecreaseVoltage moves the output down by the step size, stopping at zero
	DecreaseVoltage() error

	StepSize() float64
	SetStepSize(float64) error
}

// CheckRange returns ErrOutOfRange if v is not within [0, max]
func CheckRange(v, max float64) error {
	if v < 0 || v > max {
		return fmt.Errorf("%w: %g not in [0, %g]", ErrOutOfRange, v, max)
	}
	return nil
}

// Clamp limits v to [0, max]. Stepping past the end of the range stops at the end instead of failing
func Clamp(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// CheckStep returns ErrInvalidStep if step is not positive
func CheckStep(step float64) error {
	if !(step > 0) {
		return fmt.Errorf("%w: %g", ErrInvalidStep, step)
	}
	return nil
}
