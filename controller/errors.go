package controller

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrNoDeviceSelected is returned by axis operations on an unbound axis. Nothing reaches the driver
	ErrNoDeviceSelected = errors.New("no serial number chosen")
	// ErrNoDevicesConnected is returned when connecting finds nothing or enabling with nothing connected
	ErrNoDevicesConnected = errors.New("no piezos are currently connected")
	// ErrInvalidVoltageInput is returned when user input is not a real number. Nothing reaches the driver
	ErrInvalidVoltageInput = errors.New("invalid voltage")
	// ErrUnknownDevice is returned when binding to a serial number that is not connected
	ErrUnknownDevice = errors.New("unknown serial number")
)

// DriverError is a failure reported by the hardware driver for one device
type DriverError struct {
	Serial string
	Op     string
	Err    error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Serial, e.Op, e.Err)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

func driverErr(serial, op string, err error) error {
	if err == nil {
		return nil
	}
	return &DriverError{Serial: serial, Op: op, Err: err}
}

// ParseVolts parses user input for a voltage or step size
func ParseVolts(input string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVoltageInput, input)
	}
	return v, nil
}
