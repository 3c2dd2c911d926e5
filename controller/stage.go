package controller

import (
	"errors"

	"github.com/calvinmclean/fiberalign"
)

// Stage groups the X, Y, and Z axes of one fiber stage
type Stage struct {
	Name fiberalign.StageName
	X    *Axis
	Y    *Axis
	Z    *Axis
}

// NewStage creates a stage with three unbound axes
func NewStage(registry *Registry, name fiberalign.StageName) *Stage {
	return &Stage{
		Name: name,
		X:    NewAxis(registry, name, fiberalign.AxisX),
		Y:    NewAxis(registry, name, fiberalign.AxisY),
		Z:    NewAxis(registry, name, fiberalign.AxisZ),
	}
}

// Axes returns X, Y, and Z in order
func (s *Stage) Axes() []*Axis {
	return []*Axis{s.X, s.Y, s.Z}
}

// Axis returns the named axis
func (s *Stage) Axis(name fiberalign.AxisName) *Axis {
	switch name {
	case fiberalign.AxisX:
		return s.X
	case fiberalign.AxisY:
		return s.Y
	case fiberalign.AxisZ:
		return s.Z
	default:
		return nil
	}
}

// ClearAll unbinds every axis and empties the voltage displays
func (s *Stage) ClearAll() {
	for _, a := range s.Axes() {
		a.Clear()
	}
}

// RefreshAll rereads the voltage of every bound axis. Unbound axes are skipped
func (s *Stage) RefreshAll() error {
	var errs []error
	for _, a := range s.Axes() {
		err := a.Refresh()
		if errors.Is(err, ErrNoDeviceSelected) {
			continue
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ClearVoltageDisplay empties the voltage displays and keeps the bindings
func (s *Stage) ClearVoltageDisplay() {
	for _, a := range s.Axes() {
		a.ClearReading()
	}
}
