package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/calvinmclean/fiberalign/driver"
)

// Registry holds the open handles of the connected piezo controllers, keyed by serial number. It is the
// only owner of the handles. Axes hold serial numbers and look handles up here
type Registry struct {
	drv     driver.Driver
	logger  *slog.Logger
	devices map[string]driver.Device

	// axes are unbound before any handle is closed
	axes []*Axis
}

// NewRegistry creates an empty Registry
func NewRegistry(drv driver.Driver, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		drv:     drv,
		logger:  logger,
		devices: map[string]driver.Device{},
	}
}

func (r *Registry) track(a *Axis) {
	r.axes = append(r.axes, a)
}

// Connect fills an empty registry from the driver. If the registry already has handles, they are reopened
// instead. The serial numbers are returned sorted, and can be empty. A device that fails to open is left out
// and its error is returned alongside the others
func (r *Registry) Connect(ctx context.Context) ([]string, error) {
	if len(r.devices) > 0 {
		return r.reopen()
	}

	serials, err := r.drv.Enumerate(ctx)
	if errors.Is(err, driver.ErrNoHardware) {
		r.logger.Info("no hardware found", "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error enumerating devices: %w", err)
	}

	var errs []error
	for _, serial := range serials {
		dev, err := r.drv.Open(ctx, serial)
		if err != nil {
			errs = append(errs, driverErr(serial, "open", err))
			continue
		}
		r.logger.Debug("opened device", "serial", serial)
		r.devices[serial] = dev
	}

	return r.Serials(), errors.Join(errs...)
}

func (r *Registry) reopen() ([]string, error) {
	var errs []error
	for _, serial := range r.Serials() {
		err := r.devices[serial].Open()
		if err != nil {
			errs = append(errs, driverErr(serial, "open", err))
			continue
		}
		r.logger.Debug("reopened device", "serial", serial)
	}
	return r.Serials(), errors.Join(errs...)
}

// Disconnect unbinds every axis, then closes every handle and empties the registry. The registry is
// emptied even if closing fails
func (r *Registry) Disconnect() error {
	for _, a := range r.axes {
		a.Unbind()
	}

	var errs []error
	for _, serial := range r.Serials() {
		err := r.devices[serial].Close()
		if err != nil {
			errs = append(errs, driverErr(serial, "close", err))
		}
	}
	clear(r.devices)

	return errors.Join(errs...)
}

// Lookup returns the handle for a serial number
func (r *Registry) Lookup(serial string) (driver.Device, bool) {
	dev, ok := r.devices[serial]
	return dev, ok
}

// Serials returns the connected serial numbers, sorted
func (r *Registry) Serials() []string {
	return slices.Sorted(maps.Keys(r.devices))
}

// Len returns the number of connected devices
func (r *Registry) Len() int {
	return len(r.devices)
}

// each runs f on every device in serial order, continuing past failures
func (r *Registry) each(op string, f func(driver.Device) error) error {
	var errs []error
	for _, serial := range r.Serials() {
		errs = append(errs, driverErr(serial, op, f(r.devices[serial])))
	}
	return errors.Join(errs...)
}
