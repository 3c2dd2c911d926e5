// Package apt drives Thorlabs KPZ101 piezo K-Cubes over USB serial using the APT protocol.
package apt

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/calvinmclean/fiberalign/driver"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

const (
	// thorlabsVID is the FTDI vendor ID used by Thorlabs K-Cubes
	thorlabsVID = "0403"
	// thorlabsPID is the Thorlabs product ID on the FTDI chip
	thorlabsPID = "FAF0"
	// KPZ101Prefix starts the serial number of every KPZ101
	KPZ101Prefix = "29"
)

// ErrNoUSBSerial is returned by Enumerate when there are no USB serial ports at all
var ErrNoUSBSerial = fmt.Errorf("%w: no USB serial ports", driver.ErrNoHardware)

// settleDelay is how long to wait after opening a port before talking to the cube
var settleDelay = 50 * time.Millisecond

// Config has the serial and output settings shared by all cubes
type Config struct {
	BaudRate     int
	MaxVoltage   float64
	StepSize     float64
	ReadTimeout  time.Duration
	SerialPrefix string
}

// DefaultConfig is a KPZ101 with its output limit set to 75V
func DefaultConfig() Config {
	return Config{
		BaudRate:     115200,
		MaxVoltage:   75,
		StepSize:     1,
		ReadTimeout:  500 * time.Millisecond,
		SerialPrefix: KPZ101Prefix,
	}
}

// conn is the part of serial.Port the driver uses
type conn interface {
	Read([]byte) (int, error)
	Write([]byte) (int, error)
	Close() error
	ResetInputBuffer() error
}

type portOpener func(name string, mode *serial.Mode, readTimeout time.Duration) (conn, error)

// Driver finds cubes by USB serial number and opens them
type Driver struct {
	cfg       Config
	logger    *slog.Logger
	listPorts func() ([]*enumerator.PortDetails, error)
	openPort  portOpener

	// ports maps a cube serial number to the port it was last seen on
	ports map[string]string
}

var _ driver.Driver = &Driver{}

// New creates a Driver for real hardware
func New(cfg Config, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		cfg:       cfg,
		logger:    logger,
		listPorts: enumerator.GetDetailedPortsList,
		openPort:  openSerialPort,
		ports:     map[string]string{},
	}
}

// Enumerate implements driver.Driver
func (d *Driver) Enumerate(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ports, err := d.listPorts()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}

	var serials []string
	usbPorts := 0
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		usbPorts++

		if !strings.EqualFold(p.VID, thorlabsVID) || !strings.EqualFold(p.PID, thorlabsPID) {
			continue
		}
		if !strings.HasPrefix(p.SerialNumber, d.cfg.SerialPrefix) {
			d.logger.Debug("skipping Thorlabs device that is not a piezo controller", "serial", p.SerialNumber, "port", p.Name)
			continue
		}

		d.logger.Debug("found piezo controller", "serial", p.SerialNumber, "port", p.Name)
		d.ports[p.SerialNumber] = p.Name
		serials = append(serials, p.SerialNumber)
	}

	if usbPorts == 0 {
		return nil, ErrNoUSBSerial
	}

	slices.Sort(serials)
	return serials, nil
}

// Open implements driver.Driver
func (d *Driver) Open(ctx context.Context, serialNumber string) (driver.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	portName, ok := d.ports[serialNumber]
	if !ok {
		return nil, fmt.Errorf("%w: %s", driver.ErrUnknownSerial, serialNumber)
	}

	dev := &Device{
		serial:   serialNumber,
		portName: portName,
		cfg:      d.cfg,
		openPort: d.openPort,
		logger:   d.logger.With("serial", serialNumber),
		step:     d.cfg.StepSize,
	}

	err := dev.Open()
	if err != nil {
		return nil, err
	}
	return dev, nil
}

func openSerialPort(name string, mode *serial.Mode, readTimeout time.Duration) (conn, error) {
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}

	err = port.SetReadTimeout(readTimeout)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("error setting read timeout: %w", err)
	}

	// the FTDI chip on the cube expects RTS asserted before it will talk
	err = port.SetRTS(true)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("error setting RTS: %w", err)
	}

	return port, nil
}
