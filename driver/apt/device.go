package apt

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/calvinmclean/fiberalign/driver"
	"go.bug.st/serial"
)

// maxSkipped is how many unrelated messages can arrive before the expected reply is given up on
const maxSkipped = 8

// Device is one KPZ101 cube
type Device struct {
	serial   string
	portName string
	cfg      Config
	openPort portOpener
	logger   *slog.Logger

	conn conn
	// step is kept on the host. The cube has no notion of a step size for output voltage
	step float64
}

var _ driver.Device = &Device{}

// Serial implements driver.Device
func (d *Device) Serial() string {
	return d.serial
}

// Open implements driver.Device
func (d *Device) Open() error {
	if d.conn != nil {
		return nil
	}

	mode := &serial.Mode{
		BaudRate: d.cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	c, err := d.openPort(d.portName, mode, d.cfg.ReadTimeout)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", d.portName, err)
	}

	time.Sleep(settleDelay)
	err = c.ResetInputBuffer()
	if err != nil {
		c.Close()
		return fmt.Errorf("error purging input: %w", err)
	}

	d.conn = c

	err = d.send(message{id: msgHWNoFlashProgramming})
	if err == nil {
		err = d.send(message{id: msgPZSetPosControlMode, param1: channel1, param2: posControlOpenLoop})
	}
	if err != nil {
		d.conn = nil
		c.Close()
		return err
	}

	d.logger.Debug("opened piezo controller", "port", d.portName)
	return nil
}

// Close implements driver.Device
func (d *Device) Close() error {
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	if err != nil {
		return fmt.Errorf("error closing %s: %w", d.portName, err)
	}
	return nil
}

// Enable implements driver.Device
func (d *Device) Enable() error {
	return d.send(setChanEnableState(true))
}

// Disable implements driver.Device
func (d *Device) Disable() error {
	return d.send(setChanEnableState(false))
}

// IsEnabled implements driver.Device
func (d *Device) IsEnabled() (bool, error) {
	reply, err := d.request(message{id: msgModReqChanEnableState, param1: channel1}, msgModGetChanEnableState)
	if err != nil {
		return false, err
	}
	return reply.param2 == enableStateOn, nil
}

// Voltage implements driver.Device
func (d *Device) Voltage() (float64, error) {
	if d.conn == nil {
		return 0, driver.ErrNoReading
	}

	reply, err := d.request(message{id: msgPZReqOutputVolts, param1: channel1}, msgPZGetOutputVolts)
	if errors.Is(err, errTimeout) {
		return 0, driver.ErrNoReading
	}
	if err != nil {
		return 0, err
	}

	raw, err := parseOutputVolts(reply)
	if err != nil {
		return 0, err
	}
	return fromRaw(raw, d.cfg.MaxVoltage), nil
}

// SetVoltage implements driver.Device
func (d *Device) SetVoltage(v float64) error {
	err := driver.CheckRange(v, d.cfg.MaxVoltage)
	if err != nil {
		return err
	}
	return d.send(setOutputVolts(toRaw(v, d.cfg.MaxVoltage)))
}

// IncreaseVoltage implements driver.Device
func (d *Device) IncreaseVoltage() error {
	return d.stepBy(d.step)
}

// DecreaseVoltage implements driver.Device
func (d *Device) DecreaseVoltage() error {
	return d.stepBy(-d.step)
}

func (d *Device) stepBy(delta float64) error {
	v, err := d.Voltage()
	if errors.Is(err, driver.ErrNoReading) {
		return fmt.Errorf("cannot step without a reading: %w", err)
	}
	if err != nil {
		return err
	}
	return d.SetVoltage(driver.Clamp(v+delta, d.cfg.MaxVoltage))
}

// StepSize implements driver.Device
func (d *Device) StepSize() float64 {
	return d.step
}

// SetStepSize implements driver.Device
func (d *Device) SetStepSize(step float64) error {
	err := driver.CheckStep(step)
	if err != nil {
		return err
	}
	d.step = step
	return nil
}

func (d *Device) send(m message) error {
	if d.conn == nil {
		return driver.ErrClosed
	}

	d.logger.Debug("sending message", "id", m.id)
	_, err := d.conn.Write(m.encode())
	if err != nil {
		return fmt.Errorf("error writing message %s: %w", m.id, err)
	}
	return nil
}

// request sends m and waits for a reply with the expected ID. Status updates and responses for other
// messages can arrive first and are skipped. Anything already buffered, such as the late reply to a request
// that timed out, is purged first so it cannot be taken for the answer
func (d *Device) request(m message, expected messageID) (message, error) {
	if d.conn == nil {
		return message{}, driver.ErrClosed
	}
	err := d.conn.ResetInputBuffer()
	if err != nil {
		return message{}, fmt.Errorf("error purging input before %s: %w", m.id, err)
	}

	err = d.send(m)
	if err != nil {
		return message{}, err
	}

	for range maxSkipped {
		reply, err := readMessage(d.conn)
		if err != nil {
			return message{}, fmt.Errorf("error reading reply to %s: %w", m.id, err)
		}
		if reply.id == expected {
			return reply, nil
		}

		switch reply.id {
		case msgHWResponse, msgHWRichResponse:
			d.logger.Warn("device reported an error", "id", reply.id, "data", reply.data)
		default:
			d.logger.Debug("skipping message", "id", reply.id, "expected", expected)
		}
	}

	return message{}, fmt.Errorf("no %s reply to %s after %d messages", expected, m.id, maxSkipped)
}
