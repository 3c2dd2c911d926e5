package apt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

type messageID uint16

const (
	msgHWNoFlashProgramming  messageID = 0x0018
	msgHWResponse            messageID = 0x0080
	msgHWRichResponse        messageID = 0x0081
	msgModSetChanEnableState messageID = 0x0210
	msgModReqChanEnableState messageID = 0x0211
	msgModGetChanEnableState messageID = 0x0212
	msgPZSetPosControlMode   messageID = 0x0640
	msgPZSetOutputVolts      messageID = 0x0643
	msgPZReqOutputVolts      messageID = 0x0644
	msgPZGetOutputVolts      messageID = 0x0645
)

func (id messageID) String() string {
	return fmt.Sprintf("0x%04X", uint16(id))
}

const (
	headerLen = 6

	hostAddr byte = 0x01
	// usbAddr is the generic USB hardware unit address of a K-Cube
	usbAddr byte = 0x50
	// dataFlag is set on the destination byte when a data packet follows the header
	dataFlag byte = 0x80

	channel1 byte = 0x01

	enableStateOn  byte = 0x01
	enableStateOff byte = 0x02

	posControlOpenLoop byte = 0x01

	// maxRawVoltage is the device value for 100% of the output range
	maxRawVoltage = 32767

	// maxDataLen bounds data packets so a corrupted header cannot cause a huge read
	maxDataLen = 256
)

var errTimeout = errors.New("timed out waiting for device")

// message is one APT protocol frame. Without data, param1 and param2 live in the header. With data, the
// header carries the data length instead
type message struct {
	id     messageID
	param1 byte
	param2 byte
	data   []byte
}

func (m message) encode() []byte {
	buf := make([]byte, headerLen, headerLen+len(m.data))
	binary.LittleEndian.PutUint16(buf[0:2], uint16(m.id))
	if len(m.data) > 0 {
		binary.LittleEndian.PutUint16(buf[2:4], uint16(len(m.data)))
		buf[4] = usbAddr | dataFlag
	} else {
		buf[2] = m.param1
		buf[3] = m.param2
		buf[4] = usbAddr
	}
	buf[5] = hostAddr
	return append(buf, m.data...)
}

// readMessage reads a single frame. The reader is expected to return (0, nil) when its read timeout
// expires, which is how go.bug.st/serial ports behave
func readMessage(r io.Reader) (message, error) {
	header := make([]byte, headerLen)
	err := readFull(r, header)
	if err != nil {
		return message{}, err
	}

	m := message{id: messageID(binary.LittleEndian.Uint16(header[0:2]))}
	if header[4]&dataFlag == 0 {
		m.param1 = header[2]
		m.param2 = header[3]
		return m, nil
	}

	n := int(binary.LittleEndian.Uint16(header[2:4]))
	if n > maxDataLen {
		return message{}, fmt.Errorf("data packet too long for message %s: %d bytes", m.id, n)
	}
	m.data = make([]byte, n)
	err = readFull(r, m.data)
	if err != nil {
		return message{}, fmt.Errorf("error reading data for message %s: %w", m.id, err)
	}
	return m, nil
}

func readFull(r io.Reader, buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		if err != nil {
			return err
		}
		if n == 0 {
			return errTimeout
		}
		total += n
	}
	return nil
}

func setChanEnableState(enabled bool) message {
	state := enableStateOff
	if enabled {
		state = enableStateOn
	}
	return message{id: msgModSetChanEnableState, param1: channel1, param2: state}
}

func setOutputVolts(raw int16) message {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint16(data[0:2], uint16(channel1))
	binary.LittleEndian.PutUint16(data[2:4], uint16(raw))
	return message{id: msgPZSetOutputVolts, data: data}
}

// parseOutputVolts reads the voltage out of a PZ_GET_OUTPUTVOLTS reply
func parseOutputVolts(m message) (int16, error) {
	if m.id != msgPZGetOutputVolts || len(m.data) < 4 {
		return 0, fmt.Errorf("unexpected output volts reply: id=%s len=%d", m.id, len(m.data))
	}
	return int16(binary.LittleEndian.Uint16(m.data[2:4])), nil
}

// toRaw converts volts to the device's signed 16-bit fraction of the output range
func toRaw(volts, maxVoltage float64) int16 {
	return int16(math.Round(volts / maxVoltage * maxRawVoltage))
}

func fromRaw(raw int16, maxVoltage float64) float64 {
	return float64(raw) / maxRawVoltage * maxVoltage
}
