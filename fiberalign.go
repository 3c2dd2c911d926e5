package fiberalign

import (
	"math"
	"strconv"
)

// StageName identifies one of the two fiber stages
type StageName int

const (
	StageInput StageName = iota
	StageOutput
)

// Stages lists the stages in default-binding order
var Stages = []StageName{StageInput, StageOutput}

func (s StageName) String() string {
	switch s {
	case StageInput:
		return "Input"
	case StageOutput:
		return "Output"
	default:
		return "Unknown"
	}
}

// AxisName is one of the three positioning axes of a stage
type AxisName int

const (
	AxisX AxisName = iota
	AxisY
	AxisZ
)

// Axes lists the axes in default-binding order
var Axes = []AxisName{AxisX, AxisY, AxisZ}

func (a AxisName) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "?"
	}
}

// EnableState is what the Enable/Disable toggle should show
type EnableState int

const (
	// EnableStateUnavailable means there are no devices to enable, so neither button is actionable
	EnableStateUnavailable EnableState = iota
	EnableStateDisabled
	EnableStateEnabled
	// EnableStateMixed is only seen right after connecting to devices that disagree. Both buttons are
	// actionable and the next press resolves it
	EnableStateMixed
)

func (es EnableState) String() string {
	switch es {
	case EnableStateDisabled:
		return "Disabled"
	case EnableStateEnabled:
		return "Enabled"
	case EnableStateMixed:
		return "Mixed"
	default:
		fallthrough
	case EnableStateUnavailable:
		return "Unavailable"
	}
}

// CanEnable reports whether the Enable button should be pressable
func (es EnableState) CanEnable() bool {
	return es == EnableStateDisabled || es == EnableStateMixed
}

// CanDisable reports whether the Disable button should be pressable
func (es EnableState) CanDisable() bool {
	return es == EnableStateEnabled || es == EnableStateMixed
}

// ConnectionState is the process-wide connection lifecycle
type ConnectionState int

const (
	ConnectionStateDisconnected ConnectionState = iota
	// ConnectionStateNoDevices is reached when a connect finds nothing. The UI reverts to disconnected
	ConnectionStateNoDevices
	ConnectionStateConnected
)

func (cs ConnectionState) String() string {
	switch cs {
	case ConnectionStateNoDevices:
		return "No Devices"
	case ConnectionStateConnected:
		return "Connected"
	default:
		return "Disconnected"
	}
}

// FormatVolts rounds to two decimals and drops trailing zeros, so 3.10 displays as "3.1"
func FormatVolts(v float64) string {
	rounded := math.Round(v*100) / 100
	if rounded == 0 {
		// avoid "-0"
		rounded = 0
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
