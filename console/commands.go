package console

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calvinmclean/fiberalign"
	"github.com/calvinmclean/fiberalign/controller"
)

// errQuit stops the command loop
var errQuit = errors.New("quit")

// Command is one console command. Run returns text to print on success
type Command struct {
	Name    string
	Aliases []string
	Usage   string
	Help    string
	Run     func(c *Console, args []string) (string, error)
}

var (
	ConnectCommand = &Command{
		Name: "connect",
		Help: "open all piezo controllers and bind them in serial order",
		Run: func(c *Console, args []string) (string, error) {
			serials, err := c.ctrl.Connect(c.ctx)
			if len(serials) == 0 {
				return "", err
			}
			out := "Connected: " + strings.Join(serials, ", ") + "\n" + c.ctrl.Status()
			return out, err
		},
	}
	DisconnectCommand = &Command{
		Name: "disconnect",
		Help: "unbind every axis and close all piezo controllers",
		Run: func(c *Console, args []string) (string, error) {
			return "Disconnected", c.ctrl.Disconnect()
		},
	}
	EnableCommand = &Command{
		Name: "enable",
		Help: "enable the output of every piezo controller",
		Run: func(c *Console, args []string) (string, error) {
			err := c.ctrl.EnableAll()
			if errors.Is(err, controller.ErrNoDevicesConnected) {
				return "", err
			}
			return c.ctrl.Status(), err
		},
	}
	DisableCommand = &Command{
		Name: "disable",
		Help: "disable the output of every piezo controller",
		Run: func(c *Console, args []string) (string, error) {
			return "Disabled", c.ctrl.DisableAll()
		},
	}
	StepCommand = &Command{
		Name:  "step",
		Usage: "<volts>",
		Help:  "set the step size of every piezo controller",
		Run: func(c *Console, args []string) (string, error) {
			if len(args) != 1 {
				return "", errUsage
			}
			err := c.ctrl.SetGlobalStep(args[0])
			if c.ctrl.StepText() == "" {
				return "", err
			}
			return "Step size: " + c.ctrl.StepText() + "V", err
		},
	}
	AllCommand = &Command{
		Name:  "all",
		Usage: "<volts>",
		Help:  "set every bound axis to the same voltage",
		Run: func(c *Console, args []string) (string, error) {
			if len(args) != 1 {
				return "", errUsage
			}
			err := c.ctrl.SetGlobalVoltage(args[0])
			if errors.Is(err, controller.ErrInvalidVoltageInput) {
				return "", err
			}
			return c.ctrl.Status(), err
		},
	}
	BindCommand = &Command{
		Name:  "bind",
		Usage: "<in|out> <x|y|z> [serial]",
		Help:  "choose the piezo controller for an axis; no serial unbinds",
		Run: func(c *Console, args []string) (string, error) {
			if len(args) != 2 && len(args) != 3 {
				return "", errUsage
			}
			axis, err := c.axis(args[0], args[1])
			if err != nil {
				return "", err
			}
			serial := ""
			if len(args) == 3 {
				serial = args[2]
			}
			err = axis.Bind(serial)
			if err != nil {
				return "", err
			}
			return axisLine(axis), nil
		},
	}
	UpCommand = &Command{
		Name:    "up",
		Aliases: []string{"+"},
		Usage:   "<in|out> <x|y|z>",
		Help:    "increase an axis by one step",
		Run:     axisCommand((*controller.Axis).Increase),
	}
	DownCommand = &Command{
		Name:    "down",
		Aliases: []string{"-"},
		Usage:   "<in|out> <x|y|z>",
		Help:    "decrease an axis by one step",
		Run:     axisCommand((*controller.Axis).Decrease),
	}
	SetCommand = &Command{
		Name:  "set",
		Usage: "<in|out> <x|y|z> <volts>",
		Help:  "set the voltage of an axis",
		Run: func(c *Console, args []string) (string, error) {
			if len(args) != 3 {
				return "", errUsage
			}
			axis, err := c.axis(args[0], args[1])
			if err != nil {
				return "", err
			}
			err = axis.SetVoltage(args[2])
			if err != nil {
				return "", err
			}
			return axisLine(axis), nil
		},
	}
	StatusCommand = &Command{
		Name:    "status",
		Aliases: []string{"s"},
		Help:    "show the connection, enable state, and every axis",
		Run: func(c *Console, args []string) (string, error) {
			return c.ctrl.Status(), nil
		},
	}
	HelpCommand = &Command{
		Name:    "help",
		Aliases: []string{"?"},
		Help:    "show this help",
		Run: func(c *Console, args []string) (string, error) {
			return c.helpText(), nil
		},
	}
	QuitCommand = &Command{
		Name:    "quit",
		Aliases: []string{"exit", "q"},
		Help:    "exit",
		Run: func(c *Console, args []string) (string, error) {
			return "", errQuit
		},
	}
)

var commands = []*Command{
	ConnectCommand,
	DisconnectCommand,
	EnableCommand,
	DisableCommand,
	StepCommand,
	AllCommand,
	BindCommand,
	UpCommand,
	DownCommand,
	SetCommand,
	StatusCommand,
	HelpCommand,
	QuitCommand,
}

var errUsage = errors.New("wrong number of arguments")

func axisCommand(f func(*controller.Axis) error) func(*Console, []string) (string, error) {
	return func(c *Console, args []string) (string, error) {
		if len(args) != 2 {
			return "", errUsage
		}
		axis, err := c.axis(args[0], args[1])
		if err != nil {
			return "", err
		}
		err = f(axis)
		if err != nil {
			return "", err
		}
		return axisLine(axis), nil
	}
}

func axisLine(a *controller.Axis) string {
	serial := a.Serial()
	if serial == "" {
		serial = "unbound"
	}
	reading := a.Reading()
	if reading != "" {
		reading = " " + reading + "V"
	}
	return fmt.Sprintf("%s: %s%s", a, serial, reading)
}

func parseStage(s string) (fiberalign.StageName, error) {
	switch strings.ToLower(s) {
	case "in", "input", "i":
		return fiberalign.StageInput, nil
	case "out", "output", "o":
		return fiberalign.StageOutput, nil
	default:
		return 0, fmt.Errorf("unknown stage %q: use in or out", s)
	}
}

func parseAxis(s string) (fiberalign.AxisName, error) {
	switch strings.ToLower(s) {
	case "x":
		return fiberalign.AxisX, nil
	case "y":
		return fiberalign.AxisY, nil
	case "z":
		return fiberalign.AxisZ, nil
	default:
		return 0, fmt.Errorf("unknown axis %q: use x, y, or z", s)
	}
}

func (c *Console) helpText() string {
	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, cmd := range c.commands {
		name := cmd.Name
		if cmd.Usage != "" {
			name += " " + cmd.Usage
		}
		fmt.Fprintf(&sb, "  %-32s %s\n", name, cmd.Help)
	}
	return sb.String()
}
