// Package console runs alignment commands typed on a terminal or read from a script.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/calvinmclean/fiberalign/controller"
	"github.com/chzyer/readline"
)

// Console runs text commands against a Controller
type Console struct {
	ctrl     *controller.Controller
	out      io.Writer
	ctx      context.Context
	commands []*Command
	cmdMap   map[string]*Command
}

// New creates a Console that writes command output to out
func New(ctrl *controller.Controller, out io.Writer) *Console {
	c := &Console{
		ctrl:     ctrl,
		out:      out,
		ctx:      context.Background(),
		commands: commands,
		cmdMap:   map[string]*Command{},
	}
	for _, cmd := range c.commands {
		c.cmdMap[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			c.cmdMap[alias] = cmd
		}
	}
	return c
}

// Exec runs one command line and prints its output. A failed command prints its error and is not fatal.
// It returns false when the line asked to quit
func (c *Console) Exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return true
	}

	cmd, ok := c.cmdMap[strings.ToLower(fields[0])]
	if !ok {
		fmt.Fprintf(c.out, "unknown command %q, try help\n", fields[0])
		return true
	}

	out, err := cmd.Run(c, fields[1:])
	if errors.Is(err, errQuit) {
		return false
	}
	if out != "" {
		fmt.Fprintln(c.out, strings.TrimRight(out, "\n"))
	}
	if errors.Is(err, errUsage) {
		fmt.Fprintf(c.out, "usage: %s %s\n", cmd.Name, cmd.Usage)
		return true
	}
	if err != nil {
		fmt.Fprintln(c.out, "error:", err.Error())
	}
	return true
}

// Run executes commands from r, one per line, until EOF, quit, or ctx is done. Cancelling ctx returns
// right away even while a read from r is blocked; that read is abandoned
func (c *Console) Run(ctx context.Context, r io.Reader) error {
	c.ctx = ctx

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				scanErr <- nil
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			if ctx.Err() != nil {
				return nil
			}
			if !c.Exec(line) {
				return nil
			}
		}
	}
}

// RunInteractive reads commands from the terminal with line editing and completion until quit, EOF, or
// ctx is done. Output goes through readline so it does not clobber the prompt
func (c *Console) RunInteractive(ctx context.Context) error {
	c.ctx = ctx

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "align> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		AutoComplete:    c.completer(),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	// closing readline unblocks a pending Readline
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			rl.Close()
		case <-done:
		}
	}()

	out := c.out
	c.out = rl.Stdout()
	defer func() { c.out = out }()

	c.Exec("help")
	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := rl.Readline()
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			// EOF
			return nil
		}

		if !c.Exec(line) {
			return nil
		}
	}
}

func (c *Console) completer() *readline.PrefixCompleter {
	stageAxis := func() []readline.PrefixCompleterInterface {
		var items []readline.PrefixCompleterInterface
		for _, stage := range []string{"in", "out"} {
			items = append(items, readline.PcItem(stage,
				readline.PcItem("x"), readline.PcItem("y"), readline.PcItem("z"),
			))
		}
		return items
	}

	var items []readline.PrefixCompleterInterface
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd.Usage, "<in|out>") {
			items = append(items, readline.PcItem(cmd.Name, stageAxis()...))
			continue
		}
		items = append(items, readline.PcItem(cmd.Name))
	}
	return readline.NewPrefixCompleter(items...)
}

func (c *Console) axis(stageArg, axisArg string) (*controller.Axis, error) {
	stage, err := parseStage(stageArg)
	if err != nil {
		return nil, err
	}
	axis, err := parseAxis(axisArg)
	if err != nil {
		return nil, err
	}
	return c.ctrl.Axis(stage, axis), nil
}
