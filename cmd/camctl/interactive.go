package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/camlink-project/camlink-go/pkg/wire"
)

// interactive handles the camctl command loop.
type interactive struct {
	ctl *controller
	rl  *readline.Instance
}

// newInteractive creates the interactive command handler.
func newInteractive(ctl *controller) (*interactive, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "camctl> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &interactive{ctl: ctl, rl: rl}, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
// Use this for log output to avoid interfering with input.
func (i *interactive) Stdout() io.Writer {
	return i.rl.Stdout()
}

// Run starts the interactive command loop.
func (i *interactive) Run(ctx context.Context, cancel context.CancelFunc) {
	defer i.rl.Close()

	i.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := i.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(i.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			i.printHelp()

		case "status", "s":
			i.cmdStatus()

		case "start":
			i.cmdStart()

		case "stop":
			i.cmdStop()

		case "set":
			i.cmdSet(args)

		case "get", "g":
			i.cmdGet(args)

		case "quit", "exit", "q":
			fmt.Fprintln(i.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(i.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (i *interactive) printHelp() {
	fmt.Fprintln(i.rl.Stdout(), `
CamLink Controller Commands:
  Recording:
    start                - Start video recording
    stop                 - Stop video recording

  Raw Requests:
    set <command> <value> - Send a set-request (command: power, mode, shutter)
    get <command>         - Send a get-request

  General:
    status               - Show accessory status and link state
    help                 - Show this help
    quit                 - Exit`)
}

func (i *interactive) cmdStatus() {
	out := i.rl.Stdout()
	session := i.ctl.session

	fmt.Fprintf(out, "Link:      %s (%s)\n", i.ctl.linkMgr.State(), i.ctl.addr)
	fmt.Fprintf(out, "Accessory: %s\n", session.Status())
	setN, getN := session.PendingCounts()
	if setN+getN > 0 {
		fmt.Fprintf(out, "Pending:   %d set, %d get\n", setN, getN)
	}
}

func (i *interactive) cmdStart() {
	session := i.ctl.session
	if !session.IsConnected() {
		fmt.Fprintln(i.rl.Stdout(), "Accessory is not connected")
		return
	}
	if session.IsRecording() {
		fmt.Fprintln(i.rl.Stdout(), "Already recording")
		return
	}
	if err := session.StartRecording(); err != nil {
		fmt.Fprintf(i.rl.Stdout(), "Start failed: %v\n", err)
		return
	}
	fmt.Fprintln(i.rl.Stdout(), "Recording sequence started (watch status for confirmation)")
}

func (i *interactive) cmdStop() {
	session := i.ctl.session
	if !session.IsRecording() {
		fmt.Fprintln(i.rl.Stdout(), "Not recording")
		return
	}
	if err := session.StopRecording(); err != nil {
		fmt.Fprintf(i.rl.Stdout(), "Stop failed: %v\n", err)
		return
	}
	fmt.Fprintln(i.rl.Stdout(), "Stop requested (watch status for confirmation)")
}

func (i *interactive) cmdSet(args []string) {
	out := i.rl.Stdout()
	if len(args) != 2 {
		fmt.Fprintln(out, "Usage: set <command> <value>")
		return
	}

	cmd, err := parseCommand(args[0])
	if err != nil {
		fmt.Fprintf(out, "%v\n", err)
		return
	}
	value, err := strconv.ParseUint(args[1], 10, 8)
	if err != nil {
		fmt.Fprintf(out, "Invalid value %q\n", args[1])
		return
	}

	err = i.ctl.session.SendSet(cmd, uint8(value), func(cmd wire.Command, success bool) {
		if success {
			fmt.Fprintf(out, "\nset %s accepted\n", cmd)
		} else {
			fmt.Fprintf(out, "\nset %s REJECTED\n", cmd)
		}
	})
	if err != nil {
		fmt.Fprintf(out, "Send failed: %v\n", err)
	}
}

func (i *interactive) cmdGet(args []string) {
	out := i.rl.Stdout()
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: get <command>")
		return
	}

	cmd, err := parseCommand(args[0])
	if err != nil {
		fmt.Fprintf(out, "%v\n", err)
		return
	}

	err = i.ctl.session.SendGet(cmd, func(cmd wire.Command, value uint8) {
		fmt.Fprintf(out, "\nget %s = %d\n", cmd, value)
	})
	if err != nil {
		fmt.Fprintf(out, "Send failed: %v\n", err)
	}
}

// parseCommand maps a command name or number to a wire command.
func parseCommand(s string) (wire.Command, error) {
	switch strings.ToLower(s) {
	case "power":
		return wire.CommandPower, nil
	case "mode", "capture_mode", "capturemode":
		return wire.CommandCaptureMode, nil
	case "shutter":
		return wire.CommandShutter, nil
	}

	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown command %q (use: power, mode, shutter, or a number)", s)
	}
	return wire.Command(n), nil
}
