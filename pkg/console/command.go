package console

import (
	"fmt"
	"strings"

	"github.com/haivivi/framegear/pkg/framemsg"
)

// Kind identifies a console command.
type Kind int

const (
	// Raw is a line sent to the device as a command frame.
	Raw Kind = iota
	Exit
	ExitWithBreak
	Resend
	Python
	Reset
	Resync
	Ask
	Help
)

func (k Kind) String() string {
	switch k {
	case Raw:
		return "raw"
	case Exit:
		return "exit"
	case ExitWithBreak:
		return "exit-break"
	case Resend:
		return "resend"
	case Python:
		return "python"
	case Reset:
		return "reset"
	case Resync:
		return "resync"
	case Ask:
		return "ask"
	case Help:
		return "help"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Command is one parsed console line.
type Command struct {
	Kind Kind
	// Arg is the file of Resend, the code of Python, the text of Ask and
	// Raw, and the offending line of Help.
	Arg string
}

// Parse parses a console line. ok is false for a blank line.
func Parse(line string) (cmd Command, ok bool) {
	if strings.TrimSpace(line) == "" {
		return Command{}, false
	}
	switch {
	case line == ".exit":
		return Command{Kind: Exit}, true
	case line == ".exit break":
		return Command{Kind: ExitWithBreak}, true
	case strings.HasPrefix(line, ".resend"):
		fields := strings.Fields(line)
		if fields[0] != ".resend" {
			break
		}
		file := framemsg.DefaultAppFile
		if len(fields) > 1 {
			file = fields[1]
		}
		return Command{Kind: Resend, Arg: file}, true
	case strings.HasPrefix(line, ".python "):
		return Command{Kind: Python, Arg: line[len(".python "):]}, true
	case line == ".reset":
		return Command{Kind: Reset}, true
	case line == ".resync":
		return Command{Kind: Resync}, true
	case strings.HasPrefix(line, ".ask "):
		return Command{Kind: Ask, Arg: strings.TrimSpace(line[len(".ask "):])}, true
	case !strings.HasPrefix(line, "."):
		return Command{Kind: Raw, Arg: line}, true
	}
	return Command{Kind: Help, Arg: line}, true
}

// HelpText lists the console commands.
const HelpText = `Usage:
.exit - Exit the REPL
.exit break - Interrupt the device app, then exit
.resend [filename] - Resend the main Lua file and standard libraries
.python <code> - Execute Python code (developer mode only)
.resync - Resync the Frame device time
.reset - Reset the Frame device
.ask <text> - Ask the assistant without the microphone
All other commands are sent as Lua code to the Frame device.`
