package client

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/minaorangina/flightchess/protocol"
)

var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrFnBadCommand   = func(cmd, reason string) error {
		return fmt.Errorf("%s: %s", cmd, reason)
	}
)

// CommandKind is a terminal command
type CommandKind string

const (
	CmdRoll  CommandKind = "roll"
	CmdMove  CommandKind = "move"
	CmdUse   CommandKind = "use"
	CmdReady CommandKind = "ready"
	CmdState CommandKind = "state"
	CmdHelp  CommandKind = "help"
	CmdQuit  CommandKind = "quit"
)

type Command struct {
	Kind     CommandKind
	CardID   int
	TargetID string
}

// ParseCommand reads one line of terminal input. Targets may be given by
// name or id and are resolved against the snapshot.
func ParseCommand(line string, s protocol.GameStateData) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}

	kind := CommandKind(strings.ToLower(fields[0]))
	switch kind {
	case CmdRoll, CmdMove, CmdReady, CmdState, CmdHelp, CmdQuit:
		return Command{Kind: kind}, nil

	case CmdUse:
		if len(fields) < 2 {
			return Command{}, ErrFnBadCommand("use", "missing card id")
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return Command{}, ErrFnBadCommand("use", "card id must be a number")
		}
		cmd := Command{Kind: CmdUse, CardID: id}

		if len(fields) > 2 {
			target := strings.Join(fields[2:], " ")
			cmd.TargetID = resolvePlayer(s, target)
			if cmd.TargetID == "" {
				return Command{}, ErrFnBadCommand("use", fmt.Sprintf("no player called %q", target))
			}
		}
		return cmd, nil
	}

	return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, fields[0])
}

func resolvePlayer(s protocol.GameStateData, nameOrID string) string {
	for _, p := range s.Players {
		if p.ID == nameOrID || strings.EqualFold(p.Name, nameOrID) {
			return p.ID
		}
	}
	return ""
}

// Execute sends the request a command stands for. Commands that only
// affect the terminal return false.
func (c *Client) Execute(cmd Command) (bool, error) {
	switch cmd.Kind {
	case CmdRoll:
		return true, c.Roll()
	case CmdMove:
		return true, c.Move()
	case CmdUse:
		return true, c.UseCard(cmd.CardID, cmd.TargetID)
	case CmdReady:
		return true, c.Ready()
	case CmdQuit:
		return true, c.Leave()
	}
	return false, nil
}
