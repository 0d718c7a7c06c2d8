package dispatcher

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownCommand is returned for a command outside the menu.
var ErrUnknownCommand = errors.New("unknown command")

// Command is an operator command from the marker menu.
type Command int

// The menu, in display order.
const (
	PointHead Command = iota
	AddPoint
	PlaceMarkerOverGripper
	ExecuteTrajectory
	MoveToTrajectoryStart
	ClearTrajectory
	PublishTrajectory
	PlanArm
	MoveArm
	UpdatePlanningScene
)

var commandTitles = [...]string{
	PointHead:              "Point head",
	AddPoint:               "Add point",
	PlaceMarkerOverGripper: "Place marker over gripper",
	ExecuteTrajectory:      "Execute trajectory",
	MoveToTrajectoryStart:  "Move to trajectory start",
	ClearTrajectory:        "Clear trajectory",
	PublishTrajectory:      "Publish trajectory",
	PlanArm:                "Plan arm (collision-aware)",
	MoveArm:                "Move arm (non-collision)",
	UpdatePlanningScene:    "Update planning scene",
}

// Commands returns every command in menu order.
func Commands() []Command {
	commands := make([]Command, 0, len(commandTitles))
	for c := range commandTitles {
		commands = append(commands, Command(c))
	}
	return commands
}

// Menu returns the menu entry titles in menu order.
func Menu() []string {
	return append([]string(nil), commandTitles[:]...)
}

// String returns the menu title.
func (c Command) String() string {
	if !c.Valid() {
		return "Command(" + strconv.Itoa(int(c)) + ")"
	}
	return commandTitles[c]
}

// Valid reports whether c is on the menu.
func (c Command) Valid() bool {
	return c >= 0 && int(c) < len(commandTitles)
}

// MenuEntryID is the id of c's menu entry. Entry ids start at 1.
func (c Command) MenuEntryID() int {
	return int(c) + 1
}

// CommandFromMenuEntry returns the command behind a menu entry id.
func CommandFromMenuEntry(id int) (Command, error) {
	c := Command(id - 1)
	if !c.Valid() {
		return 0, errors.Wrapf(ErrUnknownCommand, "menu entry %d", id)
	}
	return c, nil
}

// ParseCommand accepts a menu entry id or a title, ignoring case, surrounding whitespace, and
// using either spaces or underscores between words ("add_point").
func ParseCommand(s string) (Command, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.Atoi(s); err == nil {
		return CommandFromMenuEntry(id)
	}
	normalized := strings.ReplaceAll(strings.ToLower(s), "_", " ")
	for c, title := range commandTitles {
		if strings.ToLower(title) == normalized || strings.ToLower(strings.SplitN(title, " (", 2)[0]) == normalized {
			return Command(c), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownCommand, "%q", s)
}
