// Package arm names the two manipulator arms of a dual-arm robot.
package arm

import (
	"strings"

	"github.com/pkg/errors"
)

// Side selects one of the two arms. It is fixed for the lifetime of a session.
type Side int

const (
	// Left is the robot's left arm.
	Left Side = iota
	// Right is the robot's right arm.
	Right
)

// ErrInvalidSide is returned when parsing anything other than "left" or "right".
var ErrInvalidSide = errors.New("arm side must be one of [left|right]")

// Sides returns both sides in a stable order.
func Sides() []Side {
	return []Side{Left, Right}
}

// ParseSide parses "left" or "right". Any other value is an error.
func ParseSide(s string) (Side, error) {
	switch strings.TrimSpace(s) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return Left, errors.Wrapf(ErrInvalidSide, "got %q", s)
	}
}

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Valid returns whether s is one of the two defined sides.
func (s Side) Valid() bool {
	return s == Left || s == Right
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, errors.Errorf("invalid arm side %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(text []byte) error {
	parsed, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
