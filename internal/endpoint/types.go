// Package endpoint models the audio endpoints of the host: enumeration of
// capture and render devices, device resolution, master volume and mute,
// and the per-channel volume nodes found in a device topology.
package endpoint

import (
	"fmt"
	"strings"
)

// Direction selects the data-flow space a query targets
type Direction int

const (
	// Capture covers recording endpoints (microphones, line-in)
	Capture Direction = iota
	// Render covers playback endpoints (speakers, headphones)
	Render
)

// Directions lists both directions in enumeration order
var Directions = []Direction{Capture, Render}

// String returns the lowercase direction name
func (d Direction) String() string {
	switch d {
	case Capture:
		return "capture"
	case Render:
		return "render"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection parses a direction name; in/out aliases are accepted
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "capture", "mic", "input":
		return Capture, nil
	case "out", "render", "speaker", "output":
		return Render, nil
	default:
		return Capture, fmt.Errorf("invalid direction %q, must be one of: in, out, capture, render", s)
	}
}

// Role is one of the three default-device designations of the host
type Role int

const (
	// Console is the general-purpose default
	Console Role = iota
	// Multimedia is the default for music and movies
	Multimedia
	// Communications is the default for voice chat
	Communications
)

// Roles is the order in which FindDefault tries roles
var Roles = []Role{Console, Multimedia, Communications}

// String returns the lowercase role name
func (r Role) String() string {
	switch r {
	case Console:
		return "console"
	case Multimedia:
		return "multimedia"
	case Communications:
		return "communications"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole parses a role name
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "console", "":
		return Console, nil
	case "multimedia":
		return Multimedia, nil
	case "communications":
		return Communications, nil
	default:
		return Console, fmt.Errorf("invalid role %q, must be one of: console, multimedia, communications", s)
	}
}

// AllChannels selects every channel of a volume node
const AllChannels = -1

// Info describes one enumerated endpoint without taking ownership of it
type Info struct {
	Index     int
	Name      string
	ID        string
	Direction Direction
	IsDefault bool
}
