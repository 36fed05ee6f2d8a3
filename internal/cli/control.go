package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"soundctl.click/internal/config"
	"soundctl.click/internal/endpoint"
)

// ErrInvalidVolume rejects a volume flag without a number in [0, 1]
var ErrInvalidVolume = errors.New("invalid volume")

// usageError marks a malformed command line
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

// MuteAction is the mute change requested by the M, m and T flags
type MuteAction int

const (
	MuteKeep MuteAction = iota
	MuteOn
	MuteOff
	MuteToggle
)

// VolumeAction is the volume change requested by the s, i and d flags
type VolumeAction int

const (
	VolumeKeep VolumeAction = iota
	VolumeSet
	VolumeUp
	VolumeDown
)

// Request is one parsed control invocation
type Request struct {
	Direction endpoint.Direction
	Hint      string
	Mute      MuteAction
	Volume    VolumeAction
	Amount    float64
}

// positionalArgs validates the kind, hint, flags and number arguments
func positionalArgs(cmd *cobra.Command, args []string) error {
	if version, _ := cmd.Flags().GetBool("version"); version {
		return nil
	}
	if len(args) < 3 || len(args) > 4 {
		return &usageError{msg: fmt.Sprintf("invalid parameters, got %d, want <IN|OUT> <hint|*> <flags> [number]", len(args))}
	}
	return nil
}

// ParseRequest decodes the positional arguments. Only the exact kind OUT
// selects render devices; anything else selects capture devices.
func ParseRequest(args []string) (Request, error) {
	if len(args) < 3 {
		return Request{}, &usageError{msg: fmt.Sprintf("invalid parameters, got %d", len(args))}
	}

	req := Request{
		Direction: endpoint.Capture,
		Hint:      args[1],
	}
	if args[0] == "OUT" {
		req.Direction = endpoint.Render
	}
	req.Mute, req.Volume = parseModifiers(args[2])

	if req.Volume == VolumeKeep {
		return req, nil
	}

	if len(args) < 4 {
		return req, fmt.Errorf("%w: flag %q needs a number in [0.0, 1.0]", ErrInvalidVolume, args[2])
	}
	amount, err := strconv.ParseFloat(args[3], 64)
	if err != nil || math.IsNaN(amount) || amount < 0 || amount > 1 {
		return req, fmt.Errorf("%w: %q is not in [0.0, 1.0]", ErrInvalidVolume, args[3])
	}
	req.Amount = amount
	return req, nil
}

// parseModifiers decodes the flag letters. T wins over M, M over m; s wins
// over i, i over d. Unknown letters are ignored.
func parseModifiers(flags string) (MuteAction, VolumeAction) {
	mute := MuteKeep
	switch {
	case strings.ContainsRune(flags, 'T'):
		mute = MuteToggle
	case strings.ContainsRune(flags, 'M'):
		mute = MuteOn
	case strings.ContainsRune(flags, 'm'):
		mute = MuteOff
	}

	volume := VolumeKeep
	switch {
	case strings.ContainsRune(flags, 's'):
		volume = VolumeSet
	case strings.ContainsRune(flags, 'i'):
		volume = VolumeUp
	case strings.ContainsRune(flags, 'd'):
		volume = VolumeDown
	}
	return mute, volume
}

// isDefaultSelector reports whether hint asks for the default device
func isDefaultSelector(hint string) bool {
	return hint == "" || strings.HasPrefix(hint, "*")
}

// Selector picks the device a command operates on
type Selector struct {
	Hint  string
	Index int // negative when unset
	Role  string
}

// resolveDevice finds the device for sel in dir: by index when set, the
// default for a default selector, else by name substring
func resolveDevice(catalog *endpoint.Catalog, dir endpoint.Direction, sel Selector) (*endpoint.Device, error) {
	switch {
	case sel.Index >= 0:
		return catalog.ByIndex(dir, sel.Index)

	case isDefaultSelector(sel.Hint):
		if sel.Role == config.RoleAuto {
			return catalog.FindDefault(dir)
		}
		role, err := endpoint.ParseRole(sel.Role)
		if err != nil {
			return nil, err
		}
		return catalog.Default(dir, role)

	default:
		dev, ok, err := catalog.ByName(dir, sel.Hint)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: no %s device name contains %q", endpoint.ErrInvalidDevice, dir, sel.Hint)
		}
		return dev, nil
	}
}

// applyRequest performs the mute change, then the volume change
func applyRequest(dev *endpoint.Device, req Request) error {
	switch req.Mute {
	case MuteToggle:
		muted, err := dev.Muted()
		if err != nil {
			return err
		}
		if err := dev.SetMute(!muted); err != nil {
			return err
		}
	case MuteOn:
		if err := dev.SetMute(true); err != nil {
			return err
		}
	case MuteOff:
		if err := dev.SetMute(false); err != nil {
			return err
		}
	}

	if req.Volume == VolumeKeep {
		return nil
	}
	if req.Volume == VolumeSet {
		return dev.SetVolume(req.Amount)
	}

	current, err := dev.Volume()
	if err != nil {
		return err
	}
	next := math.Min(1, current+req.Amount)
	if req.Volume == VolumeDown {
		next = math.Max(0, current-req.Amount)
	}
	slog.Debug("adjusting master volume", "from", current, "to", next)
	return dev.SetVolume(next)
}

// DeviceState is a device's mute and volume after a change
type DeviceState struct {
	Name   string
	Muted  bool
	Volume float64
}

func (s DeviceState) String() string {
	mute := "unmuted"
	if s.Muted {
		mute = "muted"
	}
	return fmt.Sprintf("%s: %s, volume %.0f%%", s.Name, mute, s.Volume*100)
}

func readState(dev *endpoint.Device) (DeviceState, error) {
	var (
		state DeviceState
		err   error
	)
	if state.Name, err = dev.FriendlyName(); err != nil {
		return state, err
	}
	if state.Muted, err = dev.Muted(); err != nil {
		return state, err
	}
	state.Volume, err = dev.Volume()
	return state, err
}

// changeDevice resolves the device and applies req while holding the
// soundctl lock
func (c *CLI) changeDevice(cmd *cobra.Command, cfg *config.Config, req Request, sel Selector) (DeviceState, error) {
	unlock := c.lockDevices(cmd.Context())
	defer unlock()

	catalog, closeCatalog, err := c.openCatalog(cfg)
	if err != nil {
		return DeviceState{}, err
	}
	defer closeCatalog()

	dev, err := resolveDevice(catalog, req.Direction, sel)
	if err != nil {
		return DeviceState{}, err
	}
	defer dev.Close()

	if err := applyRequest(dev, req); err != nil {
		return DeviceState{}, err
	}
	return readState(dev)
}

// runControlE handles the positional control form of the root command
func runControlE(cmd *cobra.Command, args []string) error {
	cli, err := cliFromCommand(cmd)
	if err != nil {
		return err
	}
	if handleVersionFlag(cmd, cli) {
		return nil
	}

	req, err := ParseRequest(args)
	if err != nil {
		return err
	}

	cfg := cli.config()
	index, _ := cmd.Flags().GetInt("index")
	role, _ := cmd.Flags().GetString("role")
	if role == "" {
		role = cfg.DefaultRole
	}
	if role != "" && !config.IsValidRole(role) {
		return &usageError{msg: fmt.Sprintf("invalid role %q", role)}
	}
	echo, _ := cmd.Flags().GetBool("echo")

	slog.Debug("control request parsed",
		"direction", req.Direction,
		"hint", req.Hint,
		"index", index,
		"role", role,
		"mute", req.Mute,
		"volume", req.Volume,
		"amount", req.Amount)

	state, err := cli.changeDevice(cmd, cfg, req, Selector{Hint: req.Hint, Index: index, Role: role})
	if err != nil {
		return err
	}
	slog.Info("device updated", "device", state.Name, "muted", state.Muted, "volume", state.Volume)

	if echo || cfg.LogLevel == "debug" {
		fmt.Fprintln(cmd.OutOrStdout(), state)
	}

	cli.notify(cfg, state.String())
	if req.Direction == endpoint.Render {
		cli.playChime(cmd.Context(), cfg, state.Name)
	}
	return nil
}
