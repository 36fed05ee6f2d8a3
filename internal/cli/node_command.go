package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"soundctl.click/internal/config"
	"soundctl.click/internal/endpoint"
)

func newNodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node <IN|OUT> <hint|*>",
		Short: "Show or set the topology volume node behind a device",
		Long: `Follow a device's topology connector to the part on the device side and
show its per-channel levels. With --set the level of the chosen channel, or of
every channel, is set from a linear scalar; values above 1.0 boost.`,
		Args: cobra.ExactArgs(2),
		RunE: runNodeE,
	}

	cmd.Flags().Int("connector", 0, "Topology connector index")
	cmd.Flags().Int("channel", endpoint.AllChannels, "Channel to read or set; -1 for all channels")
	cmd.Flags().Float64("set", 0, "Set the level to this linear scalar")
	cmd.Flags().String("role", "", "Default device role: console, multimedia, communications or auto")
	cmd.Flags().Int("index", -1, "Select the device by enumeration index instead of name")

	return cmd
}

func runNodeE(cmd *cobra.Command, args []string) error {
	cli, err := cliFromCommand(cmd)
	if err != nil {
		return err
	}
	cfg := cli.config()

	connector, _ := cmd.Flags().GetInt("connector")
	channel, _ := cmd.Flags().GetInt("channel")
	index, _ := cmd.Flags().GetInt("index")
	role, _ := cmd.Flags().GetString("role")
	if role == "" {
		role = cfg.DefaultRole
	}
	if role != "" && !config.IsValidRole(role) {
		return &usageError{msg: fmt.Sprintf("invalid role %q", role)}
	}
	if channel < endpoint.AllChannels {
		return &usageError{msg: fmt.Sprintf("invalid channel %d", channel)}
	}

	level, set := 0.0, cmd.Flags().Changed("set")
	if set {
		level, _ = cmd.Flags().GetFloat64("set")
		// zero maps to -Inf dB, which no node accepts
		if math.IsNaN(level) || math.IsInf(level, 0) || level <= 0 {
			return fmt.Errorf("%w: node level must be a positive scalar, got %v", ErrInvalidVolume, level)
		}
	}

	dir := endpoint.Capture
	if args[0] == "OUT" {
		dir = endpoint.Render
	}

	if set {
		unlock := cli.lockDevices(cmd.Context())
		defer unlock()
	}

	catalog, closeCatalog, err := cli.openCatalog(cfg)
	if err != nil {
		return err
	}
	defer closeCatalog()

	dev, err := resolveDevice(catalog, dir, Selector{Hint: args[1], Index: index, Role: role})
	if err != nil {
		return err
	}
	deviceName, err := dev.FriendlyName()
	if err != nil {
		dev.Close()
		return err
	}

	node, err := dev.UnderlyingVolume(connector)
	// the node stays valid without its device
	dev.Close()
	if err != nil {
		return err
	}
	defer node.Close()

	if set {
		if err := node.SetLevel(level, channel); err != nil {
			return err
		}
	}

	return printNode(cmd, deviceName, connector, node, channel)
}

func printNode(cmd *cobra.Command, deviceName string, connector int, node *endpoint.VolumeNode, channel int) error {
	out := cmd.OutOrStdout()

	name := node.Name()
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(out, "%s, connector %d: %s\n", deviceName, connector, name)

	channels, err := node.Channels()
	if err != nil {
		return err
	}

	for ch := 0; ch < channels; ch++ {
		if channel != endpoint.AllChannels && ch != channel {
			continue
		}
		v, err := node.Level(ch)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  channel %d: %.4f (%+.2f dB)\n", ch, v, endpoint.ScalarToDB(v))
	}

	if channel == endpoint.AllChannels {
		v, err := node.Level(endpoint.AllChannels)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  mean: %.4f (%+.2f dB)\n", v, endpoint.ScalarToDB(v))
	}
	return nil
}
