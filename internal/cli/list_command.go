package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"soundctl.click/internal/endpoint"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [in|out]",
		Short: "List active audio devices",
		Long: `List the active capture and render devices in enumeration order. The
index works with --index; * marks the console default.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runListE,
	}
}

func runListE(cmd *cobra.Command, args []string) error {
	cli, err := cliFromCommand(cmd)
	if err != nil {
		return err
	}

	directions := []endpoint.Direction{endpoint.Render, endpoint.Capture}
	if len(args) == 1 {
		dir, err := endpoint.ParseDirection(args[0])
		if err != nil {
			return &usageError{msg: err.Error()}
		}
		directions = []endpoint.Direction{dir}
	}

	catalog, closeCatalog, err := cli.openCatalog(cli.config())
	if err != nil {
		return err
	}
	defer closeCatalog()

	out := cmd.OutOrStdout()
	for i, dir := range directions {
		infos, err := catalog.List(dir)
		if err != nil {
			return err
		}

		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s devices (%s):\n", dir, directionKind(dir))
		if len(infos) == 0 {
			fmt.Fprintln(out, "  (none)")
		}
		for _, info := range infos {
			marker := " "
			if info.IsDefault {
				marker = "*"
			}
			fmt.Fprintf(out, "%s [%d] %s  %s\n", marker, info.Index, info.Name, info.ID)
		}
	}
	return nil
}

// directionKind is the positional spelling of dir
func directionKind(dir endpoint.Direction) string {
	if dir == endpoint.Render {
		return "OUT"
	}
	return "IN"
}
