package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		// a broken config file must not block rewriting it
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Long: `Write a config file holding every setting at its default value. The file
goes to the user config directory unless --path names another location.
An existing file is kept unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: runConfigInitE,
	}
	initCmd.Flags().String("path", "", "Write the config file here instead of the user config directory")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	configCmd.AddCommand(initCmd)
	return configCmd
}

func runConfigInitE(cmd *cobra.Command, args []string) error {
	cli, err := cliFromCommand(cmd)
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("path")
	force, _ := cmd.Flags().GetBool("force")
	if path == "" {
		path = cli.configManager.UserConfigPath()
	}
	if path == "" {
		return fmt.Errorf("no user config directory found, use --path")
	}

	exists, err := afero.Exists(cli.configManager.Filesystem(), path)
	if err != nil {
		return fmt.Errorf("check %s: %w", path, err)
	}
	if exists && !force {
		return &usageError{msg: fmt.Sprintf("%s already exists, use --force to overwrite it", path)}
	}

	if err := cli.configManager.SaveToFile(cli.configManager.GetDefaultConfig(), path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
