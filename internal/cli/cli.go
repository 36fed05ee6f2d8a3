package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"soundctl.click/internal/chime"
	"soundctl.click/internal/config"
	"soundctl.click/internal/endpoint"
	"soundctl.click/internal/fs"
	"soundctl.click/internal/lock"
	"soundctl.click/internal/platform"
)

const Version = "1.1.0"

// appName titles desktop notifications
const appName = "SoundCtl"

// lockTimeout bounds the wait for another soundctl process
const lockTimeout = 3 * time.Second

// PlatformOpener opens the audio backend named in the configuration. The
// platform it returns stays open until the CLI run ends.
type PlatformOpener func(backend string) (endpoint.Platform, error)

// CLI represents the command-line interface
type CLI struct {
	rootCmd          *cobra.Command
	configManager    *config.ConfigManager
	openPlatform     PlatformOpener
	closePlatforms   func() error
	terminalDetector TerminalDetector
	notifier         Notifier
	chimePlayer      chime.Player
	chimeFS          afero.Fs
	sleep            func(time.Duration)
	lockPath         string

	cfg     *config.Config
	logFile io.Closer
}

type cliContextKey struct{}

// NewCLI creates a new CLI instance
func NewCLI() *CLI {
	slog.Debug("creating new CLI instance")

	rootCmd := &cobra.Command{
		Use:   "soundctl <IN|OUT> <hint|*> <flags> [number]",
		Short: "Mute, unmute or change the volume of an audio device",
		Long: `SoundCtl finds a capture (IN) or render (OUT) audio device and changes
its mute state or master volume.

Device: a substring of the device name, or * (or an empty string) for the
default device of the selected role.

Flags, in any combination:
  M  mute
  m  unmute
  T  toggle mute              (T wins over M, M over m)
  s  set volume to number     (s wins over i, i over d)
  i  increase volume by number
  d  decrease volume by number

number must lie in [0.0, 1.0].`,
		Example: `  soundctl OUT Yeti T        toggle mute on the render device with Yeti in its name
  soundctl IN Line ms 1.0    unmute the capture device with Line in its name, volume 100%
  soundctl OUT "*" i 0.05    raise the default render device by 5%`,
		Args:              positionalArgs,
		PersistentPreRunE: preRunE,
		RunE:              runControlE,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("backend", "", "Audio backend (auto, wasapi, miniaudio, memory)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log debug output to stderr")

	rootCmd.Flags().String("role", "", "Default device role: console, multimedia, communications or auto")
	rootCmd.Flags().Int("index", -1, "Select the device by enumeration index instead of name")
	rootCmd.Flags().Bool("echo", false, "Print the device state after the change")
	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newNodeCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand())

	return &CLI{
		rootCmd: rootCmd,
		sleep:   time.Sleep,
	}
}

// contextWithCLI stores CLI instance in context for command handlers
func contextWithCLI(cli *CLI) context.Context {
	return context.WithValue(context.Background(), cliContextKey{}, cli)
}

// cliFromContext extracts CLI instance from context
func cliFromContext(ctx context.Context) *CLI {
	if cli, ok := ctx.Value(cliContextKey{}).(*CLI); ok {
		return cli
	}
	return nil
}

func cliFromCommand(cmd *cobra.Command) (*CLI, error) {
	cli := cliFromContext(cmd.Context())
	if cli == nil {
		slog.Error("CLI instance not found in context")
		return nil, fmt.Errorf("CLI instance not found in context")
	}
	return cli, nil
}

// Run executes the CLI with the given arguments and I/O streams. The first
// argument is the program name. Failures are reported on stderr; the exit
// status is 0 unless strict_exit_code is configured.
func (c *CLI) Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	slog.Debug("CLI run started", "args", args)

	// version needs no configuration or audio backend
	if len(args) == 2 && (args[1] == "--version" || args[1] == "-v") {
		c.printVersion(stdout)
		return 0
	}

	c.cfg = nil
	c.initializeSystems()
	defer c.closeLogFile()
	defer c.releasePlatforms()

	c.rootCmd.SetArgs(normalizeArgs(args))
	c.rootCmd.SetIn(stdin)
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)
	c.rootCmd.SetContext(contextWithCLI(c))

	if err := c.rootCmd.Execute(); err != nil {
		return c.fail(err, stderr)
	}
	return 0
}

// normalizeArgs drops the program name and maps the single-dash help
// spelling to cobra's. A negative number that is not a flag value moves
// behind "--" so it reaches the volume check instead of the flag parser.
func normalizeArgs(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	out := make([]string, 0, len(args)-1)
	var numbers []string
	for i, arg := range args[1:] {
		switch {
		case arg == "-help":
			out = append(out, "--help")
		case isNegativeNumber(arg) && !strings.HasPrefix(args[i], "-"):
			numbers = append(numbers, arg)
		default:
			out = append(out, arg)
		}
	}
	if len(numbers) > 0 {
		out = append(append(out, "--"), numbers...)
	}
	return out
}

func isNegativeNumber(arg string) bool {
	if !strings.HasPrefix(arg, "-") {
		return false
	}
	_, err := strconv.ParseFloat(arg, 64)
	return err == nil
}

// initializeSystems fills in every dependency a test did not inject
func (c *CLI) initializeSystems() {
	if c.configManager == nil {
		c.configManager = config.NewConfigManager()
	}
	if c.openPlatform == nil {
		c.openPlatform = platform.Open
		c.closePlatforms = platform.Close
	}
	if c.terminalDetector == nil {
		c.terminalDetector = &DefaultTerminalDetector{}
	}
	if c.notifier == nil {
		c.notifier = desktopNotifier{}
	}
	if c.chimeFS == nil {
		c.chimeFS = fs.NewDefaultFactory().ReadOnly()
	}
	if c.sleep == nil {
		c.sleep = time.Sleep
	}
}

// preRunE loads the configuration and sets up logging for every command
func preRunE(cmd *cobra.Command, args []string) error {
	cli, err := cliFromCommand(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadAndValidateConfig(cmd, cli)
	if err != nil {
		return err
	}
	cli.cfg = cfg

	cli.setupLogging(cfg, cmd.ErrOrStderr())
	return nil
}

// loadAndValidateConfig loads configuration from flags and files, applies
// overrides, and validates
func loadAndValidateConfig(cmd *cobra.Command, cli *CLI) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	backend, _ := cmd.Flags().GetString("backend")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := cli.configManager.Load(configFile)
	if err != nil {
		slog.Error("config load failed", "file", configFile, "error", err)
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if backend != "" {
		cfg.Backend = backend
		slog.Debug("backend override applied", "value", backend)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	if err := cli.configManager.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// config returns the loaded configuration, or the defaults when loading
// never happened or failed
func (c *CLI) config() *config.Config {
	if c.cfg != nil {
		return c.cfg
	}
	return c.configManager.GetDefaultConfig()
}

// openCatalog opens the configured backend and snapshots its devices. The
// returned func closes the catalog; the backend is released when Run ends.
func (c *CLI) openCatalog(cfg *config.Config) (*endpoint.Catalog, func(), error) {
	p, err := c.openPlatform(cfg.Backend)
	if err != nil {
		return nil, nil, fmt.Errorf("open audio backend %q: %w", cfg.Backend, err)
	}

	catalog, err := endpoint.NewCatalog(p)
	if err != nil {
		return nil, nil, err
	}

	return catalog, func() {
		if err := catalog.Close(); err != nil {
			slog.Warn("error closing device catalog", "error", err)
		}
	}, nil
}

func (c *CLI) releasePlatforms() {
	if c.closePlatforms == nil {
		return
	}
	if err := c.closePlatforms(); err != nil {
		slog.Warn("error closing audio backend", "error", err)
	}
}

// lockDevices serializes device changes with other soundctl processes. A
// lock that cannot be taken in time is logged and the change goes ahead.
func (c *CLI) lockDevices(ctx context.Context) func() {
	path := c.lockPath
	if path == "" {
		path = c.configManager.ResolveLockFilePath()
	}

	l := lock.New(path)
	locked, err := l.TryLock()
	if err == nil && !locked {
		slog.Debug("another soundctl process holds the device lock, waiting",
			"file_path", l.Path(), "timeout", lockTimeout)
		ctx, cancel := context.WithTimeout(ctx, lockTimeout)
		defer cancel()
		err = l.Acquire(ctx)
	}
	if err != nil {
		slog.Warn("changing device without the soundctl lock", "file_path", l.Path(), "error", err)
		return func() {}
	}
	return func() {
		if err := l.Unlock(); err != nil {
			slog.Warn("error releasing soundctl lock", "error", err)
		}
	}
}

// fail reports err and returns the exit status
func (c *CLI) fail(err error, stderr io.Writer) int {
	if c.configManager == nil {
		c.initializeSystems()
	}
	cfg := c.config()

	slog.Info("command failed", "error", err)
	fmt.Fprintf(stderr, "Error: %v\n", err)

	var usage *usageError
	if errors.As(err, &usage) {
		fmt.Fprintln(stderr, "Try 'soundctl --help'.")
	}

	c.notify(cfg, "Error: "+err.Error())
	c.exitDelay(cfg, stderr)

	if cfg.StrictExitCode {
		return 1
	}
	return 0
}

// exitDelay keeps the console open long enough to read the error when
// stderr is an interactive terminal
func (c *CLI) exitDelay(cfg *config.Config, stderr io.Writer) {
	if cfg.ExitDelaySeconds <= 0 || !c.isInteractiveWriter(stderr) {
		return
	}
	fmt.Fprintf(stderr, "Closing in %d second(s)...\n", cfg.ExitDelaySeconds)
	c.sleep(time.Duration(cfg.ExitDelaySeconds) * time.Second)
}

func (c *CLI) isInteractiveWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return c.isInteractiveTerminal(int(f.Fd()))
}

// printVersion prints version information
func (c *CLI) printVersion(w io.Writer) {
	fmt.Fprintf(w, "soundctl version %s\nAudio endpoint mute and volume control\n", Version)
}

// handleVersionFlag checks and handles the version flag
// Returns true if version was handled and processing should stop
func handleVersionFlag(cmd *cobra.Command, cli *CLI) bool {
	version, _ := cmd.Flags().GetBool("version")
	if version {
		cli.printVersion(cmd.OutOrStdout())
	}
	return version
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := cliFromCommand(cmd)
			if err != nil {
				return err
			}
			cli.printVersion(cmd.OutOrStdout())
			return nil
		},
	}
}
