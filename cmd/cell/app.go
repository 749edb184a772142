package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepnoodle-ai/cellscript"
	"github.com/deepnoodle-ai/cellscript/errz"
	"github.com/deepnoodle-ai/cellscript/parser"
	"github.com/deepnoodle-ai/cellscript/vm"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Process exit codes
const (
	exitOK      = 0
	exitCompile = 1 // syntax and compile errors
	exitRuntime = 2
	exitUsage   = 3 // bad flags, unreadable files
)

// app holds the state shared by every command of one CLI invocation.
type app struct {
	v      *viper.Viper
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger zerolog.Logger
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		v:      viper.New(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: zerolog.Nop(),
	}
}

func (a *app) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cell",
		Short:         "Compile and run cellscript programs",
		Version:       fmt.Sprintf("%s (%s, %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.cellscript.yaml)")
	flags.String("log-level", "warn", "log level: trace, debug, info, warn, error")
	flags.Bool("no-color", false, "disable colored output")
	flags.Bool("trace", false, "log every instruction, call, and return to stderr")
	flags.Int("max-stack-depth", vm.DefaultMaxStackDepth, "value stack capacity")
	flags.Int("max-frame-depth", vm.DefaultMaxFrameDepth, "maximum call depth")
	flags.StringP("output", "o", "text", "output format: text or json")
	for _, name := range []string{"log-level", "no-color", "trace", "max-stack-depth", "max-frame-depth", "output"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	cmd.AddCommand(
		a.runCommand(),
		a.evalCommand(),
		a.disCommand(),
		a.astCommand(),
		a.buildCommand(),
		a.execCommand(),
		a.docsCommand(),
		a.versionCommand(),
	)
	return cmd
}

// initConfig reads the config file and environment, then sets up color and
// logging.
func (a *app) initConfig(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("CELL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return usageError(fmt.Errorf("reading config: %w", err))
		}
	} else if home, err := homedir.Dir(); err == nil {
		a.v.SetConfigFile(filepath.Join(home, ".cellscript.yaml"))
		if err := a.v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return usageError(fmt.Errorf("reading config: %w", err))
			}
		}
	}

	if a.v.GetBool("no-color") || !isTerminal(a.stdout) {
		color.NoColor = true
	}

	level, err := zerolog.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return usageError(fmt.Errorf("invalid log level: %w", err))
	}
	if a.v.GetBool("trace") && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     a.stderr,
		NoColor: color.NoColor,
	}).Level(level).With().Timestamp().Logger()

	switch format := a.v.GetString("output"); format {
	case "text", "json":
	default:
		return usageError(fmt.Errorf("unknown output format: %s", format))
	}
	return nil
}

// options returns the cellscript options derived from flags and config.
func (a *app) options(filename string) []cellscript.Option {
	opts := []cellscript.Option{
		cellscript.WithFilename(filename),
		cellscript.WithOutput(a.stdout),
		cellscript.WithLogger(a.logger),
		cellscript.WithMaxStackDepth(a.v.GetInt("max-stack-depth")),
		cellscript.WithMaxFrameDepth(a.v.GetInt("max-frame-depth")),
	}
	if a.v.GetBool("trace") {
		opts = append(opts, cellscript.WithObserver(vm.NewLogObserver(a.logger, vm.StepAll)))
	}
	return opts
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// cliError carries an exit code for errors raised by the CLI itself.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func usageError(err error) error {
	return &cliError{code: exitUsage, err: err}
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	phase, ok := errz.PhaseOf(err)
	if !ok {
		return exitUsage
	}
	if phase == errz.RuntimePhase {
		return exitRuntime
	}
	return exitCompile
}

var red = color.New(color.FgRed).SprintFunc()

// printError writes err to stderr. Located errors are shown with a snippet
// of the offending line.
func (a *app) printError(err error) {
	if errs := parser.SyntaxErrors(err); len(errs) > 1 {
		for _, e := range errs {
			fmt.Fprint(a.stderr, red(e.FriendlyErrorMessage()))
		}
		return
	}
	var e *errz.Error
	if errors.As(err, &e) {
		fmt.Fprint(a.stderr, red(e.FriendlyErrorMessage()))
		return
	}
	fmt.Fprintln(a.stderr, red(err.Error()))
}
