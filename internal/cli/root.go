// Package cli implements the shelf command-line interface: the HTTP server
// and direct access to the project records.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/internal/logging"
	"github.com/mesh-intelligence/shelf/internal/paths"
	"github.com/mesh-intelligence/shelf/pkg/shelf"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags     rootFlags
	configDir string
	dataDir   string
	v         *viper.Viper
	logger    *zap.Logger
}

// NewRootCmd creates the top-level "shelf" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:     "shelf",
		Short:   "A local catalogue of development projects",
		Long:    "Shelf keeps a list of your development projects (name, URL, local path,\nthumbnail) and serves it as a small web page.",
		Version: shelf.Version,
		// Errors are printed once by run with the matching exit code.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: per-user config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: per-user data dir)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newServeCmd(a),
		newListCmd(a),
		newGetCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
	)
	return root
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "shelf:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// setup resolves directories, loads config.yaml and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, v.GetString(cfgKeyDataDir), configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	level := v.GetString(cfgKeyLogLevel)
	if cmd.Name() != "serve" && !v.GetBool(cfgKeyDebug) {
		// Record commands only report problems.
		level = "warn"
	}
	logger, err := logging.New(logging.Options{
		Level:   level,
		File:    v.GetString(cfgKeyLogFile),
		Debug:   v.GetBool(cfgKeyDebug),
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return userError(fmt.Errorf("logging: %w", err))
	}

	a.configDir, a.dataDir, a.v, a.logger = configDir, dataDir, v, logger
	return nil
}

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// exitCode maps an error to an exit code. Storage failures are system
// errors; bad input, unknown ids and cobra's usage errors are user errors.
func exitCode(err error) int {
	var ee *exitError
	switch {
	case err == nil:
		return exitSuccess
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, types.ErrStorage):
		return exitSysError
	default:
		return exitUserError
	}
}
