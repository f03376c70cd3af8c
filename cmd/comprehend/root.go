package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/comprehend/config"
	"github.com/kbukum/comprehend/definition"
	"github.com/kbukum/comprehend/errors"
	"github.com/kbukum/comprehend/logger"
)

// Exit codes.
const (
	exitFailure   = 1
	exitAuthoring = 2
	exitNotFound  = 3
)

// app holds state shared by every subcommand.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configFile string
	envFile    string

	cfg    *config.Config
	log    *logger.Logger
	loader definition.Loader
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "comprehend",
		Short: "Run lazy multi-clause comprehensions defined in YAML",
		Long: "Run lazy multi-clause comprehensions defined in YAML.\n\n" +
			"A definition names a yield expression and an ordered list of\n" +
			"\"for var in expr if cond\" clauses. Results are produced one at a time.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (default: search ./comprehend.yaml, ./config.yml, ...)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "dotenv file loaded before the environment is read")

	root.AddCommand(
		newRunCommand(a),
		newCheckCommand(a),
		newListCommand(a),
		newVersionCommand(a),
	)
	return root
}

// setup loads configuration and builds the logger and definition loader.
func (a *app) setup() error {
	var opts []config.LoaderOption
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}
	if a.envFile != "" {
		opts = append(opts, config.WithEnvFile(a.envFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.Debug && cfg.Logging.Level == "info" {
		cfg.Logging.Level = "debug"
	}
	a.log = logger.NewWithWriter(&cfg.Logging, cfg.Name, a.logWriter())
	logger.SetGlobalLogger(a.log)

	a.loader = definition.NewFileLoader(cfg.Definitions.Dirs...)
	a.log.Debug("configuration loaded", logger.Fields(
		"environment", cfg.Environment,
		"definition_dirs", cfg.Definitions.Dirs,
	))
	return nil
}

func (a *app) logWriter() io.Writer {
	switch a.cfg.Logging.Output {
	case "discard":
		return io.Discard
	case "stdout":
		return a.stdout
	default:
		return a.stderr
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch code := errors.Wrap(err).Code; {
	case errors.IsAuthoringCode(code):
		return exitAuthoring
	case code == errors.ErrCodeNotFound:
		return exitNotFound
	default:
		return exitFailure
	}
}
