package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/born-ml/wordvec/internal/config"
)

// options holds the global flags and the resolved configuration.
type options struct {
	configPath string
	envFile    string
	passphrase string
	human      bool

	cfg *config.VectorsConfiguration
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "wordvec",
		Short: "Inspect, convert and verify word embedding models",
		Long: `wordvec reads and writes word embedding models in the native BWVM format,
a line-oriented text format, zip archives, Google word2vec text and binary
files, passphrase-sealed files and SQLite databases.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with WORDVEC_* variables")
	flags.StringVar(&opts.passphrase, "passphrase", "", "passphrase for sealed models (default $WORDVEC_PASSPHRASE)")
	flags.BoolVar(&opts.human, "human", false, "human-readable output (default when stdout is a terminal)")

	root.AddCommand(
		inspectCmd(opts),
		convertCmd(opts),
		verifyCmd(opts),
		nearestCmd(opts),
		vocabCmd(opts),
		exportSQLiteCmd(opts),
		importSQLiteCmd(opts),
		versionCmd(),
	)
	return root
}

// resolve loads the environment and configuration shared by every command.
func (o *options) resolve(cmd *cobra.Command) error {
	if err := config.LoadEnv(o.envFile); err != nil {
		return withExitCode(ExitConfigError, err)
	}

	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.LoadYAML(o.configPath)
		if err != nil {
			return withExitCode(ExitConfigError, err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return withExitCode(ExitConfigError, err)
	}
	o.cfg = cfg

	if o.passphrase == "" {
		o.passphrase = os.Getenv(config.EnvPrefix + "PASSPHRASE")
	}
	if !cmd.Flags().Changed("human") {
		o.human = isTerminal(cmd.OutOrStdout())
	}
	return nil
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
