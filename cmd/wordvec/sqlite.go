package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func exportSQLiteCmd(opts *options) *cobra.Command {
	var extended bool

	cmd := &cobra.Command{
		Use:   "export-sqlite <model> <database>",
		Short: "Export a model to a SQLite database",
		Long: `Write the configuration, vocabulary and weight matrices of a model into
a new SQLite database. An existing database at the target path is replaced.

Example:
  wordvec export-sqlite model.bwvm model.db`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return copyModel(cmd, opts, args[0], args[1], formatSQLite, extended)
		},
	}

	cmd.Flags().BoolVar(&extended, "extended", true, "export syn1 and syn1neg")
	return cmd
}

func importSQLiteCmd(opts *options) *cobra.Command {
	var (
		to       string
		extended bool
	)

	cmd := &cobra.Command{
		Use:   "import-sqlite <database> <model>",
		Short: "Restore a model from a SQLite database",
		Long: `Read a model exported with export-sqlite and write it in another format.

Example:
  wordvec import-sqlite model.db model.bwvm --to native`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return copyModel(cmd, opts, args[0], args[1], to, extended)
		},
	}

	cmd.Flags().StringVar(&to, "to", "native", "output format")
	cmd.Flags().BoolVar(&extended, "extended", true, "import syn1 and syn1neg")
	return cmd
}

func copyModel(cmd *cobra.Command, opts *options, in, out, format string, extended bool) error {
	s, from, err := loadModel(cmd.Context(), in, opts.passphrase, extended)
	if err != nil {
		return err
	}
	if err := saveModel(cmd.Context(), out, format, modelTypeOf(in, from), s, opts.passphrase); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	resp := ConvertResponse{Input: in, Output: out, Format: format, Words: s.Vocab().NumWords()}
	return opts.output(cmd.OutOrStdout(), resp, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Wrote %s (%s), %d words\n", out, format, resp.Words)
		return err
	})
}
