package main

import "github.com/spf13/cobra"

func convertCmd(opts *options) *cobra.Command {
	var (
		to       string
		extended bool
	)

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a model between formats",
		Long: `Read a model in any supported format and write it in another.

Formats: native, text, archive, google-text, google-binary, sealed, sqlite.
Google formats keep only labels and syn0 vectors.

Example:
  wordvec convert vectors.bin model.bwvm --to native
  WORDVEC_PASSPHRASE=secret wordvec convert model.bwvm model.sealed --to sealed`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return copyModel(cmd, opts, args[0], args[1], to, extended)
		},
	}

	cmd.Flags().StringVar(&to, "to", "native", "output format")
	cmd.Flags().BoolVar(&extended, "extended", true, "carry syn1 and syn1neg")
	return cmd
}
