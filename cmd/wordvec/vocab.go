package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/born-ml/wordvec/internal/serialization"
	"github.com/born-ml/wordvec/internal/tokenizer"
	"github.com/born-ml/wordvec/internal/vectors"
	"github.com/born-ml/wordvec/internal/vocab"
)

func vocabCmd(opts *options) *cobra.Command {
	var (
		format       string
		tokName      string
		minFrequency int
		perLine      bool
	)

	cmd := &cobra.Command{
		Use:   "vocab <output> <text-file>...",
		Short: "Build a vocabulary model from text files",
		Long: `Count the tokens of one or more text files, drop rare and stop words,
assign Huffman codes and write an untrained model with freshly initialized
weights. Every file is one document unless --per-line is set.

Tokenizer, minimum frequency, stop words and layer size come from the
configuration and can be overridden with flags.

Example:
  wordvec vocab model.bwvm corpus.txt --min-frequency 2 --per-line`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("tokenizer") {
				cfg.Tokenizer = tokName
			}
			if cmd.Flags().Changed("min-frequency") {
				cfg.MinWordFrequency = minFrequency
			}

			tok, err := tokenizer.New(cfg.Tokenizer)
			if err != nil {
				return withExitCode(ExitConfigError, err)
			}

			b := vocab.NewConstructor(tok, float64(cfg.MinWordFrequency), cfg.StopList)
			docs := 0
			for _, path := range args[1:] {
				n, err := addFile(cmd, b, path, perLine)
				if err != nil {
					return err
				}
				docs += n
			}

			cache, err := b.Build()
			if err != nil {
				return err
			}
			s := vectors.New(cfg, vectors.WithVocab(cache))
			s.LookupTable().ResetWeights(true)

			out := args[0]
			if err := saveModel(cmd.Context(), out, format, serialization.ModelSequenceVectors, s, opts.passphrase); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}

			resp := VocabResponse{
				Output:               out,
				Documents:            docs,
				Words:                cache.NumWords(),
				TotalWordOccurrences: cache.TotalWordOccurrences(),
				Tokenizer:            tok.Name(),
			}
			return opts.output(cmd.OutOrStdout(), resp, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Wrote %s: %d words from %d documents (%d occurrences, %s tokenizer)\n",
					out, resp.Words, resp.Documents, resp.TotalWordOccurrences, resp.Tokenizer)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "native", "output format")
	cmd.Flags().StringVar(&tokName, "tokenizer", "whitespace", "tokenizer: whitespace or a tiktoken encoding")
	cmd.Flags().IntVar(&minFrequency, "min-frequency", 5, "drop words seen fewer times")
	cmd.Flags().BoolVar(&perLine, "per-line", false, "treat every line as a document")
	return cmd
}

// addFile feeds path to b and returns the number of documents added.
func addFile(cmd *cobra.Command, b *vocab.Constructor, path string, perLine bool) (int, error) {
	//nolint:gosec // G304: corpus path comes from the user
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if !perLine {
		data, err := io.ReadAll(f)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		return 1, b.AddDocument(cmd.Context(), string(data))
	}

	docs := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for sc.Scan() {
		if err := b.AddDocument(cmd.Context(), sc.Text()); err != nil {
			return docs, err
		}
		docs++
	}
	if err := sc.Err(); err != nil {
		return docs, fmt.Errorf("reading %s: %w", path, err)
	}
	return docs, nil
}
