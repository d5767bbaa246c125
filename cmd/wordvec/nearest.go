package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

func nearestCmd(opts *options) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "nearest <model> <word>",
		Short: "List the words closest to a word by cosine similarity",
		Long: `Load the syn0 vectors of a model and rank every other word by cosine
similarity to the given word.

Example:
  wordvec nearest model.bwvm king -n 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := loadModel(cmd.Context(), args[0], opts.passphrase, false)
			if err != nil {
				return err
			}

			word := args[1]
			words, err := s.WordsNearest(word, n)
			if err != nil {
				return err
			}

			resp := NearestResponse{Word: word, Neighbors: make([]Neighbor, 0, len(words))}
			for _, other := range words {
				sim, err := s.Similarity(word, other)
				if err != nil {
					return err
				}
				resp.Neighbors = append(resp.Neighbors, Neighbor{Word: other, Similarity: sim})
			}
			return opts.output(cmd.OutOrStdout(), resp, func(w io.Writer) error {
				rows := make([][]string, 0, len(resp.Neighbors))
				for _, nb := range resp.Neighbors {
					rows = append(rows, []string{nb.Word, strconv.FormatFloat(nb.Similarity, 'f', 4, 64)})
				}
				if len(rows) == 0 {
					_, err := fmt.Fprintf(w, "No neighbors for %q\n", word)
					return err
				}
				return table(w, rows)
			})
		},
	}

	cmd.Flags().IntVarP(&n, "top", "n", 10, "number of neighbors")
	return cmd
}
