package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/cobra"

	"github.com/born-ml/wordvec/internal/serialization"
	"github.com/born-ml/wordvec/internal/store"
	"github.com/born-ml/wordvec/internal/vectors"
)

// maxDifferences bounds the element differences reported by verify.
const maxDifferences = 20

// errVerifyFailed is returned when a round trip changes the model.
var errVerifyFailed = errors.New("round trip changed the model")

func verifyCmd(opts *options) *cobra.Command {
	var (
		via      string
		extended bool
	)

	cmd := &cobra.Command{
		Use:   "verify <model>",
		Short: "Round-trip a model through a codec and compare the result",
		Long: `Write the model with the chosen codec, read it back and check that the
configuration, the vocabulary totals and every vocabulary element survive.

Codecs: native, text, archive, sealed, sqlite.

Example:
  wordvec verify model.bwvm --via archive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			s, _, err := loadModel(cmd.Context(), path, opts.passphrase, true)
			if err != nil {
				return err
			}

			got, err := roundTrip(cmd.Context(), via, s, opts.passphrase, extended)
			if err != nil {
				return fmt.Errorf("round trip via %s: %w", via, err)
			}

			resp := compareModels(s, got)
			resp.Path = path
			resp.Via = via
			if err := opts.output(cmd.OutOrStdout(), resp, func(w io.Writer) error {
				return printVerify(w, resp)
			}); err != nil {
				return err
			}
			if !resp.OK {
				return withExitCode(ExitVerifyFailed, errVerifyFailed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&via, "via", "native", "codec to round-trip through")
	cmd.Flags().BoolVar(&extended, "extended", true, "restore syn1 and syn1neg on read")
	return cmd
}

// roundTrip writes s with codec via and reads it back.
func roundTrip(ctx context.Context, via string, s *vectors.SequenceVectors, passphrase string, extended bool) (*vectors.SequenceVectors, error) {
	var buf bytes.Buffer
	switch via {
	case serialization.FormatNative.String():
		if err := serialization.WriteSequenceVectors(&buf, s); err != nil {
			return nil, err
		}
		return serialization.ReadSequenceVectors(&buf, extended)
	case serialization.FormatText.String():
		if err := serialization.WriteSequenceVectorsText(&buf, s); err != nil {
			return nil, err
		}
		return serialization.ReadSequenceVectorsText(&buf, extended)
	case serialization.FormatArchive.String():
		if err := serialization.WriteWord2VecModel(&buf, vectors.FromSequenceVectors(s)); err != nil {
			return nil, err
		}
		m, err := serialization.ReadWord2VecModel(bytes.NewReader(buf.Bytes()), int64(buf.Len()), extended)
		if err != nil {
			return nil, err
		}
		return m.SequenceVectors, nil
	case serialization.FormatSealed.String():
		if passphrase == "" {
			return nil, errors.New("sealed round trip needs --passphrase or WORDVEC_PASSPHRASE")
		}
		if err := serialization.WriteSealed(&buf, s, passphrase); err != nil {
			return nil, err
		}
		return serialization.ReadSealed(&buf, passphrase, extended)
	case formatSQLite:
		dir, err := os.MkdirTemp("", "wordvec-verify-")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(dir)

		db := filepath.Join(dir, "model.db")
		if err := store.Export(ctx, db, s); err != nil {
			return nil, err
		}
		return store.Import(ctx, db, extended)
	default:
		return nil, fmt.Errorf("%w: %q (google formats do not keep the vocabulary)", serialization.ErrUnknownFormat, via)
	}
}

// compareModels checks configuration, vocabulary totals and elements.
func compareModels(want, got *vectors.SequenceVectors) VerifyResponse {
	var resp VerifyResponse

	resp.ConfigEqual = want.Configuration().Equal(got.Configuration())
	if !resp.ConfigEqual {
		diff := cmp.Diff(want.Configuration(), got.Configuration(), cmpopts.EquateEmpty())
		resp.Differences = append(resp.Differences, "configuration (-want +got):\n"+strings.TrimSpace(diff))
	}

	wv, gv := want.Vocab(), got.Vocab()
	resp.StatsEqual = true
	for _, c := range []struct {
		name      string
		want, got int64
	}{
		{"total word occurrences", wv.TotalWordOccurrences(), gv.TotalWordOccurrences()},
		{"total docs", wv.TotalNumberOfDocs(), gv.TotalNumberOfDocs()},
		{"words", int64(wv.NumWords()), int64(gv.NumWords())},
	} {
		if c.want != c.got {
			resp.StatsEqual = false
			resp.Differences = append(resp.Differences, fmt.Sprintf("%s: want %d, got %d", c.name, c.want, c.got))
		}
	}

	resp.ElementsEqual = true
	reported := 0
	for _, w := range wv.Elements() {
		g, ok := gv.WordFor(w.Word)
		if w.Index >= 0 {
			g, ok = gv.ElementAtIndex(w.Index)
		}
		if ok && w.Equal(g) {
			continue
		}
		resp.ElementsEqual = false
		if reported < maxDifferences {
			resp.Differences = append(resp.Differences, fmt.Sprintf("element %q at index %d differs", w.Word, w.Index))
		}
		reported++
	}
	if reported > maxDifferences {
		resp.Differences = append(resp.Differences, fmt.Sprintf("... and %d more elements", reported-maxDifferences))
	}

	resp.OK = resp.ConfigEqual && resp.StatsEqual && resp.ElementsEqual
	return resp
}

func printVerify(w io.Writer, resp VerifyResponse) error {
	status := func(ok bool) string {
		if ok {
			return "ok"
		}
		return "FAILED"
	}
	if err := table(w, [][]string{
		{"Model:", resp.Path},
		{"Codec:", resp.Via},
		{"Configuration:", status(resp.ConfigEqual)},
		{"Vocabulary totals:", status(resp.StatsEqual)},
		{"Elements:", status(resp.ElementsEqual)},
	}); err != nil {
		return err
	}
	for _, d := range resp.Differences {
		if _, err := fmt.Fprintf(w, "  %s\n", d); err != nil {
			return err
		}
	}
	return nil
}
