package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/born-ml/wordvec/internal/serialization"
	"github.com/born-ml/wordvec/internal/vectors"
)

func inspectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <model>",
		Short: "Show the format, vocabulary totals and tensor shapes of a model",
		Long: `Detect the encoding of a model file and summarize it. Native models also
report their header version, flags and checksum.

Example:
  wordvec inspect model.bwvm --human`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			s, format, err := loadModel(cmd.Context(), path, opts.passphrase, true)
			if err != nil {
				return err
			}

			resp := InspectResponse{ModelSummary: summarize(path, format, s)}
			if format == serialization.FormatNative.String() {
				info, err := readInfo(path)
				if err != nil {
					return err
				}
				resp.Native = info
			}
			return opts.output(cmd.OutOrStdout(), resp, func(w io.Writer) error {
				return printInspect(w, resp)
			})
		},
	}
}

func summarize(path, format string, s *vectors.SequenceVectors) ModelSummary {
	cache := s.Vocab()
	table := s.LookupTable()
	tensors := make(map[string][]int)
	if m := table.Syn0(); m != nil {
		tensors[serialization.TensorSyn0] = m.Shape()
	}
	if m := table.Syn1(); m != nil {
		tensors[serialization.TensorSyn1] = m.Shape()
	}
	if m := table.Syn1Neg(); m != nil {
		tensors[serialization.TensorSyn1Neg] = m.Shape()
	}
	return ModelSummary{
		Path:                 path,
		Format:               format,
		Words:                cache.NumWords(),
		LayerSize:            s.LayerSize(),
		TotalWordOccurrences: cache.TotalWordOccurrences(),
		TotalDocs:            cache.TotalNumberOfDocs(),
		Tensors:              tensors,
	}
}

func readInfo(path string) (*NativeInfo, error) {
	//nolint:gosec // G304: model path comes from the user
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := serialization.ReadInfo(f, serialization.ReaderOptions{})
	if err != nil {
		return nil, dataError(err)
	}
	native := &NativeInfo{
		Version:   info.Version,
		Flags:     info.Flags,
		DataSize:  info.DataSize,
		ModelType: info.Header.ModelType,
		Library:   info.Header.LibraryVersion,
		Metadata:  info.Header.Metadata,
	}
	if info.Checksum != ([32]byte{}) {
		native.Checksum = serialization.FormatChecksum(info.Checksum)
	}
	return native, nil
}

func printInspect(w io.Writer, resp InspectResponse) error {
	rows := [][]string{
		{"Path:", resp.Path},
		{"Format:", resp.Format},
		{"Words:", strconv.Itoa(resp.Words)},
		{"Layer size:", strconv.Itoa(resp.LayerSize)},
		{"Occurrences:", strconv.FormatInt(resp.TotalWordOccurrences, 10)},
		{"Documents:", strconv.FormatInt(resp.TotalDocs, 10)},
	}
	for _, name := range []string{serialization.TensorSyn0, serialization.TensorSyn1, serialization.TensorSyn1Neg} {
		if shape, ok := resp.Tensors[name]; ok {
			rows = append(rows, []string{name + ":", fmt.Sprintf("%dx%d", shape[0], shape[1])})
		}
	}
	if n := resp.Native; n != nil {
		rows = append(rows,
			[]string{"Version:", strconv.FormatUint(uint64(n.Version), 10)},
			[]string{"Model type:", n.ModelType},
			[]string{"Flags:", fmt.Sprintf("%#x", n.Flags)},
			[]string{"Data size:", strconv.FormatInt(n.DataSize, 10)},
		)
		if n.Checksum != "" {
			rows = append(rows, []string{"Checksum:", n.Checksum})
		}
	}
	return table(w, rows)
}
