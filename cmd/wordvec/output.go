package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// outputJSON writes a value as formatted JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// output writes v as JSON, or calls human when human-readable output is on.
func (o *options) output(w io.Writer, v any, human func(w io.Writer) error) error {
	if o.human {
		return human(w)
	}
	return outputJSON(w, v)
}

// table writes aligned rows.
func table(w io.Writer, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// ModelSummary describes a loaded model.
type ModelSummary struct {
	Path                 string           `json:"path"`
	Format               string           `json:"format"`
	Words                int              `json:"words"`
	LayerSize            int              `json:"layer_size"`
	TotalWordOccurrences int64            `json:"total_word_occurrences"`
	TotalDocs            int64            `json:"total_docs"`
	Tensors              map[string][]int `json:"tensors"`
}

// NativeInfo carries header fields only native models have.
type NativeInfo struct {
	Version   uint32            `json:"version"`
	Flags     uint32            `json:"flags"`
	Checksum  string            `json:"checksum,omitempty"`
	DataSize  int64             `json:"data_size"`
	ModelType string            `json:"model_type"`
	Library   string            `json:"library_version"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// InspectResponse is the response for the inspect command.
type InspectResponse struct {
	ModelSummary
	Native *NativeInfo `json:"native,omitempty"`
}

// ConvertResponse is the response for the convert and import commands.
type ConvertResponse struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Format string `json:"format"`
	Words  int    `json:"words"`
}

// VerifyResponse is the response for the verify command.
type VerifyResponse struct {
	Path          string   `json:"path"`
	Via           string   `json:"via"`
	ConfigEqual   bool     `json:"config_equal"`
	StatsEqual    bool     `json:"stats_equal"`
	ElementsEqual bool     `json:"elements_equal"`
	OK            bool     `json:"ok"`
	Differences   []string `json:"differences,omitempty"`
}

// Neighbor is a single nearest-neighbour result.
type Neighbor struct {
	Word       string  `json:"word"`
	Similarity float64 `json:"similarity"`
}

// NearestResponse is the response for the nearest command.
type NearestResponse struct {
	Word      string      `json:"word"`
	Neighbors []Neighbor `json:"neighbors"`
}

// VocabResponse is the response for the vocab command.
type VocabResponse struct {
	Output               string `json:"output"`
	Documents            int    `json:"documents"`
	Words                int    `json:"words"`
	TotalWordOccurrences int64  `json:"total_word_occurrences"`
	Tokenizer            string `json:"tokenizer"`
}
