package serialization

import (
	"time"

	"github.com/born-ml/wordvec/internal/config"
	"github.com/born-ml/wordvec/internal/vocab"
)

// Format constants.
const (
	MagicBytes        = "BWVM"
	FormatVersion     = 1    // v1: Basic format without checksum
	FormatVersionV2   = 2    // v2: With SHA-256 checksum
	HeaderAlignment   = 64   // Align tensor data to 64 bytes
	FixedHeaderSizeV1 = 20   // magic + version + flags + header size
	FixedHeaderSizeV2 = 64   // v2 fixed header size (0x40 bytes)
	ChecksumSize      = 32   // SHA-256 checksum size (32 bytes)
	ChecksumOffsetV2  = 0x20 // Checksum offset in v2 fixed header

	libraryVersion = "0.1.0"
)

// DTypeFloat32 is the only element type stored in weight tensors.
const DTypeFloat32 = "float32"

// Tensor names.
const (
	TensorSyn0    = "syn0"
	TensorSyn1    = "syn1"
	TensorSyn1Neg = "syn1neg"
)

// Model types.
const (
	ModelSequenceVectors = "SequenceVectors"
	ModelWord2Vec        = "Word2Vec"
)

// Flags for the native format.
const (
	FlagHasExtended uint32 = 1 << 0 // bit 0: syn1 and/or syn1neg stored
	FlagHasMetadata uint32 = 1 << 1 // bit 1: custom metadata included
	FlagHuffman     uint32 = 1 << 2 // bit 2: vocabulary carries Huffman codes
)

// Header represents the JSON header of a native model.
type Header struct {
	FormatVersion  int                          `json:"format_version"`  // Version of the native format
	LibraryVersion string                       `json:"library_version"` // Version of wordvec that wrote the model
	ModelType      string                       `json:"model_type"`      // SequenceVectors or Word2Vec
	CreatedAt      time.Time                    `json:"created_at"`      // When the model was written
	Configuration  *config.VectorsConfiguration `json:"configuration"`   // Training configuration
	Lookup         LookupMeta                   `json:"lookup"`          // Lookup table settings
	Vocab          VocabMeta                    `json:"vocab"`           // Vocabulary and its totals
	Tensors        []TensorMeta                 `json:"tensors"`         // Tensor metadata
	Metadata       map[string]string            `json:"metadata"`        // Custom metadata
}

// LookupMeta carries lookup table settings that are not part of the configuration.
type LookupMeta struct {
	VectorLength int     `json:"vector_length"`
	UseAdaGrad   bool    `json:"use_ada_grad"`
	Negative     float64 `json:"negative"`
	Seed         int64   `json:"seed"`
}

// VocabMeta is the serialized vocabulary.
type VocabMeta struct {
	TotalWordOccurrences int64              `json:"total_word_occurrences"`
	TotalDocs            int64              `json:"total_docs"`
	Words                []*vocab.VocabWord `json:"words"` // In index order
}

// TensorMeta describes a weight tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`   // syn0, syn1 or syn1neg
	DType  string `json:"dtype"`  // Always float32
	Shape  []int  `json:"shape"`  // [rows, cols]
	Offset int64  `json:"offset"` // Offset in the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// Tensor returns the metadata for name.
func (h *Header) Tensor(name string) (TensorMeta, bool) {
	for _, t := range h.Tensors {
		if t.Name == name {
			return t, true
		}
	}
	return TensorMeta{}, false
}

func alignedDataOffset(headerEnd int64) int64 {
	padding := (HeaderAlignment - (headerEnd % HeaderAlignment)) % HeaderAlignment
	return headerEnd + padding
}
