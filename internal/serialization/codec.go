package serialization

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/born-ml/wordvec/internal/config"
	"github.com/born-ml/wordvec/internal/lookup"
	"github.com/born-ml/wordvec/internal/vectors"
	"github.com/born-ml/wordvec/internal/vocab"
)

// encodeModel builds the header and data section for s.
// Tensors are laid out in the fixed order syn0, syn1, syn1neg.
func encodeModel(s *vectors.SequenceVectors, modelType string, metadata map[string]string) (Header, []byte, error) {
	if s.Configuration() == nil {
		return Header{}, nil, fmt.Errorf("model has no configuration")
	}

	table := s.LookupTable()
	cache := s.Vocab()

	elems := cache.Elements()
	words := make([]*vocab.VocabWord, len(elems))
	for i, w := range elems {
		words[i] = w.Clone()
	}

	header := Header{
		FormatVersion:  FormatVersionV2,
		LibraryVersion: libraryVersion,
		ModelType:      modelType,
		CreatedAt:      time.Now().UTC(),
		Configuration:  s.Configuration(),
		Lookup: LookupMeta{
			VectorLength: table.LayerSize(),
			UseAdaGrad:   table.UseAdaGrad(),
			Negative:     table.Negative(),
			Seed:         table.Seed(),
		},
		Vocab: VocabMeta{
			TotalWordOccurrences: cache.TotalWordOccurrences(),
			TotalDocs:            cache.TotalNumberOfDocs(),
			Words:                words,
		},
		Metadata: metadata,
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	var data []byte
	for _, named := range []struct {
		name string
		m    *lookup.Matrix
	}{
		{TensorSyn0, table.Syn0()},
		{TensorSyn1, table.Syn1()},
		{TensorSyn1Neg, table.Syn1Neg()},
	} {
		if named.m == nil {
			continue
		}
		size := int64(len(named.m.Data()) * 4)
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   named.name,
			DType:  DTypeFloat32,
			Shape:  named.m.Shape(),
			Offset: int64(len(data)),
			Size:   size,
		})
		data = appendFloat32s(data, named.m.Data())
	}

	return header, data, nil
}

// headerFlags derives the flag bits describing header.
func headerFlags(h *Header) uint32 {
	var flags uint32
	if _, ok := h.Tensor(TensorSyn1); ok {
		flags |= FlagHasExtended
	}
	if _, ok := h.Tensor(TensorSyn1Neg); ok {
		flags |= FlagHasExtended
	}
	if len(h.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	for _, w := range h.Vocab.Words {
		if w.CodeLength > 0 {
			flags |= FlagHuffman
			break
		}
	}
	return flags
}

// decodeModel rebuilds a model from a parsed header and its data section.
// syn1 and syn1neg are only materialized when readExtended is set.
func decodeModel(h *Header, data []byte, readExtended bool) (*vectors.SequenceVectors, error) {
	cfg := h.Configuration
	if cfg == nil {
		cfg = config.Default()
	}

	cache, err := restoreVocab(h.Vocab)
	if err != nil {
		return nil, err
	}

	table := lookup.NewTable(
		lookup.WithVocab(cache),
		lookup.WithVectorLength(h.Lookup.VectorLength),
		lookup.WithUseAdaGrad(h.Lookup.UseAdaGrad),
		lookup.WithNegative(h.Lookup.Negative),
		lookup.WithSeed(h.Lookup.Seed),
	)

	for _, meta := range h.Tensors {
		if meta.Name != TensorSyn0 && !readExtended {
			continue
		}
		if !regionFits(meta.Offset, meta.Size, int64(len(data))) {
			return nil, fmt.Errorf("%w: tensor %s: offset %d, size %d, data size %d",
				ErrOutOfBounds, meta.Name, meta.Offset, meta.Size, len(data))
		}
		m, err := decodeMatrix(meta, data[meta.Offset:meta.Offset+meta.Size])
		if err != nil {
			return nil, err
		}
		switch meta.Name {
		case TensorSyn0:
			table.SetSyn0(m)
		case TensorSyn1:
			table.SetSyn1(m)
		case TensorSyn1Neg:
			table.SetSyn1Neg(m)
		}
	}

	return vectors.New(cfg, vectors.WithVocab(cache), vectors.WithLookupTable(table)), nil
}

func decodeMatrix(meta TensorMeta, raw []byte) (*lookup.Matrix, error) {
	if err := ValidateTensorMeta(meta); err != nil {
		return nil, err
	}
	m, err := lookup.NewMatrixFrom(meta.Shape[0], meta.Shape[1], float32sFromBytes(raw))
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", meta.Name, err)
	}
	return m, nil
}

// restoreVocab rebuilds a cache whose totals match the serialized ones exactly.
func restoreVocab(meta VocabMeta) (*vocab.Cache, error) {
	cache := vocab.NewCache()
	for _, w := range meta.Words {
		if w == nil {
			return nil, fmt.Errorf("null vocabulary entry")
		}
		elem := w.Clone()
		index := elem.Index
		elem.Index = -1
		cache.AddToken(elem)
		if index >= 0 {
			if err := cache.AddWordToIndex(index, elem.Word); err != nil {
				return nil, fmt.Errorf("restoring vocabulary: %w", err)
			}
		}
	}
	cache.SetTotalWordOccurrences(meta.TotalWordOccurrences)
	cache.SetTotalDocCount(meta.TotalDocs)
	return cache, nil
}

func appendFloat32s(dst []byte, values []float32) []byte {
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

func float32sFromBytes(raw []byte) []float32 {
	values := make([]float32, len(raw)/4)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return values
}
