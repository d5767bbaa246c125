package serialization

import (
	"fmt"
	"math"
	"sort"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize  = 1 << 30 // 1GB - vocabularies live in the header
	MaxTensorCount = 3       // syn0, syn1, syn1neg
	MaxWordLen     = 4096    // Maximum label length in bytes
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all validation checks (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks tensor names, shapes and the model type only.
	ValidationNormal
	// ValidationNone skips validation (use only with trusted input).
	ValidationNone
)

var knownTensors = map[string]bool{
	TensorSyn0:    true,
	TensorSyn1:    true,
	TensorSyn1Neg: true,
}

// ValidateTensorOffsets checks for overlapping tensor offsets and out-of-bounds access.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", t.Offset, t.Size),
			}
		}

		if !regionFits(t.Offset, t.Size, dataSize) {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}

	return nil
}

// regionFits reports whether [offset, offset+size) lies within [0, total).
func regionFits(offset, size, total int64) bool {
	return offset >= 0 && size >= 0 && offset <= total && size <= total-offset
}

// ValidateTensorMeta checks the name, dtype and shape of a single tensor.
func ValidateTensorMeta(t TensorMeta) error {
	if !knownTensors[t.Name] {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  t.Name,
			Details: "expected syn0, syn1 or syn1neg",
		}
	}
	if t.DType != DTypeFloat32 {
		return &ValidationError{
			Type:    "invalid_dtype",
			Tensor:  t.Name,
			Details: fmt.Sprintf("dtype %q, expected %q", t.DType, DTypeFloat32),
		}
	}
	if len(t.Shape) != 2 || t.Shape[0] < 0 || t.Shape[1] < 0 {
		return &ValidationError{
			Type:    "invalid_shape",
			Tensor:  t.Name,
			Details: fmt.Sprintf("shape %v is not a matrix", t.Shape),
		}
	}
	if t.Shape[1] > 0 && int64(t.Shape[0]) > math.MaxInt64/4/int64(t.Shape[1]) {
		return &ValidationError{
			Type:    "invalid_shape",
			Tensor:  t.Name,
			Details: fmt.Sprintf("shape %v overflows", t.Shape),
		}
	}
	if want := int64(t.Shape[0]) * int64(t.Shape[1]) * 4; want != t.Size {
		return &ValidationError{
			Type:    "invalid_shape",
			Tensor:  t.Name,
			Details: fmt.Sprintf("shape %v needs %d bytes, header says %d", t.Shape, want, t.Size),
		}
	}
	return nil
}

// ValidateVocab checks that labels and indices are unique and that indices
// address rows of syn0 when it is present.
func ValidateVocab(h *Header) error {
	rows := -1
	if syn0, ok := h.Tensor(TensorSyn0); ok && len(syn0.Shape) == 2 {
		rows = syn0.Shape[0]
	}

	labels := make(map[string]struct{}, len(h.Vocab.Words))
	indices := make(map[int]string, len(h.Vocab.Words))
	for _, w := range h.Vocab.Words {
		if w == nil {
			return &ValidationError{Type: "invalid_word", Details: "null vocabulary entry"}
		}
		if len(w.Word) > MaxWordLen {
			return &ValidationError{
				Type:    "invalid_word",
				Tensor:  w.Word[:32] + "...",
				Details: fmt.Sprintf("length %d > max %d", len(w.Word), MaxWordLen),
			}
		}
		if _, dup := labels[w.Word]; dup {
			return &ValidationError{Type: "duplicate_word", Tensor: w.Word, Details: "label appears twice"}
		}
		labels[w.Word] = struct{}{}

		if w.Index < 0 {
			continue
		}
		if other, dup := indices[w.Index]; dup {
			return &ValidationError{
				Type:    "duplicate_index",
				Tensor:  other,
				Tensor2: w.Word,
				Details: fmt.Sprintf("both bound to index %d", w.Index),
			}
		}
		indices[w.Index] = w.Word
		if rows >= 0 && w.Index >= rows {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  w.Word,
				Details: fmt.Sprintf("index %d beyond %d syn0 rows", w.Index, rows),
			}
		}
	}
	return nil
}

// ValidateHeader performs header validation at the requested level.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}

	if h.ModelType != ModelSequenceVectors && h.ModelType != ModelWord2Vec {
		return fmt.Errorf("%w: %q", ErrUnknownModelType, h.ModelType)
	}
	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
		}
	}

	seen := make(map[string]bool, len(h.Tensors))
	for _, t := range h.Tensors {
		if err := ValidateTensorMeta(t); err != nil {
			return err
		}
		if seen[t.Name] {
			return &ValidationError{Type: "duplicate_tensor", Tensor: t.Name, Details: "tensor appears twice"}
		}
		seen[t.Name] = true
	}

	if level == ValidationStrict {
		if err := ValidateTensorOffsets(h.Tensors, dataSize); err != nil {
			return err
		}
		if err := ValidateVocab(h); err != nil {
			return err
		}
	}

	return nil
}
