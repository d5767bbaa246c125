package serialization

import (
	"errors"
	"strings"
	"testing"

	"github.com/born-ml/wordvec/internal/vocab"
)

// TestValidateTensorOffsets_NoOverlap verifies that valid tensors pass validation.
func TestValidateTensorOffsets_NoOverlap(t *testing.T) {
	tensors := []TensorMeta{
		{Name: TensorSyn0, Offset: 0, Size: 100},
		{Name: TensorSyn1, Offset: 100, Size: 200},
		{Name: TensorSyn1Neg, Offset: 300, Size: 150},
	}

	if err := ValidateTensorOffsets(tensors, 500); err != nil {
		t.Errorf("Expected no error for valid tensors, got: %v", err)
	}
}

// TestValidateTensorOffsets_Overlap detects overlapping tensor regions.
func TestValidateTensorOffsets_Overlap(t *testing.T) {
	tests := []struct {
		name     string
		tensors  []TensorMeta
		dataSize int64
		wantErr  bool
	}{
		{
			name: "complete overlap",
			tensors: []TensorMeta{
				{Name: TensorSyn0, Offset: 0, Size: 100},
				{Name: TensorSyn1, Offset: 50, Size: 100},
			},
			dataSize: 200,
			wantErr:  true,
		},
		{
			name: "partial overlap at boundary",
			tensors: []TensorMeta{
				{Name: TensorSyn0, Offset: 0, Size: 100},
				{Name: TensorSyn1, Offset: 99, Size: 100},
			},
			dataSize: 200,
			wantErr:  true,
		},
		{
			name: "exact boundary (no overlap)",
			tensors: []TensorMeta{
				{Name: TensorSyn0, Offset: 0, Size: 100},
				{Name: TensorSyn1, Offset: 100, Size: 100},
			},
			dataSize: 200,
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets(tt.tensors, tt.dataSize)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateTensorOffsets() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrOffsetOverlap) {
				t.Errorf("Expected ErrOffsetOverlap, got %v", err)
			}
		})
	}
}

// TestValidateTensorOffsets_OutOfBounds detects tensors past the data section.
func TestValidateTensorOffsets_OutOfBounds(t *testing.T) {
	tensors := []TensorMeta{{Name: TensorSyn0, Offset: 64, Size: 100}}

	err := ValidateTensorOffsets(tensors, 100)
	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("Expected ErrOutOfBounds, got %v", err)
	}
}

// TestValidateTensorOffsets_NegativeValues rejects negative offsets and sizes.
func TestValidateTensorOffsets_NegativeValues(t *testing.T) {
	for _, meta := range []TensorMeta{
		{Name: TensorSyn0, Offset: -1, Size: 10},
		{Name: TensorSyn0, Offset: 0, Size: -10},
	} {
		err := ValidateTensorOffsets([]TensorMeta{meta}, 100)
		if !errors.Is(err, ErrNegativeOffset) {
			t.Errorf("offset=%d size=%d: expected ErrNegativeOffset, got %v", meta.Offset, meta.Size, err)
		}
	}
}

// TestValidateTensorOffsets_TooManyTensors enforces the tensor count limit.
func TestValidateTensorOffsets_TooManyTensors(t *testing.T) {
	tensors := make([]TensorMeta, MaxTensorCount+1)
	for i := range tensors {
		tensors[i] = TensorMeta{Name: TensorSyn0, Offset: int64(i * 4), Size: 4}
	}

	err := ValidateTensorOffsets(tensors, 1024)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %T", err)
	}
	if validationErr.Type != "too_many_tensors" {
		t.Errorf("Expected too_many_tensors error, got %s", validationErr.Type)
	}
	if !errors.Is(err, ErrTooManyTensors) {
		t.Errorf("Expected ErrTooManyTensors, got %v", err)
	}
}

func TestValidateTensorMeta(t *testing.T) {
	tests := []struct {
		name     string
		meta     TensorMeta
		wantType string
	}{
		{"valid", TensorMeta{Name: TensorSyn0, DType: DTypeFloat32, Shape: []int{10, 2}, Size: 80}, ""},
		{"unknown name", TensorMeta{Name: "../syn0", DType: DTypeFloat32, Shape: []int{1, 1}, Size: 4}, "invalid_name"},
		{"float64", TensorMeta{Name: TensorSyn1, DType: "float64", Shape: []int{1, 1}, Size: 8}, "invalid_dtype"},
		{"vector", TensorMeta{Name: TensorSyn1, DType: DTypeFloat32, Shape: []int{4}, Size: 16}, "invalid_shape"},
		{"size mismatch", TensorMeta{Name: TensorSyn1Neg, DType: DTypeFloat32, Shape: []int{2, 2}, Size: 12}, "invalid_shape"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorMeta(tt.meta)
			if tt.wantType == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if validationErr.Type != tt.wantType {
				t.Errorf("Expected %s, got %s", tt.wantType, validationErr.Type)
			}
		})
	}
}

func validHeader() *Header {
	return &Header{
		ModelType: ModelWord2Vec,
		Vocab: VocabMeta{
			Words: []*vocab.VocabWord{
				{Word: "word", Frequency: 1, Index: 0},
				{Word: "test", Frequency: 2, Index: 1},
			},
		},
		Tensors: []TensorMeta{
			{Name: TensorSyn0, DType: DTypeFloat32, Shape: []int{2, 2}, Offset: 0, Size: 16},
		},
	}
}

func TestValidateVocab(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(h *Header)
		wantType string
	}{
		{"valid", func(*Header) {}, ""},
		{"duplicate label", func(h *Header) { h.Vocab.Words[1].Word = "word" }, "duplicate_word"},
		{"duplicate index", func(h *Header) { h.Vocab.Words[1].Index = 0 }, "duplicate_index"},
		{"index beyond syn0", func(h *Header) { h.Vocab.Words[1].Index = 2 }, "out_of_bounds"},
		{"null entry", func(h *Header) { h.Vocab.Words[0] = nil }, "invalid_word"},
		{"long label", func(h *Header) { h.Vocab.Words[0].Word = strings.Repeat("x", MaxWordLen+1) }, "invalid_word"},
		{"unindexed word", func(h *Header) { h.Vocab.Words[1].Index = -1 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validHeader()
			tt.mutate(h)
			err := ValidateVocab(h)
			if tt.wantType == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if validationErr.Type != tt.wantType {
				t.Errorf("Expected %s, got %s", tt.wantType, validationErr.Type)
			}
		})
	}
}

// TestValidateHeader_Strict tests strict validation mode.
func TestValidateHeader_Strict(t *testing.T) {
	h := validHeader()
	if err := ValidateHeader(h, 16, ValidationStrict); err != nil {
		t.Fatalf("Expected valid header, got %v", err)
	}

	if err := ValidateHeader(h, 8, ValidationStrict); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds for short data, got %v", err)
	}

	h.Vocab.Words[1].Index = 0
	if err := ValidateHeader(h, 16, ValidationStrict); err == nil {
		t.Error("Expected duplicate index to fail strict validation")
	}

	h = validHeader()
	h.ModelType = "ParagraphVectors"
	if err := ValidateHeader(h, 16, ValidationStrict); !errors.Is(err, ErrUnknownModelType) {
		t.Errorf("Expected ErrUnknownModelType, got %v", err)
	}

	h = validHeader()
	h.Tensors = append(h.Tensors, h.Tensors[0])
	h.Tensors[1].Offset = 16
	if err := ValidateHeader(h, 32, ValidationStrict); !errors.Is(err, ErrInvalidTensorName) {
		t.Errorf("Expected duplicate tensor to fail, got %v", err)
	}
}

// TestValidateHeader_Normal skips offset and vocabulary checks.
func TestValidateHeader_Normal(t *testing.T) {
	h := validHeader()
	h.Vocab.Words[1].Index = 0
	if err := ValidateHeader(h, 8, ValidationNormal); err != nil {
		t.Errorf("Normal validation should ignore offsets and vocabulary, got %v", err)
	}

	h.Tensors[0].Name = "weights"
	if err := ValidateHeader(h, 16, ValidationNormal); err == nil {
		t.Error("Normal validation should still reject unknown tensor names")
	}
}

// TestValidateHeader_None tests that no validation is performed.
func TestValidateHeader_None(t *testing.T) {
	h := validHeader()
	h.ModelType = ""
	h.Tensors[0].Name = "../../etc/passwd"
	if err := ValidateHeader(h, 0, ValidationNone); err != nil {
		t.Errorf("ValidationNone should skip all checks, got %v", err)
	}
}

// TestValidationError_ErrorMessages verifies error message formatting.
func TestValidationError_ErrorMessages(t *testing.T) {
	tests := []struct {
		err  *ValidationError
		want string
	}{
		{&ValidationError{Type: "offset_overlap", Tensor: "syn0", Tensor2: "syn1", Details: "x"}, `offset_overlap: "syn0" and "syn1": x`},
		{&ValidationError{Type: "out_of_bounds", Tensor: "syn0", Details: "y"}, `out_of_bounds: "syn0": y`},
		{&ValidationError{Type: "too_many_tensors", Details: "z"}, "too_many_tensors: z"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

// FuzzValidateTensorOffsets ensures offset validation never panics.
func FuzzValidateTensorOffsets(f *testing.F) {
	f.Add(int64(0), int64(100), int64(200))
	f.Add(int64(-100), int64(50), int64(1000))
	f.Add(int64(100), int64(-50), int64(1000))

	f.Fuzz(func(_ *testing.T, offset1, size1, dataSize int64) {
		tensors := []TensorMeta{
			{Name: TensorSyn0, Offset: offset1, Size: size1},
		}
		_ = ValidateTensorOffsets(tensors, dataSize)
	})
}
