package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rewriteHeader re-encodes the JSON header of a native model after edit and
// keeps the data section, so v2 checksums still match.
func rewriteHeader(t *testing.T, raw []byte, edit func(h *Header)) []byte {
	t.Helper()

	var sizeAt, fixed int
	switch binary.LittleEndian.Uint32(raw[4:8]) {
	case FormatVersion:
		sizeAt, fixed = 12, FixedHeaderSizeV1
	case FormatVersionV2:
		sizeAt, fixed = 16, FixedHeaderSizeV2
	default:
		t.Fatalf("unexpected version in %q", raw[:8])
	}
	headerSize := int(binary.LittleEndian.Uint64(raw[sizeAt : sizeAt+8]))
	headerEnd := int64(fixed + headerSize)
	data := raw[alignedDataOffset(headerEnd):]

	var h Header
	require.NoError(t, json.Unmarshal(raw[fixed:headerEnd], &h))
	edit(&h)
	headerJSON, err := json.Marshal(&h)
	require.NoError(t, err)

	out := bytes.Clone(raw[:fixed])
	binary.LittleEndian.PutUint64(out[sizeAt:sizeAt+8], uint64(len(headerJSON)))
	out = append(out, headerJSON...)
	padded := alignedDataOffset(int64(len(out)))
	out = append(out, make([]byte, padded-int64(len(out)))...)
	return append(out, data...)
}

func editTensor(name string, fn func(*TensorMeta)) func(h *Header) {
	return func(h *Header) {
		for i := range h.Tensors {
			if h.Tensors[i].Name == name {
				fn(&h.Tensors[i])
			}
		}
	}
}

func TestRead_TensorRegionOverflow(t *testing.T) {
	var v2, v1 bytes.Buffer
	model := newTestSequenceVectors(t)
	require.NoError(t, WriteSequenceVectors(&v2, model))
	require.NoError(t, WriteModelWithOptions(&v1, model, ModelSequenceVectors, WriterOptions{FormatVersion: FormatVersion}))

	overflow := editTensor(TensorSyn0, func(m *TensorMeta) { m.Offset = math.MaxInt64 - 3 })
	pastEnd := editTensor(TensorSyn0, func(m *TensorMeta) { m.Offset = 1 << 20 })
	hugeShape := editTensor(TensorSyn0, func(m *TensorMeta) { m.Shape = []int{1 << 62, 4} })

	tests := []struct {
		name  string
		raw   []byte
		level ValidationLevel
	}{
		{"overflowing offset strict", rewriteHeader(t, v2.Bytes(), overflow), ValidationStrict},
		{"overflowing offset normal", rewriteHeader(t, v2.Bytes(), overflow), ValidationNormal},
		{"overflowing offset none", rewriteHeader(t, v2.Bytes(), overflow), ValidationNone},
		{"offset past data normal", rewriteHeader(t, v2.Bytes(), pastEnd), ValidationNormal},
		{"overflowing shape normal", rewriteHeader(t, v2.Bytes(), hugeShape), ValidationNormal},
		{"overflowing offset v1", rewriteHeader(t, v1.Bytes(), overflow), ValidationNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := ReaderOptions{ValidationLevel: tt.level}

			var err error
			require.NotPanics(t, func() {
				_, err = ReadSequenceVectorsWithOptions(bytes.NewReader(tt.raw), true, opts)
			})
			require.Error(t, err)

			path := filepath.Join(t.TempDir(), "model.bwvm")
			require.NoError(t, os.WriteFile(path, tt.raw, 0o600))
			require.NotPanics(t, func() {
				var r *MmapReader
				r, err = NewMmapReaderWithOptions(path, opts)
				if err == nil {
					defer r.Close()
					_, err = r.SequenceVectors(true)
				}
			})
			require.Error(t, err)
		})
	}
}

func TestRead_OverflowingOffsetErrors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSequenceVectors(&buf, newTestSequenceVectors(t)))
	raw := rewriteHeader(t, buf.Bytes(), editTensor(TensorSyn0, func(m *TensorMeta) {
		m.Offset = math.MaxInt64 - 3
	}))

	_, err := ReadSequenceVectors(bytes.NewReader(raw), true)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "out_of_bounds", vErr.Type)

	_, err = ReadSequenceVectorsWithOptions(bytes.NewReader(raw), true, ReaderOptions{ValidationLevel: ValidationNormal})
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestMmapReaderTensorData_OverflowingOffset(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSequenceVectors(&buf, newTestSequenceVectors(t)))
	raw := rewriteHeader(t, buf.Bytes(), editTensor(TensorSyn1, func(m *TensorMeta) {
		m.Offset = math.MaxInt64 - 3
	}))

	path := filepath.Join(t.TempDir(), "model.bwvm")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	r, err := NewMmapReaderWithOptions(path, ReaderOptions{ValidationLevel: ValidationNone})
	require.NoError(t, err)
	defer r.Close()

	_, err = r.TensorData(TensorSyn1)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	data, err := r.TensorData(TensorSyn0)
	require.NoError(t, err)
	assert.Len(t, data, 10*2*4)
}

func TestValidateTensorOffsets_Overflow(t *testing.T) {
	tensors := []TensorMeta{
		{Name: TensorSyn0, Offset: math.MaxInt64 - 3, Size: 80},
		{Name: TensorSyn1, Offset: 0, Size: 80},
	}
	err := ValidateTensorOffsets(tensors, 160)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "out_of_bounds", vErr.Type)
	assert.Equal(t, TensorSyn0, vErr.Tensor)
}

func TestValidateTensorMeta_OverflowingShape(t *testing.T) {
	err := ValidateTensorMeta(TensorMeta{
		Name:  TensorSyn0,
		DType: DTypeFloat32,
		Shape: []int{1 << 62, 4},
		Size:  0,
	})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "invalid_shape", vErr.Type)
}
