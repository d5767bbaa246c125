package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/born-ml/wordvec/internal/vectors"
)

// ReaderOptions configures native model input.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// FileInfo describes a parsed native model without its weights.
type FileInfo struct {
	Version  uint32
	Flags    uint32
	Checksum [32]byte // Zero for v1
	DataSize int64
	Header   Header
}

// ReadSequenceVectors reads a native model written by WriteSequenceVectors
// or WriteWord2Vec. syn1 and syn1neg are restored only when readExtended is set.
func ReadSequenceVectors(r io.Reader, readExtended bool) (*vectors.SequenceVectors, error) {
	return ReadSequenceVectorsWithOptions(r, readExtended, ReaderOptions{})
}

// ReadWord2Vec reads a native model as a Word2Vec.
func ReadWord2Vec(r io.Reader, readExtended bool) (*vectors.Word2Vec, error) {
	return ReadWord2VecWithOptions(r, readExtended, ReaderOptions{})
}

// ReadSequenceVectorsWithOptions is ReadSequenceVectors with custom options.
func ReadSequenceVectorsWithOptions(r io.Reader, readExtended bool, opts ReaderOptions) (*vectors.SequenceVectors, error) {
	info, data, err := readNative(r, opts)
	if err != nil {
		return nil, err
	}
	return decodeModel(&info.Header, data, readExtended)
}

// ReadWord2VecWithOptions is ReadWord2Vec with custom options.
func ReadWord2VecWithOptions(r io.Reader, readExtended bool, opts ReaderOptions) (*vectors.Word2Vec, error) {
	s, err := ReadSequenceVectorsWithOptions(r, readExtended, opts)
	if err != nil {
		return nil, err
	}
	return vectors.FromSequenceVectors(s), nil
}

// ReadInfo parses and validates a native model, discarding its weights.
func ReadInfo(r io.Reader, opts ReaderOptions) (*FileInfo, error) {
	info, _, err := readNative(r, opts)
	return info, err
}

//nolint:gocognit,gocyclo,cyclop // Binary format parsing is linear but long
func readNative(r io.Reader, opts ReaderOptions) (*FileInfo, []byte, error) {
	prefix := make([]byte, 8)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, nil, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(prefix[0:4]) != MagicBytes {
		return nil, nil, fmt.Errorf("%w: got %q, expected %q", ErrInvalidMagic, string(prefix[0:4]), MagicBytes)
	}

	info := &FileInfo{Version: binary.LittleEndian.Uint32(prefix[4:8])}

	var (
		headerSize uint64
		fixedSize  int64
	)
	switch info.Version {
	case FormatVersion:
		rest := make([]byte, FixedHeaderSizeV1-8)
		if _, err := io.ReadFull(r, rest); err != nil {
			return nil, nil, fmt.Errorf("failed to read fixed header: %w", err)
		}
		info.Flags = binary.LittleEndian.Uint32(rest[0:4])
		headerSize = binary.LittleEndian.Uint64(rest[4:12])
		fixedSize = FixedHeaderSizeV1
	case FormatVersionV2:
		fixed := make([]byte, FixedHeaderSizeV2)
		copy(fixed, prefix)
		if _, err := io.ReadFull(r, fixed[8:]); err != nil {
			return nil, nil, fmt.Errorf("failed to read fixed header: %w", err)
		}
		info.Flags = binary.LittleEndian.Uint32(fixed[8:12])
		headerSize = binary.LittleEndian.Uint64(fixed[16:24])
		dataSize := binary.LittleEndian.Uint64(fixed[24:32])
		if dataSize > maxDataSize {
			return nil, nil, fmt.Errorf("%w: data size %d", ErrOutOfBounds, dataSize)
		}
		info.DataSize = int64(dataSize)
		copy(info.Checksum[:], fixed[ChecksumOffsetV2:ChecksumOffsetV2+ChecksumSize])
		fixedSize = FixedHeaderSizeV2
	default:
		return nil, nil, fmt.Errorf("%w: got %d, expected %d or %d", ErrUnsupportedVersion, info.Version, FormatVersion, FormatVersionV2)
	}

	if headerSize > MaxHeaderSize {
		return nil, nil, ErrHeaderTooLarge
	}

	headerBytes, err := readExactly(r, int64(headerSize))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(headerBytes, &info.Header); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	headerEnd := fixedSize + int64(headerSize)
	if padding := alignedDataOffset(headerEnd) - headerEnd; padding > 0 {
		if _, err := io.CopyN(io.Discard, r, padding); err != nil {
			return nil, nil, fmt.Errorf("failed to read padding: %w", err)
		}
	}

	if info.Version == FormatVersion {
		for _, t := range info.Header.Tensors {
			if !regionFits(t.Offset, t.Size, maxDataSize) {
				return nil, nil, fmt.Errorf("%w: tensor %s: offset %d, size %d", ErrOutOfBounds, t.Name, t.Offset, t.Size)
			}
			info.DataSize = max(info.DataSize, t.Offset+t.Size)
		}
	}

	data, err := readExactly(r, info.DataSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	if info.Version == FormatVersionV2 && !opts.SkipChecksumValidation {
		if err := ValidateChecksum(ComputeChecksum(data), info.Checksum); err != nil {
			return nil, nil, err
		}
	}

	if err := ValidateHeader(&info.Header, info.DataSize, opts.ValidationLevel); err != nil {
		return nil, nil, fmt.Errorf("validation failed: %w", err)
	}

	return info, data, nil
}

// maxDataSize bounds the data section of a native model.
const maxDataSize = 1 << 62

// readExactly reads n bytes without trusting n for the initial allocation.
func readExactly(r io.Reader, n int64) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeOffset
	}
	data, err := io.ReadAll(io.LimitReader(r, n))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != n {
		return nil, io.ErrUnexpectedEOF
	}
	return data, nil
}
