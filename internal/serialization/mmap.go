package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"github.com/born-ml/wordvec/internal/vectors"
)

// MmapReader provides memory-mapped access to native model files.
// Only the header is parsed on open; tensor data is paged in on demand.
type MmapReader struct {
	file       *os.File
	data       []byte // mmap'd region (read-only)
	size       int64
	info       FileInfo
	dataOffset int64
	closed     bool
}

// NewMmapReader maps path read-only and validates its header.
//
// Important: Always call Close() when done to unmap the file (use defer).
func NewMmapReader(path string) (*MmapReader, error) {
	return NewMmapReaderWithOptions(path, ReaderOptions{})
}

// NewMmapReaderWithOptions is NewMmapReader with custom options.
func NewMmapReaderWithOptions(path string, opts ReaderOptions) (*MmapReader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.Size() < FixedHeaderSizeV1 {
		_ = file.Close()
		return nil, fmt.Errorf("file too small: %d bytes (minimum %d bytes required)", stat.Size(), FixedHeaderSizeV1)
	}

	data, err := mmapFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	r := &MmapReader{
		file: file,
		data: data,
		size: stat.Size(),
	}

	if err := r.parseHeader(opts); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	return r, nil
}

func (r *MmapReader) parseHeader(opts ReaderOptions) error {
	if string(r.data[0:4]) != MagicBytes {
		return ErrInvalidMagic
	}

	r.info.Version = binary.LittleEndian.Uint32(r.data[4:8])
	r.info.Flags = binary.LittleEndian.Uint32(r.data[8:12])

	var (
		headerSize uint64
		jsonOffset int64
	)
	switch r.info.Version {
	case FormatVersionV2:
		if r.size < FixedHeaderSizeV2 {
			return fmt.Errorf("file too small for v2: %d bytes (minimum %d bytes required)", r.size, FixedHeaderSizeV2)
		}
		headerSize = binary.LittleEndian.Uint64(r.data[16:24])
		dataSize := binary.LittleEndian.Uint64(r.data[24:32])
		if dataSize > uint64(r.size) {
			return fmt.Errorf("%w: data size %d exceeds file size %d", ErrOutOfBounds, dataSize, r.size)
		}
		r.info.DataSize = int64(dataSize)
		copy(r.info.Checksum[:], r.data[ChecksumOffsetV2:ChecksumOffsetV2+ChecksumSize])
		jsonOffset = FixedHeaderSizeV2
	case FormatVersion:
		headerSize = binary.LittleEndian.Uint64(r.data[12:20])
		jsonOffset = FixedHeaderSizeV1
	default:
		return fmt.Errorf("%w: got %d, expected %d or %d", ErrUnsupportedVersion, r.info.Version, FormatVersion, FormatVersionV2)
	}

	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	headerEnd := jsonOffset + int64(headerSize)
	if headerEnd > r.size {
		return fmt.Errorf("header extends beyond file: header_end=%d, file_size=%d", headerEnd, r.size)
	}

	if err := json.Unmarshal(r.data[jsonOffset:headerEnd], &r.info.Header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	r.dataOffset = alignedDataOffset(headerEnd)
	if r.info.Version == FormatVersion {
		r.info.DataSize = max(r.size-r.dataOffset, 0)
	}
	if r.dataOffset+r.info.DataSize > r.size {
		return fmt.Errorf("%w: data section ends at %d, file size %d", ErrOutOfBounds, r.dataOffset+r.info.DataSize, r.size)
	}

	if r.info.Version == FormatVersionV2 && !opts.SkipChecksumValidation {
		if err := ValidateChecksum(ComputeChecksum(r.section()), r.info.Checksum); err != nil {
			return err
		}
	}

	if err := ValidateHeader(&r.info.Header, r.info.DataSize, opts.ValidationLevel); err != nil {
		return fmt.Errorf("header validation failed: %w", err)
	}

	return nil
}

func (r *MmapReader) section() []byte {
	return r.data[r.dataOffset : r.dataOffset+r.info.DataSize]
}

// Close unmaps and closes the file.
func (r *MmapReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var err error
	if r.data != nil {
		err = munmapFile(r.data)
		r.data = nil
	}

	if closeErr := r.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

// Info returns the parsed file description.
func (r *MmapReader) Info() FileInfo {
	return r.info
}

// TensorData returns a zero-copy slice of a tensor's bytes.
// The returned slice is valid only while the reader is open.
// WARNING: The data is read-only - writing to it will cause undefined behavior.
func (r *MmapReader) TensorData(name string) ([]byte, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	meta, ok := r.info.Header.Tensor(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingTensor, name)
	}

	if !regionFits(meta.Offset, meta.Size, r.info.DataSize) {
		return nil, fmt.Errorf("%w: tensor %q: offset %d + size %d > data_size %d",
			ErrOutOfBounds, name, meta.Offset, meta.Size, r.info.DataSize)
	}

	return r.section()[meta.Offset : meta.Offset+meta.Size], nil
}

// SequenceVectors decodes the mapped model. Weights are copied out of the
// mapping, so the result outlives Close.
func (r *MmapReader) SequenceVectors(readExtended bool) (*vectors.SequenceVectors, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}
	return decodeModel(&r.info.Header, r.section(), readExtended)
}

// LoadModel memory-maps the native model at path and decodes it.
func LoadModel(path string, readExtended bool) (*vectors.SequenceVectors, error) {
	r, err := NewMmapReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return r.SequenceVectors(readExtended)
}
