package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/born-ml/wordvec/internal/vectors"
)

// WriterOptions configures native model output.
type WriterOptions struct {
	FormatVersion int               // FormatVersion or FormatVersionV2 (default)
	Metadata      map[string]string // Custom metadata stored in the header
}

// WriteSequenceVectors writes s to w in the native format with a checksum.
func WriteSequenceVectors(w io.Writer, s *vectors.SequenceVectors) error {
	return WriteModelWithOptions(w, s, ModelSequenceVectors, WriterOptions{})
}

// WriteWord2Vec writes m to w in the native format with a checksum.
func WriteWord2Vec(w io.Writer, m *vectors.Word2Vec) error {
	return WriteModelWithOptions(w, m.SequenceVectors, ModelWord2Vec, WriterOptions{})
}

// WriteModelWithOptions writes s to w as modelType.
func WriteModelWithOptions(w io.Writer, s *vectors.SequenceVectors, modelType string, opts WriterOptions) error {
	if modelType != ModelSequenceVectors && modelType != ModelWord2Vec {
		return fmt.Errorf("%w: %q", ErrUnknownModelType, modelType)
	}

	header, data, err := encodeModel(s, modelType, opts.Metadata)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	switch opts.FormatVersion {
	case FormatVersion:
		header.FormatVersion = FormatVersion
		err = writeV1(bw, &header, data)
	case 0, FormatVersionV2:
		err = writeV2(bw, &header, data)
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, opts.FormatVersion)
	}
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush model: %w", err)
	}
	return nil
}

// writeV1 writes magic, version, flags, header size, header and data.
func writeV1(w io.Writer, header *Header, data []byte) error {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	fixed := make([]byte, FixedHeaderSizeV1)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], uint32(FormatVersion))
	binary.LittleEndian.PutUint32(fixed[8:12], headerFlags(header))
	binary.LittleEndian.PutUint64(fixed[12:20], uint64(len(headerJSON)))

	if _, err := w.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	return writeBody(w, FixedHeaderSizeV1, headerJSON, data)
}

// writeV2 writes the 64-byte fixed header carrying the data checksum, then
// the header and data.
//
//	0x00-0x03 magic, 0x04-0x07 version, 0x08-0x0B flags, 0x0C-0x0F reserved,
//	0x10-0x17 header size, 0x18-0x1F data size, 0x20-0x3F SHA-256 of data.
func writeV2(w io.Writer, header *Header, data []byte) error {
	header.FormatVersion = FormatVersionV2
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	checksum := ComputeChecksum(data)

	fixed := make([]byte, FixedHeaderSizeV2)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], uint32(FormatVersionV2))
	binary.LittleEndian.PutUint32(fixed[8:12], headerFlags(header))
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	copy(fixed[ChecksumOffsetV2:ChecksumOffsetV2+ChecksumSize], checksum[:])

	if _, err := w.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	return writeBody(w, FixedHeaderSizeV2, headerJSON, data)
}

func writeBody(w io.Writer, fixedSize int64, headerJSON, data []byte) error {
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	headerEnd := fixedSize + int64(len(headerJSON))
	if padding := alignedDataOffset(headerEnd) - headerEnd; padding > 0 {
		if _, err := w.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}

// SaveModel writes s to path as modelType. The file is written to a
// temporary sibling and renamed into place.
func SaveModel(path string, s *vectors.SequenceVectors, modelType string, opts WriterOptions) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		return WriteModelWithOptions(w, s, modelType, opts)
	})
}

// WriteFileAtomic buffers write into a uniquely named temporary file next to
// path and renames it over path once it is complete. Concurrent writers to
// the same path never share a temporary file.
func WriteFileAtomic(path string, write func(io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = f.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
