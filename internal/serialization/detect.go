package serialization

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/born-ml/wordvec/internal/vectors"
)

// Format identifies a model encoding.
type Format int

// Known formats.
const (
	FormatUnknown Format = iota
	FormatNative
	FormatText
	FormatArchive
	FormatGoogleText
	FormatGoogleBinary
	FormatSealed
	FormatGzip
)

var formatNames = map[Format]string{
	FormatUnknown:      "unknown",
	FormatNative:       "native",
	FormatText:         "text",
	FormatArchive:      "archive",
	FormatGoogleText:   "google-text",
	FormatGoogleBinary: "google-binary",
	FormatSealed:       "sealed",
	FormatGzip:         "gzip",
}

// String returns the name used on the command line.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat maps a command line name to a Format.
func ParseFormat(name string) (Format, error) {
	for f, n := range formatNames {
		if n == name && f != FormatUnknown && f != FormatGzip {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// DetectPrefixSize is the number of leading bytes DetectFormat inspects.
const DetectPrefixSize = 512

// DetectFormat guesses the encoding of a model from its leading bytes.
// Gzip input is reported as FormatGzip; its payload is a Google format.
func DetectFormat(prefix []byte) Format {
	switch {
	case bytes.HasPrefix(prefix, []byte(MagicBytes)):
		return FormatNative
	case bytes.HasPrefix(prefix, []byte("PK\x03\x04")):
		return FormatArchive
	case bytes.HasPrefix(prefix, []byte{0x1f, 0x8b}):
		return FormatGzip
	}

	trimmed := bytes.TrimLeft(prefix, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("{")) {
		if bytes.Contains(trimmed, []byte(`"magic":"`+SealedMagic+`"`)) {
			return FormatSealed
		}
		return FormatText
	}

	// Google formats start with an "N D" header line.
	nl := bytes.IndexByte(prefix, '\n')
	if nl < 0 {
		return FormatUnknown
	}
	header := bytes.Fields(prefix[:nl])
	if len(header) == 2 && isUint(header[0]) && isUint(header[1]) {
		rest := prefix[nl+1:]
		if isTextual(rest) {
			return FormatGoogleText
		}
		return FormatGoogleBinary
	}
	if len(header) > 1 && isTextual(prefix) {
		return FormatGoogleText
	}
	return FormatUnknown
}

func isUint(b []byte) bool {
	_, err := strconv.ParseUint(string(b), 10, 64)
	return err == nil
}

// isTextual reports whether b looks like whitespace separated decimal text.
func isTextual(b []byte) bool {
	for _, c := range b {
		if c < 0x09 || (c > 0x0d && c < 0x20) || c == 0x7f {
			return false
		}
	}
	return true
}

// ReadModel detects the encoding of r and decodes it. passphrase is only
// used for sealed models.
func ReadModel(r io.Reader, passphrase string, readExtended bool) (*vectors.SequenceVectors, Format, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	prefix, err := br.Peek(DetectPrefixSize)
	if err != nil && len(prefix) == 0 {
		return nil, FormatUnknown, fmt.Errorf("failed to read model: %w", err)
	}

	format := DetectFormat(prefix)
	var s *vectors.SequenceVectors
	switch format {
	case FormatNative:
		s, err = ReadSequenceVectors(br, readExtended)
	case FormatText:
		s, err = ReadSequenceVectorsText(br, readExtended)
	case FormatSealed:
		s, err = ReadSealed(br, passphrase, readExtended)
	case FormatArchive:
		var data []byte
		data, err = io.ReadAll(br)
		if err == nil {
			var m *vectors.Word2Vec
			m, err = ReadWord2VecModel(bytes.NewReader(data), int64(len(data)), readExtended)
			s = unwrap(m)
		}
	case FormatGoogleText, FormatGzip:
		var m *vectors.Word2Vec
		m, err = readGoogleAny(br)
		s = unwrap(m)
	case FormatGoogleBinary:
		var m *vectors.Word2Vec
		m, err = ReadBinary(br)
		s = unwrap(m)
	default:
		return nil, FormatUnknown, ErrUnknownFormat
	}
	if err != nil {
		return nil, format, err
	}
	return s, format, nil
}

// readGoogleAny decompresses gzip input if needed and picks text or binary.
func readGoogleAny(r io.Reader) (*vectors.Word2Vec, error) {
	br, closeFn, err := maybeGunzip(r)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	prefix, _ := br.Peek(DetectPrefixSize)
	if DetectFormat(prefix) == FormatGoogleBinary {
		return ReadBinary(br)
	}
	return ReadWordVectors(br)
}

func unwrap(m *vectors.Word2Vec) *vectors.SequenceVectors {
	if m == nil {
		return nil
	}
	return m.SequenceVectors
}
