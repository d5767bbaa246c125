package serialization

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/born-ml/wordvec/internal/config"
	"github.com/born-ml/wordvec/internal/lookup"
	"github.com/born-ml/wordvec/internal/vectors"
	"github.com/born-ml/wordvec/internal/vocab"
)

// MaxBinaryVectorLength bounds the vector length accepted from binary headers.
const MaxBinaryVectorLength = 1 << 16

// WriteWordVectors writes the syn0 rows of every indexed element in the
// word2vec text format: a "N D" header, then one "word v1 ... vD" line each.
// Labels containing whitespace are base64 encoded with a B64: prefix.
func WriteWordVectors(w io.Writer, s *vectors.SequenceVectors) error {
	bw := bufio.NewWriter(w)
	if err := writeWordVectors(bw, s); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write word vectors: %w", err)
	}
	return nil
}

func writeWordVectors(bw *bufio.Writer, s *vectors.SequenceVectors) error {
	elems, syn0, err := vectorRows(s)
	if err != nil {
		return err
	}
	fmt.Fprintf(bw, "%d %d\n", len(elems), syn0.Cols())
	for _, elem := range elems {
		bw.WriteString(encodeLabel(elem.Word))
		writeFloats(bw, syn0.Row(elem.Index))
		bw.WriteByte('\n')
	}
	return nil
}

// WriteBinary writes the syn0 rows of every indexed element in the word2vec
// binary format: a "N D\n" header, then per word the label, a space, D
// little-endian float32 values and a newline.
func WriteBinary(w io.Writer, s *vectors.SequenceVectors) error {
	elems, syn0, err := vectorRows(s)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", len(elems), syn0.Cols())
	buf := make([]byte, 4*syn0.Cols())
	for _, elem := range elems {
		if strings.IndexFunc(elem.Word, isSpace) >= 0 {
			return fmt.Errorf("label %q contains whitespace", elem.Word)
		}
		bw.WriteString(elem.Word)
		bw.WriteByte(' ')
		for i, v := range syn0.Row(elem.Index) {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
		}
		bw.Write(buf)
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write binary vectors: %w", err)
	}
	return nil
}

// vectorRows returns the indexed elements that have a syn0 row.
func vectorRows(s *vectors.SequenceVectors) ([]*vocab.VocabWord, *lookup.Matrix, error) {
	syn0 := s.LookupTable().Syn0()
	if syn0 == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingTensor, TensorSyn0)
	}
	var elems []*vocab.VocabWord
	for _, elem := range s.Vocab().Elements() {
		if elem.Index >= 0 && elem.Index < syn0.Rows() {
			elems = append(elems, elem)
		}
	}
	return elems, syn0, nil
}

// ReadWordVectors reads the word2vec text format. The "N D" header is
// optional; gzip compressed input is detected and decompressed. Words get
// frequency 1 and indices in file order.
func ReadWordVectors(r io.Reader) (*vectors.Word2Vec, error) {
	br, closeFn, err := maybeGunzip(r)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	labels, syn0, err := parseWordVectors(newLineReader(br))
	if err != nil {
		return nil, err
	}
	return modelFromVectors(labels, syn0)
}

func parseWordVectors(lr *lineReader) ([]string, *lookup.Matrix, error) {
	var (
		labels   []string
		data     []float32
		cols     = -1
		expected = -1
	)
	for {
		line, err := lr.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if lr.n == 1 && len(fields) == 2 {
			n, errN := strconv.Atoi(fields[0])
			d, errD := strconv.Atoi(fields[1])
			if errN == nil && errD == nil {
				if n < 0 || d < 0 {
					return nil, nil, lineErrorf(lr.n, "negative header %d %d", n, d)
				}
				expected, cols = n, d
				continue
			}
		}

		label, err := decodeLabel(fields[0])
		if err != nil {
			return nil, nil, lineErrorf(lr.n, "%v", err)
		}
		values, err := parseFloats(fields[1:])
		if err != nil {
			return nil, nil, lineErrorf(lr.n, "%v", err)
		}
		if cols < 0 {
			cols = len(values)
		}
		if len(values) != cols {
			return nil, nil, lineErrorf(lr.n, "vector of length %d, expected %d", len(values), cols)
		}
		labels = append(labels, label)
		data = append(data, values...)
	}

	if expected >= 0 && expected != len(labels) {
		return nil, nil, fmt.Errorf("%w: header announces %d words, found %d", ErrMalformedLine, expected, len(labels))
	}
	cols = max(cols, 0)
	syn0, err := lookup.NewMatrixFrom(len(labels), cols, data)
	if err != nil {
		return nil, nil, err
	}
	return labels, syn0, nil
}

// ReadBinary reads the word2vec binary format, gzip compressed or not.
func ReadBinary(r io.Reader) (*vectors.Word2Vec, error) {
	br, closeFn, err := maybeGunzip(r)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	header, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read binary header: %w", err)
	}
	var n, d int
	if _, err := fmt.Sscanf(strings.TrimSpace(header), "%d %d", &n, &d); err != nil {
		return nil, fmt.Errorf("%w: binary header %q", ErrMalformedLine, strings.TrimSpace(header))
	}
	if n < 0 || d < 0 || d > MaxBinaryVectorLength {
		return nil, fmt.Errorf("%w: binary header %d %d", ErrMalformedLine, n, d)
	}

	labels := make([]string, 0, min(n, 1<<16))
	capHint := 1 << 22
	if d > 0 && n < capHint/d {
		capHint = n * d
	}
	data := make([]float32, 0, capHint)
	buf := make([]byte, 4*d)
	for i := range n {
		label, err := readBinaryLabel(br)
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i, err)
		}
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("word %d (%q): failed to read vector: %w", i, label, err)
		}
		for j := range d {
			data = append(data, math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:])))
		}
		labels = append(labels, label)
	}

	syn0, err := lookup.NewMatrixFrom(n, d, data)
	if err != nil {
		return nil, err
	}
	return modelFromVectors(labels, syn0)
}

// readBinaryLabel reads bytes up to a space, skipping the newline that ends
// the previous vector.
func readBinaryLabel(br *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		b, err := br.ReadByte()
		if err != nil {
			return "", fmt.Errorf("failed to read label: %w", err)
		}
		switch {
		case b == ' ':
			if sb.Len() == 0 {
				return "", fmt.Errorf("%w: empty label", ErrMalformedLine)
			}
			return sb.String(), nil
		case b == '\n' && sb.Len() == 0:
			continue
		case sb.Len() >= MaxWordLen:
			return "", fmt.Errorf("%w: label longer than %d bytes", ErrMalformedLine, MaxWordLen)
		default:
			sb.WriteByte(b)
		}
	}
}

// modelFromVectors builds a Word2Vec whose vocabulary holds labels in order.
func modelFromVectors(labels []string, syn0 *lookup.Matrix) (*vectors.Word2Vec, error) {
	cache := vocab.NewCache()
	for i, label := range labels {
		if cache.ContainsWord(label) {
			return nil, fmt.Errorf("duplicate word %q", label)
		}
		cache.AddToken(vocab.NewVocabWord(1, label))
		if err := cache.AddWordToIndex(i, label); err != nil {
			return nil, err
		}
	}
	cache.SetTotalWordOccurrences(int64(len(labels)))

	cfg := config.Default()
	if syn0.Cols() > 0 {
		cfg.LayersSize = syn0.Cols()
	}

	table := lookup.NewTable(
		lookup.WithVocab(cache),
		lookup.WithVectorLength(cfg.LayersSize),
		lookup.WithSeed(cfg.Seed),
	)
	table.SetSyn0(syn0)
	return vectors.NewWord2Vec(cfg, vectors.WithVocab(cache), vectors.WithLookupTable(table)), nil
}

// maybeGunzip wraps r in a gzip reader when it starts with the gzip magic.
func maybeGunzip(r io.Reader) (*bufio.Reader, func(), error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil || magic[0] != 0x1f || magic[1] != 0x8b {
		return br, func() {}, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	return bufio.NewReader(zr), func() { _ = zr.Close() }, nil
}
