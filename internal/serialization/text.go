package serialization

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/born-ml/wordvec/internal/config"
	"github.com/born-ml/wordvec/internal/lookup"
	"github.com/born-ml/wordvec/internal/vectors"
	"github.com/born-ml/wordvec/internal/vocab"
)

// b64Prefix marks a base64 encoded label or element.
const b64Prefix = "B64:"

// textStats is the second line of the sequence-vectors text format.
type textStats struct {
	TotalWordOccurrences int64      `json:"total_word_occurrences"`
	TotalDocs            int64      `json:"total_docs"`
	Rows                 int        `json:"rows"` // syn0 rows, may exceed the vocabulary
	Lookup               LookupMeta `json:"lookup"`
}

// WriteSequenceVectorsText writes s as text: the configuration JSON, the
// vocabulary statistics JSON, then one line per element holding the base64
// encoded element and its syn0 row.
func WriteSequenceVectorsText(w io.Writer, s *vectors.SequenceVectors) error {
	cfgJSON, err := s.Configuration().ToJSON()
	if err != nil {
		return err
	}

	table := s.LookupTable()
	cache := s.Vocab()
	syn0 := table.Syn0()

	stats := textStats{
		TotalWordOccurrences: cache.TotalWordOccurrences(),
		TotalDocs:            cache.TotalNumberOfDocs(),
		Lookup: LookupMeta{
			VectorLength: table.LayerSize(),
			UseAdaGrad:   table.UseAdaGrad(),
			Negative:     table.Negative(),
			Seed:         table.Seed(),
		},
	}
	if syn0 != nil {
		stats.Rows = syn0.Rows()
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal vocabulary stats: %w", err)
	}

	bw := bufio.NewWriter(w)
	bw.Write(cfgJSON)
	bw.WriteByte('\n')
	bw.Write(statsJSON)
	bw.WriteByte('\n')

	for _, elem := range cache.Elements() {
		elemJSON, err := json.Marshal(elem)
		if err != nil {
			return fmt.Errorf("failed to marshal element %q: %w", elem.Word, err)
		}
		bw.WriteString(b64Prefix)
		bw.WriteString(base64.StdEncoding.EncodeToString(elemJSON))
		if syn0 != nil && elem.Index >= 0 && elem.Index < syn0.Rows() {
			writeFloats(bw, syn0.Row(elem.Index))
		}
		bw.WriteByte('\n')
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write text model: %w", err)
	}
	return nil
}

// ReadSequenceVectorsText reads the format written by WriteSequenceVectorsText.
// With readExtended, zeroed syn1 and syn1neg matrices of syn0's shape are
// allocated.
//
//nolint:gocognit // Line-oriented parsing
func ReadSequenceVectorsText(r io.Reader, readExtended bool) (*vectors.SequenceVectors, error) {
	lr := newLineReader(r)

	line, err := lr.next()
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	cfg, err := config.FromJSON([]byte(line))
	if err != nil {
		return nil, &LineError{Line: lr.n, Err: err}
	}

	line, err = lr.next()
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary stats: %w", err)
	}
	var stats textStats
	if err := json.Unmarshal([]byte(line), &stats); err != nil {
		return nil, lineErrorf(lr.n, "vocabulary stats: %v", err)
	}
	if err := checkStatsShape(stats.Rows, stats.Lookup.VectorLength); err != nil {
		return nil, &LineError{Line: lr.n, Err: err}
	}

	cache := vocab.NewCache()
	type pending struct {
		index  int
		values []float32
	}
	var rows []pending
	maxIndex := -1

	for {
		line, err := lr.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		elem, err := decodeElement(fields[0])
		if err != nil {
			return nil, lineErrorf(lr.n, "%v", err)
		}
		values, err := parseFloats(fields[1:])
		if err != nil {
			return nil, lineErrorf(lr.n, "%v", err)
		}

		index := elem.Index
		elem.Index = -1
		if cache.ContainsWord(elem.Word) {
			return nil, lineErrorf(lr.n, "duplicate element %q", elem.Word)
		}
		cache.AddToken(elem)
		if index >= 0 {
			if err := cache.AddWordToIndex(index, elem.Word); err != nil {
				return nil, &LineError{Line: lr.n, Err: err}
			}
			rows = append(rows, pending{index: index, values: values})
			maxIndex = max(maxIndex, index)
		} else if len(values) > 0 {
			return nil, lineErrorf(lr.n, "unindexed element %q has a vector", elem.Word)
		}
		if len(values) > stats.Lookup.VectorLength {
			return nil, lineErrorf(lr.n, "vector of length %d, expected %d", len(values), stats.Lookup.VectorLength)
		}
	}
	cache.SetTotalWordOccurrences(stats.TotalWordOccurrences)
	cache.SetTotalDocCount(stats.TotalDocs)

	table := lookup.NewTable(
		lookup.WithVocab(cache),
		lookup.WithVectorLength(stats.Lookup.VectorLength),
		lookup.WithUseAdaGrad(stats.Lookup.UseAdaGrad),
		lookup.WithNegative(stats.Lookup.Negative),
		lookup.WithSeed(stats.Lookup.Seed),
	)

	rowCount := max(stats.Rows, maxIndex+1)
	if err := lookup.CheckShape(rowCount, stats.Lookup.VectorLength); err != nil {
		return nil, fmt.Errorf("syn0: %w", err)
	}
	syn0 := lookup.NewMatrix(rowCount, stats.Lookup.VectorLength)
	for _, p := range rows {
		if err := syn0.PutRow(p.index, p.values); err != nil {
			return nil, err
		}
	}
	table.SetSyn0(syn0)
	if readExtended {
		table.SetSyn1(lookup.NewMatrix(syn0.Rows(), syn0.Cols()))
		table.SetSyn1Neg(lookup.NewMatrix(syn0.Rows(), syn0.Cols()))
	}

	return vectors.New(cfg, vectors.WithVocab(cache), vectors.WithLookupTable(table)), nil
}

// checkStatsShape bounds the syn0 shape announced by a stats record.
func checkStatsShape(rows, cols int) error {
	if cols > MaxBinaryVectorLength {
		return fmt.Errorf("%w: vector length %d exceeds %d", lookup.ErrShapeTooLarge, cols, MaxBinaryVectorLength)
	}
	return lookup.CheckShape(rows, cols)
}

func decodeElement(field string) (*vocab.VocabWord, error) {
	encoded, ok := strings.CutPrefix(field, b64Prefix)
	if !ok {
		return nil, fmt.Errorf("element does not start with %q", b64Prefix)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("element encoding: %w", err)
	}
	var elem vocab.VocabWord
	if err := json.Unmarshal(raw, &elem); err != nil {
		return nil, fmt.Errorf("element JSON: %w", err)
	}
	if elem.Word == "" {
		return nil, fmt.Errorf("element without a label")
	}
	return &elem, nil
}

// encodeLabel base64 encodes labels that would break a whitespace separated line.
func encodeLabel(label string) string {
	if label == "" || strings.HasPrefix(label, b64Prefix) || strings.IndexFunc(label, isSpace) >= 0 {
		return b64Prefix + base64.StdEncoding.EncodeToString([]byte(label))
	}
	return label
}

func decodeLabel(field string) (string, error) {
	encoded, ok := strings.CutPrefix(field, b64Prefix)
	if !ok {
		return field, nil
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("label encoding: %w", err)
	}
	return string(raw), nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

func writeFloats(w *bufio.Writer, values []float32) {
	var buf []byte
	for _, v := range values {
		buf = append(buf[:0], ' ')
		buf = strconv.AppendFloat(buf, float64(v), 'g', -1, 32)
		w.Write(buf)
	}
}

func parseFloats(fields []string) ([]float32, error) {
	values := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		values[i] = float32(v)
	}
	return values, nil
}

// lineReader yields lines without a length limit and counts them.
type lineReader struct {
	r *bufio.Reader
	n int
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// next returns the next line without its terminator, or io.EOF.
func (l *lineReader) next() (string, error) {
	line, err := l.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", io.EOF
	}
	l.n++
	return strings.TrimRight(line, "\r\n"), nil
}
