package serialization

import (
	"archive/zip"
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

// Archive entry names.
const (
	EntryConfig      = "config.json"
	EntryVocab       = "vocab.json"
	EntrySyn0        = "syn0.txt"
	EntrySyn1        = "syn1.txt"
	EntrySyn1Neg     = "syn1Neg.txt"
	EntryCodes       = "codes.txt"
	EntryHuffman     = "huffman.txt"
	EntryFrequencies = "frequencies.txt"
)

// WriteWord2VecModel writes m as a zip archive. syn0 is stored in the word2vec
// text format, syn1 and syn1neg as raw rows when present, and each element's
// codes, points and counts in separate entries keyed by B64: labels.
func WriteWord2VecModel(w io.Writer, m *vectors.Word2Vec) error {
	zw := zip.NewWriter(w)

	cfgJSON, err := m.Configuration().ToJSON()
	if err != nil {
		return err
	}

	table := m.LookupTable()
	cache := m.Vocab()
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
	if syn0 := table.Syn0(); syn0 != nil {
		stats.Rows = syn0.Rows()
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal vocabulary stats: %w", err)
	}

	elems := cache.Elements()
	entries := []struct {
		name  string
		write func(*bufio.Writer) error
	}{
		{EntryConfig, func(bw *bufio.Writer) error { _, err := bw.Write(cfgJSON); return err }},
		{EntryVocab, func(bw *bufio.Writer) error { _, err := bw.Write(statsJSON); return err }},
		{EntrySyn0, func(bw *bufio.Writer) error { return writeWordVectors(bw, m.SequenceVectors) }},
		{EntrySyn1, func(bw *bufio.Writer) error { writeRows(bw, table.Syn1()); return nil }},
		{EntrySyn1Neg, func(bw *bufio.Writer) error { writeRows(bw, table.Syn1Neg()); return nil }},
		{EntryCodes, func(bw *bufio.Writer) error {
			for _, e := range elems {
				bw.WriteString(b64Label(e.Word))
				for _, c := range e.Codes {
					bw.WriteByte(' ')
					bw.WriteString(strconv.Itoa(int(c)))
				}
				bw.WriteByte('\n')
			}
			return nil
		}},
		{EntryHuffman, func(bw *bufio.Writer) error {
			for _, e := range elems {
				bw.WriteString(b64Label(e.Word))
				for _, p := range e.Points {
					bw.WriteByte(' ')
					bw.WriteString(strconv.Itoa(p))
				}
				bw.WriteByte('\n')
			}
			return nil
		}},
		{EntryFrequencies, func(bw *bufio.Writer) error {
			for _, e := range elems {
				fmt.Fprintf(bw, "%s %d %s %d %d %t %t\n",
					b64Label(e.Word), e.Index,
					strconv.FormatFloat(e.Frequency, 'g', -1, 64),
					e.SequencesCount, e.CodeLength, e.Special, e.IsLabel)
			}
			return nil
		}},
	}

	for _, entry := range entries {
		if entry.name == EntrySyn1 && table.Syn1() == nil || entry.name == EntrySyn1Neg && table.Syn1Neg() == nil {
			continue
		}
		fw, err := zw.Create(entry.name)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", entry.name, err)
		}
		bw := bufio.NewWriter(fw)
		if err := entry.write(bw); err != nil {
			return fmt.Errorf("failed to write %s: %w", entry.name, err)
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("failed to write %s: %w", entry.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}

// ReadWord2VecModel reads an archive written by WriteWord2VecModel. syn1 and
// syn1neg are restored only when readExtended is set.
//
//nolint:gocognit,gocyclo,cyclop // One pass per archive entry
func ReadWord2VecModel(r io.ReaderAt, size int64, readExtended bool) (*vectors.Word2Vec, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	cfgJSON, err := readEntry(zr, EntryConfig)
	if err != nil {
		return nil, err
	}
	cfg, err := config.FromJSON(cfgJSON)
	if err != nil {
		return nil, err
	}

	statsJSON, err := readEntry(zr, EntryVocab)
	if err != nil {
		return nil, err
	}
	var stats textStats
	if err := json.Unmarshal(statsJSON, &stats); err != nil {
		return nil, fmt.Errorf("%s: %w", EntryVocab, err)
	}

	// Elements.
	cache := vocab.NewCache()
	err = eachEntryLine(zr, EntryFrequencies, func(n int, fields []string) error {
		if len(fields) != 7 {
			return lineErrorf(n, "expected 7 fields, got %d", len(fields))
		}
		label, err := decodeLabel(fields[0])
		if err != nil {
			return lineErrorf(n, "%v", err)
		}
		if cache.ContainsWord(label) {
			return lineErrorf(n, "duplicate element %q", label)
		}
		index, err1 := strconv.Atoi(fields[1])
		freq, err2 := strconv.ParseFloat(fields[2], 64)
		seqs, err3 := strconv.ParseInt(fields[3], 10, 64)
		codeLen, err4 := strconv.Atoi(fields[4])
		special, err5 := strconv.ParseBool(fields[5])
		isLabel, err6 := strconv.ParseBool(fields[6])
		if err := errors.Join(err1, err2, err3, err4, err5, err6); err != nil {
			return lineErrorf(n, "%v", err)
		}

		elem := vocab.NewVocabWord(freq, label)
		elem.SequencesCount = seqs
		elem.CodeLength = codeLen
		elem.Special = special
		elem.IsLabel = isLabel
		cache.AddToken(elem)
		if index >= 0 {
			if err := cache.AddWordToIndex(index, label); err != nil {
				return &LineError{Line: n, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.SetTotalWordOccurrences(stats.TotalWordOccurrences)
	cache.SetTotalDocCount(stats.TotalDocs)

	err = eachEntryLine(zr, EntryCodes, func(n int, fields []string) error {
		elem, err := lineElement(cache, n, fields)
		if err != nil {
			return err
		}
		elem.Codes = nil
		for _, f := range fields[1:] {
			c, err := strconv.ParseInt(f, 10, 8)
			if err != nil {
				return lineErrorf(n, "%v", err)
			}
			elem.Codes = append(elem.Codes, int8(c))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachEntryLine(zr, EntryHuffman, func(n int, fields []string) error {
		elem, err := lineElement(cache, n, fields)
		if err != nil {
			return err
		}
		elem.Points = nil
		for _, f := range fields[1:] {
			p, err := strconv.Atoi(f)
			if err != nil {
				return lineErrorf(n, "%v", err)
			}
			elem.Points = append(elem.Points, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Weights.
	syn0Text, err := readEntry(zr, EntrySyn0)
	if err != nil {
		return nil, err
	}
	labels, vecs, err := parseWordVectors(newLineReader(strings.NewReader(string(syn0Text))))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EntrySyn0, err)
	}

	cols := stats.Lookup.VectorLength
	if vecs.Rows() > 0 {
		cols = vecs.Cols()
	}
	rows := stats.Rows
	for _, label := range labels {
		rows = max(rows, cache.IndexOf(label)+1)
	}
	if err := checkStatsShape(rows, cols); err != nil {
		return nil, fmt.Errorf("%s: %w", EntrySyn0, err)
	}
	syn0 := lookup.NewMatrix(rows, cols)
	for i, label := range labels {
		idx := cache.IndexOf(label)
		if idx < 0 {
			return nil, fmt.Errorf("%s: %w: %q", EntrySyn0, vocab.ErrUnknownWord, label)
		}
		if err := syn0.PutRow(idx, vecs.Row(i)); err != nil {
			return nil, err
		}
	}

	table := lookup.NewTable(
		lookup.WithVocab(cache),
		lookup.WithVectorLength(cols),
		lookup.WithUseAdaGrad(stats.Lookup.UseAdaGrad),
		lookup.WithNegative(stats.Lookup.Negative),
		lookup.WithSeed(stats.Lookup.Seed),
	)
	table.SetSyn0(syn0)

	if readExtended {
		syn1, err := readRows(zr, EntrySyn1, cols)
		if err != nil {
			return nil, err
		}
		table.SetSyn1(syn1)
		syn1Neg, err := readRows(zr, EntrySyn1Neg, cols)
		if err != nil {
			return nil, err
		}
		table.SetSyn1Neg(syn1Neg)
	}

	return vectors.NewWord2Vec(cfg, vectors.WithVocab(cache), vectors.WithLookupTable(table)), nil
}

func b64Label(label string) string {
	return b64Prefix + base64.StdEncoding.EncodeToString([]byte(label))
}

func lineElement(cache *vocab.Cache, n int, fields []string) (*vocab.VocabWord, error) {
	label, err := decodeLabel(fields[0])
	if err != nil {
		return nil, lineErrorf(n, "%v", err)
	}
	elem, ok := cache.WordFor(label)
	if !ok {
		return nil, &LineError{Line: n, Err: fmt.Errorf("%w: %q", vocab.ErrUnknownWord, label)}
	}
	return elem, nil
}

func writeRows(bw *bufio.Writer, m *lookup.Matrix) {
	for i := range m.Rows() {
		row := m.Row(i)
		for j, v := range row {
			if j > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		}
		bw.WriteByte('\n')
	}
}

// readRows reads a raw row entry. A missing entry yields nil.
func readRows(zr *zip.Reader, name string, cols int) (*lookup.Matrix, error) {
	if !hasEntry(zr, name) {
		return nil, nil
	}
	var data []float32
	rows := 0
	err := eachEntryLine(zr, name, func(n int, fields []string) error {
		values, err := parseFloats(fields)
		if err != nil {
			return lineErrorf(n, "%v", err)
		}
		if len(values) != cols {
			return lineErrorf(n, "row of length %d, expected %d", len(values), cols)
		}
		data = append(data, values...)
		rows++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lookup.NewMatrixFrom(rows, cols, data)
}

func hasEntry(zr *zip.Reader, name string) bool {
	for _, f := range zr.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

func openEntry(zr *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open %s: %w", name, err)
			}
			return rc, nil
		}
	}
	return nil, fmt.Errorf("%w: archive entry %s", ErrMissingTensor, name)
}

func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	rc, err := openEntry(zr, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// eachEntryLine calls fn with the fields of every non-blank line of name.
func eachEntryLine(zr *zip.Reader, name string, fn func(n int, fields []string) error) error {
	rc, err := openEntry(zr, name)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	lr := newLineReader(rc)
	for {
		line, err := lr.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if err := fn(lr.n, fields); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
}
