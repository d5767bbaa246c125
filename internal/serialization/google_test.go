package serialization

import (
	"bytes"
	"compress/gzip"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/born-ml/wordvec/internal/vectors"
)

func TestReadWordVectors_Golden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "google", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(strings.TrimSuffix(filepath.Base(file), ".txtar"), func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			require.NoError(t, err)

			var input, expect []byte
			for _, f := range ar.Files {
				switch f.Name {
				case "input":
					input = f.Data
				case "expect":
					expect = f.Data
				}
			}
			require.NotNil(t, input, "missing input section")
			require.NotNil(t, expect, "missing expect section")

			model, err := ReadWordVectors(bytes.NewReader(input))
			require.NoError(t, err)

			var out bytes.Buffer
			require.NoError(t, WriteWordVectors(&out, model.SequenceVectors))
			assert.Equal(t, string(expect), out.String())
		})
	}
}

func TestReadWordVectors_Vocabulary(t *testing.T) {
	model, err := ReadWordVectors(strings.NewReader("2 3\nalpha 1 2 3\nbeta 4 5 6\n"))
	require.NoError(t, err)

	cache := model.Vocab()
	assert.Equal(t, 2, cache.NumWords())
	assert.Equal(t, int64(2), cache.TotalWordOccurrences())
	assert.Equal(t, 1, cache.IndexOf("beta"))
	assert.Equal(t, 1.0, cache.WordFrequency("alpha"))
	assert.Equal(t, 3, model.LayerSize())

	vec, ok := model.WordVector("beta")
	require.True(t, ok)
	assert.Equal(t, []float32{4, 5, 6}, vec)
}

func TestReadWordVectors_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"ragged rows", "a 1 2\nb 1\n"},
		{"header count", "3 1\na 1\nb 2\n"},
		{"bad value", "a 1 x\n"},
		{"duplicate word", "a 1\na 2\n"},
		{"bad base64", "B64:%%% 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadWordVectors(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestReadWordVectors_LineError(t *testing.T) {
	_, err := ReadWordVectors(strings.NewReader("1 2\nok 1 2\nbad 1 nope\n"))
	var lineErr *LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, 3, lineErr.Line)
	assert.ErrorIs(t, err, ErrMalformedLine)
}

func assertGoogleModel(t *testing.T, want *vectors.SequenceVectors, got *vectors.Word2Vec) {
	t.Helper()
	require.Equal(t, want.Vocab().NumWords(), got.Vocab().NumWords())
	assert.Equal(t, int64(want.Vocab().NumWords()), got.Vocab().TotalWordOccurrences())
	for i, word := range want.Vocab().Words() {
		assert.Equal(t, i, got.Vocab().IndexOf(word))
	}
	assertSameWordVectors(t, want, got.SequenceVectors)
}

func TestWordVectorsRoundTrip(t *testing.T) {
	model := newTestSequenceVectors(t)

	var buf bytes.Buffer
	require.NoError(t, WriteWordVectors(&buf, model))
	assert.True(t, strings.HasPrefix(buf.String(), "3 2\n"))

	restored, err := ReadWordVectors(&buf)
	require.NoError(t, err)
	assertGoogleModel(t, model, restored)
}

func TestBinaryRoundTrip(t *testing.T) {
	model := newTestSequenceVectors(t)

	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, model))

	restored, err := ReadBinary(&buf)
	require.NoError(t, err)
	assertGoogleModel(t, model, restored)
}

func TestGzipInput(t *testing.T) {
	model := newTestSequenceVectors(t)

	for name, write := range map[string]func(*bytes.Buffer) error{
		"text":   func(b *bytes.Buffer) error { return WriteWordVectors(b, model) },
		"binary": func(b *bytes.Buffer) error { return WriteBinary(b, model) },
	} {
		t.Run(name, func(t *testing.T) {
			var plain bytes.Buffer
			require.NoError(t, write(&plain))

			var compressed bytes.Buffer
			zw := gzip.NewWriter(&compressed)
			_, err := zw.Write(plain.Bytes())
			require.NoError(t, err)
			require.NoError(t, zw.Close())

			var restored *vectors.Word2Vec
			if name == "text" {
				restored, err = ReadWordVectors(&compressed)
			} else {
				restored, err = ReadBinary(&compressed)
			}
			require.NoError(t, err)
			assertGoogleModel(t, model, restored)
		})
	}
}

func TestReadBinary_Malformed(t *testing.T) {
	for name, input := range map[string]string{
		"no header":       "",
		"bad header":      "x y\n",
		"short vector":    "1 2\nword \x00\x00\x80\x3f",
		"missing words":   "2 1\nword \x00\x00\x80\x3f\n",
		"huge dimensions": "1 100000000\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadBinary(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestWriteBinary_RejectsWhitespaceLabels(t *testing.T) {
	model, err := ReadWordVectors(strings.NewReader("B64:bmV3IHlvcms= 1\n"))
	require.NoError(t, err)
	assert.Error(t, WriteBinary(&bytes.Buffer{}, model.SequenceVectors))
}
