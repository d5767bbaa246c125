package serialization

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/wordvec/internal/lookup"
	"github.com/born-ml/wordvec/internal/vectors"
	"github.com/born-ml/wordvec/internal/vocab"
)

// newTestCache builds the vocabulary {word: 1, test: 2, tester: 3} indexed in
// insertion order.
func newTestCache(t testing.TB) *vocab.Cache {
	t.Helper()
	cache := vocab.NewCache()
	words := []*vocab.VocabWord{
		vocab.NewVocabWord(1.0, "word"),
		vocab.NewVocabWord(2.0, "test"),
		vocab.NewVocabWord(3.0, "tester"),
	}
	for i, w := range words {
		cache.AddToken(w)
		require.NoError(t, cache.AddWordToIndex(i, w.Word))
	}
	return cache
}

// newTestMatrix fills a rows x cols matrix with distinct values derived from seed.
func newTestMatrix(rows, cols int, seed float32) *lookup.Matrix {
	m := lookup.NewMatrix(rows, cols)
	for i := range m.Data() {
		m.Data()[i] = seed*float32(i+1) - float32(i)/7
	}
	return m
}

// newTestTable returns a table over cache with 10x2 syn0, syn1 and syn1neg.
func newTestTable(cache *vocab.Cache) *lookup.Table {
	table := lookup.NewTable(
		lookup.WithVocab(cache),
		lookup.WithVectorLength(2),
		lookup.WithUseAdaGrad(false),
	)
	table.SetSyn0(newTestMatrix(10, 2, 0.5))
	table.SetSyn1(newTestMatrix(10, 2, -0.25))
	table.SetSyn1Neg(newTestMatrix(10, 2, 0.125))
	return table
}

func newTestSequenceVectors(t testing.TB) *vectors.SequenceVectors {
	t.Helper()
	cache := newTestCache(t)
	return vectors.New(nil, vectors.WithVocab(cache), vectors.WithLookupTable(newTestTable(cache)))
}

func newTestWord2Vec(t testing.TB) *vectors.Word2Vec {
	t.Helper()
	cache := newTestCache(t)
	return vectors.NewWord2Vec(nil,
		vectors.WithVocab(cache),
		vectors.WithLookupTable(newTestTable(cache)),
		vectors.WithLayerSize(200),
	)
}

// assertSameVocab checks configuration equality, the vocabulary totals and
// every element by index.
func assertSameVocab(t *testing.T, want, got *vectors.SequenceVectors) {
	t.Helper()

	require.NotNil(t, got)
	if diff := cmp.Diff(want.Configuration(), got.Configuration(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("configuration mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, want.Configuration().Equal(got.Configuration()))

	wantVocab, gotVocab := want.Vocab(), got.Vocab()
	assert.Equal(t, wantVocab.TotalWordOccurrences(), gotVocab.TotalWordOccurrences())
	assert.Equal(t, wantVocab.TotalNumberOfDocs(), gotVocab.TotalNumberOfDocs())
	assert.Equal(t, wantVocab.NumWords(), gotVocab.NumWords())

	for _, wantElem := range wantVocab.Elements() {
		if wantElem.Index < 0 {
			gotElem, ok := gotVocab.WordFor(wantElem.Word)
			require.True(t, ok, "unindexed %q missing", wantElem.Word)
			assert.True(t, wantElem.Equal(gotElem), "want %+v, got %+v", wantElem, gotElem)
			continue
		}
		gotLabel, ok := gotVocab.WordAtIndex(wantElem.Index)
		require.True(t, ok, "index %d missing", wantElem.Index)
		assert.Equal(t, wantElem.Word, gotLabel)

		gotElem, _ := gotVocab.ElementAtIndex(wantElem.Index)
		assert.True(t, wantElem.Equal(gotElem), "element %d: want %+v, got %+v", wantElem.Index, wantElem, gotElem)
	}
}

// assertSameWordVectors compares the syn0 rows of every vocabulary word.
func assertSameWordVectors(t *testing.T, want, got *vectors.SequenceVectors) {
	t.Helper()
	for _, word := range want.Vocab().Words() {
		wantVec, ok := want.WordVector(word)
		require.True(t, ok)
		gotVec, ok := got.WordVector(word)
		require.True(t, ok, "no vector for %q", word)
		assert.Equal(t, wantVec, gotVec, "vector of %q", word)
	}
}

func assertSameMatrix(t *testing.T, want, got *lookup.Matrix, name string) {
	t.Helper()
	require.NotNil(t, got, "%s missing", name)
	assert.True(t, want.Equal(got), "%s differs: want %v, got %v", name, want.Data(), got.Data())
}
