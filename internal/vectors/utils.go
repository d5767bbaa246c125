package vectors

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/born-ml/wordvec/internal/lookup"
	"github.com/born-ml/wordvec/internal/parallel"
	"github.com/born-ml/wordvec/internal/vocab"
)

// ErrNoTable is returned by queries on a model without syn0 weights.
var ErrNoTable = errors.New("model has no lookup table weights")

// ModelUtils answers similarity queries over a lookup table.
type ModelUtils interface {
	// Init binds the utilities to a table.
	Init(table *lookup.Table)

	// Similarity returns the cosine similarity of two words.
	Similarity(a, b string) (float64, error)

	// WordsNearest returns up to n words closest to word, best first.
	WordsNearest(word string, n int) ([]string, error)
}

// BasicModelUtils implements ModelUtils with cosine similarity.
type BasicModelUtils struct {
	table *lookup.Table
	par   parallel.Config
}

// NewBasicModelUtils creates cosine-similarity utilities.
func NewBasicModelUtils() *BasicModelUtils {
	return &BasicModelUtils{par: parallel.DefaultConfig()}
}

// Init binds u to table.
func (u *BasicModelUtils) Init(table *lookup.Table) {
	u.table = table
}

// SetParallel overrides the worker configuration used by WordsNearest.
func (u *BasicModelUtils) SetParallel(cfg parallel.Config) {
	u.par = cfg
}

func (u *BasicModelUtils) vector(word string) ([]float32, error) {
	if u.table == nil || u.table.Syn0() == nil {
		return nil, ErrNoTable
	}
	v, ok := u.table.VectorFor(word)
	if !ok {
		return nil, fmt.Errorf("%w: %q", vocab.ErrUnknownWord, word)
	}
	return v, nil
}

// Similarity returns the cosine similarity of a and b.
func (u *BasicModelUtils) Similarity(a, b string) (float64, error) {
	va, err := u.vector(a)
	if err != nil {
		return 0, err
	}
	vb, err := u.vector(b)
	if err != nil {
		return 0, err
	}
	return CosineSimilarity(va, vb), nil
}

// WordsNearest scores every indexed word against word and returns the best n.
func (u *BasicModelUtils) WordsNearest(word string, n int) ([]string, error) {
	query, err := u.vector(word)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	syn0 := u.table.Syn0()
	cache := u.table.Vocab()
	self := cache.IndexOf(word)

	scores := make([]float64, syn0.Rows())
	parallel.ForRange(len(scores), func(start, end int) {
		for i := start; i < end; i++ {
			scores[i] = CosineSimilarity(query, syn0.Row(i))
		}
	}, u.par)

	type hit struct {
		word  string
		score float64
	}
	hits := make([]hit, 0, len(scores))
	for i, s := range scores {
		if i == self {
			continue
		}
		label, ok := cache.WordAtIndex(i)
		if !ok {
			continue
		}
		hits = append(hits, hit{word: label, score: s})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	if len(hits) > n {
		hits = hits[:n]
	}
	result := make([]string, len(hits))
	for i, h := range hits {
		result[i] = h.word
	}
	return result, nil
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 for mismatched lengths or zero vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0 {
		return 0
	}
	return dot / denominator
}
