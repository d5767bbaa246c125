// Package lookup provides the in-memory weight tables of an embedding model.
package lookup

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/wordvec/internal/vocab"
)

// Table holds the weight matrices of an embedding model.
//
// Syn0 rows are the element vectors, indexed by vocabulary index. Syn1 holds
// hierarchic-softmax weights and Syn1Neg negative-sampling weights; both are
// auxiliary and may be nil.
type Table struct {
	syn0    *Matrix
	syn1    *Matrix
	syn1Neg *Matrix

	vocab        *vocab.Cache
	vectorLength int
	useAdaGrad   bool
	negative     float64
	seed         int64
}

// Option configures a Table.
type Option func(*Table)

// WithVocab binds the table to a vocabulary.
func WithVocab(c *vocab.Cache) Option {
	return func(t *Table) {
		t.vocab = c
	}
}

// WithVectorLength sets the embedding dimension.
func WithVectorLength(n int) Option {
	return func(t *Table) {
		t.vectorLength = n
	}
}

// WithUseAdaGrad records whether training used AdaGrad.
func WithUseAdaGrad(use bool) Option {
	return func(t *Table) {
		t.useAdaGrad = use
	}
}

// WithNegative sets the number of negative samples.
func WithNegative(n float64) Option {
	return func(t *Table) {
		t.negative = n
	}
}

// WithSeed sets the weight initialization seed.
func WithSeed(seed int64) Option {
	return func(t *Table) {
		t.seed = seed
	}
}

// DefaultVectorLength is used when no vector length is configured.
const DefaultVectorLength = 100

// NewTable creates an empty lookup table.
func NewTable(opts ...Option) *Table {
	t := &Table{vectorLength: DefaultVectorLength}
	for _, opt := range opts {
		opt(t)
	}
	if t.vocab == nil {
		t.vocab = vocab.NewCache()
	}
	return t
}

// Vocab returns the bound vocabulary.
func (t *Table) Vocab() *vocab.Cache { return t.vocab }

// SetVocab rebinds the table to c.
func (t *Table) SetVocab(c *vocab.Cache) { t.vocab = c }

// LayerSize returns the embedding dimension.
func (t *Table) LayerSize() int { return t.vectorLength }

// UseAdaGrad reports whether training used AdaGrad.
func (t *Table) UseAdaGrad() bool { return t.useAdaGrad }

// Negative returns the number of negative samples.
func (t *Table) Negative() float64 { return t.negative }

// Seed returns the weight initialization seed.
func (t *Table) Seed() int64 { return t.seed }

// Syn0 returns the element vectors.
func (t *Table) Syn0() *Matrix { return t.syn0 }

// Syn1 returns the hierarchic-softmax weights.
func (t *Table) Syn1() *Matrix { return t.syn1 }

// Syn1Neg returns the negative-sampling weights.
func (t *Table) Syn1Neg() *Matrix { return t.syn1Neg }

// SetSyn0 replaces the element vectors. The vector length follows its columns.
func (t *Table) SetSyn0(m *Matrix) {
	t.syn0 = m
	if m != nil && m.Cols() > 0 {
		t.vectorLength = m.Cols()
	}
}

// SetSyn1 replaces the hierarchic-softmax weights.
func (t *Table) SetSyn1(m *Matrix) { t.syn1 = m }

// SetSyn1Neg replaces the negative-sampling weights.
func (t *Table) SetSyn1Neg(m *Matrix) { t.syn1Neg = m }

// ResetWeights allocates the weight matrices for the current vocabulary.
//
// Syn0 is drawn uniformly from [-0.5/len, 0.5/len) with the table seed, Syn1
// is zeroed, and Syn1Neg is zeroed when negative sampling is enabled. Without
// reset only missing matrices are allocated.
func (t *Table) ResetWeights(reset bool) {
	rows := t.vocab.NumWords()
	cols := t.vectorLength

	if reset || t.syn0 == nil {
		//nolint:gosec // math/rand is appropriate for weight initialization
		rng := rand.New(rand.NewSource(t.seed))
		t.syn0 = NewMatrix(rows, cols)
		for i := range t.syn0.data {
			t.syn0.data[i] = float32((rng.Float64() - 0.5) / float64(cols))
		}
	}
	if reset || t.syn1 == nil {
		t.syn1 = NewMatrix(rows, cols)
	}
	if t.negative > 0 && (reset || t.syn1Neg == nil) {
		t.syn1Neg = NewMatrix(rows, cols)
	}
}

// VectorFor returns the syn0 row of word.
func (t *Table) VectorFor(word string) ([]float32, bool) {
	idx := t.vocab.IndexOf(word)
	if idx < 0 || t.syn0 == nil || idx >= t.syn0.Rows() {
		return nil, false
	}
	return t.syn0.Row(idx), true
}

// PutVector stores v as the syn0 row of word.
func (t *Table) PutVector(word string, v []float32) error {
	idx := t.vocab.IndexOf(word)
	if idx < 0 {
		return fmt.Errorf("%w: %q", vocab.ErrUnknownWord, word)
	}
	if t.syn0 == nil {
		return fmt.Errorf("syn0 is not allocated")
	}
	return t.syn0.PutRow(idx, v)
}
