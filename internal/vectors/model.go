package vectors

import (
	"github.com/born-ml/wordvec/internal/config"
	"github.com/born-ml/wordvec/internal/lookup"
	"github.com/born-ml/wordvec/internal/vocab"
)

// SequenceVectors is a trained embedding model over sequence elements.
type SequenceVectors struct {
	cfg   *config.VectorsConfiguration
	vocab *vocab.Cache
	table *lookup.Table
	utils ModelUtils
}

type options struct {
	vocab     *vocab.Cache
	table     *lookup.Table
	utils     ModelUtils
	layerSize int
}

// Option configures a model under construction.
type Option func(*options)

// WithVocab sets the vocabulary cache.
func WithVocab(c *vocab.Cache) Option {
	return func(o *options) {
		o.vocab = c
	}
}

// WithLookupTable sets the lookup table.
func WithLookupTable(t *lookup.Table) Option {
	return func(o *options) {
		o.table = t
	}
}

// WithLayerSize overrides the configured layer size.
func WithLayerSize(n int) Option {
	return func(o *options) {
		o.layerSize = n
	}
}

// WithModelUtils sets the similarity implementation.
func WithModelUtils(u ModelUtils) Option {
	return func(o *options) {
		o.utils = u
	}
}

// New assembles a model. A nil cfg means config.Default().
//
// Without a vocabulary the table's vocabulary is used, or an empty one.
// Without a table an empty one is created from cfg. An explicit vocabulary
// is bound to the table.
func New(cfg *config.VectorsConfiguration, opts ...Option) *SequenceVectors {
	if cfg == nil {
		cfg = config.Default()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.layerSize > 0 {
		cfg.LayersSize = o.layerSize
	}

	switch {
	case o.vocab == nil && o.table != nil:
		o.vocab = o.table.Vocab()
	case o.vocab == nil:
		o.vocab = vocab.NewCache()
	}

	if o.table == nil {
		o.table = lookup.NewTable(
			lookup.WithVocab(o.vocab),
			lookup.WithVectorLength(cfg.LayersSize),
			lookup.WithUseAdaGrad(cfg.UseAdaGrad),
			lookup.WithNegative(cfg.Negative),
			lookup.WithSeed(cfg.Seed),
		)
	} else {
		o.table.SetVocab(o.vocab)
	}

	if o.utils == nil {
		o.utils = NewBasicModelUtils()
	}
	o.utils.Init(o.table)

	return &SequenceVectors{
		cfg:   cfg,
		vocab: o.vocab,
		table: o.table,
		utils: o.utils,
	}
}

// Configuration returns the model configuration.
func (s *SequenceVectors) Configuration() *config.VectorsConfiguration { return s.cfg }

// Vocab returns the vocabulary cache.
func (s *SequenceVectors) Vocab() *vocab.Cache { return s.vocab }

// LookupTable returns the weight tables.
func (s *SequenceVectors) LookupTable() *lookup.Table { return s.table }

// ModelUtils returns the similarity implementation.
func (s *SequenceVectors) ModelUtils() ModelUtils { return s.utils }

// LayerSize returns the configured layer size.
func (s *SequenceVectors) LayerSize() int { return s.cfg.LayersSize }

// HasWord reports whether word is in the vocabulary.
func (s *SequenceVectors) HasWord(word string) bool {
	return s.vocab.ContainsWord(word)
}

// WordVector returns the syn0 row of word.
func (s *SequenceVectors) WordVector(word string) ([]float32, bool) {
	return s.table.VectorFor(word)
}

// Similarity returns the similarity of two words.
func (s *SequenceVectors) Similarity(a, b string) (float64, error) {
	return s.utils.Similarity(a, b)
}

// WordsNearest returns up to n words closest to word.
func (s *SequenceVectors) WordsNearest(word string, n int) ([]string, error) {
	return s.utils.WordsNearest(word, n)
}

// Word2Vec is a word-level SequenceVectors model.
type Word2Vec struct {
	*SequenceVectors
}

// NewWord2Vec assembles a Word2Vec model; see New.
func NewWord2Vec(cfg *config.VectorsConfiguration, opts ...Option) *Word2Vec {
	return &Word2Vec{SequenceVectors: New(cfg, opts...)}
}

// FromSequenceVectors views s as a Word2Vec model. The two share state.
func FromSequenceVectors(s *SequenceVectors) *Word2Vec {
	return &Word2Vec{SequenceVectors: s}
}
