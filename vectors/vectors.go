// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package vectors

import (
	"github.com/born-ml/wordvec/internal/config"
	"github.com/born-ml/wordvec/internal/lookup"
	"github.com/born-ml/wordvec/internal/tokenizer"
	"github.com/born-ml/wordvec/internal/vectors"
	"github.com/born-ml/wordvec/internal/vocab"
)

// Models

// SequenceVectors is an embedding model over sequences of elements.
type SequenceVectors = vectors.SequenceVectors

// Word2Vec is a word-level SequenceVectors model.
type Word2Vec = vectors.Word2Vec

// Option configures a model built by New or NewWord2Vec.
type Option = vectors.Option

// ModelUtils computes similarities over a lookup table.
type ModelUtils = vectors.ModelUtils

// BasicModelUtils is the cosine-similarity ModelUtils.
type BasicModelUtils = vectors.BasicModelUtils

// New assembles a SequenceVectors model. A nil cfg means DefaultConfiguration().
func New(cfg *VectorsConfiguration, opts ...Option) *SequenceVectors {
	return vectors.New(cfg, opts...)
}

// NewWord2Vec assembles a Word2Vec model.
//
// Example:
//
//	model := vectors.NewWord2Vec(nil, vectors.WithVocab(cache), vectors.WithLayerSize(200))
func NewWord2Vec(cfg *VectorsConfiguration, opts ...Option) *Word2Vec {
	return vectors.NewWord2Vec(cfg, opts...)
}

// FromSequenceVectors views s as a Word2Vec model.
func FromSequenceVectors(s *SequenceVectors) *Word2Vec {
	return vectors.FromSequenceVectors(s)
}

// WithVocab sets the vocabulary cache.
func WithVocab(c *Cache) Option { return vectors.WithVocab(c) }

// WithLookupTable sets the weight tables.
func WithLookupTable(t *Table) Option { return vectors.WithLookupTable(t) }

// WithLayerSize sets the configured layer size.
func WithLayerSize(n int) Option { return vectors.WithLayerSize(n) }

// WithModelUtils replaces the similarity implementation.
func WithModelUtils(u ModelUtils) Option { return vectors.WithModelUtils(u) }

// NewBasicModelUtils creates the default cosine-similarity ModelUtils.
func NewBasicModelUtils() *BasicModelUtils { return vectors.NewBasicModelUtils() }

// CosineSimilarity returns the cosine similarity of two vectors.
func CosineSimilarity(a, b []float32) float64 { return vectors.CosineSimilarity(a, b) }

// Vocabulary

// Cache is a thread-safe vocabulary.
type Cache = vocab.Cache

// VocabWord is a single vocabulary element.
type VocabWord = vocab.VocabWord

// Constructor builds a vocabulary from text.
type Constructor = vocab.Constructor

// NewCache creates an empty vocabulary.
func NewCache() *Cache { return vocab.NewCache() }

// NewVocabWord creates an unindexed element.
func NewVocabWord(frequency float64, word string) *VocabWord {
	return vocab.NewVocabWord(frequency, word)
}

// BuildHuffman assigns Huffman codes and points to every element of c.
func BuildHuffman(c *Cache) error { return vocab.BuildHuffman(c) }

// NewConstructor creates a vocabulary constructor. A nil tokenizer means
// lowercase whitespace tokenization.
func NewConstructor(tok tokenizer.Tokenizer, minFrequency float64, stopWords []string) *Constructor {
	return vocab.NewConstructor(tok, minFrequency, stopWords)
}

// Weights

// Table holds the syn0, syn1 and syn1neg weight matrices.
type Table = lookup.Table

// Matrix is a dense row-major float32 matrix.
type Matrix = lookup.Matrix

// TableOption configures a Table.
type TableOption = lookup.Option

// NewTable creates a lookup table.
func NewTable(opts ...TableOption) *Table { return lookup.NewTable(opts...) }

// WithTableVocab binds a table to a vocabulary.
func WithTableVocab(c *Cache) TableOption { return lookup.WithVocab(c) }

// WithVectorLength sets the table's vector length.
func WithVectorLength(n int) TableOption { return lookup.WithVectorLength(n) }

// WithUseAdaGrad records whether AdaGrad is used.
func WithUseAdaGrad(use bool) TableOption { return lookup.WithUseAdaGrad(use) }

// WithNegative sets the number of negative samples.
func WithNegative(n float64) TableOption { return lookup.WithNegative(n) }

// WithSeed sets the weight initialization seed.
func WithSeed(seed int64) TableOption { return lookup.WithSeed(seed) }

// NewMatrix creates a zero-filled matrix.
func NewMatrix(rows, cols int) *Matrix { return lookup.NewMatrix(rows, cols) }

// Configuration

// VectorsConfiguration holds the hyperparameters stored with a model.
type VectorsConfiguration = config.VectorsConfiguration

// DefaultConfiguration returns the standard word2vec configuration.
func DefaultConfiguration() *VectorsConfiguration { return config.Default() }

// LoadConfiguration reads a YAML configuration file.
func LoadConfiguration(path string) (*VectorsConfiguration, error) { return config.LoadYAML(path) }
