package vocab

import (
	"context"
	"fmt"

	"github.com/born-ml/wordvec/internal/tokenizer"
)

// Constructor builds a vocabulary from raw documents.
type Constructor struct {
	tok          tokenizer.Tokenizer
	minFrequency float64
	stopWords    map[string]struct{}
	cache        *Cache
}

// NewConstructor creates a vocabulary constructor.
// Words with frequency below minFrequency are dropped by Build. A nil tok
// means lowercase whitespace tokenization.
func NewConstructor(tok tokenizer.Tokenizer, minFrequency float64, stopWords []string) *Constructor {
	if tok == nil {
		tok = tokenizer.NewWhitespace(tokenizer.WithLowercase())
	}
	stop := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stop[w] = struct{}{}
	}
	return &Constructor{
		tok:          tok,
		minFrequency: minFrequency,
		stopWords:    stop,
		cache:        NewCache(),
	}
}

// AddDocument tokenizes text and counts its tokens as one document.
func (b *Constructor) AddDocument(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tokens, err := b.tok.Tokenize(text)
	if err != nil {
		return fmt.Errorf("tokenizing document: %w", err)
	}

	counts := make(map[string]float64)
	for _, t := range tokens {
		if _, stop := b.stopWords[t]; stop {
			continue
		}
		counts[t]++
	}
	for label, n := range counts {
		b.cache.AddToken(NewVocabWord(n, label))
	}
	b.cache.IncrementTotalDocCount(1)
	return nil
}

// Build truncates the vocabulary, indexes it by descending frequency and
// assigns Huffman codes. The constructor must not be used afterwards.
func (b *Constructor) Build() (*Cache, error) {
	b.cache.Truncate(b.minFrequency)
	b.cache.UpdateWordsOccurrences()
	if err := BuildHuffman(b.cache); err != nil {
		return nil, fmt.Errorf("building huffman tree: %w", err)
	}
	return b.cache, nil
}
