// Package tokenizer splits text into the tokens counted by a vocabulary.
//
// Supported tokenizers:
//   - Whitespace: splits on Unicode whitespace, optionally lowercasing and
//     dropping punctuation
//   - TikToken: OpenAI BPE pieces (cl100k_base, p50k_base, r50k_base)
//
// Example usage:
//
//	import "github.com/born-ml/wordvec/tokenizer"
//
//	tok, err := tokenizer.New("whitespace")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tokens, err := tok.Tokenize("Hello, world!")
package tokenizer

import (
	"github.com/born-ml/wordvec/internal/tokenizer"
)

// Tokenizer is the core interface for text tokenization.
type Tokenizer = tokenizer.Tokenizer

// Whitespace splits text on Unicode whitespace.
type Whitespace = tokenizer.Whitespace

// WhitespaceOption configures a Whitespace tokenizer.
type WhitespaceOption = tokenizer.WhitespaceOption

// TikToken produces BPE pieces.
type TikToken = tokenizer.TikToken

// New returns the tokenizer registered under name.
//
// "" and "whitespace" select a lowercasing, punctuation-stripping Whitespace
// tokenizer; tiktoken encoding names select TikToken.
func New(name string) (Tokenizer, error) {
	return tokenizer.New(name)
}

// NewWhitespace creates a whitespace tokenizer.
func NewWhitespace(opts ...WhitespaceOption) *Whitespace {
	return tokenizer.NewWhitespace(opts...)
}

// WithLowercase lowercases every token.
func WithLowercase() WhitespaceOption { return tokenizer.WithLowercase() }

// WithStripPunctuation removes punctuation and symbols from tokens.
func WithStripPunctuation() WhitespaceOption { return tokenizer.WithStripPunctuation() }

// NewTikToken creates a new TikToken tokenizer with the specified encoding.
//
// Supported encodings: "cl100k_base" (GPT-4), "p50k_base" (GPT-3).
func NewTikToken(encodingName string) (*TikToken, error) {
	return tokenizer.NewTikToken(encodingName)
}

// NewTikTokenForModel creates a TikToken tokenizer for a specific model.
//
// Example models: "gpt-4", "gpt-3.5-turbo", "text-embedding-ada-002".
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	return tokenizer.NewTikTokenForModel(modelName)
}
