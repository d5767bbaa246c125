package tokenizer

import (
	"fmt"
	"strings"
)

// Tokenizer is the core interface for text tokenization.
//
// All tokenizer implementations (whitespace, tiktoken) must implement this interface.
type Tokenizer interface {
	// Tokenize converts text to a sequence of string tokens.
	Tokenize(text string) ([]string, error)

	// Name returns the tokenizer name as stored in model configuration.
	Name() string
}

// NameWhitespace is the configuration name of the whitespace tokenizer.
const NameWhitespace = "whitespace"

// New returns the tokenizer registered under name.
//
// "whitespace" (or "") yields a lowercasing Whitespace tokenizer; any other
// name is treated as a tiktoken encoding name.
func New(name string) (Tokenizer, error) {
	switch strings.ToLower(name) {
	case "", NameWhitespace:
		return NewWhitespace(WithLowercase(), WithStripPunctuation()), nil
	case encodingCL100kBase, encodingP50kBase, encodingR50kBase:
		return NewTikToken(name)
	default:
		return nil, fmt.Errorf("unknown tokenizer %q", name)
	}
}
