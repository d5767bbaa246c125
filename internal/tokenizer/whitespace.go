package tokenizer

import (
	"strings"
	"unicode"
)

// Whitespace splits text on Unicode whitespace.
type Whitespace struct {
	lowercase        bool
	stripPunctuation bool
}

// WhitespaceOption configures a Whitespace tokenizer.
type WhitespaceOption func(*Whitespace)

// WithLowercase lowercases every token.
func WithLowercase() WhitespaceOption {
	return func(w *Whitespace) {
		w.lowercase = true
	}
}

// WithStripPunctuation removes punctuation and symbols from tokens.
// Tokens that become empty are dropped.
func WithStripPunctuation() WhitespaceOption {
	return func(w *Whitespace) {
		w.stripPunctuation = true
	}
}

// NewWhitespace creates a whitespace tokenizer.
func NewWhitespace(opts ...WhitespaceOption) *Whitespace {
	w := &Whitespace{}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Tokenize splits text into tokens.
func (w *Whitespace) Tokenize(text string) ([]string, error) {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if w.stripPunctuation {
			f = strings.Map(func(r rune) rune {
				if unicode.IsPunct(r) || unicode.IsSymbol(r) {
					return -1
				}
				return r
			}, f)
		}
		if f == "" {
			continue
		}
		if w.lowercase {
			f = strings.ToLower(f)
		}
		tokens = append(tokens, f)
	}
	return tokens, nil
}

// Name returns "whitespace".
func (w *Whitespace) Name() string {
	return NameWhitespace
}
