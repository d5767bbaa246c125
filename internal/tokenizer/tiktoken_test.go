package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tiktoken-go downloads BPE ranks on first use.
func newTestTikToken(t *testing.T) *TikToken {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping tiktoken test in short mode")
	}
	tok, err := NewTikToken("cl100k_base")
	require.NoError(t, err)
	return tok
}

func TestTikToken_InvalidEncoding(t *testing.T) {
	tok, err := NewTikToken("invalid_encoding_xyz")
	assert.Error(t, err)
	assert.Nil(t, tok)
}

func TestTikToken_TokenizeReassembles(t *testing.T) {
	tok := newTestTikToken(t)

	tests := []string{
		"Hello, world!",
		"The quick brown fox jumps over the lazy dog.",
		"",
	}

	for _, text := range tests {
		pieces, err := tok.Tokenize(text)
		require.NoError(t, err)
		assert.Equal(t, text, strings.Join(pieces, ""))
		assert.Equal(t, len(tok.Encode(text)), len(pieces))
	}
}

func TestTikToken_Name(t *testing.T) {
	tok := newTestTikToken(t)
	assert.Equal(t, "cl100k_base", tok.Name())
	assert.Equal(t, "hello world", tok.Decode(tok.Encode("hello world")))
}
