package vocab

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/wordvec/internal/tokenizer"
)

func TestConstructor(t *testing.T) {
	tok := tokenizer.NewWhitespace(tokenizer.WithLowercase(), tokenizer.WithStripPunctuation())
	b := NewConstructor(tok, 2, []string{"the"})

	docs := []string{
		"The cat sat on the mat.",
		"The dog sat on the log.",
		"A cat and a dog.",
	}
	for _, d := range docs {
		require.NoError(t, b.AddDocument(context.Background(), d))
	}

	c, err := b.Build()
	require.NoError(t, err)

	assert.False(t, c.ContainsWord("the"))
	assert.False(t, c.ContainsWord("mat"))
	assert.Equal(t, []string{"a", "cat", "dog", "on", "sat"}, c.Words())
	assert.Equal(t, int64(3), c.TotalNumberOfDocs())
	assert.Equal(t, int64(10), c.TotalWordOccurrences())
	assert.Equal(t, int64(2), c.DocAppearedIn("cat"))

	for _, w := range c.Elements() {
		assert.NotZero(t, w.CodeLength, w.Word)
	}
}

func TestConstructor_Canceled(t *testing.T) {
	b := NewConstructor(tokenizer.NewWhitespace(), 1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, b.AddDocument(ctx, "text"), context.Canceled)
}
