package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHuffman(t *testing.T) {
	c := NewCache()
	freqs := map[string]float64{"a": 45, "b": 13, "c": 12, "d": 16, "e": 9, "f": 5}
	for w, f := range freqs {
		c.AddToken(NewVocabWord(f, w))
	}
	c.Truncate(0)
	require.NoError(t, BuildHuffman(c))

	n := c.NumWords()
	codes := make(map[string]string)
	for _, w := range c.Elements() {
		require.Equal(t, w.CodeLength, len(w.Codes))
		require.Equal(t, w.CodeLength, len(w.Points))
		assert.Equal(t, n-2, w.Points[0], "path starts at the root")
		for _, p := range w.Points {
			assert.GreaterOrEqual(t, p, 0)
			assert.Less(t, p, n-1)
		}
		s := ""
		for _, bit := range w.Codes {
			s += string('0' + rune(bit))
		}
		codes[w.Word] = s
	}

	// Most frequent word gets the shortest code.
	assert.Len(t, codes["a"], 1)
	assert.Len(t, codes["f"], 4)

	// Prefix-free.
	for w1, c1 := range codes {
		for w2, c2 := range codes {
			if w1 == w2 {
				continue
			}
			assert.False(t, len(c1) <= len(c2) && c2[:len(c1)] == c1, "%s is a prefix of %s", c1, c2)
		}
	}
}

func TestBuildHuffman_SmallVocab(t *testing.T) {
	c := NewCache()
	c.AddToken(NewVocabWord(1, "only"))
	require.NoError(t, c.AddWordToIndex(0, "only"))
	require.NoError(t, BuildHuffman(c))

	w, _ := c.WordFor("only")
	assert.Equal(t, 0, w.CodeLength)
	assert.Nil(t, w.Codes)
}

func TestBuildHuffman_Unindexed(t *testing.T) {
	c := NewCache()
	c.AddToken(NewVocabWord(1, "a"))
	c.AddToken(NewVocabWord(1, "b"))
	assert.ErrorIs(t, BuildHuffman(c), ErrInvalidIndex)
}
