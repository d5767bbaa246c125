package vocab

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// MaxCodeLength is the longest Huffman code a vocabulary may produce.
const MaxCodeLength = 40

// ErrCodeTooLong is returned when the Huffman tree is deeper than MaxCodeLength.
var ErrCodeTooLong = errors.New("huffman code exceeds maximum length")

// BuildHuffman assigns Codes, Points and CodeLength to every element of c
// using the word2vec binary Huffman tree. Points are inner-node indices in
// [0, NumWords-1), suitable as syn1 rows. Every element must be indexed.
//
// A vocabulary with fewer than two elements gets empty codes.
func BuildHuffman(c *Cache) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	elems := make([]*VocabWord, 0, len(c.words))
	for _, w := range c.words {
		if w.Index < 0 {
			return fmt.Errorf("%w: %q has no index", ErrInvalidIndex, w.Word)
		}
		elems = append(elems, w)
	}
	sort.Slice(elems, func(i, j int) bool {
		if elems[i].Frequency != elems[j].Frequency {
			return elems[i].Frequency > elems[j].Frequency
		}
		return elems[i].Index < elems[j].Index
	})

	n := len(elems)
	if n < 2 {
		for _, w := range elems {
			w.Codes, w.Points, w.CodeLength = nil, nil, 0
		}
		return nil
	}

	count := make([]float64, 2*n)
	binary := make([]int8, 2*n)
	parent := make([]int, 2*n)
	for i := range n {
		count[i] = elems[i].Frequency
	}
	for i := n; i < 2*n; i++ {
		count[i] = math.MaxFloat64
	}

	pos1, pos2 := n-1, n
	pick := func() int {
		if pos1 >= 0 && count[pos1] < count[pos2] {
			pos1--
			return pos1 + 1
		}
		pos2++
		return pos2 - 1
	}
	for a := range n - 1 {
		min1 := pick()
		min2 := pick()
		count[n+a] = count[min1] + count[min2]
		parent[min1] = n + a
		parent[min2] = n + a
		binary[min2] = 1
	}

	root := 2*n - 2
	code := make([]int8, MaxCodeLength)
	point := make([]int, MaxCodeLength)
	for a, w := range elems {
		length := 0
		for b := a; b != root; b = parent[b] {
			if length == MaxCodeLength {
				return fmt.Errorf("%w: %q", ErrCodeTooLong, w.Word)
			}
			code[length] = binary[b]
			point[length] = b
			length++
		}

		w.CodeLength = length
		w.Codes = make([]int8, length)
		w.Points = make([]int, length)
		w.Points[0] = n - 2
		for b := range length {
			w.Codes[length-b-1] = code[b]
			if length-b < length {
				w.Points[length-b] = point[b] - n
			}
		}
	}
	return nil
}
