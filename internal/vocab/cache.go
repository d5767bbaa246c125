package vocab

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Common errors.
var (
	ErrUnknownWord   = errors.New("word not in vocabulary")
	ErrInvalidIndex  = errors.New("invalid vocabulary index")
	ErrIndexConflict = errors.New("vocabulary index already bound to another word")
)

// Cache is an in-memory vocabulary. It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	words      map[string]*VocabWord
	byIndex    map[int]*VocabWord
	totalWords int64
	totalDocs  int64
}

// NewCache creates an empty vocabulary cache.
func NewCache() *Cache {
	return &Cache{
		words:   make(map[string]*VocabWord),
		byIndex: make(map[int]*VocabWord),
	}
}

// AddToken inserts w, or merges its counts into the existing element with
// the same label. Total word occurrences grow by w's frequency either way.
//
// A preset index that is already bound to another element is cleared, so
// w is inserted unindexed.
func (c *Cache) AddToken(w *VocabWord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.words[w.Word]; ok {
		existing.Frequency += w.Frequency
		existing.SequencesCount += w.SequencesCount
	} else {
		c.words[w.Word] = w
		if w.Index >= 0 {
			if _, taken := c.byIndex[w.Index]; taken {
				w.Index = -1
			} else {
				c.byIndex[w.Index] = w
			}
		}
	}
	c.totalWords += int64(w.Frequency)
}

// AddWordToIndex binds label to index.
func (c *Cache) AddWordToIndex(index int, label string) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.words[label]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownWord, label)
	}
	if bound, ok := c.byIndex[index]; ok && bound != w {
		return fmt.Errorf("%w: index %d holds %q", ErrIndexConflict, index, bound.Word)
	}
	if w.Index >= 0 && w.Index != index {
		delete(c.byIndex, w.Index)
	}
	w.Index = index
	c.byIndex[index] = w
	return nil
}

// WordAtIndex returns the label bound to index.
func (c *Cache) WordAtIndex(index int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	w, ok := c.byIndex[index]
	if !ok {
		return "", false
	}
	return w.Word, true
}

// ElementAtIndex returns the element bound to index.
func (c *Cache) ElementAtIndex(index int) (*VocabWord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	w, ok := c.byIndex[index]
	return w, ok
}

// IndexOf returns the index of label, or -1.
func (c *Cache) IndexOf(label string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if w, ok := c.words[label]; ok {
		return w.Index
	}
	return -1
}

// WordFor returns the element for label.
func (c *Cache) WordFor(label string) (*VocabWord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	w, ok := c.words[label]
	return w, ok
}

// ContainsWord reports whether label is in the vocabulary.
func (c *Cache) ContainsWord(label string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.words[label]
	return ok
}

// NumWords returns the number of distinct labels.
func (c *Cache) NumWords() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.words)
}

// Words returns all labels ordered by index. Unindexed labels come last,
// sorted alphabetically.
func (c *Cache) Words() []string {
	elems := c.Elements()
	labels := make([]string, len(elems))
	for i, w := range elems {
		labels[i] = w.Word
	}
	return labels
}

// Elements returns all elements in the same order as Words.
func (c *Cache) Elements() []*VocabWord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.sortedLocked()
}

func (c *Cache) sortedLocked() []*VocabWord {
	elems := make([]*VocabWord, 0, len(c.words))
	for _, w := range c.words {
		elems = append(elems, w)
	}
	sort.Slice(elems, func(i, j int) bool {
		a, b := elems[i], elems[j]
		switch {
		case a.Index >= 0 && b.Index >= 0:
			return a.Index < b.Index
		case a.Index >= 0:
			return true
		case b.Index >= 0:
			return false
		default:
			return a.Word < b.Word
		}
	})
	return elems
}

// TotalWordOccurrences returns the corpus-wide token count.
func (c *Cache) TotalWordOccurrences() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.totalWords
}

// SetTotalWordOccurrences overrides the corpus-wide token count.
func (c *Cache) SetTotalWordOccurrences(n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalWords = max(n, 0)
}

// TotalNumberOfDocs returns the number of documents seen.
func (c *Cache) TotalNumberOfDocs() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.totalDocs
}

// SetTotalDocCount overrides the document count.
func (c *Cache) SetTotalDocCount(n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalDocs = max(n, 0)
}

// IncrementTotalDocCount adds by to the document count.
func (c *Cache) IncrementTotalDocCount(by int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalDocs = max(c.totalDocs+by, 0)
}

// IncrementWordCount adds by to the frequency of label and to the total.
func (c *Cache) IncrementWordCount(label string, by float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.words[label]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownWord, label)
	}
	w.Frequency += by
	c.totalWords = max(c.totalWords+int64(by), 0)
	return nil
}

// WordFrequency returns the frequency of label, or 0.
func (c *Cache) WordFrequency(label string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if w, ok := c.words[label]; ok {
		return w.Frequency
	}
	return 0
}

// DocAppearedIn returns the number of documents containing label, or 0.
func (c *Cache) DocAppearedIn(label string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if w, ok := c.words[label]; ok {
		return w.SequencesCount
	}
	return 0
}

// RemoveElement deletes label from the vocabulary. Totals are left untouched.
func (c *Cache) RemoveElement(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.words[label]
	if !ok {
		return
	}
	delete(c.words, label)
	if w.Index >= 0 && c.byIndex[w.Index] == w {
		delete(c.byIndex, w.Index)
	}
}

// UpdateWordsOccurrences recomputes total word occurrences from the elements.
func (c *Cache) UpdateWordsOccurrences() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, w := range c.words {
		total += int64(w.Frequency)
	}
	c.totalWords = total
}

// ImportVocabulary merges every element of other into c.
// Elements are cloned; indices are not carried over.
func (c *Cache) ImportVocabulary(other *Cache) {
	elems := other.Elements()
	docs := other.TotalNumberOfDocs()

	for _, w := range elems {
		clone := w.Clone()
		clone.Index = -1
		c.AddToken(clone)
	}
	c.IncrementTotalDocCount(docs)
}

// Truncate removes non-special elements with frequency below minFrequency,
// then reindexes the remaining ones by descending frequency (ties by label).
func (c *Cache) Truncate(minFrequency float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for label, w := range c.words {
		if !w.Special && w.Frequency < minFrequency {
			delete(c.words, label)
		}
	}

	elems := make([]*VocabWord, 0, len(c.words))
	for _, w := range c.words {
		elems = append(elems, w)
	}
	sort.Slice(elems, func(i, j int) bool {
		if elems[i].Frequency != elems[j].Frequency {
			return elems[i].Frequency > elems[j].Frequency
		}
		return elems[i].Word < elems[j].Word
	})

	c.byIndex = make(map[int]*VocabWord, len(elems))
	for i, w := range elems {
		w.Index = i
		c.byIndex[i] = w
	}
}
