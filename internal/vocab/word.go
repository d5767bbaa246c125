package vocab

import "slices"

// VocabWord is a single vocabulary element.
type VocabWord struct {
	Word           string  `json:"word"`                  // Label of the element
	Frequency      float64 `json:"frequency"`             // Total occurrences in the corpus
	SequencesCount int64   `json:"sequences_count"`       // Number of documents containing the element
	Index          int     `json:"index"`                 // Row in the lookup table, -1 if unassigned
	Codes          []int8  `json:"codes,omitempty"`       // Huffman code bits
	Points         []int   `json:"points,omitempty"`      // Inner-node indices along the Huffman path
	CodeLength     int     `json:"code_length,omitempty"` // Number of valid Codes/Points
	Special        bool    `json:"special,omitempty"`     // Never removed by truncation
	IsLabel        bool    `json:"is_label,omitempty"`    // Document label rather than a word
}

// NewVocabWord creates an element with the given frequency and label.
// The element appears in one sequence and has no index yet.
func NewVocabWord(frequency float64, word string) *VocabWord {
	return &VocabWord{
		Word:           word,
		Frequency:      frequency,
		SequencesCount: 1,
		Index:          -1,
	}
}

// Clone returns a deep copy of w.
func (w *VocabWord) Clone() *VocabWord {
	c := *w
	c.Codes = slices.Clone(w.Codes)
	c.Points = slices.Clone(w.Points)
	return &c
}

// Equal reports whether w and other carry the same persisted state.
func (w *VocabWord) Equal(other *VocabWord) bool {
	if w == nil || other == nil {
		return w == other
	}
	return w.Word == other.Word &&
		w.Frequency == other.Frequency &&
		w.SequencesCount == other.SequencesCount &&
		w.Index == other.Index &&
		w.CodeLength == other.CodeLength &&
		w.Special == other.Special &&
		w.IsLabel == other.IsLabel &&
		slices.Equal(w.Codes, other.Codes) &&
		slices.Equal(w.Points, other.Points)
}
