// Package vocab holds the vocabulary cache of a word-embedding model.
//
// A Cache maps labels to VocabWord elements carrying frequency statistics,
// a lookup-table row index and Huffman coding for hierarchic softmax. It also
// tracks corpus-wide totals (word occurrences and document count) that must
// survive serialization.
//
// Example:
//
//	cache := vocab.NewCache()
//	cache.AddToken(vocab.NewVocabWord(1, "word"))
//	if err := cache.AddWordToIndex(0, "word"); err != nil {
//	    log.Fatal(err)
//	}
//	label, _ := cache.WordAtIndex(0) // "word"
package vocab
