// Package vectors bundles a vocabulary, a lookup table and a configuration
// into a trained embedding model.
//
// SequenceVectors is the general model; Word2Vec is the word-level variant
// produced by word2vec training. Both expose similarity queries through a
// ModelUtils implementation.
//
// Example:
//
//	model := vectors.New(config.Default(),
//	    vectors.WithVocab(cache),
//	    vectors.WithLookupTable(table),
//	)
//	nearest, err := model.WordsNearest("king", 10)
package vectors
