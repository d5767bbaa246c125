// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package vectors provides word-embedding models and their building blocks.
//
// # Overview
//
// This package contains:
//   - Models: SequenceVectors, Word2Vec
//   - Vocabulary: Cache, VocabWord, Huffman coding, vocabulary construction
//   - Weights: lookup Table with syn0, syn1 and syn1neg matrices
//   - Configuration: VectorsConfiguration with JSON, YAML and env support
//
// # Basic Usage
//
//	import "github.com/born-ml/wordvec/vectors"
//
//	func main() {
//	    cache := vectors.NewCache()
//	    cache.AddToken(vectors.NewVocabWord(1, "hello"))
//	    _ = cache.AddWordToIndex(0, "hello")
//
//	    model := vectors.NewWord2Vec(nil, vectors.WithVocab(cache), vectors.WithLayerSize(100))
//	    model.LookupTable().ResetWeights(true)
//	}
package vectors
