// Package tokenizer splits raw text into string tokens for vocabulary construction.
//
// Two strategies are provided:
//   - Whitespace: splits on Unicode whitespace, optionally lowercasing and
//     stripping punctuation (the classic word2vec preprocessing)
//   - TikToken: BPE pieces from OpenAI encodings (cl100k_base, p50k_base, r50k_base)
//
// Example usage:
//
//	tok, err := tokenizer.New("whitespace")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tokens, err := tok.Tokenize("The quick brown fox")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// tokens: ["the", "quick", "brown", "fox"]
package tokenizer
