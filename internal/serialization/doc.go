// Package serialization saves and loads word-embedding models.
//
// The native format is a binary container designed for sequence-vector models:
//
//	Format Structure (v2):
//	  [4 bytes: Magic "BWVM"]
//	  [4 bytes: Version (uint32 LE)]
//	  [4 bytes: Flags (uint32 LE)]
//	  [4 bytes: Reserved]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [8 bytes: Data Size (uint64 LE)]
//	  [32 bytes: SHA-256 of the data section]
//	  [Header: JSON configuration, vocabulary and tensor metadata]
//	  [Tensor data: float32 LE syn0, syn1, syn1neg, 64-byte aligned]
//
// Version 1 files omit the reserved word, data size and checksum and are
// still readable.
//
// Besides the native format the package reads and writes:
//   - a line-oriented text format carrying configuration, statistics and syn0
//   - a zip archive of Word2Vec models with Huffman codes and extended weights
//   - the word2vec text and binary vector formats, optionally gzip compressed
//   - passphrase sealed native models (scrypt + ChaCha20-Poly1305)
//
// Example usage:
//
//	var buf bytes.Buffer
//	if err := serialization.WriteWord2Vec(&buf, model); err != nil {
//	    log.Fatal(err)
//	}
//	restored, err := serialization.ReadWord2Vec(&buf, true)
//	if err != nil {
//	    log.Fatal(err)
//	}
package serialization
