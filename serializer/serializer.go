// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package serializer saves and loads word-embedding models.
//
// The native format (WriteSequenceVectors, WriteWord2Vec) is a checksummed
// binary container and the only one that preserves a model exactly,
// including syn0 rows beyond the vocabulary. The other formats trade that
// for interoperability:
//   - Text: configuration, statistics and one base64 element plus syn0 row per line
//   - Archive: zip with config, Huffman codes, frequencies and all weight matrices
//   - Google text and binary: word vectors only, optionally gzip compressed
//   - Sealed: a native model encrypted under a passphrase
//   - SQLite: a queryable database export
//
// Example usage:
//
//	var buf bytes.Buffer
//	if err := serializer.WriteWord2Vec(&buf, model); err != nil {
//	    log.Fatal(err)
//	}
//	restored, err := serializer.ReadWord2Vec(&buf, true)
package serializer

import (
	"context"
	"io"

	"github.com/born-ml/wordvec/internal/serialization"
	"github.com/born-ml/wordvec/internal/store"
	"github.com/born-ml/wordvec/vectors"
)

// Native format

// ReaderOptions configures native model input.
type ReaderOptions = serialization.ReaderOptions

// WriterOptions configures native model output.
type WriterOptions = serialization.WriterOptions

// ValidationLevel controls the strictness of header validation.
type ValidationLevel = serialization.ValidationLevel

// FileInfo describes a native model without its weights.
type FileInfo = serialization.FileInfo

// ValidationError describes a rejected native header.
type ValidationError = serialization.ValidationError

// Validation levels.
const (
	ValidationStrict = serialization.ValidationStrict
	ValidationNormal = serialization.ValidationNormal
	ValidationNone   = serialization.ValidationNone
)

// Model types.
const (
	ModelSequenceVectors = serialization.ModelSequenceVectors
	ModelWord2Vec        = serialization.ModelWord2Vec
)

// Common errors.
var (
	ErrChecksumMismatch = serialization.ErrChecksumMismatch
	ErrInvalidMagic     = serialization.ErrInvalidMagic
	ErrUnknownFormat    = serialization.ErrUnknownFormat
	ErrWrongPassphrase  = serialization.ErrWrongPassphrase
	ErrMalformedLine    = serialization.ErrMalformedLine
)

// WriteSequenceVectors writes s in the native format.
func WriteSequenceVectors(w io.Writer, s *vectors.SequenceVectors) error {
	return serialization.WriteSequenceVectors(w, s)
}

// ReadSequenceVectors reads a native model. syn1 and syn1neg are restored
// only when readExtended is set.
func ReadSequenceVectors(r io.Reader, readExtended bool) (*vectors.SequenceVectors, error) {
	return serialization.ReadSequenceVectors(r, readExtended)
}

// WriteWord2Vec writes m in the native format.
func WriteWord2Vec(w io.Writer, m *vectors.Word2Vec) error {
	return serialization.WriteWord2Vec(w, m)
}

// ReadWord2Vec reads a native model as a Word2Vec.
func ReadWord2Vec(r io.Reader, readExtended bool) (*vectors.Word2Vec, error) {
	return serialization.ReadWord2Vec(r, readExtended)
}

// ReadSequenceVectorsWithOptions is ReadSequenceVectors with custom options.
func ReadSequenceVectorsWithOptions(r io.Reader, readExtended bool, opts ReaderOptions) (*vectors.SequenceVectors, error) {
	return serialization.ReadSequenceVectorsWithOptions(r, readExtended, opts)
}

// WriteModelWithOptions writes s as modelType with custom options.
func WriteModelWithOptions(w io.Writer, s *vectors.SequenceVectors, modelType string, opts WriterOptions) error {
	return serialization.WriteModelWithOptions(w, s, modelType, opts)
}

// ReadInfo parses a native model header.
func ReadInfo(r io.Reader, opts ReaderOptions) (*FileInfo, error) {
	return serialization.ReadInfo(r, opts)
}

// SaveModel atomically writes s to path in the native format.
func SaveModel(path string, s *vectors.SequenceVectors, modelType string, opts WriterOptions) error {
	return serialization.SaveModel(path, s, modelType, opts)
}

// LoadModel memory-maps and decodes the native model at path.
func LoadModel(path string, readExtended bool) (*vectors.SequenceVectors, error) {
	return serialization.LoadModel(path, readExtended)
}

// Other formats

// WriteText writes s in the sequence-vectors text format.
func WriteText(w io.Writer, s *vectors.SequenceVectors) error {
	return serialization.WriteSequenceVectorsText(w, s)
}

// ReadText reads the sequence-vectors text format.
func ReadText(r io.Reader, readExtended bool) (*vectors.SequenceVectors, error) {
	return serialization.ReadSequenceVectorsText(r, readExtended)
}

// WriteArchive writes m as a zip archive.
func WriteArchive(w io.Writer, m *vectors.Word2Vec) error {
	return serialization.WriteWord2VecModel(w, m)
}

// ReadArchive reads a zip archive written by WriteArchive.
func ReadArchive(r io.ReaderAt, size int64, readExtended bool) (*vectors.Word2Vec, error) {
	return serialization.ReadWord2VecModel(r, size, readExtended)
}

// WriteWordVectors writes syn0 in the word2vec text format.
func WriteWordVectors(w io.Writer, s *vectors.SequenceVectors) error {
	return serialization.WriteWordVectors(w, s)
}

// ReadWordVectors reads the word2vec text format.
func ReadWordVectors(r io.Reader) (*vectors.Word2Vec, error) {
	return serialization.ReadWordVectors(r)
}

// WriteBinary writes syn0 in the word2vec binary format.
func WriteBinary(w io.Writer, s *vectors.SequenceVectors) error {
	return serialization.WriteBinary(w, s)
}

// ReadBinary reads the word2vec binary format.
func ReadBinary(r io.Reader) (*vectors.Word2Vec, error) {
	return serialization.ReadBinary(r)
}

// WriteSealed encrypts s under passphrase.
func WriteSealed(w io.Writer, s *vectors.SequenceVectors, passphrase string) error {
	return serialization.WriteSealed(w, s, passphrase)
}

// ReadSealed decrypts a sealed model.
func ReadSealed(r io.Reader, passphrase string, readExtended bool) (*vectors.SequenceVectors, error) {
	return serialization.ReadSealed(r, passphrase, readExtended)
}

// Format detection

// Format identifies a model encoding.
type Format = serialization.Format

// Known formats.
const (
	FormatUnknown      = serialization.FormatUnknown
	FormatNative       = serialization.FormatNative
	FormatText         = serialization.FormatText
	FormatArchive      = serialization.FormatArchive
	FormatGoogleText   = serialization.FormatGoogleText
	FormatGoogleBinary = serialization.FormatGoogleBinary
	FormatSealed       = serialization.FormatSealed
	FormatGzip         = serialization.FormatGzip
)

// DetectFormat guesses the encoding of a model from its leading bytes.
func DetectFormat(prefix []byte) Format { return serialization.DetectFormat(prefix) }

// ReadModel detects the encoding of r and decodes it.
func ReadModel(r io.Reader, passphrase string, readExtended bool) (*vectors.SequenceVectors, Format, error) {
	return serialization.ReadModel(r, passphrase, readExtended)
}

// SQLite

// ExportSQLite writes s to a SQLite database at path.
func ExportSQLite(ctx context.Context, path string, s *vectors.SequenceVectors) error {
	return store.Export(ctx, path, s)
}

// ImportSQLite reads a model exported by ExportSQLite.
func ImportSQLite(ctx context.Context, path string, readExtended bool) (*vectors.SequenceVectors, error) {
	return store.Import(ctx, path, readExtended)
}
