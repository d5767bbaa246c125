package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/wordvec/internal/serialization"
	"github.com/born-ml/wordvec/internal/store"
	"github.com/born-ml/wordvec/internal/vectors"
)

// formatSQLite names SQLite databases alongside the serialization formats.
const formatSQLite = "sqlite"

var sqliteMagic = []byte("SQLite format 3\x00")

// loadModel reads the model at path in whatever encoding it uses.
func loadModel(ctx context.Context, path, passphrase string, readExtended bool) (*vectors.SequenceVectors, string, error) {
	format, err := sniff(path)
	if err != nil {
		return nil, "", err
	}

	switch format {
	case formatSQLite:
		s, err := store.Import(ctx, path, readExtended)
		return s, format, dataError(err)
	case serialization.FormatNative.String():
		s, err := serialization.LoadModel(path, readExtended)
		return s, format, dataError(err)
	}

	//nolint:gosec // G304: model path comes from the user
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	s, detected, err := serialization.ReadModel(f, passphrase, readExtended)
	if err != nil {
		return nil, detected.String(), dataError(fmt.Errorf("reading %s: %w", path, err))
	}
	return s, detected.String(), nil
}

// sniff names the format of the file at path.
func sniff(path string) (string, error) {
	//nolint:gosec // G304: model path comes from the user
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	prefix, err := bufio.NewReaderSize(f, serialization.DetectPrefixSize).Peek(serialization.DetectPrefixSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if bytes.HasPrefix(prefix, sqliteMagic) {
		return formatSQLite, nil
	}
	return serialization.DetectFormat(prefix).String(), nil
}

// modelTypeOf names the native model type of a model read from path in
// format. Word2Vec encodings and native Word2Vec files keep their type.
func modelTypeOf(path, format string) string {
	switch format {
	case serialization.FormatArchive.String(),
		serialization.FormatGoogleText.String(),
		serialization.FormatGoogleBinary.String(),
		serialization.FormatGzip.String():
		return serialization.ModelWord2Vec
	case serialization.FormatNative.String():
		//nolint:gosec // G304: model path comes from the user
		f, err := os.Open(path)
		if err != nil {
			return serialization.ModelSequenceVectors
		}
		defer f.Close()
		info, err := serialization.ReadInfo(f, serialization.ReaderOptions{
			SkipChecksumValidation: true,
			ValidationLevel:        serialization.ValidationNone,
		})
		if err != nil {
			return serialization.ModelSequenceVectors
		}
		return info.Header.ModelType
	}
	return serialization.ModelSequenceVectors
}

// saveModel writes s to path in format. modelType is recorded by the native
// format only.
func saveModel(ctx context.Context, path, format, modelType string, s *vectors.SequenceVectors, passphrase string) error {
	var write func(w io.Writer) error
	switch format {
	case formatSQLite:
		return store.Export(ctx, path, s)
	case serialization.FormatNative.String():
		return serialization.SaveModel(path, s, modelType, serialization.WriterOptions{})
	case serialization.FormatText.String():
		write = func(w io.Writer) error { return serialization.WriteSequenceVectorsText(w, s) }
	case serialization.FormatArchive.String():
		write = func(w io.Writer) error { return serialization.WriteWord2VecModel(w, vectors.FromSequenceVectors(s)) }
	case serialization.FormatGoogleText.String():
		write = func(w io.Writer) error { return serialization.WriteWordVectors(w, s) }
	case serialization.FormatGoogleBinary.String():
		write = func(w io.Writer) error { return serialization.WriteBinary(w, s) }
	case serialization.FormatSealed.String():
		if passphrase == "" {
			return errors.New("sealed output needs --passphrase or WORDVEC_PASSPHRASE")
		}
		write = func(w io.Writer) error { return serialization.WriteSealed(w, s, passphrase) }
	default:
		return fmt.Errorf("%w: %q", serialization.ErrUnknownFormat, format)
	}
	return serialization.WriteFileAtomic(path, write)
}

func dataError(err error) error {
	return withExitCode(ExitDataError, err)
}
