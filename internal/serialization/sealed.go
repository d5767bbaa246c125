package serialization

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/born-ml/wordvec/internal/vectors"
)

const (
	// SealedMagic identifies a sealed model envelope.
	SealedMagic = "wordvec-sealed"

	sealedFormatVersion = 1
	maxScryptN          = 1 << 20
)

// ScryptParams are the key derivation cost parameters.
type ScryptParams struct {
	N int
	R int
	P int
}

// DefaultScryptParams returns the parameters used by WriteSealed.
func DefaultScryptParams() ScryptParams { return ScryptParams{N: 1 << 15, R: 8, P: 1} }

// envelope is the JSON structure holding the ciphertext and KDF parameters.
type envelope struct {
	Magic  string `json:"magic"`
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// WriteSealed encrypts the native encoding of s under passphrase.
func WriteSealed(w io.Writer, s *vectors.SequenceVectors, passphrase string) error {
	return WriteSealedWithParams(w, s, passphrase, DefaultScryptParams())
}

// WriteSealedWithParams is WriteSealed with explicit scrypt parameters.
func WriteSealedWithParams(w io.Writer, s *vectors.SequenceVectors, passphrase string, params ScryptParams) error {
	var raw bytes.Buffer
	if err := WriteSequenceVectors(&raw, s); err != nil {
		return err
	}

	env, err := seal(passphrase, raw.Bytes(), params)
	if err != nil {
		return fmt.Errorf("failed to seal model: %w", err)
	}
	if _, err := w.Write(env); err != nil {
		return fmt.Errorf("failed to write sealed model: %w", err)
	}
	return nil
}

// ReadSealed decrypts a sealed model. A wrong passphrase or a modified
// envelope yields ErrWrongPassphrase.
func ReadSealed(r io.Reader, passphrase string, readExtended bool) (*vectors.SequenceVectors, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read sealed model: %w", err)
	}
	raw, err := unseal(passphrase, data)
	if err != nil {
		return nil, err
	}
	return ReadSequenceVectors(bytes.NewReader(raw), readExtended)
}

// seal derives a key from passphrase and encrypts raw into a JSON envelope.
func seal(passphrase string, raw []byte, params ScryptParams) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], params.N, params.R, params.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte // zero nonce; the salt makes every key unique
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return json.Marshal(envelope{
		Magic:  SealedMagic,
		V:      sealedFormatVersion,
		Salt:   salt[:],
		N:      params.N,
		R:      params.R,
		P:      params.P,
		Cipher: ct,
	})
}

// unseal opens a JSON envelope using a key derived from passphrase.
func unseal(passphrase string, data []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse sealed envelope: %w", err)
	}
	if env.Magic != SealedMagic {
		return nil, fmt.Errorf("%w: not a sealed model", ErrInvalidMagic)
	}
	if env.V > sealedFormatVersion {
		return nil, fmt.Errorf("%w: sealed envelope version %d", ErrUnsupportedVersion, env.V)
	}
	if env.N > maxScryptN {
		return nil, fmt.Errorf("scrypt cost %d exceeds %d", env.N, maxScryptN)
	}

	key, err := scrypt.Key([]byte(passphrase), env.Salt, env.N, env.R, env.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("invalid scrypt parameters: %w", err)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], env.Cipher, env.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
