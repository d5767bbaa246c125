package serialization

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastScrypt = ScryptParams{N: 1 << 10, R: 8, P: 1}

func TestSealedRoundTrip(t *testing.T) {
	model := newTestSequenceVectors(t)

	var buf bytes.Buffer
	require.NoError(t, WriteSealedWithParams(&buf, model, "correct horse", fastScrypt))
	assert.NotContains(t, buf.String(), "tester", "labels must not leak")

	restored, err := ReadSealed(bytes.NewReader(buf.Bytes()), "correct horse", true)
	require.NoError(t, err)
	assertSameVocab(t, model, restored)
	assertSameMatrix(t, model.LookupTable().Syn1(), restored.LookupTable().Syn1(), "syn1")

	_, err = ReadSealed(bytes.NewReader(buf.Bytes()), "battery staple", true)
	assert.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestSealed_Tampered(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSealedWithParams(&buf, newTestSequenceVectors(t), "pw", fastScrypt))

	var env envelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	env.Cipher[len(env.Cipher)/2] ^= 0x01
	tampered, err := json.Marshal(env)
	require.NoError(t, err)

	_, err = ReadSealed(bytes.NewReader(tampered), "pw", false)
	assert.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestSealed_Envelope(t *testing.T) {
	tests := []struct {
		name string
		env  envelope
		want error
	}{
		{"wrong magic", envelope{Magic: "other", V: 1}, ErrInvalidMagic},
		{"future version", envelope{Magic: SealedMagic, V: 99}, ErrUnsupportedVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.env)
			require.NoError(t, err)
			_, err = ReadSealed(bytes.NewReader(data), "pw", false)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := ReadSealed(bytes.NewReader([]byte("{")), "pw", false)
	assert.Error(t, err)

	data, err := json.Marshal(envelope{Magic: SealedMagic, V: 1, N: 1 << 30, R: 8, P: 1})
	require.NoError(t, err)
	_, err = ReadSealed(bytes.NewReader(data), "pw", false)
	assert.Error(t, err, "excessive scrypt cost must be refused")
}

func TestWriteSealed_DefaultParams(t *testing.T) {
	if testing.Short() {
		t.Skip("scrypt with default cost is slow")
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSealed(&buf, newTestSequenceVectors(t), "pw"))

	var env envelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, DefaultScryptParams(), ScryptParams{N: env.N, R: env.R, P: env.P})
	assert.Len(t, env.Salt, 16)
}
