package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Validates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 200, cfg.LayersSize)
	assert.Equal(t, AlgorithmSkipGram, cfg.ElementsLearningAlgorithm)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*VectorsConfiguration)
	}{
		{"zero layers", func(c *VectorsConfiguration) { c.LayersSize = 0 }},
		{"zero window", func(c *VectorsConfiguration) { c.Window = 0 }},
		{"zero epochs", func(c *VectorsConfiguration) { c.Epochs = 0 }},
		{"zero learning rate", func(c *VectorsConfiguration) { c.LearningRate = 0 }},
		{"min above lr", func(c *VectorsConfiguration) { c.MinLearningRate = 1 }},
		{"negative negative", func(c *VectorsConfiguration) { c.Negative = -1 }},
		{"no objective", func(c *VectorsConfiguration) { c.UseHierarchicSoftmax = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.LayersSize = 64
	cfg.Negative = 5
	cfg.StopList = []string{"a", "the"}
	cfg.VariableWindows = []int{3, 5}

	data, err := cfg.ToJSON()
	require.NoError(t, err)

	got, err := FromJSON(data)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("configuration mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, cfg.Equal(got))
}

func TestFromJSON_PartialKeepsDefaults(t *testing.T) {
	got, err := FromJSON([]byte(`{"layers_size": 10}`))
	require.NoError(t, err)
	assert.Equal(t, 10, got.LayersSize)
	assert.Equal(t, 5, got.Window)

	_, err = FromJSON([]byte(`{`))
	assert.Error(t, err)
}

func TestEqual(t *testing.T) {
	a := Default()
	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.StopList = nil
	assert.True(t, a.Equal(b), "nil and empty stop lists are equal")

	b.Window = 9
	assert.False(t, a.Equal(b))

	var nilCfg *VectorsConfiguration
	assert.False(t, nilCfg.Equal(a))
	assert.True(t, nilCfg.Equal(nil))
}

func TestClone_Independent(t *testing.T) {
	a := Default()
	a.StopList = []string{"x"}
	b := a.Clone()
	b.StopList[0] = "y"
	assert.Equal(t, "x", a.StopList[0])
}

func TestYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordvec.yml")

	cfg := Default()
	cfg.Window = 8
	cfg.Tokenizer = "cl100k_base"
	require.NoError(t, cfg.SaveYAML(path))

	got, err := LoadYAML(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("configuration mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML_Partial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordvec.yml")
	require.NoError(t, os.WriteFile(path, []byte("layers_size: 32\nnegative: 10\n"), 0o644))

	got, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, 32, got.LayersSize)
	assert.Equal(t, 10.0, got.Negative)
	assert.Equal(t, 0.025, got.LearningRate)

	_, err = LoadYAML(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("WORDVEC_LAYERS_SIZE", "48")
	t.Setenv("WORDVEC_NEGATIVE", "2.5")
	t.Setenv("WORDVEC_SEED", "-7")
	t.Setenv("WORDVEC_TOKENIZER", "p50k_base")
	t.Setenv("WORDVEC_STOP_LIST", "a, the ,,of")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, 48, cfg.LayersSize)
	assert.Equal(t, 2.5, cfg.Negative)
	assert.Equal(t, int64(-7), cfg.Seed)
	assert.Equal(t, "p50k_base", cfg.Tokenizer)
	assert.Equal(t, []string{"a", "the", "of"}, cfg.StopList)

	t.Setenv("WORDVEC_WINDOW", "wide")
	assert.Error(t, cfg.ApplyEnv())
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("WORDVEC_TEST_LOADENV=loaded\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("WORDVEC_TEST_LOADENV") })

	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env"), envFile))
	assert.Equal(t, "loaded", os.Getenv("WORDVEC_TEST_LOADENV"))
}
