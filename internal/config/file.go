package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WORDVEC_"

// LoadYAML reads a configuration file. Missing keys keep their defaults.
func LoadYAML(path string) (*VectorsConfiguration, error) {
	//nolint:gosec // G304: configuration path comes from the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// SaveYAML writes the configuration to path.
func (c *VectorsConfiguration) SaveYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// LoadEnv loads variables from .env files into the process environment.
// Missing files are ignored; existing variables are not overridden.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from WORDVEC_* environment variables.
//
// Recognized: LAYERS_SIZE, MIN_WORD_FREQUENCY, WINDOW, NEGATIVE, SEED,
// WORKERS, LEARNING_RATE, TOKENIZER, STOP_LIST (comma separated).
func (c *VectorsConfiguration) ApplyEnv() error {
	ints := map[string]*int{
		"LAYERS_SIZE":        &c.LayersSize,
		"MIN_WORD_FREQUENCY": &c.MinWordFrequency,
		"WINDOW":             &c.Window,
		"WORKERS":            &c.Workers,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parsing %s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}

	floats := map[string]*float64{
		"NEGATIVE":      &c.Negative,
		"LEARNING_RATE": &c.LearningRate,
	}
	for key, dst := range floats {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("parsing %s%s: %w", EnvPrefix, key, err)
		}
		*dst = f
	}

	if v, ok := os.LookupEnv(EnvPrefix + "SEED"); ok {
		seed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("parsing %sSEED: %w", EnvPrefix, err)
		}
		c.Seed = seed
	}
	if v, ok := os.LookupEnv(EnvPrefix + "TOKENIZER"); ok {
		c.Tokenizer = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvPrefix + "STOP_LIST"); ok {
		c.StopList = c.StopList[:0]
		for _, w := range strings.Split(v, ",") {
			if w = strings.TrimSpace(w); w != "" {
				c.StopList = append(c.StopList, w)
			}
		}
	}
	return nil
}
