// Package config holds the hyperparameters persisted with an embedding model.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"slices"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid vectors configuration")

// Learning algorithm names.
const (
	AlgorithmSkipGram = "SkipGram"
	AlgorithmCBOW     = "CBOW"
	AlgorithmDBOW     = "PV-DBOW"
	AlgorithmDM       = "PV-DM"
)

// VectorsConfiguration describes how a word-embedding model was trained.
// It is stored verbatim in every serialized model.
type VectorsConfiguration struct {
	MinWordFrequency          int      `json:"min_word_frequency" yaml:"min_word_frequency"`
	LearningRate              float64  `json:"learning_rate" yaml:"learning_rate"`
	MinLearningRate           float64  `json:"min_learning_rate" yaml:"min_learning_rate"`
	LayersSize                int      `json:"layers_size" yaml:"layers_size"`
	UseAdaGrad                bool     `json:"use_ada_grad" yaml:"use_ada_grad"`
	BatchSize                 int      `json:"batch_size" yaml:"batch_size"`
	Iterations                int      `json:"iterations" yaml:"iterations"`
	Epochs                    int      `json:"epochs" yaml:"epochs"`
	Window                    int      `json:"window" yaml:"window"`
	Seed                      int64    `json:"seed" yaml:"seed"`
	Negative                  float64  `json:"negative" yaml:"negative"`
	UseHierarchicSoftmax      bool     `json:"use_hierarchic_softmax" yaml:"use_hierarchic_softmax"`
	Sampling                  float64  `json:"sampling" yaml:"sampling"`
	Workers                   int      `json:"workers" yaml:"workers"`
	ElementsLearningAlgorithm string   `json:"elements_learning_algorithm" yaml:"elements_learning_algorithm"`
	SequenceLearningAlgorithm string   `json:"sequence_learning_algorithm" yaml:"sequence_learning_algorithm"`
	TrainElementsVectors      bool     `json:"train_elements_vectors" yaml:"train_elements_vectors"`
	TrainSequenceVectors      bool     `json:"train_sequence_vectors" yaml:"train_sequence_vectors"`
	StopList                  []string `json:"stop_list" yaml:"stop_list"`
	VariableWindows           []int    `json:"variable_windows,omitempty" yaml:"variable_windows,omitempty"`
	VocabSize                 int      `json:"vocab_size" yaml:"vocab_size"`
	UseUnknown                bool     `json:"use_unknown" yaml:"use_unknown"`
	Unknown                   string   `json:"unk" yaml:"unk"`
	Stop                      string   `json:"stop" yaml:"stop"`
	PreciseWeightInit         bool     `json:"precise_weight_init" yaml:"precise_weight_init"`
	ModelUtils                string   `json:"model_utils" yaml:"model_utils"`
	Tokenizer                 string   `json:"tokenizer" yaml:"tokenizer"`
}

// Default returns the standard word2vec configuration.
func Default() *VectorsConfiguration {
	return &VectorsConfiguration{
		MinWordFrequency:          5,
		LearningRate:              0.025,
		MinLearningRate:           1e-4,
		LayersSize:                200,
		BatchSize:                 512,
		Iterations:                1,
		Epochs:                    1,
		Window:                    5,
		UseHierarchicSoftmax:      true,
		Workers:                   runtime.NumCPU(),
		ElementsLearningAlgorithm: AlgorithmSkipGram,
		SequenceLearningAlgorithm: AlgorithmDBOW,
		TrainElementsVectors:      true,
		StopList:                  []string{},
		Unknown:                   "UNK",
		Stop:                      "STOP",
		ModelUtils:                "basic",
		Tokenizer:                 "whitespace",
	}
}

// Clone returns a deep copy of c.
func (c *VectorsConfiguration) Clone() *VectorsConfiguration {
	clone := *c
	clone.StopList = slices.Clone(c.StopList)
	clone.VariableWindows = slices.Clone(c.VariableWindows)
	return &clone
}

// Equal reports whether c and other hold the same settings.
// Nil and empty lists are considered equal.
func (c *VectorsConfiguration) Equal(other *VectorsConfiguration) bool {
	if c == nil || other == nil {
		return c == other
	}
	return reflect.DeepEqual(c.normalized(), other.normalized())
}

func (c *VectorsConfiguration) normalized() VectorsConfiguration {
	n := *c
	if len(n.StopList) == 0 {
		n.StopList = nil
	}
	if len(n.VariableWindows) == 0 {
		n.VariableWindows = nil
	}
	return n
}

// Validate checks that the configuration describes a trainable model.
func (c *VectorsConfiguration) Validate() error {
	switch {
	case c.LayersSize <= 0:
		return fmt.Errorf("%w: layers size %d", ErrInvalidConfig, c.LayersSize)
	case c.Window <= 0:
		return fmt.Errorf("%w: window %d", ErrInvalidConfig, c.Window)
	case c.Epochs <= 0 || c.Iterations <= 0:
		return fmt.Errorf("%w: epochs %d, iterations %d", ErrInvalidConfig, c.Epochs, c.Iterations)
	case c.LearningRate <= 0:
		return fmt.Errorf("%w: learning rate %g", ErrInvalidConfig, c.LearningRate)
	case c.MinLearningRate > c.LearningRate:
		return fmt.Errorf("%w: min learning rate %g above learning rate %g", ErrInvalidConfig, c.MinLearningRate, c.LearningRate)
	case c.Negative < 0:
		return fmt.Errorf("%w: negative %g", ErrInvalidConfig, c.Negative)
	case !c.UseHierarchicSoftmax && c.Negative == 0:
		return fmt.Errorf("%w: neither hierarchic softmax nor negative sampling enabled", ErrInvalidConfig)
	}
	return nil
}

// ToJSON encodes the configuration.
func (c *VectorsConfiguration) ToJSON() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	return data, nil
}

// FromJSON decodes a configuration. Missing fields keep their defaults.
func FromJSON(data []byte) (*VectorsConfiguration, error) {
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	return cfg, nil
}
