// Package train assembles the next-chord network on loom and runs the
// epoch loop with early stopping and best-snapshot checkpointing.
package train

import (
	"fmt"

	"github.com/openfluke/loom/nn"
)

// Reference hyperparameters. The embedding is deliberately tiny: chords
// carry far less information than words, and three dimensions proved
// enough for the vocabulary sizes the scraper produces.
const (
	DefaultSeqLength    = 8
	DefaultEmbeddingDim = 3
	DefaultHiddenSize   = 300
	DefaultBatchSize    = 32
)

// ModelConfig describes the network architecture: an embedding feeding an
// LSTM, then a dense projection back to vocabulary size, normalized and
// pushed through a softmax.
type ModelConfig struct {
	VocabSize    int
	SeqLength    int
	EmbeddingDim int
	HiddenSize   int
	BatchSize    int
}

func (c ModelConfig) withDefaults() ModelConfig {
	if c.SeqLength == 0 {
		c.SeqLength = DefaultSeqLength
	}
	if c.EmbeddingDim == 0 {
		c.EmbeddingDim = DefaultEmbeddingDim
	}
	if c.HiddenSize == 0 {
		c.HiddenSize = DefaultHiddenSize
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	return c
}

// NetworkJSON renders the loom layer configuration. The LSTM emits its
// full hidden sequence (seq_length * hidden_size flattened), so the dense
// classifier head reads every step.
func (c ModelConfig) NetworkJSON() string {
	c = c.withDefaults()
	return fmt.Sprintf(`{
		"grid_rows": 1,
		"grid_cols": 1,
		"layers_per_cell": 5,
		"batch_size": %d,
		"layers": [
			{
				"type": "embedding",
				"vocab_size": %d,
				"embedding_dim": %d
			},
			{
				"type": "lstm",
				"input_size": %d,
				"hidden_size": %d,
				"seq_length": %d,
				"activation": "tanh"
			},
			{
				"type": "dense",
				"input_size": %d,
				"output_size": %d,
				"activation": "linear"
			},
			{
				"type": "layer_norm",
				"norm_size": %d,
				"epsilon": 1e-5
			},
			{
				"type": "softmax",
				"softmax_variant": "standard"
			}
		]
	}`, c.BatchSize,
		c.VocabSize, c.EmbeddingDim,
		c.EmbeddingDim, c.HiddenSize, c.SeqLength,
		c.SeqLength*c.HiddenSize, c.VocabSize,
		c.VocabSize)
}

// Build constructs and initializes the network.
func (c ModelConfig) Build() (*nn.Network, error) {
	if c.VocabSize <= 0 {
		return nil, fmt.Errorf("model config: vocab size must be positive, got %d", c.VocabSize)
	}
	net, err := nn.BuildNetworkFromJSON(c.NetworkJSON())
	if err != nil {
		return nil, fmt.Errorf("build network: %w", err)
	}
	net.InitializeWeights()
	return net, nil
}
