package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Manifest records what a training run was: its inputs, hyperparameters,
// and where the artifacts ended up. One is written per run next to the
// model files.
type Manifest struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	SeqLength    int     `json:"seq_length"`
	VocabSize    int     `json:"vocab_size"`
	EmbeddingDim int     `json:"embedding_dim"`
	HiddenSize   int     `json:"hidden_size"`
	BatchSize    int     `json:"batch_size"`
	LearningRate float64 `json:"learning_rate"`
	ValFraction  float64 `json:"val_fraction"`
	MaxEpochs    int     `json:"max_epochs"`
	Patience     int     `json:"patience"`

	TrainExamples int `json:"train_examples"`
	ValExamples   int `json:"val_examples"`
	SkippedSongs  int `json:"skipped_songs"`

	// Best* metrics describe the checkpointed epoch, the one the
	// delivered model comes from, not the last epoch run.
	EpochsRun  int     `json:"epochs_run"`
	BestEpoch  int     `json:"best_epoch"`
	BestTop3   float64 `json:"best_val_top3_accuracy"`
	BestTop1   float64 `json:"best_val_top1_accuracy"`
	BestLoss   float64 `json:"best_val_loss"`
	Stopped    string  `json:"stopped"` // "early" or "epoch_budget"
	DatasetOut string  `json:"dataset_path"`
	ModelOut   string  `json:"model_path"`
}

// NewManifest stamps a fresh run identifier and start time.
func NewManifest() *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// Save writes the manifest as indented JSON, for humans as much as tools.
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
