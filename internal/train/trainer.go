package train

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/openfluke/loom/nn"
	log "github.com/sirupsen/logrus"

	"github.com/giacomov/chords-ai/internal/dataset"
	"github.com/giacomov/chords-ai/internal/window"
)

// modelID tags loom snapshots so a saved model can only be reloaded as
// the chord model it was saved as.
const modelID = "chords_ai"

// Config drives the epoch loop. The monitored metric for both
// checkpointing and early stopping is validation top-3 accuracy.
type Config struct {
	Model        ModelConfig
	MaxEpochs    int
	Patience     int
	LearningRate float64
	UseGPU       bool

	// CheckpointPath receives the best snapshot so far, overwritten on
	// every improving epoch.
	CheckpointPath string
}

// EpochMetrics is one epoch's validation scores.
type EpochMetrics struct {
	Epoch   int     `json:"epoch"`
	ValLoss float64 `json:"val_loss"`
	ValTop1 float64 `json:"val_top1"`
	ValTop3 float64 `json:"val_top3"`
}

// Result is what a finished run hands back: the best snapshot (not
// necessarily the final epoch's weights) and the metric history.
type Result struct {
	History      []EpochMetrics
	Best         EpochMetrics
	EpochsRun    int
	StoppedEarly bool

	// Snapshot is the best model serialized by loom, architecture and
	// weights together. SaveModel persists it as the deliverable.
	Snapshot string
}

// SaveModel writes the best snapshot as the final model artifact.
func (r *Result) SaveModel(path string) error {
	if err := os.WriteFile(path, []byte(r.Snapshot), 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// Net reloads the best snapshot into a fresh network.
func (r *Result) Net() (*nn.Network, error) {
	net, err := nn.LoadModelFromString(r.Snapshot, modelID)
	if err != nil {
		return nil, fmt.Errorf("reload best snapshot: %w", err)
	}
	return net, nil
}

// Trainer owns the network for the duration of one run.
type Trainer struct {
	cfg     Config
	net     *nn.Network
	weights map[int]float64
	rng     *rand.Rand
	logger  *log.Entry
}

// New builds the network and prepares a run. weights are the per-chord
// class weights computed on the training split; nil means unweighted.
func New(cfg Config, weights map[int]float64, rng *rand.Rand) (*Trainer, error) {
	if cfg.MaxEpochs <= 0 {
		return nil, fmt.Errorf("trainer: max epochs must be positive, got %d", cfg.MaxEpochs)
	}
	if cfg.Patience <= 0 {
		return nil, fmt.Errorf("trainer: patience must be positive, got %d", cfg.Patience)
	}
	cfg.Model = cfg.Model.withDefaults()
	net, err := cfg.Model.Build()
	if err != nil {
		return nil, err
	}
	return &Trainer{
		cfg:     cfg,
		net:     net,
		weights: weights,
		rng:     rng,
		logger:  log.WithFields(log.Fields{"component": "trainer"}),
	}, nil
}

// Fit runs the epoch loop: train one pass, score the validation split,
// checkpoint on improvement, stop when the patience window closes or the
// epoch budget runs out.
func (t *Trainer) Fit(split dataset.Split) (*Result, error) {
	if len(split.Train) < t.cfg.Model.BatchSize {
		return nil, fmt.Errorf("trainer: %d training examples cannot fill a batch of %d",
			len(split.Train), t.cfg.Model.BatchSize)
	}
	if len(split.Val) == 0 {
		return nil, fmt.Errorf("trainer: validation split is empty")
	}

	mon := newMonitor(t.cfg.Patience)
	res := &Result{}

	for epoch := 1; epoch <= t.cfg.MaxEpochs; epoch++ {
		trainCfg := &nn.TrainingConfig{
			Epochs:          1,
			LearningRate:    float32(t.cfg.LearningRate),
			UseGPU:          t.cfg.UseGPU,
			LossType:        "cross_entropy",
			PrintEveryBatch: 0,
			Verbose:         false,
		}
		if _, err := t.net.Train(t.batches(split.Train), trainCfg); err != nil {
			return nil, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		if t.cfg.UseGPU {
			if err := t.net.WeightsToCPU(); err != nil {
				return nil, fmt.Errorf("epoch %d: sync weights to cpu: %w", epoch, err)
			}
		}

		m := t.evaluate(epoch, split.Val)
		res.History = append(res.History, m)
		res.EpochsRun = epoch

		entry := t.logger.WithFields(log.Fields{
			"epoch":    epoch,
			"val_loss": m.ValLoss,
			"val_top1": m.ValTop1,
			"val_top3": m.ValTop3,
		})
		if mon.observe(epoch, m.ValTop3) {
			snap, err := t.checkpoint()
			if err != nil {
				return nil, err
			}
			res.Snapshot = snap
			res.Best = m
			entry.Info("validation improved, checkpoint written")
		} else {
			entry.WithField("epochs_since_best", mon.since).Debug("no improvement")
		}

		if mon.shouldStop() {
			res.StoppedEarly = true
			t.logger.WithFields(log.Fields{
				"best_epoch": mon.bestEpoch,
				"patience":   t.cfg.Patience,
			}).Info("early stopping")
			break
		}
	}

	if t.cfg.UseGPU && t.net.GPU {
		t.net.ReleaseGPUWeights()
	}
	return res, nil
}

func (t *Trainer) batches(examples []window.Example) []nn.TrainingBatch {
	return buildBatches(examples, t.cfg.Model, t.weights, t.rng)
}

// buildBatches shuffles the training examples and packs them into loom
// batches: inputs are the encoded windows, targets one-hot vectors scaled
// by the example's class weight. Scaling the one-hot entry scales the
// cross-entropy gradient the same way a per-sample loss weight would.
// The remainder that cannot fill a batch is dropped for this epoch; the
// reshuffle gives it a chance next epoch.
func buildBatches(examples []window.Example, model ModelConfig, weights map[int]float64, rng *rand.Rand) []nn.TrainingBatch {
	seqLen := model.SeqLength
	vocab := model.VocabSize
	batchSize := model.BatchSize

	indices := rng.Perm(len(examples))
	numBatches := len(examples) / batchSize
	batches := make([]nn.TrainingBatch, numBatches)

	for b := 0; b < numBatches; b++ {
		input := make([]float32, batchSize*seqLen)
		target := make([]float32, batchSize*vocab)

		for i := 0; i < batchSize; i++ {
			ex := examples[indices[b*batchSize+i]]
			for j, chord := range ex.Input {
				input[i*seqLen+j] = float32(chord)
			}
			target[i*vocab+ex.Target] = float32(classWeight(weights, ex.Target))
		}

		batches[b] = nn.TrainingBatch{Input: input, Target: target}
	}
	return batches
}

func classWeight(weights map[int]float64, class int) float64 {
	if w, ok := weights[class]; ok {
		return w
	}
	return 1
}

// evaluate scores the validation split one example at a time: unweighted
// cross-entropy, top-1 and top-3 accuracy.
func (t *Trainer) evaluate(epoch int, examples []window.Example) EpochMetrics {
	originalBatchSize := t.net.BatchSize
	t.net.BatchSize = 1
	defer func() { t.net.BatchSize = originalBatchSize }()

	seqLen := t.cfg.Model.SeqLength
	m := EpochMetrics{Epoch: epoch}

	for _, ex := range examples {
		input := make([]float32, seqLen)
		for j, chord := range ex.Input {
			input[j] = float32(chord)
		}
		probs, _ := t.net.ForwardCPU(input)

		m.ValLoss += crossEntropy(probs, ex.Target)
		if argmax(probs) == ex.Target {
			m.ValTop1++
		}
		if inTopK(probs, ex.Target, topKRank) {
			m.ValTop3++
		}
	}

	n := float64(len(examples))
	m.ValLoss /= n
	m.ValTop1 /= n
	m.ValTop3 /= n
	return m
}

// checkpoint serializes the current weights and overwrites the best-so-far
// snapshot on disk.
func (t *Trainer) checkpoint() (string, error) {
	snap, err := t.net.SaveModelToString(modelID)
	if err != nil {
		return "", fmt.Errorf("serialize snapshot: %w", err)
	}
	if t.cfg.CheckpointPath != "" {
		if err := os.WriteFile(t.cfg.CheckpointPath, []byte(snap), 0o644); err != nil {
			return "", fmt.Errorf("write checkpoint: %w", err)
		}
	}
	return snap, nil
}
