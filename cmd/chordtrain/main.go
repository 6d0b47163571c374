// chordtrain is the training stage of the chords-ai pipeline: it reads
// the scraped song corpus and vocabulary, windows the songs into
// fixed-width examples, trains the next-chord network, and writes the
// model artifacts the generation stage consumes.
package main

import (
	"flag"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/giacomov/chords-ai/internal/backend"
	"github.com/giacomov/chords-ai/internal/corpus"
	"github.com/giacomov/chords-ai/internal/dataset"
	"github.com/giacomov/chords-ai/internal/train"
	"github.com/giacomov/chords-ai/internal/vocab"
	"github.com/giacomov/chords-ai/internal/window"
)

func main() {
	var (
		songsPath = flag.String("songs", "", "songs JSON file from the scraper ({id: \"C G Am\", ...})")
		dbPath    = flag.String("db", "", "scraper sqlite database (alternative to -songs/-vocabulary)")
		vocabPath = flag.String("vocabulary", "", "vocabulary JSON file from the scraper")
		outDir    = flag.String("out", "artifacts", "output directory for dataset, checkpoint, model and manifest")

		seqLength    = flag.Int("seq-length", train.DefaultSeqLength, "chords of context per training example")
		embeddingDim = flag.Int("embedding-dim", train.DefaultEmbeddingDim, "embedding vector size")
		hiddenSize   = flag.Int("hidden-size", train.DefaultHiddenSize, "LSTM hidden units")
		batchSize    = flag.Int("batch-size", train.DefaultBatchSize, "training batch size")
		maxEpochs    = flag.Int("max-epochs", 500, "epoch budget")
		patience     = flag.Int("patience", 50, "epochs without validation improvement before stopping")
		valFraction  = flag.Float64("val-fraction", 0.2, "fraction of examples held out for validation")
		learningRate = flag.Float64("learning-rate", 0.005, "SGD learning rate")
		seed         = flag.Int64("seed", 0, "random seed (0 seeds from the clock)")

		threads = flag.Int("threads", 0, "cap on OS threads (0 keeps the runtime default)")
		useGPU  = flag.Bool("gpu", false, "train on the GPU backend")
		verbose = flag.Bool("verbose", false, "per-epoch debug logging")
	)
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	logger := log.WithFields(log.Fields{"component": "chordtrain"})

	if *dbPath == "" && (*songsPath == "" || *vocabPath == "") {
		logger.Fatal("either -db or both -songs and -vocabulary are required")
	}
	if *seqLength <= 0 {
		logger.Fatalf("seq-length must be positive, got %d", *seqLength)
	}

	numeric := backend.Config{Threads: *threads, UseGPU: *useGPU}
	procs := numeric.Apply()
	logger.WithFields(log.Fields{"threads": procs, "gpu": numeric.UseGPU}).Info("backend configured")

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatalf("create output directory: %v", err)
	}

	// Load corpus and vocabulary.
	var (
		songs   []corpus.Song
		symbols []string
		err     error
	)
	if *dbPath != "" {
		songs, err = corpus.LoadSQLite(*dbPath)
		if err != nil {
			logger.Fatalf("load songs: %v", err)
		}
		symbols, err = corpus.LoadVocabularySQLite(*dbPath)
		if err != nil {
			logger.Fatalf("load vocabulary: %v", err)
		}
	} else {
		songs, err = corpus.LoadJSON(*songsPath)
		if err != nil {
			logger.Fatalf("load songs: %v", err)
		}
		var v vocab.Vocabulary
		v, err = vocab.Load(*vocabPath)
		if err != nil {
			logger.Fatalf("load vocabulary: %v", err)
		}
		symbols = v
	}
	vocabulary := vocab.New(symbols)
	mapping := vocabulary.Mapping()
	logger.WithFields(log.Fields{
		"songs": len(songs),
		"vocab": mapping.Size(),
	}).Info("corpus loaded")

	// Window the corpus into supervised examples.
	res, err := window.Build(songs, mapping, *seqLength)
	if err != nil {
		logger.Fatalf("windowing: %v", err)
	}
	logger.WithFields(log.Fields{
		"examples":      len(res.Examples),
		"skipped_songs": res.Skipped,
	}).Info("corpus windowed")
	if len(res.Examples) == 0 {
		logger.Fatal("no song is long enough to produce a training example")
	}

	datasetPath := filepath.Join(*outDir, "dataset.json")
	ds := dataset.FromWindows(res, *seqLength, mapping.Size())
	if err := ds.Save(datasetPath); err != nil {
		logger.Fatalf("persist dataset: %v", err)
	}

	// Split and weight.
	split := dataset.Partition(res.Examples, *valFraction, rng)
	weights := dataset.ClassWeights(split.Train)
	logger.WithFields(log.Fields{
		"train": len(split.Train),
		"val":   len(split.Val),
	}).Info("dataset partitioned")

	manifest := dataset.NewManifest()
	manifest.SeqLength = *seqLength
	manifest.VocabSize = mapping.Size()
	manifest.EmbeddingDim = *embeddingDim
	manifest.HiddenSize = *hiddenSize
	manifest.BatchSize = *batchSize
	manifest.LearningRate = *learningRate
	manifest.ValFraction = *valFraction
	manifest.MaxEpochs = *maxEpochs
	manifest.Patience = *patience
	manifest.TrainExamples = len(split.Train)
	manifest.ValExamples = len(split.Val)
	manifest.SkippedSongs = res.Skipped
	manifest.DatasetOut = datasetPath

	// Train.
	trainer, err := train.New(train.Config{
		Model: train.ModelConfig{
			VocabSize:    mapping.Size(),
			SeqLength:    *seqLength,
			EmbeddingDim: *embeddingDim,
			HiddenSize:   *hiddenSize,
			BatchSize:    *batchSize,
		},
		MaxEpochs:      *maxEpochs,
		Patience:       *patience,
		LearningRate:   *learningRate,
		UseGPU:         numeric.UseGPU,
		CheckpointPath: filepath.Join(*outDir, "checkpoint.json"),
	}, weights, rng)
	if err != nil {
		logger.Fatalf("trainer setup: %v", err)
	}

	result, err := trainer.Fit(split)
	if err != nil {
		logger.Fatalf("training: %v", err)
	}

	modelPath := filepath.Join(*outDir, "model.json")
	if err := result.SaveModel(modelPath); err != nil {
		logger.Fatalf("persist model: %v", err)
	}

	manifest.EpochsRun = result.EpochsRun
	manifest.BestEpoch = result.Best.Epoch
	manifest.BestTop3 = result.Best.ValTop3
	manifest.BestTop1 = result.Best.ValTop1
	manifest.BestLoss = result.Best.ValLoss
	manifest.Stopped = "epoch_budget"
	if result.StoppedEarly {
		manifest.Stopped = "early"
	}
	manifest.ModelOut = modelPath
	manifest.FinishedAt = time.Now().UTC()
	if err := manifest.Save(filepath.Join(*outDir, "run.json")); err != nil {
		logger.Fatalf("persist manifest: %v", err)
	}

	logger.WithFields(log.Fields{
		"run_id":     manifest.RunID,
		"epochs":     result.EpochsRun,
		"best_epoch": result.Best.Epoch,
		"val_top3":   result.Best.ValTop3,
		"model":      modelPath,
	}).Info("training complete")
}
