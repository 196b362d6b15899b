// Command train_fruits trains an image classifier on the Training/ and Test/
// directory trees, records the test metrics and exports inference models.
package main

import "context"
import "os"
import "os/signal"
import "time"

import "github.com/google/uuid"
import log "github.com/sirupsen/logrus"

import "github.com/neurlang/imageclassifier/config"
import "github.com/neurlang/imageclassifier/convert"
import "github.com/neurlang/imageclassifier/datasets/imagefolder"
import "github.com/neurlang/imageclassifier/learning"
import "github.com/neurlang/imageclassifier/metrics"
import "github.com/neurlang/imageclassifier/model"
import "github.com/neurlang/imageclassifier/publish"
import "github.com/neurlang/imageclassifier/results"
import "github.com/neurlang/imageclassifier/trainer"

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	initLogger(cfg)

	runID := uuid.New().String()
	logger := log.WithField("run", runID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	labels, err := imagefolder.ReadLabels(cfg.Data.Labels)
	if err != nil {
		logger.Fatalf("labels: %v", err)
	}
	logger.WithField("classes", len(labels)).Info("labels loaded")

	arch := model.Architecture{Repeat: cfg.Train.Repeat, Premodulo: cfg.Train.Premodulo}
	m, err := model.New(len(labels), arch)
	if err != nil {
		logger.Fatalf("model: %v", err)
	}
	compile(m, cfg, logger)

	train, err := imagefolder.FlowFromDirectory(cfg.Data.Train, labels, trainOptions(cfg))
	if err != nil {
		logger.Fatalf("training data: %v", err)
	}
	test, err := imagefolder.FlowFromDirectory(cfg.Data.Test, labels, testOptions(cfg))
	if err != nil {
		logger.Fatalf("test data: %v", err)
	}

	checkpoint := &trainer.ModelCheckpoint{
		Path:         cfg.Output.Checkpoint,
		Monitor:      "val_" + metrics.Accuracy,
		Mode:         "max",
		SaveBestOnly: true,
		Verbose:      1,
	}
	scalars := trainer.NewScalars(cfg.Output.ScalarsDir, runID, time.Now())
	defer scalars.Close()

	_, err = m.Fit(ctx, train, trainer.FitOptions{
		Epochs:          cfg.Train.Epochs,
		ValidationData:  test,
		StepsPerEpoch:   train.N() / train.BatchSize(),
		ValidationSteps: test.N() / test.BatchSize(),
		Callbacks:       []trainer.Callback{checkpoint, scalars},
		Seed:            cfg.Train.Seed,
	})
	if err != nil {
		logger.Fatalf("fit: %v", err)
	}

	best, err := model.NewWithWeights(len(labels), arch, cfg.Output.Checkpoint)
	if err != nil {
		logger.Fatalf("reload best weights: %v", err)
	}
	compile(best, cfg, logger)

	values, err := best.Evaluate(ctx, test, 0)
	if err != nil {
		logger.Fatalf("evaluate: %v", err)
	}
	if err = results.Write(cfg.Output.Results, values, cfg.Train.Epochs, train.BatchSize()); err != nil {
		logger.Fatalf("results: %v", err)
	}
	logger.WithField("metrics", values).Info("Test accuracy Non quantized model")

	artifacts := convertModel(ctx, cfg, labels, arch, logger)

	if cfg.Publish.Enabled {
		publishRun(ctx, cfg, runID, append(artifacts, cfg.Output.Results, cfg.Output.Checkpoint), logger)
	}
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func compile(m *trainer.Model, cfg *config.Config, logger *log.Entry) {
	var h learning.HyperParameters
	h.Threads = cfg.Train.Threads

	// shuffle before solving attempts
	h.Shuffle = true
	h.Seed = cfg.Train.Seed == 0

	// restart when stuck
	h.DeadlineMs = cfg.Train.DeadlineMs
	h.DeadlineRetry = cfg.Train.DeadlineRetry

	// affects how fast is the modulo reduced
	h.Factor = cfg.Train.Factor
	h.Subtractor = cfg.Train.Subtractor

	h.DisableProgressBar = true

	m.Logger = logger
	err := m.Compile(h, trainer.CategoricalCrossentropy,
		metrics.Accuracy, metrics.Recall, metrics.Precision, metrics.F1, metrics.AUC)
	if err != nil {
		logger.Fatalf("compile: %v", err)
	}
}

func trainOptions(cfg *config.Config) imagefolder.Options {
	opts := testOptions(cfg)
	opts.RotationRange = cfg.Augment.Rotation
	opts.WidthShiftRange = cfg.Augment.WidthShift
	opts.HeightShiftRange = cfg.Augment.HeightShift
	opts.ShearRange = cfg.Augment.Shear
	opts.ZoomRange = cfg.Augment.Zoom
	opts.HorizontalFlip = cfg.Augment.HorizontalFlip
	opts.VerticalFlip = cfg.Augment.VerticalFlip
	return opts
}

func testOptions(cfg *config.Config) imagefolder.Options {
	return imagefolder.Options{
		TargetWidth:  cfg.Data.Width,
		TargetHeight: cfg.Data.Height,
		BatchSize:    cfg.Data.BatchSize,
		Rescale:      1.0 / 255,
		Shuffle:      true,
		Seed:         cfg.Train.Seed,
		Repeat:       cfg.Train.Repeat,
		Threads:      cfg.Train.Threads,
	}
}

// convertModel exports the best weights and checks both exported models on the test data
func convertModel(ctx context.Context, cfg *config.Config, labels []string, arch model.Architecture, logger *log.Entry) []string {
	best, err := model.NewWithWeights(len(labels), arch, cfg.Output.Checkpoint)
	if err != nil {
		logger.Fatalf("reload best weights: %v", err)
	}
	test, err := imagefolder.FlowFromDirectory(cfg.Data.Test, labels, testOptions(cfg))
	if err != nil {
		logger.Fatalf("test data: %v", err)
	}
	plain, quant, err := convert.Export(best, cfg.Output.LiteDir)
	if err != nil {
		logger.Fatalf("convert: %v", err)
	}
	for _, artifact := range []struct{ name, path string }{{"Non quantized", plain}, {"Quantized", quant}} {
		accuracy, err := convert.EvaluateArtifact(ctx, artifact.path, len(labels), arch, test)
		if err != nil {
			logger.Fatalf("evaluate %s: %v", artifact.path, err)
		}
		logger.WithFields(log.Fields{"model": artifact.path, "accuracy": accuracy}).Infof("Test accuracy %s lite model", artifact.name)
	}
	return []string{plain, quant}
}

func publishRun(ctx context.Context, cfg *config.Config, runID string, files []string, logger *log.Entry) {
	p, err := publish.New(publish.Options{
		Endpoint:  cfg.Publish.Endpoint,
		AccessKey: cfg.Publish.AccessKey,
		SecretKey: cfg.Publish.SecretKey,
		UseSSL:    cfg.Publish.UseSSL,
		Bucket:    cfg.Publish.Bucket,
	}, runID)
	if err != nil {
		logger.Fatalf("publish: %v", err)
	}
	if err = p.EnsureBucket(ctx); err != nil {
		logger.Fatalf("publish: %v", err)
	}
	names, err := p.Upload(ctx, files...)
	if err != nil {
		logger.Fatalf("publish: %v", err)
	}
	logger.WithField("objects", names).Info("run published")
}
