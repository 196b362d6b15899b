// Package config holds the settings of a training run. Every setting has a
// built-in default; an optional train.yaml in the working directory overrides them.
package config

import "github.com/pkg/errors"
import "github.com/spf13/viper"

// FileName is the base name of the optional settings file
const FileName = "train"

// ErrInvalid is returned for settings outside their usable range
var ErrInvalid = errors.New("invalid setting")

type Config struct {
	Data    DataConfig
	Augment AugmentConfig
	Train   TrainConfig
	Output  OutputConfig
	Logger  LoggerConfig
	Publish PublishConfig
}

type DataConfig struct {
	Labels    string
	Train     string
	Test      string
	Width     int
	Height    int
	BatchSize int
}

type AugmentConfig struct {
	Rotation       float64
	WidthShift     float64
	HeightShift    float64
	Shear          float64
	Zoom           float64
	HorizontalFlip bool
	VerticalFlip   bool
}

type TrainConfig struct {
	Epochs        int
	Repeat        int
	Premodulo     uint32
	Threads       int
	DeadlineMs    int
	DeadlineRetry int
	Factor        uint32
	Subtractor    uint32
	Seed          int64
}

type OutputConfig struct {
	Results    string
	Checkpoint string
	LiteDir    string
	ScalarsDir string
}

type LoggerConfig struct {
	Level  string
	Format string
}

type PublishConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// Load reads dir/train.yaml over the defaults. A missing file is not an error.
func Load(dir string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("data.labels", "labels.txt")
	v.SetDefault("data.train", "Training")
	v.SetDefault("data.test", "Test")
	v.SetDefault("data.width", 100)
	v.SetDefault("data.height", 100)
	v.SetDefault("data.batch_size", 64)

	v.SetDefault("augment.rotation", 20)
	v.SetDefault("augment.width_shift", 0.2)
	v.SetDefault("augment.height_shift", 0.2)
	v.SetDefault("augment.shear", 0.3)
	v.SetDefault("augment.zoom", 0.5)
	v.SetDefault("augment.horizontal_flip", true)
	v.SetDefault("augment.vertical_flip", true)

	v.SetDefault("train.epochs", 5)
	v.SetDefault("train.repeat", 3)
	v.SetDefault("train.premodulo", 4096)
	v.SetDefault("train.threads", 0)
	v.SetDefault("train.deadline_ms", 1000)
	v.SetDefault("train.deadline_retry", 3)
	v.SetDefault("train.factor", 1)
	v.SetDefault("train.subtractor", 1)
	v.SetDefault("train.seed", 0)

	v.SetDefault("output.results", "./results.csv")
	v.SetDefault("output.checkpoint", "weights_best.json.lzw")
	v.SetDefault("output.lite_dir", "./lite-models")
	v.SetDefault("output.scalars_dir", "logs/scalars")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")

	v.SetDefault("publish.enabled", false)
	v.SetDefault("publish.endpoint", "localhost:9000")
	v.SetDefault("publish.access_key", "minioadmin")
	v.SetDefault("publish.secret_key", "minioadmin")
	v.SetDefault("publish.use_ssl", false)
	v.SetDefault("publish.bucket", "models")

	// File
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	cfg := &Config{
		Data: DataConfig{
			Labels:    v.GetString("data.labels"),
			Train:     v.GetString("data.train"),
			Test:      v.GetString("data.test"),
			Width:     v.GetInt("data.width"),
			Height:    v.GetInt("data.height"),
			BatchSize: v.GetInt("data.batch_size"),
		},
		Augment: AugmentConfig{
			Rotation:       v.GetFloat64("augment.rotation"),
			WidthShift:     v.GetFloat64("augment.width_shift"),
			HeightShift:    v.GetFloat64("augment.height_shift"),
			Shear:          v.GetFloat64("augment.shear"),
			Zoom:           v.GetFloat64("augment.zoom"),
			HorizontalFlip: v.GetBool("augment.horizontal_flip"),
			VerticalFlip:   v.GetBool("augment.vertical_flip"),
		},
		Train: TrainConfig{
			Epochs:        v.GetInt("train.epochs"),
			Repeat:        v.GetInt("train.repeat"),
			Premodulo:     v.GetUint32("train.premodulo"),
			Threads:       v.GetInt("train.threads"),
			DeadlineMs:    v.GetInt("train.deadline_ms"),
			DeadlineRetry: v.GetInt("train.deadline_retry"),
			Factor:        v.GetUint32("train.factor"),
			Subtractor:    v.GetUint32("train.subtractor"),
			Seed:          v.GetInt64("train.seed"),
		},
		Output: OutputConfig{
			Results:    v.GetString("output.results"),
			Checkpoint: v.GetString("output.checkpoint"),
			LiteDir:    v.GetString("output.lite_dir"),
			ScalarsDir: v.GetString("output.scalars_dir"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("logger.level"),
			Format: v.GetString("logger.format"),
		},
		Publish: PublishConfig{
			Enabled:   v.GetBool("publish.enabled"),
			Endpoint:  v.GetString("publish.endpoint"),
			AccessKey: v.GetString("publish.access_key"),
			SecretKey: v.GetString("publish.secret_key"),
			UseSSL:    v.GetBool("publish.use_ssl"),
			Bucket:    v.GetString("publish.bucket"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for key, v := range map[string]int{
		"data.batch_size": c.Data.BatchSize,
		"data.width":      c.Data.Width,
		"data.height":     c.Data.Height,
	} {
		if v <= 0 {
			return errors.Wrapf(ErrInvalid, "%s must be positive, got %d", key, v)
		}
	}
	return nil
}
