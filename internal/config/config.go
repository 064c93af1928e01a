package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultMinSize is the CLI default minimum file size (2 MiB).
	DefaultMinSize    int64 = 2 * 1024 * 1024
	DefaultOutputFile       = "output.csv"
	DefaultPartitions       = 20
	DefaultBufferSize       = 128 * 1024
	EnvPrefix               = "DUPESCAN"
)

var ErrMissingInput = errors.New("input_folder is required")

type Config struct {
	InputFolder   string        `mapstructure:"input_folder"`
	OutputFile    string        `mapstructure:"output_file"`
	MinSize       int64         `mapstructure:"min_size"`
	Workers       int           `mapstructure:"workers"`
	Partitions    int           `mapstructure:"partitions"`
	HashAlgorithm string        `mapstructure:"hash_algorithm"`
	BufferSize    int           `mapstructure:"buffer_size"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	Keep          string        `mapstructure:"keep"`
	Format        string        `mapstructure:"format"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFormat     string        `mapstructure:"log_format"`
	Quiet         bool          `mapstructure:"quiet"`
}

func Default() *Config {
	return &Config{
		OutputFile:    DefaultOutputFile,
		MinSize:       DefaultMinSize,
		Workers:       runtime.NumCPU(),
		Partitions:    DefaultPartitions,
		HashAlgorithm: "sha256",
		BufferSize:    DefaultBufferSize,
		Keep:          "shortest",
		Format:        "csv",
		LogLevel:      "info",
		LogFormat:     "console",
	}
}

// SetDefaults registers the defaults on v so that config files, env vars and
// bound flags all layer on top of them.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("output_file", d.OutputFile)
	v.SetDefault("min_size", d.MinSize)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("partitions", d.Partitions)
	v.SetDefault("hash_algorithm", d.HashAlgorithm)
	v.SetDefault("buffer_size", d.BufferSize)
	v.SetDefault("read_timeout", d.ReadTimeout)
	v.SetDefault("keep", d.Keep)
	v.SetDefault("format", d.Format)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("quiet", d.Quiet)
}

// Load reads cfgFile (optional) and the DUPESCAN_* environment into a Config.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("dupescan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// input_folder has no default, so AutomaticEnv alone would not surface
	// it to Unmarshal.
	if err := v.BindEnv("input_folder"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
