package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaultIsValidOnceInputIsSet(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("Validate() = %v, want ErrMissingInput", err)
	}

	cfg.InputFolder = "filelist.txt.gz"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.InputFolder = "in"
	cfg.MinSize = -1
	cfg.Workers = 0
	cfg.Partitions = 0
	cfg.HashAlgorithm = "md5"
	cfg.Keep = "random"
	cfg.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"min_size", "workers", "partitions", "hash_algorithm", "keep", "format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MinSize != DefaultMinSize {
		t.Errorf("MinSize = %d, want %d", cfg.MinSize, DefaultMinSize)
	}
	if cfg.OutputFile != DefaultOutputFile {
		t.Errorf("OutputFile = %q, want %q", cfg.OutputFile, DefaultOutputFile)
	}
	if cfg.Partitions != DefaultPartitions {
		t.Errorf("Partitions = %d, want %d", cfg.Partitions, DefaultPartitions)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.yaml")
	body := "input_folder: /data/list.txt\nmin_size: 4096\nread_timeout: 30s\nhash_algorithm: blake3\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DUPESCAN_OUTPUT_FILE", "dups.csv")

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.InputFolder != "/data/list.txt" {
		t.Errorf("InputFolder = %q", cfg.InputFolder)
	}
	if cfg.MinSize != 4096 {
		t.Errorf("MinSize = %d, want 4096", cfg.MinSize)
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %s, want 30s", cfg.ReadTimeout)
	}
	if cfg.HashAlgorithm != "blake3" {
		t.Errorf("HashAlgorithm = %q, want blake3", cfg.HashAlgorithm)
	}
	if cfg.OutputFile != "dups.csv" {
		t.Errorf("OutputFile = %q, want dups.csv (from env)", cfg.OutputFile)
	}
}

func TestLoadInputFolderFromEnv(t *testing.T) {
	t.Setenv("DUPESCAN_INPUT_FOLDER", "s3://bucket/listing")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.InputFolder != "s3://bucket/listing" {
		t.Errorf("InputFolder = %q, want the env value", cfg.InputFolder)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "scan.yaml")
	if err := os.WriteFile(path, []byte("input_folder: /data/list.txt\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(viper.New(), path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.InputFolder != "s3://bucket/listing" {
		t.Errorf("InputFolder = %q, env should win over the config file", cfg.InputFolder)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
