package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownAlgorithms = map[string]bool{
	"sha256": true,
	"blake3": true,
}

var knownStrategies = map[string]bool{
	"shortest": true,
	"longest":  true,
	"oldest":   true,
	"newest":   true,
}

var knownFormats = map[string]bool{
	"csv":  true,
	"json": true,
	"yaml": true,
}

// Validate checks the config and returns every problem found, joined.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.InputFolder) == "" {
		errs = append(errs, ErrMissingInput)
	}
	if strings.TrimSpace(c.OutputFile) == "" {
		errs = append(errs, errors.New("output_file must not be empty"))
	}
	if c.MinSize < 0 {
		errs = append(errs, fmt.Errorf("min_size %d must not be negative", c.MinSize))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers %d must be at least 1", c.Workers))
	}
	if c.Partitions < 1 {
		errs = append(errs, fmt.Errorf("partitions %d must be at least 1", c.Partitions))
	}
	if c.BufferSize < 1 {
		errs = append(errs, fmt.Errorf("buffer_size %d must be positive", c.BufferSize))
	}
	if c.ReadTimeout < 0 {
		errs = append(errs, fmt.Errorf("read_timeout %s must not be negative", c.ReadTimeout))
	}
	if !knownAlgorithms[strings.ToLower(c.HashAlgorithm)] {
		errs = append(errs, fmt.Errorf("unknown hash_algorithm %q", c.HashAlgorithm))
	}
	if !knownStrategies[strings.ToLower(c.Keep)] {
		errs = append(errs, fmt.Errorf("unknown keep strategy %q", c.Keep))
	}
	if !knownFormats[strings.ToLower(c.Format)] {
		errs = append(errs, fmt.Errorf("unknown format %q", c.Format))
	}

	return errors.Join(errs...)
}
