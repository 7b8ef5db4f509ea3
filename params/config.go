package params

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig returns Config overlaid with the YAML file at path.
// Keys missing from the file keep their default. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (TrainingConfig, error) {
	cfg := Config
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv lets deployments point the server at other artifacts
// without a config file.
func ApplyEnv(cfg *TrainingConfig) {
	if v, ok := os.LookupEnv("MODEL_PATH"); ok && v != "" {
		cfg.ModelPath = v
	}
	if v, ok := os.LookupEnv("VOCAB_PATH"); ok && v != "" {
		cfg.VocabPath = v
	}
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		if !strings.HasPrefix(v, ":") {
			v = ":" + v
		}
		cfg.Addr = v
	}
}

func (c TrainingConfig) Validate() error {
	var errs []error
	check := func(name string, v int) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %d", name, v))
		}
	}
	check("embed_dim", c.EmbedDim)
	check("hidden_size", c.HiddenSize)
	check("vocab_size", c.VocabSize)
	check("window", c.Window)
	check("epochs", c.Epochs)
	check("steps_per_epoch", c.StepsPerEpoch)
	check("batch_size", c.BatchSize)
	if c.ValidationSteps < 0 {
		errs = append(errs, fmt.Errorf("validation_steps must be >= 0, got %d", c.ValidationSteps))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.LearningRate <= 0 {
		errs = append(errs, fmt.Errorf("learning_rate must be > 0, got %g", c.LearningRate))
	}
	return errors.Join(errs...)
}
