package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration file (~/.config/kodegen/config.yaml).
// Sampling fields are pointers so "not set" stays distinct from zero.
type Config struct {
	Temperature       *float64 `yaml:"temperature"`
	TopK              *int64   `yaml:"top_k"`
	TopP              *float64 `yaml:"top_p"`
	RepetitionPenalty *float64 `yaml:"repetition_penalty"`
	FrequencyPenalty  *float64 `yaml:"frequency_penalty"`
	PresencePenalty   *float64 `yaml:"presence_penalty"`
	Seed              *int64   `yaml:"seed"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "kodegen", "config.yaml")
}

// loadConfig reads the config file. Returns a zero Config when the file does
// not exist or cannot be parsed.
func loadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// applyProcessConfig fills process command variables from the config file
// when the corresponding flag was not given on the command line.
func applyProcessConfig(c *cli.Command, cfg Config,
	temp, topP *float64, topK *int64,
	repetition, frequency, presence *float64, seed *int64,
) {
	if cfg.Temperature != nil && !c.IsSet("temp") && !c.IsSet("temperature") {
		*temp = *cfg.Temperature
	}
	if cfg.TopK != nil && !c.IsSet("top-k") {
		*topK = *cfg.TopK
	}
	if cfg.TopP != nil && !c.IsSet("top-p") {
		*topP = *cfg.TopP
	}
	if cfg.RepetitionPenalty != nil && !c.IsSet("repetition-penalty") {
		*repetition = *cfg.RepetitionPenalty
	}
	if cfg.FrequencyPenalty != nil && !c.IsSet("frequency-penalty") {
		*frequency = *cfg.FrequencyPenalty
	}
	if cfg.PresencePenalty != nil && !c.IsSet("presence-penalty") {
		*presence = *cfg.PresencePenalty
	}
	if cfg.Seed != nil && !c.IsSet("seed") {
		*seed = *cfg.Seed
	}
}

func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}
