package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type Config struct {
	LxcConfigDir      string `yaml:"lxc_config_dir"`
	IDOffset          int64  `yaml:"id_offset"`
	MaxID             uint32 `yaml:"max_id"`
	LocksDir          string `yaml:"locks_dir"`
	ProgressInterval  uint64 `yaml:"progress_interval"`
	SlowRunThresholdS int    `yaml:"slow_run_threshold_seconds"`
}

func Load(configPath string) (Config, error) {
	configContent, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config path: %s", err)
	}

	var config Config
	err = yaml.Unmarshal(configContent, &config)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config file: %s", err)
	}

	return config, nil
}
