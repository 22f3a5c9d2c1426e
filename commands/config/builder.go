package config

import (
	"github.com/BKWSU-UK/proxmox-privconvert/conv"

	errorspkg "github.com/pkg/errors"
)

const (
	defaultLxcConfigDir     = "/etc/pve/lxc"
	defaultLocksDir         = "/var/run/privconvert"
	defaultProgressInterval = 1000
)

type Builder struct {
	config *Config
}

func NewBuilder() *Builder {
	return &Builder{
		config: &Config{},
	}
}

func NewBuilderFromFile(pathToYaml string) (*Builder, error) {
	config, err := Load(pathToYaml)
	if err != nil {
		return nil, err
	}

	return &Builder{
		config: &config,
	}, nil
}

// Build fills defaults for anything neither the file nor the flags set, then
// validates the identity policy.
func (b *Builder) Build() (Config, error) {
	config := *b.config

	if config.LxcConfigDir == "" {
		config.LxcConfigDir = defaultLxcConfigDir
	}
	if config.LocksDir == "" {
		config.LocksDir = defaultLocksDir
	}
	if config.IDOffset == 0 {
		config.IDOffset = conv.DefaultIDOffset
	}
	if config.MaxID == 0 {
		config.MaxID = conv.DefaultMaxID
	}
	if config.ProgressInterval == 0 {
		config.ProgressInterval = defaultProgressInterval
	}

	if config.IDOffset < 0 {
		return Config{}, errorspkg.New("id_offset must be positive")
	}
	if int64(config.MaxID) < config.IDOffset {
		return Config{}, errorspkg.Errorf("max_id (%d) must not be smaller than id_offset (%d)", config.MaxID, config.IDOffset)
	}

	return config, nil
}

func (b *Builder) WithLxcConfigDir(dir string) *Builder {
	if dir != "" {
		b.config.LxcConfigDir = dir
	}
	return b
}

func (b *Builder) WithIDOffset(offset int64) *Builder {
	if offset > 0 {
		b.config.IDOffset = offset
	}
	return b
}

func (b *Builder) WithMaxID(maxID uint32) *Builder {
	if maxID > 0 {
		b.config.MaxID = maxID
	}
	return b
}

func (b *Builder) WithLocksDir(dir string) *Builder {
	if dir != "" {
		b.config.LocksDir = dir
	}
	return b
}

func (b *Builder) WithProgressInterval(interval uint64) *Builder {
	if interval > 0 {
		b.config.ProgressInterval = interval
	}
	return b
}
