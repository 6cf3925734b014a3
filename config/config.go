// Package config loads the tunables of the channel protocol and the lag
// compensator from a YAML file.
package config

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/gamevidea/netcode/internal/protocol"
)

type Config struct {
	Channel ChannelConfig `yaml:"channel"`
	LagComp LagCompConfig `yaml:"lag_compensation"`
}

type ChannelConfig struct {
	// Negotiated protocol version (34 legacy, 35 extended qport, 36 extended).
	Protocol int32 `yaml:"protocol"`

	QPort uint16 `yaml:"qport"`

	// Duplicate copies per transmitted datagram, clamped to [0, 2].
	Duplicates int `yaml:"duplicates"`

	// Upper bound of the reliable staging buffer in bytes.
	MaxMessageSize int `yaml:"max_message_size"`
}

type LagCompConfig struct {
	Enabled bool `yaml:"enabled"`

	// Rewind ceiling in milliseconds, clamped to [0, 500].
	MaxCompensationMS int64 `yaml:"max_compensation_ms"`

	Debug bool `yaml:"debug"`
}

func Default() Config {
	return Config{
		Channel: ChannelConfig{
			Protocol:       protocol.PROTOCOL_EXTENDED,
			Duplicates:     0,
			MaxMessageSize: protocol.MAX_MSGLEN - 16,
		},
		LagComp: LagCompConfig{
			Enabled:           true,
			MaxCompensationMS: 200,
		},
	}
}

// Load reads the configuration file at path, filling unset fields from the
// defaults and clamping everything into its valid range.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	cfg.clamp()
	return cfg, nil
}

func (c *Config) clamp() {
	if c.Channel.Protocol < protocol.PROTOCOL_LEGACY {
		c.Channel.Protocol = protocol.PROTOCOL_LEGACY
	}
	if c.Channel.Protocol > protocol.PROTOCOL_EXTENDED {
		c.Channel.Protocol = protocol.PROTOCOL_EXTENDED
	}

	if c.Channel.Duplicates < 0 {
		c.Channel.Duplicates = 0
	}
	if c.Channel.Duplicates > protocol.MAX_DUPLICATES {
		c.Channel.Duplicates = protocol.MAX_DUPLICATES
	}

	if c.Channel.MaxMessageSize <= 0 || c.Channel.MaxMessageSize > protocol.MAX_MSGLEN_EXTENDED {
		c.Channel.MaxMessageSize = protocol.MAX_MSGLEN - 16
	}

	if c.LagComp.MaxCompensationMS < 0 {
		c.LagComp.MaxCompensationMS = 0
	}
	if c.LagComp.MaxCompensationMS > 500 {
		c.LagComp.MaxCompensationMS = 500
	}
}
