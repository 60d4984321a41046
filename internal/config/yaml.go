package config

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (1MB).
const MaxInputSize = 1 << 20

var (
	ErrEmptyData     = errors.New("empty config data")
	ErrInputTooLarge = errors.New("config exceeds maximum size")
)

// unmarshalStrict decodes data over v and rejects unknown fields.
func unmarshalStrict(data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmptyData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	return yaml.UnmarshalWithOptions(data, v, yaml.Strict())
}

// Marshal encodes c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
