package catalog

import (
	"bytes"
	"fmt"
	"reflect"

	"consent-manager/core/cookies"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Load reads and validates a catalog file. The format follows the extension
// (yaml, yml, json, toml).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return decode(v)
}

// Parse decodes and validates a catalog held in memory.
func Parse(data []byte, format string) (*Config, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := mapstructure.ComposeDecodeHookFunc(
		cookieRuleHook,
		mapstructure.StringToTimeDurationHookFunc(),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var ruleType = reflect.TypeOf(cookies.Rule{})

// cookieRuleHook accepts the short cookie rule forms:
// "name", "^regex" and [pattern, path, domain].
func cookieRuleHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != ruleType {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		return cookies.Rule{Pattern: v}, nil
	case []any:
		if len(v) == 0 || len(v) > 3 {
			return nil, fmt.Errorf("cookie rule must have 1 to 3 elements, got %d", len(v))
		}
		parts := make([]string, 3)
		for i, el := range v {
			s, ok := el.(string)
			if !ok {
				return nil, fmt.Errorf("cookie rule element %d must be a string", i)
			}
			parts[i] = s
		}
		return cookies.Rule{Pattern: parts[0], Path: parts[1], Domain: parts[2]}, nil
	}
	return data, nil
}
