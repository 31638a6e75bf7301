package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// setters maps a persisted setting key to the field it overrides.
var setters = map[string]func(c *Config, v string) error{
	"unit":      func(c *Config, v string) error { c.Unit = v; return nil },
	"timezone":  func(c *Config, v string) error { c.Timezone = v; return nil },
	"very_low":  floatSetter(func(c *Config) *float64 { return &c.VeryLow }),
	"low":       floatSetter(func(c *Config) *float64 { return &c.Low }),
	"high":      floatSetter(func(c *Config) *float64 { return &c.High }),
	"very_high": floatSetter(func(c *Config) *float64 { return &c.VeryHigh }),
	"category_mode": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.CategoryMode = n
		return nil
	},
	"insulin_duration": durationSetter(func(c *Config) *time.Duration { return &c.InsulinDuration }),
	"iob_interval":     durationSetter(func(c *Config) *time.Duration { return &c.IOBInterval }),
	"smooth": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Smooth = b
		return nil
	},
}

func floatSetter(field func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}
}

func durationSetter(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

// SettingKeys lists the keys accepted by ApplyOverrides, sorted.
func SettingKeys() []string {
	keys := lo.Keys(setters)
	slices.Sort(keys)
	return keys
}

// IsSettingKey reports whether key can be persisted as an override.
func IsSettingKey(key string) bool {
	_, ok := setters[strings.ToLower(key)]
	return ok
}

// ApplyOverrides sets each key in overrides and validates the result.
// On error c is left unchanged.
func (c *Config) ApplyOverrides(overrides map[string]string) error {
	next := *c
	var errs []error
	for _, key := range lo.Keys(overrides) {
		set, ok := setters[strings.ToLower(key)]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown setting %q", key))
			continue
		}
		if err := set(&next, strings.TrimSpace(overrides[key])); err != nil {
			errs = append(errs, fmt.Errorf("setting %s: %w", key, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}
