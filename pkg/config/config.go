package config

import (
	"time"

	"github.com/arthur-debert/delg/pkg/errors"
	"github.com/pelletier/go-toml/v2"
)

// Config is the effective configuration of the delg command line
type Config struct {
	Logging Logging `koanf:"logging"`
	Stress  Stress  `koanf:"stress"`
	Topics  Topics  `koanf:"topics"`

	// Source is the config file that was loaded, empty if none
	Source string `koanf:"-"`
}

// Logging holds logger settings
type Logging struct {
	Verbosity int `koanf:"verbosity"`
}

// Stress holds the concurrency harness parameters
type Stress struct {
	Adders   int           `koanf:"adders"`
	Invokers int           `koanf:"invokers"`
	Invokes  int           `koanf:"invokes"`
	Mortal   int           `koanf:"mortal"`
	Timeout  time.Duration `koanf:"timeout"`
}

// Topics holds help topic rendering settings
type Topics struct {
	Style string `koanf:"style"`
	Width int    `koanf:"width"`
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, key, msg string) {
		if !ok {
			errs = append(errs, errors.Newf(errors.ErrConfigValid, "%s %s", key, msg).WithDetail("key", key))
		}
	}

	check(c.Logging.Verbosity >= 0, "logging.verbosity", "must not be negative")
	check(c.Stress.Adders > 0, "stress.adders", "must be positive")
	check(c.Stress.Invokers >= 0, "stress.invokers", "must not be negative")
	check(c.Stress.Invokes >= 0, "stress.invokes", "must not be negative")
	check(c.Stress.Mortal >= 0, "stress.mortal", "must not be negative")
	check(c.Stress.Timeout > 0, "stress.timeout", "must be positive")
	check(c.Topics.Width >= 0, "topics.width", "must not be negative")

	return errors.Join(errs...)
}

// TOML renders the configuration in the same shape as the defaults file
func (c *Config) TOML() ([]byte, error) {
	doc := map[string]interface{}{
		"logging": map[string]interface{}{
			"verbosity": c.Logging.Verbosity,
		},
		"stress": map[string]interface{}{
			"adders":   c.Stress.Adders,
			"invokers": c.Stress.Invokers,
			"invokes":  c.Stress.Invokes,
			"mortal":   c.Stress.Mortal,
			"timeout":  c.Stress.Timeout.String(),
		},
		"topics": map[string]interface{}{
			"style": c.Topics.Style,
			"width": c.Topics.Width,
		},
	}

	out, err := toml.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return out, nil
}
