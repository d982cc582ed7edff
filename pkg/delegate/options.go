package delegate

import (
	"github.com/arthur-debert/delg/pkg/logging"
	"github.com/rs/zerolog"
)

// Option configures a delegate at construction
type Option func(*settings)

type settings struct {
	name   string
	logger *zerolog.Logger
}

// WithName labels the delegate in log output
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithLogger replaces the default "delegate" component logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = &logger
	}
}

func resolve(opts []Option) (string, zerolog.Logger) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	logger := logging.GetLogger("delegate")
	if s.logger != nil {
		logger = *s.logger
	}
	if s.name != "" {
		logger = logger.With().Str("delegate", s.name).Logger()
	}
	return s.name, logger
}
