package reconciler

import (
	"github.com/rs/zerolog"

	"github.com/osmtools/chargesync/pkg/errors"
	"github.com/osmtools/chargesync/pkg/logging"
	"github.com/osmtools/chargesync/pkg/rules"
	"github.com/osmtools/chargesync/pkg/stations"
)

// options configures a reconciler.
type options struct {
	rules     *rules.Rules
	threshold float64 // 0 means take it from the rules document
	allocator *stations.Allocator
	logger    *zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		rules:     rules.Empty(),
		allocator: stations.NewAllocator(),
		logger:    logging.Default(),
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithRules sets the reconciliation rules document.
func WithRules(r *rules.Rules) Option {
	return func(o *options) error {
		if r == nil {
			return &errors.ValidationError{
				Field:   "rules",
				Message: "cannot be nil",
			}
		}
		o.rules = r
		return nil
	}
}

// WithThreshold overrides the match distance cutoff from the rules document.
func WithThreshold(threshold float64) Option {
	return func(o *options) error {
		if threshold <= 0 {
			return &errors.ValidationError{
				Field:   "threshold",
				Value:   threshold,
				Message: "must be positive",
			}
		}
		o.threshold = threshold
		return nil
	}
}

// WithAllocator sets the synthetic-id allocator, letting tests assert exact
// id assignment.
func WithAllocator(a *stations.Allocator) Option {
	return func(o *options) error {
		if a == nil {
			return &errors.ValidationError{
				Field:   "allocator",
				Message: "cannot be nil",
			}
		}
		o.allocator = a
		return nil
	}
}

// WithLogger sets the logger used for the match trace and orphan report.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return &errors.ValidationError{
				Field:   "logger",
				Message: "cannot be nil",
			}
		}
		o.logger = logger
		return nil
	}
}
