package speechactivity

import (
	"time"

	"github.com/go-logr/logr"
)

// DetectorFactory creates the active speaker detector of a SpeechActivity. It is invoked at
// most once per SpeechActivity, on first use.
type DetectorFactory func() ActiveSpeakerDetector

type speechActivityOptions struct {
	settings        Settings
	detectorFactory DetectorFactory
	executor        Executor
	logger          *logr.Logger
	metrics         *Metrics
}

type Option func(o *speechActivityOptions)

// WithSettings replaces the settings. Zero values take their defaults, and invalid settings
// are logged and replaced by DefaultSettings.
func WithSettings(settings Settings) Option {
	return func(o *speechActivityOptions) {
		o.settings = settings
	}
}

// WithDispatchInterval overrides Settings.DispatchInterval.
func WithDispatchInterval(interval time.Duration) Option {
	return func(o *speechActivityOptions) {
		o.settings.DispatchInterval = interval
	}
}

// WithDetectorFactory replaces the default DominantSpeakerDetector.
func WithDetectorFactory(factory DetectorFactory) Option {
	return func(o *speechActivityOptions) {
		o.detectorFactory = factory
	}
}

// WithExecutor sets the Executor running the event dispatcher, default to GoExecutor.
func WithExecutor(executor Executor) Option {
	return func(o *speechActivityOptions) {
		o.executor = executor
	}
}

// WithLogger sets the logger, default to NewLogger("SpeechActivity").
func WithLogger(logger logr.Logger) Option {
	return func(o *speechActivityOptions) {
		o.logger = &logger
	}
}

// WithMetrics sets the collectors to update.
func WithMetrics(metrics *Metrics) Option {
	return func(o *speechActivityOptions) {
		o.metrics = metrics
	}
}

func newSpeechActivityOptions(options ...Option) *speechActivityOptions {
	o := &speechActivityOptions{
		settings: DefaultSettings(),
	}
	for _, option := range options {
		option(o)
	}
	if o.logger == nil {
		logger := NewLogger("SpeechActivity")
		o.logger = &logger
	}
	if err := o.settings.withDefaults(); err != nil {
		o.logger.Error(err, "failed to merge default settings, using defaults")
		o.settings = DefaultSettings()
	}
	if err := o.settings.Validate(); err != nil {
		o.logger.Error(err, "invalid settings, using defaults")
		o.settings = DefaultSettings()
	}

	if o.detectorFactory == nil {
		detectorSettings := o.settings.Detector
		o.detectorFactory = func() ActiveSpeakerDetector {
			return NewDominantSpeakerDetector(detectorSettings)
		}
	}
	if o.executor == nil {
		o.executor = GoExecutor{}
	}
	return o
}
