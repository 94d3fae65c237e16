package speechactivity

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/imdario/mergo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDispatchInterval = 100 * time.Millisecond
	MaxAudioLevel           = 127
)

// DetectorSettings configures DominantSpeakerDetector.
type DetectorSettings struct {
	// Threshold is the minimum smoothed level (0 silence, 127 loudest) a speaker needs to
	// become dominant. Default 20.
	Threshold int `json:"threshold,omitempty" yaml:"threshold,omitempty"`

	// Hysteresis is the level margin a speaker must exceed the current dominant speaker by
	// to take over. Default 6.
	Hysteresis int `json:"hysteresis,omitempty" yaml:"hysteresis,omitempty"`

	// SilenceTimeout is the time after the last level above threshold a speaker is
	// considered silent. Default 2s.
	SilenceTimeout time.Duration `json:"silenceTimeout,omitempty" yaml:"silence_timeout,omitempty"`

	// Smoothing is the weight in (0, 1] of a new sample in the moving average. Default 0.5.
	Smoothing float64 `json:"smoothing,omitempty" yaml:"smoothing,omitempty"`
}

// Settings holds the tunables of SpeechActivity which can be read from configuration files.
type Settings struct {
	// DispatchInterval is the minimum interval between two dispatch cycles. Default 100ms.
	DispatchInterval time.Duration `json:"dispatchInterval,omitempty" yaml:"dispatch_interval,omitempty"`

	// Detector configures the default active speaker detector.
	Detector DetectorSettings `json:"detector,omitempty" yaml:"detector,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		DispatchInterval: DefaultDispatchInterval,
		Detector: DetectorSettings{
			Threshold:      20,
			Hysteresis:     6,
			SilenceTimeout: 2 * time.Second,
			Smoothing:      0.5,
		},
	}
}

// LoadSettings reads the YAML file at path. Missing values take their defaults.
func LoadSettings(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("settings: open %q: %w", path, err)
	}
	defer f.Close()

	settings, err := LoadSettingsFromReader(f)
	if err != nil {
		return Settings{}, fmt.Errorf("settings: parse %q: %w", path, err)
	}
	return settings, nil
}

// LoadSettingsFromReader decodes YAML settings from r, fills in defaults and validates the
// result.
func LoadSettingsFromReader(r io.Reader) (Settings, error) {
	settings := Settings{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&settings); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("settings: decode yaml: %w", err)
	}
	if err := settings.withDefaults(); err != nil {
		return Settings{}, err
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate checks that all values are in range. The returned error joins every problem
// found and matches ErrInvalidSettings.
func (s Settings) Validate() error {
	var errs []error

	if s.DispatchInterval < 0 {
		errs = append(errs, fmt.Errorf("dispatch_interval %s is negative", s.DispatchInterval))
	}
	if s.Detector.Threshold < 0 || s.Detector.Threshold > MaxAudioLevel {
		errs = append(errs, fmt.Errorf("detector.threshold %d is out of [0, %d]", s.Detector.Threshold, MaxAudioLevel))
	}
	if s.Detector.Hysteresis < 0 {
		errs = append(errs, fmt.Errorf("detector.hysteresis %d is negative", s.Detector.Hysteresis))
	}
	if s.Detector.SilenceTimeout < 0 {
		errs = append(errs, fmt.Errorf("detector.silence_timeout %s is negative", s.Detector.SilenceTimeout))
	}
	if s.Detector.Smoothing < 0 || s.Detector.Smoothing > 1 {
		errs = append(errs, fmt.Errorf("detector.smoothing %v is out of [0, 1]", s.Detector.Smoothing))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}
	return nil
}

// withDefaults fills the zero values of s from DefaultSettings.
func (s *Settings) withDefaults() error {
	return mergo.Merge(s, DefaultSettings())
}
