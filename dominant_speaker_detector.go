package speechactivity

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/imdario/mergo"
	"github.com/samber/lo"

	"github.com/jiyeyuran/speechactivity/internal/subscription"
)

type speakerState struct {
	ssrc       uint32
	level      float64
	lastActive time.Time
	lastUpdate time.Time
}

// DominantSpeakerDetector is the default DominantSpeakerIdentification. It elects the loudest
// recently active stream, and only hands over the floor when the current dominant speaker
// went silent or is outspoken by more than the configured hysteresis.
type DominantSpeakerDetector struct {
	// emitMu serializes the delivery of dominant speaker changes
	emitMu sync.Mutex

	mu       sync.Mutex
	settings DetectorSettings
	speakers map[uint32]*speakerState
	dominant *speakerState
	now      func() time.Time
	logger   logr.Logger

	activeSpeakerHandlers  subscription.Set[func(uint32)]
	propertyChangeHandlers subscription.Set[func(string)]
}

func NewDominantSpeakerDetector(settings DetectorSettings) *DominantSpeakerDetector {
	_ = mergo.Merge(&settings, DefaultSettings().Detector)

	return &DominantSpeakerDetector{
		settings: settings,
		speakers: make(map[uint32]*speakerState),
		now:      time.Now,
		logger:   NewLogger("DominantSpeakerDetector"),
	}
}

func (d *DominantSpeakerDetector) LevelChanged(ssrc uint32, level int) {
	level = lo.Clamp(level, 0, MaxAudioLevel)

	d.mu.Lock()
	now := d.now()
	speaker, ok := d.speakers[ssrc]
	if !ok {
		speaker = &speakerState{ssrc: ssrc, level: float64(level)}
		d.speakers[ssrc] = speaker
	} else {
		speaker.level += d.settings.Smoothing * (float64(level) - speaker.level)
	}
	speaker.lastUpdate = now
	if speaker.level >= float64(d.settings.Threshold) {
		speaker.lastActive = now
	}
	changed := d.electLocked(now)
	var dominantSsrc uint32
	if changed {
		dominantSsrc = d.dominant.ssrc
	}
	d.mu.Unlock()

	if changed {
		d.emit(dominantSsrc)
	}
}

// emit delivers the election of ssrc, unless a later election already replaced it.
func (d *DominantSpeakerDetector) emit(ssrc uint32) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	if current, ok := d.DominantSpeaker(); !ok || current != ssrc {
		d.logger.V(1).Info("dominant speaker superseded", "ssrc", ssrc)
		return
	}
	d.logger.V(1).Info("dominant speaker changed", "ssrc", ssrc)

	for _, handler := range d.activeSpeakerHandlers.Handlers() {
		handler(ssrc)
	}
	for _, handler := range d.propertyChangeHandlers.Handlers() {
		handler(DominantSpeakerPropertyName)
	}
}

// RemoveSsrc forgets the stream ssrc, e.g. after its producer was closed.
func (d *DominantSpeakerDetector) RemoveSsrc(ssrc uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dominant != nil && d.dominant.ssrc == ssrc {
		d.dominant = nil
	}
	delete(d.speakers, ssrc)
}

// DominantSpeaker returns the SSRC of the dominant speaker, false if there is none.
func (d *DominantSpeakerDetector) DominantSpeaker() (uint32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dominant == nil {
		return 0, false
	}
	return d.dominant.ssrc, true
}

func (d *DominantSpeakerDetector) OnActiveSpeakerChanged(handler func(ssrc uint32)) Subscription {
	return d.activeSpeakerHandlers.Subscribe(handler)
}

func (d *DominantSpeakerDetector) OnPropertyChange(handler func(name string)) Subscription {
	return d.propertyChangeHandlers.Subscribe(handler)
}

func (d *DominantSpeakerDetector) Snapshot() H {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	ssrcs := lo.Keys(d.speakers)
	slices.Sort(ssrcs)

	speakers := make([]H, 0, len(ssrcs))
	for _, ssrc := range ssrcs {
		speaker := d.speakers[ssrc]
		speakers = append(speakers, H{
			"ssrc":  ssrc,
			"level": int(math.Round(speaker.level)),
			"idle":  now.Sub(speaker.lastUpdate).Milliseconds(),
		})
	}

	snapshot := H{
		"dominantSpeaker": nil,
		"speakers":        speakers,
	}
	if d.dominant != nil {
		snapshot["dominantSpeaker"] = d.dominant.ssrc
	}
	return snapshot
}

func (d *DominantSpeakerDetector) activeLocked(speaker *speakerState, now time.Time) bool {
	return !speaker.lastActive.IsZero() && now.Sub(speaker.lastActive) <= d.settings.SilenceTimeout
}

// electLocked reports whether the dominant speaker changed.
func (d *DominantSpeakerDetector) electLocked(now time.Time) bool {
	var candidate *speakerState

	for _, speaker := range d.speakers {
		if !d.activeLocked(speaker, now) {
			continue
		}
		if candidate == nil ||
			speaker.level > candidate.level ||
			(speaker.level == candidate.level && speaker.ssrc < candidate.ssrc) {
			candidate = speaker
		}
	}

	if candidate == nil || candidate == d.dominant {
		return false
	}
	if d.dominant != nil && d.activeLocked(d.dominant, now) &&
		candidate.level < d.dominant.level+float64(d.settings.Hysteresis) {
		return false
	}
	d.dominant = candidate

	return true
}
