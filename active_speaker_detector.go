package speechactivity

// DominantSpeakerPropertyName is the property reported through
// DominantSpeakerIdentification.OnPropertyChange when the dominant speaker changes.
const DominantSpeakerPropertyName = "dominantSpeaker"

// ActiveSpeakerDetector is the pluggable algorithm which turns audio levels into active
// speaker changes.
type ActiveSpeakerDetector interface {
	// LevelChanged feeds a level (0 silence, 127 loudest) measured for the stream ssrc.
	LevelChanged(ssrc uint32, level int)

	// OnActiveSpeakerChanged registers handler, called with the SSRC of the new active
	// speaker.
	OnActiveSpeakerChanged(handler func(ssrc uint32)) Subscription
}

// DominantSpeakerIdentification is an ActiveSpeakerDetector which exposes its internal
// state for inspection.
type DominantSpeakerIdentification interface {
	ActiveSpeakerDetector

	// Snapshot returns a freshly allocated JSON-shaped view of the detector state. The
	// "dominantSpeaker" key holds the SSRC of the dominant speaker and "speakers" the
	// tracked streams, each with a "ssrc" key.
	Snapshot() H

	// OnPropertyChange registers handler, called with the name of the changed property.
	OnPropertyChange(handler func(name string)) Subscription
}

// detectorWrapper is implemented by detectors delegating to another one.
type detectorWrapper interface {
	Impl() ActiveSpeakerDetector
}

// findDominantSpeakerIdentification looks for a DominantSpeakerIdentification in detector
// and the detectors it wraps.
func findDominantSpeakerIdentification(detector ActiveSpeakerDetector) DominantSpeakerIdentification {
	for detector != nil {
		if dsi, ok := detector.(DominantSpeakerIdentification); ok {
			return dsi
		}
		wrapper, ok := detector.(detectorWrapper)
		if !ok {
			return nil
		}
		impl := wrapper.Impl()
		if impl == detector {
			return nil
		}
		detector = impl
	}
	return nil
}
