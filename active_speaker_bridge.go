package speechactivity

import (
	"sync"
)

// activeSpeakerBridge owns the ActiveSpeakerDetector of a SpeechActivity. The detector is
// created on first use under the bridge's own lock so that the (possibly expensive)
// construction never runs under the lock of the SpeechActivity.
type activeSpeakerBridge struct {
	mu               sync.Mutex
	factory          DetectorFactory
	detector         ActiveSpeakerDetector
	identification   DominantSpeakerIdentification
	subscriptions    []Subscription
	closed           bool
	expired          func() bool
	onSpeakerChange  func(ssrc uint32)
	onPropertyChange func(name string)
}

func newActiveSpeakerBridge(
	factory DetectorFactory,
	expired func() bool,
	onSpeakerChange func(ssrc uint32),
	onPropertyChange func(name string),
) *activeSpeakerBridge {
	return &activeSpeakerBridge{
		factory:          factory,
		expired:          expired,
		onSpeakerChange:  onSpeakerChange,
		onPropertyChange: onPropertyChange,
	}
}

// Detector returns the detector, creating and subscribing to it on first call.
func (b *activeSpeakerBridge) Detector() ActiveSpeakerDetector {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.detector != nil {
		return b.detector
	}

	detector := b.factory()
	if detector == nil {
		return nil
	}
	b.detector = detector
	b.identification = findDominantSpeakerIdentification(detector)

	// A late subscription would outlive close(), so it is skipped once expired.
	if b.closed || b.expired() {
		return detector
	}

	b.subscriptions = append(b.subscriptions, detector.OnActiveSpeakerChanged(b.onSpeakerChange))
	if b.identification != nil {
		b.subscriptions = append(b.subscriptions, b.identification.OnPropertyChange(b.onPropertyChange))
	}

	return detector
}

// DominantSpeakerIdentification returns the diagnostic interface of the detector, if it
// has one.
func (b *activeSpeakerBridge) DominantSpeakerIdentification() DominantSpeakerIdentification {
	b.Detector()

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.identification
}

// LevelChanged forwards a level to the detector.
func (b *activeSpeakerBridge) LevelChanged(ssrc uint32, level int) {
	if detector := b.Detector(); detector != nil {
		detector.LevelChanged(ssrc, level)
	}
}

// Close unsubscribes from the detector. Later calls to Detector still return it but never
// subscribe again.
func (b *activeSpeakerBridge) Close() {
	b.mu.Lock()
	subscriptions := b.subscriptions
	b.subscriptions = nil
	b.closed = true
	b.mu.Unlock()

	for _, sub := range subscriptions {
		sub.Unsubscribe()
	}
}
