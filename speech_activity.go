package speechactivity

import (
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/jiyeyuran/speechactivity/internal/subscription"
)

const (
	EventDominantParticipantChanged = "dominantparticipantchange"
	EventRosterChanged              = "rosterchange"
)

// SpeechActivity represents the speech activity of the participants of a conference. It
// identifies the dominant participant and maintains the roster of the conference ordered by
// recentness of speaker domination, the dominant participant first.
//
// Changes are announced through OnDominantParticipantChanged and OnRosterChanged. The
// notifications carry no payload, handlers query the current state through
// DominantParticipant and Roster. They are fired from a background dispatcher at most once
// per dispatch interval, never while any lock of the SpeechActivity is held.
//
// - @emits dominantparticipantchange
// - @emits rosterchange
type SpeechActivity struct {
	id       string
	logger   logr.Logger
	metrics  *Metrics
	executor Executor
	interval time.Duration
	bridge   *activeSpeakerBridge
	expired  atomic.Bool

	mu               sync.Mutex
	dominant         Participant
	roster           []Participant
	conferenceRoster []Participant
	rosterChanged    bool
	rosterUpdated    bool
	dominantChanged  bool
	dispatcher       *eventDispatcher
	dispatchTime     time.Time

	dominantParticipantChangedHandlers subscription.Set[func()]
	rosterChangedHandlers              subscription.Set[func()]
}

// NewSpeechActivity creates the speech activity tracker of a conference.
func NewSpeechActivity(options ...Option) *SpeechActivity {
	o := newSpeechActivityOptions(options...)
	id := uuid.NewString()

	s := &SpeechActivity{
		id:       id,
		logger:   o.logger.WithValues("speechActivityId", id),
		metrics:  o.metrics,
		executor: o.executor,
		interval: o.settings.DispatchInterval,
	}
	s.bridge = newActiveSpeakerBridge(
		o.detectorFactory,
		s.Expired,
		s.activeSpeakerChanged,
		s.dominantSpeakerPropertyChanged,
	)

	return s
}

func (s *SpeechActivity) Id() string {
	return s.id
}

// Expired reports whether Expire was called.
func (s *SpeechActivity) Expired() bool {
	return s.expired.Load()
}

// ReportAudioLevel notifies that channel received or measured a new level for the stream
// ssrc. The level is fed to the active speaker detector, created on first call, and to the
// participant owning channel.
func (s *SpeechActivity) ReportAudioLevel(channel Channel, ssrc uint32, level int) {
	if s.Expired() {
		return
	}

	s.bridge.LevelChanged(ssrc, level)

	if channel == nil {
		return
	}
	if participant := channel.Participant(); participant != nil {
		participant.AudioLevelChanged(channel, ssrc, level)
	}
}

// SetConferenceRoster records the current, unordered, participants of the conference. They
// are merged into the roster on the next reconciliation.
func (s *SpeechActivity) SetConferenceRoster(participants []Participant) {
	if s.Expired() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Expired() {
		return
	}
	s.conferenceRoster = slices.Clone(participants)
	s.rosterChanged = true
	s.maybeStartEventDispatcherLocked()
}

// DominantParticipant returns the dominant speaker of the conference, nil if there is none
// or if it has expired since.
func (s *SpeechActivity) DominantParticipant() Participant {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dominantParticipantLocked()
}

// Roster reconciles the roster with the conference and returns a copy of it, the dominant
// participant first.
func (s *SpeechActivity) Roster() []Participant {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reconcileLocked()

	return slices.Clone(s.roster)
}

// ParticipantBySsrc returns the participant of the roster receiving the audio stream ssrc,
// nil if there is none.
func (s *SpeechActivity) ParticipantBySsrc(ssrc uint32) Participant {
	s.mu.Lock()
	defer s.mu.Unlock()

	return resolveParticipant(s.roster, ssrc)
}

// OnDominantParticipantChanged adds handler on "dominantparticipantchange" event.
func (s *SpeechActivity) OnDominantParticipantChanged(handler func()) Subscription {
	return s.dominantParticipantChangedHandlers.Subscribe(handler)
}

// OnRosterChanged adds handler on "rosterchange" event.
func (s *SpeechActivity) OnRosterChanged(handler func()) Subscription {
	return s.rosterChangedHandlers.Subscribe(handler)
}

// Expire marks the conference as ended. The roster is emptied, the dominant participant
// cleared, the detector is no longer listened to and all handlers are removed. Calling it
// again has no effect.
func (s *SpeechActivity) Expire() {
	s.mu.Lock()
	if s.expired.Swap(true) {
		s.mu.Unlock()
		return
	}
	s.logger.V(1).Info("Expire()")

	s.dominant = nil
	s.conferenceRoster = nil
	s.roster = nil
	s.reconcileLocked()
	s.rosterChanged = false
	s.rosterUpdated = false
	s.dominantChanged = false

	// the dispatcher exits as soon as it sees the flag
	if s.dispatcher != nil {
		s.dispatcher.signal()
	}
	s.mu.Unlock()

	s.bridge.Close()
	s.dominantParticipantChangedHandlers.Clear()
	s.rosterChangedHandlers.Clear()
}

// activeSpeakerChanged is called by the detector with the SSRC of the new dominant
// speaker. An SSRC which does not resolve leaves the dominant participant as is, but
// still triggers a dispatch cycle.
func (s *SpeechActivity) activeSpeakerChanged(ssrc uint32) {
	if s.Expired() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Expired() {
		return
	}

	participant := resolveParticipant(s.roster, ssrc)

	if participant == nil {
		s.logger.V(1).Info("dominant speaker not resolved", "ssrc", ssrc)
	} else {
		if participant == s.dominantParticipantLocked() {
			return
		}
		s.logger.V(1).Info("dominant speaker changed", "ssrc", ssrc, "participantId", participant.Id())
		s.dominant = participant
	}

	s.metrics.dominantSpeakerChanged()
	s.dominantChanged = true
	s.maybeStartEventDispatcherLocked()
}

// dominantSpeakerPropertyChanged is called when a property of the
// DominantSpeakerIdentification changes.
func (s *SpeechActivity) dominantSpeakerPropertyChanged(name string) {
	if s.Expired() {
		return
	}

	switch name {
	case DominantSpeakerPropertyName:
		// Dominant speaker changes reach activeSpeakerChanged, nothing to do here.
	default:
		s.logger.V(1).Info("ignoring detector property change", "property", name)
	}
}

func (s *SpeechActivity) dominantParticipantLocked() Participant {
	if s.dominant != nil && s.dominant.Expired() {
		s.dominant = nil
	}
	return s.dominant
}

func (s *SpeechActivity) reconcileLocked() {
	roster, changed := reconcileRoster(s.roster, s.conferenceRoster, s.dominantParticipantLocked(), s.Expired())
	s.roster = roster
	if changed {
		s.rosterUpdated = true
	}
}

// maybeStartEventDispatcherLocked starts a new dispatcher or wakes up the running one.
func (s *SpeechActivity) maybeStartEventDispatcherLocked() {
	if s.dispatcher != nil {
		s.dispatcher.signal()
		return
	}

	dispatcher := newEventDispatcher(s)
	s.dispatcher = dispatcher
	s.dispatchTime = time.Time{}
	s.metrics.dispatcherStarted()

	if err := s.executor.Execute(dispatcher.run); err != nil {
		// The next change tries again.
		s.logger.Error(err, "failed to start event dispatcher")
		s.dispatcher = nil
		s.metrics.dispatcherExited()
		s.metrics.dispatchStartFailed()
	}
}

// runInEventDispatcher is called by dispatcher in a loop. It returns false to make
// dispatcher exit, otherwise the time dispatcher has to wait before calling again.
func (s *SpeechActivity) runInEventDispatcher(dispatcher *eventDispatcher) (bool, time.Duration) {
	s.mu.Lock()

	if s.dispatcher != dispatcher || s.Expired() {
		s.mu.Unlock()
		return false, 0
	}

	now := time.Now()

	// Flags raised since the last cycle wait for the interval to elapse, so bursts of
	// changes coalesce into one cycle.
	if wait := s.interval - now.Sub(s.dispatchTime); wait > 0 {
		s.mu.Unlock()
		return true, wait
	}
	s.dispatchTime = now

	rosterChanged := s.rosterChanged
	s.reconcileLocked()

	fireRosterChanged := s.rosterUpdated
	fireDominantParticipantChanged := s.dominantChanged

	s.rosterChanged = false
	s.rosterUpdated = false
	s.dominantChanged = false
	s.mu.Unlock()

	s.metrics.dispatchCycle()

	if rosterChanged || fireRosterChanged || fireDominantParticipantChanged {
		s.logger.V(1).Info("dispatch cycle",
			"rosterChanged", rosterChanged,
			"fireRosterChanged", fireRosterChanged,
			"fireDominantParticipantChanged", fireDominantParticipantChanged)
	}

	if fireRosterChanged {
		s.safeNotify(EventRosterChanged, s.rosterChangedHandlers.Handlers())
	}
	if fireDominantParticipantChanged {
		s.safeNotify(EventDominantParticipantChanged, s.dominantParticipantChangedHandlers.Handlers())
	}

	return true, 0
}

// eventDispatcherExited lets the SpeechActivity start a new dispatcher on the next change.
func (s *SpeechActivity) eventDispatcherExited(dispatcher *eventDispatcher) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dispatcher == dispatcher {
		s.dispatcher = nil
		s.dispatchTime = time.Time{}
	}
}

// safeNotify calls handlers, recovering and logging their panics.
func (s *SpeechActivity) safeNotify(event string, handlers []func()) {
	s.metrics.notified(event)

	for _, handler := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error(fmt.Errorf("%v", r), "notify panic", "event", event, "stack", string(debug.Stack()))
				}
			}()
			handler()
		}()
	}
}
