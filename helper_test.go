package speechactivity

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/samber/lo"
)

type reportedLevel struct {
	channel Channel
	ssrc    uint32
	level   int
}

type fakeParticipant struct {
	id       string
	expired  atomic.Bool
	mu       sync.Mutex
	channels []Channel
	levels   []reportedLevel
}

// newFakeParticipant creates a participant with an audio RTP channel receiving ssrcs and a
// video channel.
func newFakeParticipant(id string, ssrcs ...uint32) *fakeParticipant {
	p := &fakeParticipant{id: id}
	p.channels = []Channel{
		&fakeChannel{participant: p, kind: MediaKindVideo, ssrcs: []uint32{ssrcs[0] + 1000}},
		&fakeChannel{participant: p, kind: MediaKindAudio, ssrcs: ssrcs},
	}
	return p
}

func (p *fakeParticipant) Id() string {
	return p.id
}

func (p *fakeParticipant) Expired() bool {
	return p.expired.Load()
}

func (p *fakeParticipant) Expire() {
	p.expired.Store(true)
}

func (p *fakeParticipant) Channels(kind MediaKind) []Channel {
	p.mu.Lock()
	defer p.mu.Unlock()

	return lo.Filter(p.channels, func(c Channel, _ int) bool {
		return c.Kind() == kind
	})
}

func (p *fakeParticipant) AddChannel(channel Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.channels = append(p.channels, channel)
}

func (p *fakeParticipant) AudioLevelChanged(channel Channel, ssrc uint32, level int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.levels = append(p.levels, reportedLevel{channel: channel, ssrc: ssrc, level: level})
}

func (p *fakeParticipant) Levels() []reportedLevel {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]reportedLevel(nil), p.levels...)
}

func (p *fakeParticipant) AudioChannel() Channel {
	return p.Channels(MediaKindAudio)[0]
}

type fakeChannel struct {
	participant Participant
	kind        MediaKind
	ssrcs       []uint32
}

func (c *fakeChannel) Participant() Participant {
	return c.participant
}

func (c *fakeChannel) Kind() MediaKind {
	return c.kind
}

func (c *fakeChannel) RemoteSsrcs() []uint32 {
	return c.ssrcs
}

// sctpChannel is an audio kind channel which does not receive RTP.
type sctpChannel struct {
	participant Participant
}

func (c *sctpChannel) Participant() Participant {
	return c.participant
}

func (c *sctpChannel) Kind() MediaKind {
	return MediaKindAudio
}

func participants(ps ...*fakeParticipant) []Participant {
	return lo.Map(ps, func(p *fakeParticipant, _ int) Participant {
		return p
	})
}

func ids(roster []Participant) []string {
	return lo.Map(roster, func(p Participant, _ int) string {
		return p.Id()
	})
}

// newTestSpeechActivity creates a SpeechActivity using detector, expired at the end of the
// test.
func newTestSpeechActivity(t *testing.T, detector ActiveSpeakerDetector, options ...Option) *SpeechActivity {
	options = append([]Option{
		WithDetectorFactory(func() ActiveSpeakerDetector { return detector }),
		WithLogger(NewLogger("SpeechActivityTest")),
	}, options...)

	s := NewSpeechActivity(options...)
	t.Cleanup(s.Expire)

	return s
}
