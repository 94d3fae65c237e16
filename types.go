package speechactivity

type H map[string]interface{}

type MediaKind string

const (
	MediaKindAudio MediaKind = "audio"
	MediaKindVideo MediaKind = "video"
)

// Participant is a conference member owned by the embedding server. The tracker keeps
// references to participants but never creates, mutates or destroys them.
type Participant interface {
	// Id returns the stable identifier of the participant.
	Id() string

	// Expired reports whether the participant has left the conference.
	Expired() bool

	// Channels returns the media channels of the given kind.
	Channels(kind MediaKind) []Channel

	// AudioLevelChanged lets the participant do channel local bookkeeping of a measured
	// audio level.
	AudioLevelChanged(channel Channel, ssrc uint32, level int)
}

// Channel is a media channel of a participant.
type Channel interface {
	// Participant returns the owner of the channel, nil if it has none (yet).
	Participant() Participant

	Kind() MediaKind
}

// RtpChannel is a Channel which receives RTP streams. Only such channels take part in
// resolving a SSRC to a participant.
type RtpChannel interface {
	Channel

	// RemoteSsrcs returns the SSRCs of the streams currently received by the channel.
	RemoteSsrcs() []uint32
}

// Subscription is returned by every On* method and removes the registered handler.
type Subscription interface {
	Unsubscribe()
}
