package speechactivity

import (
	"github.com/samber/lo"
)

// resolveParticipant returns the first participant one of whose audio RTP channels receives
// the stream ssrc, nil if there is none. Conferences are small so a linear scan will do.
func resolveParticipant(participants []Participant, ssrc uint32) Participant {
	for _, participant := range participants {
		for _, channel := range participant.Channels(MediaKindAudio) {
			rtpChannel, ok := channel.(RtpChannel)
			if !ok {
				continue
			}
			if lo.Contains(rtpChannel.RemoteSsrcs(), ssrc) {
				return participant
			}
		}
	}
	return nil
}
