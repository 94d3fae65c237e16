package speechactivity

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DominantSpeakerIdentificationJSON returns the state of the DominantSpeakerIdentification
// of the detector, for the purposes of REST-style inspection. SSRCs are resolved to
// participants: "dominantSpeaker" gets a sibling "dominantParticipant" and every entry of
// "speakers" with a "ssrc" gets a "participant", each holding the participant id. SSRCs
// which do not resolve are left alone.
//
// It returns nil once expired or if the detector does not implement
// DominantSpeakerIdentification.
func (s *SpeechActivity) DominantSpeakerIdentificationJSON() H {
	if s.Expired() {
		return nil
	}

	identification := s.bridge.DominantSpeakerIdentification()
	if identification == nil {
		return nil
	}

	snapshot := identification.Snapshot()
	if snapshot == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Expired() {
		return nil
	}

	s.resolveSsrcAsParticipantLocked(snapshot, "dominantSpeaker", "dominantParticipant")

	switch speakers := snapshot["speakers"].(type) {
	case []H:
		for _, speaker := range speakers {
			s.resolveSsrcAsParticipantLocked(speaker, "ssrc", "participant")
		}
	case []map[string]interface{}:
		for _, speaker := range speakers {
			s.resolveSsrcAsParticipantLocked(speaker, "ssrc", "participant")
		}
	case []interface{}:
		for _, speaker := range speakers {
			switch speaker := speaker.(type) {
			case H:
				s.resolveSsrcAsParticipantLocked(speaker, "ssrc", "participant")
			case map[string]interface{}:
				s.resolveSsrcAsParticipantLocked(speaker, "ssrc", "participant")
			}
		}
	}

	return snapshot
}

// resolveSsrcAsParticipantLocked reads the SSRC at ssrcKey of object and writes the id of
// the participant receiving it at participantKey.
func (s *SpeechActivity) resolveSsrcAsParticipantLocked(object map[string]interface{}, ssrcKey, participantKey string) {
	ssrc, ok := parseSsrc(object[ssrcKey])
	if !ok {
		return
	}
	if participant := resolveParticipant(s.roster, ssrc); participant != nil {
		object[participantKey] = participant.Id()
	}
}

// parseSsrc accepts any numeric type, json.Number or decimal string holding a value in the
// uint32 range.
func parseSsrc(value interface{}) (uint32, bool) {
	var n int64

	switch v := value.(type) {
	case uint32:
		return v, true
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint:
		if uint64(v) > math.MaxUint32 {
			return 0, false
		}
		n = int64(v)
	case uint64:
		if v > math.MaxUint32 {
			return 0, false
		}
		n = int64(v)
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case float32:
		return parseSsrc(float64(v))
	case float64:
		if v != math.Trunc(v) || v < 0 || v > math.MaxUint32 {
			return 0, false
		}
		n = int64(v)
	case json.Number:
		return parseSsrc(v.String())
	case string:
		u, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
		if err != nil {
			return 0, false
		}
		return uint32(u), true
	default:
		return 0, false
	}

	if n < 0 || n > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}
