package speechactivity

import (
	"github.com/samber/lo"
)

// reconcileRoster merges the live conference roster into the tracked order and moves the
// dominant participant to the front. Participants which expired or left are dropped, the
// remaining ones keep their relative order and newcomers are appended in live order.
// changed reports whether the membership of the roster changed; moving the dominant
// participant, or keeping it after it left the conference, does not count. Neither tracked nor live is modified.
func reconcileRoster(tracked, live []Participant, dominant Participant, expired bool) ([]Participant, bool) {
	var (
		result  []Participant
		changed bool
	)

	if tracked == nil {
		if expired {
			result = []Participant{}
		} else {
			result = lo.Reject(lo.Uniq(live), func(p Participant, _ int) bool {
				return p == nil || p.Expired()
			})
		}
		changed = true
	} else {
		joined := lo.Uniq(live)
		result = make([]Participant, 0, len(tracked)+len(joined))

		for _, participant := range tracked {
			if participant.Expired() {
				changed = true
				continue
			}
			if i := lo.IndexOf(joined, participant); i >= 0 {
				joined = append(joined[:i], joined[i+1:]...)
				result = append(result, participant)
			} else if participant == dominant {
				// promoted back below anyway
				result = append(result, participant)
			} else {
				changed = true
			}
		}

		joined = lo.Reject(joined, func(p Participant, _ int) bool {
			return p == nil || p.Expired()
		})
		if len(joined) > 0 {
			result = append(result, joined...)
			changed = true
		}
	}

	if dominant != nil {
		result = promote(result, dominant)
	}

	return result, changed
}

// promote moves participant to the front of roster, inserting it if missing.
func promote(roster []Participant, participant Participant) []Participant {
	if i := lo.IndexOf(roster, participant); i >= 0 {
		copy(roster[1:i+1], roster[:i])
		roster[0] = participant
		return roster
	}
	return append([]Participant{participant}, roster...)
}
