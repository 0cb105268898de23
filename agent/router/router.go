package router

import (
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
)

// Scores holds the keyword match counts of one query.
type Scores struct {
	FIN       int
	OVGU      int
	Magdeburg int
}

func (s Scores) Max() int {
	return max(s.FIN, s.OVGU, s.Magdeburg)
}

// Score counts keyword occurrences per topic in the case-folded query.
func Score(query string) Scores {
	q := strings.ToLower(query)
	return Scores{
		FIN:       countMatches(q, finKeywords),
		OVGU:      countMatches(q, ovguKeywords),
		Magdeburg: countMatches(q, magdeburgKeywords),
	}
}

// Route picks exactly one topic for the query. Precedence is FIN > OVGU > MAGDEBURG,
// except that an OVGU/MAGDEBURG tie goes to MAGDEBURG.
//
// The documented precedence is followed on purpose. Checked literally, the extra
// condition (ovgu > magdeburg || fin < max) on the OVGU branch is always true there
// and would hand OVGU/MAGDEBURG ties to OVGU; it is left as a simplification candidate.
func Route(query string) contractx.Topic {
	s := Score(query)
	topic := decide(s)

	log.Debug().
		Int("fin", s.FIN).
		Int("ovgu", s.OVGU).
		Int("magdeburg", s.Magdeburg).
		Str("topic", topic.String()).
		Msg("router: query routed")
	return topic
}

func decide(s Scores) contractx.Topic {
	best := s.Max()
	switch {
	case best == 0:
		return contractx.TopicNone
	case s.FIN == best:
		return contractx.TopicFIN
	case s.OVGU == best && s.OVGU > s.Magdeburg:
		return contractx.TopicOVGU
	case s.Magdeburg == best:
		return contractx.TopicMagdeburg
	default:
		return contractx.TopicNone
	}
}

func countMatches(query string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(query, kw) {
			n++
		}
	}
	return n
}
