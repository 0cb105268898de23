package router

import contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"

// Keyword sets are matched as substrings of the lower-cased query, so "fin" also
// matches "finance" and "park" matches "elbauenpark".
var (
	finKeywords = []string{
		"fin", "fakultät für informatik", "informatics", "computer science", "dke",
		"data and knowledge engineering", "digital engineering", "software engineering",
		"visual computing", "department of informatics", "informatik", "g29", "g30",
		"g31", "g32", "g33", "g34", "g35", "g36", "g37", "g38", "g39", "g40",
		"prof.", "professor", "lecturer", "faculty", "research group", "research team",
		"hcai", "human-computer interaction", "artificial intelligence", "master program",
		"bachelor program", "course", "module", "curriculum", "study program",
	}

	magdeburgKeywords = []string{
		"magdeburg", "city", "stadt", "sights", "sehenswürdigkeiten", "transport",
		"verkehr", "events", "veranstaltungen", "elbe", "hbf", "hauptbahnhof",
		"station", "bahnhof", "leben in magdeburg", "services", "things to do",
		"attractions", "tourist", "tourismus", "museum", "park", "restaurant",
		"cafe", "shopping", "hotel", "accommodation",
	}

	ovguKeywords = []string{
		"ovgu", "university", "otto von guericke", "uni ", "campus",
		"student union", "stw", "campus service", "service center", "library",
		"mensa", "cafeteria", "student life", "student services", "admission",
		"application", "enrollment", "registration", "examination", "exam",
		"lecture", "seminar", "tutorial", "study", "academics",
	}
)

// KeywordSets returns a copy of the static keyword configuration per topic.
func KeywordSets() map[contractx.Topic][]string {
	return map[contractx.Topic][]string{
		contractx.TopicFIN:       append([]string(nil), finKeywords...),
		contractx.TopicOVGU:      append([]string(nil), ovguKeywords...),
		contractx.TopicMagdeburg: append([]string(nil), magdeburgKeywords...),
	}
}
