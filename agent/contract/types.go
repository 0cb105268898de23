package contract

// Topic is the routing decision for a turn. The zero value is not a valid topic;
// fresh turns start at TopicNone.
type Topic string

const (
	TopicNone      Topic = "NONE"
	TopicOVGU      Topic = "OVGU"
	TopicFIN       Topic = "FIN"
	TopicMagdeburg Topic = "MAGDEBURG"
)

// Topics lists the answerable topics in routing priority order.
var Topics = []Topic{TopicFIN, TopicOVGU, TopicMagdeburg}

func (t Topic) Valid() bool {
	switch t {
	case TopicNone, TopicOVGU, TopicFIN, TopicMagdeburg:
		return true
	default:
		return false
	}
}

func (t Topic) String() string {
	return string(t)
}

// TurnError records why an executor fell back to its apology. Cause keeps the raw
// detail for diagnostics; it is never shown to end users verbatim.
type TurnError struct {
	Node  string `json:"node"`
	Cause string `json:"cause"`
}

func (e *TurnError) Error() string {
	if e == nil {
		return ""
	}
	if e.Node == "" {
		return e.Cause
	}
	return e.Node + ": " + e.Cause
}

// TurnState is the unit of work flowing through the orchestrator graph.
type TurnState struct {
	UserQuery    string     `json:"user_query"`
	ChosenAgent  Topic      `json:"chosen_agent"`
	AgentOutcome string     `json:"agent_outcome"`
	Err          *TurnError `json:"error,omitempty"`
}

func NewTurnState(query string) *TurnState {
	return &TurnState{
		UserQuery:   query,
		ChosenAgent: TopicNone,
	}
}

func (s *TurnState) Failed() bool {
	return s != nil && s.Err != nil
}

// Chunk is one retrieved span of source text.
type Chunk struct {
	URL      string         `json:"url"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// PDFPage reports the page number when the chunk was extracted from a PDF.
func (c Chunk) PDFPage() (int, bool) {
	isPDF, _ := c.Metadata["is_pdf"].(bool)
	if !isPDF {
		return 0, false
	}
	switch v := c.Metadata["pdf_page_number"].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
