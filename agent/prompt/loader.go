package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
)

var (
	//go:embed template/ovgu.txt
	ovguRaw string

	//go:embed template/fin.txt
	finRaw string

	//go:embed template/magdeburg.txt
	magdeburgRaw string
)

// PromptSet holds the system prompt of each topic agent.
type PromptSet struct {
	OVGU      string
	FIN       string
	Magdeburg string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		OVGU:      strings.TrimSpace(ovguRaw),
		FIN:       strings.TrimSpace(finRaw),
		Magdeburg: strings.TrimSpace(magdeburgRaw),
	}
}

func (p PromptSet) For(topic contractx.Topic) (string, error) {
	var out string
	switch topic {
	case contractx.TopicOVGU:
		out = p.OVGU
	case contractx.TopicFIN:
		out = p.FIN
	case contractx.TopicMagdeburg:
		out = p.Magdeburg
	}
	if out == "" {
		return "", fmt.Errorf("%w: topic=%s", contractx.ErrPromptMissing, topic)
	}
	return out, nil
}
