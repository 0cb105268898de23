package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
	openaix "github.com/ovgu-assistant/campus-assistant/pkg/openaicompat"
)

const DefaultEmbeddingDimensions = 1536

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"gpt-4o-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
	MaxRetries         int           `envconfig:"MAX_RETRIES" split_words:"true" default:"2"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" split_words:"true" default:"text-embedding-3-small"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" split_words:"true" default:"1536"`

	OVGUModel            string  `envconfig:"OVGU_MODEL" split_words:"true"`
	FINModel             string  `envconfig:"FIN_MODEL" split_words:"true"`
	MagdeburgModel       string  `envconfig:"MAGDEBURG_MODEL" split_words:"true"`
	OVGUTemperature      float32 `envconfig:"OVGU_TEMPERATURE" split_words:"true" default:"-1"`
	FINTemperature       float32 `envconfig:"FIN_TEMPERATURE" split_words:"true" default:"-1"`
	MagdeburgTemperature float32 `envconfig:"MAGDEBURG_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openai api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("%w: embedding dimensions must be > 0", contractx.ErrValidation)
	}
	return nil
}

// OpenAIFor resolves the backend settings for one topic agent, applying the
// per-topic model and temperature overrides when set.
func (c Config) OpenAIFor(topic contractx.Topic) openaix.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override := func(m string, t float32) {
		if v := strings.TrimSpace(m); v != "" {
			modelName = v
		}
		if t >= 0 {
			temp = t
		}
	}

	switch topic {
	case contractx.TopicOVGU:
		override(c.OVGUModel, c.OVGUTemperature)
	case contractx.TopicFIN:
		override(c.FINModel, c.FINTemperature)
	case contractx.TopicMagdeburg:
		override(c.MagdeburgModel, c.MagdeburgTemperature)
	}

	maxCompletionToken := c.MaxCompletionToken
	return openaix.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		MaxRetries:         c.MaxRetries,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}

// Embedding returns the backend settings used by the embedding client.
func (c Config) Embedding() openaix.Config {
	cfg := c.OpenAIFor(contractx.TopicNone)
	cfg.Model = strings.TrimSpace(c.EmbeddingModel)
	return cfg
}
