package tagging

import (
	"woodway/internal/config"
	"woodway/internal/metadata"
	"woodway/internal/services/gemini"
	"woodway/internal/services/openrouter"
)

// NewProvider builds the generative provider named in config. A missing
// API key or unknown provider name returns nil, which leaves the engine
// on the algorithmic variant.
func NewProvider(cfg *config.Config) metadata.Provider {
	llm := cfg.MetadataLLM()
	if llm.APIKey == "" {
		return nil
	}
	switch llm.Provider {
	case "openrouter":
		return openrouter.NewClient(openrouter.ConfigFromLLM(llm))
	case "gemini":
		return gemini.NewClient(gemini.ConfigFromLLM(llm))
	default:
		return nil
	}
}
