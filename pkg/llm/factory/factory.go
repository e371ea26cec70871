package factory

import (
	"fmt"

	"doc-qa-be/pkg/llm"
	"doc-qa-be/pkg/llm/huggingface"
	"doc-qa-be/pkg/llm/ollama"
)

// NewLLMProvider builds the configured backend. providerType "none" returns
// a nil provider: the answer layer then serves extractive answers only.
func NewLLMProvider(providerType, modelName, baseURL, hfApiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(hfApiKey, "", modelName), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
