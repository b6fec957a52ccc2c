package config

import "os"

// File is the YAML configuration file format.
//
// Example:
//
//	keywords:
//	  - RUNSPEC
//	  - GRID
//	llm:
//	  provider: openai
//	  model: gpt-4o-mini
//	  api_key_env: OPENAI_API_KEY
//	knowledge:
//	  - name: spe9-notes
//	    path: docs/spe9-notes.txt
type File struct {
	// Keywords overrides the recognized section vocabulary.
	// Empty means the standard fourteen-keyword set.
	Keywords []string `yaml:"keywords,omitempty"`

	// LLM configures the remediation advisor. Optional: without it all
	// plans come from the built-in heuristics.
	LLM *LLMSettings `yaml:"llm,omitempty"`

	// Knowledge lists background documents to index for the advisor's
	// question answering.
	Knowledge []KnowledgeDoc `yaml:"knowledge,omitempty"`
}

// LLMSettings configures the LLM client used for plan generation and
// question answering.
type LLMSettings struct {
	// Provider selects the backend. Only OpenAI-compatible endpoints are
	// supported; "openai" is the default when a model is set.
	Provider string `yaml:"provider,omitempty"`

	// Model is the model identifier, e.g. gpt-4o-mini.
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	// Keeping the key itself out of the config file keeps it out of
	// version control and shared configs.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	// BaseURL overrides the API endpoint for OpenAI-compatible gateways.
	BaseURL string `yaml:"base_url,omitempty"`

	// EmbeddingModel enables embedding-based knowledge retrieval when set,
	// e.g. text-embedding-3-small. Empty means keyword retrieval only.
	EmbeddingModel string `yaml:"embedding_model,omitempty"`
}

// APIKey resolves the API key from the configured environment variable.
// Returns an empty string when unset; callers decide whether that is fatal.
func (s *LLMSettings) APIKey() string {
	if s == nil || s.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(s.APIKeyEnv)
}

// KnowledgeDoc points at one background document to index.
type KnowledgeDoc struct {
	// Name identifies the document in search results.
	Name string `yaml:"name"`

	// Path is the document file path, absolute or relative to the
	// working directory.
	Path string `yaml:"path"`
}
