package domain

const unknownDescription = "Unknown"

// EmbeddingProvider identifies the service that produces embeddings.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderOllama is a local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"

	// EmbeddingProviderHash is the offline deterministic hash embedder.
	EmbeddingProviderHash EmbeddingProvider = "hash"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderOllama, EmbeddingProviderHash:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderOllama:
		return "Ollama (local)"
	case EmbeddingProviderHash:
		return "Hash (offline, lexical only)"
	default:
		return unknownDescription
	}
}

// GuideSettings configures where guides are read from.
type GuideSettings struct {
	// Dir is the guide directory.
	Dir string

	// HiddenFile is the JSON file holding the hidden-guide set.
	HiddenFile string

	// Include and Exclude are doublestar patterns relative to Dir.
	Include []string
	Exclude []string
}

// IndexSettings configures chunking and retrieval.
type IndexSettings struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the overlap between neighbouring chunks in characters.
	ChunkOverlap int

	// RelevanceThreshold is the maximum cosine distance a result may have.
	RelevanceThreshold float64

	// TopK is the default number of results per search.
	TopK int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider EmbeddingProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// RateLimit caps embedding requests per second (0 = unlimited).
	RateLimit int
}

// AgentSettings holds reasoning agent configuration.
type AgentSettings struct {
	// Model is the chat model name.
	Model string

	// BaseURL is the Ollama API endpoint.
	BaseURL string

	// Temperature is the sampling temperature.
	Temperature float64

	// MaxSteps bounds the number of model turns per chunk.
	MaxSteps int

	// JSONFormat asks the runtime to constrain output to JSON.
	JSONFormat bool

	// ToolServer is a command line for an external MCP tool server.
	// Empty means the built-in server is used in-process.
	ToolServer string
}

// StorageSettings configures local persistence.
type StorageSettings struct {
	// DataDir holds the SQLite database.
	DataDir string
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Host string
	Port int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Guides    GuideSettings
	Index     IndexSettings
	Embedding EmbeddingSettings
	Agent     AgentSettings
	Storage   StorageSettings
	Server    ServerSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Paths left empty are resolved against the user's home directory.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Guides: GuideSettings{
			Dir: "guides",
			Include: []string{
				"**/*.md", "**/*.markdown", "**/*.txt",
				"**/*.html", "**/*.htm",
				"**/*.docx", "**/*.pdf", "**/*.xlsx",
			},
		},
		Index: IndexSettings{
			ChunkSize:          1000,
			ChunkOverlap:       200,
			RelevanceThreshold: 0.6,
			TopK:               5,
		},
		Embedding: EmbeddingSettings{
			Provider: EmbeddingProviderOllama,
			Model:    "nomic-embed-text",
		},
		Agent: AgentSettings{
			Model:       "llama3.1",
			Temperature: 0,
			MaxSteps:    6,
			JSONFormat:  true,
		},
		Server: ServerSettings{
			Host: "127.0.0.1",
			Port: 8080,
		},
	}
}
