package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptAuditSystem is the system prompt for the auditing agent.
	// This prompt has no format placeholders.
	PromptAuditSystem = "audit_system"

	// PromptAuditRequest wraps the context window sent for each chunk.
	// The prompt template expects a %s placeholder for the context window.
	PromptAuditRequest = "audit_request"
)
