// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the user's ~/.styleaudit directory.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: User-editable audit prompts
//   - HiddenGuideStore: JSON list of hidden guide IDs
package file
