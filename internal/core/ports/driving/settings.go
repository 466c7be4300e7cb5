package driving

import "github.com/custodia-labs/styleaudit/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings with defaults applied.
	Get() (*domain.AppSettings, error)

	// Set stores a single configuration value by dotted key.
	Set(key string, value string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
