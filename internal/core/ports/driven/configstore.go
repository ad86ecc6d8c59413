package driven

import "github.com/parchment-labs/fundqa/internal/core/domain"

// SettingsStore loads and persists application settings.
// Implementations handle the file format and environment overrides.
type SettingsStore interface {
	// Load reads settings from storage. A missing file yields the
	// defaults, not an error.
	Load() (domain.AppSettings, error)

	// Save persists the settings to storage. Secrets are never
	// written; they come from the environment.
	Save(settings domain.AppSettings) error

	// Path returns the settings file path.
	Path() string
}
