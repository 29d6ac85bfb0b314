package driven

import "github.com/omarcs/lia-woocommerce/internal/core/domain"

// SettingsLoader resolves the run configuration from its sources.
type SettingsLoader interface {
	// Load returns defaults overlaid with file and environment values.
	// Validation is left to the caller.
	Load() (domain.Settings, error)
}
